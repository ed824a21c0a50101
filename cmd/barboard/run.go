package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/phanxgames/barboard"
	"github.com/phanxgames/barboard/persist"
)

// catalogFile is the on-disk form of the recipe and ingredient catalogs.
type catalogFile struct {
	Recipes     []barboard.Recipe     `json:"recipes"`
	Ingredients []barboard.Ingredient `json:"ingredients"`
}

func loadCatalog(path string) (catalogFile, error) {
	var c catalogFile
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read catalog: %w", err)
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("decode catalog %s: %w", path, err)
	}
	return c, nil
}

func loadDocument(store *barboard.Store, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open document: %w", err)
	}
	defer f.Close()
	doc, err := barboard.ReadDocument(f)
	if err != nil {
		return err
	}
	return store.LoadDocument(doc)
}

func saveDocument(store *barboard.Store, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	if err := barboard.WriteDocument(f, store.Document()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// openLibrary opens the template and resource database and loads it into
// store.
func openLibrary(ctx context.Context, cfg Config, store *barboard.Store) (*persist.SQLite, error) {
	db, err := persist.Open(cfg.DataDir, dbFile)
	if err != nil {
		return nil, err
	}
	if err := db.Hydrate(ctx, store); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// newBridge attaches a data bridge over the configured catalogs to store.
func newBridge(cfg Config, store *barboard.Store) (*barboard.DataBridge, error) {
	cat, err := loadCatalog(cfg.Catalog)
	if err != nil {
		return nil, err
	}
	b := barboard.NewDataBridge(barboard.Resolver{})
	b.SetCatalogs(cat.Recipes, cat.Ingredients)
	b.Attach(store)
	return b, nil
}

func newRunCmd(config func() Config) *cobra.Command {
	var (
		scriptPath string
		save       bool
		mode       string
	)
	cmd := &cobra.Command{
		Use:   "run [document.json]",
		Short: "Open a board in a window",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config()
			store := barboard.NewStore()
			store.SetDebugMode(cfg.Debug)
			m, ok := barboard.ParseMode(mode)
			if !ok {
				return fmt.Errorf("unknown mode %q", mode)
			}
			store.SetMode(m)

			db, err := openLibrary(cmd.Context(), cfg, store)
			if err != nil {
				return err
			}
			defer func() {
				if err := db.Close(); err != nil {
					log.Printf("barboard: close library: %v", err)
				}
			}()

			var docPath string
			if len(args) == 1 {
				docPath = args[0]
				if err := loadDocument(store, docPath); err != nil {
					return err
				}
			}

			bridge, err := newBridge(cfg, store)
			if err != nil {
				return err
			}
			defer bridge.Detach()

			rc := barboard.RunConfig{
				Title:         "barboard",
				Width:         cfg.Width,
				Height:        cfg.Height,
				ShowFPS:       cfg.FPS,
				Debug:         cfg.Debug,
				ScreenshotDir: cfg.ScreenshotDir,
				ThumbnailDir:  cfg.ThumbnailDir,
			}
			if docPath != "" {
				rc.Title = "barboard - " + docPath
			}
			if cfg.Clipboard {
				rc.Clipboard = barboard.SystemClipboard{}
			}
			if scriptPath != "" {
				data, err := os.ReadFile(scriptPath)
				if err != nil {
					return fmt.Errorf("read script: %w", err)
				}
				if rc.Script, err = barboard.LoadScript(data); err != nil {
					return err
				}
			}

			if err := barboard.Run(store, bridge, rc); err != nil {
				return err
			}
			if save && docPath != "" {
				return saveDocument(store, docPath)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.Int("width", 0, "window width")
	f.Int("height", 0, "window height")
	f.Bool("fps", false, "show the FPS overlay")
	f.Bool("clipboard", true, "mirror copy and paste to the system clipboard")
	f.String("screenshots", "", "directory for script screenshots")
	f.String("thumbnails", "", "directory for board thumbnails")
	f.StringVar(&scriptPath, "script", "", "JSON input script to replay")
	f.BoolVar(&save, "save", false, "write the board back to the document on exit")
	f.StringVarP(&mode, "mode", "m", "creative", "interaction mode: creative, operational or executive")
	return cmd
}
