package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phanxgames/barboard"
)

func newExportCmd(config func() Config) *cobra.Command {
	var (
		output   string
		resource string
	)
	cmd := &cobra.Command{
		Use:   "export [document.json]",
		Short: "Render a board to PNG or rewrite it as JSON",
		Long: `Export renders a board document, or a saved board resource, fitted into
a PNG image. When the output ends in .json the document is decoded,
validated and written back in canonical form instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config()
			store := barboard.NewStore()
			store.SetDebugMode(cfg.Debug)

			switch {
			case len(args) == 1 && resource != "":
				return errors.New("pass a document or --resource, not both")
			case len(args) == 1:
				if err := loadDocument(store, args[0]); err != nil {
					return err
				}
			case resource != "":
				if err := placeResource(cmd, cfg, store, resource); err != nil {
					return err
				}
			default:
				return errors.New("nothing to export: pass a document or --resource")
			}

			bridge, err := newBridge(cfg, store)
			if err != nil {
				return err
			}
			defer bridge.Detach()

			write := func(w io.Writer) error {
				if strings.EqualFold(filepath.Ext(output), ".json") {
					return barboard.WriteDocument(w, store.Document())
				}
				return barboard.ExportPNG(w, store.Snapshot(), bridge, cfg.Width, cfg.Height)
			}
			if output == "" || output == "-" {
				err = write(cmd.OutOrStdout())
			} else {
				err = writeFile(output, write)
			}
			if err != nil {
				return err
			}
			if cfg.Debug {
				log.Printf("barboard: exported %d nodes at %dx%d", len(store.Snapshot().Nodes), cfg.Width, cfg.Height)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "", "output file (.png or .json); stdout when empty")
	f.StringVarP(&resource, "resource", "r", "", "export a saved board resource by id")
	f.Int("width", 0, "image width")
	f.Int("height", 0, "image height")
	return cmd
}

// writeFile creates path and fills it with write. A failed close is reported,
// since it can mean the file was truncated.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	return closeAfter(f, write)
}

func closeAfter(wc io.WriteCloser, write func(io.Writer) error) error {
	if err := write(wc); err != nil {
		_ = wc.Close()
		return err
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}

// placeResource adds a board showing the saved resource id to store.
func placeResource(cmd *cobra.Command, cfg Config, store *barboard.Store, id string) error {
	db, err := openLibrary(cmd.Context(), cfg, store)
	if err != nil {
		return err
	}
	defer db.Close()

	i := slices.IndexFunc(store.Resources(), func(r barboard.BoardResource) bool { return r.ID == id })
	if i < 0 {
		return fmt.Errorf("no saved resource %q", id)
	}
	name := store.Resources()[i].Name
	node := store.AddNode(barboard.NewBoardNode(name, nil, 0, 0, 960, 600))
	if !store.ApplyResourceToBoard(node, id) {
		return fmt.Errorf("apply resource %q", id)
	}
	return nil
}
