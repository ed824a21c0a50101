// Command barboard opens, exports and manages bar operations boards.
//
//	barboard run board.json --catalog catalog.json
//	barboard export board.json -o board.png
//	barboard library
//
// Settings are read from barboard.yaml in the working directory or
// $HOME/.config/barboard, from BARBOARD_* environment variables and from
// flags, in increasing priority.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is the resolved configuration shared by every command.
type Config struct {
	DataDir       string `mapstructure:"data_dir"`
	Catalog       string `mapstructure:"catalog"`
	Width         int    `mapstructure:"width"`
	Height        int    `mapstructure:"height"`
	FPS           bool   `mapstructure:"fps"`
	Debug         bool   `mapstructure:"debug"`
	Clipboard     bool   `mapstructure:"clipboard"`
	ScreenshotDir string `mapstructure:"screenshot_dir"`
	ThumbnailDir  string `mapstructure:"thumbnail_dir"`
}

const dbFile = "barboard.db"

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "barboard")
	}
	return ".barboard"
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("barboard")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "barboard"))
	}
	v.SetEnvPrefix("BARBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("data_dir", defaultDataDir())
	v.SetDefault("width", 1280)
	v.SetDefault("height", 800)
	v.SetDefault("clipboard", true)
	v.SetDefault("screenshot_dir", "screenshots")
	return v
}

func loadConfig(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// configFlags maps flag names to the config keys they override.
var configFlags = map[string]string{
	"data-dir":    "data_dir",
	"catalog":     "catalog",
	"debug":       "debug",
	"width":       "width",
	"height":      "height",
	"fps":         "fps",
	"clipboard":   "clipboard",
	"screenshots": "screenshot_dir",
	"thumbnails":  "thumbnail_dir",
}

// bindFlags binds the executing command's flags to their config keys so that
// flags win over the config file and environment. Binding happens per run
// because several commands share keys.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for name, key := range configFlags {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

func newRootCmd() *cobra.Command {
	v := newViper()
	var cfg Config

	root := &cobra.Command{
		Use:           "barboard",
		Short:         "Infinite-canvas boards for bar and kitchen operations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := bindFlags(v, cmd); err != nil {
				return err
			}
			c, err := loadConfig(v)
			if err != nil {
				return err
			}
			cfg = c
			if cfg.Debug {
				log.Printf("barboard: config %s", v.ConfigFileUsed())
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.String("data-dir", "", "directory holding the template and resource database")
	pf.String("catalog", "", "JSON file with recipes and ingredients")
	pf.Bool("debug", false, "log store and frame diagnostics")

	cfgFn := func() Config { return cfg }
	root.AddCommand(
		newRunCmd(cfgFn),
		newExportCmd(cfgFn),
		newLibraryCmd(cfgFn),
	)
	return root
}

func main() {
	log.SetFlags(0)
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("barboard: %v", err)
	}
}
