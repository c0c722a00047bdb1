package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/andyballingall/rustfmt-quote/internal/config"
)

const InitConfigCmdName = "init-config"

// NewInitConfigCmd returns a command which writes a documented configuration
// file holding the default settings.
func NewInitConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   InitConfigCmdName + " [dirpath]",
		Short: "Write a default " + config.ConfigFile,
		Long: `Write a configuration file listing every setting with its default value.
rustfmt-quote reads it from the directory it is run in.`,
		Args: cobra.MaximumNArgs(1),
		Example: `
rustfmt-quote init-config
rustfmt-quote init-config ./my-crate
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dirpath := "."
			if len(args) > 0 {
				dirpath = args[0]
			}

			configPath := filepath.Join(dirpath, config.ConfigFile)
			if _, err := os.Stat(configPath); err == nil {
				return fmt.Errorf("configuration file already exists: %s", configPath)
			} else if !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("failed to check for %s: %w", configPath, err)
			}

			if err := os.WriteFile(configPath, []byte(config.DefaultConfigContent), 0o644); err != nil {
				return fmt.Errorf("failed to write configuration file: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", configPath)
			return nil
		},
	}

	return cmd
}
