package cli

import (
	"fmt"
	"strings"

	"github.com/morozRed/dfnref/internal/config"
	"github.com/spf13/cobra"
)

func OptionalStringFlag(cmd *cobra.Command, name string) (string, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return "", nil
	}
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return strings.TrimSpace(value), nil
}

func OptionalBoolFlag(cmd *cobra.Command, name string, defaultValue bool) (bool, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return defaultValue, nil
	}
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false, fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return value, nil
}

func OptionalIntFlag(cmd *cobra.Command, name string, defaultValue int) (int, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return defaultValue, nil
	}
	value, err := cmd.Flags().GetInt(name)
	if err != nil {
		return 0, fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return value, nil
}

// flagChanged reports whether name was set on the command line.
func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil {
		return false
	}
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}

func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "Path to config file (default: ./"+config.ConfigFile+")")
	cmd.Flags().Bool("json", false, "Print machine-readable output")
	cmd.Flags().CountP("verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	cmd.Flags().BoolP("quiet", "q", false, "Silence logging")
}

func addResolveFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("xref", false, "Defer unmatched references to an external lookup instead of reporting them")
	cmd.Flags().String("short-name", "", "Short name of the document, used to detect self-citations")
	cmd.Flags().Int("workers", 1, "Number of goroutines resolving references")
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig(cmd *cobra.Command, rootPath string) (*config.Config, error) {
	path, err := OptionalStringFlag(cmd, "config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(rootPath, path)
	if err != nil {
		return nil, err
	}

	if flagChanged(cmd, "xref") {
		if cfg.XRef, err = OptionalBoolFlag(cmd, "xref", cfg.XRef); err != nil {
			return nil, err
		}
	}
	if flagChanged(cmd, "short-name") {
		if cfg.ShortName, err = OptionalStringFlag(cmd, "short-name"); err != nil {
			return nil, err
		}
	}
	if flagChanged(cmd, "workers") {
		if cfg.Workers, err = OptionalIntFlag(cmd, "workers", cfg.Workers); err != nil {
			return nil, err
		}
	}
	if flagChanged(cmd, "out") {
		if cfg.OutputDir, err = OptionalStringFlag(cmd, "out"); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
