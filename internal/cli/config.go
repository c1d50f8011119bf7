package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Configuration keys. Each one is also a flag name and, upper-cased with
// "-" replaced by "_", an environment variable behind the POETRY2RYE_ prefix.
const (
	keyNoSrc   = "no-src"
	keyVirtual = "virtual"
	keyDryRun  = "dry-run"
)

// settings is the resolved configuration of one run.
type settings struct {
	NoSrc   bool
	Virtual bool
	DryRun  bool
}

// loadConfig reads the config file and environment into c.config. An
// explicit --config must exist; the default locations are optional.
func (c *CLI) loadConfig(cmd *cobra.Command) error {
	v := c.config
	v.SetEnvPrefix(strings.ToUpper(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cfgFile, _ := cmd.Flags().GetString("config")
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(appName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", appName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	c.Logger.Debug("using config file", "path", v.ConfigFileUsed())
	return nil
}

// settings binds the command's flags and returns the merged result:
// flag, then environment, then config file, then default.
func (c *CLI) settings(flags *pflag.FlagSet) (settings, error) {
	for _, key := range []string{keyNoSrc, keyVirtual, keyDryRun} {
		if f := flags.Lookup(key); f != nil {
			if err := c.config.BindPFlag(key, f); err != nil {
				return settings{}, err
			}
		}
	}
	return settings{
		NoSrc:   c.config.GetBool(keyNoSrc),
		Virtual: c.config.GetBool(keyVirtual),
		DryRun:  c.config.GetBool(keyDryRun),
	}, nil
}
