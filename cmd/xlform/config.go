// Config loading for the xlform CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/gridwerk/xlform-go/xlform"
)

const (
	cfgKeyDateSystem  = "date_system"
	cfgKeyCSVDelim    = "csv.delimiter"
	cfgKeyCSVEncoding = "csv.encoding"
	cfgKeyServeAddr   = "serve.addr"
)

// cfg holds the loaded configuration. The root command sets it before any
// subcommand runs.
var cfg *viper.Viper

// loadConfig reads xlform.yaml from the working directory or
// $HOME/.config/xlform, with XLFORM_* environment overrides. A missing
// config file is not an error.
func loadConfig() error {
	v := viper.New()
	v.SetDefault(cfgKeyDateSystem, 1900)
	v.SetDefault(cfgKeyCSVDelim, ",")
	v.SetDefault(cfgKeyCSVEncoding, "")
	v.SetDefault(cfgKeyServeAddr, ":8080")

	v.SetConfigName("xlform")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "xlform"))
	}

	v.SetEnvPrefix("XLFORM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config: %w", err)
		}
	}

	cfg = v
	return nil
}

func configDateSystem() (xlform.DateSystem, error) {
	switch n := cfg.GetInt(cfgKeyDateSystem); n {
	case 1900:
		return xlform.DateSystem1900, nil
	case 1904:
		return xlform.DateSystem1904, nil
	default:
		return 0, fmt.Errorf("date_system must be 1900 or 1904, got %d", n)
	}
}

func configDelimiter() (rune, error) {
	s := cfg.GetString(cfgKeyCSVDelim)
	switch {
	case s == "":
		return ',', nil
	case s == "tab" || s == `\t`:
		return '\t', nil
	case len([]rune(s)) == 1:
		return []rune(s)[0], nil
	default:
		return 0, fmt.Errorf("csv.delimiter must be a single character, got %q", s)
	}
}
