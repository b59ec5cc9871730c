package hrctl

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/urfave/cli/v2"
)

// settings are the defaults read from the config file. Flags and their
// environment variables win over them.
//
//	api: https://hr.example.com/api
//	output: json
//	token_file: /home/me/.hrctl-token
//	timeout: 30s
type settings struct {
	API       string
	Output    string
	TokenFile string
	Timeout   time.Duration
}

// DefaultConfigPath returns <user config dir>/hrctl/config.yaml.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "hrctl", "config.yaml"), nil
}

// loadSettings reads path. A missing file yields empty settings.
func loadSettings(path string) (settings, error) {
	if path == "" {
		return settings{}, nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return settings{}, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return settings{}, fmt.Errorf("load config file %s: %w", path, err)
	}

	return settings{
		API:       k.String("api"),
		Output:    k.String("output"),
		TokenFile: k.String("token_file"),
		Timeout:   k.Duration("timeout"),
	}, nil
}

// stringOr returns the flag value when it was set explicitly, else fallback
// when non-empty, else the flag default.
func stringOr(c *cli.Context, flag, fallback string) string {
	if c.IsSet(flag) || fallback == "" {
		return c.String(flag)
	}
	return fallback
}

func durationOr(c *cli.Context, flag string, fallback time.Duration) time.Duration {
	if c.IsSet(flag) || fallback == 0 {
		return c.Duration(flag)
	}
	return fallback
}
