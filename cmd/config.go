package cmd

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type config struct {
	APIURL  string
	WSURL   string
	Timeout time.Duration
	DataDir string
}

// configFile is the on-disk shape under ~/.omnity/config.toml. Timeout is a
// duration string so the file stays hand-editable.
type configFile struct {
	APIURL  string `toml:"api_url"`
	WSURL   string `toml:"ws_url,omitempty"`
	Timeout string `toml:"timeout"`
	DataDir string `toml:"data_dir,omitempty"`
}

func loadConfig() (config, error) {
	// Local .env files override nothing that is already exported.
	_ = godotenv.Load()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return config{}, fmt.Errorf("resolve home directory: %w", err)
	}
	configDir := filepath.Join(homeDir, ".omnity")

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	v.SetEnvPrefix("OMNITY")
	v.AutomaticEnv()
	v.SetDefault("api_url", "http://localhost:3333")
	v.SetDefault("timeout", "15s")
	v.SetDefault("data_dir", configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := config{
		APIURL:  v.GetString("api_url"),
		WSURL:   v.GetString("ws_url"),
		Timeout: v.GetDuration("timeout"),
		DataDir: v.GetString("data_dir"),
	}

	if cfg.WSURL == "" {
		cfg.WSURL, err = deriveWSURL(cfg.APIURL)
		if err != nil {
			return config{}, err
		}
	}

	return cfg, nil
}

// deriveWSURL maps the API base URL onto the websocket endpoint when no
// explicit ws_url is configured.
func deriveWSURL(apiURL string) (string, error) {
	parsed, err := url.Parse(apiURL)
	if err != nil {
		return "", fmt.Errorf("parse api url: %w", err)
	}

	switch parsed.Scheme {
	case "http":
		parsed.Scheme = "ws"
	case "https":
		parsed.Scheme = "wss"
	default:
		return "", fmt.Errorf("cannot derive websocket url from scheme %q", parsed.Scheme)
	}

	parsed.Path = "/ws"
	return parsed.String(), nil
}

func newConfigCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
	}

	cmd.AddCommand(newConfigInitCmd(), newConfigShowCmd(app))

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file to ~/.omnity/config.toml",
		RunE: func(cmd *cobra.Command, _ []string) error {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("resolve home directory: %w", err)
			}

			configDir := filepath.Join(homeDir, ".omnity")
			if err := os.MkdirAll(configDir, 0o700); err != nil {
				return fmt.Errorf("create config directory: %w", err)
			}

			path := filepath.Join(configDir, "config.toml")
			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				}
			}

			contents, err := toml.Marshal(configFile{
				APIURL:  "http://localhost:3333",
				Timeout: "15s",
			})
			if err != nil {
				return fmt.Errorf("encode default config: %w", err)
			}

			if err := os.WriteFile(path, contents, 0o600); err != nil {
				return fmt.Errorf("write config file: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}

func newConfigShowCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			contents, err := toml.Marshal(configFile{
				APIURL:  app.cfg.APIURL,
				WSURL:   app.cfg.WSURL,
				Timeout: app.cfg.Timeout.String(),
				DataDir: app.cfg.DataDir,
			})
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), string(contents))
			return err
		},
	}
}
