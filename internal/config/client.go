package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ClientOptions configures the CLI client.
type ClientOptions struct {
	// APIBase is the content API origin, without the /api prefix.
	APIBase string `mapstructure:"api_base"`
	// CAFile, when set, is the only CA trusted for HTTPS.
	CAFile string `mapstructure:"ca_file"`
	// SessionFile holds the bearer token between runs.
	SessionFile string        `mapstructure:"session_file"`
	Timeout     time.Duration `mapstructure:"timeout"`
	DownloadDir string        `mapstructure:"download_dir"`
	Verbose     bool          `mapstructure:"verbose"`
}

// clientDir is the per-user directory for the session and config files.
func clientDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".travelsite"
	}
	return filepath.Join(dir, "travelsite")
}

// ClientDefaults are used when neither config, environment nor flags set a key.
func ClientDefaults() map[string]any {
	return map[string]any{
		"api_base":     "http://localhost:5000",
		"ca_file":      "",
		"session_file": filepath.Join(clientDir(), "session.json"),
		"timeout":      10 * time.Second,
		"download_dir": ".",
		"verbose":      false,
	}
}

// clientFlags maps config keys to CLI flag names.
var clientFlags = map[string]string{
	"api_base":     "api-base",
	"ca_file":      "ca-file",
	"session_file": "session-file",
	"timeout":      "timeout",
	"download_dir": "download-dir",
	"verbose":      "verbose",
}

// AddClientFlags declares the client flags on cmd as persistent flags.
func AddClientFlags(cmd *cobra.Command) {
	d := ClientDefaults()
	f := cmd.PersistentFlags()
	f.String("config", "", "config file (default is <user config dir>/travelsite/client.yaml or ./client.yaml)")
	f.String("api-base", d["api_base"].(string), "content API origin")
	f.String("ca-file", "", "PEM CA bundle to trust for HTTPS")
	f.String("session-file", d["session_file"].(string), "where the login token is kept")
	f.Duration("timeout", d["timeout"].(time.Duration), "request timeout")
	f.String("download-dir", ".", "directory for exported files")
	f.BoolP("verbose", "v", false, "debug logging")
}

// LoadClient resolves client options in increasing priority: defaults,
// config file, TRAVEL_* environment, flags set on the command line.
func LoadClient(cmd *cobra.Command) (*ClientOptions, error) {
	v := viper.New()
	for key, value := range ClientDefaults() {
		v.SetDefault(key, value)
	}

	cfgFile, _ := cmd.Flags().GetString("config")
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("client")
		v.SetConfigType("yaml")
		v.AddConfigPath(clientDir())
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read client config: %w", err)
		}
	}

	v.SetEnvPrefix("TRAVEL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, name := range clientFlags {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}

	var opts ClientOptions
	if err := v.Unmarshal(&opts); err != nil {
		return nil, fmt.Errorf("decode client config: %w", err)
	}
	opts.APIBase = strings.TrimRight(opts.APIBase, "/")
	return &opts, nil
}
