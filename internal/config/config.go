// Package config provides configuration for the content API server
// (flags, config file and environment) and for the CLI client.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Options holds the configuration values for the server.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `yaml:"address" json:"address" env:"SERVER_ADDRESS" env-default:"localhost:8080"`

	// DatabaseDSN holds the PostgreSQL connection string.
	DatabaseDSN string `yaml:"database_dsn" json:"database_dsn" env:"DATABASE_DSN"`

	// Config is the path to the config file.
	Config string `yaml:"-" json:"-" env:"CONFIG"`

	LogLevel string `yaml:"log_level" json:"log_level" env:"LOG_LEVEL" env-default:"info"`

	// JWTSecret signs bearer tokens (HS256).
	JWTSecret string        `yaml:"jwt_secret" json:"jwt_secret" env:"JWT_SECRET" env-default:"travel-app-secret-key-2024"`
	TokenTTL  time.Duration `yaml:"token_ttl" json:"token_ttl" env:"TOKEN_TTL" env-default:"24h"`

	// AdminUsername and AdminPassword are accepted when no matching user
	// exists in the users table.
	AdminUsername string `yaml:"admin_username" json:"admin_username" env:"ADMIN_USERNAME" env-default:"admin"`
	AdminPassword string `yaml:"admin_password" json:"admin_password" env:"ADMIN_PASSWORD" env-default:"admin123"`

	// MediaBackend is "fs" or "s3".
	MediaBackend string    `yaml:"media_backend" json:"media_backend" env:"MEDIA_BACKEND" env-default:"fs"`
	UploadDir    string    `yaml:"upload_dir" json:"upload_dir" env:"UPLOAD_DIR" env-default:"uploads"`
	S3           S3Options `yaml:"s3" json:"s3"`

	TLSCert string `yaml:"tls_cert" json:"tls_cert" env:"TLS_CERT"`
	TLSKey  string `yaml:"tls_key" json:"tls_key" env:"TLS_KEY"`

	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins" env:"ALLOWED_ORIGINS" env-separator:"," env-default:"*"`

	// Soft-deleted enquiries older than EnquiryRetention are purged every CleanInterval.
	EnquiryRetention time.Duration `yaml:"enquiry_retention" json:"enquiry_retention" env:"ENQUIRY_RETENTION" env-default:"720h"`
	CleanInterval    time.Duration `yaml:"clean_interval" json:"clean_interval" env:"CLEAN_INTERVAL" env-default:"1h"`
}

// S3Options configures the S3 media backend.
type S3Options struct {
	Bucket          string `yaml:"bucket" json:"bucket" env:"AWS_S3_BUCKET"`
	Region          string `yaml:"region" json:"region" env:"AWS_S3_REGION" env-default:"us-east-1"`
	Endpoint        string `yaml:"endpoint" json:"endpoint" env:"AWS_S3_ENDPOINT"`
	AccessKeyID     string `yaml:"access_key_id" json:"access_key_id" env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" json:"secret_access_key" env:"AWS_SECRET_ACCESS_KEY"`
	UsePathStyle    bool   `yaml:"use_path_style" json:"use_path_style" env:"AWS_S3_USE_PATH_STYLE"`
}

// TLSEnabled reports whether both certificate and key are configured.
func (o *Options) TLSEnabled() bool {
	return o.TLSCert != "" && o.TLSKey != ""
}

// Parse reads the server configuration from os.Args and the environment,
// exiting on error.
func Parse() *Options {
	opts, err := Load(os.Args[1:])
	if err != nil {
		log.Fatalf("error while reading config: %v", err)
	}
	return opts
}

// Load resolves configuration in increasing priority: defaults, config
// file, environment, explicitly set flags.
func Load(args []string) (*Options, error) {
	var (
		port, dsn, configPath string
	)
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&port, "a", "localhost:8080", "run on ip:port server")
	fs.StringVar(&dsn, "d", "", "db address")
	fs.StringVar(&configPath, "config", "config.yaml", "path to config file")
	fs.StringVar(&configPath, "c", "config.yaml", "path to config file (shorthand)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if env := os.Getenv("CONFIG"); env != "" && !set["c"] && !set["config"] {
		configPath = env
	}

	opts := &Options{}
	if _, err := os.Stat(configPath); err == nil {
		if err := cleanenv.ReadConfig(configPath, opts); err != nil {
			return nil, fmt.Errorf("error while parsing config file: %w", err)
		}
	} else if err := cleanenv.ReadEnv(opts); err != nil {
		return nil, fmt.Errorf("error while reading environment: %w", err)
	}
	opts.Config = configPath

	if set["a"] {
		opts.Port = port
	}
	if set["d"] {
		opts.DatabaseDSN = dsn
	}

	if err := opts.validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

func (o *Options) validate() error {
	switch o.MediaBackend {
	case "fs":
	case "s3":
		if o.S3.Bucket == "" {
			return errors.New("media backend s3 requires AWS_S3_BUCKET")
		}
	default:
		return fmt.Errorf("unknown media backend %q", o.MediaBackend)
	}
	if (o.TLSCert == "") != (o.TLSKey == "") {
		return errors.New("tls_cert and tls_key must be set together")
	}
	if o.CleanInterval <= 0 {
		return fmt.Errorf("clean_interval must be positive, got %s", o.CleanInterval)
	}
	if o.EnquiryRetention < 0 {
		return fmt.Errorf("enquiry_retention must not be negative, got %s", o.EnquiryRetention)
	}
	return nil
}
