package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/continuous-intelligence/cIV/internal/config"
)

var cfgFile string
var appConfig config.Config

// Assets are the embedded templates and static files, set by main.
type Assets struct {
	Version   string
	Templates fs.FS
	Static    fs.FS
}

var assets Assets

var rootCmd = &cobra.Command{
	Use:   "civ",
	Short: "cIV marketing site",
	Long: `cIV serves the marketing site and blog from content stored in the
headless CMS, and carries the tooling to inspect and seed that content.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initializeConfig(cmd); err != nil {
			return err
		}
		setupLogger(appConfig.Log)
		return nil
	},
}

func Execute(a Assets) {
	assets = a
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
}

// envBindings maps config keys to the unprefixed variables deployments
// already set.
var envBindings = map[string][]string{
	"sanity.token": {"SANITY_AUTH_TOKEN"},
	"analyze":      {"ANALYZE"},
	"databaseURL":  {"DATABASE_URL"},
	"port":         {"PORT"},
	"environment":  {"NODE_ENV"},
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("environment", "development")
	v.SetDefault("port", "8080")
	v.SetDefault("analyze", false)
	v.SetDefault("databaseURL", "")
	v.SetDefault("sanity.projectID", "2wkojhph")
	v.SetDefault("sanity.dataset", "production")
	v.SetDefault("sanity.apiVersion", "2024-01-01")
	v.SetDefault("sanity.token", "")
	v.SetDefault("sanity.timeout", "30s")
	v.SetDefault("cache.ttl", "60s")
	v.SetDefault("preview.secretHash", "")
	v.SetDefault("preview.webhookSecretHash", "")
	v.SetDefault("preview.sessionTTL", "1h")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetEnvPrefix("CIV")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// No default: unset means "follow the environment".
	_ = v.BindEnv("sanity.useCDN")
	for key, names := range envBindings {
		_ = v.BindEnv(append([]string{key, "CIV_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, names...)...)
	}
	return v
}

func initializeConfig(_ *cobra.Command) error {
	v := newViper()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		if cfgFile != "" {
			return fmt.Errorf("config file %s not found: %w", cfgFile, err)
		}
	}

	if err := v.Unmarshal(&appConfig); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if used := v.ConfigFileUsed(); used != "" {
		slog.Debug("Using config file", slog.String("path", used))
	}
	return appConfig.Validate()
}

func setupLogger(c config.Log) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if c.Format == "json" {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}
