package cmd

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/continuous-intelligence/cIV/internal/cache"
	"github.com/continuous-intelligence/cIV/internal/cms"
	"github.com/continuous-intelligence/cIV/internal/content"
	"github.com/continuous-intelligence/cIV/internal/database"
	"github.com/continuous-intelligence/cIV/internal/imageurl"
	"github.com/continuous-intelligence/cIV/internal/page"
	"github.com/continuous-intelligence/cIV/server"
)

const (
	maintenanceInterval = 10 * time.Minute
	snapshotRetention   = 7 * 24 * time.Hour
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the site",
}

func init() {
	// RunE is assigned here rather than in the literal above to avoid an
	// initialization cycle (serve reads serveCmd's flags).
	serveCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	}
	serveCmd.Flags().String("port", "", "port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func cmsConfig() cms.Config {
	return cms.Config{
		ProjectID:  appConfig.Sanity.ProjectID,
		Dataset:    appConfig.Sanity.Dataset,
		APIVersion: appConfig.Sanity.APIVersion,
		UseCDN:     appConfig.CDN(),
		Token:      appConfig.Sanity.Token,
		Timeout:    appConfig.Sanity.Timeout,
	}
}

func parseTemplates() (*template.Template, error) {
	funcs := template.FuncMap{
		"year": func() int { return time.Now().Year() },
	}
	tmpl, err := template.New("").Funcs(funcs).ParseFS(assets.Templates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}

func serve(ctx context.Context) error {
	if port, _ := serveCmd.Flags().GetString("port"); port != "" {
		appConfig.Port = port
	}

	cfg := cmsConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	tmpl, err := parseTemplates()
	if err != nil {
		return err
	}

	responses := cache.NewCache(appConfig.Cache.TTL)
	opts := []cms.Option{cms.WithCache(responses)}

	var db database.Database
	if appConfig.DatabaseURL != "" {
		dbCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		db, err = database.NewDatabase(dbCtx, appConfig.DatabaseURL)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()
		opts = append(opts, cms.WithSnapshots(db))

		n, err := db.CountSnapshots(ctx)
		if err != nil {
			slog.Error("Failed to count snapshots", "error", err)
		}
		slog.Info("Snapshot store enabled", slog.Int("snapshots", n))
	}

	clients := cms.NewClients(cfg, opts...)
	published := content.New(clients.Public)
	drafts := content.New(clients.Preview)
	source := func(preview bool) server.Content {
		if preview {
			return drafts
		}
		return published
	}

	if !clients.Preview.Authenticated() {
		slog.Warn("No CMS token configured; preview will only show published content")
	}
	slog.Info("CMS client configured",
		slog.String("project_id", cfg.ProjectID),
		slog.String("dataset", cfg.Dataset),
		slog.String("api_version", cfg.APIVersion),
		slog.Bool("use_cdn", cfg.UseCDN),
		slog.Bool("cached", clients.Public.Cached()),
		slog.String("preview_perspective", string(clients.Preview.Perspective())),
	)

	srv := server.NewServer(server.Config{
		Version:           assets.Version,
		Port:              appConfig.Port,
		Analyze:           appConfig.Analyze,
		PreviewSecretHash: appConfig.Preview.SecretHash,
		WebhookSecretHash: appConfig.Preview.WebhookSecretHash,
		SessionTTL:        appConfig.Preview.SessionTTL,
		SecureCookies:     appConfig.Production(),
	}, http.FS(assets.Static), tmpl.ExecuteTemplate, source, page.NewComposer(imageurl.New(cfg.ProjectID, cfg.Dataset)), clients.Public)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	go srv.Start()
	go housekeeping(ctx, srv, responses, db)

	slog.Info("Started server", slog.String("listen_addr", ":"+appConfig.Port), slog.String("version", assets.Version))
	<-ctx.Done()
	slog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
		srv.Close()
	}
	return nil
}

// housekeeping prunes expired in-memory state, and snapshots older than
// snapshotRetention, until ctx is done.
func housekeeping(ctx context.Context, srv *server.Server, responses *cache.Cache, db database.Database) {
	ticker := time.NewTicker(maintenanceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		entries := responses.Prune()
		sessions := srv.PruneSessions()
		slog.Debug("Pruned expired state", slog.Int("cache_entries", entries), slog.Int("sessions", sessions))

		if db == nil {
			continue
		}
		n, err := db.PruneSnapshots(ctx, time.Now().Add(-snapshotRetention))
		if err != nil {
			slog.Error("Failed to prune snapshots", "error", err)
			continue
		}
		if n > 0 {
			slog.Info("Pruned snapshots", slog.Int64("count", n))
		}
	}
}
