// Package main starts the travel site content API: configuration, logging,
// PostgreSQL, the media backend, services, handlers and the HTTP(S) server.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/atinyakov/travelsite/internal/config"
	"github.com/atinyakov/travelsite/internal/db"
	"github.com/atinyakov/travelsite/internal/logger"
	"github.com/atinyakov/travelsite/internal/media"
	"github.com/atinyakov/travelsite/internal/repository"
	"github.com/atinyakov/travelsite/internal/server/handler/http"
	"github.com/atinyakov/travelsite/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// A missing .env is fine; the environment and config file still apply.
	_ = godotenv.Load()
	options := config.Parse()

	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer postgresDB.Close()

	db.StartSoftDeleteCleaner(ctx, postgresDB, options.CleanInterval, options.EnquiryRetention, zapLogger)

	store, err := newMediaStore(ctx, options)
	if err != nil {
		zapLogger.Fatal("cannot init media store", zap.Error(err))
	}

	tokens := jwtauth.New("HS256", []byte(options.JWTSecret), nil)

	userRepo := repository.NewPostgresUserRepository(postgresDB)
	contentRepo := repository.NewPostgresContentRepository(postgresDB)

	authService, err := service.NewAuthService(userRepo, tokens, options.TokenTTL, service.Admin{
		Username: options.AdminUsername,
		Password: options.AdminPassword,
	})
	if err != nil {
		zapLogger.Fatal("cannot init auth service", zap.Error(err))
	}
	contentService := service.NewContentService(contentRepo, store, zapLogger)

	authHandler := &http.AuthHandler{AuthService: authService, Log: zapLogger}
	contentHandler := &http.ContentHandler{
		ContentService: contentService,
		ExportName:     service.ExportFilename,
		Log:            zapLogger,
	}

	router := http.NewRouter(authHandler, contentHandler, http.RouterOptions{
		Tokens:         tokens,
		AllowedOrigins: options.AllowedOrigins,
		Logger:         zapLogger,
	})

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	if options.TLSEnabled() {
		zapLogger.Info("starting HTTPS server", zap.String("addr", options.Port))
		err = server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
	} else {
		zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("server stopped", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}

// newMediaStore selects the upload backend named by options.MediaBackend.
func newMediaStore(ctx context.Context, options *config.Options) (media.Store, error) {
	if options.MediaBackend == "s3" {
		return media.NewS3Store(ctx, media.S3Config{
			Bucket:          options.S3.Bucket,
			Region:          options.S3.Region,
			Endpoint:        options.S3.Endpoint,
			AccessKeyID:     options.S3.AccessKeyID,
			SecretAccessKey: options.S3.SecretAccessKey,
			UsePathStyle:    options.S3.UsePathStyle,
		})
	}
	return media.NewFSStore(options.UploadDir)
}
