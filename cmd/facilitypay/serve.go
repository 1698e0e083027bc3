package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"facilitypay/internal/captcha"
	"facilitypay/internal/db"
	"facilitypay/internal/intake"
	"facilitypay/internal/server"
	"facilitypay/internal/storage"
	"facilitypay/internal/store"
	"facilitypay/pkg/types"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	config, err := loadConfig()
	if err != nil {
		return err
	}

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	files, err := buildFileStore(ctx, config)
	if err != nil {
		return err
	}

	facilityRepo := store.NewFacilityRepository(pool)
	formFieldRepo := store.NewFormFieldRepository(pool)
	documentRepo := store.NewDocumentRepository(pool)
	submissionRepo := store.NewSubmissionRepository(pool)
	adminRepo := store.NewAdminRepository(pool)
	settingsRepo := store.NewSettingsRepository(pool)

	captchaGen := captcha.New(config.CaptchaSalt)
	intakeService := intake.NewService(captchaGen, documentRepo, formFieldRepo, submissionRepo, files)

	srv, err := server.New(
		config,
		logger,
		captchaGen,
		intakeService,
		facilityRepo,
		formFieldRepo,
		documentRepo,
		submissionRepo,
		adminRepo,
		settingsRepo,
		files,
	)
	if err != nil {
		return err
	}

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}

func buildFileStore(ctx context.Context, config *types.Config) (storage.Store, error) {
	switch config.StorageBackend {
	case "s3":
		awsConfig, err := loadAWSConfig(ctx)
		if err != nil {
			return nil, err
		}
		return storage.NewS3Store(s3.NewFromConfig(awsConfig), config.S3Bucket), nil
	case "local":
		return storage.NewLocalStore(config.DataDir)
	}

	return nil, fmt.Errorf("unknown storage backend %q", config.StorageBackend)
}
