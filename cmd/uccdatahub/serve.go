package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"uccdatahub/internal/db"
	"uccdatahub/internal/importer"
	"uccdatahub/internal/payments"
	"uccdatahub/internal/server"
	"uccdatahub/internal/store"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP API server",
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

	if err := store.EnsureSchema(ctx, pool); err != nil {
		return err
	}

	userRepo := store.NewUserRepository(pool)
	profileRepo := store.NewProfileRepository(pool)
	configurationRepo := store.NewConfigurationRepository(pool)
	filingRepo := store.NewFilingRepository(pool)
	transactionRepo := store.NewTransactionRepository(pool)

	uploadImporter := importer.New(importer.NewFilingStore(filingRepo), logger)
	if config.S3ArchiveBucket != "" {
		awsConfig, err := loadAWSConfig(ctx)
		if err != nil {
			return err
		}
		uploadImporter = uploadImporter.WithArchive(s3.NewFromConfig(awsConfig), config.S3ArchiveBucket)
	}

	stripeClient := payments.NewStripeClient(config.StripeAPIKey)

	srv, err := server.New(
		config,
		logger,
		userRepo,
		profileRepo,
		configurationRepo,
		filingRepo,
		transactionRepo,
		uploadImporter,
		stripeClient,
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
