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

	"strot/internal/auth"
	"strot/internal/db"
	"strot/internal/payments"
	"strot/internal/server"
	"strot/internal/storage"
	"strot/internal/store"

	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
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

	config, err := loadConfig(cCtx.String("env-prefix"))
	if err != nil {
		return err
	}

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	sessions, err := auth.NewSessionCodec(
		config.CookieName,
		config.CookieHashKey,
		config.CookieBlockKey,
		time.Duration(config.SessionMaxAgeSec)*time.Second,
		config.IsProduction(),
	)
	if err != nil {
		return err
	}

	repos := server.Repositories{
		Users:          store.NewUserRepository(pool),
		CommunityHeads: store.NewCommunityHeadRepository(pool),
		Categories:     store.NewCategoryRepository(pool),
		Donations:      store.NewDonationRepository(pool),
		Jobs:           store.NewJobRepository(pool),
		Workers:        store.NewWorkerRepository(pool),
		Applications:   store.NewApplicationRepository(pool),
		Workshops:      store.NewWorkshopRepository(pool),
		CSR:            store.NewCSRRepository(pool),
	}

	var integrations server.Integrations

	if config.CognitoEnabled() {
		awsConfig, err := loadAWSConfig(ctx)
		if err != nil {
			return err
		}

		cognitoClient := cognitoidentityprovider.NewFromConfig(awsConfig)
		integrations.Identity = auth.NewCognitoProvider(cognitoClient, config.CognitoClientID)

		verifier, err := auth.NewJWKSVerifier(ctx, config.CognitoIssuerURL)
		if err != nil {
			return fmt.Errorf("failed to set up token verifier: %w", err)
		}
		integrations.Verifier = verifier

		logger.Info("cognito sign in enabled")
	}

	if config.StorageEnabled() {
		s3Client := storage.NewS3Client(config.StorageEndpoint, config.StorageRegion, config.StorageAccessKeyID, config.StorageSecretKey)
		integrations.Proofs = storage.NewSupabaseStorage(s3Client, config.StorageBucketName, config.StoragePublicBaseURL)

		logger.WithField("bucket", config.StorageBucketName).Info("proof uploads enabled")
	}

	if config.StripeSecretKey != "" {
		integrations.Payments = payments.NewStripePayments(config.StripeSecretKey, config.CSRCurrency)

		logger.Info("stripe payment intents enabled")
	}

	srv := server.New(config, logger, sessions, repos, integrations)

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
