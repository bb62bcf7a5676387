package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/vaporworks/gamerec/internal/config"
	"github.com/vaporworks/gamerec/internal/database"
	"github.com/vaporworks/gamerec/internal/services"
)

func main() {
	var (
		userFlag    = flag.String("user", "", "user id (uuid) to act as")
		limitFlag   = flag.Int("limit", 10, "number of recommendations to print")
		declareFlag = flag.String("declare", "", "comma-joined preference tags to declare first")
		rateFlag    = flag.Int64("rate", 0, "item id to rate before recommending")
		thumbsFlag  = flag.Bool("recommended", true, "polarity of the -rate submission")
	)
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := newLogger(cfg.Logging)

	userID, err := uuid.Parse(*userFlag)
	if err != nil {
		log.Fatalf("Invalid -user id: %v", err)
	}

	db, err := database.New(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.WithError(err).Warn("Error closing storage")
		}
	}()

	svc := services.New(cfg, logger, db, prometheus.NewRegistry())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if *declareFlag != "" {
		if err := svc.Preference.UpdateDeclaredTags(ctx, userID, *declareFlag); err != nil {
			logger.WithError(err).Fatal("Failed to declare preference tags")
		}
	}

	if *rateFlag != 0 {
		if err := svc.Feedback.Submit(ctx, userID, *rateFlag, *thumbsFlag); err != nil {
			logger.WithError(err).Fatal("Failed to submit rating")
		}
	}

	ids, err := svc.Recommender.Recommend(ctx, userID, *limitFlag, cfg.Recommendation)
	if err != nil {
		logger.WithError(err).Fatal("Failed to generate recommendations")
	}

	if len(ids) == 0 {
		fmt.Println("no recommendations")
		return
	}
	for rank, id := range ids {
		fmt.Printf("%d. item %d\n", rank+1, id)
	}
}

func newLogger(cfg config.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}
