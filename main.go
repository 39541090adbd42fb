package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pubtrack/config"
	"pubtrack/models"
	"pubtrack/providers/dblp"
	"pubtrack/providers/openalex"
	"pubtrack/rankings"
	"pubtrack/services"
)

var newPublicationsCounter prometheus.Counter

func init() {
	newPublicationsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "new_publications_added_total",
			Help: "Total number of new publications added to the database.",
		},
	)
	prometheus.MustRegister(newPublicationsCounter)
}

func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	logging.Info("Successfully connected to database.")

	logging.Info("Running database auto-migration...")
	db.AutoMigrate(
		&models.Laboratory{}, &models.Researcher{},
		&models.Journal{}, &models.JournalRanking{},
		&models.JournalPublication{}, &models.JournalAuthorship{},
		&models.Conference{}, &models.ConferenceRanking{},
		&models.ConferencePublication{}, &models.ConferenceAuthorship{},
		&models.EnrichmentRun{},
	)

	catalog, err := rankings.OpenCatalog(cfg.RankingsDir, logging)
	if err != nil {
		logging.Fatal("Ranking catalog unavailable", zap.String("dir", cfg.RankingsDir), zap.Error(err))
	}

	openalexFetcher := openalex.NewFetcher(cfg, logging)
	dblpFetcher := dblp.NewFetcher(cfg, logging)
	enrichService := services.NewEnrichmentService(cfg, db, logging, openalexFetcher, dblpFetcher, catalog)
	statsService := services.NewStatisticsService(db, logging)

	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(apiKeyAuthMiddleware(cfg))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	setupLaboratoryRoutes(router, db, logging)
	setupResearcherRoutes(router, db, logging)
	setupJournalRoutes(router, db, logging)
	setupConferenceRoutes(router, db, logging)
	setupPublicationRoutes(router, db, logging)
	setupEnrichmentRoutes(router, db, enrichService)
	setupStatisticsRoutes(router, statsService, logging)

	cronScheduler := cron.New()
	cronScheduler.AddFunc(cfg.CronSchedule, func() {
		logging.Info("Running scheduled enrichment job...")
		result, err := enrichService.RunForAllResearchers(context.Background())
		if err != nil {
			logging.Error("Cron job failed", zap.Error(err))
			return
		}
		logging.Info("Cron job completed", zap.Int("new_publications", result.PublicationsCreated))
		newPublicationsCounter.Add(float64(result.PublicationsCreated))
	})
	cronScheduler.Start()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}
