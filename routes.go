package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"pubtrack/models"
	"pubtrack/services"
)

func setupLaboratoryRoutes(router *gin.Engine, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/labs")

	rg.POST("/", func(c *gin.Context) {
		var lab models.Laboratory
		if err := c.ShouldBindJSON(&lab); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if err := db.Create(&lab).Error; err != nil {
			log.Error("DB error creating lab", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create lab"})
			return
		}
		c.JSON(http.StatusCreated, lab)
	})

	rg.GET("/", func(c *gin.Context) {
		var labs []models.Laboratory
		if err := db.Find(&labs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, labs)
	})

	rg.GET("/:id", func(c *gin.Context) {
		var lab models.Laboratory
		if err := db.Preload("Researchers").First(&lab, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "lab not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, lab)
	})

	rg.PUT("/:id", func(c *gin.Context) {
		var lab models.Laboratory
		if err := db.First(&lab, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "lab not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		var updateData map[string]interface{}
		if err := c.ShouldBindJSON(&updateData); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := db.Model(&lab).Updates(updateData).Error; err != nil {
			log.Error("DB error updating lab", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update lab"})
			return
		}
		c.JSON(http.StatusOK, lab)
	})

	rg.DELETE("/:id", func(c *gin.Context) {
		if err := db.Delete(&models.Laboratory{}, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete lab"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "lab deleted"})
	})
}

func setupResearcherRoutes(router *gin.Engine, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/researchers")

	rg.POST("/", func(c *gin.Context) {
		var r models.Researcher
		if err := c.ShouldBindJSON(&r); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if r.Grade != "" && !models.ValidGrade(r.Grade) {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown grade %q", r.Grade)})
			return
		}
		if err := db.Create(&r).Error; err != nil {
			log.Error("DB error creating researcher", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create researcher"})
			return
		}
		c.JSON(http.StatusCreated, r)
	})

	rg.GET("/", func(c *gin.Context) {
		query := db.Model(&models.Researcher{}).Preload("Lab")
		if labID := c.Query("lab_id"); labID != "" {
			query = query.Where("lab_id = ?", labID)
		}
		var researchers []models.Researcher
		if err := query.Find(&researchers).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, researchers)
	})

	rg.GET("/:id", func(c *gin.Context) {
		var r models.Researcher
		if err := db.Preload("Lab").First(&r, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "researcher not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, r)
	})

	rg.GET("/:id/publications", func(c *gin.Context) {
		id := c.Param("id")
		var r models.Researcher
		if err := db.First(&r, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "researcher not found"})
			return
		}

		var journalPubs []models.JournalPublication
		if err := db.Preload("Journal").
			Joins("JOIN journal_authorships ON journal_authorships.publication_id = journal_publications.id").
			Where("journal_authorships.researcher_id = ?", id).
			Find(&journalPubs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		var confPubs []models.ConferencePublication
		if err := db.Preload("Conference").
			Joins("JOIN conference_authorships ON conference_authorships.publication_id = conference_publications.id").
			Where("conference_authorships.researcher_id = ?", id).
			Find(&confPubs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"journal_publications":    journalPubs,
			"conference_publications": confPubs,
		})
	})

	rg.PUT("/:id", func(c *gin.Context) {
		var r models.Researcher
		if err := db.First(&r, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "researcher not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		var updateData map[string]interface{}
		if err := c.ShouldBindJSON(&updateData); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if grade, ok := updateData["grade"].(string); ok && grade != "" && !models.ValidGrade(grade) {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown grade %q", grade)})
			return
		}
		if err := db.Model(&r).Updates(updateData).Error; err != nil {
			log.Error("DB error updating researcher", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update researcher"})
			return
		}
		c.JSON(http.StatusOK, r)
	})

	rg.DELETE("/:id", func(c *gin.Context) {
		if err := db.Delete(&models.Researcher{}, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete researcher"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "researcher deleted"})
	})
}

func setupJournalRoutes(router *gin.Engine, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/journals")

	rg.GET("/", func(c *gin.Context) {
		var journals []models.Journal
		if err := db.Find(&journals).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, journals)
	})

	rg.GET("/:id", func(c *gin.Context) {
		var journal models.Journal
		if err := db.Preload("Rankings").Preload("Publications").First(&journal, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "journal not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, journal)
	})

	rg.GET("/:id/rankings", func(c *gin.Context) {
		var rankingRows []models.JournalRanking
		if err := db.Where("journal_id = ?", c.Param("id")).Order("year").Find(&rankingRows).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, rankingRows)
	})

	// Publications keep their rows; the journal reference goes NULL.
	rg.DELETE("/:id", func(c *gin.Context) {
		if err := db.Delete(&models.Journal{}, c.Param("id")).Error; err != nil {
			log.Error("DB error deleting journal", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete journal"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "journal deleted"})
	})
}

func setupConferenceRoutes(router *gin.Engine, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/conferences")

	rg.GET("/", func(c *gin.Context) {
		var conferences []models.Conference
		if err := db.Find(&conferences).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, conferences)
	})

	rg.GET("/:id", func(c *gin.Context) {
		var conf models.Conference
		if err := db.Preload("Rankings").Preload("Publications").First(&conf, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "conference not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, conf)
	})

	rg.GET("/:id/rankings", func(c *gin.Context) {
		var rankingRows []models.ConferenceRanking
		if err := db.Where("conference_id = ?", c.Param("id")).Order("year").Find(&rankingRows).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, rankingRows)
	})

	rg.DELETE("/:id", func(c *gin.Context) {
		if err := db.Delete(&models.Conference{}, c.Param("id")).Error; err != nil {
			log.Error("DB error deleting conference", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete conference"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "conference deleted"})
	})
}

func setupPublicationRoutes(router *gin.Engine, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/publications")

	// Body-driven endpoint for filtered queries over both families.
	rg.POST("/query", func(c *gin.Context) {
		type PublicationQuery struct {
			Kind       string `json:"kind"`
			Year       int    `json:"year"`
			OpenAccess *bool  `json:"open_access"`
			Limit      int    `json:"limit"`
		}
		var req PublicationQuery
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		resp := gin.H{}
		if req.Kind == "" || req.Kind == "journal" {
			query := db.Model(&models.JournalPublication{}).Preload("Journal")
			if req.Year > 0 {
				query = query.Where("year = ?", req.Year)
			}
			if req.OpenAccess != nil {
				query = query.Where("open_access = ?", *req.OpenAccess)
			}
			if req.Limit > 0 {
				query = query.Limit(req.Limit)
			}
			var pubs []models.JournalPublication
			if err := query.Order("year desc").Find(&pubs).Error; err != nil {
				log.Error("Database query for journal publications failed", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
				return
			}
			resp["journal_publications"] = pubs
		}
		if req.Kind == "" || req.Kind == "conference" {
			query := db.Model(&models.ConferencePublication{}).Preload("Conference")
			if req.Year > 0 {
				query = query.Where("year = ?", req.Year)
			}
			if req.OpenAccess != nil {
				query = query.Where("open_access = ?", *req.OpenAccess)
			}
			if req.Limit > 0 {
				query = query.Limit(req.Limit)
			}
			var pubs []models.ConferencePublication
			if err := query.Order("year desc").Find(&pubs).Error; err != nil {
				log.Error("Database query for conference publications failed", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
				return
			}
			resp["conference_publications"] = pubs
		}
		c.JSON(http.StatusOK, resp)
	})

	rg.GET("/journal/:id", func(c *gin.Context) {
		var pub models.JournalPublication
		if err := db.Preload("Journal").First(&pub, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "publication not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, pub)
	})

	rg.GET("/conference/:id", func(c *gin.Context) {
		var pub models.ConferencePublication
		if err := db.Preload("Conference").First(&pub, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "publication not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, pub)
	})

	// Authorship links cascade with the publication row.
	rg.DELETE("/journal/:id", func(c *gin.Context) {
		if err := db.Delete(&models.JournalPublication{}, c.Param("id")).Error; err != nil {
			log.Error("DB error deleting publication", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete publication"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "publication deleted"})
	})

	rg.DELETE("/conference/:id", func(c *gin.Context) {
		if err := db.Delete(&models.ConferencePublication{}, c.Param("id")).Error; err != nil {
			log.Error("DB error deleting publication", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete publication"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "publication deleted"})
	})
}

func setupEnrichmentRoutes(router *gin.Engine, db *gorm.DB, enrichService *services.EnrichmentService) {
	rg := router.Group("/enrich")

	rg.POST("/all", func(c *gin.Context) {
		go func() {
			result, err := enrichService.RunForAllResearchers(context.Background())
			if err != nil {
				enrichService.Logger.Error("Async enrichment run failed", zap.Error(err))
				return
			}
			newPublicationsCounter.Add(float64(result.PublicationsCreated))
			enrichService.Logger.Info("Async enrichment run completed",
				zap.Int("new_publications", result.PublicationsCreated))
		}()
		c.JSON(http.StatusAccepted, gin.H{"message": "Enrichment for all researchers triggered."})
	})

	rg.POST("/researcher/:id", func(c *gin.Context) {
		var r models.Researcher
		if err := db.First(&r, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "researcher not found"})
			return
		}
		go func() {
			count, err := enrichService.RunForResearcher(context.Background(), &r)
			if err != nil {
				enrichService.Logger.Error("Async single enrichment failed",
					zap.String("researcher", r.FullName()), zap.Error(err))
				return
			}
			newPublicationsCounter.Add(float64(count))
			enrichService.Logger.Info("Async single enrichment completed",
				zap.Int("new_publications", count), zap.String("researcher", r.FullName()))
		}()
		c.JSON(http.StatusAccepted, gin.H{"message": fmt.Sprintf("Enrichment for %s triggered.", r.FullName())})
	})

	rg.GET("/runs", func(c *gin.Context) {
		var runs []models.EnrichmentRun
		if err := db.Order("started_at desc").Limit(50).Find(&runs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, runs)
	})
}

func setupStatisticsRoutes(router *gin.Engine, statsService *services.StatisticsService, log *zap.Logger) {
	rg := router.Group("/statistics")

	rg.GET("/global", func(c *gin.Context) {
		stats, err := statsService.Global()
		if err != nil {
			log.Error("Computing global statistics failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	rg.GET("/labs/:id", func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lab id"})
			return
		}
		stats, err := statsService.ForLab(uint(id))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "lab not found"})
				return
			}
			log.Error("Computing lab statistics failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, stats)
	})
}
