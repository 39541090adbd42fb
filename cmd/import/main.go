package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pubtrack/config"
	"pubtrack/models"
)

// Imports researchers from a headerless CSV file with the columns
// last name, first name, email, grade and an optional fifth lab name.
// Existing researchers are matched by email and left untouched.
func main() {
	csvPath := flag.String("file", "", "path to the researcher CSV file")
	flag.Parse()
	if *csvPath == "" {
		log.Fatal("missing -file argument")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config load error: %v", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	db.AutoMigrate(&models.Laboratory{}, &models.Researcher{})

	f, err := os.Open(*csvPath)
	if err != nil {
		log.Fatalf("Cannot open %s: %v", *csvPath, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		log.Fatalf("Cannot parse %s: %v", *csvPath, err)
	}

	created, skipped := importRows(db, rows)
	fmt.Printf("Import done: %d created, %d skipped.\n", created, skipped)
}

// importRows inserts one researcher per row. A failing row is logged and
// skipped; the import never aborts halfway through the file.
func importRows(db *gorm.DB, rows [][]string) (created, skipped int) {
	for i, row := range rows {
		if len(row) < 4 {
			log.Printf("Line %d: expected at least 4 columns, got %d. Skipping.", i+1, len(row))
			skipped++
			continue
		}
		last := strings.TrimSpace(row[0])
		first := strings.TrimSpace(row[1])
		email := strings.ToLower(strings.TrimSpace(row[2]))
		grade := strings.TrimSpace(row[3])
		if last == "" || first == "" || email == "" {
			log.Printf("Line %d: missing name or email. Skipping.", i+1)
			skipped++
			continue
		}
		if grade != "" && !models.ValidGrade(grade) {
			log.Printf("Line %d: unknown grade %q. Skipping.", i+1, grade)
			skipped++
			continue
		}

		var existing models.Researcher
		if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
			skipped++
			continue
		}

		r := models.Researcher{
			LastName:  last,
			FirstName: first,
			Email:     email,
			Grade:     grade,
		}
		if len(row) > 4 && strings.TrimSpace(row[4]) != "" {
			labID, err := ensureLab(db, row[4])
			if err != nil {
				log.Printf("Line %d: creating lab failed: %v. Skipping.", i+1, err)
				skipped++
				continue
			}
			r.LabID = &labID
		}
		if err := db.Create(&r).Error; err != nil {
			log.Printf("Line %d: creating researcher failed: %v. Skipping.", i+1, err)
			skipped++
			continue
		}
		created++
	}
	return created, skipped
}

func ensureLab(db *gorm.DB, name string) (uint, error) {
	normalized := strings.ToUpper(strings.TrimSpace(name))
	var lab models.Laboratory
	err := db.Where("name = ?", normalized).First(&lab).Error
	if err == nil {
		return lab.ID, nil
	}
	if err != gorm.ErrRecordNotFound {
		return 0, err
	}
	lab = models.Laboratory{Name: name}
	if err := db.Create(&lab).Error; err != nil {
		return 0, err
	}
	return lab.ID, nil
}
