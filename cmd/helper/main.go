package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jmswan/fivemhub/internal/entities"
	"github.com/jmswan/fivemhub/internal/helpers"
	"github.com/jmswan/fivemhub/internal/profiles"
)

func main() {
	app := &cli.App{
		Name: "Fivemhub Helper",
		Commands: []*cli.Command{
			runGenerateSessionSecret,
			runSeed,
		},
	}

	app.RunAndExitOnError()
}

var runGenerateSessionSecret = &cli.Command{
	Name:  "generate-session-secret",
	Usage: "print a random secret for SESSION_SECRET",
	Action: func(cmd *cli.Context) error {
		secret, err := helpers.GenerateToken(32)
		if err != nil {
			return err
		}

		fmt.Println(secret)

		return nil
	},
}

var runSeed = &cli.Command{
	Name:  "seed",
	Usage: "populate the database with sample catalog and forum content",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			Usage:   "path to the sqlite database",
			Value:   "fivemhub.db",
			EnvVars: []string{"DATABASE_PATH"},
		},
	},
	Action: func(cmd *cli.Context) error {
		db, err := gorm.Open(sqlite.Open(cmd.String("db")), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		})
		if err != nil {
			return fmt.Errorf("could not open database: %w", err)
		}

		if err := db.AutoMigrate(
			&profiles.Profile{},
			&entities.Asset{},
			&entities.ForumPost{},
			&entities.PostLike{},
			&entities.Report{},
			&entities.Notification{},
		); err != nil {
			return fmt.Errorf("could not migrate database: %w", err)
		}

		return seed(db)
	},
}

// seed is a no-op when the catalog already has content, so it is safe to run
// on an existing database.
func seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&entities.Asset{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		fmt.Println("database already has content, nothing to do")
		return nil
	}

	now := time.Now()

	assets := []entities.Asset{
		{
			ID:          uuid.NewString(),
			Title:       "Drift Vehicle Pack",
			Category:    "vehicles",
			Description: "Ten tuned drift cars with custom handling.",
			FileURL:     "https://cdn.example.com/assets/drift-pack.zip",
			AuthorEmail: "seed@fivemhub.local",
			CreatedAt:   now,
		},
		{
			ID:          uuid.NewString(),
			Title:       "Bank Heist Script",
			Category:    "scripts",
			Description: "Configurable multi-stage bank heist.",
			FileURL:     "https://cdn.example.com/assets/bank-heist.zip",
			AuthorEmail: "seed@fivemhub.local",
			CreatedAt:   now,
		},
		{
			ID:          uuid.NewString(),
			Title:       "Downtown Interiors",
			Category:    "maps",
			Description: "Furnished interiors for the downtown blocks.",
			FileURL:     "https://cdn.example.com/assets/downtown-interiors.zip",
			AuthorEmail: "seed@fivemhub.local",
			CreatedAt:   now,
		},
	}

	posts := []entities.ForumPost{
		{
			ID:          uuid.NewString(),
			Title:       "Welcome to the community",
			Content:     "Introduce yourself and read the rules before posting.",
			Category:    "announcements",
			AuthorEmail: "seed@fivemhub.local",
			CreatedAt:   now,
		},
		{
			ID:          uuid.NewString(),
			Title:       "Server setup guide",
			Content:     "A walkthrough for getting a fresh server online.",
			Category:    "guides",
			AuthorEmail: "seed@fivemhub.local",
			CreatedAt:   now,
		},
	}

	if err := db.Create(&assets).Error; err != nil {
		return err
	}

	if err := db.Create(&posts).Error; err != nil {
		return err
	}

	fmt.Printf("seeded %d assets and %d posts\n", len(assets), len(posts))

	return nil
}
