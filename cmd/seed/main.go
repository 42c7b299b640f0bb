// Package main provides a tool to seed the database with demo data.
//
// This seeds the built-in categories and creates a handful of demo users,
// products, votes, and comments for local development.
//
// Usage:
//
//	DATA_PATH=~/nichehunt go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/nichehunt/nichehunt-server/internal/auth"
	"github.com/nichehunt/nichehunt-server/internal/domain"
	"github.com/nichehunt/nichehunt-server/internal/dto"
	domainerrors "github.com/nichehunt/nichehunt-server/internal/errors"
	"github.com/nichehunt/nichehunt-server/internal/media/images"
	"github.com/nichehunt/nichehunt-server/internal/service"
	"github.com/nichehunt/nichehunt-server/internal/store/sqlite"
	"github.com/nichehunt/nichehunt-server/internal/validation"
)

type demoUser struct {
	email       string
	username    string
	displayName string
}

type demoProduct struct {
	maker       string // username of the submitting user
	name        string
	tagline     string
	description string
	websiteURL  string
	category    string // category slug
	tags        []string
}

var demoUsers = []demoUser{
	{"ana@example.com", "ana", "Ana Martins"},
	{"bruno@example.com", "bruno", "Bruno Costa"},
	{"clara@example.com", "clara", "Clara Lima"},
}

var demoProducts = []demoProduct{
	{
		maker:       "ana",
		name:        "LedgerLoom",
		tagline:     "Double-entry bookkeeping for indie hackers",
		description: "<p>A <strong>tiny</strong> accounting tool for one-person businesses. Import bank statements, tag transactions, export reports your accountant actually wants.</p>",
		websiteURL:  "https://ledgerloom.example.com",
		category:    "saas",
		tags:        []string{"bootstrapped", "accounting", "indie"},
	},
	{
		maker:       "bruno",
		name:        "KilnWatch",
		tagline:     "Remote monitoring for pottery kilns",
		description: "<p>Temperature curves, firing schedules, and alerts for small ceramic studios. Works with most thermocouples over a cheap ESP32 bridge.</p>",
		websiteURL:  "https://kilnwatch.example.com",
		category:    "hardware",
		tags:        []string{"iot", "ceramics"},
	},
	{
		maker:       "clara",
		name:        "GrazeMap",
		tagline:     "Pasture rotation planning for smallholders",
		description: "<p>Draw your paddocks, set rest periods, and get a rotation calendar that keeps your grass ahead of your herd.</p>",
		websiteURL:  "https://grazemap.example.com",
		category:    "developer-tools",
		tags:        []string{"farming", "maps"},
	},
}

func main() {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/nichehunt")
	}
	if err := os.MkdirAll(dataPath, 0o755); err != nil {
		log.Fatalf("Failed to create data path: %v", err)
	}

	fmt.Printf("Seeding database at: %s\n", dataPath)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := sqlite.Open(filepath.Join(dataPath, "nichehunt.db"), logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	validator := validation.New()

	categories := service.NewCategoryService(st, logger)
	if err := categories.Seed(ctx); err != nil {
		log.Fatalf("Failed to seed categories: %v", err)
	}
	fmt.Println("Categories seeded")

	key, err := auth.LoadOrGenerateKey(dataPath)
	if err != nil {
		log.Fatalf("Failed to load auth key: %v", err)
	}
	tokens, err := auth.NewTokenService(fmt.Sprintf("%x", key), 15*time.Minute, 720*time.Hour)
	if err != nil {
		log.Fatalf("Failed to create token service: %v", err)
	}

	avatars, err := images.NewStorage(dataPath, "avatars")
	if err != nil {
		log.Fatalf("Failed to create avatar storage: %v", err)
	}
	mirror := images.NewMirror(avatars, 5<<20, 10*time.Second, logger)

	sessions := service.NewSessionService(st, tokens, logger)
	profiles := service.NewProfileService(st, mirror, avatars, "http://localhost:8080", validator, logger)
	authSvc := service.NewAuthService(st, sessions, profiles, validator, logger)
	notifications := service.NewNotificationService(st, logger)
	products := service.NewProductService(st, dto.NewEnricher(st, logger), validator, logger)
	votes := service.NewVoteService(st, notifications, logger)
	comments := service.NewCommentService(st, notifications, validator, logger)

	// Create demo users, reusing existing accounts on reruns.
	userIDs := make(map[string]string, len(demoUsers))
	for _, u := range demoUsers {
		resp, err := authSvc.Register(ctx, service.RegisterRequest{
			Email:       u.email,
			Password:    "demo-password-123",
			Username:    u.username,
			DisplayName: u.displayName,
		}, auth.ClientInfo{UserAgent: "nichehunt-seed"})
		if err != nil {
			var derr *domainerrors.Error
			if errors.As(err, &derr) && derr.Code == domainerrors.CodeAlreadyExists {
				existing, getErr := st.GetUserByEmail(ctx, u.email)
				if getErr != nil {
					log.Fatalf("Failed to look up existing user %s: %v", u.email, getErr)
				}
				userIDs[u.username] = existing.ID
				fmt.Printf("User %s already exists\n", u.username)
				continue
			}
			log.Fatalf("Failed to register %s: %v", u.email, err)
		}
		userIDs[u.username] = resp.User.ID
		fmt.Printf("Created user %s\n", u.username)
	}

	// Create demo products.
	var created []*domain.Product
	for _, p := range demoProducts {
		category, err := categories.GetBySlug(ctx, p.category)
		if err != nil {
			log.Fatalf("Unknown category %s: %v", p.category, err)
		}

		product, err := products.Create(ctx, userIDs[p.maker], service.CreateProductRequest{
			Name:        p.name,
			Tagline:     p.tagline,
			Description: p.description,
			WebsiteURL:  p.websiteURL,
			CategoryID:  category.ID,
			Tags:        p.tags,
			Status:      string(domain.ProductStatusPublished),
		})
		if err != nil {
			var derr *domainerrors.Error
			if errors.As(err, &derr) && derr.Code == domainerrors.CodeAlreadyExists {
				fmt.Printf("Product %s already exists\n", p.name)
				continue
			}
			log.Fatalf("Failed to create product %s: %v", p.name, err)
		}
		created = append(created, product.Product)
		fmt.Printf("Created product %s (%s)\n", product.Name, product.Slug)
	}

	// Cross-vote and comment so the feed has some life in it.
	for _, product := range created {
		for username, userID := range userIDs {
			if userID == product.UserID {
				continue
			}
			if _, err := votes.Toggle(ctx, userID, product.ID); err != nil {
				log.Printf("Failed to vote as %s on %s: %v", username, product.Name, err)
			}
		}

		for username, userID := range userIDs {
			if userID == product.UserID {
				continue
			}
			_, err := comments.Create(ctx, userID, product.ID, service.CreateCommentRequest{
				Body: fmt.Sprintf("Congrats on the launch, this looks great! (from %s)", username),
			})
			if err != nil {
				log.Printf("Failed to comment as %s on %s: %v", username, product.Name, err)
			}
			break
		}
	}

	fmt.Printf("Done: %d users, %d products\n", len(userIDs), len(created))
}
