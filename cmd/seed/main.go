package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"payflow/internal/config"
	"payflow/internal/db"
	"payflow/internal/model"
	"payflow/internal/repository"
)

// SeedUserData represents one user entry in the seed fixture.
type SeedUserData struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

var defaultUsers = []SeedUserData{
	{Name: "Alice Demo", Email: "alice@example.com", Password: "alice-password"},
	{Name: "Bob Demo", Email: "bob@example.com", Password: "bob-password"},
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close(gormDB)
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	users := defaultUsers
	if url := os.Getenv("SEED_USERS_URL"); url != "" {
		log.Printf("Fetching users from: %s", url)
		users, err = fetchUsersFromAPI(url)
		if err != nil {
			log.Fatalf("Failed to fetch users: %v", err)
		}
		log.Printf("Fetched %d users", len(users))
	}

	userRepo := repository.NewUserRepository(gormDB)
	ctx := context.Background()

	seeded, skipped, err := seedUsers(ctx, userRepo, users)
	if err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - New users created: %d", seeded)
	log.Printf("  - Existing users skipped: %d", skipped)
}

// fetchUsersFromAPI fetches seed users from a JSON fixture URL.
func fetchUsersFromAPI(url string) ([]SeedUserData, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var users []SeedUserData
	if err := json.Unmarshal(body, &users); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	return users, nil
}

// seedUsers inserts users that do not exist yet; existing emails are left alone.
func seedUsers(ctx context.Context, repo repository.UserRepository, users []SeedUserData) (seeded int, skipped int, err error) {
	for _, item := range users {
		_, err := repo.FindByEmail(ctx, item.Email)
		if err == nil {
			skipped++
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return seeded, skipped, fmt.Errorf("error checking user %s: %w", item.Email, err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(item.Password), 10)
		if err != nil {
			return seeded, skipped, fmt.Errorf("error hashing password for %s: %w", item.Email, err)
		}

		user := model.User{
			Name:         item.Name,
			Email:        item.Email,
			PasswordHash: string(hash),
		}
		if err := repo.Create(ctx, &user); err != nil {
			return seeded, skipped, fmt.Errorf("error creating user %s: %w", item.Email, err)
		}
		seeded++
	}

	return seeded, skipped, nil
}
