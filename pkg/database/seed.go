package database

import (
	"errors"
	"fmt"
	"log"

	"filevault/internal/domain"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedConfig holds configuration for development seeding.
type SeedConfig struct {
	UserCount int
	Password  string
}

func DefaultSeedConfig() *SeedConfig {
	return &SeedConfig{
		UserCount: 3,
		Password:  "Password@123",
	}
}

// Seed creates a handful of test users for local development. Existing
// users with the same email are left untouched.
func Seed(db *gorm.DB, cfg *SeedConfig) ([]*domain.User, error) {
	if cfg == nil {
		cfg = DefaultSeedConfig()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var users []*domain.User
	for i := 1; i <= cfg.UserCount; i++ {
		userName := fmt.Sprintf("testuser%d", i)
		email := fmt.Sprintf("%s@filevault.local", userName)

		var existing domain.User
		err := db.Where("email = ?", email).First(&existing).Error
		if err == nil {
			users = append(users, &existing)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		user := &domain.User{
			Entity:       domain.Entity{CreatedBy: userName},
			UserName:     userName,
			Email:        email,
			PasswordHash: string(hash),
		}
		if err := db.Create(user).Error; err != nil {
			return nil, err
		}
		log.Printf("Seeded user %s", email)
		users = append(users, user)
	}
	return users, nil
}
