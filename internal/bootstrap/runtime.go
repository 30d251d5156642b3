// Package bootstrap wires up the process-level runtime: database, Redis,
// and the optional development conveniences that run before the server starts.
package bootstrap

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"socialconnect/internal/cache"
	"socialconnect/internal/config"
	"socialconnect/internal/database"
	"socialconnect/internal/models"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// InitRuntime connects to the database and Redis and runs development
// bootstrap steps. The Redis client may be nil when the server is unreachable;
// callers degrade to running without realtime fan-out and rate limits.
func InitRuntime(cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if err := ensureDevRootStaff(cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development staff account: %w", err)
	}

	return db, r, nil
}

// ensureDevRootStaff creates or repairs the fixed staff account with user ID 1
// in development environments. Disabled unless DEV_BOOTSTRAP_ROOT is set.
func ensureDevRootStaff(cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapRoot {
		return nil
	}

	username := strings.TrimSpace(cfg.DevRootUsername)
	if username == "" {
		username = "sc_root"
	}
	email := strings.TrimSpace(strings.ToLower(cfg.DevRootEmail))
	if email == "" {
		email = "root@socialconnect.local"
	}
	password := cfg.DevRootPassword
	if password == "" {
		return fmt.Errorf("DEV_ROOT_PASSWORD must be set when DEV_BOOTSTRAP_ROOT is enabled")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash root password: %w", err)
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		var root models.User
		findErr := tx.First(&root, 1).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			root = models.User{
				ID:       1,
				Username: username,
				Email:    email,
				Password: string(hashedPassword),
				IsActive: true,
				IsStaff:  true,
			}
			if err := tx.Create(&root).Error; err != nil {
				return err
			}
			profile := models.Profile{UserID: root.ID, Visibility: models.VisibilityPublic}
			if err := tx.Create(&profile).Error; err != nil {
				return err
			}
		case findErr != nil:
			return findErr
		default:
			updates := map[string]any{"is_staff": true, "is_active": true}
			if cfg.DevRootForceCredentials {
				updates["username"] = username
				updates["email"] = email
				updates["password"] = string(hashedPassword)
			}
			if err := tx.Model(&models.User{}).Where("id = ?", 1).Updates(updates).Error; err != nil {
				return err
			}
		}

		// Ensure the users ID sequence is not behind explicit ID insertion.
		// This is PostgreSQL-specific.
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec(`
				SELECT setval(
					pg_get_serial_sequence('users', 'id'),
					GREATEST((SELECT COALESCE(MAX(id), 1) FROM users), 1),
					true
				)
			`).Error; err != nil {
				return fmt.Errorf("failed to reset users sequence: %w", err)
			}
		}

		return nil
	}); err != nil {
		return err
	}

	log.Printf("development staff bootstrap ensured for user ID 1 (%s)", email)
	return nil
}
