package db

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/diewo77/partner-admin/internal/models"
)

// Migrate applies the GORM auto-migrations for every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Partner{},
		&models.User{},
		&models.Product{},
		&models.Material{},
		&models.Supplier{},
		&models.Manager{},
		&models.Supply{},
		&models.Request{},
		&models.ProductComposition{},
	); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// UserVerifier reports whether the session's user row still exists.
// Lookup failures are returned as errors so callers can distinguish a
// missing user from an unreachable store.
func UserVerifier(gdb *gorm.DB) func(ctx context.Context, uid uint) (bool, error) {
	return func(ctx context.Context, uid uint) (bool, error) {
		var count int64
		if err := gdb.WithContext(ctx).Model(&models.User{}).Where(`"UserID" = ?`, uid).Count(&count).Error; err != nil {
			return false, err
		}
		return count > 0, nil
	}
}

// Seed creates the rows the application cannot run without: one manager
// record and one manager login. Idempotent.
func Seed(db *gorm.DB) error {
	var manager models.Manager
	if err := db.Where(`"FullName" = ?`, "Администратор").FirstOrCreate(&manager, models.Manager{FullName: "Администратор"}).Error; err != nil {
		return fmt.Errorf("seed manager: %w", err)
	}

	var count int64
	if err := db.Model(&models.User{}).Where(`"Role" = ?`, models.RoleManager).Count(&count).Error; err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if count > 0 {
		return nil
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin"
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	admin := models.User{
		Username: "admin",
		Email:    "admin@localhost",
		Password: string(hashed),
		Role:     models.RoleManager,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	return nil
}
