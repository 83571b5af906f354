package database

import (
	"log"

	"shipfire/config"
	"shipfire/internal/domain"
	"shipfire/internal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error), // Only log errors, not every SQL query
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Order{},
		&models.Credit{},
		&models.WebhookEvent{},
	)
}

// SeedAdmin creates the admin account on first boot. Skipped when
// ADMIN_PASSWORD is unset or the account already exists.
func SeedAdmin(db *gorm.DB, cfg *config.AppConfig) {
	if cfg.AdminPassword == "" {
		return
	}
	var count int64
	db.Model(&models.User{}).Where("email = ?", cfg.AdminEmail).Count(&count)
	if count > 0 {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[Seed] hash admin password: %v", err)
		return
	}
	admin := models.User{
		UUID:         uuid.NewString(),
		Email:        cfg.AdminEmail,
		Nickname:     "Admin",
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Printf("[Seed] create admin: %v", err)
		return
	}
	log.Printf("[Seed] admin account created: %s", cfg.AdminEmail)
}
