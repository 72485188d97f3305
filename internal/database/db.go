package database

import (
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"pos-backend/internal/config"
	"pos-backend/internal/models"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect to database")
	}

	if err := Migrate(DB); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	seedAdmin(cfg)

	log.Info().Msg("database connected, migration complete")
}

// Migrate runs AutoMigrate for every model. Delete policies live on the
// model constraint tags: items and payments cascade with their order,
// everything referenced by order history is RESTRICT.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Menu{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.AuditLog{},
		&models.AuthToken{},
	)
}

// seedAdmin creates the first Admin account from env when no users exist,
// otherwise the role-gated API could never be reached.
func seedAdmin(cfg *config.Config) {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return
	}

	var count int64
	DB.Model(&models.User{}).Count(&count)
	if count > 0 {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("could not hash seed admin password")
		return
	}

	admin := models.User{
		Name:         "Administrator",
		Username:     cfg.AdminUsername,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	if err := DB.Create(&admin).Error; err != nil {
		log.Error().Err(err).Msg("could not seed admin user")
		return
	}
	log.Info().Str("username", admin.Username).Msg("seeded initial admin user")
}
