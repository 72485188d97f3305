package testutil

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pos-backend/internal/auth"
	"pos-backend/internal/config"
	"pos-backend/internal/database"
	"pos-backend/internal/models"
)

// SetupDB points the global database handle at a fresh in-memory SQLite
// instance with the full schema migrated.
func SetupDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, database.Migrate(db))

	database.DB = db
	return db
}

// Config returns a config good enough for handler tests.
func Config() *config.Config {
	return &config.Config{
		HTTPPort:      "0",
		JWTSecret:     strings.Repeat("s", 32),
		TokenTTLHours: 1,
		CORSOrigins:   "*",
	}
}

// CreateUser inserts a user with the given role. The password is always
// "secret123".
func CreateUser(t *testing.T, db *gorm.DB, username string, role models.UserRole) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Name:         "Test " + username,
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// IssueToken creates a live auth token record for the user and returns the
// signed bearer token.
func IssueToken(t *testing.T, db *gorm.DB, cfg *config.Config, user *models.User) string {
	t.Helper()

	record := models.AuthToken{
		JTI:       uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, db.Create(&record).Error)

	token, err := auth.GenerateToken(cfg.JWTSecret, user, record.JTI, time.Hour)
	require.NoError(t, err)
	return token
}

// CreateCustomer inserts a customer session row.
func CreateCustomer(t *testing.T, db *gorm.DB, table, ref string) *models.Customer {
	t.Helper()

	customer := &models.Customer{TableNumber: table, OrderReference: ref}
	require.NoError(t, db.Create(customer).Error)
	return customer
}

// CreateMenu inserts an available menu item.
func CreateMenu(t *testing.T, db *gorm.DB, name string, price float64) *models.Menu {
	t.Helper()

	item := &models.Menu{
		Name:               name,
		Price:              price,
		Category:           "Mains",
		AvailabilityStatus: true,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}
