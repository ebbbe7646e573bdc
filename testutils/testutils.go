// Package testutils provides a throwaway database for package tests.
package testutils

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"warbler/database"
	"warbler/models"
)

// SetupTestDB opens a fresh in-memory sqlite database with every table
// migrated. It is closed when the test finishes.
func SetupTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	// bcrypt at default cost dominates test time
	models.PasswordCost = bcrypt.MinCost

	db, err := database.Connect("sqlite://:memory:")
	if err != nil {
		t.Fatalf("connect test database: %v", err)
	}
	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db.DB
}

// CreateUser signs up and saves a user, failing the test on error
func CreateUser(t testing.TB, db *gorm.DB, username, email, password string) *models.User {
	t.Helper()

	user, err := models.NewUser(username, email, password, "")
	if err != nil {
		t.Fatalf("build user %s: %v", username, err)
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

// CreateMessage saves a message authored by userID
func CreateMessage(t testing.TB, db *gorm.DB, userID uint, text string) *models.Message {
	t.Helper()

	msg := &models.Message{Text: text, UserID: userID}
	if err := db.Create(msg).Error; err != nil {
		t.Fatalf("create message %q: %v", text, err)
	}
	return msg
}
