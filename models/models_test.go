package models_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"warbler/models"
	"warbler/testutils"
)

func TestUserModel(t *testing.T) {
	db := testutils.SetupTestDB(t)

	u := &models.User{
		Email:    "test@test.com",
		Username: "testuser",
		Password: "HASHED_PASSWORD",
	}
	require.NoError(t, db.Create(u).Error)

	assert.NotZero(t, u.ID)
	assert.Equal(t, models.DefaultImageURL, u.ImageURL)
	assert.Equal(t, models.DefaultHeaderImageURL, u.HeaderImageURL)

	var messages int64
	require.NoError(t, db.Model(&models.Message{}).Where("user_id = ?", u.ID).Count(&messages).Error)
	assert.Zero(t, messages)

	var followers int64
	require.NoError(t, db.Model(&models.Follow{}).Where("user_being_followed_id = ?", u.ID).Count(&followers).Error)
	assert.Zero(t, followers)
}

func TestUserString(t *testing.T) {
	u := &models.User{ID: 3, Email: "test@test.com", Username: "testuser"}

	s := u.String()
	assert.Contains(t, s, "testuser")
	assert.Contains(t, s, "test@test.com")
}

func TestNewUser(t *testing.T) {
	testutils.SetupTestDB(t)

	t.Run("HashesPassword", func(t *testing.T) {
		u, err := models.NewUser("testuser", "test@test.com", "HASHED_PASSWORD", "")
		require.NoError(t, err)

		assert.NotEqual(t, "HASHED_PASSWORD", u.Password)
		assert.True(t, strings.HasPrefix(u.Password, "$2"), "expected a bcrypt hash")
		assert.True(t, u.CheckPassword("HASHED_PASSWORD"))
		assert.False(t, u.CheckPassword("invalidPassword"))
	})

	t.Run("DefaultImage", func(t *testing.T) {
		u, err := models.NewUser("testuser", "test@test.com", "secret", "")
		require.NoError(t, err)
		assert.Equal(t, models.DefaultImageURL, u.ImageURL)

		u, err = models.NewUser("testuser", "test@test.com", "secret", "https://img.example.com/me.png")
		require.NoError(t, err)
		assert.Equal(t, "https://img.example.com/me.png", u.ImageURL)
	})

	t.Run("EmptyPassword", func(t *testing.T) {
		_, err := models.NewUser("testuser", "test@test.com", "", "")
		assert.ErrorIs(t, err, models.ErrMissingField)
	})
}

func TestUserCreateConstraints(t *testing.T) {
	db := testutils.SetupTestDB(t)
	testutils.CreateUser(t, db, "testuser", "test@test.com", "HASHED_PASSWORD")

	t.Run("DuplicateUsername", func(t *testing.T) {
		u, err := models.NewUser("testuser", "OKemail@test.com", "HASHED_PASSWORD", "")
		require.NoError(t, err)
		assert.Error(t, db.Create(u).Error)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		u, err := models.NewUser("OKusername", "test@test.com", "HASHED_PASSWORD", "")
		require.NoError(t, err)
		assert.Error(t, db.Create(u).Error)
	})

	t.Run("MissingFields", func(t *testing.T) {
		u, err := models.NewUser("", "", "HASHED_PASSWORD", "")
		require.NoError(t, err)
		assert.ErrorIs(t, db.Create(u).Error, models.ErrMissingField)
	})

	// the failed inserts rolled back and the handle is still usable
	ok := testutils.CreateUser(t, db, "OKusername", "OKemail@test.com", "HASHED_PASSWORD")
	assert.NotZero(t, ok.ID)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestMessageCreation(t *testing.T) {
	db := testutils.SetupTestDB(t)
	user := testutils.CreateUser(t, db, "testuser", "test@test.com", "testuser")

	msg := &models.Message{Text: "TEST MESSAGE", UserID: user.ID}
	require.NoError(t, db.Create(msg).Error)

	assert.NotZero(t, msg.ID)
	assert.WithinDuration(t, time.Now(), msg.Timestamp, time.Minute)

	var all []models.Message
	require.NoError(t, db.Find(&all).Error)
	assert.Len(t, all, 1)
}

func TestMessageCreation_Invalid(t *testing.T) {
	db := testutils.SetupTestDB(t)
	user := testutils.CreateUser(t, db, "testuser", "test@test.com", "testuser")

	t.Run("NoAuthor", func(t *testing.T) {
		err := db.Create(&models.Message{Text: "TEST MESSAGE"}).Error
		assert.ErrorIs(t, err, models.ErrMissingField)
	})

	t.Run("UnknownAuthor", func(t *testing.T) {
		err := db.Create(&models.Message{Text: "TEST MESSAGE", UserID: user.ID + 100}).Error
		assert.Error(t, err)
	})

	t.Run("EmptyText", func(t *testing.T) {
		err := db.Create(&models.Message{UserID: user.ID}).Error
		assert.ErrorIs(t, err, models.ErrMissingField)
	})

	t.Run("TooLong", func(t *testing.T) {
		err := db.Create(&models.Message{Text: strings.Repeat("x", models.MaxMessageLength+1), UserID: user.ID}).Error
		assert.ErrorIs(t, err, models.ErrTextTooLong)
	})

	t.Run("AtomicTransaction", func(t *testing.T) {
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&models.Message{Text: "TEST MESSAGE", UserID: user.ID}).Error; err != nil {
				return err
			}
			return tx.Create(&models.Message{Text: "TEST MESSAGE"}).Error
		})
		require.Error(t, err)
	})

	var count int64
	require.NoError(t, db.Model(&models.Message{}).Count(&count).Error)
	assert.Zero(t, count, "no partial writes expected")

	// the handle is still usable after the rollbacks
	testutils.CreateMessage(t, db, user.ID, "after rollback")
}
