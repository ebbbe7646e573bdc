package models

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	DefaultImageURL       = "/static/images/default-pic.png"
	DefaultHeaderImageURL = "/static/images/warbler-hero.png"
)

// PasswordCost is the bcrypt cost used for new password hashes
var PasswordCost = bcrypt.DefaultCost

// User represents a Warbler account
type User struct {
	ID             uint   `gorm:"primaryKey"`
	Username       string `gorm:"uniqueIndex;not null"`
	Email          string `gorm:"uniqueIndex;not null"`
	Password       string `gorm:"not null" json:"-"`
	ImageURL       string `gorm:"not null"`
	HeaderImageURL string `gorm:"not null"`
	Bio            string `gorm:"type:text"`
	Location       string `gorm:"type:text"`
}

// TableName overrides the table name used by User to `users`
func (User) TableName() string {
	return "users"
}

// NewUser builds an unsaved user with a bcrypt hash of password.
// An empty imageURL falls back to DefaultImageURL.
func NewUser(username, email, password, imageURL string) (*User, error) {
	if password == "" {
		return nil, fmt.Errorf("%w: password", ErrMissingField)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	if imageURL == "" {
		imageURL = DefaultImageURL
	}

	return &User{
		Username: username,
		Email:    email,
		Password: string(hash),
		ImageURL: imageURL,
	}, nil
}

// CheckPassword reports whether password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

// BeforeCreate rejects users without the identifying fields and fills
// the image defaults.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if err := u.validate(); err != nil {
		return err
	}
	if u.ImageURL == "" {
		u.ImageURL = DefaultImageURL
	}
	if u.HeaderImageURL == "" {
		u.HeaderImageURL = DefaultHeaderImageURL
	}
	return nil
}

// BeforeUpdate keeps the same field rules on profile edits
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	return u.validate()
}

func (u *User) validate() error {
	switch {
	case u.Username == "":
		return fmt.Errorf("%w: username", ErrMissingField)
	case u.Email == "":
		return fmt.Errorf("%w: email", ErrMissingField)
	case u.Password == "":
		return fmt.Errorf("%w: password", ErrMissingField)
	}
	return nil
}

func (u *User) String() string {
	return fmt.Sprintf("<User #%d: %s, %s>", u.ID, u.Username, u.Email)
}
