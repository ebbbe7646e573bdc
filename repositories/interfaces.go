package repositories

import (
	"context"

	"warbler/models"
)

// UserRepository persists users and the follow relation
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	Signup(ctx context.Context, username, email, password, imageURL string) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Search(ctx context.Context, query string) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error

	Follow(ctx context.Context, followerID, followedID uint) error
	Unfollow(ctx context.Context, followerID, followedID uint) error
	AddFollower(ctx context.Context, followedID, followerID uint) error
	RemoveFollower(ctx context.Context, followedID, followerID uint) error
	IsFollowing(ctx context.Context, user, other *models.User) (bool, error)
	IsFollowedBy(ctx context.Context, user, other *models.User) (bool, error)
	Followers(ctx context.Context, userID uint) ([]models.User, error)
	Following(ctx context.Context, userID uint) ([]models.User, error)
	Stats(ctx context.Context, userID uint) (UserStats, error)
}

// MessageRepository persists messages and likes
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	FindByID(ctx context.Context, id uint) (*models.Message, error)
	ByUser(ctx context.Context, userID uint, limit int) ([]models.Message, error)
	Timeline(ctx context.Context, userID uint, limit int) ([]models.Message, error)
	Delete(ctx context.Context, id uint) error

	ToggleLike(ctx context.Context, userID, messageID uint) (bool, error)
	Likes(ctx context.Context, userID uint) ([]models.Message, error)
	LikedIDs(ctx context.Context, userID uint) (map[uint]bool, error)
}

// UserStats holds the counters shown on a profile
type UserStats struct {
	Messages  int64
	Following int64
	Followers int64
	Likes     int64
}
