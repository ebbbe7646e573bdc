package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"warbler/models"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create saves a user built by the caller
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return translateError(r.db.WithContext(ctx).Create(user).Error)
}

// Signup hashes the password and saves a new user
func (r *userRepository) Signup(ctx context.Context, username, email, password, imageURL string) (*models.User, error) {
	user, err := models.NewUser(username, email, password, imageURL)
	if err != nil {
		return nil, err
	}
	if err := r.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate returns the user when username and password match, and
// nil otherwise. Only database failures are reported as errors.
func (r *userRepository) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := r.FindByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !user.CheckPassword(password) {
		return nil, nil
	}
	return user, nil
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// Search lists users whose username contains query, ignoring case. An
// empty query lists everyone.
func (r *userRepository) Search(ctx context.Context, query string) ([]models.User, error) {
	var users []models.User
	tx := r.db.WithContext(ctx).Order("id")
	if query != "" {
		tx = tx.Where("LOWER(username) LIKE ?", "%"+strings.ToLower(query)+"%")
	}
	if err := tx.Find(&users).Error; err != nil {
		return nil, translateError(err)
	}
	return users, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if user.ID == 0 {
		return ErrInvalidInput
	}
	return translateError(r.db.WithContext(ctx).Save(user).Error)
}

// Delete removes the user together with their messages, follows and
// likes, including likes other users gave to those messages.
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			return err
		}

		var messageIDs []uint
		if err := tx.Model(&models.Message{}).Where("user_id = ?", id).Pluck("id", &messageIDs).Error; err != nil {
			return err
		}
		if len(messageIDs) > 0 {
			if err := tx.Where("message_id IN ?", messageIDs).Delete(&models.Like{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_being_followed_id = ? OR user_following_id = ?", id, id).Delete(&models.Follow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		return translateError(err)
	}

	logrus.WithField("user_id", id).Info("User deleted")
	return nil
}

// Follow records that followerID follows followedID. Following twice is
// a no-op.
func (r *userRepository) Follow(ctx context.Context, followerID, followedID uint) error {
	if followerID == followedID {
		return fmt.Errorf("%w: users cannot follow themselves", ErrSelfAction)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.User{}, followedID).Error; err != nil {
			return err
		}
		follow := models.Follow{UserBeingFollowedID: followedID, UserFollowingID: followerID}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&follow).Error
	})
	return translateError(err)
}

func (r *userRepository) Unfollow(ctx context.Context, followerID, followedID uint) error {
	err := r.db.WithContext(ctx).
		Where("user_following_id = ? AND user_being_followed_id = ?", followerID, followedID).
		Delete(&models.Follow{}).Error
	return translateError(err)
}

// AddFollower is Follow seen from the followed user's side
func (r *userRepository) AddFollower(ctx context.Context, followedID, followerID uint) error {
	return r.Follow(ctx, followerID, followedID)
}

func (r *userRepository) RemoveFollower(ctx context.Context, followedID, followerID uint) error {
	return r.Unfollow(ctx, followerID, followedID)
}

// IsFollowing reports whether user follows other
func (r *userRepository) IsFollowing(ctx context.Context, user, other *models.User) (bool, error) {
	return r.followExists(ctx, user.ID, other.ID)
}

// IsFollowedBy reports whether other follows user
func (r *userRepository) IsFollowedBy(ctx context.Context, user, other *models.User) (bool, error) {
	return r.followExists(ctx, other.ID, user.ID)
}

func (r *userRepository) followExists(ctx context.Context, followerID, followedID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_following_id = ? AND user_being_followed_id = ?", followerID, followedID).
		Count(&count).Error
	if err != nil {
		return false, translateError(err)
	}
	return count > 0, nil
}

// Followers lists the users following userID
func (r *userRepository) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("INNER JOIN follows ON follows.user_following_id = users.id").
		Where("follows.user_being_followed_id = ?", userID).
		Order("users.username").
		Find(&users).Error
	return users, translateError(err)
}

// Following lists the users userID follows
func (r *userRepository) Following(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("INNER JOIN follows ON follows.user_being_followed_id = users.id").
		Where("follows.user_following_id = ?", userID).
		Order("users.username").
		Find(&users).Error
	return users, translateError(err)
}

func (r *userRepository) Stats(ctx context.Context, userID uint) (UserStats, error) {
	var stats UserStats
	db := r.db.WithContext(ctx)

	counts := []struct {
		model interface{}
		where string
		dest  *int64
	}{
		{&models.Message{}, "user_id = ?", &stats.Messages},
		{&models.Follow{}, "user_following_id = ?", &stats.Following},
		{&models.Follow{}, "user_being_followed_id = ?", &stats.Followers},
		{&models.Like{}, "user_id = ?", &stats.Likes},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Where(c.where, userID).Count(c.dest).Error; err != nil {
			return UserStats{}, translateError(err)
		}
	}
	return stats, nil
}
