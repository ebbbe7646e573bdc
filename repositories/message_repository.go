package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"warbler/models"
)

func newestFirst(table string) clause.OrderBy {
	return clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: clause.Column{Table: table, Name: "timestamp"}, Desc: true},
		{Column: clause.Column{Table: table, Name: "id"}, Desc: true},
	}}
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	return translateError(r.db.WithContext(ctx).Omit("User").Create(message).Error)
}

func (r *messageRepository) FindByID(ctx context.Context, id uint) (*models.Message, error) {
	var message models.Message
	if err := r.db.WithContext(ctx).Preload("User").First(&message, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &message, nil
}

// ByUser returns the newest messages written by userID
func (r *messageRepository) ByUser(ctx context.Context, userID uint, limit int) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		Order(newestFirst("")).
		Limit(limit).
		Find(&messages).Error
	return messages, translateError(err)
}

// Timeline returns the newest messages by userID and everyone they follow
func (r *messageRepository) Timeline(ctx context.Context, userID uint, limit int) ([]models.Message, error) {
	db := r.db.WithContext(ctx)
	following := db.Model(&models.Follow{}).
		Select("user_being_followed_id").
		Where("user_following_id = ?", userID)

	var messages []models.Message
	err := db.Preload("User").
		Where("user_id = ? OR user_id IN (?)", userID, following).
		Order(newestFirst("")).
		Limit(limit).
		Find(&messages).Error
	return messages, translateError(err)
}

func (r *messageRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Message{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	return translateError(err)
}

// ToggleLike likes the message for userID, or removes the like when it
// already exists. It returns whether the message is liked afterwards.
func (r *messageRepository) ToggleLike(ctx context.Context, userID, messageID uint) (bool, error) {
	liked := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var message models.Message
		if err := tx.First(&message, messageID).Error; err != nil {
			return err
		}
		if message.UserID == userID {
			return fmt.Errorf("%w: users cannot like their own messages", ErrSelfAction)
		}

		res := tx.Where("user_id = ? AND message_id = ?", userID, messageID).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}

		liked = true
		return tx.Omit("User", "Message").Create(&models.Like{UserID: userID, MessageID: messageID}).Error
	})
	if err != nil {
		return false, translateError(err)
	}
	return liked, nil
}

// Likes returns the messages userID liked, newest first
func (r *messageRepository) Likes(ctx context.Context, userID uint) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Preload("User").
		Joins("INNER JOIN likes ON likes.message_id = messages.id").
		Where("likes.user_id = ?", userID).
		Order(newestFirst("messages")).
		Find(&messages).Error
	return messages, translateError(err)
}

func (r *messageRepository) LikedIDs(ctx context.Context, userID uint) (map[uint]bool, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Like{}).Where("user_id = ?", userID).Pluck("message_id", &ids).Error
	if err != nil {
		return nil, translateError(err)
	}

	liked := make(map[uint]bool, len(ids))
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}
