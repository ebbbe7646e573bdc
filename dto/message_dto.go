package dto

import (
	"html/template"
	"time"

	"warbler/models"
)

// MessageDTO is a message as the templates render it
type MessageDTO struct {
	ID        uint
	Text      string
	Timestamp string
	UserID    uint
	Username  string
	ImageURL  string
	Liked     bool
	Own       bool
}

// MessageList is a rendered list of messages. CanLike is set when a
// viewer is logged in.
type MessageList struct {
	Items     []MessageDTO
	CanLike   bool
	CSRFField template.HTML
}

const timestampLayout = "02 January 2006"

// NewMessageDTOs converts messages for display. liked marks the messages
// the viewer likes and viewerID marks their own; both may be zero.
func NewMessageDTOs(messages []models.Message, liked map[uint]bool, viewerID uint) []MessageDTO {
	out := make([]MessageDTO, 0, len(messages))
	for _, m := range messages {
		out = append(out, NewMessageDTO(m, liked[m.ID], viewerID))
	}
	return out
}

func NewMessageDTO(m models.Message, liked bool, viewerID uint) MessageDTO {
	return MessageDTO{
		ID:        m.ID,
		Text:      m.Text,
		Timestamp: m.Timestamp.In(time.UTC).Format(timestampLayout),
		UserID:    m.UserID,
		Username:  m.User.Username,
		ImageURL:  m.User.ImageURL,
		Liked:     liked,
		Own:       viewerID != 0 && viewerID == m.UserID,
	}
}
