package models

// Like records that a user liked a message
type Like struct {
	UserID    uint `gorm:"primaryKey;autoIncrement:false"`
	MessageID uint `gorm:"primaryKey;autoIncrement:false;index"`

	User    User    `gorm:"constraint:OnDelete:CASCADE"`
	Message Message `gorm:"constraint:OnDelete:CASCADE"`
}

// TableName overrides the table name used by GORM
func (Like) TableName() string {
	return "likes"
}
