package models

// Follow links a follower to the user being followed. A row means
// UserFollowingID follows UserBeingFollowedID.
type Follow struct {
	UserBeingFollowedID uint `gorm:"primaryKey;autoIncrement:false"`
	UserFollowingID     uint `gorm:"primaryKey;autoIncrement:false;index"`

	UserBeingFollowed User `gorm:"foreignKey:UserBeingFollowedID;constraint:OnDelete:CASCADE"`
	UserFollowing     User `gorm:"foreignKey:UserFollowingID;constraint:OnDelete:CASCADE"`
}

// TableName overrides the table name used by GORM
func (Follow) TableName() string {
	return "follows"
}
