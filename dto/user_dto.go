package dto

import (
	"html/template"

	"warbler/models"
)

// UserDTO is the public part of a user. It never carries the password hash.
type UserDTO struct {
	ID             uint
	Username       string
	Email          string
	ImageURL       string
	HeaderImageURL string
	Bio            string
	Location       string
}

func NewUserDTO(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		ImageURL:       u.ImageURL,
		HeaderImageURL: u.HeaderImageURL,
		Bio:            u.Bio,
		Location:       u.Location,
	}
}

func NewUserDTOs(users []models.User) []UserDTO {
	out := make([]UserDTO, 0, len(users))
	for i := range users {
		out = append(out, *NewUserDTO(&users[i]))
	}
	return out
}

// ProfileDTO is everything the profile pages share: the user shown, their
// counters and how the viewer relates to them.
type ProfileDTO struct {
	User      UserDTO
	Messages  int64
	Following int64
	Followers int64
	Likes     int64

	IsOwner       bool
	CanFollow     bool
	ViewerFollows bool

	// hidden token input for the follow and delete forms
	CSRFField template.HTML
}

// Flash is a one-shot notice stored in the session
type Flash struct {
	Category string
	Message  string
}

// Page is the data every template receives
type Page struct {
	Title       string
	CurrentUser *UserDTO
	Flashes     []Flash
	CSRFField   template.HTML
	Data        interface{}
}

// ProfilePage backs the profile, following, followers and likes pages
type ProfilePage struct {
	Profile  ProfileDTO
	Messages MessageList
	Users    []UserDTO
}

// UsersPage backs the user listing and search results
type UsersPage struct {
	Query string
	Users []UserDTO
}
