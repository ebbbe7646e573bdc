package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/csrf"

	"warbler/dto"
	"warbler/forms"
	"warbler/models"
	"warbler/monitoring"
	"warbler/repositories"
)

// UserHandler serves the user listing, profiles and the follow, like and
// account actions
type UserHandler struct {
	*Handler
}

func NewUserHandler(h *Handler) *UserHandler {
	return &UserHandler{Handler: h}
}

// List shows all users, or those whose username contains ?q=
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	users, err := h.users.Search(r.Context(), query)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "users_index", "Users", dto.UsersPage{
		Query: query,
		Users: dto.NewUserDTOs(users),
	})
}

// Show renders a profile with the user's messages
func (h *UserHandler) Show(w http.ResponseWriter, r *http.Request) {
	user, profile, ok := h.loadProfile(w, r)
	if !ok {
		return
	}

	messages, err := h.messages.ByUser(r.Context(), user.ID, ProfileLimit)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	list, err := h.messageList(r, messages)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "users_show", "@"+user.Username, dto.ProfilePage{Profile: profile, Messages: list})
}

// Following lists who the user follows
func (h *UserHandler) Following(w http.ResponseWriter, r *http.Request) {
	h.showRelation(w, r, "users_following", h.users.Following)
}

// Followers lists who follows the user
func (h *UserHandler) Followers(w http.ResponseWriter, r *http.Request) {
	h.showRelation(w, r, "users_followers", h.users.Followers)
}

func (h *UserHandler) showRelation(w http.ResponseWriter, r *http.Request, page string, list func(ctx context.Context, id uint) ([]models.User, error)) {
	user, profile, ok := h.loadProfile(w, r)
	if !ok {
		return
	}

	users, err := list(r.Context(), user.ID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, page, "@"+user.Username, dto.ProfilePage{Profile: profile, Users: dto.NewUserDTOs(users)})
}

// Likes lists the messages the user liked
func (h *UserHandler) Likes(w http.ResponseWriter, r *http.Request) {
	user, profile, ok := h.loadProfile(w, r)
	if !ok {
		return
	}

	messages, err := h.messages.Likes(r.Context(), user.ID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	list, err := h.messageList(r, messages)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "users_likes", "@"+user.Username, dto.ProfilePage{Profile: profile, Messages: list})
}

// Follow makes the current user follow {id}
func (h *UserHandler) Follow(w http.ResponseWriter, r *http.Request) {
	curr, ok := h.requireLogin(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		h.NotFound(w, r)
		return
	}

	err := h.users.Follow(r.Context(), curr.ID, id)
	switch {
	case errors.Is(err, repositories.ErrSelfAction):
		h.flash(w, r, flashDanger, "You cannot follow yourself.")
	case err != nil:
		h.fail(w, r, err)
		return
	default:
		monitoring.FollowActions.WithLabelValues("follow").Inc()
	}
	http.Redirect(w, r, userURL(curr.ID, "/following"), http.StatusFound)
}

// StopFollowing makes the current user unfollow {id}
func (h *UserHandler) StopFollowing(w http.ResponseWriter, r *http.Request) {
	curr, ok := h.requireLogin(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		h.NotFound(w, r)
		return
	}

	if _, err := h.users.FindByID(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.users.Unfollow(r.Context(), curr.ID, id); err != nil {
		h.serverError(w, r, err)
		return
	}
	monitoring.FollowActions.WithLabelValues("unfollow").Inc()
	http.Redirect(w, r, userURL(curr.ID, "/following"), http.StatusFound)
}

// ToggleLike likes message {id} for the current user, or unlikes it when
// already liked
func (h *UserHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	curr, ok := h.requireLogin(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		h.NotFound(w, r)
		return
	}

	liked, err := h.messages.ToggleLike(r.Context(), curr.ID, id)
	switch {
	case errors.Is(err, repositories.ErrSelfAction):
		h.flash(w, r, flashDanger, "You cannot like your own message.")
	case err != nil:
		h.fail(w, r, err)
		return
	case liked:
		monitoring.LikesToggled.WithLabelValues("like").Inc()
	default:
		monitoring.LikesToggled.WithLabelValues("unlike").Inc()
	}
	http.Redirect(w, r, userURL(curr.ID, "/likes"), http.StatusFound)
}

// EditProfile updates the current user's profile after checking their
// password
func (h *UserHandler) EditProfile(w http.ResponseWriter, r *http.Request) {
	curr, ok := h.requireLogin(w, r)
	if !ok {
		return
	}

	if r.Method == http.MethodGet {
		h.render(w, r, http.StatusOK, "users_edit", "Edit Profile", &forms.ProfileForm{
			Username:       curr.Username,
			Email:          curr.Email,
			ImageURL:       curr.ImageURL,
			HeaderImageURL: curr.HeaderImageURL,
			Bio:            curr.Bio,
			Location:       curr.Location,
		})
		return
	}

	var form forms.ProfileForm
	if err := forms.Decode(r, &form); err != nil {
		h.render(w, r, http.StatusBadRequest, "users_edit", "Edit Profile", &form, notices(flashDanger, forms.Errors(err)...)...)
		return
	}
	if !curr.CheckPassword(form.Password) {
		h.flash(w, r, flashDanger, "Wrong password, please try again.")
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	updated := *curr
	updated.Username = form.Username
	updated.Email = form.Email
	updated.ImageURL = orDefault(form.ImageURL, models.DefaultImageURL)
	updated.HeaderImageURL = orDefault(form.HeaderImageURL, models.DefaultHeaderImageURL)
	updated.Bio = form.Bio
	updated.Location = form.Location

	err := h.users.Update(r.Context(), &updated)
	if errors.Is(err, repositories.ErrAlreadyExists) {
		h.render(w, r, http.StatusConflict, "users_edit", "Edit Profile", &form, notices(flashDanger, "Username or email already taken")...)
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.flash(w, r, flashSuccess, "Profile updated.")
	http.Redirect(w, r, userURL(curr.ID, ""), http.StatusFound)
}

// Delete removes the current user's account and logs them out
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	curr, ok := h.requireLogin(w, r)
	if !ok {
		return
	}

	if err := h.users.Delete(r.Context(), curr.ID); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.logout(w, r); err != nil {
		h.serverError(w, r, err)
		return
	}
	monitoring.AccountsDeleted.Inc()
	http.Redirect(w, r, "/signup", http.StatusFound)
}

// loadProfile fetches the user named by {id} with the header data every
// profile page shows. It writes the response itself when it fails.
func (h *UserHandler) loadProfile(w http.ResponseWriter, r *http.Request) (*models.User, dto.ProfileDTO, bool) {
	id, ok := pathID(r, "id")
	if !ok {
		h.NotFound(w, r)
		return nil, dto.ProfileDTO{}, false
	}

	ctx := r.Context()
	user, err := h.users.FindByID(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return nil, dto.ProfileDTO{}, false
	}
	stats, err := h.users.Stats(ctx, user.ID)
	if err != nil {
		h.serverError(w, r, err)
		return nil, dto.ProfileDTO{}, false
	}

	profile := dto.ProfileDTO{
		User:      *dto.NewUserDTO(user),
		Messages:  stats.Messages,
		Following: stats.Following,
		Followers: stats.Followers,
		Likes:     stats.Likes,
		CSRFField: csrf.TemplateField(r),
	}

	if viewer := CurrentUser(r); viewer != nil {
		profile.IsOwner = viewer.ID == user.ID
		profile.CanFollow = !profile.IsOwner
		if profile.CanFollow {
			profile.ViewerFollows, err = h.users.IsFollowing(ctx, viewer, user)
			if err != nil {
				h.serverError(w, r, err)
				return nil, dto.ProfileDTO{}, false
			}
		}
	}
	return user, profile, true
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
