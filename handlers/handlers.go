package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/sirupsen/logrus"

	"warbler/dto"
	"warbler/models"
	"warbler/monitoring"
	"warbler/repositories"
	"warbler/templates"
)

// Page sizes for message lists
const (
	TimelineLimit = 100
	ProfileLimit  = 100
)

// Flash categories understood by the stylesheet
const (
	flashSuccess = "success"
	flashDanger  = "danger"
	flashInfo    = "info"
)

// Handler carries what every handler group needs
type Handler struct {
	users    repositories.UserRepository
	messages repositories.MessageRepository
	store    sessions.Store
	views    *templates.Renderer
}

func NewHandler(users repositories.UserRepository, messages repositories.MessageRepository, store sessions.Store, views *templates.Renderer) *Handler {
	return &Handler{
		users:    users,
		messages: messages,
		store:    store,
		views:    views,
	}
}

type currentUserKey struct{}

// LoadCurrentUser resolves the session's user id and stores the user in
// the request context. An id whose user no longer exists is dropped
// from the session.
func (h *Handler) LoadCurrentUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := h.session(r)
		id, ok := session.Values[CurrUserKey].(uint)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		user, err := h.users.FindByID(r.Context(), id)
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			delete(session.Values, CurrUserKey)
			if err := session.Save(r, w); err != nil {
				h.log(r).WithError(err).Warn("Failed to drop stale session")
			}
		case err != nil:
			h.serverError(w, r, err)
			return
		default:
			r = r.WithContext(context.WithValue(r.Context(), currentUserKey{}, user))
		}
		next.ServeHTTP(w, r)
	})
}

// CurrentUser returns the logged in user, or nil
func CurrentUser(r *http.Request) *models.User {
	user, _ := r.Context().Value(currentUserKey{}).(*models.User)
	return user
}

// requireLogin returns the current user. Without one it flashes and
// redirects home, and the caller must stop.
func (h *Handler) requireLogin(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user := CurrentUser(r)
	if user == nil {
		h.flash(w, r, flashDanger, "Access unauthorized.")
		http.Redirect(w, r, "/", http.StatusFound)
		return nil, false
	}
	return user, true
}

func (h *Handler) log(r *http.Request) *logrus.Entry {
	fields := logrus.Fields{
		"request_id": monitoring.RequestIDFrom(r.Context()),
		"path":       r.URL.Path,
	}
	if user := CurrentUser(r); user != nil {
		fields["user_id"] = user.ID
	}
	return logrus.WithFields(fields)
}

// render writes a page inside the layout. extra notices are shown along
// with any flashes waiting in the session.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data interface{}, extra ...dto.Flash) {
	page := dto.Page{
		Title:       title,
		CurrentUser: dto.NewUserDTO(CurrentUser(r)),
		Flashes:     append(h.takeFlashes(w, r), extra...),
		CSRFField:   csrf.TemplateField(r),
		Data:        data,
	}
	if err := h.views.Render(w, status, name, page); err != nil {
		h.log(r).WithError(err).WithField("template", name).Error("Failed to render page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// Forbidden renders the 403 page for posts that fail the CSRF check
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	h.log(r).WithError(csrf.FailureReason(r)).Warn("Rejected cross-site request")
	h.render(w, r, http.StatusForbidden, "forbidden", "Forbidden", nil)
}

// NotFound renders the 404 page
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, "not_found", "Not Found", nil)
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.log(r).WithError(err).Error("Request failed")
	h.render(w, r, http.StatusInternalServerError, "error", "Error", nil)
}

// fail maps a repository error to a response
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		h.NotFound(w, r)
	case errors.Is(err, repositories.ErrInvalidInput):
		h.log(r).WithError(err).Warn("Rejected invalid input")
		h.render(w, r, http.StatusBadRequest, "error", "Bad Request", nil)
	default:
		h.serverError(w, r, err)
	}
}

func pathID(r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)[name], 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func userURL(id uint, suffix string) string {
	return fmt.Sprintf("/users/%d%s", id, suffix)
}

func notices(category string, messages ...string) []dto.Flash {
	out := make([]dto.Flash, 0, len(messages))
	for _, m := range messages {
		out = append(out, dto.Flash{Category: category, Message: m})
	}
	return out
}
