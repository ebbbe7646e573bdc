package handlers

import (
	"encoding/gob"
	"net/http"

	"github.com/gorilla/sessions"

	"warbler/dto"
)

const (
	// SessionName is the cookie holding the session
	SessionName = "warbler_session"
	// CurrUserKey holds the logged in user's id in the session
	CurrUserKey = "curr_user"
)

func init() {
	gob.Register(dto.Flash{})
}

// NewSessionStore returns the cookie store used for logins and flashes.
// secure should be set when serving over https.
func NewSessionStore(secret string, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   3600 * 16, // 16 hours
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

func (h *Handler) session(r *http.Request) *sessions.Session {
	// a cookie that fails to decode still yields a fresh session
	session, _ := h.store.Get(r, SessionName)
	return session
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request, userID uint) error {
	session := h.session(r)
	session.Values[CurrUserKey] = userID
	return session.Save(r, w)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) error {
	session := h.session(r)
	delete(session.Values, CurrUserKey)
	return session.Save(r, w)
}

// flash queues a notice for the next rendered page
func (h *Handler) flash(w http.ResponseWriter, r *http.Request, category, message string) {
	session := h.session(r)
	session.AddFlash(dto.Flash{Category: category, Message: message})
	if err := session.Save(r, w); err != nil {
		h.log(r).WithError(err).Warn("Failed to save flash")
	}
}

func (h *Handler) takeFlashes(w http.ResponseWriter, r *http.Request) []dto.Flash {
	session := h.session(r)
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := session.Save(r, w); err != nil {
		h.log(r).WithError(err).Warn("Failed to clear flashes")
	}

	flashes := make([]dto.Flash, 0, len(raw))
	for _, f := range raw {
		if flash, ok := f.(dto.Flash); ok {
			flashes = append(flashes, flash)
		}
	}
	return flashes
}
