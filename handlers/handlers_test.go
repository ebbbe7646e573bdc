package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warbler/repositories"
	"warbler/templates"
	"warbler/testutils"
)

func newTestHandler(t *testing.T) *Handler {
	db := testutils.SetupTestDB(t)
	views, err := templates.New()
	require.NoError(t, err)
	return NewHandler(
		repositories.NewUserRepository(db),
		repositories.NewMessageRepository(db),
		NewSessionStore("test-secret-key", false),
		views,
	)
}

func TestNewSessionStore(t *testing.T) {
	store := NewSessionStore("secret", true)
	assert.Equal(t, "/", store.Options.Path)
	assert.True(t, store.Options.HttpOnly)
	assert.True(t, store.Options.Secure)
	assert.Equal(t, http.SameSiteLaxMode, store.Options.SameSite)
}

func TestPathID(t *testing.T) {
	cases := map[string]struct {
		id uint
		ok bool
	}{
		"12":   {12, true},
		"0":    {0, false},
		"-1":   {0, false},
		"abc":  {0, false},
		"9999": {9999, true},
	}
	for raw, want := range cases {
		req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": raw})
		id, ok := pathID(req, "id")
		assert.Equal(t, want.ok, ok, raw)
		assert.Equal(t, want.id, id, raw)
	}
}

func TestRequireLogin(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	user, ok := h.requireLogin(rec, httptest.NewRequest(http.MethodPost, "/users/delete", nil))
	assert.Nil(t, user)
	assert.False(t, ok)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.NotEmpty(t, rec.Result().Cookies(), "flash is stored in the session cookie")
}

func TestLoadCurrentUser(t *testing.T) {
	h := newTestHandler(t)
	user, err := h.users.Signup(context.Background(), "testuser", "test@test.com", "testuser", "")
	require.NoError(t, err)

	// log in on one request and carry the cookie to the next
	rec := httptest.NewRecorder()
	require.NoError(t, h.login(rec, httptest.NewRequest(http.MethodGet, "/", nil), user.ID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}

	var seen uint
	h.LoadCurrentUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u := CurrentUser(r); u != nil {
			seen = u.ID
		}
	})).ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, user.ID, seen)
}

func TestFail(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.fail(rec, httptest.NewRequest(http.MethodGet, "/users/1", nil), repositories.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.fail(rec, httptest.NewRequest(http.MethodGet, "/users/1", nil), errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

// likeErrMessages fails every ToggleLike with err
type likeErrMessages struct {
	repositories.MessageRepository
	err error
}

func (m likeErrMessages) ToggleLike(context.Context, uint, uint) (bool, error) {
	return false, m.err
}

func TestToggleLike_Errors(t *testing.T) {
	h := newTestHandler(t)
	user, err := h.users.Signup(context.Background(), "testuser", "test@test.com", "testuser", "")
	require.NoError(t, err)

	messages := h.messages
	likeWith := func(err error) *httptest.ResponseRecorder {
		h.messages = likeErrMessages{MessageRepository: messages, err: err}
		req := httptest.NewRequest(http.MethodPost, "/users/add_like/7", nil)
		req = mux.SetURLVars(req, map[string]string{"id": "7"})
		req = req.WithContext(context.WithValue(req.Context(), currentUserKey{}, user))
		rec := httptest.NewRecorder()
		NewUserHandler(h).ToggleLike(rec, req)
		return rec
	}

	rec := likeWith(fmt.Errorf("%w: users cannot like their own messages", repositories.ErrSelfAction))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, userURL(user.ID, "/likes"), rec.Header().Get("Location"))

	// a broken reference is not reported as liking your own message
	rec = likeWith(fmt.Errorf("%w: FOREIGN KEY constraint failed", repositories.ErrInvalidInput))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotContains(t, rec.Body.String(), "You cannot like your own message.")
}

type failingPinger struct{ err error }

func (p failingPinger) PingContext(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	NewSystemHandler(failingPinger{}).Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	NewSystemHandler(failingPinger{err: errors.New("down")}).Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unavailable"}`, rec.Body.String())
}

type brokenWriter struct {
	*httptest.ResponseRecorder
}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestHealth_WriteFailureIsLogged(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	NewSystemHandler(failingPinger{}).Health(brokenWriter{httptest.NewRecorder()}, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "Failed to write health response", hook.LastEntry().Message)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}
