package handlers

import (
	"errors"
	"net/http"

	"warbler/forms"
	"warbler/monitoring"
	"warbler/repositories"
)

// AuthHandler handles signup, login and logout
type AuthHandler struct {
	*Handler
}

func NewAuthHandler(h *Handler) *AuthHandler {
	return &AuthHandler{Handler: h}
}

// Signup shows the signup form and creates the account on POST. A new
// account is logged in straight away.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		h.render(w, r, http.StatusOK, "signup", "Sign up", nil)
		return
	}

	var form forms.SignupForm
	if err := forms.Decode(r, &form); err != nil {
		h.render(w, r, http.StatusBadRequest, "signup", "Sign up", &form, notices(flashDanger, forms.Errors(err)...)...)
		return
	}

	user, err := h.users.Signup(r.Context(), form.Username, form.Email, form.Password, form.ImageURL)
	if errors.Is(err, repositories.ErrAlreadyExists) {
		h.render(w, r, http.StatusConflict, "signup", "Sign up", &form, notices(flashDanger, "Username or email already taken")...)
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	if err := h.login(w, r, user.ID); err != nil {
		h.serverError(w, r, err)
		return
	}
	monitoring.SignupSuccess.Inc()
	h.log(r).WithField("user_id", user.ID).Info("User signed up")
	http.Redirect(w, r, "/", http.StatusFound)
}

// Login shows the login form and checks the credentials on POST
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		h.render(w, r, http.StatusOK, "login", "Log in", nil)
		return
	}

	var form forms.LoginForm
	if err := forms.Decode(r, &form); err != nil {
		monitoring.LoginFailure.WithLabelValues("invalid_form").Inc()
		h.render(w, r, http.StatusBadRequest, "login", "Log in", &form, notices(flashDanger, forms.Errors(err)...)...)
		return
	}

	user, err := h.users.Authenticate(r.Context(), form.Username, form.Password)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if user == nil {
		monitoring.LoginFailure.WithLabelValues("invalid_credentials").Inc()
		h.render(w, r, http.StatusUnauthorized, "login", "Log in", &form, notices(flashDanger, "Invalid credentials.")...)
		return
	}

	if err := h.login(w, r, user.ID); err != nil {
		h.serverError(w, r, err)
		return
	}
	monitoring.LoginSuccess.Inc()
	h.flash(w, r, flashSuccess, "Hello, "+user.Username+"!")
	http.Redirect(w, r, "/", http.StatusFound)
}

// Logout forgets the current user
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.logout(w, r); err != nil {
		h.serverError(w, r, err)
		return
	}
	h.flash(w, r, flashInfo, "You have successfully logged out.")
	http.Redirect(w, r, "/login", http.StatusFound)
}
