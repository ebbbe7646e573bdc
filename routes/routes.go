package routes

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"warbler/handlers"
	"warbler/monitoring"
	"warbler/repositories"
	"warbler/templates"
)

// Dependencies are what the router needs from main
type Dependencies struct {
	DB                   *gorm.DB
	Store                sessions.Store
	SlowRequestThreshold time.Duration

	// CSRFKey is the 32 byte key behind the form tokens. Without one the
	// forms are not protected.
	CSRFKey []byte
	// SecureCookies marks the csrf cookie Secure. Off, requests are
	// treated as plain http and the Referer check is skipped.
	SecureCookies bool
}

// SetupRoutes initializes all the application routes
// The routing logic is isolated here
func SetupRoutes(deps Dependencies) (http.Handler, error) {
	views, err := templates.New()
	if err != nil {
		return nil, err
	}
	sqlDB, err := deps.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	base := handlers.NewHandler(
		repositories.NewUserRepository(deps.DB),
		repositories.NewMessageRepository(deps.DB),
		deps.Store,
		views,
	)
	authHandler := handlers.NewAuthHandler(base)
	userHandler := handlers.NewUserHandler(base)
	messageHandler := handlers.NewMessageHandler(base)
	systemHandler := handlers.NewSystemHandler(sqlDB)

	router := mux.NewRouter()
	router.Use(monitoring.InstrumentHandler)
	router.Use(base.LoadCurrentUser)

	// Auth routes
	router.HandleFunc("/signup", authHandler.Signup).Methods("GET", "POST")
	router.HandleFunc("/login", authHandler.Login).Methods("GET", "POST")
	router.HandleFunc("/logout", authHandler.Logout).Methods("GET")

	// User routes
	router.HandleFunc("/users", userHandler.List).Methods("GET")
	router.HandleFunc("/users/profile", userHandler.EditProfile).Methods("GET", "POST")
	router.HandleFunc("/users/delete", userHandler.Delete).Methods("POST")
	router.HandleFunc("/users/follow/{id:[0-9]+}", userHandler.Follow).Methods("POST")
	router.HandleFunc("/users/stop-following/{id:[0-9]+}", userHandler.StopFollowing).Methods("POST")
	router.HandleFunc("/users/add_like/{id:[0-9]+}", userHandler.ToggleLike).Methods("POST")
	router.HandleFunc("/users/{id:[0-9]+}", userHandler.Show).Methods("GET")
	router.HandleFunc("/users/{id:[0-9]+}/following", userHandler.Following).Methods("GET")
	router.HandleFunc("/users/{id:[0-9]+}/followers", userHandler.Followers).Methods("GET")
	router.HandleFunc("/users/{id:[0-9]+}/likes", userHandler.Likes).Methods("GET")

	// Message routes
	router.HandleFunc("/", messageHandler.Home).Methods("GET")
	router.HandleFunc("/messages/new", messageHandler.New).Methods("GET", "POST")
	router.HandleFunc("/messages/{id:[0-9]+}", messageHandler.Show).Methods("GET")
	router.HandleFunc("/messages/{id:[0-9]+}/delete", messageHandler.Delete).Methods("POST")

	// System routes
	router.HandleFunc("/health", systemHandler.Health).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	router.PathPrefix("/static/").Handler(templates.Static()).Methods("GET")

	router.NotFoundHandler = base.LoadCurrentUser(http.HandlerFunc(base.NotFound))

	var handler http.Handler = router
	if len(deps.CSRFKey) > 0 {
		handler = protect(deps, base)(handler)
	}
	handler = monitoring.RequestLogger(deps.SlowRequestThreshold)(handler)
	handler = monitoring.RequestID(handler)
	return handler, nil
}

// protect rejects unsafe requests that do not carry the form token
func protect(deps Dependencies, base *handlers.Handler) func(http.Handler) http.Handler {
	csrfMiddleware := csrf.Protect(deps.CSRFKey,
		csrf.CookieName("warbler_csrf"),
		csrf.Path("/"),
		csrf.HttpOnly(true),
		csrf.Secure(deps.SecureCookies),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(base.LoadCurrentUser(http.HandlerFunc(base.Forbidden))),
	)
	return func(next http.Handler) http.Handler {
		protected := csrfMiddleware(next)
		if deps.SecureCookies {
			return protected
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			protected.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}
}
