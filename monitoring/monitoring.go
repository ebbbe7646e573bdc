package monitoring

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	LoginSuccess = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "login_success_total",
		Help: "Total successful login attempts",
	})

	LoginFailure = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "login_failure_total",
		Help: "Total failed login attempts",
	}, []string{"reason"})

	SignupSuccess = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "signup_success_total",
		Help: "Total successful signups",
	})

	MessagesPosted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "messages_posted_total",
		Help: "Total messages successfully posted",
	})

	FollowActions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "follow_actions_total",
		Help: "Total follow and unfollow actions",
	}, []string{"action"})

	LikesToggled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "likes_toggled_total",
		Help: "Total like toggles by resulting state",
	}, []string{"action"})

	AccountsDeleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "accounts_deleted_total",
		Help: "Total deleted accounts",
	})
)

func init() {
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(LoginSuccess)
	prometheus.MustRegister(LoginFailure)
	prometheus.MustRegister(SignupSuccess)
	prometheus.MustRegister(MessagesPosted)
	prometheus.MustRegister(FollowActions)
	prometheus.MustRegister(LikesToggled)
	prometheus.MustRegister(AccountsDeleted)
}

// Middleware to track request timing and status code
type statusRecordingWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecordingWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// InstrumentHandler observes RequestDuration. It is meant for
// router.Use so the route label is the matched path template and not
// the raw path.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &statusRecordingWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		RequestDuration.WithLabelValues(r.Method, routeName(r), strconv.Itoa(rw.statusCode)).
			Observe(time.Since(start).Seconds())
	})
}

func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return "unmatched"
}

type requestIDKey struct{}

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

// RequestID reuses the incoming X-Request-ID or generates one, echoes it
// on the response and stores it in the request context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// RequestIDFrom returns the id stored by RequestID, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestLogger logs every request once it completes. Requests slower
// than slow are logged at warn level.
func RequestLogger(slow time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &statusRecordingWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)
			elapsed := time.Since(start)

			entry := logrus.WithFields(logrus.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      rw.statusCode,
				"duration_ms": elapsed.Milliseconds(),
				"request_id":  RequestIDFrom(r.Context()),
				"remote_addr": r.RemoteAddr,
			})

			switch {
			case slow > 0 && elapsed > slow:
				entry.Warn("Slow request")
			case rw.statusCode >= http.StatusInternalServerError:
				entry.Error("Request failed")
			default:
				entry.Info("Request handled")
			}
		})
	}
}
