package web

import (
	"context"
	"net/http"
	"net/url"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mesh-intelligence/gamevault/internal/i18n"
	"github.com/mesh-intelligence/gamevault/pkg/types"
)

type ctxKey int

const (
	ctxLocalizer ctxKey = iota
	ctxUser
)

const (
	sessionCookie = "gamevault_session"
	langCookie    = "lang"
)

type httpMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newHTTPMetrics(reg prometheus.Registerer) *httpMetrics {
	f := promauto.With(reg)
	return &httpMetrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gamevault_http_requests_total",
			Help: "HTTP requests by route, method and status code",
		}, []string{"route", "method", "code"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gamevault_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// logRequests logs one line per request after it completes.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// recoverPanics turns a panicking handler into a 500.
func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil || rec == http.ErrAbortHandler {
				return
			}
			s.logger.Error("handler panic",
				"panic", rec,
				"path", r.URL.Path,
				"stack", string(debug.Stack()))
			w.Header().Set("Connection", "close")
			if isAPI(r) {
				writeError(w, http.StatusInternalServerError, "internal", localizer(r).T(i18n.KeyGenericError))
				return
			}
			http.Error(w, localizer(r).T(i18n.KeyGenericError), http.StatusInternalServerError)
		}()
		next.ServeHTTP(w, r)
	})
}

// instrument records request counts and durations labelled by route pattern.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.requests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		s.metrics.duration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

// localize picks the request locale: the lang query parameter, then the lang
// cookie, then the configured locale, then Accept-Language.
func (s *Server) localize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		prefs := []string{r.URL.Query().Get("lang")}
		if c, err := r.Cookie(langCookie); err == nil {
			prefs = append(prefs, c.Value)
		}
		prefs = append(prefs, s.locale, r.Header.Get("Accept-Language"))
		loc := s.bundle.Localizer(s.bundle.Match(prefs...))
		ctx := context.WithValue(r.Context(), ctxLocalizer, loc)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func localizer(r *http.Request) *i18n.Localizer {
	loc, _ := r.Context().Value(ctxLocalizer).(*i18n.Localizer)
	return loc
}

func currentUser(r *http.Request) *types.User {
	u, _ := r.Context().Value(ctxUser).(*types.User)
	return u
}

func isAPI(r *http.Request) bool {
	return r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/")
}

// sessionToken reads the session from the cookie or a bearer header.
func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

// requireSession rejects requests without a valid session. Pages redirect to
// the login page with the original location in returnUrl; the API and the
// socket answer 401.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := s.auth.Verify(sessionToken(r))
		if err != nil {
			if isAPI(r) || r.URL.Path == "/ws" {
				writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
				return
			}
			target := "/login?returnUrl=" + url.QueryEscape(r.URL.RequestURI())
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}
		ctx := context.WithValue(r.Context(), ctxUser, &user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// safeReturnURL accepts only local absolute paths and falls back to /games.
func safeReturnURL(raw string) string {
	const fallback = "/games"
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return fallback
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	if u.Path == "/login" {
		return fallback
	}
	return raw
}
