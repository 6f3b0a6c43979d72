package http

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type contextKey string

const (
	profileIDKey contextKey = "profile_id"
	requestIDKey contextKey = "request_id"
)

// ProfileCookie carries the visitor's profile ID. Carts and order logs are
// scoped to it.
const ProfileCookie = "storefront_profile"

const profileCookieMaxAge = 365 * 24 * time.Hour

// ProfileMiddleware reads the profile cookie, issuing a fresh profile on the
// first visit. There is no authentication: a profile is as anonymous as a
// browser's local storage.
func ProfileMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var profileID string
		if c, err := r.Cookie(ProfileCookie); err == nil {
			if _, err := uuid.Parse(c.Value); err == nil {
				profileID = c.Value
			}
		}

		if profileID == "" {
			profileID = uuid.New().String()
			http.SetCookie(w, &http.Cookie{
				Name:     ProfileCookie,
				Value:    profileID,
				Path:     "/",
				MaxAge:   int(profileCookieMaxAge.Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), profileIDKey, profileID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = "req-" + uuid.New().String()
		}

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getProfileIDFromContext(ctx context.Context) string {
	if profileID, ok := ctx.Value(profileIDKey).(string); ok {
		return profileID
	}
	return ""
}

func getRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithProfileID returns ctx carrying profileID, as ProfileMiddleware would.
func WithProfileID(ctx context.Context, profileID string) context.Context {
	return context.WithValue(ctx, profileIDKey, profileID)
}
