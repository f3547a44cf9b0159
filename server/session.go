package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/continuous-intelligence/cIV/internal/models"
)

const previewCookie = "preview"

func (s *Server) createSession() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		panic("failed to generate session token: " + err.Error())
	}
	token := hex.EncodeToString(bytes)

	s.sessionsMu.Lock()
	s.sessions[token] = time.Now().Add(s.cfg.SessionTTL)
	s.sessionsMu.Unlock()

	return token
}

func (s *Server) validateSession(token string) bool {
	if token == "" {
		return false
	}

	s.sessionsMu.RLock()
	expiry, exists := s.sessions[token]
	s.sessionsMu.RUnlock()

	if !exists {
		return false
	}

	if time.Now().After(expiry) {
		s.deleteSession(token)
		return false
	}

	return true
}

func (s *Server) deleteSession(token string) {
	s.sessionsMu.Lock()
	delete(s.sessions, token)
	s.sessionsMu.Unlock()
}

// PruneSessions drops expired sessions and returns how many it removed.
func (s *Server) PruneSessions() int {
	now := time.Now()
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()

	n := 0
	for token, expiry := range s.sessions {
		if now.After(expiry) {
			delete(s.sessions, token)
			n++
		}
	}
	return n
}

func (s *Server) getSessionFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(previewCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (s *Server) isPreview(r *http.Request) bool {
	return s.validateSession(s.getSessionFromRequest(r))
}

// checkSecret compares a presented secret with a configured bcrypt hash. An
// unset hash never matches.
func checkSecret(hash, secret string) bool {
	if hash == "" || secret == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

type requestKey int

const (
	previewKey requestKey = iota
	settingsKey
)

// WithSettings resolves the preview flag and the site settings once per
// page request. While maintenance mode is on, visitors without a preview
// session get the maintenance page instead.
func (s *Server) WithSettings(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		preview := s.isPreview(r)
		settings, err := s.content(preview).Settings(r.Context())
		if err != nil {
			s.logFetchError(r, "settings", err)
		}

		if !preview && settings != nil && settings.Maintenance != nil && bool(settings.Maintenance.Enabled) {
			view := s.pages.Maintenance(s.pages.Site(settings), settings.Maintenance.Message)
			w.Header().Set("Retry-After", "3600")
			s.render(w, http.StatusServiceUnavailable, "maintenance.html", view)
			return
		}

		ctx := context.WithValue(r.Context(), previewKey, preview)
		ctx = context.WithValue(ctx, settingsKey, settings)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func previewFrom(ctx context.Context) bool {
	preview, _ := ctx.Value(previewKey).(bool)
	return preview
}

func settingsFrom(ctx context.Context) *models.Settings {
	settings, _ := ctx.Value(settingsKey).(*models.Settings)
	return settings
}
