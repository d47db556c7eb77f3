// Package session holds the authenticated session state for a request and
// the process-wide profile cache behind it. The session is an explicit
// object placed on the request context by the auth middleware; everything
// downstream fails fast through FromContext instead of reaching for ambient
// globals or the store.
package session

import (
	"sync"

	"github.com/gin-gonic/gin"

	apperrors "kopilka/internal/errors"
	"kopilka/internal/models"
)

// ContextKey is the Gin context key the auth middleware stores the session
// under.
const ContextKey = "session"

// Session is the authenticated user identity plus the cached profile fields
// the presentation layer needs on every request.
type Session struct {
	UserID        string `json:"user_id"`
	Email         string `json:"email"`
	DisplayName   string `json:"display_name"`
	MonthlyIncome int64  `json:"monthly_income"`
	Currency      string `json:"currency"`
}

// FromContext returns the session established by the auth middleware.
// It fails fast with ErrUnauthorized when no session exists; operations
// must not reach the store on behalf of an unauthenticated caller.
func FromContext(c *gin.Context) (*Session, error) {
	v, exists := c.Get(ContextKey)
	if !exists {
		return nil, apperrors.ErrUnauthorized
	}
	s, ok := v.(*Session)
	if !ok || s == nil {
		return nil, apperrors.ErrUnauthorized
	}
	return s, nil
}

// Cache is the process-wide profile cache, keyed by user ID. Entries are
// created on login or first authenticated request and dropped on logout and
// on any profile mutation, so a session never serves stale income or
// currency.
type Cache struct {
	mu       sync.RWMutex
	profiles map[string]*Session
}

// NewCache creates an empty profile cache.
func NewCache() *Cache {
	return &Cache{profiles: make(map[string]*Session)}
}

// Get returns the cached session for a user, or nil.
func (c *Cache) Get(userID string) *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.profiles[userID]
}

// Put caches the session built from a user record.
func (c *Cache) Put(s *Session) {
	if s == nil || s.UserID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profiles[s.UserID] = s
}

// Invalidate drops a user's cached profile. Called on logout and after
// profile mutations (income or currency updates).
func (c *Cache) Invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.profiles, userID)
}

// Clear drops every cached profile.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profiles = make(map[string]*Session)
}

// FromUser builds a session snapshot from a user record.
func FromUser(u *models.User) *Session {
	return &Session{
		UserID:        u.ID,
		Email:         u.Email,
		DisplayName:   u.DisplayName,
		MonthlyIncome: u.MonthlyIncome,
		Currency:      u.Currency,
	}
}
