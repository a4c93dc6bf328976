// Package session holds the single signed-in identity of the running client:
// who the user is, the current Drive access token, and the on-disk
// persistence that lets both survive a restart. Sign-in is gated by a fixed
// allow-list of family email addresses.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sahilsync07/vaultify/internal/logging"
)

// authorizedEmails is the fixed allow-list gating session creation. Compare
// is case-insensitive. Anyone else simply does not get a session.
var authorizedEmails = []string{
	"patrosln07@gmail.com",
	"chitishreedevi1977@gmail.com",
	"sahilsync07@gmail.com",
	"suryainsingham2@gmail.com",
}

// User is the verified identity of a signed-in family member.
type User struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Session pairs an identity with the current access token. The token can be
// cleared independently of the identity: a 401 invalidates the token, not
// the sign-in.
type Session struct {
	User        User   `json:"user"`
	AccessToken string `json:"access_token,omitempty"`
}

// DefaultPath returns the session file location under the user config dir.
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "vaultify", "session.json"), nil
}

// Holder is the process-wide session state. All methods are safe for
// concurrent use.
type Holder struct {
	mu      sync.Mutex
	path    string
	session *Session
	log     logging.Logger
}

// NewHolder builds a Holder bound to the given session file and restores a
// previously persisted session if one exists. A corrupt or unreadable file
// is treated as no session.
func NewHolder(path string, log logging.Logger) *Holder {
	h := &Holder{path: path, log: log}
	h.restore()
	return h
}

func (h *Holder) restore() {
	data, err := os.ReadFile(h.path)
	if err != nil {
		return
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		h.log.Warn(context.Background(), "ignoring unreadable session file", "path", h.path, "error", err)
		return
	}
	if !IsAuthorized(s.User.Email) {
		return
	}
	h.session = &s
}

// IsAuthorized reports whether email is on the family allow-list.
func IsAuthorized(email string) bool {
	for _, allowed := range authorizedEmails {
		if strings.EqualFold(allowed, email) {
			return true
		}
	}
	return false
}

// SignIn installs a session for the given identity. If the email is not on
// the allow-list nothing is installed and nil is returned; a rejected
// sign-in is not an error.
func (h *Holder) SignIn(user User, accessToken string) *Session {
	if !IsAuthorized(user.Email) {
		h.log.Warn(context.Background(), "sign-in rejected, email not authorized", "email", user.Email)
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.session = &Session{User: user, AccessToken: accessToken}
	h.persistLocked()
	return h.session
}

// Current returns a copy of the session, or nil when signed out.
func (h *Holder) Current() *Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.session == nil {
		return nil
	}
	s := *h.session
	return &s
}

// Token returns the current access token. ok is false when there is no
// session or the token has been cleared.
func (h *Holder) Token() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.session == nil || h.session.AccessToken == "" {
		return "", false
	}
	return h.session.AccessToken, true
}

// SetToken replaces the access token of the current session. It is a no-op
// when signed out.
func (h *Holder) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.session == nil {
		return
	}
	h.session.AccessToken = token
	h.persistLocked()
}

// Invalidate clears the access token while keeping the identity, as after a
// 401 from Drive.
func (h *Holder) Invalidate() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.session == nil {
		return
	}
	h.session.AccessToken = ""
	h.persistLocked()
}

// SignOut destroys the session and removes the persisted file.
func (h *Holder) SignOut() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.session = nil
	if err := os.Remove(h.path); err != nil && !os.IsNotExist(err) {
		h.log.Warn(context.Background(), "failed to remove session file", "path", h.path, "error", err)
	}
}

func (h *Holder) persistLocked() {
	if err := os.MkdirAll(filepath.Dir(h.path), 0o700); err != nil {
		h.log.Warn(context.Background(), "failed to create session directory", "error", err)
		return
	}
	data, err := json.MarshalIndent(h.session, "", "  ")
	if err != nil {
		h.log.Warn(context.Background(), "failed to encode session", "error", err)
		return
	}
	if err := os.WriteFile(h.path, data, 0o600); err != nil {
		h.log.Warn(context.Background(), "failed to persist session", "path", h.path, "error", err)
	}
}

// DecodeIDCredential extracts the identity claims from a Google ID token
// without verifying its signature. The token comes straight from Google over
// TLS during the sign-in flow, so this is trust-on-read, not a security
// boundary.
func DecodeIDCredential(credential string) (User, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(credential, claims); err != nil {
		return User{}, fmt.Errorf("failed to decode identity credential: %w", err)
	}

	user := User{}
	if v, ok := claims["email"].(string); ok {
		user.Email = v
	}
	if v, ok := claims["name"].(string); ok {
		user.Name = v
	}
	if v, ok := claims["picture"].(string); ok {
		user.Picture = v
	}
	if user.Email == "" {
		return User{}, fmt.Errorf("identity credential has no email claim")
	}
	return user, nil
}
