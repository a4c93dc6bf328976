package session

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sahilsync07/vaultify/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() logging.Logger { return logging.NewDefault("error") }

func tempSessionPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "session.json")
}

// makeIDToken builds an unsigned JWT carrying the given claims, enough for
// trust-on-read decoding.
func makeIDToken(t *testing.T, claims map[string]any) string {
	t.Helper()
	enc := func(v any) string {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		return base64.RawURLEncoding.EncodeToString(b)
	}
	header := map[string]string{"alg": "RS256", "typ": "JWT"}
	return enc(header) + "." + enc(claims) + ".sig"
}

func TestDecodeIDCredential(t *testing.T) {
	raw := makeIDToken(t, map[string]any{
		"email":   "sahilsync07@gmail.com",
		"name":    "Sahil",
		"picture": "https://example.com/p.jpg",
	})

	user, err := DecodeIDCredential(raw)
	require.NoError(t, err)
	assert.Equal(t, "sahilsync07@gmail.com", user.Email)
	assert.Equal(t, "Sahil", user.Name)
	assert.Equal(t, "https://example.com/p.jpg", user.Picture)
}

func TestDecodeIDCredential_MissingEmail(t *testing.T) {
	raw := makeIDToken(t, map[string]any{"name": "Nobody"})

	_, err := DecodeIDCredential(raw)
	require.Error(t, err)
}

func TestDecodeIDCredential_Malformed(t *testing.T) {
	_, err := DecodeIDCredential("not-a-jwt")
	require.Error(t, err)
}

func TestIsAuthorized_CaseInsensitive(t *testing.T) {
	assert.True(t, IsAuthorized("sahilsync07@gmail.com"))
	assert.True(t, IsAuthorized("SahilSync07@Gmail.Com"))
	assert.False(t, IsAuthorized("stranger@gmail.com"))
	assert.False(t, IsAuthorized(""))
}

func TestHolder_SignIn_AuthorizedPersists(t *testing.T) {
	path := tempSessionPath(t)
	h := NewHolder(path, testLogger())

	sess := h.SignIn(User{Email: "patrosln07@gmail.com", Name: "Patro"}, "tok-1")
	require.NotNil(t, sess)
	assert.Equal(t, "tok-1", sess.AccessToken)

	// survives a restart
	h2 := NewHolder(path, testLogger())
	restored := h2.Current()
	require.NotNil(t, restored)
	assert.Equal(t, "patrosln07@gmail.com", restored.User.Email)
	tok, ok := h2.Token()
	assert.True(t, ok)
	assert.Equal(t, "tok-1", tok)
}

func TestHolder_SignIn_UnauthorizedIsNoSession(t *testing.T) {
	path := tempSessionPath(t)
	h := NewHolder(path, testLogger())

	sess := h.SignIn(User{Email: "intruder@gmail.com"}, "tok-1")
	assert.Nil(t, sess)
	assert.Nil(t, h.Current())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "rejected sign-in must not persist anything")
}

func TestHolder_Invalidate_KeepsIdentity(t *testing.T) {
	h := NewHolder(tempSessionPath(t), testLogger())
	require.NotNil(t, h.SignIn(User{Email: "sahilsync07@gmail.com", Name: "Sahil"}, "tok-1"))

	h.Invalidate()

	_, ok := h.Token()
	assert.False(t, ok)
	sess := h.Current()
	require.NotNil(t, sess, "identity persists after token invalidation")
	assert.Equal(t, "Sahil", sess.User.Name)
}

func TestHolder_SignOut_RemovesFile(t *testing.T) {
	path := tempSessionPath(t)
	h := NewHolder(path, testLogger())
	require.NotNil(t, h.SignIn(User{Email: "sahilsync07@gmail.com"}, "tok-1"))

	h.SignOut()

	assert.Nil(t, h.Current())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestHolder_RestoreIgnoresCorruptFile(t *testing.T) {
	path := tempSessionPath(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	h := NewHolder(path, testLogger())
	assert.Nil(t, h.Current())
}

func TestAuthenticator_ConcurrentRequestsShareOneFlow(t *testing.T) {
	h := NewHolder(tempSessionPath(t), testLogger())
	a := NewAuthenticator("client-id", "", "127.0.0.1:0", h, testLogger())

	// Simulate a flow already in flight so Request only registers waiters.
	a.mu.Lock()
	a.inFlight = true
	a.mu.Unlock()

	ch1 := a.Request(context.Background())
	ch2 := a.Request(context.Background())

	a.mu.Lock()
	waiting := len(a.waiters)
	a.mu.Unlock()
	assert.Equal(t, 2, waiting, "both requests attach to the single in-flight flow")

	a.deliver(TokenResult{Token: "fresh"})

	res1 := <-ch1
	res2 := <-ch2
	assert.Equal(t, "fresh", res1.Token)
	assert.Equal(t, "fresh", res2.Token)

	a.mu.Lock()
	assert.False(t, a.inFlight)
	a.mu.Unlock()
}

func TestAuthenticator_JoinerCancellationDoesNotAffectFlow(t *testing.T) {
	h := NewHolder(tempSessionPath(t), testLogger())
	a := NewAuthenticator("client-id", "", "127.0.0.1:0", h, testLogger())

	a.mu.Lock()
	a.inFlight = true
	a.mu.Unlock()

	ch1 := a.Request(context.Background())

	joinerCtx, cancel := context.WithCancel(context.Background())
	ch2 := a.Request(joinerCtx)
	cancel()

	// the canceled joiner neither tears down the flow nor blocks delivery
	a.deliver(TokenResult{Token: "fresh"})

	res1 := <-ch1
	assert.Equal(t, "fresh", res1.Token)

	res2 := <-ch2
	assert.Equal(t, "fresh", res2.Token, "buffered delivery reaches an abandoned joiner too")
}
