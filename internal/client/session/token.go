package session

import (
	"context"
	"crypto/rand"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/pkg/browser"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/term"
	"google.golang.org/api/drive/v3"

	"github.com/sahilsync07/vaultify/internal/logging"
)

// TokenResult is delivered on the channel returned by Request once a token
// acquisition attempt finishes.
type TokenResult struct {
	Token string
	Err   error
}

// Authenticator drives the interactive OAuth2 flow against Google and feeds
// the resulting identity and access token into the Holder. Acquisition is
// asynchronous: Request returns immediately and the result arrives on the
// returned channel, possibly after the user has dealt with a consent
// screen. Concurrent Request calls while a flow is in flight attach to that
// flow instead of starting another one.
type Authenticator struct {
	cfg          *oauth2.Config
	redirectAddr string
	holder       *Holder
	log          logging.Logger

	mu       sync.Mutex
	inFlight bool
	waiters  []chan TokenResult
}

func NewAuthenticator(clientID, clientSecret, redirectAddr string, holder *Holder, log logging.Logger) *Authenticator {
	return &Authenticator{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  "http://" + redirectAddr,
			Scopes:       []string{drive.DriveFileScope, "openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		redirectAddr: redirectAddr,
		holder:       holder,
		log:          log,
	}
}

// Token returns the currently held access token, if any.
func (a *Authenticator) Token() (string, bool) { return a.holder.Token() }

// Invalidate clears the shared access token after a 401.
func (a *Authenticator) Invalidate() { a.holder.Invalidate() }

// Request starts (or joins) a token acquisition and returns a channel that
// receives exactly one TokenResult.
//
// The flow runs under the context of the caller that started it; ctx from a
// joining caller does not cancel or extend the in-flight flow. A joiner that
// gives up can simply abandon the returned channel: it is buffered, so
// delivery never blocks on a departed waiter.
func (a *Authenticator) Request(ctx context.Context) <-chan TokenResult {
	ch := make(chan TokenResult, 1)

	a.mu.Lock()
	a.waiters = append(a.waiters, ch)
	if a.inFlight {
		a.mu.Unlock()
		return ch
	}
	a.inFlight = true
	a.mu.Unlock()

	go a.runFlow(ctx)
	return ch
}

func (a *Authenticator) deliver(res TokenResult) {
	a.mu.Lock()
	waiters := a.waiters
	a.waiters = nil
	a.inFlight = false
	a.mu.Unlock()

	for _, ch := range waiters {
		ch <- res
	}
}

func (a *Authenticator) runFlow(ctx context.Context) {
	tok, err := a.authorize(ctx)
	if err != nil {
		a.deliver(TokenResult{Err: err})
		return
	}

	user, sess, err := a.installSession(tok)
	if err != nil {
		a.deliver(TokenResult{Err: err})
		return
	}
	if sess == nil {
		a.deliver(TokenResult{Err: fmt.Errorf("%s is not an authorized family member", user.Email)})
		return
	}
	a.deliver(TokenResult{Token: sess.AccessToken})
}

// installSession decodes the identity from the token response and, when the
// email passes the allow-list, installs the session in the Holder. Users who
// are already signed in only get their token refreshed.
func (a *Authenticator) installSession(tok *oauth2.Token) (User, *Session, error) {
	if current := a.holder.Current(); current != nil {
		a.holder.SetToken(tok.AccessToken)
		return current.User, a.holder.Current(), nil
	}

	rawID, _ := tok.Extra("id_token").(string)
	if rawID == "" {
		return User{}, nil, fmt.Errorf("token response carries no identity credential")
	}
	user, err := DecodeIDCredential(rawID)
	if err != nil {
		return User{}, nil, err
	}
	return user, a.holder.SignIn(user, tok.AccessToken), nil
}

// authorize runs the browser consent flow: a local callback server collects
// the authorization code, which is then exchanged for a token.
func (a *Authenticator) authorize(ctx context.Context) (*oauth2.Token, error) {
	stateBytes := make([]byte, 16)
	if _, err := rand.Read(stateBytes); err != nil {
		return nil, fmt.Errorf("failed to generate random state: %w", err)
	}
	state := fmt.Sprintf("%x", stateBytes)

	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	mux := http.NewServeMux()
	server := &http.Server{Addr: a.redirectAddr, Handler: mux}
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if errMsg := r.FormValue("error"); errMsg != "" {
			errChan <- fmt.Errorf("authentication failed: %s", errMsg)
			fmt.Fprint(w, "Authentication failed. You can close this window.")
			return
		}
		if r.FormValue("state") != state {
			errChan <- fmt.Errorf("invalid state parameter received")
			http.Error(w, "Invalid state parameter.", http.StatusBadRequest)
			return
		}
		codeChan <- r.FormValue("code")
		fmt.Fprint(w, "Authentication successful! You can close this window and return to the terminal.")
	})

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			errChan <- fmt.Errorf("callback server error: %w", err)
		}
	}()

	authURL := a.cfg.AuthCodeURL(state, oauth2.AccessTypeOnline)
	a.openConsentURL(ctx, authURL)

	var authCode string
	select {
	case code := <-codeChan:
		authCode = code
	case err := <-errChan:
		_ = server.Shutdown(context.Background())
		return nil, err
	case <-ctx.Done():
		_ = server.Shutdown(context.Background())
		return nil, ctx.Err()
	}

	if err := server.Shutdown(context.Background()); err != nil {
		a.log.Warn(ctx, "failed to shut down callback server", "error", err)
	}

	tok, err := a.cfg.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code for token: %w", err)
	}
	return tok, nil
}

func (a *Authenticator) openConsentURL(ctx context.Context, authURL string) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Printf("Open this URL to grant Vaultify access to the family Drive folder:\n\n%s\n\n", authURL)
		return
	}
	fmt.Println("Your browser should open so you can grant Vaultify access to the family Drive folder...")
	if err := browser.OpenURL(authURL); err != nil {
		fmt.Printf("\nIf your browser didn't open, please open this URL manually:\n\n%s\n\n", authURL)
	}
}
