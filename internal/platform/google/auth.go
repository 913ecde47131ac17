package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/sudo-sidd/classroom-downloader/internal/platform/logger"
)

// Scopes requested from the user. All read-only: the service never mutates
// anything on the remote side.
var scopes = []string{
	"https://www.googleapis.com/auth/classroom.courses.readonly",
	"https://www.googleapis.com/auth/classroom.coursework.me.readonly",
	"https://www.googleapis.com/auth/classroom.courseworkmaterials.readonly",
	"https://www.googleapis.com/auth/classroom.announcements.readonly",
	"https://www.googleapis.com/auth/drive.readonly",
}

// Auth owns the OAuth2 handshake and the persisted token.
type Auth interface {
	IsAuthenticated(ctx context.Context) bool
	AuthURL(state string) (string, error)
	Exchange(ctx context.Context, code string) error
	RunLocalFlow(ctx context.Context) error
	Client(ctx context.Context) (*http.Client, error)
	Revoke() error
}

type authService struct {
	log             *logger.Logger
	credentialsPath string
	tokenPath       string
	callbackAddr    string
}

// NewAuth reads nothing up front; credentials.json is loaded lazily so the
// server can start and report "not authenticated" before the file exists.
func NewAuth(credentialsPath, tokenPath, callbackAddr string, log *logger.Logger) Auth {
	return &authService{
		log:             log.With("component", "google_auth"),
		credentialsPath: credentialsPath,
		tokenPath:       tokenPath,
		callbackAddr:    callbackAddr,
	}
}

func (a *authService) config() (*oauth2.Config, error) {
	raw, err := os.ReadFile(a.credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read oauth credentials: %w", err)
	}
	cfg, err := google.ConfigFromJSON(raw, scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse oauth credentials: %w", err)
	}
	cfg.RedirectURL = fmt.Sprintf("http://%s/oauth2callback", a.callbackAddr)
	return cfg, nil
}

func (a *authService) loadToken() (*oauth2.Token, error) {
	raw, err := os.ReadFile(a.tokenPath)
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, fmt.Errorf("parse stored token: %w", err)
	}
	return &tok, nil
}

func (a *authService) saveToken(tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(a.tokenPath), 0o755); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	raw, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	// 0600: the refresh token grants account access.
	if err := os.WriteFile(a.tokenPath, raw, 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

// IsAuthenticated reports whether a usable token is on disk. A token with a
// refresh token counts even when the access token has expired.
func (a *authService) IsAuthenticated(_ context.Context) bool {
	tok, err := a.loadToken()
	if err != nil {
		return false
	}
	return tok.Valid() || tok.RefreshToken != ""
}

func (a *authService) AuthURL(state string) (string, error) {
	cfg, err := a.config()
	if err != nil {
		return "", err
	}
	return cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

// Exchange turns an authorization code into a stored token.
func (a *authService) Exchange(ctx context.Context, code string) error {
	cfg, err := a.config()
	if err != nil {
		return err
	}
	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange authorization code: %w", err)
	}
	if err := a.saveToken(tok); err != nil {
		return err
	}
	a.log.Info("authorization complete", "token_path", a.tokenPath)
	return nil
}

// RunLocalFlow serves the redirect target on callbackAddr, prints the
// consent URL and blocks until the browser round-trip delivers a code or
// the context ends.
func (a *authService) RunLocalFlow(ctx context.Context) error {
	cfg, err := a.config()
	if err != nil {
		return err
	}

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2callback", func(w http.ResponseWriter, r *http.Request) {
		if e := r.URL.Query().Get("error"); e != "" {
			http.Error(w, "authorization denied", http.StatusForbidden)
			errCh <- fmt.Errorf("authorization denied: %s", e)
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, "<html><body>Authorization complete. You can close this window.</body></html>")
		codeCh <- code
	})

	srv := &http.Server{Addr: a.callbackAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	url := cfg.AuthCodeURL("state-local", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	a.log.Info("waiting for browser authorization", "url", url)

	select {
	case code := <-codeCh:
		return a.Exchange(ctx, code)
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return fmt.Errorf("authorization flow: %w", ctx.Err())
	}
}

// Client returns an HTTP client that refreshes and re-persists the token
// as needed.
func (a *authService) Client(ctx context.Context) (*http.Client, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	tok, err := a.loadToken()
	if err != nil {
		return nil, fmt.Errorf("not authenticated: %w", err)
	}
	src := &persistingSource{
		auth: a,
		src:  cfg.TokenSource(ctx, tok),
		last: tok,
	}
	return oauth2.NewClient(ctx, src), nil
}

// Revoke forgets the stored token. Missing file is not an error.
func (a *authService) Revoke() error {
	if err := os.Remove(a.tokenPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token: %w", err)
	}
	a.log.Info("stored token removed")
	return nil
}

// persistingSource writes refreshed tokens back to disk so the next process
// start does not need a new browser round-trip. Token is called from every
// request going through the client, so last is guarded.
type persistingSource struct {
	auth *authService
	src  oauth2.TokenSource

	mu   sync.Mutex
	last *oauth2.Token
}

func (p *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := p.src.Token()
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if tok.AccessToken != p.last.AccessToken {
		p.last = tok
		if err := p.auth.saveToken(tok); err != nil {
			p.auth.log.Warn("persist refreshed token failed", "error", err)
		}
	}
	return tok, nil
}
