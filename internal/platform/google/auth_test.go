package google

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"golang.org/x/oauth2"

	"github.com/sudo-sidd/classroom-downloader/internal/platform/logger"
)

type rotatingSource struct {
	n int64
}

func (s *rotatingSource) Token() (*oauth2.Token, error) {
	n := atomic.AddInt64(&s.n, 1)
	return &oauth2.Token{AccessToken: fmt.Sprintf("token-%d", n)}, nil
}

type staticSource struct {
	tok *oauth2.Token
}

func (s *staticSource) Token() (*oauth2.Token, error) { return s.tok, nil }

func newTestAuthService(t *testing.T) *authService {
	t.Helper()
	dir := t.TempDir()
	return &authService{
		log:             logger.NewNop(),
		credentialsPath: filepath.Join(dir, "credentials.json"),
		tokenPath:       filepath.Join(dir, "token.json"),
		callbackAddr:    "localhost:0",
	}
}

func TestPersistingSourceWritesRefreshedToken(t *testing.T) {
	t.Parallel()

	auth := newTestAuthService(t)
	src := &persistingSource{
		auth: auth,
		src:  &rotatingSource{},
		last: &oauth2.Token{AccessToken: "stale"},
	}

	// Concurrent requests all refresh through the same source.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				if _, err := src.Token(); err != nil {
					t.Errorf("Token: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	raw, err := os.ReadFile(auth.tokenPath)
	if err != nil {
		t.Fatalf("refreshed token not persisted: %v", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		t.Fatalf("persisted token unreadable: %v", err)
	}
	if tok.AccessToken == "" || tok.AccessToken == "stale" {
		t.Fatalf("persisted token = %+v", tok)
	}
}

func TestPersistingSourceSkipsUnchangedToken(t *testing.T) {
	t.Parallel()

	auth := newTestAuthService(t)
	tok := &oauth2.Token{AccessToken: "unchanged"}
	src := &persistingSource{auth: auth, src: &staticSource{tok: tok}, last: tok}

	for i := 0; i < 3; i++ {
		if _, err := src.Token(); err != nil {
			t.Fatalf("Token: %v", err)
		}
	}
	if _, err := os.Stat(auth.tokenPath); !os.IsNotExist(err) {
		t.Fatal("unchanged token must not be rewritten")
	}
}

func TestRevokeMissingToken(t *testing.T) {
	t.Parallel()

	auth := newTestAuthService(t)
	if err := auth.Revoke(); err != nil {
		t.Fatalf("Revoke without a token: %v", err)
	}
	if auth.IsAuthenticated(context.Background()) {
		t.Fatal("no token on disk must report unauthenticated")
	}
}
