package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const recipePage = `<html><head><title> Samosas </title>
<script type="application/ld+json">{"@type":"Recipe","name":"Samosas"}</script>
</head><body></body></html>`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/recipe", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(recipePage))
	})
	mux.HandleFunc("/headers", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><head><title>" + r.Header.Get("X-Test") + "</title></head><body>" + r.UserAgent() + "</body></html>"))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// --- StaticFetcher Tests ---

func TestStaticFetcher_Fetch(t *testing.T) {
	srv := newTestServer(t)
	f := NewStatic(Config{})
	defer func() { _ = f.Close() }()

	page, err := f.Fetch(context.Background(), srv.URL+"/recipe", Options{})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if page.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d", page.StatusCode)
	}
	if page.Title != "Samosas" {
		t.Errorf("Title = %q", page.Title)
	}
	if !strings.Contains(page.HTML, "application/ld+json") {
		t.Error("expected raw HTML to include the JSON-LD block")
	}
	if !strings.HasPrefix(page.ContentType, "text/html") {
		t.Errorf("ContentType = %q", page.ContentType)
	}
	if page.FetchedAt.IsZero() {
		t.Error("expected FetchedAt to be set")
	}
}

func TestStaticFetcher_HeadersAndUserAgent(t *testing.T) {
	srv := newTestServer(t)
	f := NewStatic(Config{UserAgent: "portion-test/1.0"})

	page, err := f.Fetch(context.Background(), srv.URL+"/headers", Options{
		Headers: map[string]string{"X-Test": "hello"},
	})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if page.Title != "hello" {
		t.Errorf("expected custom header echoed in title, got %q", page.Title)
	}
	if !strings.Contains(page.HTML, "portion-test/1.0") {
		t.Error("expected configured user agent to be sent")
	}
}

func TestStaticFetcher_HTTPError(t *testing.T) {
	srv := newTestServer(t)
	f := NewStatic(Config{})

	page, err := f.Fetch(context.Background(), srv.URL+"/missing", Options{})
	if !errors.Is(err, ErrHTTPStatus) {
		t.Fatalf("expected ErrHTTPStatus, got %v", err)
	}
	if page.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", page.StatusCode)
	}
}

func TestStaticFetcher_CancelledContext(t *testing.T) {
	srv := newTestServer(t)
	f := NewStatic(Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.Fetch(ctx, srv.URL+"/recipe", Options{}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestNewStatic_Defaults(t *testing.T) {
	f := NewStatic(Config{})
	if f.config.UserAgent != defaultUserAgent {
		t.Errorf("UserAgent = %q", f.config.UserAgent)
	}
	if f.config.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v", f.config.Timeout)
	}
	if f.Type() != "static" {
		t.Errorf("Type() = %q", f.Type())
	}
}

// --- Factory Tests ---

func TestNew(t *testing.T) {
	f, err := New(ModeStatic, Config{})
	if err != nil {
		t.Fatalf("New(static) error = %v", err)
	}
	if _, ok := f.(*StaticFetcher); !ok {
		t.Errorf("expected *StaticFetcher, got %T", f)
	}

	if _, err := New(Mode("telepathic"), Config{}); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestTimeoutFor(t *testing.T) {
	cfg := Config{Timeout: 10 * time.Second}
	if got := timeoutFor(cfg, Options{}); got != 10*time.Second {
		t.Errorf("timeoutFor() = %v", got)
	}
	if got := timeoutFor(cfg, Options{Timeout: time.Second}); got != time.Second {
		t.Errorf("timeoutFor() override = %v", got)
	}
}

// --- Challenge Detection Tests ---

func TestDetectChallengePage(t *testing.T) {
	tests := []struct {
		title string
		html  string
		want  string
	}{
		{"Just a moment...", "", "cloudflare"},
		{"", `<script src="https://challenges.cloudflare.com/turnstile/v0/api.js">`, "cloudflare-turnstile"},
		{"", `<div class="h-captcha" data-src="https://hcaptcha.com/1">`, "hcaptcha"},
		{"", `<script src="https://www.google.com/recaptcha/api.js">`, "recaptcha"},
		{"Access Denied", "", "anti-bot"},
		{"Palak Paneer", "<html>recipe</html>", ""},
	}

	for _, tt := range tests {
		if got := detectChallengePage(tt.title, tt.html); got != tt.want {
			t.Errorf("detectChallengePage(%q, ...) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestFindChromePath_EnvOverride(t *testing.T) {
	t.Setenv("CHROME_PATH", "/opt/chrome/chrome")
	if got := FindChromePath(); got != "/opt/chrome/chrome" {
		t.Errorf("FindChromePath() = %q", got)
	}
}
