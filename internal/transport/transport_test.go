package transport

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/mydehq/lrcfetch/internal/types"
)

func TestNewClient_SetsHeadersAndKeepsCookies(t *testing.T) {
	var gotUA, gotAccept, gotCookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		if c, err := r.Cookie("session"); err == nil {
			gotCookie = c.Value
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
	}))
	defer srv.Close()

	client := NewClient(Options{UserAgent: "test-agent"})
	if client.Timeout != DefaultTimeout {
		t.Errorf("expected default timeout, got %v", client.Timeout)
	}

	for i := 0; i < 2; i++ {
		resp, err := client.Get(srv.URL)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
	}

	if gotUA != "test-agent" {
		t.Errorf("User-Agent = %q, want test-agent", gotUA)
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q, want application/json", gotAccept)
	}
	if gotCookie != "abc" {
		t.Errorf("expected session cookie on second request, got %q", gotCookie)
	}

	u, _ := url.Parse(srv.URL)
	if len(client.Jar.Cookies(u)) != 1 {
		t.Errorf("expected one cookie in jar, got %v", client.Jar.Cookies(u))
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		status   int
		header   string
		expected types.ErrorKind
		ok       bool
	}{
		{http.StatusOK, "", types.KindUnknown, true},
		{http.StatusNoContent, "", types.KindUnknown, true},
		{http.StatusNotFound, "", types.KindLyricsNotFound, false},
		{http.StatusTooManyRequests, "3", types.KindRateLimit, false},
		{http.StatusUnauthorized, "", types.KindAuth, false},
		{http.StatusForbidden, "", types.KindAuth, false},
		{http.StatusBadGateway, "", types.KindProvider, false},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			resp := &http.Response{StatusCode: tt.status, Header: http.Header{}}
			if tt.header != "" {
				resp.Header.Set("Retry-After", tt.header)
			}

			err := CheckStatus("LRCLIB", resp)
			if tt.ok {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if got := types.KindOf(err); got != tt.expected {
				t.Errorf("KindOf(%v) = %v, want %v", err, got, tt.expected)
			}
		})
	}
}

func TestRetryAfter(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		header   string
		expected time.Duration
	}{
		{"", 0},
		{"5", 5 * time.Second},
		{"-1", 0},
		{"soon", 0},
		{now.Add(10 * time.Second).Format(http.TimeFormat), 10 * time.Second},
		{now.Add(-10 * time.Second).Format(http.TimeFormat), 0},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			if got := RetryAfter(tt.header, now); got != tt.expected {
				t.Errorf("RetryAfter(%q) = %v, want %v", tt.header, got, tt.expected)
			}
		})
	}
}
