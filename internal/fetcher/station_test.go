package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestFetchPageSendsBrowserHeaders(t *testing.T) {
	var gotUA, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	f := NewStation(StationOptions{}, zerolog.Nop())
	body, err := f.FetchPage(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if body != "<html>ok</html>" {
		t.Fatalf("body = %q", body)
	}
	if !strings.Contains(gotUA, "Mozilla") {
		t.Fatalf("user agent = %q", gotUA)
	}
	if !strings.HasPrefix(gotLang, "de-DE") {
		t.Fatalf("accept-language = %q", gotLang)
	}
}

func TestFetchPageCustomUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := NewStation(StationOptions{UserAgent: "custom/1.0"}, zerolog.Nop())
	if _, err := f.FetchPage(context.Background(), srv.URL); err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if gotUA != "custom/1.0" {
		t.Fatalf("user agent = %q", gotUA)
	}
}

func TestFetchPageNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := NewStation(StationOptions{}, zerolog.Nop())
	if _, err := f.FetchPage(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error on 503")
	}
}

func TestFetchPageBodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chunk := strings.Repeat("x", 1<<20)
		for i := 0; i < 8; i++ {
			_, _ = w.Write([]byte(chunk))
		}
	}))
	defer srv.Close()

	f := NewStation(StationOptions{}, zerolog.Nop())
	body, err := f.FetchPage(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if len(body) != maxBodyBytes {
		t.Fatalf("body length = %d, want cap %d", len(body), maxBodyBytes)
	}
}
