package msgraph_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/Tiliavir/reti/internal/log"
	"github.com/Tiliavir/reti/internal/msgraph"
)

func TestCalendarViewPaginates(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Prefer"); got != `outlook.timezone="Europe/Berlin"` {
			t.Errorf("Prefer header = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `{"value":[{"id":"2","subject":"Second","start":{"dateTime":"2026-02-27T11:00:00"},"end":{"dateTime":"2026-02-27T12:00:00"}}]}`)
			return
		}
		if r.URL.Path != "/me/calendarView" || r.URL.Query().Get("startDateTime") == "" {
			t.Errorf("unexpected request %s", r.URL)
		}
		fmt.Fprintf(w, `{"value":[{"id":"1","subject":"First","showAs":"busy","start":{"dateTime":"2026-02-27T09:00:00"},"end":{"dateTime":"2026-02-27T10:00:00"}}],"@odata.nextLink":"%s/me/calendarView?page=2"}`, srv.URL)
	}))
	defer srv.Close()

	c := msgraph.NewClientWithHTTP(srv.Client(), srv.URL)
	from := time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)
	events, err := c.CalendarView(context.Background(), from, from.AddDate(0, 0, 1), "Europe/Berlin")
	if err != nil {
		t.Fatalf("CalendarView: %v", err)
	}
	if len(events) != 2 || events[0].Subject != "First" || events[1].ID != "2" {
		t.Errorf("events = %+v", events)
	}
	if events[0].ShowAs != "busy" || events[0].Start.DateTime != "2026-02-27T09:00:00" {
		t.Errorf("first event decoded as %+v", events[0])
	}
}

func TestCalendarViewError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":"InvalidAuthenticationToken"}`)
	}))
	defer srv.Close()

	c := msgraph.NewClientWithHTTP(srv.Client(), srv.URL)
	if _, err := c.CalendarView(context.Background(), time.Now(), time.Now(), ""); err == nil {
		t.Error("expected an error for status 401")
	}
}

func TestTokenFile(t *testing.T) {
	f := &msgraph.TokenFile{Path: filepath.Join(t.TempDir(), "auth", "tokens.json")}
	tok, err := f.Load()
	if err != nil || tok != nil {
		t.Fatalf("Load on missing file = %v, %v; want nil, nil", tok, err)
	}

	want := &oauth2.Token{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour).Round(time.Second)}
	if err := f.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := f.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.AccessToken != want.AccessToken || got.RefreshToken != want.RefreshToken || !got.Expiry.Equal(want.Expiry) {
		t.Errorf("token = %+v, want %+v", got, want)
	}

	// A valid saved token is reused without contacting any endpoint.
	cfg := msgraph.OAuth2Config("common", "client")
	reused, err := msgraph.Authenticate(context.Background(), cfg, f, io.Discard, log.Discard())
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if reused.AccessToken != "access" {
		t.Errorf("Authenticate returned %+v", reused)
	}
}
