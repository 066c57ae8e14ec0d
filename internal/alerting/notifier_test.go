package alerting

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"fuel-price-tracker/internal/diff"
	"fuel-price-tracker/internal/model"
	"fuel-price-tracker/internal/telegram"
)

func newTestNotifier(baseURL string) *TelegramNotifier {
	client := telegram.New(telegram.Options{BotToken: "token", BaseURL: baseURL}, zerolog.Nop())
	return NewTelegramNotifier(client, zerolog.Nop())
}

func TestTelegramNotifierSuccess(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "sendMessage") {
			t.Fatalf("path should contain sendMessage, got %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decode request body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer srv.Close()

	notifier := newTestNotifier(srv.URL)
	if err := notifier.Notify(context.Background(), 42, "hello"); err != nil {
		t.Fatalf("Notify should succeed: %v", err)
	}

	if received["chat_id"].(float64) != 42 {
		t.Fatalf("chat_id wrong: %#v", received)
	}
	if received["text"] != "hello" {
		t.Fatalf("text wrong: %#v", received)
	}
}

func TestTelegramNotifierError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "description": "blocked"})
	}))
	defer srv.Close()

	notifier := newTestNotifier(srv.URL)
	if err := notifier.Notify(context.Background(), 42, "hello"); err == nil {
		t.Fatal("ok=false must surface as error")
	}
}

func TestRenderTargetAlert(t *testing.T) {
	ev := Event{
		StationName: "Aral Musterstadt",
		Fuel:        model.FuelDiesel,
		Price:       d("1.759"),
		Target:      d("1.76"),
	}

	text := RenderTargetAlert(ev)
	for _, want := range []string{"Aral Musterstadt", "Diesel", "1.759", "1.76"} {
		if !strings.Contains(text, want) {
			t.Fatalf("alert text missing %q: %s", want, text)
		}
	}
}

func TestRenderChangeNote(t *testing.T) {
	notes := []diff.ChangeNote{
		{Fuel: model.FuelDiesel, Old: "1.779", New: "1.759", Text: "Diesel: 1.779€ → 1.759€"},
	}

	text := RenderChangeNote("HEM Berlin", notes)
	if !strings.Contains(text, "HEM Berlin") {
		t.Fatalf("missing station name: %s", text)
	}
	if !strings.Contains(text, "Diesel: 1.779€ → 1.759€") {
		t.Fatalf("missing note line: %s", text)
	}
}
