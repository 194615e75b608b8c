package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ricirt/report-robot/internal/config"
)

func withConfig(t *testing.T, cfg *config.Config) {
	t.Helper()
	prev := loader
	loader = func() (*config.Config, error) { return cfg, nil }
	t.Cleanup(func() { loader = prev })
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigGet(t *testing.T) {
	withConfig(t, &config.Config{
		Telegram: config.TelegramConfig{APIBaseURL: "https://api.telegram.org"},
	})

	out, err := execute(t, "", "config", "get", "telegram.api_base_url")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out) != `"https://api.telegram.org"` {
		t.Fatalf("unexpected output %q", out)
	}

	if _, err := execute(t, "", "config", "get", "telegram.missing"); err == nil {
		t.Fatal("expected unknown key error")
	}
}

func TestConfigValidate(t *testing.T) {
	withConfig(t, &config.Config{})

	out, err := execute(t, "", "config", "validate")
	if err != nil {
		t.Fatalf("validation problems must not fail the command: %v", err)
	}
	if !strings.Contains(out, "telegram token is missing or too short") {
		t.Fatalf("expected token problem in output, got %q", out)
	}
}

func TestRun_DeclinedPromptDoesNothing(t *testing.T) {
	called := false
	prev := loader
	loader = func() (*config.Config, error) {
		called = true
		return &config.Config{}, nil
	}
	t.Cleanup(func() { loader = prev })

	out, err := execute(t, "n\n", "run")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "cancelled") {
		t.Fatalf("expected cancellation notice, got %q", out)
	}
	if called {
		t.Fatal("config must not load when the prompt is declined")
	}
}

func TestBotPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/getMe") {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":     true,
			"result": map[string]any{"username": "reports_bot"},
		})
	}))
	defer srv.Close()

	withConfig(t, &config.Config{
		Telegram: config.TelegramConfig{Token: "123:abc", APIBaseURL: srv.URL},
		Logs:     config.LogsConfig{Level: "error"},
	})

	out, err := execute(t, "", "bot", "ping")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "@reports_bot") {
		t.Fatalf("unexpected output %q", out)
	}
}
