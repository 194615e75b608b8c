package config_test

import (
	"strings"
	"testing"

	"github.com/ricirt/report-robot/internal/config"
)

func validConfig() *config.Config {
	return &config.Config{
		Telegram: config.TelegramConfig{
			Token:        strings.Repeat("t", 46),
			MaxPerSecond: 20,
		},
		Google: config.GoogleConfig{
			InputFolder:   "1jifljJwB1uk-fSkUxafG4TrNXknp_UTi",
			ArchiveFolder: "1beUEBxbZh3dG2sxnXPUrVuCE_FeEUB39",
			TempFolder:    "1ANyns3M3Yt2G6kPYTGiCHmu5ZBF1wLNe",
			DirectoryDoc:  "1n2jtp4ZdBh0PlqDurLjkellNK8Vdn5Zxb3qwXaLVftk",
		},
		Tracker: config.TrackerConfig{Enabled: true, URL: "https://robot.example.com/track"},
		Distribution: config.DistributionConfig{
			MaxAttempts: 3,
		},
	}
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := config.Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is empty")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/robot")
	t.Setenv("SEND_MAX_ATTEMPTS", "5")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Distribution.MaxAttempts != 5 {
		t.Fatalf("expected max attempts from env, got %d", cfg.Distribution.MaxAttempts)
	}
	if cfg.Logs.MaxConsoleLines != 2000 {
		t.Fatalf("expected default console cap 2000, got %d", cfg.Logs.MaxConsoleLines)
	}
	if cfg.Google.DirectoryRange != "Mapeo!A2:C" {
		t.Fatalf("unexpected directory range %q", cfg.Google.DirectoryRange)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Run("valid config passes", func(t *testing.T) {
		if res := validConfig().Validate(); !res.OK() {
			t.Fatalf("expected no problems, got %v", res.Problems)
		}
	})

	t.Run("short token", func(t *testing.T) {
		cfg := validConfig()
		cfg.Telegram.Token = "short"
		res := cfg.Validate()
		if res.OK() || len(res.Problems) != 1 {
			t.Fatalf("expected one problem, got %v", res.Problems)
		}
	})

	t.Run("every missing id is reported", func(t *testing.T) {
		cfg := validConfig()
		cfg.Google = config.GoogleConfig{}
		res := cfg.Validate()
		if len(res.Problems) != 4 {
			t.Fatalf("expected 4 problems, got %v", res.Problems)
		}
	})

	t.Run("tracker url ignored when tracking disabled", func(t *testing.T) {
		cfg := validConfig()
		cfg.Tracker = config.TrackerConfig{Enabled: false, URL: "http://plain"}
		if res := cfg.Validate(); !res.OK() {
			t.Fatalf("expected no problems, got %v", res.Problems)
		}
	})

	t.Run("tracker url must be https", func(t *testing.T) {
		cfg := validConfig()
		cfg.Tracker.URL = "http://robot.example.com/track"
		if res := cfg.Validate(); res.OK() {
			t.Fatal("expected a tracker url problem")
		}
	})
}

func TestConfig_Lookup(t *testing.T) {
	cfg := validConfig()

	v, ok := cfg.Lookup("google.input_folder")
	if !ok || v != cfg.Google.InputFolder {
		t.Fatalf("expected input folder, got %v (ok=%v)", v, ok)
	}

	v, ok = cfg.Lookup("distribution.max_attempts")
	if !ok || v != float64(3) {
		t.Fatalf("expected 3, got %v (ok=%v)", v, ok)
	}

	if _, ok := cfg.Lookup("telegram.nope"); ok {
		t.Fatal("expected unknown key to be reported missing")
	}
	if _, ok := cfg.Lookup("telegram.token.deeper"); ok {
		t.Fatal("expected path through a leaf to be reported missing")
	}
}
