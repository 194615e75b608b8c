package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
// It is built once at process start and handed to every component; nothing
// mutates it afterwards. Only DATABASE_URL is required to load; the rest is
// checked by Validate.
type Config struct {
	Server       ServerConfig       `json:"server"`
	Database     DatabaseConfig     `json:"database"`
	Redis        RedisConfig        `json:"redis"`
	Telegram     TelegramConfig     `json:"telegram"`
	Google       GoogleConfig       `json:"google"`
	Tracker      TrackerConfig      `json:"tracker"`
	Distribution DistributionConfig `json:"distribution"`
	Queue        QueueConfig        `json:"queue"`
	Messages     MessagesConfig     `json:"messages"`
	Logs         LogsConfig         `json:"logs"`
	Coordination CoordinationConfig `json:"coordination"`

	// Timezone used for banners, tracking rows and greetings.
	Timezone string `json:"timezone"`
}

type ServerConfig struct {
	HTTPPort        string        `json:"http_port"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL           string `json:"url"`
	MaxConns      int32  `json:"max_conns"`
	MinConns      int32  `json:"min_conns"`
	MigrationsDir string `json:"migrations_dir"`
}

type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type TelegramConfig struct {
	Token       string        `json:"token"`
	APIBaseURL  string        `json:"api_base_url"`
	Timeout     time.Duration `json:"timeout"`
	MinInterval time.Duration `json:"min_interval"`
	// MaxPerSecond caps messages across all chats.
	MaxPerSecond int `json:"max_per_second"`
}

type GoogleConfig struct {
	CredentialsFile string `json:"credentials_file"`
	InputFolder     string `json:"input_folder"`
	ArchiveFolder   string `json:"archive_folder"`
	TempFolder      string `json:"temp_folder"`
	DirectoryDoc    string `json:"directory_doc"`
	DirectoryRange  string `json:"directory_range"`
}

type TrackerConfig struct {
	Enabled bool `json:"enabled"`
	// URL is the public address of the /track endpoint.
	URL           string        `json:"url"`
	RedirectDelay time.Duration `json:"redirect_delay"`
}

type DistributionConfig struct {
	MaxAttempts         int           `json:"max_attempts"`
	RetryDelay          time.Duration `json:"retry_delay"`
	DedupTTL            time.Duration `json:"dedup_ttl"`
	MaxRunTime          time.Duration `json:"max_run_time"`
	InterRecipientDelay time.Duration `json:"inter_recipient_delay"`
}

type QueueConfig struct {
	Budget          time.Duration `json:"budget"`
	LockWait        time.Duration `json:"lock_wait"`
	TriggerInterval time.Duration `json:"trigger_interval"`
}

type MessagesConfig struct {
	GreetingByHour bool   `json:"greeting_by_hour"`
	EmojiSales     string `json:"emoji_sales"`
	EmojiAccounts  string `json:"emoji_accounts"`
}

type LogsConfig struct {
	Level           string        `json:"level"`
	ToConsole       bool          `json:"to_console"`
	MaxConsoleLines int           `json:"max_console_lines"`
	WarnThrottle    time.Duration `json:"warn_throttle"`
}

type CoordinationConfig struct {
	Enabled bool `json:"enabled"`
}

func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return &Config{
		Server: ServerConfig{
			HTTPPort:        getEnv("HTTP_PORT", "8080"),
			ReadTimeout:     getDuration("READ_TIMEOUT", 5*time.Second),
			WriteTimeout:    getDuration("WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			URL:           dbURL,
			MaxConns:      int32(getInt("DB_MAX_CONNS", 10)),
			MinConns:      int32(getInt("DB_MIN_CONNS", 1)),
			MigrationsDir: getEnv("MIGRATIONS_DIR", "migrations"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
		},
		Telegram: TelegramConfig{
			Token:        os.Getenv("TELEGRAM_TOKEN"),
			APIBaseURL:   getEnv("TELEGRAM_API_URL", "https://api.telegram.org"),
			Timeout:      getDuration("TELEGRAM_TIMEOUT", 10*time.Second),
			MinInterval:  getDuration("TELEGRAM_MIN_INTERVAL", 100*time.Millisecond),
			MaxPerSecond: getInt("TELEGRAM_MAX_PER_SECOND", 20),
		},
		Google: GoogleConfig{
			CredentialsFile: os.Getenv("GOOGLE_CREDENTIALS_FILE"),
			InputFolder:     os.Getenv("GOOGLE_INPUT_FOLDER"),
			ArchiveFolder:   os.Getenv("GOOGLE_ARCHIVE_FOLDER"),
			TempFolder:      os.Getenv("GOOGLE_TEMP_FOLDER"),
			DirectoryDoc:    os.Getenv("GOOGLE_DIRECTORY_DOC"),
			DirectoryRange:  getEnv("GOOGLE_DIRECTORY_RANGE", "Mapeo!A2:C"),
		},
		Tracker: TrackerConfig{
			Enabled:       getBool("TRACKER_ENABLED", true),
			URL:           os.Getenv("TRACKER_URL"),
			RedirectDelay: getDuration("TRACKER_REDIRECT_DELAY", 2*time.Second),
		},
		Distribution: DistributionConfig{
			MaxAttempts:         getInt("SEND_MAX_ATTEMPTS", 3),
			RetryDelay:          getDuration("SEND_RETRY_DELAY", 2*time.Second),
			DedupTTL:            getDuration("DEDUP_TTL", 6*time.Hour),
			MaxRunTime:          getDuration("DISTRIBUTION_MAX_RUN_TIME", 330*time.Second),
			InterRecipientDelay: getDuration("INTER_RECIPIENT_DELAY", 500*time.Millisecond),
		},
		Queue: QueueConfig{
			Budget:          getDuration("QUEUE_BUDGET", 5*time.Minute),
			LockWait:        getDuration("QUEUE_LOCK_WAIT", 20*time.Second),
			TriggerInterval: getDuration("QUEUE_TRIGGER_INTERVAL", time.Minute),
		},
		Messages: MessagesConfig{
			GreetingByHour: getBool("GREETING_BY_HOUR", true),
			EmojiSales:     getEnv("EMOJI_SALES", "💰"),
			EmojiAccounts:  getEnv("EMOJI_ACCOUNTS", "📉"),
		},
		Logs: LogsConfig{
			Level:           getEnv("LOG_LEVEL", "info"),
			ToConsole:       getBool("LOGS_TO_CONSOLE", true),
			MaxConsoleLines: getInt("LOGS_MAX_CONSOLE_LINES", 2000),
			WarnThrottle:    getDuration("LOGS_WARN_THROTTLE", 3*time.Minute),
		},
		Coordination: CoordinationConfig{
			Enabled: getBool("COORDINATION_ENABLED", true),
		},
		Timezone: getEnv("TIMEZONE", "America/Argentina/Buenos_Aires"),
	}, nil
}

// Location resolves Timezone, falling back to UTC when the zone is unknown.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Lookup resolves a dotted path such as "telegram.token" or
// "distribution.max_attempts" against the JSON shape of the config.
// The second return value is false when any segment is missing.
func (c *Config) Lookup(path string) (any, bool) {
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, false
	}
	var tree map[string]any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, false
	}

	var value any = tree
	for _, part := range strings.Split(path, ".") {
		node, ok := value.(map[string]any)
		if !ok {
			return nil, false
		}
		value, ok = node[part]
		if !ok {
			return nil, false
		}
	}
	return value, true
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
