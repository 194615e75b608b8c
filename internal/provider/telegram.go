package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ricirt/report-robot/internal/ratelimiter"
)

const (
	errorCodeTooManyRequests = 429
	defaultRetryAfter        = 5 * time.Second
)

// Throttle gates each send; ratelimiter.ChatThrottle implements it.
type Throttle interface {
	Wait(ctx context.Context, chatID string) error
}

type TelegramConfig struct {
	BaseURL     string
	Token       string
	Timeout     time.Duration
	MaxAttempts int
	RetryDelay  time.Duration
}

// TelegramProvider sends HTML messages through the Telegram Bot API.
// The base URL is injected from config so tests can point to a local mock.
type TelegramProvider struct {
	baseURL     string
	token       string
	httpClient  *http.Client
	throttle    Throttle
	maxAttempts int
	retryDelay  time.Duration
	logger      *zap.Logger

	sleep    func(ctx context.Context, d time.Duration) error
	onSent   func(latency time.Duration)
	onFailed func()
}

func NewTelegramProvider(cfg TelegramConfig, throttle Throttle, logger *zap.Logger) *TelegramProvider {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	return &TelegramProvider{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		token:       cfg.Token,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		throttle:    throttle,
		maxAttempts: cfg.MaxAttempts,
		retryDelay:  cfg.RetryDelay,
		logger:      logger,
		sleep:       ratelimiter.Sleep,
		onSent:      func(time.Duration) {},
		onFailed:    func() {},
	}
}

// SetHooks installs metric callbacks. nil leaves the existing hook.
func (p *TelegramProvider) SetHooks(onSent func(time.Duration), onFailed func()) {
	if onSent != nil {
		p.onSent = onSent
	}
	if onFailed != nil {
		p.onFailed = onFailed
	}
}

// WithSleeper replaces the pause used between attempts.
func (p *TelegramProvider) WithSleeper(sleep func(context.Context, time.Duration) error) *TelegramProvider {
	p.sleep = sleep
	return p
}

// Send posts text to chatID, retrying up to maxAttempts times. A 429 answer
// waits the server-suggested retry_after; any other failure waits the fixed
// retry delay.
func (p *TelegramProvider) Send(ctx context.Context, chatID, text string) bool {
	log := p.logger.With(zap.String("chat_id", chatID))

	if p.token == "" || chatID == "" {
		log.Warn("telegram send skipped: token or chat id not configured")
		return false
	}

	if p.throttle != nil {
		if err := p.throttle.Wait(ctx, chatID); err != nil {
			log.Warn("telegram send cancelled while throttled", zap.Error(err))
			return false
		}
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID:                chatID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	})
	if err != nil {
		log.Error("marshal telegram request", zap.Error(err))
		return false
	}

	start := time.Now()
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		resp, err := p.call(ctx, "sendMessage", body)
		if err == nil && resp.OK {
			log.Info("telegram message sent", zap.Int("attempt", attempt))
			p.onSent(time.Since(start))
			return true
		}

		wait := p.retryDelay
		switch {
		case err != nil:
			log.Error("telegram send error",
				zap.Int("attempt", attempt), zap.Int("max_attempts", p.maxAttempts), zap.Error(err))
		case resp.ErrorCode == errorCodeTooManyRequests:
			wait = defaultRetryAfter
			if resp.Parameters.RetryAfter > 0 {
				wait = time.Duration(resp.Parameters.RetryAfter) * time.Second
			}
			log.Warn("telegram rate limit reached", zap.Duration("retry_after", wait))
		default:
			log.Warn("telegram rejected message",
				zap.Int("attempt", attempt), zap.Int("error_code", resp.ErrorCode),
				zap.String("description", resp.Description))
		}

		if attempt < p.maxAttempts {
			if err := p.sleep(ctx, wait); err != nil {
				break
			}
		}
	}

	log.Error("telegram message not delivered", zap.Int("attempts", p.maxAttempts))
	p.onFailed()
	return false
}

// Ping calls getMe and returns the bot username.
func (p *TelegramProvider) Ping(ctx context.Context) (string, error) {
	if p.token == "" {
		return "", errors.New("telegram token not configured")
	}
	resp, err := p.call(ctx, "getMe", nil)
	if err != nil {
		return "", err
	}
	if !resp.OK {
		return "", fmt.Errorf("telegram auth failed: %s", resp.Description)
	}
	return resp.Result.Username, nil
}

func (p *TelegramProvider) call(ctx context.Context, method string, body []byte) (*apiResponse, error) {
	url := fmt.Sprintf("%s/bot%s/%s", p.baseURL, p.token, method)

	httpMethod := http.MethodGet
	if body != nil {
		httpMethod = http.MethodPost
	}
	req, err := http.NewRequestWithContext(ctx, httpMethod, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		// The URL carries the token; strip it from the error.
		return nil, fmt.Errorf("send request: %s", strings.ReplaceAll(err.Error(), p.token, "<token>"))
	}
	defer resp.Body.Close()

	// Error answers (400, 403, 429) still carry the JSON envelope.
	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	return &out, nil
}

// compile-time check that TelegramProvider implements Messenger
var _ Messenger = (*TelegramProvider)(nil)
