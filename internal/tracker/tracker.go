package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ricirt/report-robot/internal/domain"
	"github.com/ricirt/report-robot/internal/repository"
)

const (
	defaultRecipient = "Desconocido"
	defaultFile      = "Reporte"
	sentAtLayout     = "02/01/2006 15:04"
)

// ClickRequest carries the query of a tracked link.
type ClickRequest struct {
	URL       string
	Recipient string
	File      string
	SentAt    string
}

// Service records link opens and enriches them with client details.
type Service struct {
	clicks repository.ClickRepository
	loc    *time.Location
	logger *zap.Logger

	now   func() time.Time
	newID func() string
}

func NewService(clicks repository.ClickRepository, loc *time.Location, logger *zap.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		clicks: clicks,
		loc:    loc,
		logger: logger,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Validate checks the destination and fills in defaults.
func Validate(req ClickRequest) (ClickRequest, error) {
	if req.URL == "" {
		return req, domain.ErrMissingTrackingURL
	}
	if !strings.HasPrefix(req.URL, "https://") {
		return req, domain.ErrInvalidTrackingURL
	}
	if req.Recipient == "" {
		req.Recipient = defaultRecipient
	}
	if req.File == "" {
		req.File = defaultFile
	}
	return req, nil
}

// RegisterClick appends the initial tracking row. A storage failure is
// logged and does not stop the redirect.
func (s *Service) RegisterClick(ctx context.Context, req ClickRequest) (ClickRequest, error) {
	req, err := Validate(req)
	if err != nil {
		return req, err
	}

	now := s.now().In(s.loc)
	click := &domain.Click{
		ID:           s.newID(),
		ClickedAt:    now,
		Recipient:    req.Recipient,
		ReportKind:   ReportKindLabel(req.File),
		SentAt:       req.SentAt,
		ReactionTime: ReactionTime(req.SentAt, now, s.loc),
		Device:       domain.Detecting,
		Browser:      domain.Detecting,
		OS:           domain.Detecting,
		Link:         req.URL,
		Location:     domain.Detecting,
	}
	if err := s.clicks.Append(ctx, click); err != nil {
		s.logger.Error("could not record click", zap.String("recipient", req.Recipient), zap.Error(err))
	}
	return req, nil
}

// UpdateClient patches the newest row of recipient with device details
// parsed from ua and the client's location guess. A recipient without
// rows is not an error.
func (s *Service) UpdateClient(ctx context.Context, recipient, ua, geo string) error {
	click, err := s.clicks.LatestByRecipient(ctx, recipient)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("find click: %w", err)
	}

	info := ParseUserAgent(ua)
	info.Location = click.Location
	if geo != "" {
		info.Location = geo
	}
	return s.clicks.UpdateClient(ctx, click.ID, info)
}

// ReportKindLabel classifies a report by its file name for the tracking log.
func ReportKindLabel(file string) string {
	n := strings.ToUpper(file)
	switch {
	case strings.Contains(n, "VENTA"):
		return "💰 VENTAS"
	case strings.Contains(n, "STOCK"):
		return "📦 STOCK"
	case strings.Contains(n, "CTA"):
		return "📉 CUENTAS"
	}
	return "📄 OTROS"
}

// ReactionTime is the delay between sending and opening: "N min" under
// an hour, whole hours after that, "-" when sentAt is missing or invalid.
func ReactionTime(sentAt string, now time.Time, loc *time.Location) string {
	if sentAt == "" {
		return "-"
	}
	sent, err := time.ParseInLocation(sentAtLayout, sentAt, loc)
	if err != nil {
		return "-"
	}
	minutes := int(now.Sub(sent).Minutes())
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	return fmt.Sprintf("%d hs", minutes/60)
}

// ParseUserAgent reduces a user agent to device, browser and OS.
func ParseUserAgent(ua string) domain.ClientInfo {
	u := strings.ToLower(ua)
	switch {
	case strings.Contains(u, "iphone"):
		return domain.ClientInfo{Device: "Móvil", Browser: "Safari", OS: "iOS"}
	case strings.Contains(u, "android"):
		return domain.ClientInfo{Device: "Móvil", Browser: "Chrome", OS: "Android"}
	}
	return domain.ClientInfo{Device: "PC", Browser: "Chrome", OS: "Windows"}
}

// DisplayName drops the recipient code: "0009 - Juan Perez" becomes
// "Juan Perez".
func DisplayName(recipient string) string {
	parts := strings.Split(recipient, "-")
	if len(parts) < 2 {
		return recipient
	}
	return strings.TrimSpace(parts[1])
}
