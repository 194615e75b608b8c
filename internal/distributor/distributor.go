package distributor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ricirt/report-robot/internal/domain"
	"github.com/ricirt/report-robot/internal/platform"
	"github.com/ricirt/report-robot/internal/provider"
	"github.com/ricirt/report-robot/internal/ratelimiter"
	"github.com/ricirt/report-robot/internal/repository"
)

// Outcome labels passed to the metrics hook.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
	OutcomeSkipped   = "skipped"
)

type Options struct {
	Messages MessageOptions
	// TrackerURL wraps every link when non-empty.
	TrackerURL          string
	InterRecipientDelay time.Duration
	MaxRunTime          time.Duration
	Coordination        bool
	Location            *time.Location
}

// Distributor copies the tabs of a converted report into each
// recipient's document and notifies them.
type Distributor struct {
	tabs      platform.TabStore
	sender    provider.Messenger
	dedup     *Dedup
	control   repository.ControlRepository
	dashboard repository.DashboardRepository
	opts      Options
	logger    *zap.Logger

	now       func() time.Time
	sleep     func(context.Context, time.Duration) error
	onOutcome func(string)
}

func New(
	tabs platform.TabStore,
	sender provider.Messenger,
	dedup *Dedup,
	control repository.ControlRepository,
	dashboard repository.DashboardRepository,
	opts Options,
	logger *zap.Logger,
) *Distributor {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Distributor{
		tabs:      tabs,
		sender:    sender,
		dedup:     dedup,
		control:   control,
		dashboard: dashboard,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
		sleep:     ratelimiter.Sleep,
	}
}

// WithClock overrides the time source and the inter-recipient pause.
func (d *Distributor) WithClock(now func() time.Time, sleep func(context.Context, time.Duration) error) *Distributor {
	d.now = now
	d.sleep = sleep
	return d
}

// SetHooks registers a callback invoked once per processed tab.
func (d *Distributor) SetHooks(onOutcome func(outcome string)) {
	d.onOutcome = onOutcome
}

// Distribute processes every tab of srcDocID. Per-tab failures are
// counted, not returned; the error is non-nil only when ctx ends.
func (d *Distributor) Distribute(
	ctx context.Context,
	srcDocID string,
	tabs []platform.Tab,
	recipients []domain.Recipient,
	reportType, fileName string,
) (domain.DistributionStats, error) {
	var stats domain.DistributionStats
	log := d.logger.With(zap.String("file", fileName), zap.String("report_type", reportType))

	start := d.now()
	d.setBusy(ctx, len(recipients), start)
	defer d.setFree(ctx)

	log.Info("distribution started", zap.Int("tabs", len(tabs)), zap.Int("recipients", len(recipients)))

	for i, tab := range tabs {
		if d.opts.MaxRunTime > 0 && d.now().Sub(start) > d.opts.MaxRunTime {
			log.Warn("distribution time budget exceeded, remaining tabs aborted",
				zap.Int("processed", i), zap.Int("remaining", len(tabs)-i))
			break
		}
		stats.Total++
		d.setProgress(ctx, i+1, len(tabs))

		rec, ok := FindRecipient(recipients, tab.Title)
		if !ok {
			log.Warn("tab ignored, no directory entry", zap.String("tab", tab.Title))
			stats.Skipped++
			d.outcome(OutcomeSkipped)
			continue
		}

		switch outcome := d.deliver(ctx, log, srcDocID, tab, rec, reportType, fileName); outcome {
		case OutcomeSucceeded:
			stats.Succeeded++
			if rec.ChatID != "" {
				stats.Recipients = append(stats.Recipients, rec.Name)
			}
			d.outcome(outcome)
		case OutcomeSkipped:
			stats.Skipped++
			d.outcome(outcome)
		default:
			stats.Failed++
			d.outcome(OutcomeFailed)
		}

		if err := d.sleep(ctx, d.opts.InterRecipientDelay); err != nil {
			return stats, err
		}
	}

	log.Info("distribution completed",
		zap.Int("total", stats.Total),
		zap.Int("succeeded", stats.Succeeded),
		zap.Int("failed", stats.Failed),
		zap.Int("skipped", stats.Skipped),
	)

	if d.dashboard != nil {
		if err := d.dashboard.Record(ctx, fileName, stats, d.now().In(d.opts.Location)); err != nil {
			log.Warn("could not record dashboard row", zap.Error(err))
		}
	}
	return stats, ctx.Err()
}

// deliver copies one tab into the recipient's document and notifies them.
func (d *Distributor) deliver(
	ctx context.Context,
	log *zap.Logger,
	srcDocID string,
	tab platform.Tab,
	rec domain.Recipient,
	reportType, fileName string,
) string {
	log = log.With(zap.String("tab", tab.Title), zap.String("recipient", rec.Name))

	destName, generic := DestinationTabName(reportType, rec.Name)

	if err := d.tabs.DeleteTab(ctx, rec.DocumentID, destName); err != nil {
		log.Error("could not replace existing tab", zap.String("dest_tab", destName), zap.Error(err))
		return OutcomeFailed
	}
	copied, err := d.tabs.CopyTab(ctx, srcDocID, tab, rec.DocumentID, destName)
	if err != nil {
		log.Error("could not copy tab", zap.String("dest_tab", destName), zap.Error(err))
		return OutcomeFailed
	}

	now := d.now().In(d.opts.Location)
	placement := platform.BannerCorner
	if generic {
		placement = platform.BannerTopRow
	}
	if err := d.tabs.StampBanner(ctx, rec.DocumentID, copied, BannerText(now), placement); err != nil {
		log.Warn("could not stamp banner", zap.Error(err))
	}
	log.Info("tab copied", zap.String("dest_tab", destName))

	if rec.ChatID == "" {
		log.Info("no chat id configured, notification not sent")
		return OutcomeSucceeded
	}

	sent, err := d.dedup.AlreadySent(ctx, rec.ChatID, fileName)
	if err != nil {
		log.Warn("duplicate check failed, sending anyway", zap.Error(err))
	}
	if sent {
		log.Info("notification skipped, already sent recently")
		return OutcomeSkipped
	}

	link := TrackingURL(d.opts.TrackerURL, platform.TabURL(rec.DocumentID, copied.ID), rec.Name, fileName, now)
	kind := domain.ClassifyReport(reportType, generic)
	msg := BuildMessage(d.opts.Messages, rec.Name, kind, fileName, link, now)

	if !d.sender.Send(ctx, rec.ChatID, msg) {
		return OutcomeFailed
	}
	if err := d.dedup.MarkSent(ctx, rec.ChatID, fileName); err != nil {
		log.Warn("could not mark notification as sent", zap.Error(err))
	}
	return OutcomeSucceeded
}

func (d *Distributor) outcome(o string) {
	if d.onOutcome != nil {
		d.onOutcome(o)
	}
}

func (d *Distributor) setBusy(ctx context.Context, total int, at time.Time) {
	if !d.opts.Coordination || d.control == nil {
		return
	}
	if err := d.control.SetBusy(ctx, total, at); err != nil {
		d.logger.Warn("could not set coordination flag", zap.Error(err))
	}
}

func (d *Distributor) setProgress(ctx context.Context, current, total int) {
	if !d.opts.Coordination || d.control == nil {
		return
	}
	if err := d.control.SetProgress(ctx, current, total); err != nil {
		d.logger.Debug("could not update coordination progress", zap.Error(err))
	}
}

func (d *Distributor) setFree(ctx context.Context) {
	if !d.opts.Coordination || d.control == nil {
		return
	}
	if err := d.control.SetFree(context.WithoutCancel(ctx)); err != nil {
		d.logger.Warn("could not clear coordination flag", zap.Error(err))
	}
}
