package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ricirt/report-robot/internal/cache"
	"github.com/ricirt/report-robot/internal/domain"
	"github.com/ricirt/report-robot/internal/platform"
	"github.com/ricirt/report-robot/internal/scheduler"
)

// LockName serializes every queue operation across processes.
const LockName = "robot:queue"

const lockConflictKey = "lock_conflict"

// StateStore persists the checkpoint.
type StateStore interface {
	Load(ctx context.Context) (domain.QueueState, error)
	Save(ctx context.Context, st domain.QueueState) error
	Clear(ctx context.Context) error
}

type DirectoryLoader interface {
	Load(ctx context.Context) ([]domain.Recipient, error)
}

type Distributor interface {
	Distribute(ctx context.Context, srcDocID string, tabs []platform.Tab, recipients []domain.Recipient,
		reportType, fileName string) (domain.DistributionStats, error)
}

// Console is the operator log, emptied when a run starts.
type Console interface {
	Reset(ctx context.Context) error
}

type WarnThrottle interface {
	Warn(ctx context.Context, key, msg string, minInterval time.Duration) bool
	Clear(ctx context.Context, key string)
}

type Options struct {
	// Budget is the wall-clock limit of one Advance call.
	Budget   time.Duration
	LockWait time.Duration
	Location *time.Location
}

// Status is a read-only snapshot of the queue.
type Status struct {
	State         domain.QueueState
	TriggerActive bool
}

// RunSummary reports a manual run.
type RunSummary struct {
	Files     int
	Succeeded int
	Failed    int
}

// Hooks receive progress events; any of them may be nil.
type Hooks struct {
	OnJob   func(domain.JobStatus)
	OnDepth func(remaining int)
}

// Runner drives input files through the per-file pipeline, either as a
// resumable queue advanced in budgeted steps or in a single manual pass.
type Runner struct {
	files     platform.FileStore
	tabs      platform.TabStore
	directory DirectoryLoader
	dist      Distributor
	state     StateStore
	trigger   scheduler.Trigger
	locker    cache.Locker
	console   Console
	throttle  WarnThrottle
	opts      Options
	logger    *zap.Logger

	now   func() time.Time
	hooks Hooks
}

func NewRunner(
	files platform.FileStore,
	tabs platform.TabStore,
	directory DirectoryLoader,
	dist Distributor,
	state StateStore,
	trigger scheduler.Trigger,
	locker cache.Locker,
	console Console,
	throttle WarnThrottle,
	opts Options,
	logger *zap.Logger,
) *Runner {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Runner{
		files:     files,
		tabs:      tabs,
		directory: directory,
		dist:      dist,
		state:     state,
		trigger:   trigger,
		locker:    locker,
		console:   console,
		throttle:  throttle,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the time source used for the budget and report labels.
func (r *Runner) WithClock(now func() time.Time) *Runner {
	r.now = now
	return r
}

func (r *Runner) SetHooks(h Hooks) {
	r.hooks = h
}

// lock takes the queue lock or returns domain.ErrLockBusy.
func (r *Runner) lock(ctx context.Context) (func(), error) {
	release, ok, err := r.locker.TryLock(ctx, LockName, r.opts.LockWait)
	if err != nil {
		return nil, fmt.Errorf("acquire queue lock: %w", err)
	}
	if !ok {
		return nil, domain.ErrLockBusy
	}
	return release, nil
}

// Build lists the input folder and returns a fresh queue of eligible files.
func (r *Runner) Build(ctx context.Context) (domain.QueueState, error) {
	files, err := r.files.ListInputFiles(ctx)
	if err != nil {
		return domain.QueueState{}, err
	}
	st := domain.QueueState{Jobs: []domain.Job{}}
	for _, f := range files {
		if !domain.IsEligibleInputFile(f.Name) {
			continue
		}
		st.Jobs = append(st.Jobs, domain.Job{ID: f.ID, Name: f.Name, Status: domain.JobPending})
	}
	return st, nil
}

// Start rebuilds the queue from the input folder and turns the periodic
// trigger on. It returns the number of queued jobs.
func (r *Runner) Start(ctx context.Context) (int, error) {
	release, err := r.lock(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	r.resetConsole(ctx)

	st, err := r.Build(ctx)
	if err != nil {
		return 0, fmt.Errorf("build queue: %w", err)
	}
	if err := r.save(ctx, st); err != nil {
		return 0, err
	}
	if err := r.trigger.Activate(ctx); err != nil {
		return 0, fmt.Errorf("activate trigger: %w", err)
	}

	r.logger.Info("queue started", zap.Int("jobs", len(st.Jobs)))
	return len(st.Jobs), nil
}

// Advance runs queued jobs from the cursor until the queue is exhausted or
// the invocation budget is spent. A busy lock is not an error: another
// invocation is working, so a throttled warning is logged and nil returned.
func (r *Runner) Advance(ctx context.Context) error {
	release, err := r.lock(ctx)
	if errors.Is(err, domain.ErrLockBusy) {
		r.throttle.Warn(ctx, lockConflictKey, "queue lock busy, another run is in progress", 0)
		return nil
	}
	if err != nil {
		return err
	}
	defer release()
	r.throttle.Clear(ctx, lockConflictKey)

	st, err := r.state.Load(ctx)
	if err != nil {
		return err
	}
	if st.Exhausted() {
		return r.finish(ctx, st)
	}

	recipients, err := r.directory.Load(ctx)
	if err != nil {
		return err
	}

	start := r.now()
	for st.Cursor < len(st.Jobs) {
		job := &st.Jobs[st.Cursor]
		if job.Status == domain.JobDone {
			st.Cursor++
			continue
		}

		job.Status = domain.JobProcessing
		if err := r.save(ctx, st); err != nil {
			return err
		}

		log := r.logger.With(zap.String("file", job.Name), zap.Int("job", st.Cursor+1), zap.Int("jobs", len(st.Jobs)))
		log.Info("processing queued file")

		perr := r.processFile(ctx, platform.InputFile{ID: job.ID, Name: job.Name}, recipients)
		if ctx.Err() != nil {
			// Left processing; the next load puts it back to pending.
			return ctx.Err()
		}
		if perr != nil {
			log.Error("queued file failed", zap.Error(perr))
			job.Status = domain.JobError
		} else {
			job.Status = domain.JobDone
		}
		r.jobHook(job.Status)

		st.Cursor++
		if err := r.save(ctx, st); err != nil {
			return err
		}

		if st.Cursor < len(st.Jobs) && r.now().Sub(start) > r.opts.Budget {
			log.Info("queue budget spent, continuing on next trigger",
				zap.Int("remaining", len(st.Jobs)-st.Cursor))
			return nil
		}
	}

	return r.finish(ctx, st)
}

// finish stops the trigger and discards the exhausted queue.
func (r *Runner) finish(ctx context.Context, st domain.QueueState) error {
	counts := st.Counts()
	r.logger.Info("queue finished",
		zap.Int("done", counts[domain.JobDone]),
		zap.Int("error", counts[domain.JobError]),
	)
	if err := r.trigger.Deactivate(ctx); err != nil {
		return fmt.Errorf("deactivate trigger: %w", err)
	}
	if err := r.state.Clear(ctx); err != nil {
		return fmt.Errorf("clear queue: %w", err)
	}
	r.depthHook(0)
	return nil
}

// Pause stops periodic advancement and keeps the checkpoint.
func (r *Runner) Pause(ctx context.Context) error {
	release, err := r.lock(ctx)
	if err != nil {
		return err
	}
	defer release()

	if err := r.trigger.Deactivate(ctx); err != nil {
		return fmt.Errorf("deactivate trigger: %w", err)
	}
	r.logger.Info("queue paused")
	return nil
}

// Reset stops periodic advancement and discards the checkpoint.
func (r *Runner) Reset(ctx context.Context) error {
	release, err := r.lock(ctx)
	if err != nil {
		return err
	}
	defer release()

	if err := r.trigger.Deactivate(ctx); err != nil {
		return fmt.Errorf("deactivate trigger: %w", err)
	}
	if err := r.state.Clear(ctx); err != nil {
		return fmt.Errorf("clear queue: %w", err)
	}
	r.depthHook(0)
	r.logger.Info("queue reset")
	return nil
}

// RunNow processes every eligible input file in one pass, outside the
// queue. Per-file failures are logged and counted.
func (r *Runner) RunNow(ctx context.Context) (RunSummary, error) {
	var sum RunSummary
	release, err := r.lock(ctx)
	if err != nil {
		return sum, err
	}
	defer release()

	r.resetConsole(ctx)

	recipients, err := r.directory.Load(ctx)
	if err != nil {
		return sum, err
	}
	files, err := r.files.ListInputFiles(ctx)
	if err != nil {
		return sum, fmt.Errorf("list input files: %w", err)
	}

	r.logger.Info("manual run started", zap.Int("recipients", len(recipients)))
	for _, f := range files {
		if !domain.IsEligibleInputFile(f.Name) {
			continue
		}
		sum.Files++
		if err := r.processFile(ctx, f, recipients); err != nil {
			if ctx.Err() != nil {
				return sum, ctx.Err()
			}
			r.logger.Error("file failed", zap.String("file", f.Name), zap.Error(err))
			sum.Failed++
			r.jobHook(domain.JobError)
			continue
		}
		sum.Succeeded++
		r.jobHook(domain.JobDone)
	}

	r.logger.Info("manual run finished",
		zap.Int("files", sum.Files), zap.Int("succeeded", sum.Succeeded), zap.Int("failed", sum.Failed))
	return sum, nil
}

// Status reads the checkpoint and the trigger flag without locking.
func (r *Runner) Status(ctx context.Context) (Status, error) {
	st, err := r.state.Load(ctx)
	if err != nil {
		return Status{}, err
	}
	active, err := r.trigger.Active(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("read trigger: %w", err)
	}
	return Status{State: st, TriggerActive: active}, nil
}

// processFile converts one workbook, distributes its tabs and archives it.
func (r *Runner) processFile(ctx context.Context, file platform.InputFile, recipients []domain.Recipient) error {
	reportType := domain.ReportTypeForFile(file.Name, r.now().In(r.opts.Location))
	log := r.logger.With(zap.String("file", file.Name), zap.String("report_type", reportType))

	tmpID, err := r.files.ConvertToSpreadsheet(ctx, file)
	if err != nil {
		return fmt.Errorf("convert: %w", err)
	}

	tabs, err := r.tabs.Tabs(ctx, tmpID)
	if err != nil {
		r.trash(ctx, log, tmpID)
		return fmt.Errorf("list tabs: %w", err)
	}

	_, derr := r.dist.Distribute(ctx, tmpID, tabs, recipients, reportType, file.Name)
	r.trash(ctx, log, tmpID)
	if derr != nil {
		return fmt.Errorf("distribute: %w", derr)
	}

	if err := r.files.Archive(ctx, file.ID); err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	log.Info("file archived")
	return nil
}

func (r *Runner) trash(ctx context.Context, log *zap.Logger, docID string) {
	if err := r.files.Trash(context.WithoutCancel(ctx), docID); err != nil {
		log.Warn("could not trash temporary spreadsheet", zap.String("doc", docID), zap.Error(err))
	}
}

func (r *Runner) save(ctx context.Context, st domain.QueueState) error {
	if err := r.state.Save(ctx, st); err != nil {
		return fmt.Errorf("save queue: %w", err)
	}
	r.depthHook(len(st.Jobs) - st.Cursor)
	return nil
}

func (r *Runner) resetConsole(ctx context.Context) {
	if r.console == nil {
		return
	}
	if err := r.console.Reset(ctx); err != nil {
		r.logger.Warn("could not reset console", zap.Error(err))
	}
}

func (r *Runner) jobHook(s domain.JobStatus) {
	if r.hooks.OnJob != nil {
		r.hooks.OnJob(s)
	}
}

func (r *Runner) depthHook(n int) {
	if r.hooks.OnDepth != nil {
		r.hooks.OnDepth(n)
	}
}
