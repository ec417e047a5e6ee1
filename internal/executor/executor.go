package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"fileorg/internal/fileutil"
	"fileorg/internal/logging"
	"fileorg/internal/planner"
	"fileorg/internal/services"
)

// LockFileName is created in the output root while a commit runs.
const LockFileName = ".fileorg.lock"

// Status is the outcome of one plan entry.
type Status int

const (
	StatusPlanned Status = iota
	StatusApplied
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusApplied:
		return "applied"
	case StatusFailed:
		return "failed"
	default:
		return "planned"
	}
}

// Entry pairs an operation with its outcome.
type Entry struct {
	Operation planner.Operation
	Status    Status
	Reason    string
}

// Report lists every entry of a plan with its outcome.
type Report struct {
	Root       string
	DryRun     bool
	Entries    []Entry
	StartedAt  time.Time
	FinishedAt time.Time
}

func (r *Report) count(status Status) int {
	n := 0
	for _, e := range r.Entries {
		if e.Status == status {
			n++
		}
	}
	return n
}

// Applied returns the number of entries performed.
func (r *Report) Applied() int { return r.count(StatusApplied) }

// Failed returns the number of entries that failed.
func (r *Report) Failed() int { return r.count(StatusFailed) }

// Planned returns the number of entries left untouched.
func (r *Report) Planned() int { return r.count(StatusPlanned) }

// Options controls a single Execute call.
type Options struct {
	DryRun bool
	Logger *slog.Logger
	// OnEntry, when set, is called after each entry reaches its final state.
	OnEntry func(Entry)
}

// Execute applies plan. It returns an error only when the commit cannot
// start (root not creatable, lock held elsewhere); per-entry failures are
// recorded in the report.
func Execute(ctx context.Context, plan *planner.OperationPlan, opts Options) (*Report, error) {
	logger := logging.NewComponentLogger(opts.Logger, "executor")
	ctx = services.WithStage(ctx, "commit")
	report := &Report{Root: plan.Root, DryRun: opts.DryRun, StartedAt: time.Now()}
	report.Entries = make([]Entry, len(plan.Operations))
	for i, op := range plan.Operations {
		report.Entries[i] = Entry{Operation: op, Status: StatusPlanned}
	}

	if opts.DryRun {
		for _, entry := range report.Entries {
			notify(opts.OnEntry, entry)
		}
		report.FinishedAt = time.Now()
		logging.WithContext(ctx, logger).Info("dry run complete", logging.Int("planned", len(report.Entries)))
		return report, nil
	}

	if err := os.MkdirAll(plan.Root, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "commit", "create output root",
			fmt.Sprintf("cannot create %s", plan.Root), err)
	}
	lockPath := filepath.Join(plan.Root, LockFileName)
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "commit", "acquire lock", lockPath, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "commit", "acquire lock",
			"another fileorg run is writing to "+plan.Root, nil)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release output lock", logging.String("lock", lockPath), logging.Error(err))
		}
		_ = os.Remove(lockPath)
	}()

	for i := range report.Entries {
		entry := &report.Entries[i]
		if ctx.Err() != nil {
			entry.Status = StatusFailed
			entry.Reason = "canceled"
			notify(opts.OnEntry, *entry)
			continue
		}
		entryLogger := logging.WithContext(services.WithSource(ctx, entry.Operation.Source), logger)
		if err := apply(entry.Operation); err != nil {
			entry.Status = StatusFailed
			entry.Reason = err.Error()
			logging.WarnWithContext(entryLogger, "operation failed", "commit_entry_failed",
				logging.String("destination", entry.Operation.Destination),
				logging.String("action", entry.Operation.Action.String()),
				logging.Error(err),
				logging.String(logging.FieldImpact, "file left in place; other entries continue"),
			)
		} else {
			entry.Status = StatusApplied
			entryLogger.Debug("operation applied",
				logging.String("destination", entry.Operation.Destination),
				logging.String("action", entry.Operation.Action.String()),
			)
		}
		notify(opts.OnEntry, *entry)
	}

	report.FinishedAt = time.Now()
	logging.WithContext(ctx, logger).Info("commit complete",
		logging.Int("applied", report.Applied()),
		logging.Int("failed", report.Failed()),
		logging.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)),
	)
	return report, nil
}

func notify(fn func(Entry), entry Entry) {
	if fn != nil {
		fn(entry)
	}
}

func apply(op planner.Operation) error {
	if err := os.MkdirAll(filepath.Dir(op.Destination), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	switch op.Action {
	case planner.ActionHardlink:
		if err := os.Link(op.Source, op.Destination); err != nil {
			return fmt.Errorf("hardlink: %w", err)
		}
	case planner.ActionSymlink:
		target, err := filepath.Abs(op.Source)
		if err != nil {
			return fmt.Errorf("resolve source: %w", err)
		}
		if _, err := os.Stat(target); err != nil {
			return fmt.Errorf("symlink: %w", err)
		}
		if err := os.Symlink(target, op.Destination); err != nil {
			return fmt.Errorf("symlink: %w", err)
		}
	case planner.ActionCopy:
		if err := fileutil.CopyFilePreserve(op.Source, op.Destination); err != nil {
			return fmt.Errorf("copy: %w", err)
		}
	default:
		return errors.New("unknown action")
	}
	return nil
}
