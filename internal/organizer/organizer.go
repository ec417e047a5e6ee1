package organizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"fileorg/internal/classify"
	"fileorg/internal/config"
	"fileorg/internal/linkcap"
	"fileorg/internal/logging"
	"fileorg/internal/metadata"
	"fileorg/internal/planner"
	"fileorg/internal/services"
	"fileorg/internal/textutil"
)

// CapabilitySource returns the link capability of an output root.
type CapabilitySource interface {
	Get(root string) (planner.Capability, error)
}

// CapabilityFunc adapts a function to CapabilitySource.
type CapabilityFunc func(root string) (planner.Capability, error)

// Get implements CapabilitySource.
func (f CapabilityFunc) Get(root string) (planner.Capability, error) { return f(root) }

// ProbedCapabilities serves capabilities from a linkcap cache, probing each
// root once.
func ProbedCapabilities(cache *linkcap.Cache) CapabilitySource {
	return CapabilityFunc(func(root string) (planner.Capability, error) {
		capability, err := cache.Get(root)
		if err != nil {
			return nil, err
		}
		return capability, nil
	})
}

// Diagnostic records a file left out of the plan and why.
type Diagnostic struct {
	Source string
	Stage  string
	Err    error
}

// Result is the outcome of planning one pass.
type Result struct {
	RunID       string
	Mode        string
	Items       []Item
	Records     []metadata.FileRecord
	Plan        *planner.OperationPlan
	Diagnostics []Diagnostic
	StartedAt   time.Time
}

// Organizer plans organize passes for one configuration.
type Organizer struct {
	cfg          *config.Config
	classifier   classify.Classifier
	builder      *metadata.Builder
	capabilities CapabilitySource
	logger       *slog.Logger

	// RunID tags logs and the result. A fresh id is generated per Plan call
	// when empty.
	RunID string
	// OnCollected is called with the number of input files before any
	// classification starts.
	OnCollected func(total int)
	// OnClassified is called once per input after classification, from the
	// worker goroutine but never concurrently.
	OnClassified func(item Item, err error)
}

// New constructs an Organizer. classifier may be nil for date and type modes.
func New(cfg *config.Config, classifier classify.Classifier, capabilities CapabilitySource, logger *slog.Logger) *Organizer {
	stopwords := textutil.EnglishStopwords().With(cfg.Naming.ExtraStopwords...)
	builder := metadata.NewBuilder(textutil.SanitizeOptions{
		MaxLength: cfg.Naming.MaxLength,
		MaxWords:  cfg.Naming.MaxWords,
	}, stopwords)
	return &Organizer{
		cfg:          cfg,
		classifier:   classifier,
		builder:      builder,
		capabilities: capabilities,
		logger:       logging.NewComponentLogger(logger, "organizer"),
	}
}

// Plan collects the input directory and plans every file under the output
// root using the configured mode. It reads the filesystem but never writes.
func (o *Organizer) Plan(ctx context.Context) (*Result, error) {
	result := &Result{
		RunID:     o.RunID,
		Mode:      o.cfg.Organize.Mode,
		StartedAt: time.Now(),
	}
	if result.RunID == "" {
		result.RunID = uuid.NewString()
	}
	ctx = services.WithRunID(ctx, result.RunID)
	logger := logging.WithContext(services.WithStage(ctx, "collect"), o.logger)

	items, err := Collect(o.cfg.Paths.InputDir, o.cfg.Paths.OutputDir, o.cfg.Organize.IncludeHidden)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "collect", "walk input", o.cfg.Paths.InputDir, err)
	}
	result.Items = items
	logger.Info("collected input files",
		logging.String("input_dir", o.cfg.Paths.InputDir),
		logging.Int("files", len(items)),
		logging.String("mode", result.Mode),
	)
	if o.OnCollected != nil {
		o.OnCollected(len(items))
	}

	session, err := o.newSession(ctx)
	if err != nil {
		return nil, err
	}

	var placements []planner.Placement
	switch result.Mode {
	case config.ModeDate:
		for _, item := range items {
			placements = append(placements, planner.DatePlacement(item.Path, item.ModTime))
		}
	case config.ModeType:
		for _, item := range items {
			placements = append(placements, planner.TypePlacement(item.Path))
		}
	case config.ModeContent:
		records, diags, err := o.classifyAll(ctx, items)
		if err != nil {
			return nil, err
		}
		result.Records = records
		result.Diagnostics = diags
		plan, err := session.PlanRecords(records)
		if err != nil {
			return nil, err
		}
		result.Plan = plan
		o.logPlan(ctx, result)
		return result, nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "plan", "select mode", fmt.Sprintf("unknown mode %q", result.Mode), nil)
	}

	plan, err := session.Plan(placements)
	if err != nil {
		return nil, err
	}
	result.Plan = plan
	o.logPlan(ctx, result)
	return result, nil
}

func (o *Organizer) newSession(ctx context.Context) (*planner.Session, error) {
	link, err := planner.ParseLinkPreference(o.cfg.Organize.LinkMode)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "plan", "link mode", "", err)
	}
	opts := planner.Options{
		Root:          o.cfg.Paths.OutputDir,
		Link:          link,
		CheckExisting: true,
	}
	if link != planner.LinkCopy && o.capabilities != nil {
		capability, err := o.capabilities.Get(o.cfg.Paths.OutputDir)
		if err != nil {
			logging.WarnWithContext(logging.WithContext(ctx, o.logger), "link probe failed; copying instead", "link_probe_failed",
				logging.String(logging.FieldErrorHint, "check that the output parent directory is writable"),
				logging.String(logging.FieldImpact, "files are copied rather than linked"),
				logging.Error(err),
			)
		} else {
			opts.Capability = capability
		}
	}
	return planner.NewSession(opts), nil
}

type classified struct {
	raw metadata.RawMetadata
	err error
}

// classifyAll runs the classifier over items with bounded parallelism and
// returns records in input order. Per-file failures become diagnostics;
// only context cancellation aborts.
func (o *Organizer) classifyAll(ctx context.Context, items []Item) ([]metadata.FileRecord, []Diagnostic, error) {
	if o.classifier == nil {
		return nil, nil, services.Wrap(services.ErrConfiguration, "classify", "setup", "content mode requires a classifier", nil)
	}
	ctx = services.WithStage(ctx, "classify")
	results := make([]classified, len(items))

	workers := o.cfg.Organize.Workers
	if workers < 1 {
		workers = 1
	}
	var notifyMu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			raw, err := o.classifier.Classify(gctx, item.Path, item.Kind)
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}
			results[i] = classified{raw: raw, err: err}
			if o.OnClassified != nil {
				notifyMu.Lock()
				o.OnClassified(item, err)
				notifyMu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("classify: %w", err)
	}

	records := make([]metadata.FileRecord, 0, len(items))
	var diags []Diagnostic
	for i, item := range items {
		fileCtx := services.WithSource(ctx, item.Path)
		logger := logging.WithContext(fileCtx, o.logger)
		if err := results[i].err; err != nil {
			diags = append(diags, Diagnostic{Source: item.Path, Stage: "classify", Err: err})
			logging.WarnWithContext(logger, "classification failed; file skipped", "classify_failed",
				logging.String(logging.FieldErrorHint, services.FailureKind(err)),
				logging.String(logging.FieldImpact, "file is not organized in this run"),
				logging.Error(err),
			)
			continue
		}
		raw := results[i].raw
		raw.SourcePath = item.Path
		record, err := o.builder.Build(raw)
		if err != nil {
			diags = append(diags, Diagnostic{Source: item.Path, Stage: "record", Err: err})
			logging.WarnWithContext(logger, "record rejected; file skipped", "record_invalid",
				logging.String(logging.FieldImpact, "file is not organized in this run"),
				logging.Error(err),
			)
			continue
		}
		logger.Debug("record built",
			logging.String("folder", record.Foldername),
			logging.String("filename", record.Filename),
		)
		records = append(records, record)
	}
	return records, diags, nil
}

func (o *Organizer) logPlan(ctx context.Context, result *Result) {
	counts := result.Plan.Counts()
	logging.WithContext(services.WithStage(ctx, "plan"), o.logger).Info("plan ready",
		logging.String("output_dir", result.Plan.Root),
		logging.Int("operations", result.Plan.Len()),
		logging.Int("copies", counts[planner.ActionCopy]),
		logging.Int("hardlinks", counts[planner.ActionHardlink]),
		logging.Int("symlinks", counts[planner.ActionSymlink]),
		logging.Int("skipped", len(result.Diagnostics)),
	)
}
