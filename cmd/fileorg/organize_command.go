package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"fileorg/internal/classify"
	"fileorg/internal/config"
	"fileorg/internal/executor"
	"fileorg/internal/extract"
	"fileorg/internal/journal"
	"fileorg/internal/linkcap"
	"fileorg/internal/logging"
	"fileorg/internal/organizer"
	"fileorg/internal/preflight"
	"fileorg/internal/services"
	"fileorg/internal/services/llm"
	"fileorg/internal/tree"
)

type organizeOptions struct {
	input   string
	output  string
	mode    string
	link    string
	logFile string
	workers int
	silent  bool
	dryRun  bool
	yes     bool
	details bool
}

func newOrganizeCommand(ctx *commandContext) *cobra.Command {
	var opts organizeOptions

	cmd := &cobra.Command{
		Use:   "organize",
		Short: "Plan and apply a new folder layout for a directory",
		Long: "Collect every file under the input directory, propose a folder layout by\n" +
			"content, date or type, preview it, and copy or link the files into the\n" +
			"output directory after confirmation. Input files are never modified.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runOrganize(cmd, cfg, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.input, "input", "i", "", "Directory to organize")
	flags.StringVarP(&opts.output, "output", "o", "", "Directory to write the organized tree to (default: organized_folder next to the input)")
	flags.StringVarP(&opts.mode, "mode", "m", "", "Organization mode: content, date or type")
	flags.StringVar(&opts.link, "link", "", "Link strategy: copy, hardlink, symlink or auto")
	flags.StringVar(&opts.logFile, "log-file", "", "Log file used in silent mode (relative names land in the output directory)")
	flags.IntVarP(&opts.workers, "workers", "w", 0, "Number of files classified in parallel")
	flags.BoolVar(&opts.silent, "silent", false, "Write console output to the log file instead of the terminal")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Preview the plan without touching the filesystem")
	flags.BoolVarP(&opts.yes, "yes", "y", false, "Skip prompts and commit without confirmation")
	flags.BoolVar(&opts.details, "details", false, "List every planned operation")
	return cmd
}

func runOrganize(cmd *cobra.Command, base *config.Config, opts organizeOptions) error {
	cfg := *base
	tty := interactive(cmd)
	ask := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())

	overrides := config.Overrides{
		InputDir:  opts.input,
		OutputDir: opts.output,
		Mode:      opts.mode,
		LinkMode:  opts.link,
		LogFile:   opts.logFile,
		Workers:   opts.workers,
	}
	if cmd.Flags().Changed("silent") {
		overrides.Silent = &opts.silent
	}
	if tty && !opts.yes {
		if err := promptOverrides(cmd, ask, &cfg, &overrides); err != nil {
			return err
		}
	}
	if strings.TrimSpace(overrides.InputDir) == "" && strings.TrimSpace(cfg.Paths.InputDir) == "" {
		return services.Wrap(services.ErrValidation, "organize", "resolve input",
			"input directory required (use --input or set paths.input_dir)", nil)
	}
	if err := cfg.Apply(overrides); err != nil {
		return err
	}
	if err := preflight.Require(&cfg); err != nil {
		return err
	}

	out, closeOut, err := consoleWriter(cmd, &cfg)
	if err != nil {
		return err
	}
	defer closeOut()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	runID := uuid.NewString()
	if cfg.Organize.Journal {
		handler, err := logging.NewJSONFileHandler(cfg.RunLogPath(runID), "debug")
		if err != nil {
			logging.WarnWithContext(logger, "run log unavailable", "run_log_open_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "run details are only on the console"),
			)
		} else {
			logger = logging.Tee(logger, handler)
		}
	}

	runCtx := cmd.Context()
	if runCtx == nil {
		runCtx = context.Background()
	}

	fmt.Fprintf(out, "Directory tree of %s:\n", cfg.Paths.InputDir)
	if before, err := tree.FromDirectory(cfg.Paths.InputDir); err == nil {
		_ = before.Render(out)
	}
	fmt.Fprintln(out)

	capabilities := organizer.ProbedCapabilities(linkcap.NewCache())
	var result *organizer.Result
	for {
		result, err = planPass(runCtx, cmd, &cfg, runID, capabilities, logger, tty)
		if err != nil {
			return err
		}
		renderPlan(out, result, opts.details)

		if opts.dryRun {
			report, err := executor.Execute(runCtx, result.Plan, executor.Options{DryRun: true, Logger: logger})
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "Dry run: no files were changed.")
			recordRun(runCtx, &cfg, result, report, logger)
			return nil
		}
		if result.Plan.Len() == 0 {
			fmt.Fprintln(out, "Nothing to organize.")
			return nil
		}
		if opts.yes {
			break
		}
		if !tty {
			return services.Wrap(services.ErrValidation, "organize", "confirm",
				"refusing to commit without confirmation on a non-interactive terminal; pass --yes", nil)
		}
		proceed, err := ask.confirm("Would you like to proceed with these changes?", false)
		if err != nil {
			return err
		}
		if proceed {
			break
		}
		again, err := ask.confirm("Would you like to choose another organization method?", false)
		if err != nil {
			return err
		}
		if !again {
			fmt.Fprintln(out, "Operation canceled by the user.")
			return nil
		}
		mode, err := ask.chooseMode(cfg.Organize.Mode)
		if err != nil {
			return err
		}
		cfg.Organize.Mode = mode
	}

	report, err := executor.Execute(runCtx, result.Plan, executor.Options{Logger: logger})
	if err != nil {
		return err
	}
	recordRun(runCtx, &cfg, result, report, logger)
	renderReport(out, report)

	fmt.Fprintf(out, "\nDirectory tree of %s:\n", cfg.Paths.OutputDir)
	if after, err := tree.FromDirectory(cfg.Paths.OutputDir); err == nil {
		_ = after.Render(out)
	}

	if failed := report.Failed(); failed > 0 {
		return fmt.Errorf("%d of %d operations failed", failed, len(report.Entries))
	}
	return nil
}

func promptOverrides(cmd *cobra.Command, ask *prompter, cfg *config.Config, overrides *config.Overrides) error {
	input := strings.TrimSpace(overrides.InputDir)
	if input == "" {
		input = cfg.Paths.InputDir
	}
	for input == "" {
		answer, err := ask.ask("Enter the path of the directory you want to organize", "")
		if err != nil {
			return err
		}
		input = answer
		overrides.InputDir = answer
	}

	if strings.TrimSpace(overrides.OutputDir) == "" && cfg.Paths.OutputDir == "" {
		def := config.DefaultOutputDir(input)
		if expanded, err := config.ExpandPath(input); err == nil {
			def = config.DefaultOutputDir(expanded)
		}
		answer, err := ask.ask("Enter the path where the organized files should go", def)
		if err != nil {
			return err
		}
		overrides.OutputDir = answer
	}

	if !cmd.Flags().Changed("mode") {
		mode, err := ask.chooseMode(cfg.Organize.Mode)
		if err != nil {
			return err
		}
		overrides.Mode = mode
	}

	if !cmd.Flags().Changed("silent") {
		silent, err := ask.confirm("Enable silent mode? Console output will go to the log file", cfg.Logging.Silent)
		if err != nil {
			return err
		}
		overrides.Silent = &silent
	}
	return nil
}

// consoleWriter returns where user facing output goes: the command's
// standard output, or the append-only log file in silent mode.
func consoleWriter(cmd *cobra.Command, cfg *config.Config) (io.Writer, func(), error) {
	if !cfg.Logging.Silent {
		return cmd.OutOrStdout(), func() {}, nil
	}
	path := cfg.LogFilePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Silent mode: output is written to %s\n", path)
	return file, func() { _ = file.Close() }, nil
}

// planPass plans one pass. capabilities is shared by every pass of a run so
// the output filesystem is inspected once.
func planPass(ctx context.Context, cmd *cobra.Command, cfg *config.Config, runID string, capabilities organizer.CapabilitySource, logger *slog.Logger, tty bool) (*organizer.Result, error) {
	var classifier classify.Classifier
	if cfg.Organize.Mode == config.ModeContent {
		built, err := newClassifier(cfg, logger)
		if err != nil {
			return nil, err
		}
		classifier = built
	}

	org := organizer.New(cfg, classifier, capabilities, logger)
	org.RunID = runID

	var bar *progressbar.ProgressBar
	if cfg.Organize.Mode == config.ModeContent && tty && !cfg.Logging.Silent && isTerminal(cmd.ErrOrStderr()) {
		org.OnCollected = func(total int) {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionSetDescription("Classifying"),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}
		org.OnClassified = func(organizer.Item, error) {
			if bar != nil {
				_ = bar.Add(1)
			}
		}
	}

	result, err := org.Plan(ctx)
	if bar != nil {
		_ = bar.Finish()
	}
	return result, err
}

func newClassifier(cfg *config.Config, logger *slog.Logger) (classify.Classifier, error) {
	prompts, err := classify.LoadPrompts(cfg.Prompts.File)
	if err != nil {
		return nil, err
	}
	settings := cfg.GetLLM()
	client := llm.NewClient(llm.Config{
		APIKey:         settings.APIKey,
		BaseURL:        settings.BaseURL,
		TextModel:      settings.TextModel,
		VisionModel:    settings.VisionModel,
		TimeoutSeconds: settings.TimeoutSeconds,
		MaxImageWidth:  settings.MaxImageWidth,
		Temperature:    settings.Temperature,
	}, llm.WithRetryMaxAttempts(settings.MaxAttempts))
	extractor := extract.New(cfg.Organize.TextCharLimit, cfg.Organize.PDFPageLimit)
	return classify.NewLLMClassifier(client, extractor, prompts, logger), nil
}

// recordRun stores the run in the journal. Journal failures never fail the
// command.
func recordRun(ctx context.Context, cfg *config.Config, result *organizer.Result, report *executor.Report, logger *slog.Logger) {
	if !cfg.Organize.Journal {
		return
	}
	store, err := journal.Open(cfg.JournalPath())
	if err != nil {
		logging.WarnWithContext(logger, "journal unavailable", "journal_open_failed",
			logging.String("path", cfg.JournalPath()),
			logging.Error(err),
			logging.String(logging.FieldImpact, "run not recorded in history"),
		)
		return
	}
	defer store.Close()

	run := journal.Run{
		ID:         result.RunID,
		StartedAt:  result.StartedAt,
		FinishedAt: report.FinishedAt,
		InputDir:   cfg.Paths.InputDir,
		OutputDir:  cfg.Paths.OutputDir,
		Mode:       result.Mode,
		DryRun:     report.DryRun,
	}
	if err := store.RecordRun(ctx, run, report); err != nil {
		logging.WarnWithContext(logger, "failed to record run", "journal_write_failed",
			logging.String("run_id", result.RunID),
			logging.Error(err),
			logging.String(logging.FieldImpact, "run not recorded in history"),
		)
	}
}
