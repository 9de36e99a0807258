package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"liftline/internal/config"
	"liftline/internal/exporter"
	"liftline/internal/infrastructure"
	"liftline/internal/rules"
	"liftline/internal/timeline"
	"liftline/internal/workbook"
	"liftline/pkg/contracts/domain"
)

// AnalysisService turns an uploaded workbook into the condensed timeline
// text. It owns the full chain: workbook parsing, trace cluster aggregation,
// fault merging, rule annotation and text rendering. The service holds no
// per-request state, so a single instance serves concurrent requests.
type AnalysisService struct {
	config   *config.Config
	logger   *slog.Logger
	reader   *workbook.Reader
	ruleCfg  rules.Config
	engine   *rules.Engine
	pipeline *timeline.Pipeline
	renderer *exporter.TextRenderer
	metrics  *infrastructure.BusinessMetrics
}

// NewAnalysisService creates an analysis service using the default logger.
func NewAnalysisService(cfg *config.Config) (*AnalysisService, error) {
	return NewAnalysisServiceWithLogger(cfg, slog.Default(), nil)
}

// NewAnalysisServiceWithLogger creates an analysis service with a specific
// logger and optional business metrics. The rule file named in the
// configuration is loaded once at construction; per-request overrides derive
// from that snapshot.
func NewAnalysisServiceWithLogger(cfg *config.Config, logger *slog.Logger, metrics *infrastructure.BusinessMetrics) (*AnalysisService, error) {
	if logger == nil {
		logger = slog.Default()
	}

	ruleCfg, err := rules.LoadConfig(cfg.Analysis.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load rule config: %w", err)
	}

	engine, err := rules.NewEngine(logger, ruleCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build rule engine: %w", err)
	}

	pipeline := timeline.NewPipeline(logger, timeline.PipelineConfig{
		Aggregator: timeline.AggregatorConfig{Families: ruleCfg.TraceFamilies},
	})

	logger.Info("AnalysisService initialized",
		slog.String("rules_file", cfg.Analysis.RulesFile),
		slog.Int("trace_families", len(ruleCfg.TraceFamilies)),
		slog.Int("delay_threshold_minutes", ruleCfg.DelayThresholdMinutes))

	return &AnalysisService{
		config:   cfg,
		logger:   logger,
		reader:   workbook.NewReader(logger),
		ruleCfg:  ruleCfg,
		engine:   engine,
		pipeline: pipeline,
		renderer: exporter.NewTextRenderer(engine.AttributeOrder()),
		metrics:  metrics,
	}, nil
}

// RuleConfig returns the rule configuration loaded at construction.
func (s *AnalysisService) RuleConfig() rules.Config {
	return s.ruleCfg
}

// Analyze parses a workbook from the reader and runs the full pipeline over
// its timeline sheet.
func (s *AnalysisService) Analyze(ctx context.Context, src io.Reader, opts domain.AnalysisOptions) (*domain.AnalysisResult, error) {
	start := time.Now()
	infrastructure.RecordActiveAnalysisChange(ctx, s.metrics, 1)
	defer infrastructure.RecordActiveAnalysisChange(ctx, s.metrics, -1)

	sheet, err := s.reader.Read(ctx, src)
	if err != nil {
		s.recordFailure(ctx, start, err)
		return nil, fmt.Errorf("%w: %v", ErrWorkbookUnreadable, err)
	}

	return s.run(ctx, sheet, opts, start)
}

// AnalyzeFile parses a workbook from disk and runs the full pipeline over its
// timeline sheet.
func (s *AnalysisService) AnalyzeFile(ctx context.Context, path string, opts domain.AnalysisOptions) (*domain.AnalysisResult, error) {
	start := time.Now()
	infrastructure.RecordActiveAnalysisChange(ctx, s.metrics, 1)
	defer infrastructure.RecordActiveAnalysisChange(ctx, s.metrics, -1)

	sheet, err := s.reader.ReadFile(ctx, path)
	if err != nil {
		s.recordFailure(ctx, start, err)
		return nil, fmt.Errorf("%w: %v", ErrWorkbookUnreadable, err)
	}

	return s.run(ctx, sheet, opts, start)
}

// run executes the structural stages, rule annotation and rendering over an
// already parsed sheet. Cancellation is honored between stages.
func (s *AnalysisService) run(ctx context.Context, sheet *domain.Sheet, opts domain.AnalysisOptions, start time.Time) (*domain.AnalysisResult, error) {
	infrastructure.AddSpanEvent(ctx, "analysis.sheet_parsed", map[string]interface{}{
		"sheet":   sheet.Name,
		"rows":    len(sheet.Rows),
		"columns": len(sheet.Headers),
	})

	engine, renderer, err := s.engineFor(opts)
	if err != nil {
		s.recordFailure(ctx, start, err)
		return nil, err
	}

	rows := s.pipeline.Run(ctx, *sheet)
	s.recordStage(ctx, "structural", len(rows))

	if err := stageCheckpoint(ctx); err != nil {
		s.recordFailure(ctx, start, err)
		return nil, err
	}

	rows = engine.Annotate(ctx, rows, sheet.Headers)
	s.recordStage(ctx, "annotate", len(rows))

	if err := stageCheckpoint(ctx); err != nil {
		s.recordFailure(ctx, start, err)
		return nil, err
	}

	result := &domain.AnalysisResult{
		SheetName: sheet.Name,
		Headers:   sheet.Headers,
		Rows:      rows,
		Text:      renderer.Render(rows, sheet.Headers),
	}
	if opts.IncludeDebug {
		result.Debug = renderer.DebugReport(rows, sheet.Headers)
	}
	s.recordStage(ctx, "render", len(rows))

	infrastructure.RecordAnalysisMetrics(ctx, s.metrics, sheet.Name, time.Since(start), len(sheet.Rows), len(rows), nil)

	s.logger.InfoContext(ctx, "analysis complete",
		slog.String("sheet", sheet.Name),
		slog.Int("rows_in", len(sheet.Rows)),
		slog.Int("rows_out", len(rows)),
		slog.Bool("debug", opts.IncludeDebug),
		slog.Duration("duration", time.Since(start)))

	return result, nil
}

// stageCheckpoint reports context cancellation between stages. An expired
// deadline maps to ErrAnalysisTimeout; a plain cancellation passes through
// unchanged.
func stageCheckpoint(ctx context.Context) error {
	switch err := ctx.Err(); err {
	case nil:
		return nil
	case context.DeadlineExceeded:
		return fmt.Errorf("%w: %v", ErrAnalysisTimeout, err)
	default:
		return err
	}
}

// engineFor returns the engine and renderer honoring per-request overrides.
// A negative threshold is rejected; without an override the shared instances
// are reused, and an override derives a one-off engine from the configuration
// snapshot.
func (s *AnalysisService) engineFor(opts domain.AnalysisOptions) (*rules.Engine, *exporter.TextRenderer, error) {
	if opts.DelayThresholdMinutes < 0 {
		return nil, nil, fmt.Errorf("%w: delay threshold %d minutes", ErrInvalidInput, opts.DelayThresholdMinutes)
	}
	if opts.DelayThresholdMinutes == 0 || opts.DelayThresholdMinutes == s.ruleCfg.DelayThresholdMinutes {
		return s.engine, s.renderer, nil
	}

	cfg := s.ruleCfg
	cfg.DelayThresholdMinutes = opts.DelayThresholdMinutes

	engine, err := rules.NewEngine(s.logger, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build rule engine: %w", err)
	}
	return engine, exporter.NewTextRenderer(engine.AttributeOrder()), nil
}

// recordStage emits the per-stage counter and span event.
func (s *AnalysisService) recordStage(ctx context.Context, stage string, rows int) {
	if s.metrics != nil {
		s.metrics.AnalysisStagesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
	}
	infrastructure.AddSpanEvent(ctx, "analysis.stage_completed", map[string]interface{}{
		"stage": stage,
		"rows":  rows,
	})
}

// recordFailure emits failure metrics and marks the span.
func (s *AnalysisService) recordFailure(ctx context.Context, start time.Time, err error) {
	infrastructure.RecordAnalysisMetrics(ctx, s.metrics, "", time.Since(start), 0, 0, err)
	infrastructure.RecordError(ctx, err)
	logAnalysisError(ctx, "analyze", "analysis failed",
		slog.String("error", err.Error()))
}
