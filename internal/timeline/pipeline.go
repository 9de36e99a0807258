package timeline

import (
	"context"
	"log/slog"

	"liftline/pkg/contracts/domain"
)

// PipelineConfig bundles the stage configurations.
type PipelineConfig struct {
	Aggregator AggregatorConfig
}

// Pipeline runs the structural stages in order: trace cluster aggregation,
// then fault-code merging. Each stage consumes the previous stage's output
// and produces a fresh collection; row count never grows. Tagging and
// attribute extraction live in the rules package and run after this.
type Pipeline struct {
	logger     *slog.Logger
	aggregator *Aggregator
	merger     *FaultMerger
}

// NewPipeline creates the structural pipeline.
func NewPipeline(logger *slog.Logger, cfg PipelineConfig) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		logger:     logger,
		aggregator: NewAggregator(logger, cfg.Aggregator),
		merger:     NewFaultMerger(logger),
	}
}

// Run executes both stages over the sheet's rows and returns the condensed
// collection. The input sheet is never mutated; the pipeline holds no state
// between invocations, so concurrent runs on separate sheets are safe.
func (p *Pipeline) Run(ctx context.Context, sheet domain.Sheet) []domain.Row {
	rows := p.aggregator.Aggregate(ctx, sheet.Rows, sheet.Headers)
	rows = p.merger.Merge(ctx, rows, sheet.Headers)

	p.logger.InfoContext(ctx, "structural pipeline complete",
		slog.String("sheet", sheet.Name),
		slog.Int("rows_in", len(sheet.Rows)),
		slog.Int("rows_out", len(rows)))
	return rows
}
