package pipeline

import (
	"context"
	"log/slog"

	"github.com/leakspider/leakspider/internal/model"
)

// Step is one stage of a crawl run. Stages execute in order and accumulate
// their output on the shared report.
//
// Design decision: An interface instead of func values because stages carry
// configuration (spider limits, database handles) and a Name for logging.
type Step interface {
	// Do executes the stage. An error return means the stage failed in a
	// way that makes later stages pointless for this seed; recoverable
	// problems go on the report instead.
	Do(ctx context.Context, report *model.CrawlReport) error

	// Name identifies the stage in logs and report errors.
	Name() string
}

// Pipeline runs the stages of one seed's crawl in sequence.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger

	// continueOnError keeps executing later stages after one fails.
	// Off by default: a stage that errors (crawl never started, database
	// unusable) leaves nothing meaningful for the stages behind it.
	continueOnError bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError lets the pipeline run remaining stages after a stage
// fails. The failure is still recorded on the report.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates an empty Pipeline; add stages with AddStep or AddSteps.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{steps: make([]Step, 0)}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends one stage. Stages run in insertion order.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends several stages at once.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs every stage against the report.
//
// Cancellation is checked between stages, not during them; stages manage
// their own timeouts, and the gap between stages is where cleanup is safe.
func (p *Pipeline) Execute(ctx context.Context, report *model.CrawlReport) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled",
				slog.String("step", step.Name()),
				slog.String("seed", report.Seed),
				slog.String("reason", err.Error()))
			report.AddError("cancelled before step " + step.Name())
			return err
		}

		p.logger.Info("executing step",
			slog.String("step", step.Name()),
			slog.String("seed", report.Seed))

		if err := step.Do(ctx, report); err != nil {
			p.logger.Error("step failed",
				slog.String("step", step.Name()),
				slog.String("seed", report.Seed),
				slog.String("error", err.Error()))
			report.AddError(step.Name() + ": " + err.Error())

			if !p.continueOnError {
				return err
			}
			continue
		}

		p.logger.Debug("step completed",
			slog.String("step", step.Name()),
			slog.String("seed", report.Seed))
	}
	return nil
}

// StepCount returns the number of stages.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the stage names in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
