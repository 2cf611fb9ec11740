package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/leakspider/leakspider/internal/model"
)

// fakeStep records execution order and can fail on demand.
type fakeStep struct {
	name     string
	err      error
	executed *[]string
}

func (f *fakeStep) Name() string { return f.name }

func (f *fakeStep) Do(_ context.Context, _ *model.CrawlReport) error {
	*f.executed = append(*f.executed, f.name)
	return f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestPipelineExecute tests step ordering and error handling.
func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("executes steps in order", func(t *testing.T) {
		t.Parallel()

		var executed []string
		p := New(WithLogger(discardLogger()))
		p.AddSteps(
			&fakeStep{name: "first", executed: &executed},
			&fakeStep{name: "second", executed: &executed},
			&fakeStep{name: "third", executed: &executed},
		)

		report := model.NewCrawlReport("example.onion")
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"first", "second", "third"}
		if len(executed) != len(want) {
			t.Fatalf("expected %v, got %v", want, executed)
		}
		for i := range want {
			if executed[i] != want[i] {
				t.Errorf("step %d: expected %q, got %q", i, want[i], executed[i])
			}
		}
	})

	t.Run("stops on first error by default", func(t *testing.T) {
		t.Parallel()

		var executed []string
		boom := errors.New("boom")
		p := New(WithLogger(discardLogger()))
		p.AddSteps(
			&fakeStep{name: "first", executed: &executed},
			&fakeStep{name: "second", err: boom, executed: &executed},
			&fakeStep{name: "third", executed: &executed},
		)

		report := model.NewCrawlReport("example.onion")
		if err := p.Execute(context.Background(), report); !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
		if len(executed) != 2 {
			t.Errorf("expected 2 steps executed, got %v", executed)
		}
		if len(report.Errors) != 1 {
			t.Errorf("expected error recorded in report, got %v", report.Errors)
		}
	})

	t.Run("continue on error runs remaining steps", func(t *testing.T) {
		t.Parallel()

		var executed []string
		p := New(WithLogger(discardLogger()), WithContinueOnError(true))
		p.AddSteps(
			&fakeStep{name: "first", err: errors.New("boom"), executed: &executed},
			&fakeStep{name: "second", executed: &executed},
		)

		report := model.NewCrawlReport("example.onion")
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(executed) != 2 {
			t.Errorf("expected both steps executed, got %v", executed)
		}
	})

	t.Run("respects cancellation between steps", func(t *testing.T) {
		t.Parallel()

		var executed []string
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		p := New(WithLogger(discardLogger()))
		p.AddStep(&fakeStep{name: "never", executed: &executed})

		report := model.NewCrawlReport("example.onion")
		if err := p.Execute(ctx, report); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if len(executed) != 0 {
			t.Errorf("expected no steps executed, got %v", executed)
		}
	})
}

// TestPipelineIntrospection tests step counting and naming.
func TestPipelineIntrospection(t *testing.T) {
	t.Parallel()

	var executed []string
	p := New(WithLogger(discardLogger()))
	p.AddSteps(
		&fakeStep{name: "a", executed: &executed},
		&fakeStep{name: "b", executed: &executed},
	)

	if p.StepCount() != 2 {
		t.Errorf("expected 2 steps, got %d", p.StepCount())
	}
	names := p.StepNames()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("unexpected step names: %v", names)
	}
}
