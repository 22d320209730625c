package pipeline

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"testing"
)

// mockStep is a Step whose behaviour is set per test.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, r *Result) error
	callCount int
}

func (m *mockStep) Do(ctx context.Context, r *Result) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, r)
	}
	return nil
}

func (m *mockStep) Name() string {
	return m.name
}

func TestPipelineNew(t *testing.T) {
	t.Parallel()

	t.Run("creates pipeline with default settings", func(t *testing.T) {
		t.Parallel()

		p := New()
		if p.StepCount() != 0 {
			t.Errorf("expected 0 steps, got %d", p.StepCount())
		}
		if p.continueOnError {
			t.Error("expected continueOnError to default to false")
		}
		if p.logger == nil {
			t.Error("expected default logger")
		}
	})

	t.Run("applies WithContinueOnError option", func(t *testing.T) {
		t.Parallel()

		if p := New(WithContinueOnError(true)); !p.continueOnError {
			t.Error("expected continueOnError to be true")
		}
	})
}

func TestPipelineStepNames(t *testing.T) {
	t.Parallel()

	p := New()
	p.AddStep(&mockStep{name: "crawl"})
	p.AddSteps(&mockStep{name: "flatten"}, &mockStep{name: "upload"})

	want := []string{"crawl", "flatten", "upload"}
	if got := p.StepNames(); !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if p.StepCount() != 3 {
		t.Errorf("expected 3 steps, got %d", p.StepCount())
	}
}

func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("runs steps in order", func(t *testing.T) {
		t.Parallel()

		var order []string
		record := func(name string) *mockStep {
			return &mockStep{name: name, doFunc: func(context.Context, *Result) error {
				order = append(order, name)
				return nil
			}}
		}

		p := New()
		p.AddSteps(record("a"), record("b"), record("c"))

		r := NewResult(2025)
		if err := p.Execute(context.Background(), r); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if !slices.Equal(order, []string{"a", "b", "c"}) {
			t.Errorf("unexpected order %v", order)
		}
		if !slices.Equal(r.Completed, []string{"a", "b", "c"}) {
			t.Errorf("unexpected completed steps %v", r.Completed)
		}
		if r.Err() != nil {
			t.Errorf("expected no errors, got %v", r.Err())
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		first := &mockStep{name: "first", doFunc: func(context.Context, *Result) error { return boom }}
		second := &mockStep{name: "second"}

		p := New()
		p.AddSteps(first, second)

		r := NewResult(2025)
		err := p.Execute(context.Background(), r)
		if !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
		if !strings.HasPrefix(err.Error(), "first: ") {
			t.Errorf("expected error to name the step, got %v", err)
		}
		if second.callCount != 0 {
			t.Error("expected second step to be skipped")
		}
		if len(r.Errors) != 1 {
			t.Errorf("expected 1 recorded error, got %d", len(r.Errors))
		}
	})

	t.Run("continues on error when configured", func(t *testing.T) {
		t.Parallel()

		errA := errors.New("a failed")
		errC := errors.New("c failed")
		p := New(WithContinueOnError(true))
		p.AddSteps(
			&mockStep{name: "a", doFunc: func(context.Context, *Result) error { return errA }},
			&mockStep{name: "b"},
			&mockStep{name: "c", doFunc: func(context.Context, *Result) error { return errC }},
		)

		r := NewResult(2025)
		err := p.Execute(context.Background(), r)
		if !errors.Is(err, errA) || !errors.Is(err, errC) {
			t.Errorf("expected both errors joined, got %v", err)
		}
		if !slices.Equal(r.Completed, []string{"b"}) {
			t.Errorf("unexpected completed steps %v", r.Completed)
		}
	})

	t.Run("respects cancellation between steps", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		first := &mockStep{name: "first", doFunc: func(context.Context, *Result) error {
			cancel()
			return nil
		}}
		second := &mockStep{name: "second"}

		p := New()
		p.AddSteps(first, second)

		r := NewResult(2025)
		if err := p.Execute(ctx, r); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if second.callCount != 0 {
			t.Error("expected second step to be skipped")
		}
		if !errors.Is(r.Err(), context.Canceled) {
			t.Errorf("expected cancellation recorded, got %v", r.Err())
		}
	})
}

func TestPipelineWithLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	p := New(WithLogger(logger))
	p.AddStep(&mockStep{name: "flatten"})
	if err := p.Execute(context.Background(), NewResult(2025)); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{"executing step", "step=flatten", "year=2025", "step completed"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
}
