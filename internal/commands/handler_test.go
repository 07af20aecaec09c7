package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-sitelint/pkg/interfaces"
)

type testMessage struct{}

func (testMessage) Type() string { return "sitelint.test.message" }

func (testMessage) Validate() error { return nil }

type invalidMessage struct{}

func (invalidMessage) Type() string { return "sitelint.test.invalid" }

func (invalidMessage) Validate() error {
	return validationError()
}

func validationError() error {
	return errors.New("invalid")
}

func TestHandlerExecuteSuccess(t *testing.T) {
	called := false
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		called = true
		return nil
	})

	if err := h.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !called {
		t.Fatal("expected handler to be invoked")
	}
}

func TestHandlerValidationShortCircuitsExecution(t *testing.T) {
	called := false
	h := NewHandler[invalidMessage](func(ctx context.Context, msg invalidMessage) error {
		called = true
		return nil
	})

	err := h.Execute(context.Background(), invalidMessage{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when validation fails")
	}
}

func TestHandlerContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		called = true
		return nil
	})

	err := h.Execute(ctx, testMessage{})
	if err == nil {
		t.Fatal("expected context cancellation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when context is cancelled")
	}
}

func TestHandlerWrapsExecutionError(t *testing.T) {
	execErr := errors.New("boom")
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		return execErr
	})

	err := h.Execute(context.Background(), testMessage{})
	if err == nil {
		t.Fatal("expected wrapped execution error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if !goerrors.HasCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category to propagate, got %v", err)
	}
}

func TestHandlerHonoursTimeoutOption(t *testing.T) {
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(20 * time.Millisecond):
			return nil
		}
	}, WithTimeout[testMessage](10*time.Millisecond))

	err := h.Execute(context.Background(), testMessage{})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category for timeout, got %v", err)
	}
}

func TestHandlerTelemetryReceivesOutcome(t *testing.T) {
	execErr := errors.New("boom")
	var infos []TelemetryInfo
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		return execErr
	},
		WithOperation[testMessage]("lint.site"),
		WithMessageFields(func(testMessage) map[string]any {
			return map[string]any{"root": "/site"}
		}),
		WithTelemetry(func(_ context.Context, _ testMessage, info TelemetryInfo) {
			infos = append(infos, info)
		}),
	)

	if err := h.Execute(context.Background(), testMessage{}); err == nil {
		t.Fatal("expected error")
	}
	if len(infos) != 1 {
		t.Fatalf("expected one telemetry call, got %d", len(infos))
	}
	info := infos[0]
	if info.Status != TelemetryStatusFailed {
		t.Fatalf("expected failed status, got %s", info.Status)
	}
	if info.Command != "sitelint.test.message" || info.Operation != "lint.site" {
		t.Fatalf("unexpected telemetry identity %+v", info)
	}
	if info.Fields["root"] != "/site" {
		t.Fatalf("expected message fields, got %+v", info.Fields)
	}
	if info.Error == nil {
		t.Fatal("expected telemetry to carry the error")
	}
}

type fieldsRecorder struct {
	fields   map[string]any
	messages []string
}

func (r *fieldsRecorder) Trace(string, ...any)       {}
func (r *fieldsRecorder) Debug(string, ...any)       {}
func (r *fieldsRecorder) Info(msg string, _ ...any)  { r.messages = append(r.messages, msg) }
func (r *fieldsRecorder) Warn(string, ...any)        {}
func (r *fieldsRecorder) Error(msg string, _ ...any) { r.messages = append(r.messages, msg) }
func (r *fieldsRecorder) Fatal(string, ...any)       {}

func (r *fieldsRecorder) WithContext(context.Context) interfaces.Logger { return r }

func (r *fieldsRecorder) WithFields(fields map[string]any) interfaces.Logger {
	if r.fields == nil {
		r.fields = map[string]any{}
	}
	for k, v := range fields {
		r.fields[k] = v
	}
	return r
}

func TestDefaultTelemetryLogsSuccess(t *testing.T) {
	recorder := &fieldsRecorder{}
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		return nil
	}, WithTelemetry(DefaultTelemetry[testMessage](recorder)))

	if err := h.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(recorder.messages) != 1 || recorder.messages[0] != "command.execute.success" {
		t.Fatalf("unexpected log messages %v", recorder.messages)
	}
	if recorder.fields["command"] != "sitelint.test.message" {
		t.Fatalf("expected command field, got %+v", recorder.fields)
	}
}

func TestDeadline(t *testing.T) {
	var missing context.Context
	ctx, cancel := Deadline(missing, 0)
	defer cancel()
	if ctx == nil {
		t.Fatal("expected background context for nil input")
	}
	if _, ok := ctx.Deadline(); ok {
		t.Fatal("expected no deadline for zero timeout")
	}

	bounded, cancelBounded := Deadline(context.Background(), time.Minute)
	defer cancelBounded()
	deadline, ok := bounded.Deadline()
	if !ok || time.Until(deadline) > time.Minute {
		t.Fatalf("expected deadline within a minute, got %v %v", deadline, ok)
	}
}
