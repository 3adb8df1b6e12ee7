package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type rejected struct{}

func (rejected) Error() string  { return "rejected" }
func (rejected) Expected() bool { return true }

func TestRequestIDIsAttached(t *testing.T) {
	var buf bytes.Buffer
	InitializeWithWriter(&buf, "debug", "json")
	t.Cleanup(func() { Initialize("info", "text") })

	ctx := WithRequestID(context.Background(), "req-123")
	InfoContext(ctx, "hello")

	assert.Contains(t, buf.String(), `"request_id":"req-123"`)
	assert.Equal(t, "req-123", RequestID(ctx))
	assert.Empty(t, RequestID(context.Background()))
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitializeWithWriter(&buf, "warn", "text")
	t.Cleanup(func() { Initialize("info", "text") })

	Info("dropped")
	Warn("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func TestExitMethodWithErrorLevels(t *testing.T) {
	var buf bytes.Buffer
	InitializeWithWriter(&buf, "warn", "json")
	t.Cleanup(func() { Initialize("info", "text") })

	ExitMethodWithError("svc.Op", rejected{})
	assert.Contains(t, buf.String(), `"level":"WARN"`)

	buf.Reset()
	ExitMethodWithError("svc.Op", errors.New("db down"))
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
}

func TestStateTransition(t *testing.T) {
	var buf bytes.Buffer
	InitializeWithWriter(&buf, "info", "json")
	t.Cleanup(func() { Initialize("info", "text") })

	StateTransition(context.Background(), "book", 7, "available", "borrowed")
	out := buf.String()
	assert.Contains(t, out, `"entity":"book"`)
	assert.Contains(t, out, `"from":"available"`)
	assert.Contains(t, out, `"to":"borrowed"`)
}
