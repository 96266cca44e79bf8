package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCounter struct{ n int }

func (c *countingCounter) Inc() { c.n++ }

func TestLogReporter_LogsWithRecordIdentifier(t *testing.T) {
	// Given: a JSON logger and a counter
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	counter := &countingCounter{}
	r := NewLogReporter(logger, counter)

	// When: notifying inside a build context
	ctx := WithIdentifier(context.Background(), "druid:bc123df4567")
	r.Notify(ctx, "Bad association found on druid:bc123df4567. druid:xh235dd9059 could not be found")

	// Then: the entry carries the identifier and the counter moved
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "build_notification", entry["msg"])
	assert.Equal(t, "druid:bc123df4567", entry["record_id"])
	assert.Contains(t, entry["message"], "could not be found")
	assert.Equal(t, 1, counter.n)
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	r.Notify(context.Background(), "one")
	r.Notify(context.Background(), "two")

	assert.Equal(t, []string{"one", "two"}, r.Messages())

	r.Reset()
	assert.Empty(t, r.Messages())
}

func TestIdentifier_EmptyWithoutBuildContext(t *testing.T) {
	assert.Empty(t, Identifier(context.Background()))
	Discard.Notify(context.Background(), "ignored")
}
