package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextHandler_AddsIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil)))

	ctx := WithUserID(context.Background(), "alice")
	ctx = WithArticleID(ctx, 7)
	ctx = WithDraftID(ctx, 12)
	logger.InfoContext(ctx, "draft published", "files", 2)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "alice", rec["user_id"])
	assert.Equal(t, float64(7), rec["article_id"])
	assert.Equal(t, float64(12), rec["draft_id"])
	assert.Equal(t, float64(2), rec["files"])
}

func TestContextHandler_OmitsMissingIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil))).With("component", "mover")

	logger.InfoContext(context.Background(), "tick")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "mover", rec["component"])
	assert.NotContains(t, rec, "article_id")
	assert.NotContains(t, rec, "draft_id")
	assert.NotContains(t, rec, "user_id")
}
