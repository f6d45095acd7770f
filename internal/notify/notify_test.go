package notify_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qcm-suite/qcm/internal/notify"
)

func TestQueueKeepsNewestAndPopsInOrder(t *testing.T) {
	q := notify.NewQueue(2)
	ctx := context.Background()
	q.Success(ctx, "Supplier created", "one")
	q.Error(ctx, "Supplier update failed", "two")
	q.Success(ctx, "Supplier deleted", "three")

	require.Equal(t, 2, q.Len())
	first, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, notify.KindError, first.Kind)
	assert.Equal(t, "two", first.Message)
	assert.NotEmpty(t, first.ID)

	rest := q.Drain()
	require.Len(t, rest, 1)
	assert.Equal(t, "three", rest[0].Message)
	assert.Empty(t, q.Drain())

	_, ok = q.Pop()
	assert.False(t, ok)
}

func TestMultiFansOut(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	q := notify.NewQueue(0)
	m := notify.Multi{q, notify.NewLog(logger), nil}

	m.Error(context.Background(), "Unit delete failed", "in use")
	assert.Equal(t, 1, q.Len())
	assert.Contains(t, buf.String(), `"msg":"Unit delete failed"`)
	assert.Contains(t, buf.String(), `"message":"in use"`)
}
