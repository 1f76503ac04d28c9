package events

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/interview-console/internal/db"
)

type capture struct {
	bodies [][]byte
	err    error
}

func (c *capture) Publish(_ context.Context, body []byte) error {
	c.bodies = append(c.bodies, body)
	return c.err
}

func newRepo(t *testing.T) *Repo {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "events.db") + "?_pragma=foreign_keys(1)"
	conn, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewRepo(conn)
}

func TestRecorder_AppendsAndPublishes(t *testing.T) {
	ctx := context.Background()
	pub := &capture{}
	rec := NewRecorder(newRepo(t), pub, nil, TypeEvaluationSaved)

	require.NoError(t, rec.Record(ctx, TypeScoreRecorded, "iv-1", map[string]any{"question_id": "q1"}))
	require.NoError(t, rec.Record(ctx, TypeEvaluationSaved, "iv-1", map[string]any{"total_score": 73.3}))
	require.NoError(t, rec.Record(ctx, TypeScoreRecorded, "iv-2", nil))

	got, err := rec.List(ctx, "iv-1", 0, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, TypeScoreRecorded, got[0].Type)
	assert.Equal(t, TypeEvaluationSaved, got[1].Type)
	assert.Less(t, got[0].Seq, got[1].Seq)
	assert.JSONEq(t, `{"total_score":73.3}`, string(got[1].Data))

	after, err := rec.List(ctx, "iv-1", got[0].Seq, 10)
	require.NoError(t, err)
	assert.Len(t, after, 1)

	require.Len(t, pub.bodies, 1)
	var e Event
	require.NoError(t, json.Unmarshal(pub.bodies[0], &e))
	assert.Equal(t, "iv-1", e.Key)
	assert.Equal(t, TypeEvaluationSaved, e.Type)
}

func TestRecorder_PublishFailureIsNotFatal(t *testing.T) {
	pub := &capture{err: errors.New("broker down")}
	rec := NewRecorder(newRepo(t), pub, nil, TypeEvaluationSaved)
	assert.NoError(t, rec.Record(context.Background(), TypeEvaluationSaved, "iv-1", map[string]any{}))
	assert.Len(t, pub.bodies, 1)
}

func TestNewPublisher_NoopWithoutURL(t *testing.T) {
	p := NewPublisher("", "q", 0, nil)
	assert.IsType(t, Noop{}, p)
	assert.NoError(t, p.Publish(context.Background(), []byte("{}")))
}
