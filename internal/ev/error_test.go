package ev_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capatazlib/go-evassert/emitter"
	"github.com/capatazlib/go-evassert/internal/ev"
	"github.com/capatazlib/go-evassert/internal/verb"
)

func TestExplainTimeout(t *testing.T) {
	em := emitter.New()
	emitWhenSubscribed(em, "foo", args("bar"))

	_, err := ev.NewAcquirer(ev.WithTimeout(shortTimeout)).
		Acquire(context.Background(), em, "foo", 2)
	require.Error(t, err)

	explain := ev.ExplainError(err)
	assert.Contains(t, explain, "expected 2 event(s) on channel 'foo', but saw 1")
	assert.Contains(t, explain, "seen events:")
	assert.Contains(t, explain, "1: [bar]")

	var kvs ev.ErrKVs
	require.True(t, errors.As(err, &kvs))
	assert.Equal(t, "foo", kvs.KVs()["acquisition.channel"])
	assert.Equal(t, 2, kvs.KVs()["acquisition.required"])
	assert.Equal(t, 1, kvs.KVs()["acquisition.seen"])
}

func TestExplainUnexpectedEvents(t *testing.T) {
	em := emitter.New()
	emitWhenSubscribed(em, "foo", args("bar"))

	_, err := ev.NewAcquirer(ev.WithTimeout(shortTimeout)).
		Acquire(context.Background(), em, "foo", 0)
	require.Error(t, err)
	assert.Contains(t, ev.ExplainError(err), "expected no events on channel 'foo', but saw 1")
}

func TestExplainCanceled(t *testing.T) {
	em := emitter.New()
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for em.ListenerCount("foo") == 0 {
			time.Sleep(time.Millisecond)
		}
		em.Emit("foo", "bar")
		cancel()
	}()

	_, err := ev.NewAcquirer(ev.WithTimeout(time.Minute)).Acquire(ctx, em, "foo", 2)
	require.Error(t, err)

	explain := ev.ExplainError(err)
	assert.Contains(t, explain, "acquisition on channel 'foo' was canceled after seeing 1 of 2 event(s)")
	assert.Contains(t, explain, "> context canceled")
	assert.NotEqual(t, err.Error(), explain)
}

func TestExplainMatchFailures(t *testing.T) {
	err := ev.Match(context.Background(), verb.New(), []any{1, 2}, []any{"to equal", 3, 4})
	require.Error(t, err)

	explain := ev.ExplainError(err)
	assert.Contains(t, explain, "2 comparisons failed:")
	assert.Contains(t, explain, "expected value 1 (1) 'to equal' 3")
	assert.Contains(t, explain, "expected value 2 (2) 'to equal' 4")

	var kvs ev.ErrKVs
	require.True(t, errors.As(err, &kvs))
	assert.Equal(t, 2, kvs.KVs()["match.failures"])
	assert.Equal(t, 1, kvs.KVs()["match.0.comparison.position"])
	assert.Equal(t, 2, kvs.KVs()["match.1.comparison.position"])
}

func TestExplainContractViolation(t *testing.T) {
	em := emitter.New()
	err := ev.NewAcquirer().AssertNth(context.Background(), em, "foo", 1, ev.Expect("to equal", 42))
	require.Error(t, err)

	assert.Equal(t, "value supplied was not event values array", err.Error())
	explain := ev.ExplainError(err)
	assert.Contains(t, explain, "assertion 'nth event' was called incorrectly")
	assert.Contains(t, explain, "value has type int")
}

func TestExplainIndexOutOfRange(t *testing.T) {
	err := ev.ForEvent(context.Background(), verb.New(), ev.RecordSet{}, 1, []any{"to equal", 1})
	assert.Equal(t, "expected event 1 was not seen, only 0 event(s) were captured", ev.ExplainError(err))
}

func TestExplainForeignError(t *testing.T) {
	assert.Equal(t, "boom", ev.ExplainError(errors.New("boom")))
}
