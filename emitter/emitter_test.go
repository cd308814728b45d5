package emitter_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capatazlib/go-evassert/emitter"
	"github.com/capatazlib/go-evassert/internal/ev"
)

func recorder() (*ev.Listener, *[][]any) {
	var acc [][]any
	return ev.NewListener(func(args []any) { acc = append(acc, args) }), &acc
}

func TestEmitDeliversInOrder(t *testing.T) {
	em := emitter.New()
	l, got := recorder()
	em.Subscribe("foo", l)

	assert.Equal(t, 1, em.Emit("foo", "bar"))
	assert.Equal(t, 1, em.Emit("foo", "baz", 2))
	assert.Equal(t, 0, em.Emit("other", "nope"))

	assert.Equal(t, [][]any{{"bar"}, {"baz", 2}}, *got)
}

func TestEmitCopiesArguments(t *testing.T) {
	em := emitter.New()

	var first []any
	em.Subscribe("foo", ev.NewListener(func(args []any) {
		first = args
		args[0] = "mutated"
	}))
	l, got := recorder()
	em.Subscribe("foo", l)

	em.Emit("foo", "bar")
	assert.Equal(t, []any{"mutated"}, first)
	assert.Equal(t, [][]any{{"bar"}}, *got)
}

func TestUnsubscribeRemovesOneRegistration(t *testing.T) {
	require := require.New(t)
	em := emitter.New()
	l, got := recorder()

	em.Subscribe("foo", l)
	em.Subscribe("foo", l)
	require.Equal(2, em.ListenerCount("foo"))

	em.Emit("foo", 1)
	require.Len(*got, 2)

	em.Unsubscribe("foo", l)
	require.Equal(1, em.ListenerCount("foo"))

	em.Unsubscribe("foo", l)
	require.Equal(0, em.ListenerCount("foo"))
	require.Empty(em.Channels())

	// unknown listeners are ignored
	em.Unsubscribe("foo", l)
	em.Subscribe("foo", nil)
	require.Equal(0, em.ListenerCount("foo"))
}

func TestChannels(t *testing.T) {
	em := emitter.New()
	l, _ := recorder()
	em.Subscribe("foo", l)
	em.Subscribe("bar", l)

	channels := em.Channels()
	sort.Strings(channels)
	assert.Equal(t, []string{"bar", "foo"}, channels)
}

func TestEmitterIsSubscribable(t *testing.T) {
	var _ ev.Subscribable = emitter.New()
	var _ ev.Subscribable = emitter.FromBus[string](nil, nil, nil)
}
