package mainloop

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoop_DoRunsOnLoopAndBlocks(t *testing.T) {
	l := New(nil)
	l.Start()
	defer l.Stop()

	var ran bool
	err := l.Do(context.Background(), func(ctx context.Context) {
		assert.True(t, IsOwner(ctx, l))
		ran = true
	})
	require.NoError(t, err)
	assert.True(t, ran, "Do must not return before fn finishes")
}

func TestLoop_NestedDoRunsInline(t *testing.T) {
	l := New(nil)
	l.Start()
	defer l.Stop()

	var order []string
	err := l.Do(context.Background(), func(ctx context.Context) {
		order = append(order, "outer")
		require.NoError(t, l.Do(ctx, func(context.Context) {
			order = append(order, "inner")
		}))
		order = append(order, "after")
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner", "after"}, order)
}

func TestLoop_DoAfterStop(t *testing.T) {
	l := New(nil)
	l.Start()
	l.Stop()

	err := l.Do(context.Background(), func(context.Context) {})
	assert.ErrorIs(t, err, ErrStopped)
	assert.False(t, l.Post(func(context.Context) {}))
}

func TestLoop_AfterFuncFiresOnLoop(t *testing.T) {
	l := New(nil)
	l.Start()
	defer l.Stop()

	fired := make(chan bool, 1)
	l.AfterFunc(5*time.Millisecond, func(ctx context.Context) {
		fired <- IsOwner(ctx, l)
	})

	select {
	case onLoop := <-fired:
		assert.True(t, onLoop)
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestLoop_StoppedTimerNeverFires(t *testing.T) {
	l := New(nil)
	l.Start()
	defer l.Stop()

	var fired atomic.Bool
	timer := l.AfterFunc(20*time.Millisecond, func(context.Context) { fired.Store(true) })
	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop(), "second Stop reports nothing to stop")

	time.Sleep(60 * time.Millisecond)
	require.NoError(t, l.Do(context.Background(), func(context.Context) {}))
	assert.False(t, fired.Load())
}

func TestManual_AdvanceFiresInOrder(t *testing.T) {
	m := NewManual()
	var got []int
	m.AfterFunc(2*time.Second, func(context.Context) { got = append(got, 2) })
	m.AfterFunc(time.Second, func(context.Context) {
		got = append(got, 1)
		m.AfterFunc(500*time.Millisecond, func(context.Context) { got = append(got, 15) })
	})
	stopped := m.AfterFunc(1500*time.Millisecond, func(context.Context) { got = append(got, 99) })
	stopped.Stop()

	m.Advance(time.Second)
	assert.Equal(t, []int{1}, got)

	m.Advance(time.Second)
	assert.Equal(t, []int{1, 15, 2}, got)
	assert.Equal(t, 0, m.Pending())
	assert.Equal(t, time.Unix(2, 0), m.Now())
}
