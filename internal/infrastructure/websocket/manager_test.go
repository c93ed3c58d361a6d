package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RegisterUnregister(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewManager()
	m.Start(ctx)

	a := NewClient("a", "U1", "ad/AD1", nil)
	b := NewClient("b", "M1", "ad/AD1", nil)
	require.True(t, m.Register(a))
	require.True(t, m.Register(b))

	assert.Eventually(t, func() bool { return m.Subscribers("ad/AD1") == 2 }, time.Second, 10*time.Millisecond)

	m.Unregister(a)
	assert.Eventually(t, func() bool { return m.Subscribers("ad/AD1") == 1 }, time.Second, 10*time.Millisecond)

	// Send belongs to the feeder; leaving the manager does not close it.
	assert.NotPanics(t, func() { a.Send <- []byte("late frame") })
	a.Close()
	_, open := <-a.Send
	assert.True(t, open)
	_, open = <-a.Send
	assert.False(t, open)
}

func TestManager_ShutdownCancelsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := NewManager()
	m.Start(ctx)

	c := NewClient("c", "U1", "support/U1", nil)
	require.True(t, m.Register(c))
	assert.Eventually(t, func() bool { return m.Subscribers("support/U1") == 1 }, time.Second, 10*time.Millisecond)

	feederCtx, stop := context.WithCancel(m.Context())
	defer stop()

	cancel()
	select {
	case <-feederCtx.Done():
	case <-time.After(time.Second):
		t.Fatal("feeder context not cancelled on shutdown")
	}
	assert.Equal(t, 0, m.Subscribers("support/U1"))

	// A feeder still holding the client can finish its write and clean up.
	assert.NotPanics(t, func() { c.Send <- []byte("in flight") })

	done := make(chan struct{})
	go func() {
		m.Unregister(c)
		c.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("unregister blocked after shutdown")
	}

	assert.False(t, m.Register(NewClient("d", "U2", "support/U2", nil)))
}

func TestClient_CloseIsIdempotent(t *testing.T) {
	c := NewClient("c", "U1", "ad/AD1", nil)
	assert.NotPanics(t, func() {
		c.Close()
		c.Close()
	})
}
