package netstate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/ferux/pushcenter/internal/pubsub"
)

type fakePinger struct {
	mu  sync.Mutex
	err error
	n   int
}

func (p *fakePinger) Ping(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.n++
	return p.err
}

func (p *fakePinger) set(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}

func (p *fakePinger) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.n
}

func TestMonitorTransitions(t *testing.T) {
	a := assert.New(t)
	subs := pubsub.New()

	var events []bool
	subs.Subscribe(pubsub.TopicReachability, func(args ...interface{}) {
		events = append(events, args[0].(bool))
	})

	p := &fakePinger{}
	m := NewMonitor(p, time.Minute, subs, zerolog.Nop())
	a.True(m.Online(), "unknown state counts as online")

	a.True(m.Check(context.Background()))
	a.True(m.Check(context.Background()))

	p.set(errors.New("dial tcp: i/o timeout"))
	a.False(m.Check(context.Background()))
	a.False(m.Online())
	a.EqualError(m.Status().Err, "dial tcp: i/o timeout")

	p.set(nil)
	a.True(m.Check(context.Background()))

	a.Equal([]bool{true, false, true}, events)
}

func TestMonitorRunStops(t *testing.T) {
	p := &fakePinger{}
	m := NewMonitor(p, time.Millisecond*10, nil, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	time.Sleep(time.Millisecond * 50)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop")
	}

	assert.GreaterOrEqual(t, p.calls(), 2)
}

func TestStaticSignal(t *testing.T) {
	assert.True(t, Static(true).Online())
	assert.False(t, Static(false).Online())
	assert.False(t, SignalFunc(func() bool { return false }).Online())
}
