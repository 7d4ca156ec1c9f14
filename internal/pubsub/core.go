package pubsub

import "sync"

type Topic string

const (
	// TopicDeviceExpired carries model.Device that has just become expired.
	TopicDeviceExpired Topic = "device_expired"
	// TopicMessageSent carries dispatch.Result of a completed send.
	TopicMessageSent Topic = "message_sent"
	// TopicConnectivityTested carries model.ConnectivityReport of a finished test.
	TopicConnectivityTested Topic = "connectivity_tested"
	// TopicReachability carries bool, the new relay reachability state.
	TopicReachability Topic = "reachability"
)

type Handler func(args ...interface{})

// Core stores subscribers for each event
type Core struct {
	subs map[Topic][]Handler

	mu sync.RWMutex
}

func New() *Core {
	return &Core{subs: make(map[Topic][]Handler)}
}

// Subscribe handler to specified topic.
func (c *Core) Subscribe(topic Topic, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.subs[topic] = append(c.subs[topic], h)
}

// Notify subscribers. It is safe to call Notify on nil Core.
func (c *Core) Notify(topic Topic, args ...interface{}) {
	if c == nil {
		return
	}

	c.mu.RLock()
	hs := make([]Handler, len(c.subs[topic]))
	copy(hs, c.subs[topic])
	c.mu.RUnlock()

	for _, h := range hs {
		h(args...)
	}
}
