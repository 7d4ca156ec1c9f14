// Package netstate answers whether the host is online and keeps track of relay
// reachability.
package netstate

import "net"

// Signal is a binary online/offline indicator consulted before any network operation.
type Signal interface {
	Online() bool
}

// Static is a constant signal.
type Static bool

// Online implements Signal.
func (s Static) Online() bool { return bool(s) }

// SignalFunc adapts a function to Signal.
type SignalFunc func() bool

// Online implements Signal.
func (f SignalFunc) Online() bool { return f() }

// Interfaces reports the host as online when any non-loopback interface is up and has an
// address assigned.
type Interfaces struct{}

// Online implements Signal.
func (Interfaces) Online() bool {
	ifaces, err := net.Interfaces()
	if err != nil {
		return false
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err == nil && len(addrs) > 0 {
			return true
		}
	}

	return false
}
