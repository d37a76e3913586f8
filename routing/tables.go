package routing

import (
	"context"
	"fmt"

	"github.com/rdashevsky/kafwire/protocol"
)

// Endpoint is a broker address.
type Endpoint struct {
	Host string
	Port int32
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%s:%d", e.Host, e.Port)
}

// Channel is a request/response function bound to one broker.
type Channel interface {
	Send(ctx context.Context, req protocol.Request) (protocol.Response, error)
}

// Tables holds the four primary routing maps and the two derived from
// them. Derived maps follow input changes automatically; pairs whose
// intermediate lookup fails are dropped and surface later as missing
// routes.
type Tables struct {
	ChanByHost  *Var[map[Endpoint]Channel]
	HostByNode  *Var[map[int32]Endpoint]
	NodeByTopic *Var[map[protocol.TopicPartition]int32]
	HostByGroup *Var[map[string]Endpoint]

	ChanByTopic *Var[map[protocol.TopicPartition]Channel]
	ChanByGroup *Var[map[string]Channel]
}

// NewTables builds empty routing tables with derivations wired.
func NewTables() *Tables {
	t := &Tables{
		ChanByHost:  NewVar(map[Endpoint]Channel{}),
		HostByNode:  NewVar(map[int32]Endpoint{}),
		NodeByTopic: NewVar(map[protocol.TopicPartition]int32{}),
		HostByGroup: NewVar(map[string]Endpoint{}),
	}

	hostByTopic := Derive(t.HostByNode, t.NodeByTopic,
		func(hosts map[int32]Endpoint, nodes map[protocol.TopicPartition]int32) map[protocol.TopicPartition]Endpoint {
			out := make(map[protocol.TopicPartition]Endpoint, len(nodes))
			for tp, node := range nodes {
				if host, ok := hosts[node]; ok {
					out[tp] = host
				}
			}
			return out
		},
		mapsEqual[protocol.TopicPartition, Endpoint])

	t.ChanByTopic = Derive(t.ChanByHost, hostByTopic,
		func(chans map[Endpoint]Channel, hosts map[protocol.TopicPartition]Endpoint) map[protocol.TopicPartition]Channel {
			out := make(map[protocol.TopicPartition]Channel, len(hosts))
			for tp, host := range hosts {
				if ch, ok := chans[host]; ok {
					out[tp] = ch
				}
			}
			return out
		},
		chanMapsEqual[protocol.TopicPartition])

	t.ChanByGroup = Derive(t.ChanByHost, t.HostByGroup,
		func(chans map[Endpoint]Channel, hosts map[string]Endpoint) map[string]Channel {
			out := make(map[string]Channel, len(hosts))
			for group, host := range hosts {
				if ch, ok := chans[host]; ok {
					out[group] = ch
				}
			}
			return out
		},
		chanMapsEqual[string])

	return t
}

// PutChannel binds a channel to its endpoint.
func (t *Tables) PutChannel(ep Endpoint, ch Channel) {
	t.ChanByHost.Update(func(m map[Endpoint]Channel) map[Endpoint]Channel {
		next := cloneMap(m)
		next[ep] = ch
		return next
	})
}

// Channel returns the channel bound to ep, if any.
func (t *Tables) Channel(ep Endpoint) (Channel, bool) {
	ch, ok := t.ChanByHost.Load()[ep]
	return ch, ok
}

// Channels snapshots every bound channel, keyed by endpoint.
func (t *Tables) Channels() map[Endpoint]Channel {
	return t.ChanByHost.Load()
}

// SetNodeHost records the endpoint a node id resolves to.
func (t *Tables) SetNodeHost(node int32, ep Endpoint) {
	t.HostByNode.Update(func(m map[int32]Endpoint) map[int32]Endpoint {
		if m[node] == ep {
			return m
		}
		next := cloneMap(m)
		next[node] = ep
		return next
	})
}

// SetPartitionLeader records the node id owning a topic partition.
func (t *Tables) SetPartitionLeader(tp protocol.TopicPartition, node int32) {
	t.NodeByTopic.Update(func(m map[protocol.TopicPartition]int32) map[protocol.TopicPartition]int32 {
		if cur, ok := m[tp]; ok && cur == node {
			return m
		}
		next := cloneMap(m)
		next[tp] = node
		return next
	})
}

// SetGroupHost records a group's coordinator endpoint. Unchanged
// endpoints do not republish.
func (t *Tables) SetGroupHost(group string, ep Endpoint) {
	t.HostByGroup.Update(func(m map[string]Endpoint) map[string]Endpoint {
		if m[group] == ep {
			return m
		}
		next := cloneMap(m)
		next[group] = ep
		return next
	})
}

// LeaderChannel resolves the channel to the leader of tp.
func (t *Tables) LeaderChannel(tp protocol.TopicPartition) (Channel, bool) {
	ch, ok := t.ChanByTopic.Load()[tp]
	return ch, ok
}

// GroupChannel resolves the channel to the coordinator of group.
func (t *Tables) GroupChannel(group string) (Channel, bool) {
	ch, ok := t.ChanByGroup.Load()[group]
	return ch, ok
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	next := make(map[K]V, len(m)+1)
	for k, v := range m {
		next[k] = v
	}
	return next
}

func mapsEqual[K, V comparable](a, b map[K]V) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		if bv, ok := b[k]; !ok || av != bv {
			return false
		}
	}
	return true
}

// chanMapsEqual compares channel maps by channel identity, which is what
// routing needs.
func chanMapsEqual[K comparable](a, b map[K]Channel) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		if bv, ok := b[k]; !ok || av != bv {
			return false
		}
	}
	return true
}
