// Package client is the public entry point: it discovers the cluster
// through a bootstrap broker, maintains the routing tables, and exposes
// a routed request/response channel over the whole cluster.
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cenkalti/backoff/v4"

	"github.com/rdashevsky/kafwire/logger"
	"github.com/rdashevsky/kafwire/protocol"
	"github.com/rdashevsky/kafwire/routing"
)

// ErrUnreachable is returned by Connect when every configured bootstrap
// endpoint has been exhausted.
var ErrUnreachable = errors.New("client: bootstrap list exhausted")

// ErrClosed is returned when using a connection after Close.
var ErrClosed = errors.New("client: connection closed")

// Conn is a connection to a Kafka cluster: a bootstrap channel for
// cluster-wide queries plus per-broker channels reached through the
// routing tables.
type Conn struct {
	cfg    Config
	log    logger.Interface
	tables *routing.Tables

	bootstrap  *Channel
	router     *routing.Router
	classifier *classifier

	mu     sync.Mutex
	closed bool
}

// Connect attempts each configured bootstrap endpoint in order and binds
// the bootstrap channel to the first one that accepts a connection. It
// fails with ErrUnreachable when the list is exhausted.
//
// Example:
//
//	conn, err := client.Connect(ctx, client.Config{
//		Brokers: []string{"localhost:9092"},
//	})
func Connect(ctx context.Context, cfg Config, opts ...Option) (*Conn, error) {
	c := &Conn{
		cfg:    cfg.withDefaults(),
		log:    logger.Discard(),
		tables: routing.NewTables(),
	}

	for _, opt := range opts {
		opt(c)
	}

	endpoints, err := c.cfg.endpoints()
	if err != nil {
		return nil, err
	}

	for _, ep := range endpoints {
		ch := newChannel(ep, c.cfg, c.log)

		policy := backoff.WithContext(backoff.WithMaxRetries(
			backoff.NewExponentialBackOff(backoff.WithInitialInterval(c.cfg.ConnectWait)),
			uint64(c.cfg.ConnectAttempts-1),
		), ctx)

		err = backoff.Retry(func() error { return ch.connect(ctx) }, policy)
		if err != nil {
			c.log.Warn("client: bootstrap endpoint %s unreachable: %v", ep, err)
			continue
		}

		c.log.Info("client: bootstrap channel bound to %s", ep)
		c.bootstrap = ch
		// The bootstrap channel is held separately for shutdown but
		// registered like any broker channel so the data path reuses it.
		c.tables.PutChannel(ep, ch)
		break
	}
	if c.bootstrap == nil {
		return nil, fmt.Errorf("%w: tried %d endpoints", ErrUnreachable, len(endpoints))
	}

	c.router = routing.NewRouter(c.tables, c.bootstrap, c.log)
	c.classifier = newClassifier(c)

	return c, nil
}

// Send routes one request to the brokers that own it and returns the
// merged response. Embedded broker error codes are inspected by the
// classifier before the response is returned; the response itself is
// never withheld because of them.
func (c *Conn) Send(ctx context.Context, req protocol.Request) (protocol.Response, error) {
	if c.isClosed() {
		return nil, ErrClosed
	}

	resp, err := c.router.Send(ctx, req)
	if err != nil {
		return nil, err
	}

	c.classifier.inspect(resp)
	return resp, nil
}

// GetMetadata queries cluster topology on the bootstrap channel and
// applies it: every broker updates the node table, every partition its
// leader, and a channel is ensured for each leader (created only if
// absent).
func (c *Conn) GetMetadata(ctx context.Context, topics ...string) (*protocol.MetadataResponse, error) {
	if c.isClosed() {
		return nil, ErrClosed
	}

	resp, err := c.bootstrap.Send(ctx, &protocol.MetadataRequest{Topics: topics})
	if err != nil {
		return nil, fmt.Errorf("client - Conn - GetMetadata: %w", err)
	}

	md := resp.(*protocol.MetadataResponse)
	c.applyMetadata(md)
	return md, nil
}

func (c *Conn) applyMetadata(md *protocol.MetadataResponse) {
	hosts := make(map[int32]routing.Endpoint, len(md.Brokers))
	for _, b := range md.Brokers {
		ep := routing.Endpoint{Host: b.Host, Port: b.Port}
		hosts[b.NodeID] = ep
		c.tables.SetNodeHost(b.NodeID, ep)
	}

	for _, t := range md.Topics {
		if protocol.KError(t.ErrorCode) != protocol.ErrNoError {
			c.log.Warn("client: metadata for topic %q: %v", t.Topic, protocol.ForCode(t.ErrorCode))
			continue
		}
		for _, p := range t.Partitions {
			if protocol.KError(p.ErrorCode) != protocol.ErrNoError || p.Leader < 0 {
				continue
			}
			tp := protocol.TopicPartition{Topic: t.Topic, Partition: p.Partition}
			c.tables.SetPartitionLeader(tp, p.Leader)
			if ep, ok := hosts[p.Leader]; ok {
				c.connectHostNew(ep)
			}
		}
	}
}

// connectHostNew ensures a channel exists for ep, creating one only if
// absent. The connection itself opens lazily on first send.
func (c *Conn) connectHostNew(ep routing.Endpoint) *Channel {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ch, ok := c.tables.Channel(ep); ok {
		return ch.(*Channel)
	}

	ch := newChannel(ep, c.cfg, c.log)
	c.tables.PutChannel(ep, ch)
	c.log.Debug("client: channel added for %s", ep)
	return ch
}

// ConnectGroupCoordinator discovers the coordinator broker of a consumer
// group on the bootstrap channel, ensures a channel to it, and records
// it in the routing tables (only when changed).
func (c *Conn) ConnectGroupCoordinator(ctx context.Context, group string) error {
	if c.isClosed() {
		return ErrClosed
	}

	resp, err := c.bootstrap.Send(ctx, &protocol.GroupCoordinatorRequest{GroupID: group})
	if err != nil {
		return fmt.Errorf("client - Conn - ConnectGroupCoordinator: %w", err)
	}

	coord := resp.(*protocol.GroupCoordinatorResponse)
	if kerr := protocol.ForCode(coord.ErrorCode); kerr != nil {
		return fmt.Errorf("client - Conn - ConnectGroupCoordinator: %w", kerr)
	}

	ep := routing.Endpoint{Host: coord.CoordinatorHost, Port: coord.CoordinatorPort}
	c.connectHostNew(ep)
	c.tables.SetGroupHost(group, ep)
	return nil
}

// Close releases the bootstrap channel and every broker channel. Pending
// requests fail with their session-closed kind; later calls on the
// connection fail with ErrClosed.
func (c *Conn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	for ep, ch := range c.tables.Channels() {
		ch.(*Channel).Close()
		c.log.Debug("client: channel to %s closed", ep)
	}
	c.bootstrap.Close()
	c.log.Info("client: connection closed")
}

func (c *Conn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
