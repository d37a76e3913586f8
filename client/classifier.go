package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/rdashevsky/kafwire/protocol"
)

// classifier inspects successful routed responses for embedded broker
// error codes and schedules follow-up work. It is declarative: the
// response is returned to the caller regardless, and no retry loop is
// layered here.
type classifier struct {
	conn *Conn

	mu        sync.Mutex
	refreshes map[string]bool
}

func newClassifier(c *Conn) *classifier {
	return &classifier{conn: c, refreshes: make(map[string]bool)}
}

func (cl *classifier) inspect(resp protocol.Response) {
	switch r := resp.(type) {
	case *protocol.ProduceResponse:
		for _, t := range r.Topics {
			for _, p := range t.Partitions {
				cl.classify(t.Topic, p.Partition, p.ErrorCode)
			}
		}
	case *protocol.FetchResponse:
		for _, t := range r.Topics {
			for _, p := range t.Partitions {
				cl.classify(t.Topic, p.Partition, p.ErrorCode)
			}
		}
	case *protocol.ListOffsetsResponse:
		for _, t := range r.Topics {
			for _, p := range t.Partitions {
				cl.classify(t.Topic, p.Partition, p.ErrorCode)
			}
		}
	case *protocol.OffsetCommitResponse:
		for _, t := range r.Topics {
			for _, p := range t.Partitions {
				cl.classify(t.Topic, p.Partition, p.ErrorCode)
			}
		}
	case *protocol.OffsetFetchResponse:
		for _, t := range r.Topics {
			for _, p := range t.Partitions {
				cl.classify(t.Topic, p.Partition, p.ErrorCode)
			}
		}
	}
}

func (cl *classifier) classify(topic string, partition int32, code int16) {
	switch protocol.KError(code) {
	case protocol.ErrNoError:
	case protocol.ErrNotLeaderForPartition:
		cl.conn.log.Warn("client: %s/%d moved leader, scheduling metadata refresh", topic, partition)
		cl.scheduleRefresh(topic)
	case protocol.ErrLeaderNotAvailable, protocol.ErrRequestTimedOut:
		cl.conn.log.Warn("client: transient %v on %s/%d, scheduling delayed refresh", protocol.KError(code), topic, partition)
		cl.scheduleRefresh(topic)
	default:
		// Left in the response for the caller; never silently dropped.
		cl.conn.log.Debug("client: broker error on %s/%d: %v", topic, partition, protocol.KError(code))
	}
}

// scheduleRefresh starts one asynchronous metadata refresh per topic; a
// refresh already in flight absorbs further signals for that topic.
func (cl *classifier) scheduleRefresh(topic string) {
	cl.mu.Lock()
	if cl.refreshes[topic] {
		cl.mu.Unlock()
		return
	}
	cl.refreshes[topic] = true
	cl.mu.Unlock()

	go func() {
		defer func() {
			cl.mu.Lock()
			delete(cl.refreshes, topic)
			cl.mu.Unlock()
		}()

		time.Sleep(cl.conn.cfg.RefreshDelay)

		policy := backoff.WithMaxRetries(
			backoff.NewExponentialBackOff(backoff.WithInitialInterval(cl.conn.cfg.RefreshDelay)),
			3,
		)
		err := backoff.Retry(func() error {
			if cl.conn.isClosed() {
				return backoff.Permanent(ErrClosed)
			}
			_, err := cl.conn.GetMetadata(context.Background(), topic)
			return err
		}, policy)
		if err != nil {
			cl.conn.log.Warn(fmt.Sprintf("client: metadata refresh for %q failed: %v", topic, err))
		}
	}()
}
