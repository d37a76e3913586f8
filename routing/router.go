package routing

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/rdashevsky/kafwire/logger"
	"github.com/rdashevsky/kafwire/protocol"
)

// ErrMissingRoute is returned when the routing tables hold no entry for
// the target partition or group. Callers are expected to refresh
// metadata and retry.
var ErrMissingRoute = errors.New("routing: no route for target")

// Router dispatches each request to the broker channels that own it:
// cluster-wide requests go to the bootstrap channel, partitioned
// requests are split across partition leaders and merged, group requests
// go to the group's coordinator.
type Router struct {
	tables    *Tables
	bootstrap Channel
	log       logger.Interface
}

// NewRouter combines the routing tables and the bootstrap channel into a
// dispatch function.
func NewRouter(tables *Tables, bootstrap Channel, log logger.Interface) *Router {
	if log == nil {
		log = logger.Discard()
	}
	return &Router{tables: tables, bootstrap: bootstrap, log: log}
}

// Send routes one request and returns its (possibly merged) response.
func (r *Router) Send(ctx context.Context, req protocol.Request) (protocol.Response, error) {
	switch q := req.(type) {
	case *protocol.MetadataRequest, *protocol.GroupCoordinatorRequest,
		*protocol.ListGroupsRequest, *protocol.DescribeGroupsRequest:
		return r.bootstrap.Send(ctx, req)
	case *protocol.FetchRequest:
		return r.sendFetch(ctx, q)
	case *protocol.ProduceRequest:
		return r.sendProduce(ctx, q)
	case *protocol.ListOffsetsRequest:
		return r.sendListOffsets(ctx, q)
	case protocol.GroupRequest:
		return r.sendGroup(ctx, q)
	default:
		return nil, fmt.Errorf("routing - Router - Send: no dispatch rule for api key %d", req.Key())
	}
}

func (r *Router) sendGroup(ctx context.Context, req protocol.GroupRequest) (protocol.Response, error) {
	ch, ok := r.tables.GroupChannel(req.Group())
	if !ok {
		return nil, fmt.Errorf("%w: group %q", ErrMissingRoute, req.Group())
	}
	return ch.Send(ctx, req)
}

// shard pairs one channel with the partial request bound for it.
type shard struct {
	ch  Channel
	req protocol.Request
}

// leaderFor resolves the owning channel of one (topic, partition) out of
// the derived routing snapshot taken at split time.
func leaderFor(chans map[protocol.TopicPartition]Channel, topic string, partition int32) (Channel, error) {
	tp := protocol.TopicPartition{Topic: topic, Partition: partition}
	ch, ok := chans[tp]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRoute, tp)
	}
	return ch, nil
}

// dispatch sends every shard in parallel and returns responses in shard
// order. Cancelling ctx cancels all in-flight shards; every shard
// failure is kept and merged into one error.
func (r *Router) dispatch(ctx context.Context, shards []*shard) ([]protocol.Response, error) {
	if len(shards) > 1 {
		r.log.Debug("routing: split request across %d channels", len(shards))
	}

	responses := make([]protocol.Response, len(shards))
	errs := make([]error, len(shards))

	g, gctx := errgroup.WithContext(ctx)
	for i, s := range shards {
		g.Go(func() error {
			resp, err := s.ch.Send(gctx, s.req)
			responses[i], errs[i] = resp, err
			return err
		})
	}
	_ = g.Wait()

	var merr *multierror.Error
	for _, err := range errs {
		if err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	return responses, merr.ErrorOrNil()
}

func (r *Router) sendFetch(ctx context.Context, req *protocol.FetchRequest) (protocol.Response, error) {
	chans := r.tables.ChanByTopic.Load()

	var shards []*shard
	index := make(map[Channel]*protocol.FetchRequest)

	for _, t := range req.Topics {
		for _, p := range t.Partitions {
			ch, err := leaderFor(chans, t.Topic, p.Partition)
			if err != nil {
				return nil, err
			}
			sub, ok := index[ch]
			if !ok {
				sub = &protocol.FetchRequest{
					ReplicaID:   req.ReplicaID,
					MaxWaitTime: req.MaxWaitTime,
					MinBytes:    req.MinBytes,
				}
				index[ch] = sub
				shards = append(shards, &shard{ch: ch, req: sub})
			}
			addFetchPartition(sub, t.Topic, p)
		}
	}

	responses, err := r.dispatch(ctx, shards)
	if err != nil {
		return nil, fmt.Errorf("routing - Router - sendFetch: %w", err)
	}

	merged := new(protocol.FetchResponse)
	for _, resp := range responses {
		merged.Topics = append(merged.Topics, resp.(*protocol.FetchResponse).Topics...)
	}
	return merged, nil
}

func addFetchPartition(req *protocol.FetchRequest, topic string, p protocol.FetchRequestPartition) {
	for i := range req.Topics {
		if req.Topics[i].Topic == topic {
			req.Topics[i].Partitions = append(req.Topics[i].Partitions, p)
			return
		}
	}
	req.Topics = append(req.Topics, protocol.FetchRequestTopic{
		Topic:      topic,
		Partitions: []protocol.FetchRequestPartition{p},
	})
}

func (r *Router) sendProduce(ctx context.Context, req *protocol.ProduceRequest) (protocol.Response, error) {
	chans := r.tables.ChanByTopic.Load()

	var shards []*shard
	index := make(map[Channel]*protocol.ProduceRequest)

	for _, t := range req.Topics {
		for _, p := range t.Partitions {
			ch, err := leaderFor(chans, t.Topic, p.Partition)
			if err != nil {
				return nil, err
			}
			sub, ok := index[ch]
			if !ok {
				sub = &protocol.ProduceRequest{
					RequiredAcks: req.RequiredAcks,
					Timeout:      req.Timeout,
				}
				index[ch] = sub
				shards = append(shards, &shard{ch: ch, req: sub})
			}
			addProducePartition(sub, t.Topic, p)
		}
	}

	responses, err := r.dispatch(ctx, shards)
	if err != nil {
		return nil, fmt.Errorf("routing - Router - sendProduce: %w", err)
	}

	merged := new(protocol.ProduceResponse)
	for _, resp := range responses {
		merged.Topics = append(merged.Topics, resp.(*protocol.ProduceResponse).Topics...)
	}
	return merged, nil
}

func addProducePartition(req *protocol.ProduceRequest, topic string, p protocol.ProduceRequestPartition) {
	for i := range req.Topics {
		if req.Topics[i].Topic == topic {
			req.Topics[i].Partitions = append(req.Topics[i].Partitions, p)
			return
		}
	}
	req.Topics = append(req.Topics, protocol.ProduceRequestTopic{
		Topic:      topic,
		Partitions: []protocol.ProduceRequestPartition{p},
	})
}

func (r *Router) sendListOffsets(ctx context.Context, req *protocol.ListOffsetsRequest) (protocol.Response, error) {
	chans := r.tables.ChanByTopic.Load()

	var shards []*shard
	index := make(map[Channel]*protocol.ListOffsetsRequest)

	for _, t := range req.Topics {
		for _, p := range t.Partitions {
			ch, err := leaderFor(chans, t.Topic, p.Partition)
			if err != nil {
				return nil, err
			}
			sub, ok := index[ch]
			if !ok {
				sub = &protocol.ListOffsetsRequest{ReplicaID: req.ReplicaID}
				index[ch] = sub
				shards = append(shards, &shard{ch: ch, req: sub})
			}
			addListOffsetsPartition(sub, t.Topic, p)
		}
	}

	responses, err := r.dispatch(ctx, shards)
	if err != nil {
		return nil, fmt.Errorf("routing - Router - sendListOffsets: %w", err)
	}

	merged := new(protocol.ListOffsetsResponse)
	for _, resp := range responses {
		merged.Topics = append(merged.Topics, resp.(*protocol.ListOffsetsResponse).Topics...)
	}
	return merged, nil
}

func addListOffsetsPartition(req *protocol.ListOffsetsRequest, topic string, p protocol.ListOffsetsRequestPartition) {
	for i := range req.Topics {
		if req.Topics[i].Topic == topic {
			req.Topics[i].Partitions = append(req.Topics[i].Partitions, p)
			return
		}
	}
	req.Topics = append(req.Topics, protocol.ListOffsetsRequestTopic{
		Topic:      topic,
		Partitions: []protocol.ListOffsetsRequestPartition{p},
	})
}
