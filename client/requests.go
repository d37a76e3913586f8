package client

import (
	"context"

	"github.com/rdashevsky/kafwire/protocol"
)

// Produce routes a produce request across partition leaders. With
// RequiredAcks zero the response is synthesized and empty.
func (c *Conn) Produce(ctx context.Context, req *protocol.ProduceRequest) (*protocol.ProduceResponse, error) {
	resp, err := c.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.(*protocol.ProduceResponse), nil
}

// Fetch routes a fetch request across partition leaders and merges the
// partial responses.
func (c *Conn) Fetch(ctx context.Context, req *protocol.FetchRequest) (*protocol.FetchResponse, error) {
	resp, err := c.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.(*protocol.FetchResponse), nil
}

// Offsets routes an offset listing across partition leaders.
func (c *Conn) Offsets(ctx context.Context, req *protocol.ListOffsetsRequest) (*protocol.ListOffsetsResponse, error) {
	resp, err := c.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.(*protocol.ListOffsetsResponse), nil
}

// CommitOffsets routes an offset commit to the group's coordinator.
func (c *Conn) CommitOffsets(ctx context.Context, req *protocol.OffsetCommitRequest) (*protocol.OffsetCommitResponse, error) {
	resp, err := c.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.(*protocol.OffsetCommitResponse), nil
}

// FetchOffsets routes an offset fetch to the group's coordinator.
func (c *Conn) FetchOffsets(ctx context.Context, req *protocol.OffsetFetchRequest) (*protocol.OffsetFetchResponse, error) {
	resp, err := c.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.(*protocol.OffsetFetchResponse), nil
}

// JoinGroup routes a join to the group's coordinator.
func (c *Conn) JoinGroup(ctx context.Context, req *protocol.JoinGroupRequest) (*protocol.JoinGroupResponse, error) {
	resp, err := c.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.(*protocol.JoinGroupResponse), nil
}

// SyncGroup routes a sync to the group's coordinator.
func (c *Conn) SyncGroup(ctx context.Context, req *protocol.SyncGroupRequest) (*protocol.SyncGroupResponse, error) {
	resp, err := c.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.(*protocol.SyncGroupResponse), nil
}

// Heartbeat routes a heartbeat to the group's coordinator.
func (c *Conn) Heartbeat(ctx context.Context, req *protocol.HeartbeatRequest) (*protocol.HeartbeatResponse, error) {
	resp, err := c.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.(*protocol.HeartbeatResponse), nil
}

// LeaveGroup routes a leave to the group's coordinator.
func (c *Conn) LeaveGroup(ctx context.Context, req *protocol.LeaveGroupRequest) (*protocol.LeaveGroupResponse, error) {
	resp, err := c.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.(*protocol.LeaveGroupResponse), nil
}

// ListGroups lists groups via the bootstrap channel.
func (c *Conn) ListGroups(ctx context.Context) (*protocol.ListGroupsResponse, error) {
	resp, err := c.Send(ctx, &protocol.ListGroupsRequest{})
	if err != nil {
		return nil, err
	}
	return resp.(*protocol.ListGroupsResponse), nil
}

// DescribeGroups describes groups via the bootstrap channel.
func (c *Conn) DescribeGroups(ctx context.Context, groups ...string) (*protocol.DescribeGroupsResponse, error) {
	resp, err := c.Send(ctx, &protocol.DescribeGroupsRequest{Groups: groups})
	if err != nil {
		return nil, err
	}
	return resp.(*protocol.DescribeGroupsResponse), nil
}
