package session

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/twmb/franz-go/pkg/kbin"

	"github.com/rdashevsky/kafwire/protocol"
	"github.com/rdashevsky/kafwire/wire"
)

type receivedRequest struct {
	key    int16
	corrID int32
	body   []byte
}

// readRequest consumes one framed request off the peer side of a pipe.
func readRequest(t *testing.T, u *wire.Unframer) receivedRequest {
	t.Helper()

	payload, err := u.Next()
	if err != nil {
		t.Fatalf("peer read failed: %v", err)
	}

	r := kbin.Reader{Src: payload}
	req := receivedRequest{key: r.Int16()}
	r.Int16() // api version
	req.corrID = r.Int32()
	r.NullableString() // client id
	req.body = r.Src
	return req
}

func writeResponse(t *testing.T, w net.Conn, corrID int32, body []byte) {
	t.Helper()

	payload := kbin.AppendInt32(nil, corrID)
	payload = append(payload, body...)
	if err := wire.WriteFrame(w, payload); err != nil {
		t.Errorf("peer write failed: %v", err)
	}
}

func TestCorrelationMultiplexing(t *testing.T) {
	client, peer := net.Pipe()
	defer client.Close()
	defer peer.Close()

	s := New(client, ClientID("test"))
	defer s.Close()

	// The peer echoes coordinator hosts derived from the request body but
	// reverses the reply order.
	go func() {
		u := wire.NewUnframer(peer, 0)
		first := readRequest(t, u)
		second := readRequest(t, u)

		for _, req := range []receivedRequest{second, first} {
			r := kbin.Reader{Src: req.body}
			group := r.String()
			resp := &protocol.GroupCoordinatorResponse{CoordinatorHost: group}
			writeResponse(t, peer, req.corrID, resp.AppendTo(nil))
		}
	}()

	type result struct {
		host string
		err  error
	}
	results := make([]chan result, 2)
	for i, group := range []string{"group-one", "group-two"} {
		results[i] = make(chan result, 1)
		ch := results[i]
		go func(group string) {
			resp, err := s.Send(context.Background(), &protocol.GroupCoordinatorRequest{GroupID: group})
			if err != nil {
				ch <- result{err: err}
				return
			}
			ch <- result{host: resp.(*protocol.GroupCoordinatorResponse).CoordinatorHost}
		}(group)
		// Stagger so correlation ids are allocated in a known order.
		time.Sleep(20 * time.Millisecond)
	}

	for i, group := range []string{"group-one", "group-two"} {
		res := <-results[i]
		if res.err != nil {
			t.Fatalf("Send %d failed: %v", i, res.err)
		}
		if res.host != group {
			t.Errorf("Expected request %d to resolve with its own body %q, got %q", i, group, res.host)
		}
	}
}

func TestAcklessProduceSkipsPending(t *testing.T) {
	client, peer := net.Pipe()
	defer client.Close()
	defer peer.Close()

	s := New(client)
	defer s.Close()

	// Drain the peer side so the pipe write completes.
	go func() {
		u := wire.NewUnframer(peer, 0)
		readRequest(t, u)
	}()

	req := &protocol.ProduceRequest{
		RequiredAcks: 0,
		Topics: []protocol.ProduceRequestTopic{{
			Topic:      "t",
			Partitions: []protocol.ProduceRequestPartition{{Partition: 0, MessageSet: []byte{0x01}}},
		}},
	}

	resp, err := s.Send(context.Background(), req)
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if _, ok := resp.(*protocol.ProduceResponse); !ok {
		t.Errorf("Expected synthesized ProduceResponse, got %T", resp)
	}
	if n := s.pendingCount(); n != 0 {
		t.Errorf("Expected empty pending table after ackless produce, got %d entries", n)
	}
}

func TestSessionFailsAllPendingOnStreamDeath(t *testing.T) {
	client, peer := net.Pipe()
	defer client.Close()

	s := New(client)
	defer s.Close()

	go func() {
		u := wire.NewUnframer(peer, 0)
		readRequest(t, u)
		peer.Close()
	}()

	_, err := s.Send(context.Background(), &protocol.HeartbeatRequest{GroupID: "g"})
	if !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("Expected ErrSessionClosed, got %v", err)
	}

	// A dead session refuses new sends immediately.
	if _, err = s.Send(context.Background(), &protocol.HeartbeatRequest{GroupID: "g"}); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("Expected ErrSessionClosed on send after death, got %v", err)
	}
	if !s.Closed() {
		t.Error("Expected session to report closed")
	}
}

func TestCancellationRemovesPendingAndDropsLateReply(t *testing.T) {
	client, peer := net.Pipe()
	defer client.Close()
	defer peer.Close()

	s := New(client)
	defer s.Close()

	requests := make(chan receivedRequest, 1)
	go func() {
		u := wire.NewUnframer(peer, 0)
		requests <- readRequest(t, u)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := s.Send(ctx, &protocol.HeartbeatRequest{GroupID: "g"})
		done <- err
	}()

	req := <-requests
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if n := s.pendingCount(); n != 0 {
		t.Errorf("Expected pending entry removed on cancellation, got %d", n)
	}

	// A late reply for the cancelled request is dropped without killing
	// the session.
	resp := &protocol.HeartbeatResponse{}
	writeResponse(t, peer, req.corrID, kbin.AppendInt16(nil, int16(resp.ErrorCode)))

	time.Sleep(50 * time.Millisecond)
	if s.Closed() {
		t.Error("Expected session to survive a late reply")
	}
}

func TestCorrelationIDsMonotonic(t *testing.T) {
	client, peer := net.Pipe()
	defer client.Close()
	defer peer.Close()

	s := New(client)
	defer s.Close()

	ids := make(chan int32, 3)
	go func() {
		u := wire.NewUnframer(peer, 0)
		for i := 0; i < 3; i++ {
			req := readRequest(t, u)
			ids <- req.corrID
			writeResponse(t, peer, req.corrID, kbin.AppendInt16(nil, 0))
		}
	}()

	for i := 0; i < 3; i++ {
		if _, err := s.Send(context.Background(), &protocol.HeartbeatRequest{GroupID: "g"}); err != nil {
			t.Fatalf("Send %d failed: %v", i, err)
		}
	}

	prev := <-ids
	for i := 1; i < 3; i++ {
		next := <-ids
		if next != prev+1 {
			t.Errorf("Expected correlation ids to increase by one, got %d then %d", prev, next)
		}
		prev = next
	}
}
