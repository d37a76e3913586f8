package client

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/twmb/franz-go/pkg/kbin"

	"github.com/rdashevsky/kafwire/protocol"
	"github.com/rdashevsky/kafwire/routing"
	"github.com/rdashevsky/kafwire/wire"
)

// fakeBroker speaks just enough of the wire protocol for tests: it reads
// framed requests and answers them through a per-api-key handler.
type fakeBroker struct {
	t  *testing.T
	ln net.Listener

	mu       sync.Mutex
	handlers map[int16]func(body []byte) []byte
	seen     []int16
}

func newFakeBroker(t *testing.T) *fakeBroker {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("fake broker listen failed: %v", err)
	}

	b := &fakeBroker{t: t, ln: ln, handlers: make(map[int16]func([]byte) []byte)}
	go b.serve()
	t.Cleanup(func() { _ = ln.Close() })
	return b
}

func (b *fakeBroker) handle(key int16, fn func(body []byte) []byte) {
	b.mu.Lock()
	b.handlers[key] = fn
	b.mu.Unlock()
}

func (b *fakeBroker) seenKeys() []int16 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]int16(nil), b.seen...)
}

func (b *fakeBroker) addr() string {
	return b.ln.Addr().String()
}

func (b *fakeBroker) endpoint() routing.Endpoint {
	tcp := b.ln.Addr().(*net.TCPAddr)
	return routing.Endpoint{Host: tcp.IP.String(), Port: int32(tcp.Port)}
}

func (b *fakeBroker) serve() {
	for {
		conn, err := b.ln.Accept()
		if err != nil {
			return
		}
		go b.serveConn(conn)
	}
}

func (b *fakeBroker) serveConn(conn net.Conn) {
	defer conn.Close()

	u := wire.NewUnframer(conn, 0)
	for {
		payload, err := u.Next()
		if err != nil {
			return
		}

		r := kbin.Reader{Src: payload}
		key := r.Int16()
		r.Int16() // api version
		corrID := r.Int32()
		r.NullableString() // client id

		b.mu.Lock()
		b.seen = append(b.seen, key)
		fn := b.handlers[key]
		b.mu.Unlock()

		if fn == nil {
			continue
		}
		body := fn(r.Src)

		reply := kbin.AppendInt32(nil, corrID)
		reply = append(reply, body...)
		if err := wire.WriteFrame(conn, reply); err != nil {
			return
		}
	}
}

// metadataFor advertises the broker itself as node 1 leading every given
// partition of every given topic.
func (b *fakeBroker) metadataFor(topics map[string][]int32) func([]byte) []byte {
	ep := b.endpoint()
	return func([]byte) []byte {
		md := &protocol.MetadataResponse{
			Brokers: []protocol.MetadataResponseBroker{{NodeID: 1, Host: ep.Host, Port: ep.Port}},
		}
		for topic, partitions := range topics {
			t := protocol.MetadataResponseTopic{Topic: topic}
			for _, p := range partitions {
				t.Partitions = append(t.Partitions, protocol.MetadataResponsePartition{
					Partition: p, Leader: 1, Replicas: []int32{1}, ISR: []int32{1},
				})
			}
			md.Topics = append(md.Topics, t)
		}
		return md.AppendTo(nil)
	}
}

// deadEndpoint reserves a port and releases it, yielding an address that
// refuses connections.
func deadEndpoint(t *testing.T) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserve port failed: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()
	return addr
}

func quickConfig(brokers ...string) Config {
	return Config{
		Brokers:         brokers,
		ClientID:        "test-client",
		DialTimeout:     time.Second,
		ConnectAttempts: 1,
		ConnectWait:     10 * time.Millisecond,
		RefreshDelay:    10 * time.Millisecond,
	}
}

func TestConnectBootstrapFallback(t *testing.T) {
	good := newFakeBroker(t)
	bad1 := deadEndpoint(t)
	bad2 := deadEndpoint(t)

	conn, err := Connect(context.Background(), quickConfig(bad1, bad2, good.addr()))
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer conn.Close()

	if got := conn.bootstrap.Endpoint(); got != good.endpoint() {
		t.Errorf("Expected bootstrap bound to %s, got %s", good.endpoint(), got)
	}

	hosts := conn.tables.Channels()
	if len(hosts) != 1 {
		t.Fatalf("Expected exactly one channel entry, got %d", len(hosts))
	}
	if _, ok := hosts[good.endpoint()]; !ok {
		t.Errorf("Expected channel map keyed by %s, got %v", good.endpoint(), hosts)
	}
}

func TestConnectUnreachable(t *testing.T) {
	_, err := Connect(context.Background(), quickConfig(deadEndpoint(t), deadEndpoint(t)))
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("Expected ErrUnreachable, got %v", err)
	}
}

func TestGetMetadataPopulatesTables(t *testing.T) {
	broker := newFakeBroker(t)
	broker.handle(protocol.KeyMetadata, broker.metadataFor(map[string][]int32{"events": {0, 1}}))

	conn, err := Connect(context.Background(), quickConfig(broker.addr()))
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer conn.Close()

	md, err := conn.GetMetadata(context.Background(), "events")
	if err != nil {
		t.Fatalf("GetMetadata failed: %v", err)
	}
	if len(md.Brokers) != 1 || len(md.Topics) != 1 {
		t.Fatalf("Unexpected metadata: %+v", md)
	}

	if ep, ok := conn.tables.HostByNode.Load()[1]; !ok || ep != broker.endpoint() {
		t.Errorf("Expected node 1 mapped to %s, got %v", broker.endpoint(), ep)
	}
	for _, p := range []int32{0, 1} {
		tp := protocol.TopicPartition{Topic: "events", Partition: p}
		if _, ok := conn.tables.LeaderChannel(tp); !ok {
			t.Errorf("Expected a leader channel for %s", tp)
		}
	}
}

func TestProduceRoundTrip(t *testing.T) {
	broker := newFakeBroker(t)
	broker.handle(protocol.KeyMetadata, broker.metadataFor(map[string][]int32{"events": {0}}))
	broker.handle(protocol.KeyProduce, func(body []byte) []byte {
		resp := &protocol.ProduceResponse{Topics: []protocol.ProduceResponseTopic{{
			Topic:      "events",
			Partitions: []protocol.ProduceResponsePartition{{Partition: 0, BaseOffset: 7}},
		}}}
		return resp.AppendTo(nil)
	})

	conn, err := Connect(context.Background(), quickConfig(broker.addr()))
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer conn.Close()

	if _, err = conn.GetMetadata(context.Background(), "events"); err != nil {
		t.Fatalf("GetMetadata failed: %v", err)
	}

	resp, err := conn.Produce(context.Background(), &protocol.ProduceRequest{
		RequiredAcks: 1,
		Timeout:      1000,
		Topics: []protocol.ProduceRequestTopic{{
			Topic:      "events",
			Partitions: []protocol.ProduceRequestPartition{{Partition: 0, MessageSet: []byte{0x0}}},
		}},
	})
	if err != nil {
		t.Fatalf("Produce failed: %v", err)
	}
	if resp.Topics[0].Partitions[0].BaseOffset != 7 {
		t.Errorf("Expected base offset 7, got %d", resp.Topics[0].Partitions[0].BaseOffset)
	}
}

func TestProduceMissingRouteLeavesTablesUntouched(t *testing.T) {
	broker := newFakeBroker(t)

	conn, err := Connect(context.Background(), quickConfig(broker.addr()))
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer conn.Close()

	_, err = conn.Produce(context.Background(), &protocol.ProduceRequest{
		RequiredAcks: 1,
		Topics: []protocol.ProduceRequestTopic{{
			Topic:      "nowhere",
			Partitions: []protocol.ProduceRequestPartition{{Partition: 0}},
		}},
	})
	if !errors.Is(err, routing.ErrMissingRoute) {
		t.Fatalf("Expected ErrMissingRoute, got %v", err)
	}

	if len(conn.tables.NodeByTopic.Load()) != 0 {
		t.Error("Expected routing tables unchanged after missing route")
	}
}

func TestConnectGroupCoordinator(t *testing.T) {
	broker := newFakeBroker(t)
	ep := broker.endpoint()
	broker.handle(protocol.KeyGroupCoordinator, func([]byte) []byte {
		resp := &protocol.GroupCoordinatorResponse{
			CoordinatorID:   1,
			CoordinatorHost: ep.Host,
			CoordinatorPort: ep.Port,
		}
		return resp.AppendTo(nil)
	})

	conn, err := Connect(context.Background(), quickConfig(broker.addr()))
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer conn.Close()

	if err = conn.ConnectGroupCoordinator(context.Background(), "workers"); err != nil {
		t.Fatalf("ConnectGroupCoordinator failed: %v", err)
	}

	if _, ok := conn.tables.GroupChannel("workers"); !ok {
		t.Fatal("Expected a coordinator channel for group workers")
	}

	// Rediscovery with an unchanged coordinator is a no-op.
	if err = conn.ConnectGroupCoordinator(context.Background(), "workers"); err != nil {
		t.Fatalf("Repeated ConnectGroupCoordinator failed: %v", err)
	}
	if got := len(conn.tables.Channels()); got != 1 {
		t.Errorf("Expected the coordinator channel to be reused, got %d channels", got)
	}
}

func TestSendAfterCloseFails(t *testing.T) {
	broker := newFakeBroker(t)

	conn, err := Connect(context.Background(), quickConfig(broker.addr()))
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	conn.Close()

	if _, err = conn.Send(context.Background(), &protocol.MetadataRequest{}); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
	if _, err = conn.GetMetadata(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed from GetMetadata, got %v", err)
	}
}

func TestChannelRecoversAcrossReconnect(t *testing.T) {
	broker := newFakeBroker(t)
	broker.handle(protocol.KeyListGroups, func([]byte) []byte {
		return (&protocol.ListGroupsResponse{}).AppendTo(nil)
	})

	conn, err := Connect(context.Background(), quickConfig(broker.addr()))
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer conn.Close()

	if _, err = conn.ListGroups(context.Background()); err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}

	// Kill the live connection out from under the channel; the next send
	// must reconnect and succeed.
	sc, ok := conn.bootstrap.res.Current()
	if !ok {
		t.Fatal("Expected a live bootstrap connection")
	}
	sc.conn.Close()
	time.Sleep(50 * time.Millisecond)

	if _, err = conn.ListGroups(context.Background()); err != nil {
		t.Fatalf("ListGroups after reconnect failed: %v", err)
	}
}

func TestClassifierSchedulesRefreshOnNotLeader(t *testing.T) {
	broker := newFakeBroker(t)
	broker.handle(protocol.KeyMetadata, broker.metadataFor(map[string][]int32{"events": {0}}))

	conn, err := Connect(context.Background(), quickConfig(broker.addr()))
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer conn.Close()

	resp := &protocol.ProduceResponse{Topics: []protocol.ProduceResponseTopic{{
		Topic: "events",
		Partitions: []protocol.ProduceResponsePartition{{
			Partition: 0,
			ErrorCode: int16(protocol.ErrNotLeaderForPartition),
		}},
	}}}
	conn.classifier.inspect(resp)

	deadline := time.After(2 * time.Second)
	for {
		var metadataSeen bool
		for _, key := range broker.seenKeys() {
			if key == protocol.KeyMetadata {
				metadataSeen = true
			}
		}
		if metadataSeen {
			return
		}
		select {
		case <-deadline:
			t.Fatal("Expected a metadata refresh after NotLeaderForPartition")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`{"brokers": ["a:9092", "b"], "client_id": "app"}`))
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}
	if len(cfg.Brokers) != 2 || cfg.ClientID != "app" {
		t.Errorf("Unexpected config: %+v", cfg)
	}

	eps, err := cfg.withDefaults().endpoints()
	if err != nil {
		t.Fatalf("endpoints failed: %v", err)
	}
	want := []routing.Endpoint{{Host: "a", Port: 9092}, {Host: "b", Port: 9092}}
	for i, ep := range eps {
		if ep != want[i] {
			t.Errorf("Endpoint %d: expected %v, got %v", i, want[i], ep)
		}
	}

	if _, err = ParseConfig([]byte(`{`)); err == nil {
		t.Error("Expected error for malformed config")
	}
}

func TestGeneratedClientID(t *testing.T) {
	a := Config{}.withDefaults()
	b := Config{}.withDefaults()
	if a.ClientID == "" || a.ClientID == b.ClientID {
		t.Errorf("Expected fresh generated client ids, got %q and %q", a.ClientID, b.ClientID)
	}
}

func TestEmptyBootstrapList(t *testing.T) {
	_, err := Connect(context.Background(), Config{})
	if err == nil {
		t.Fatal("Expected error for empty bootstrap list")
	}
}
