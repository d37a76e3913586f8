package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync/atomic"

	"github.com/rdashevsky/kafwire/logger"
	"github.com/rdashevsky/kafwire/protocol"
	"github.com/rdashevsky/kafwire/resource"
	"github.com/rdashevsky/kafwire/routing"
	"github.com/rdashevsky/kafwire/session"
	"github.com/rdashevsky/kafwire/wire"
)

// sessionConn bundles a socket with the session multiplexing over it.
// The pair lives and dies together: dispose closes both, the recovery
// handler disposes a dead pair before recreating, and a recreated socket
// gets a fresh session.
type sessionConn struct {
	conn net.Conn
	sess *session.Session
}

func (sc *sessionConn) dispose() {
	sc.sess.Close()
	_ = sc.conn.Close()
}

// Channel is a request/response function bound to one broker endpoint.
// Its connection is created lazily on first send and rebuilt
// transparently when it dies; concurrent senders share one reconnect.
type Channel struct {
	endpoint routing.Endpoint
	log      logger.Interface
	res      *resource.Resource[*sessionConn]
	send     func(context.Context, protocol.Request) (protocol.Response, error)
	closed   atomic.Bool
}

var _ routing.Channel = (*Channel)(nil)

func newChannel(ep routing.Endpoint, cfg Config, log logger.Interface) *Channel {
	ch := &Channel{endpoint: ep, log: log}

	create := func(ctx context.Context) (*sessionConn, error) {
		dialer := net.Dialer{Timeout: cfg.DialTimeout}
		conn, err := dialer.DialContext(ctx, "tcp", ep.String())
		if err != nil {
			return nil, fmt.Errorf("client - Channel - dial %s: %w", ep, err)
		}
		if tcp, ok := conn.(*net.TCPConn); ok {
			_ = tcp.SetNoDelay(true)
		}

		log.Debug("client: connected to %s", ep)

		sess := session.New(conn,
			session.ClientID(cfg.ClientID),
			session.Logger(log),
			session.MaxFrameLen(cfg.MaxFrameLen),
		)
		return &sessionConn{conn: conn, sess: sess}, nil
	}

	handle := func(cur *sessionConn, err error) resource.Verdict {
		if ch.closed.Load() {
			return resource.Escalate
		}
		if recoverable(err) {
			if cur != nil {
				cur.dispose()
			}
			log.Warn("client: connection to %s lost, reconnecting: %v", ep, err)
			return resource.Recreate
		}
		return resource.Escalate
	}

	ch.res = resource.New(create, handle)
	ch.send = resource.Inject(ch.res, func(ctx context.Context, sc *sessionConn, req protocol.Request) (protocol.Response, error) {
		return sc.sess.Send(ctx, req)
	})
	return ch
}

// Send issues one request on this broker's session and returns the
// correlated reply. Transport failures recreate the connection and retry
// until the recovery handler escalates.
func (c *Channel) Send(ctx context.Context, req protocol.Request) (protocol.Response, error) {
	return c.send(ctx, req)
}

// Endpoint returns the broker address this channel is bound to.
func (c *Channel) Endpoint() routing.Endpoint {
	return c.endpoint
}

// connect forces the lazy connection open, verifying the endpoint is
// reachable.
func (c *Channel) connect(ctx context.Context) error {
	_, err := c.res.Get(ctx)
	return err
}

// Close tears down the current connection, failing its pending requests.
func (c *Channel) Close() {
	c.closed.Store(true)
	if sc, ok := c.res.Current(); ok {
		sc.dispose()
	}
}

// recoverable reports whether err is a transport-class failure that a
// reconnect can fix. Decode failures are not: the stream is corrupt and
// escalates.
func recoverable(err error) bool {
	if errors.Is(err, protocol.ErrDecode) {
		return false
	}
	if errors.Is(err, session.ErrSessionClosed) ||
		errors.Is(err, wire.ErrUnexpectedEOF) ||
		errors.Is(err, io.EOF) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr)
}
