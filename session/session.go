// Package session multiplexes many in-flight request/response pairs over
// one framed duplex byte stream, matching replies to requests by
// correlation id.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/rdashevsky/kafwire/logger"
	"github.com/rdashevsky/kafwire/protocol"
	"github.com/rdashevsky/kafwire/wire"
)

// ErrSessionClosed is returned for every request outstanding when the
// session dies and for every send attempted afterwards.
var ErrSessionClosed = errors.New("session: closed")

type pendingCall struct {
	done chan struct{}
	resp protocol.Response
	err  error
}

// Session is the multiplexing layer over one framed stream. Writes are
// serialized; replies arrive in arbitrary order and are matched strictly
// by correlation id.
type Session struct {
	clientID    *string
	log         logger.Interface
	maxFrameLen uint32

	corrID atomic.Uint32

	wmu sync.Mutex
	w   io.Writer

	mu    sync.Mutex
	calls map[int32]*pendingCall

	closeOnce sync.Once
	closed    chan struct{}
	closeErr  error
}

// New creates a Session over rw and starts its receiver goroutine.
func New(rw io.ReadWriter, opts ...Option) *Session {
	s := &Session{
		log:    logger.Discard(),
		w:      rw,
		calls:  make(map[int32]*pendingCall),
		closed: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	go s.receive(wire.NewUnframer(rw, s.maxFrameLen))

	return s
}

// Send encodes req, writes it on the stream and blocks until the
// correlated reply arrives, ctx is cancelled, or the session dies.
//
// Requests reporting themselves ackless skip registration entirely and
// resolve to their empty response kind as soon as the write completes.
func (s *Session) Send(ctx context.Context, req protocol.Request) (protocol.Response, error) {
	select {
	case <-s.closed:
		return nil, s.closeErr
	default:
	}

	id := int32(s.corrID.Add(1) - 1)
	payload := protocol.AppendRequest(nil, req, id, s.clientID)

	if ackless, ok := req.(protocol.AcklessRequest); ok && ackless.Ackless() {
		if err := s.write(payload); err != nil {
			return nil, err
		}
		return req.ResponseKind(), nil
	}

	call := &pendingCall{done: make(chan struct{}), resp: req.ResponseKind()}
	s.addCall(id, call)

	if err := s.write(payload); err != nil {
		s.deleteCall(id)
		return nil, err
	}

	select {
	case <-ctx.Done():
		s.deleteCall(id)
		return nil, ctx.Err()
	case <-call.done:
	}

	if call.err != nil {
		return nil, call.err
	}
	return call.resp, nil
}

func (s *Session) write(payload []byte) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	if err := wire.WriteFrame(s.w, payload); err != nil {
		s.fail(fmt.Errorf("%w: %v", ErrSessionClosed, err))
		return fmt.Errorf("session - Send - write: %w", err)
	}
	return nil
}

// receive reads frames until the stream dies, completing pending calls
// by correlation id. Any read or decode failure poisons the session.
func (s *Session) receive(u *wire.Unframer) {
	for {
		payload, err := u.Next()
		if err != nil {
			s.fail(fmt.Errorf("%w: %v", ErrSessionClosed, err))
			return
		}

		id, body, err := protocol.ReadResponseHeader(payload)
		if err != nil {
			s.fail(fmt.Errorf("%w: %w", ErrSessionClosed, err))
			return
		}

		call, ok := s.takeCall(id)
		if !ok {
			s.log.Debug("session: dropping reply with no pending request, correlation id %d", id)
			continue
		}

		if err := call.resp.ReadFrom(body); err != nil {
			call.err = err
			close(call.done)
			s.fail(fmt.Errorf("%w: %w", ErrSessionClosed, err))
			return
		}
		close(call.done)
	}
}

// Close tears the session down. Every pending request fails with
// ErrSessionClosed, as does every later Send.
func (s *Session) Close() {
	s.fail(ErrSessionClosed)
}

func (s *Session) fail(err error) {
	s.closeOnce.Do(func() {
		s.closeErr = err
		close(s.closed)

		s.mu.Lock()
		calls := s.calls
		s.calls = make(map[int32]*pendingCall)
		s.mu.Unlock()

		for _, call := range calls {
			call.err = ErrSessionClosed
			close(call.done)
		}
	})
}

// Closed reports whether the session has died.
func (s *Session) Closed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

func (s *Session) addCall(id int32, call *pendingCall) {
	s.mu.Lock()
	s.calls[id] = call
	s.mu.Unlock()
}

func (s *Session) takeCall(id int32) (*pendingCall, bool) {
	s.mu.Lock()
	call, ok := s.calls[id]
	delete(s.calls, id)
	s.mu.Unlock()
	return call, ok
}

func (s *Session) deleteCall(id int32) {
	s.mu.Lock()
	delete(s.calls, id)
	s.mu.Unlock()
}

func (s *Session) pendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}
