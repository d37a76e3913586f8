package session

import "github.com/rdashevsky/kafwire/logger"

// Option is a function that configures a Session.
// Options are applied in the order they are passed to New.
type Option func(*Session)

// ClientID sets the client id carried in every request header. The
// default is a null client id on the wire.
//
// Example:
//
//	session.New(conn, session.ClientID("my-app"))
func ClientID(id string) Option {
	return func(s *Session) {
		s.clientID = &id
	}
}

// Logger sets the logger used for dropped replies and lifecycle events.
// The default discards everything.
func Logger(l logger.Interface) Option {
	return func(s *Session) {
		s.log = l
	}
}

// MaxFrameLen bounds the length of accepted response frames. Zero, the
// default, means unbounded.
func MaxFrameLen(n uint32) Option {
	return func(s *Session) {
		s.maxFrameLen = n
	}
}
