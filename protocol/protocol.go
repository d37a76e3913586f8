// Package protocol contains the Kafka request and response types spoken
// by this module, their api version 0 serialization, and the broker error
// codes. Primitive encoding and decoding is done with franz-go's kbin.
package protocol

import (
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kbin"
)

// Api keys for the request types this module issues.
const (
	KeyProduce          int16 = 0
	KeyFetch            int16 = 1
	KeyListOffsets      int16 = 2
	KeyMetadata         int16 = 3
	KeyOffsetCommit     int16 = 8
	KeyOffsetFetch      int16 = 9
	KeyGroupCoordinator int16 = 10
	KeyJoinGroup        int16 = 11
	KeyHeartbeat        int16 = 12
	KeyLeaveGroup       int16 = 13
	KeySyncGroup        int16 = 14
	KeyDescribeGroups   int16 = 15
	KeyListGroups       int16 = 16
)

// ErrDecode reports a malformed response payload. A stream that produced
// it is considered corrupt.
var ErrDecode = errors.New("protocol: malformed response")

// Request represents a message that can be sent to a broker.
type Request interface {
	// Key returns the protocol api key for this message kind.
	Key() int16
	// Version returns the api version this message encodes as.
	Version() int16
	// AppendTo appends the message body in wire form to dst and returns
	// the extended slice.
	AppendTo(dst []byte) []byte
	// ResponseKind returns an empty Response of the kind expected in
	// reply to this request.
	ResponseKind() Response
}

// Response represents a message body received from a broker.
type Response interface {
	// ReadFrom parses the input slice into the response.
	ReadFrom(src []byte) error
}

// AcklessRequest is implemented by requests that may instruct the broker
// not to reply at all. The session synthesizes the empty ResponseKind for
// such requests instead of waiting.
type AcklessRequest interface {
	Request
	// Ackless reports whether this particular request expects no reply.
	Ackless() bool
}

// GroupRequest is implemented by requests that must be routed to the
// coordinator of a consumer group.
type GroupRequest interface {
	Request
	// Group returns the consumer group the request belongs to.
	Group() string
}

// TopicPartition identifies one partition of one topic.
type TopicPartition struct {
	Topic     string
	Partition int32
}

func (tp TopicPartition) String() string {
	return fmt.Sprintf("%s/%d", tp.Topic, tp.Partition)
}

// AppendRequest appends the complete request payload (header then body)
// for one frame: int16 api key, int16 api version, int32 correlation id,
// nullable string client id, body.
func AppendRequest(dst []byte, req Request, correlationID int32, clientID *string) []byte {
	dst = kbin.AppendInt16(dst, req.Key())
	dst = kbin.AppendInt16(dst, req.Version())
	dst = kbin.AppendInt32(dst, correlationID)
	dst = kbin.AppendNullableString(dst, clientID)
	return req.AppendTo(dst)
}

// ReadResponseHeader splits a response payload into its correlation id
// and the remaining body.
func ReadResponseHeader(payload []byte) (int32, []byte, error) {
	if len(payload) < 4 {
		return 0, nil, fmt.Errorf("%w: short response header", ErrDecode)
	}
	r := kbin.Reader{Src: payload}
	id := r.Int32()
	return id, r.Src, nil
}

// complete finishes a read, translating kbin's underflow into ErrDecode.
func complete(r *kbin.Reader) error {
	if err := r.Complete(); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}
