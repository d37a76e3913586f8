package protocol

import "github.com/twmb/franz-go/pkg/kbin"

// HeartbeatRequest keeps a group membership alive.
type HeartbeatRequest struct {
	GroupID      string
	GenerationID int32
	MemberID     string
}

func (*HeartbeatRequest) Key() int16     { return KeyHeartbeat }
func (*HeartbeatRequest) Version() int16 { return 0 }

// Group returns the consumer group this request is routed by.
func (h *HeartbeatRequest) Group() string { return h.GroupID }

func (h *HeartbeatRequest) AppendTo(dst []byte) []byte {
	dst = kbin.AppendString(dst, h.GroupID)
	dst = kbin.AppendInt32(dst, h.GenerationID)
	dst = kbin.AppendString(dst, h.MemberID)
	return dst
}

func (*HeartbeatRequest) ResponseKind() Response { return new(HeartbeatResponse) }

// HeartbeatResponse is the reply to a HeartbeatRequest.
type HeartbeatResponse struct {
	ErrorCode int16
}

func (h *HeartbeatResponse) ReadFrom(src []byte) error {
	r := kbin.Reader{Src: src}
	h.ErrorCode = r.Int16()
	return complete(&r)
}
