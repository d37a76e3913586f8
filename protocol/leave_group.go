package protocol

import "github.com/twmb/franz-go/pkg/kbin"

// LeaveGroupRequest removes a member from a consumer group.
type LeaveGroupRequest struct {
	GroupID  string
	MemberID string
}

func (*LeaveGroupRequest) Key() int16     { return KeyLeaveGroup }
func (*LeaveGroupRequest) Version() int16 { return 0 }

// Group returns the consumer group this request is routed by.
func (l *LeaveGroupRequest) Group() string { return l.GroupID }

func (l *LeaveGroupRequest) AppendTo(dst []byte) []byte {
	dst = kbin.AppendString(dst, l.GroupID)
	dst = kbin.AppendString(dst, l.MemberID)
	return dst
}

func (*LeaveGroupRequest) ResponseKind() Response { return new(LeaveGroupResponse) }

// LeaveGroupResponse is the reply to a LeaveGroupRequest.
type LeaveGroupResponse struct {
	ErrorCode int16
}

func (l *LeaveGroupResponse) ReadFrom(src []byte) error {
	r := kbin.Reader{Src: src}
	l.ErrorCode = r.Int16()
	return complete(&r)
}
