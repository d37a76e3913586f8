package protocol

import "github.com/twmb/franz-go/pkg/kbin"

// SyncGroupRequestAssignment carries the leader-computed assignment for
// one member.
type SyncGroupRequestAssignment struct {
	MemberID   string
	Assignment []byte
}

// SyncGroupRequest distributes partition assignments after a join round.
type SyncGroupRequest struct {
	GroupID      string
	GenerationID int32
	MemberID     string
	Assignments  []SyncGroupRequestAssignment
}

func (*SyncGroupRequest) Key() int16     { return KeySyncGroup }
func (*SyncGroupRequest) Version() int16 { return 0 }

// Group returns the consumer group this request is routed by.
func (s *SyncGroupRequest) Group() string { return s.GroupID }

func (s *SyncGroupRequest) AppendTo(dst []byte) []byte {
	dst = kbin.AppendString(dst, s.GroupID)
	dst = kbin.AppendInt32(dst, s.GenerationID)
	dst = kbin.AppendString(dst, s.MemberID)
	dst = kbin.AppendArrayLen(dst, len(s.Assignments))
	for _, a := range s.Assignments {
		dst = kbin.AppendString(dst, a.MemberID)
		dst = kbin.AppendBytes(dst, a.Assignment)
	}
	return dst
}

func (*SyncGroupRequest) ResponseKind() Response { return new(SyncGroupResponse) }

// SyncGroupResponse returns this member's assignment.
type SyncGroupResponse struct {
	ErrorCode  int16
	Assignment []byte
}

func (s *SyncGroupResponse) ReadFrom(src []byte) error {
	r := kbin.Reader{Src: src}
	s.ErrorCode = r.Int16()
	s.Assignment = r.Bytes()
	return complete(&r)
}
