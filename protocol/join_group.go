package protocol

import "github.com/twmb/franz-go/pkg/kbin"

// JoinGroupRequestProtocol is one candidate assignment protocol offered
// by a joining member.
type JoinGroupRequestProtocol struct {
	Name     string
	Metadata []byte
}

// JoinGroupRequest enters a member into a consumer group.
type JoinGroupRequest struct {
	GroupID        string
	SessionTimeout int32
	MemberID       string
	ProtocolType   string
	Protocols      []JoinGroupRequestProtocol
}

func (*JoinGroupRequest) Key() int16     { return KeyJoinGroup }
func (*JoinGroupRequest) Version() int16 { return 0 }

// Group returns the consumer group this request is routed by.
func (j *JoinGroupRequest) Group() string { return j.GroupID }

func (j *JoinGroupRequest) AppendTo(dst []byte) []byte {
	dst = kbin.AppendString(dst, j.GroupID)
	dst = kbin.AppendInt32(dst, j.SessionTimeout)
	dst = kbin.AppendString(dst, j.MemberID)
	dst = kbin.AppendString(dst, j.ProtocolType)
	dst = kbin.AppendArrayLen(dst, len(j.Protocols))
	for _, p := range j.Protocols {
		dst = kbin.AppendString(dst, p.Name)
		dst = kbin.AppendBytes(dst, p.Metadata)
	}
	return dst
}

func (*JoinGroupRequest) ResponseKind() Response { return new(JoinGroupResponse) }

// JoinGroupResponseMember is one member's join metadata, present only in
// the leader's response.
type JoinGroupResponseMember struct {
	MemberID string
	Metadata []byte
}

// JoinGroupResponse is the reply to a JoinGroupRequest.
type JoinGroupResponse struct {
	ErrorCode    int16
	GenerationID int32
	Protocol     string
	LeaderID     string
	MemberID     string
	Members      []JoinGroupResponseMember
}

func (j *JoinGroupResponse) ReadFrom(src []byte) error {
	r := kbin.Reader{Src: src}
	j.ErrorCode = r.Int16()
	j.GenerationID = r.Int32()
	j.Protocol = r.String()
	j.LeaderID = r.String()
	j.MemberID = r.String()
	for i := r.ArrayLen(); i > 0; i-- {
		var m JoinGroupResponseMember
		m.MemberID = r.String()
		m.Metadata = r.Bytes()
		j.Members = append(j.Members, m)
	}
	return complete(&r)
}
