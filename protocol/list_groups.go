package protocol

import "github.com/twmb/franz-go/pkg/kbin"

// ListGroupsRequest lists the groups known to a broker.
type ListGroupsRequest struct{}

func (*ListGroupsRequest) Key() int16     { return KeyListGroups }
func (*ListGroupsRequest) Version() int16 { return 0 }

func (*ListGroupsRequest) AppendTo(dst []byte) []byte { return dst }

func (*ListGroupsRequest) ResponseKind() Response { return new(ListGroupsResponse) }

// ListGroupsResponseGroup is one listed group.
type ListGroupsResponseGroup struct {
	GroupID      string
	ProtocolType string
}

// ListGroupsResponse is the reply to a ListGroupsRequest.
type ListGroupsResponse struct {
	ErrorCode int16
	Groups    []ListGroupsResponseGroup
}

func (l *ListGroupsResponse) ReadFrom(src []byte) error {
	r := kbin.Reader{Src: src}
	l.ErrorCode = r.Int16()
	for i := r.ArrayLen(); i > 0; i-- {
		var g ListGroupsResponseGroup
		g.GroupID = r.String()
		g.ProtocolType = r.String()
		l.Groups = append(l.Groups, g)
	}
	return complete(&r)
}

// AppendTo encodes the response body for fake servers in tests.
func (l *ListGroupsResponse) AppendTo(dst []byte) []byte {
	dst = kbin.AppendInt16(dst, l.ErrorCode)
	dst = kbin.AppendArrayLen(dst, len(l.Groups))
	for _, g := range l.Groups {
		dst = kbin.AppendString(dst, g.GroupID)
		dst = kbin.AppendString(dst, g.ProtocolType)
	}
	return dst
}
