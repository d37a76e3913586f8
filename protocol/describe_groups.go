package protocol

import "github.com/twmb/franz-go/pkg/kbin"

// DescribeGroupsRequest describes consumer groups by id.
type DescribeGroupsRequest struct {
	Groups []string
}

func (*DescribeGroupsRequest) Key() int16     { return KeyDescribeGroups }
func (*DescribeGroupsRequest) Version() int16 { return 0 }

func (d *DescribeGroupsRequest) AppendTo(dst []byte) []byte {
	dst = kbin.AppendArrayLen(dst, len(d.Groups))
	for _, g := range d.Groups {
		dst = kbin.AppendString(dst, g)
	}
	return dst
}

func (*DescribeGroupsRequest) ResponseKind() Response { return new(DescribeGroupsResponse) }

// DescribeGroupsResponseMember describes one group member.
type DescribeGroupsResponseMember struct {
	MemberID   string
	ClientID   string
	ClientHost string
	Metadata   []byte
	Assignment []byte
}

// DescribeGroupsResponseGroup describes one group.
type DescribeGroupsResponseGroup struct {
	ErrorCode    int16
	GroupID      string
	State        string
	ProtocolType string
	Protocol     string
	Members      []DescribeGroupsResponseMember
}

// DescribeGroupsResponse is the reply to a DescribeGroupsRequest.
type DescribeGroupsResponse struct {
	Groups []DescribeGroupsResponseGroup
}

func (d *DescribeGroupsResponse) ReadFrom(src []byte) error {
	r := kbin.Reader{Src: src}

	for i := r.ArrayLen(); i > 0; i-- {
		var g DescribeGroupsResponseGroup
		g.ErrorCode = r.Int16()
		g.GroupID = r.String()
		g.State = r.String()
		g.ProtocolType = r.String()
		g.Protocol = r.String()
		for j := r.ArrayLen(); j > 0; j-- {
			var m DescribeGroupsResponseMember
			m.MemberID = r.String()
			m.ClientID = r.String()
			m.ClientHost = r.String()
			m.Metadata = r.Bytes()
			m.Assignment = r.Bytes()
			g.Members = append(g.Members, m)
		}
		d.Groups = append(d.Groups, g)
	}

	return complete(&r)
}
