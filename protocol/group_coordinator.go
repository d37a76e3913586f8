package protocol

import "github.com/twmb/franz-go/pkg/kbin"

// GroupCoordinatorRequest locates the coordinator broker for a consumer
// group.
type GroupCoordinatorRequest struct {
	GroupID string
}

func (*GroupCoordinatorRequest) Key() int16     { return KeyGroupCoordinator }
func (*GroupCoordinatorRequest) Version() int16 { return 0 }

func (g *GroupCoordinatorRequest) AppendTo(dst []byte) []byte {
	return kbin.AppendString(dst, g.GroupID)
}

func (*GroupCoordinatorRequest) ResponseKind() Response { return new(GroupCoordinatorResponse) }

// GroupCoordinatorResponse names the coordinator broker.
type GroupCoordinatorResponse struct {
	ErrorCode       int16
	CoordinatorID   int32
	CoordinatorHost string
	CoordinatorPort int32
}

func (g *GroupCoordinatorResponse) ReadFrom(src []byte) error {
	r := kbin.Reader{Src: src}
	g.ErrorCode = r.Int16()
	g.CoordinatorID = r.Int32()
	g.CoordinatorHost = r.String()
	g.CoordinatorPort = r.Int32()
	return complete(&r)
}

// AppendTo encodes the response body for fake servers in tests.
func (g *GroupCoordinatorResponse) AppendTo(dst []byte) []byte {
	dst = kbin.AppendInt16(dst, g.ErrorCode)
	dst = kbin.AppendInt32(dst, g.CoordinatorID)
	dst = kbin.AppendString(dst, g.CoordinatorHost)
	dst = kbin.AppendInt32(dst, g.CoordinatorPort)
	return dst
}
