package protocol

import "github.com/twmb/franz-go/pkg/kbin"

// Timestamp sentinels accepted by ListOffsetsRequest.
const (
	OffsetLatest   int64 = -1
	OffsetEarliest int64 = -2
)

// ListOffsetsRequestPartition asks for offsets of one partition before a
// timestamp.
type ListOffsetsRequestPartition struct {
	Partition     int32
	Timestamp     int64
	MaxNumOffsets int32
}

// ListOffsetsRequestTopic groups the partitions of one topic.
type ListOffsetsRequestTopic struct {
	Topic      string
	Partitions []ListOffsetsRequestPartition
}

// ListOffsetsRequest resolves log offsets by timestamp.
type ListOffsetsRequest struct {
	ReplicaID int32
	Topics    []ListOffsetsRequestTopic
}

func (*ListOffsetsRequest) Key() int16     { return KeyListOffsets }
func (*ListOffsetsRequest) Version() int16 { return 0 }

func (l *ListOffsetsRequest) AppendTo(dst []byte) []byte {
	dst = kbin.AppendInt32(dst, l.ReplicaID)
	dst = kbin.AppendArrayLen(dst, len(l.Topics))
	for _, t := range l.Topics {
		dst = kbin.AppendString(dst, t.Topic)
		dst = kbin.AppendArrayLen(dst, len(t.Partitions))
		for _, p := range t.Partitions {
			dst = kbin.AppendInt32(dst, p.Partition)
			dst = kbin.AppendInt64(dst, p.Timestamp)
			dst = kbin.AppendInt32(dst, p.MaxNumOffsets)
		}
	}
	return dst
}

func (*ListOffsetsRequest) ResponseKind() Response { return new(ListOffsetsResponse) }

// ListOffsetsResponsePartition is one partition's offset listing.
type ListOffsetsResponsePartition struct {
	Partition int32
	ErrorCode int16
	Offsets   []int64
}

// ListOffsetsResponseTopic groups partition results of one topic.
type ListOffsetsResponseTopic struct {
	Topic      string
	Partitions []ListOffsetsResponsePartition
}

// ListOffsetsResponse is the reply to a ListOffsetsRequest.
type ListOffsetsResponse struct {
	Topics []ListOffsetsResponseTopic
}

func (l *ListOffsetsResponse) ReadFrom(src []byte) error {
	r := kbin.Reader{Src: src}

	for i := r.ArrayLen(); i > 0; i-- {
		var t ListOffsetsResponseTopic
		t.Topic = r.String()
		for j := r.ArrayLen(); j > 0; j-- {
			var p ListOffsetsResponsePartition
			p.Partition = r.Int32()
			p.ErrorCode = r.Int16()
			for k := r.ArrayLen(); k > 0; k-- {
				p.Offsets = append(p.Offsets, r.Int64())
			}
			t.Partitions = append(t.Partitions, p)
		}
		l.Topics = append(l.Topics, t)
	}

	return complete(&r)
}

// AppendTo encodes the response body for fake servers in tests.
func (l *ListOffsetsResponse) AppendTo(dst []byte) []byte {
	dst = kbin.AppendArrayLen(dst, len(l.Topics))
	for _, t := range l.Topics {
		dst = kbin.AppendString(dst, t.Topic)
		dst = kbin.AppendArrayLen(dst, len(t.Partitions))
		for _, p := range t.Partitions {
			dst = kbin.AppendInt32(dst, p.Partition)
			dst = kbin.AppendInt16(dst, p.ErrorCode)
			dst = kbin.AppendArrayLen(dst, len(p.Offsets))
			for _, o := range p.Offsets {
				dst = kbin.AppendInt64(dst, o)
			}
		}
	}
	return dst
}
