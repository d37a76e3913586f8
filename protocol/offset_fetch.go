package protocol

import "github.com/twmb/franz-go/pkg/kbin"

// OffsetFetchRequestTopic names the partitions whose committed offsets
// are wanted.
type OffsetFetchRequestTopic struct {
	Topic      string
	Partitions []int32
}

// OffsetFetchRequest reads committed offsets for a group.
type OffsetFetchRequest struct {
	GroupID string
	Topics  []OffsetFetchRequestTopic
}

func (*OffsetFetchRequest) Key() int16     { return KeyOffsetFetch }
func (*OffsetFetchRequest) Version() int16 { return 0 }

// Group returns the consumer group this request is routed by.
func (o *OffsetFetchRequest) Group() string { return o.GroupID }

func (o *OffsetFetchRequest) AppendTo(dst []byte) []byte {
	dst = kbin.AppendString(dst, o.GroupID)
	dst = kbin.AppendArrayLen(dst, len(o.Topics))
	for _, t := range o.Topics {
		dst = kbin.AppendString(dst, t.Topic)
		dst = kbin.AppendArrayLen(dst, len(t.Partitions))
		for _, p := range t.Partitions {
			dst = kbin.AppendInt32(dst, p)
		}
	}
	return dst
}

func (*OffsetFetchRequest) ResponseKind() Response { return new(OffsetFetchResponse) }

// OffsetFetchResponsePartition is one partition's committed offset.
type OffsetFetchResponsePartition struct {
	Partition int32
	Offset    int64
	Metadata  *string
	ErrorCode int16
}

// OffsetFetchResponseTopic groups partition results of one topic.
type OffsetFetchResponseTopic struct {
	Topic      string
	Partitions []OffsetFetchResponsePartition
}

// OffsetFetchResponse is the reply to an OffsetFetchRequest.
type OffsetFetchResponse struct {
	Topics []OffsetFetchResponseTopic
}

func (o *OffsetFetchResponse) ReadFrom(src []byte) error {
	r := kbin.Reader{Src: src}

	for i := r.ArrayLen(); i > 0; i-- {
		var t OffsetFetchResponseTopic
		t.Topic = r.String()
		for j := r.ArrayLen(); j > 0; j-- {
			var p OffsetFetchResponsePartition
			p.Partition = r.Int32()
			p.Offset = r.Int64()
			p.Metadata = r.NullableString()
			p.ErrorCode = r.Int16()
			t.Partitions = append(t.Partitions, p)
		}
		o.Topics = append(o.Topics, t)
	}

	return complete(&r)
}
