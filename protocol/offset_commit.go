package protocol

import "github.com/twmb/franz-go/pkg/kbin"

// OffsetCommitRequestPartition records one partition's committed offset.
type OffsetCommitRequestPartition struct {
	Partition int32
	Offset    int64
	Metadata  *string
}

// OffsetCommitRequestTopic groups the partitions of one topic.
type OffsetCommitRequestTopic struct {
	Topic      string
	Partitions []OffsetCommitRequestPartition
}

// OffsetCommitRequest commits consumed offsets for a group.
type OffsetCommitRequest struct {
	GroupID string
	Topics  []OffsetCommitRequestTopic
}

func (*OffsetCommitRequest) Key() int16     { return KeyOffsetCommit }
func (*OffsetCommitRequest) Version() int16 { return 0 }

// Group returns the consumer group this request is routed by.
func (o *OffsetCommitRequest) Group() string { return o.GroupID }

func (o *OffsetCommitRequest) AppendTo(dst []byte) []byte {
	dst = kbin.AppendString(dst, o.GroupID)
	dst = kbin.AppendArrayLen(dst, len(o.Topics))
	for _, t := range o.Topics {
		dst = kbin.AppendString(dst, t.Topic)
		dst = kbin.AppendArrayLen(dst, len(t.Partitions))
		for _, p := range t.Partitions {
			dst = kbin.AppendInt32(dst, p.Partition)
			dst = kbin.AppendInt64(dst, p.Offset)
			dst = kbin.AppendNullableString(dst, p.Metadata)
		}
	}
	return dst
}

func (*OffsetCommitRequest) ResponseKind() Response { return new(OffsetCommitResponse) }

// OffsetCommitResponsePartition is one partition's commit result.
type OffsetCommitResponsePartition struct {
	Partition int32
	ErrorCode int16
}

// OffsetCommitResponseTopic groups partition results of one topic.
type OffsetCommitResponseTopic struct {
	Topic      string
	Partitions []OffsetCommitResponsePartition
}

// OffsetCommitResponse is the reply to an OffsetCommitRequest.
type OffsetCommitResponse struct {
	Topics []OffsetCommitResponseTopic
}

func (o *OffsetCommitResponse) ReadFrom(src []byte) error {
	r := kbin.Reader{Src: src}

	for i := r.ArrayLen(); i > 0; i-- {
		var t OffsetCommitResponseTopic
		t.Topic = r.String()
		for j := r.ArrayLen(); j > 0; j-- {
			var p OffsetCommitResponsePartition
			p.Partition = r.Int32()
			p.ErrorCode = r.Int16()
			t.Partitions = append(t.Partitions, p)
		}
		o.Topics = append(o.Topics, t)
	}

	return complete(&r)
}
