package protocol

import "github.com/twmb/franz-go/pkg/kbin"

// FetchRequestPartition names one partition to read and where from.
type FetchRequestPartition struct {
	Partition   int32
	FetchOffset int64
	MaxBytes    int32
}

// FetchRequestTopic groups the partitions of one topic.
type FetchRequestTopic struct {
	Topic      string
	Partitions []FetchRequestPartition
}

// FetchRequest reads message sets from partitions.
type FetchRequest struct {
	ReplicaID   int32
	MaxWaitTime int32
	MinBytes    int32
	Topics      []FetchRequestTopic
}

func (*FetchRequest) Key() int16     { return KeyFetch }
func (*FetchRequest) Version() int16 { return 0 }

func (f *FetchRequest) AppendTo(dst []byte) []byte {
	dst = kbin.AppendInt32(dst, f.ReplicaID)
	dst = kbin.AppendInt32(dst, f.MaxWaitTime)
	dst = kbin.AppendInt32(dst, f.MinBytes)
	dst = kbin.AppendArrayLen(dst, len(f.Topics))
	for _, t := range f.Topics {
		dst = kbin.AppendString(dst, t.Topic)
		dst = kbin.AppendArrayLen(dst, len(t.Partitions))
		for _, p := range t.Partitions {
			dst = kbin.AppendInt32(dst, p.Partition)
			dst = kbin.AppendInt64(dst, p.FetchOffset)
			dst = kbin.AppendInt32(dst, p.MaxBytes)
		}
	}
	return dst
}

func (*FetchRequest) ResponseKind() Response { return new(FetchResponse) }

// FetchResponsePartition is one partition's read result; the message set
// bytes stay opaque.
type FetchResponsePartition struct {
	Partition           int32
	ErrorCode           int16
	HighWatermarkOffset int64
	MessageSet          []byte
}

// FetchResponseTopic groups partition results of one topic.
type FetchResponseTopic struct {
	Topic      string
	Partitions []FetchResponsePartition
}

// FetchResponse is the reply to a FetchRequest.
type FetchResponse struct {
	Topics []FetchResponseTopic
}

func (f *FetchResponse) ReadFrom(src []byte) error {
	r := kbin.Reader{Src: src}

	for i := r.ArrayLen(); i > 0; i-- {
		var t FetchResponseTopic
		t.Topic = r.String()
		for j := r.ArrayLen(); j > 0; j-- {
			var p FetchResponsePartition
			p.Partition = r.Int32()
			p.ErrorCode = r.Int16()
			p.HighWatermarkOffset = r.Int64()
			p.MessageSet = r.Bytes()
			t.Partitions = append(t.Partitions, p)
		}
		f.Topics = append(f.Topics, t)
	}

	return complete(&r)
}

// AppendTo encodes the response body for fake servers in tests.
func (f *FetchResponse) AppendTo(dst []byte) []byte {
	dst = kbin.AppendArrayLen(dst, len(f.Topics))
	for _, t := range f.Topics {
		dst = kbin.AppendString(dst, t.Topic)
		dst = kbin.AppendArrayLen(dst, len(t.Partitions))
		for _, p := range t.Partitions {
			dst = kbin.AppendInt32(dst, p.Partition)
			dst = kbin.AppendInt16(dst, p.ErrorCode)
			dst = kbin.AppendInt64(dst, p.HighWatermarkOffset)
			dst = kbin.AppendBytes(dst, p.MessageSet)
		}
	}
	return dst
}
