package protocol

import "github.com/twmb/franz-go/pkg/kbin"

// ProduceRequestPartition carries one partition's record payload. The
// message set is opaque to this module; building and compressing it is
// the caller's concern.
type ProduceRequestPartition struct {
	Partition  int32
	MessageSet []byte
}

// ProduceRequestTopic groups the partitions of one topic.
type ProduceRequestTopic struct {
	Topic      string
	Partitions []ProduceRequestPartition
}

// ProduceRequest appends message sets to partitions.
type ProduceRequest struct {
	RequiredAcks int16
	Timeout      int32
	Topics       []ProduceRequestTopic
}

func (*ProduceRequest) Key() int16     { return KeyProduce }
func (*ProduceRequest) Version() int16 { return 0 }

// Ackless reports whether the broker was told not to reply.
func (p *ProduceRequest) Ackless() bool { return p.RequiredAcks == 0 }

func (p *ProduceRequest) AppendTo(dst []byte) []byte {
	dst = kbin.AppendInt16(dst, p.RequiredAcks)
	dst = kbin.AppendInt32(dst, p.Timeout)
	dst = kbin.AppendArrayLen(dst, len(p.Topics))
	for _, t := range p.Topics {
		dst = kbin.AppendString(dst, t.Topic)
		dst = kbin.AppendArrayLen(dst, len(t.Partitions))
		for _, part := range t.Partitions {
			dst = kbin.AppendInt32(dst, part.Partition)
			dst = kbin.AppendBytes(dst, part.MessageSet)
		}
	}
	return dst
}

func (*ProduceRequest) ResponseKind() Response { return new(ProduceResponse) }

// ProduceResponsePartition is one partition's append result.
type ProduceResponsePartition struct {
	Partition  int32
	ErrorCode  int16
	BaseOffset int64
}

// ProduceResponseTopic groups partition results of one topic.
type ProduceResponseTopic struct {
	Topic      string
	Partitions []ProduceResponsePartition
}

// ProduceResponse is the reply to a ProduceRequest with required acks
// other than zero. An ackless produce is answered with the zero value.
type ProduceResponse struct {
	Topics []ProduceResponseTopic
}

func (p *ProduceResponse) ReadFrom(src []byte) error {
	r := kbin.Reader{Src: src}

	for i := r.ArrayLen(); i > 0; i-- {
		var t ProduceResponseTopic
		t.Topic = r.String()
		for j := r.ArrayLen(); j > 0; j-- {
			var part ProduceResponsePartition
			part.Partition = r.Int32()
			part.ErrorCode = r.Int16()
			part.BaseOffset = r.Int64()
			t.Partitions = append(t.Partitions, part)
		}
		p.Topics = append(p.Topics, t)
	}

	return complete(&r)
}

// AppendTo encodes the response body for fake servers in tests.
func (p *ProduceResponse) AppendTo(dst []byte) []byte {
	dst = kbin.AppendArrayLen(dst, len(p.Topics))
	for _, t := range p.Topics {
		dst = kbin.AppendString(dst, t.Topic)
		dst = kbin.AppendArrayLen(dst, len(t.Partitions))
		for _, part := range t.Partitions {
			dst = kbin.AppendInt32(dst, part.Partition)
			dst = kbin.AppendInt16(dst, part.ErrorCode)
			dst = kbin.AppendInt64(dst, part.BaseOffset)
		}
	}
	return dst
}
