package protocol

import "github.com/twmb/franz-go/pkg/kbin"

// MetadataRequest asks a broker for the cluster topology. An empty topic
// list requests metadata for all topics.
type MetadataRequest struct {
	Topics []string
}

func (*MetadataRequest) Key() int16     { return KeyMetadata }
func (*MetadataRequest) Version() int16 { return 0 }

func (m *MetadataRequest) AppendTo(dst []byte) []byte {
	dst = kbin.AppendArrayLen(dst, len(m.Topics))
	for _, topic := range m.Topics {
		dst = kbin.AppendString(dst, topic)
	}
	return dst
}

func (*MetadataRequest) ResponseKind() Response { return new(MetadataResponse) }

// MetadataResponseBroker is one broker entry of a metadata response.
type MetadataResponseBroker struct {
	NodeID int32
	Host   string
	Port   int32
}

// MetadataResponsePartition is one partition entry of a topic's metadata.
type MetadataResponsePartition struct {
	ErrorCode int16
	Partition int32
	Leader    int32
	Replicas  []int32
	ISR       []int32
}

// MetadataResponseTopic is one topic entry of a metadata response.
type MetadataResponseTopic struct {
	ErrorCode  int16
	Topic      string
	Partitions []MetadataResponsePartition
}

// MetadataResponse is the reply to a MetadataRequest.
type MetadataResponse struct {
	Brokers []MetadataResponseBroker
	Topics  []MetadataResponseTopic
}

func (m *MetadataResponse) ReadFrom(src []byte) error {
	r := kbin.Reader{Src: src}

	for i := r.ArrayLen(); i > 0; i-- {
		var b MetadataResponseBroker
		b.NodeID = r.Int32()
		b.Host = r.String()
		b.Port = r.Int32()
		m.Brokers = append(m.Brokers, b)
	}

	for i := r.ArrayLen(); i > 0; i-- {
		var t MetadataResponseTopic
		t.ErrorCode = r.Int16()
		t.Topic = r.String()
		for j := r.ArrayLen(); j > 0; j-- {
			var p MetadataResponsePartition
			p.ErrorCode = r.Int16()
			p.Partition = r.Int32()
			p.Leader = r.Int32()
			for k := r.ArrayLen(); k > 0; k-- {
				p.Replicas = append(p.Replicas, r.Int32())
			}
			for k := r.ArrayLen(); k > 0; k-- {
				p.ISR = append(p.ISR, r.Int32())
			}
			t.Partitions = append(t.Partitions, p)
		}
		m.Topics = append(m.Topics, t)
	}

	return complete(&r)
}

// AppendTo encodes the response body. Brokers use it when this package
// backs a fake server in tests.
func (m *MetadataResponse) AppendTo(dst []byte) []byte {
	dst = kbin.AppendArrayLen(dst, len(m.Brokers))
	for _, b := range m.Brokers {
		dst = kbin.AppendInt32(dst, b.NodeID)
		dst = kbin.AppendString(dst, b.Host)
		dst = kbin.AppendInt32(dst, b.Port)
	}
	dst = kbin.AppendArrayLen(dst, len(m.Topics))
	for _, t := range m.Topics {
		dst = kbin.AppendInt16(dst, t.ErrorCode)
		dst = kbin.AppendString(dst, t.Topic)
		dst = kbin.AppendArrayLen(dst, len(t.Partitions))
		for _, p := range t.Partitions {
			dst = kbin.AppendInt16(dst, p.ErrorCode)
			dst = kbin.AppendInt32(dst, p.Partition)
			dst = kbin.AppendInt32(dst, p.Leader)
			dst = kbin.AppendArrayLen(dst, len(p.Replicas))
			for _, r := range p.Replicas {
				dst = kbin.AppendInt32(dst, r)
			}
			dst = kbin.AppendArrayLen(dst, len(p.ISR))
			for _, r := range p.ISR {
				dst = kbin.AppendInt32(dst, r)
			}
		}
	}
	return dst
}
