package export

import (
	"encoding/json"
	"io"
)

// Record is one exported entry. Keys and values are base64 in JSON.
type Record struct {
	Partition string `json:"partition"`
	Key       []byte `json:"key"`
	Value     []byte `json:"value"`
}

type jsonlSink struct {
	enc       *json.Encoder
	partition string
}

func newJSONLSink(w io.Writer) *jsonlSink {
	return &jsonlSink{enc: json.NewEncoder(w)}
}

func (s *jsonlSink) begin(partition string) error {
	s.partition = partition
	return nil
}

func (s *jsonlSink) entry(key, value []byte) error {
	return s.enc.Encode(Record{Partition: s.partition, Key: key, Value: value})
}

func (s *jsonlSink) finish(error) error { return nil }
