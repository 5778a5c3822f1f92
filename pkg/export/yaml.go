package export

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/luxfi/cfdump/pkg/render"
)

// Document is one exported entry in YAML. Keys and values are rendered
// as text with the exporter's render format.
type Document struct {
	Partition string `yaml:"partition"`
	Key       string `yaml:"key"`
	Value     string `yaml:"value"`
}

type yamlSink struct {
	enc       *yaml.Encoder
	format    render.Format
	partition string
}

func newYAMLSink(w io.Writer, f render.Format) *yamlSink {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	return &yamlSink{enc: enc, format: f}
}

func (s *yamlSink) begin(partition string) error {
	s.partition = partition
	return nil
}

func (s *yamlSink) entry(key, value []byte) error {
	return s.enc.Encode(Document{
		Partition: s.partition,
		Key:       s.format.Bytes(key),
		Value:     s.format.Bytes(value),
	})
}

func (s *yamlSink) finish(error) error {
	return s.enc.Close()
}
