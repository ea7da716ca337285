package metrics

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	dto "github.com/prometheus/client_model/go"
)

// Service reads back the metrics of a Recorder.
type Service struct {
	recorder *Recorder
}

// NewService creates a new metrics service.
func NewService(recorder *Recorder) *Service {
	return &Service{recorder: recorder}
}

// Metric represents a single metric data point.
type Metric struct {
	Type  string  `json:"type"`
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// GetAllMetrics gathers every sample of the recorder, sorted by type then key.
// The session label is left out of Key.
func (s *Service) GetAllMetrics() ([]Metric, error) {
	slog.Debug("GetAllMetrics service called")
	families, err := s.recorder.Registry().Gather()
	if err != nil {
		return nil, fmt.Errorf("failed to gather metrics: %w", err)
	}
	var out []Metric
	for _, family := range families {
		for _, m := range family.GetMetric() {
			out = append(out, Metric{
				Type:  family.GetName(),
				Key:   labelKey(m.GetLabel()),
				Value: sampleValue(family.GetType(), m),
			})
		}
	}
	slices.SortFunc(out, func(a, b Metric) int {
		if c := strings.Compare(a.Type, b.Type); c != 0 {
			return c
		}
		return strings.Compare(a.Key, b.Key)
	})
	return out, nil
}

// Dump writes one "type{key} value" line per sample.
func (s *Service) Dump(w io.Writer) error {
	metrics, err := s.GetAllMetrics()
	if err != nil {
		return err
	}
	for _, m := range metrics {
		name := m.Type
		if m.Key != "" {
			name += "{" + m.Key + "}"
		}
		if _, err := fmt.Fprintf(w, "%s %g\n", name, m.Value); err != nil {
			return err
		}
	}
	return nil
}

func labelKey(labels []*dto.LabelPair) string {
	parts := make([]string, 0, len(labels))
	for _, l := range labels {
		if l.GetName() == "session" {
			continue
		}
		parts = append(parts, l.GetName()+"="+l.GetValue())
	}
	return strings.Join(parts, ",")
}

func sampleValue(kind dto.MetricType, m *dto.Metric) float64 {
	switch kind {
	case dto.MetricType_COUNTER:
		return m.GetCounter().GetValue()
	case dto.MetricType_GAUGE:
		return m.GetGauge().GetValue()
	case dto.MetricType_UNTYPED:
		return m.GetUntyped().GetValue()
	}
	return 0
}
