package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/agbru/parsearch/internal/format"
)

// DisplayMetricsSummary prints the counters and histogram sample counts
// collected by g, one line per metric family, sorted by name.
func DisplayMetricsSummary(out io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	if len(families) == 0 {
		return nil
	}
	sort.Slice(families, func(i, j int) bool { return families[i].GetName() < families[j].GetName() })

	fmt.Fprintf(out, "\n--- Search Metrics ---\n")
	for _, mf := range families {
		line := summarizeFamily(mf)
		if line == "" {
			continue
		}
		fmt.Fprintf(out, "  %-40s %s\n", mf.GetName(), line)
	}
	return nil
}

func summarizeFamily(mf *dto.MetricFamily) string {
	switch mf.GetType() {
	case dto.MetricType_COUNTER:
		var parts []string
		var total float64
		for _, m := range mf.GetMetric() {
			v := m.GetCounter().GetValue()
			total += v
			if labels := labelString(m.GetLabel()); labels != "" {
				parts = append(parts, fmt.Sprintf("%s=%s", labels, format.FormatCount(int64(v))))
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, " ")
		}
		return format.FormatCount(int64(total))
	case dto.MetricType_HISTOGRAM:
		var count uint64
		var sum float64
		for _, m := range mf.GetMetric() {
			count += m.GetHistogram().GetSampleCount()
			sum += m.GetHistogram().GetSampleSum()
		}
		if count == 0 {
			return ""
		}
		return fmt.Sprintf("count=%d mean=%.4g", count, sum/float64(count))
	}
	return ""
}

func labelString(pairs []*dto.LabelPair) string {
	values := make([]string, 0, len(pairs))
	for _, p := range pairs {
		values = append(values, p.GetValue())
	}
	return strings.Join(values, ",")
}
