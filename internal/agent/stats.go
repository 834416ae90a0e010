package agent

import "github.com/tecsup/agente/internal/repo"

// metricNames are the tracked wellness metrics. Records carry them sparsely;
// any metric can be absent from any record.
var metricNames = []string{"pasos", "horas_sueno", "ritmo_cardiaco"}

// MetricStats summarizes one metric over a lookback window.
type MetricStats struct {
	Promedio float64
	Maximo   float64
	Minimo   float64
	Muestras int
}

// aggregateMetrics computes mean/max/min per metric over the given records.
// A metric with zero contributing samples is left out of the result entirely.
// Values that fail to parse as numbers are skipped, not counted.
func aggregateMetrics(records []repo.Interaction) map[string]MetricStats {
	out := make(map[string]MetricStats)
	for _, name := range metricNames {
		var (
			sum, max, min float64
			n             int
		)
		for _, rec := range records {
			raw, ok := rec.Metricas[name]
			if !ok {
				continue
			}
			v, err := raw.Float64()
			if err != nil {
				continue
			}
			if n == 0 || v > max {
				max = v
			}
			if n == 0 || v < min {
				min = v
			}
			sum += v
			n++
		}
		if n == 0 {
			continue
		}
		out[name] = MetricStats{
			Promedio: sum / float64(n),
			Maximo:   max,
			Minimo:   min,
			Muestras: n,
		}
	}
	return out
}
