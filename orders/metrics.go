package orders

import (
	"github.com/armon/go-metrics"
)

func ordersMetrics(event string, outputs int) {
	metrics.IncrCounter([]string{"orders", event}, 1)
	metrics.IncrCounter([]string{"orders", event, "outputs"}, float32(outputs))
}
