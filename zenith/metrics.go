package zenith

import (
	"github.com/armon/go-metrics"
	"github.com/holiman/uint256"
)

const zenithMetrics = "zenith"

func blockSubmittedMetrics(rollupChainID, nextSequence *uint256.Int) {
	metrics.IncrCounter([]string{zenithMetrics, "blocks_submitted"}, 1)
	metrics.SetGaugeWithLabels([]string{zenithMetrics, "sequence"}, float32(nextSequence.Uint64()),
		[]metrics.Label{{Name: "chain_id", Value: rollupChainID.Dec()}})
}

func rejectedMetrics(reason string) {
	metrics.IncrCounterWithLabels([]string{zenithMetrics, "rejected"}, 1,
		[]metrics.Label{{Name: "error", Value: reason}})
}
