package simulate

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"

	"github.com/0xPolygon/polygon-zenith/builder"
	"github.com/0xPolygon/polygon-zenith/command/helper"
	"github.com/0xPolygon/polygon-zenith/types"
	"github.com/0xPolygon/polygon-zenith/verifier"
)

type SubmissionRow struct {
	BundleID      uuid.UUID  `json:"bundleId"`
	HostBlock     uint64     `json:"hostBlock"`
	RollupChainID uint64     `json:"rollupChainId"`
	Sequence      uint64     `json:"sequence"`
	ConfirmBy     uint64     `json:"confirmBy"`
	BlockDataHash types.Hash `json:"blockDataHash"`
	Attempts      int        `json:"attempts"`
}

func newSubmissionRow(res *builder.Result) *SubmissionRow {
	return &SubmissionRow{
		BundleID:      res.BundleID,
		HostBlock:     res.Block.Number(),
		RollupChainID: res.Header.RollupChainID.Uint64(),
		Sequence:      res.Header.Sequence.Uint64(),
		ConfirmBy:     res.Header.ConfirmBy.Uint64(),
		BlockDataHash: res.Header.BlockDataHash,
		Attempts:      res.Attempts,
	}
}

type VerdictRow struct {
	HostBlock       uint64     `json:"hostBlock"`
	RollupChainID   uint64     `json:"rollupChainId"`
	RollupBlock     uint64     `json:"rollupBlock"`
	RollupBlockHash types.Hash `json:"rollupBlockHash"`
	Submitted       bool       `json:"submitted"`
	Deposits        int        `json:"deposits"`
	Transactions    int        `json:"transactions"`
	Exits           int        `json:"exits"`
	ExitRoot        types.Hash `json:"exitRoot"`
	Valid           bool       `json:"valid"`
}

func newVerdictRow(v *verifier.Verdict) *VerdictRow {
	return &VerdictRow{
		HostBlock:       v.HostBlock,
		RollupChainID:   v.RollupChainID,
		RollupBlock:     v.RollupBlock,
		RollupBlockHash: v.RollupBlockHash,
		Submitted:       v.Submission != nil,
		Deposits:        v.Deposits + v.Transacts,
		Transactions:    v.Transactions,
		Exits:           len(v.Exits),
		ExitRoot:        v.ExitRoot,
		Valid:           v.Valid(),
	}
}

type SimulateResult struct {
	HostChainID uint64           `json:"hostChainId"`
	Storage     string           `json:"storage"`
	Sequencer   string           `json:"sequencer"`
	Submitted   []*SubmissionRow `json:"submitted"`
	Verdicts    []*VerdictRow    `json:"verdicts"`
}

// Invalid counts the verdicts that did not hold
func (r *SimulateResult) Invalid() int {
	invalid := 0

	for _, v := range r.Verdicts {
		if !v.Valid {
			invalid++
		}
	}

	return invalid
}

func (r *SimulateResult) GetOutput() string {
	var buffer bytes.Buffer

	buffer.WriteString("\n[SIMULATION]\n")
	buffer.WriteString(helper.FormatKV([]string{
		fmt.Sprintf("Host chain|%d", r.HostChainID),
		fmt.Sprintf("Storage|%s", r.Storage),
		fmt.Sprintf("Sequencer|%s", r.Sequencer),
		fmt.Sprintf("Submitted|%d", len(r.Submitted)),
		fmt.Sprintf("Invalid verdicts|%d", r.Invalid()),
	}))
	buffer.WriteString("\n")

	submitted := make([]string, 0, len(r.Submitted)+1)
	submitted = append(submitted, "Host block|Rollup|Sequence|Confirm by|Attempts|Bundle")

	for _, s := range r.Submitted {
		submitted = append(submitted, fmt.Sprintf("%d|%d|%d|%d|%d|%s",
			s.HostBlock, s.RollupChainID, s.Sequence, s.ConfirmBy, s.Attempts, s.BundleID))
	}

	buffer.WriteString("\n[SUBMISSIONS]\n")
	buffer.WriteString(helper.FormatList(submitted))
	buffer.WriteString("\n")

	verdicts := make([]string, 0, len(r.Verdicts)+1)
	verdicts = append(verdicts, "Host block|Rollup|Rollup block|Submitted|Deposits|Txs|Exits|Valid")

	for _, v := range r.Verdicts {
		verdicts = append(verdicts, fmt.Sprintf("%d|%d|%d|%t|%d|%d|%d|%t",
			v.HostBlock, v.RollupChainID, v.RollupBlock, v.Submitted, v.Deposits, v.Transactions, v.Exits, v.Valid))
	}

	buffer.WriteString("\n[VERDICTS]\n")
	buffer.WriteString(helper.FormatList(verdicts))
	buffer.WriteString("\n")

	return buffer.String()
}
