package permit2

import (
	"fmt"

	"github.com/0xPolygon/polygon-zenith/contractsapi"
	"github.com/0xPolygon/polygon-zenith/state/runtime"
	"github.com/0xPolygon/polygon-zenith/types"
)

// PermitWitnessTransferFrom makes the calling contract pull a single token
// through Permit2, the permit must be signed for witness
func PermitWitnessTransferFrom(
	host runtime.Host,
	c *runtime.Contract,
	permit2 types.Address,
	p contractsapi.Permit2,
	details contractsapi.SignatureTransferDetails,
	witness Witness,
) error {
	return call(host, c, permit2, &contractsapi.PermitWitnessTransferFromFn{
		Permit:            p.Permit,
		TransferDetails:   details,
		Owner:             p.Owner,
		Witness:           witness.Hash,
		WitnessTypeString: witness.TypeString,
		Signature:         p.Signature,
	})
}

// PermitBatchWitnessTransferFrom makes the calling contract pull several
// tokens through Permit2, the permit must be signed for witness
func PermitBatchWitnessTransferFrom(
	host runtime.Host,
	c *runtime.Contract,
	permit2 types.Address,
	p contractsapi.Permit2Batch,
	details []contractsapi.SignatureTransferDetails,
	witness Witness,
) error {
	return call(host, c, permit2, &contractsapi.PermitBatchWitnessTransferFromFn{
		Permit:            p.Permit,
		TransferDetails:   details,
		Owner:             p.Owner,
		Witness:           witness.Hash,
		WitnessTypeString: witness.TypeString,
		Signature:         p.Signature,
	})
}

func call(host runtime.Host, c *runtime.Contract, permit2 types.Address, fn contractsapi.FunctionAbi) error {
	if !host.IsContract(permit2) {
		return fmt.Errorf("%w: permit2 %s", runtime.ErrNoCode, permit2)
	}

	input, err := fn.EncodeAbi()
	if err != nil {
		return err
	}

	_, err = runtime.Call(host, c, permit2, nil, input)

	return err
}
