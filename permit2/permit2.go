package permit2

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/0xPolygon/polygon-zenith/contractsapi"
	"github.com/0xPolygon/polygon-zenith/crypto"
	"github.com/0xPolygon/polygon-zenith/state"
	"github.com/0xPolygon/polygon-zenith/state/runtime"
	"github.com/0xPolygon/polygon-zenith/token"
	"github.com/0xPolygon/polygon-zenith/types"
)

var nonceBitmapSlot = types.BytesToHash([]byte{0})

// Permit2 is the signature based transfer authorization contract. Owners approve
// it once on a token and then authorize individual transfers with signed permits,
// each permit usable once thanks to an unordered nonce.
type Permit2 struct {
	Address types.Address
}

// NewPermit2 creates the contract deployed at addr
func NewPermit2(addr types.Address) *Permit2 {
	return &Permit2{Address: addr}
}

func (p *Permit2) Name() string {
	return "permit2"
}

func bitmapSlot(owner types.Address, wordPos *uint256.Int) types.Hash {
	return state.MappingSlot(wordPos.Bytes32(), state.MappingSlot(state.AddressKey(owner), nonceBitmapSlot))
}

// NonceBitmap returns the used nonce bitmap of owner at wordPos
func (p *Permit2) NonceBitmap(host runtime.Host, owner types.Address, wordPos *uint256.Int) *uint256.Int {
	return runtime.GetUint(host, p.Address, bitmapSlot(owner, wordPos))
}

// useUnorderedNonce flips the bit of nonce, failing when it was already set
func (p *Permit2) useUnorderedNonce(host runtime.Host, owner types.Address, nonce *uint256.Int) error {
	wordPos := new(uint256.Int).Rsh(nonce, 8)
	bit := new(uint256.Int).Lsh(uint256.NewInt(1), uint(nonce.Uint64()&0xff))

	bitmap := p.NonceBitmap(host, owner, wordPos)
	if !new(uint256.Int).And(bitmap, bit).IsZero() {
		return contractsapi.InvalidNonceError.Revert()
	}

	runtime.SetUint(host, p.Address, bitmapSlot(owner, wordPos), bitmap.Or(bitmap, bit))

	return nil
}

func (p *Permit2) verify(host runtime.Host, signature []byte, structHash types.Hash, owner types.Address) error {
	if len(signature) != crypto.ECDSASignatureLength {
		return contractsapi.InvalidSignatureLengthError.Revert()
	}

	digest := TypedDataHash(DomainSeparator(host.GetTxContext().ChainID, p.Address), structHash)

	var r, sv types.Hash

	copy(r[:], signature[:32])
	copy(sv[:], signature[32:64])

	// permit signatures carry v in {27, 28}
	signer, err := crypto.Ecrecover(digest.Bytes(), crypto.JoinSignature(signature[64], r, sv))
	if err != nil || signer != owner {
		return contractsapi.InvalidSignerError.Revert()
	}

	return nil
}

func checkDeadline(host runtime.Host, deadline *big.Int) error {
	if new(big.Int).SetUint64(host.GetTxContext().Timestamp).Cmp(bigOrZero(deadline)) > 0 {
		return contractsapi.SignatureExpiredError.Revert(bigOrZero(deadline))
	}

	return nil
}

func (p *Permit2) permitWitnessTransferFrom(
	host runtime.Host,
	c *runtime.Contract,
	fn *contractsapi.PermitWitnessTransferFromFn,
) error {
	if err := checkDeadline(host, fn.Permit.Deadline); err != nil {
		return err
	}

	requested := bigOrZero(fn.TransferDetails.RequestedAmount)
	if requested.Cmp(bigOrZero(fn.Permit.Permitted.Amount)) > 0 {
		return contractsapi.InvalidAmountError.Revert(bigOrZero(fn.Permit.Permitted.Amount))
	}

	if err := p.useUnorderedNonce(host, fn.Owner, runtime.ToUint256(fn.Permit.Nonce)); err != nil {
		return err
	}

	witness := Witness{Hash: fn.Witness, TypeString: fn.WitnessTypeString}
	if err := p.verify(host, fn.Signature, HashPermitWitness(fn.Permit, c.Caller, witness), fn.Owner); err != nil {
		return err
	}

	if requested.Sign() == 0 {
		return nil
	}

	return token.TransferFrom(host, c, fn.Permit.Permitted.Token, fn.Owner, fn.TransferDetails.To, requested)
}

func (p *Permit2) permitBatchWitnessTransferFrom(
	host runtime.Host,
	c *runtime.Contract,
	fn *contractsapi.PermitBatchWitnessTransferFromFn,
) error {
	if len(fn.Permit.Permitted) != len(fn.TransferDetails) {
		return contractsapi.LengthMismatchError.Revert()
	}

	if err := checkDeadline(host, fn.Permit.Deadline); err != nil {
		return err
	}

	if err := p.useUnorderedNonce(host, fn.Owner, runtime.ToUint256(fn.Permit.Nonce)); err != nil {
		return err
	}

	witness := Witness{Hash: fn.Witness, TypeString: fn.WitnessTypeString}
	if err := p.verify(host, fn.Signature, HashBatchPermitWitness(fn.Permit, c.Caller, witness), fn.Owner); err != nil {
		return err
	}

	for i, permitted := range fn.Permit.Permitted {
		requested := bigOrZero(fn.TransferDetails[i].RequestedAmount)
		if requested.Cmp(bigOrZero(permitted.Amount)) > 0 {
			return contractsapi.InvalidAmountError.Revert(bigOrZero(permitted.Amount))
		}

		if requested.Sign() == 0 {
			continue
		}

		if err := token.TransferFrom(host, c, permitted.Token, fn.Owner, fn.TransferDetails[i].To, requested); err != nil {
			return err
		}
	}

	return nil
}

// Run implements the runtime.Runtime interface
func (p *Permit2) Run(c *runtime.Contract, host runtime.Host) *runtime.ExecutionResult {
	if res := runtime.NotPayable(c); res != nil {
		return res
	}

	input := c.Input

	switch {
	case contractsapi.MatchSelector(contractsapi.PermitWitnessTransferFromMethod, input):
		var fn contractsapi.PermitWitnessTransferFromFn
		if err := fn.DecodeAbi(input); err != nil {
			return runtime.Failure(err)
		}

		if err := p.permitWitnessTransferFrom(host, c, &fn); err != nil {
			return runtime.Failure(err)
		}

		return runtime.Success(nil)

	case contractsapi.MatchSelector(contractsapi.PermitBatchWitnessTransferFromMethod, input):
		var fn contractsapi.PermitBatchWitnessTransferFromFn
		if err := fn.DecodeAbi(input); err != nil {
			return runtime.Failure(err)
		}

		if err := p.permitBatchWitnessTransferFrom(host, c, &fn); err != nil {
			return runtime.Failure(err)
		}

		return runtime.Success(nil)

	case contractsapi.MatchSelector(contractsapi.InvalidateUnorderedNoncesMethod, input):
		var fn contractsapi.InvalidateUnorderedNoncesFn
		if err := fn.DecodeAbi(input); err != nil {
			return runtime.Failure(err)
		}

		wordPos := runtime.ToUint256(fn.WordPos)
		bitmap := p.NonceBitmap(host, c.Caller, wordPos)
		runtime.SetUint(host, p.Address, bitmapSlot(c.Caller, wordPos), bitmap.Or(bitmap, runtime.ToUint256(fn.Mask)))

		err := runtime.Emit(host, p.Address, &contractsapi.UnorderedNonceInvalidationEvent{
			Owner: c.Caller,
			Word:  fn.WordPos,
			Mask:  fn.Mask,
		})
		if err != nil {
			return runtime.Failure(err)
		}

		return runtime.Success(nil)

	case contractsapi.MatchSelector(contractsapi.NonceBitmapMethod, input):
		var fn contractsapi.NonceBitmapFn
		if err := fn.DecodeAbi(input); err != nil {
			return runtime.Failure(err)
		}

		return runtime.Returns(contractsapi.NonceBitmapMethod,
			p.NonceBitmap(host, fn.Owner, runtime.ToUint256(fn.WordPos)).ToBig())

	case contractsapi.MatchSelector(contractsapi.DomainSeparatorMethod, input):
		return runtime.Returns(contractsapi.DomainSeparatorMethod,
			DomainSeparator(host.GetTxContext().ChainID, p.Address))
	}

	return runtime.Failure(runtime.ErrUnknownMethod)
}
