package lockdrop

import (
	"math/big"

	"lockdropd/core/types"
	"lockdropd/crypto"
)

// Coin is a native asset attached to a deposit.
type Coin struct {
	Denom  string
	Amount *big.Int
}

// Instruction is an outbound effect emitted by a handler. The processor
// executes instructions strictly in emission order; self-addressed Callback
// instructions re-enter the engine, everything else crosses the contract
// boundary. The whole transaction commits or rolls back as one unit.
type Instruction interface {
	instruction()
}

// VenueDeposit moves native principal into the yield venue.
type VenueDeposit struct {
	Venue  crypto.Address
	Denom  string
	Amount *big.Int
}

// VenueClaimRewards asks the venue to pay out the contract's pending reward
// emissions.
type VenueClaimRewards struct {
	Venue crypto.Address
}

// TokenTransfer instructs a token ledger to move tokens from the contract to
// the recipient.
type TokenTransfer struct {
	Token     crypto.Address
	Recipient crypto.Address
	Amount    *big.Int
}

// TokenTransferFrom pulls tokens from the owner into the recipient. Used
// only for the forceful-unlock incentive clawback.
type TokenTransferFrom struct {
	Token     crypto.Address
	Owner     crypto.Address
	Recipient crypto.Address
	Amount    *big.Int
}

// NativeTransfer returns native principal to a depositor.
type NativeTransfer struct {
	Recipient crypto.Address
	Denom     string
	Amount    *big.Int
}

// DelegationNotice informs the delegation program that a user redirected
// part of their earned incentive to it.
type DelegationNotice struct {
	Program crypto.Address
	User    crypto.Address
	Amount  *big.Int
}

// Callback is a self-addressed resumption instruction. The processor rejects
// any callback whose Contract field differs from the ledger's own identity,
// so external callers cannot forge state transitions.
type Callback struct {
	Contract crypto.Address
	Msg      CallbackMsg
}

func (VenueDeposit) instruction()      {}
func (VenueClaimRewards) instruction() {}
func (TokenTransfer) instruction()     {}
func (TokenTransferFrom) instruction() {}
func (NativeTransfer) instruction()    {}
func (DelegationNotice) instruction()  {}
func (Callback) instruction()          {}

// CallbackMsg tags the resumption step a Callback carries.
type CallbackMsg interface {
	callback()
}

// ResumeInvest finishes the freeze-and-invest transition once the venue
// deposit has settled.
type ResumeInvest struct {
	PrevShareBalance *big.Int
}

// ResumeClaim finishes a claim once the venue reward payout has settled.
type ResumeClaim struct {
	User              crypto.Address
	PrevRewardBalance *big.Int
}

// DissolveStep unlocks one position after the claim flow it was requested
// with has completed.
type DissolveStep struct {
	User     crypto.Address
	Duration uint64
	Forceful bool
}

func (ResumeInvest) callback() {}
func (ResumeClaim) callback()  {}
func (DissolveStep) callback() {}

// Response collects the events and outbound instructions produced by one
// handler invocation.
type Response struct {
	Events       []*types.Event
	Instructions []Instruction
}

func (r *Response) emit(ev *types.Event) {
	if ev != nil {
		r.Events = append(r.Events, ev)
	}
}

func (r *Response) push(ins Instruction) {
	if ins != nil {
		r.Instructions = append(r.Instructions, ins)
	}
}
