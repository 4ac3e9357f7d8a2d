package lockdrop

import (
	"math/big"
	"strconv"

	"lockdropd/core/types"
	"lockdropd/crypto"
)

const (
	EventTypeDeposited     = "lockdrop.deposited"
	EventTypeWithdrawn     = "lockdrop.withdrawn"
	EventTypeInvested      = "lockdrop.invested"
	EventTypeInvestSettled = "lockdrop.invest_settled"
	EventTypeClaimsEnabled = "lockdrop.claims_enabled"
	EventTypeDelegated     = "lockdrop.delegated"
	EventTypeRewardsClaim  = "lockdrop.rewards_claimed"
	EventTypeIncentivePaid = "lockdrop.incentive_paid"
	EventTypeDissolved     = "lockdrop.dissolved"
	EventTypeConfigUpdated = "lockdrop.config_updated"
)

// NewDepositedEvent records a deposit into a lockup position.
func NewDepositedEvent(depositor crypto.Address, duration uint64, amount *big.Int) *types.Event {
	return &types.Event{Type: EventTypeDeposited, Attributes: map[string]string{
		"user":     depositor.String(),
		"duration": strconv.FormatUint(duration, 10),
		"amount":   amountString(amount),
	}}
}

// NewWithdrawnEvent records a withdrawal from a lockup position.
func NewWithdrawnEvent(withdrawer crypto.Address, duration uint64, amount *big.Int) *types.Event {
	return &types.Event{Type: EventTypeWithdrawn, Attributes: map[string]string{
		"user":     withdrawer.String(),
		"duration": strconv.FormatUint(duration, 10),
		"amount":   amountString(amount),
	}}
}

// NewInvestedEvent records the venue deposit leg of the freeze.
func NewInvestedEvent(amount *big.Int, timestamp uint64) *types.Event {
	return &types.Event{Type: EventTypeInvested, Attributes: map[string]string{
		"principal": amountString(amount),
		"timestamp": strconv.FormatUint(timestamp, 10),
	}}
}

// NewInvestSettledEvent records the resumption leg of the freeze with the
// shares actually minted.
func NewInvestSettledEvent(minted *big.Int) *types.Event {
	return &types.Event{Type: EventTypeInvestSettled, Attributes: map[string]string{
		"shares_minted": amountString(minted),
	}}
}

// NewClaimsEnabledEvent records the one-time claim unlock signal.
func NewClaimsEnabledEvent() *types.Event {
	return &types.Event{Type: EventTypeClaimsEnabled, Attributes: map[string]string{}}
}

// NewDelegatedEvent records an incentive delegation to the external program.
func NewDelegatedEvent(user crypto.Address, amount *big.Int) *types.Event {
	return &types.Event{Type: EventTypeDelegated, Attributes: map[string]string{
		"user":   user.String(),
		"amount": amountString(amount),
	}}
}

// NewRewardsClaimedEvent records a venue reward payout to a user.
func NewRewardsClaimedEvent(user crypto.Address, amount *big.Int) *types.Event {
	return &types.Event{Type: EventTypeRewardsClaim, Attributes: map[string]string{
		"user":   user.String(),
		"amount": amountString(amount),
	}}
}

// NewIncentivePaidEvent records the one-time incentive payout to a user.
func NewIncentivePaidEvent(user crypto.Address, amount *big.Int) *types.Event {
	return &types.Event{Type: EventTypeIncentivePaid, Attributes: map[string]string{
		"user":   user.String(),
		"amount": amountString(amount),
	}}
}

// NewDissolvedEvent records a position unlock, natural or forceful.
func NewDissolvedEvent(user crypto.Address, duration uint64, shares *big.Int, forceful bool) *types.Event {
	return &types.Event{Type: EventTypeDissolved, Attributes: map[string]string{
		"user":               user.String(),
		"duration":           strconv.FormatUint(duration, 10),
		"shares_transferred": amountString(shares),
		"forceful":           strconv.FormatBool(forceful),
	}}
}

// NewConfigUpdatedEvent records an administrative configuration change.
func NewConfigUpdatedEvent(owner crypto.Address) *types.Event {
	return &types.Event{Type: EventTypeConfigUpdated, Attributes: map[string]string{
		"owner": owner.String(),
	}}
}

func amountString(amount *big.Int) string {
	if amount == nil {
		return "0"
	}
	return amount.String()
}
