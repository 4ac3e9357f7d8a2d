package lockdrop

import "errors"

// Every failure aborts the whole transaction; the sentinels below only encode
// the reported reason. Grouped by category: validation, authorization,
// window, state and balance.
var (
	errNilState      = errors.New("lockdrop engine: state not configured")
	errNilVenue      = errors.New("lockdrop engine: venue querier not configured")
	errConfigMissing = errors.New("lockdrop engine: configuration not initialised")

	// Validation.
	errInvalidAmount = errors.New("lockdrop engine: amount must be positive")
	errInvalidDenom  = errors.New("lockdrop engine: deposit asset not accepted")
	errMultipleCoins = errors.New("lockdrop engine: expected a single deposit coin")
	errDurationRange = errors.New("lockdrop engine: lockup duration out of range")

	// Authorization.
	errNotOwner            = errors.New("lockdrop engine: only the owner may call this")
	errNotDelegationTarget = errors.New("lockdrop engine: only the delegation program may enable claims")
	errDelegationUnset     = errors.New("lockdrop engine: delegation program not configured")
	errCallbackForged      = errors.New("lockdrop engine: callbacks cannot be invoked externally")

	// Window.
	errDepositClosed  = errors.New("lockdrop engine: deposit window closed")
	errWithdrawClosed = errors.New("lockdrop engine: withdrawals not allowed")
	errWithdrawLimit  = errors.New("lockdrop engine: amount exceeds allowed withdrawal limit")
	errWindowsOpen    = errors.New("lockdrop engine: deposit/withdrawal windows have not concluded")

	// State.
	errAlreadyInitialized = errors.New("lockdrop engine: ledger already initialised")
	errAlreadyInvested    = errors.New("lockdrop engine: principal already invested")
	errClaimsNotEnabled   = errors.New("lockdrop engine: claims not enabled yet")
	errClaimsEnabled      = errors.New("lockdrop engine: claims already enabled")
	errDelegationClosed   = errors.New("lockdrop engine: delegation no longer possible")
	errPositionMissing    = errors.New("lockdrop engine: lockup position does not exist")
	errStillLocked        = errors.New("lockdrop engine: position still locked")
	errNoPositions        = errors.New("lockdrop engine: no open lockup positions")
	errNothingLocked      = errors.New("lockdrop engine: no locked principal to claim rewards for")

	// Balance.
	errInsufficientPrincipal = errors.New("lockdrop engine: amount exceeds locked principal")
	errDelegationExceeds     = errors.New("lockdrop engine: amount exceeds undelegated incentive balance")

	// Arithmetic guard on running totals; surfacing this means an invariant
	// was violated upstream.
	errAmountUnderflow = errors.New("lockdrop engine: running total underflow")
)

// Config validation failures, shared by initialisation and updates.
var (
	errConfigWindows   = errors.New("lockdrop config: invalid deposit/withdrawal windows")
	errConfigDurations = errors.New("lockdrop config: invalid lockup durations")
	errConfigTimestamp = errors.New("lockdrop config: invalid init timestamp")
	errConfigWeights   = errors.New("lockdrop config: invalid weight multiplier/divider")
	errConfigIncentive = errors.New("lockdrop config: incentive pool not configured")
	errConfigFrozen    = errors.New("lockdrop config: field can no longer be adjusted")
)
