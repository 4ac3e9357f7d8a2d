package lockdrop

import (
	"fmt"
	"math/big"

	"lockdropd/crypto"
)

// engineState is the narrow persistence surface the engine operates against.
// The host supplies a transactional implementation; handlers never observe a
// partially applied transaction.
type engineState interface {
	GetConfig() (*Config, error)
	PutConfig(cfg *Config) error
	GetGlobalState() (*GlobalState, error)
	PutGlobalState(state *GlobalState) error
	GetLockup(addr crypto.Address, duration uint64) (*LockupPosition, error)
	PutLockup(lockup *LockupPosition) error
	DeleteLockup(addr crypto.Address, duration uint64) error
	GetUserInfo(addr crypto.Address) (*UserInfo, error)
	PutUserInfo(user *UserInfo) error
}

// VenueQuerier exposes the yield venue's read surface: the contract's share
// token balance, its reward token balance and the rewards still pending.
type VenueQuerier interface {
	ShareBalance(holder crypto.Address) (*big.Int, error)
	PendingRewards(holder crypto.Address) (*big.Int, error)
	RewardBalance(holder crypto.Address) (*big.Int, error)
}

// Engine orchestrates the lockdrop state transitions. One engine instance
// serves one transaction; the processor wires a fresh overlay-backed state
// for every top-level message.
type Engine struct {
	state        engineState
	contractAddr crypto.Address
	venue        VenueQuerier
	blockTime    uint64
}

// NewEngine constructs an engine bound to the ledger's own address, which is
// the only identity accepted as a callback origin.
func NewEngine(contractAddr crypto.Address) *Engine {
	return &Engine{contractAddr: contractAddr}
}

// SetState wires the engine to the external persistence layer.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetVenue wires the yield venue read surface.
func (e *Engine) SetVenue(venue VenueQuerier) { e.venue = venue }

// SetBlockTime records the transaction timestamp used for all window and
// unlock decisions within this transaction.
func (e *Engine) SetBlockTime(ts uint64) { e.blockTime = ts }

// ContractAddress returns the ledger's own identity.
func (e *Engine) ContractAddress() crypto.Address { return e.contractAddr }

// Initialize validates and persists the genesis configuration together with
// a zeroed global state. It refuses to run twice.
func Initialize(state engineState, cfg *Config, now uint64) error {
	if state == nil {
		return errNilState
	}
	existing, err := state.GetConfig()
	if err != nil {
		return err
	}
	if existing != nil {
		return errAlreadyInitialized
	}
	if err := cfg.Validate(now); err != nil {
		return err
	}
	if err := state.PutConfig(cfg.Copy()); err != nil {
		return err
	}
	return state.PutGlobalState(newGlobalState())
}

// Deposit locks a single-asset amount for the chosen duration, creating or
// topping up the (depositor, duration) position.
func (e *Engine) Deposit(depositor crypto.Address, duration uint64, funds []Coin) (*Response, error) {
	cfg, state, err := e.loadLedger()
	if err != nil {
		return nil, err
	}

	if !depositOpen(e.blockTime, cfg) {
		return nil, errDepositClosed
	}
	if len(funds) != 1 {
		return nil, errMultipleCoins
	}
	coin := funds[0]
	if coin.Denom != cfg.DepositDenom {
		return nil, errInvalidDenom
	}
	if coin.Amount == nil || coin.Amount.Sign() <= 0 {
		return nil, errInvalidAmount
	}
	if duration < cfg.MinLockDuration || duration > cfg.MaxLockDuration {
		return nil, fmt.Errorf("%w: needs to be between %d and %d", errDurationRange, cfg.MinLockDuration, cfg.MaxLockDuration)
	}

	lockup, err := e.state.GetLockup(depositor, duration)
	if err != nil {
		return nil, err
	}
	user, err := e.ensureUser(depositor)
	if err != nil {
		return nil, err
	}

	if lockup == nil {
		lockup = &LockupPosition{
			Depositor:       depositor,
			Duration:        duration,
			PrincipalLocked: big.NewInt(0),
			UnlockTimestamp: unlockTimestamp(cfg, duration),
			IncentiveReward: big.NewInt(0),
		}
		user.addDuration(duration)
	}
	lockup.PrincipalLocked = new(big.Int).Add(lockup.PrincipalLocked, coin.Amount)
	user.TotalPrincipalLocked = new(big.Int).Add(user.TotalPrincipalLocked, coin.Amount)

	state.LivePrincipalLocked = new(big.Int).Add(state.LivePrincipalLocked, coin.Amount)
	state.TotalWeightedDeposits = new(big.Int).Add(state.TotalWeightedDeposits, positionWeight(coin.Amount, duration, cfg))

	if err := e.state.PutGlobalState(state); err != nil {
		return nil, err
	}
	if err := e.state.PutLockup(lockup); err != nil {
		return nil, err
	}
	if err := e.state.PutUserInfo(user); err != nil {
		return nil, err
	}

	resp := &Response{}
	resp.emit(NewDepositedEvent(depositor, duration, coin.Amount))
	return resp, nil
}

// Withdraw releases part of a position's principal while the withdrawal
// window is open, bounded by the time-decaying withdrawal cap.
func (e *Engine) Withdraw(withdrawer crypto.Address, duration uint64, amount *big.Int) (*Response, error) {
	cfg, state, err := e.loadLedger()
	if err != nil {
		return nil, err
	}

	if !withdrawOpen(e.blockTime, cfg) {
		return nil, errWithdrawClosed
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, errInvalidAmount
	}

	lockup, err := e.state.GetLockup(withdrawer, duration)
	if err != nil {
		return nil, err
	}
	if lockup == nil || lockup.PrincipalLocked.Sign() == 0 {
		return nil, errPositionMissing
	}

	percent := allowedWithdrawalPercent(e.blockTime, cfg)
	allowed := maxAllowedWithdrawal(lockup.PrincipalLocked, percent)
	if amount.Cmp(allowed) > 0 {
		return nil, fmt.Errorf("%w: maximum allowed %s", errWithdrawLimit, allowed)
	}

	if e.blockTime >= cfg.InitTimestamp+cfg.DepositWindow {
		lockup.WithdrawalFlag = true
	}

	lockup.PrincipalLocked, err = checkedSub(lockup.PrincipalLocked, amount)
	if err != nil {
		return nil, errInsufficientPrincipal
	}

	user, err := e.ensureUser(withdrawer)
	if err != nil {
		return nil, err
	}
	user.TotalPrincipalLocked, err = checkedSub(user.TotalPrincipalLocked, amount)
	if err != nil {
		return nil, errInsufficientPrincipal
	}

	state.LivePrincipalLocked, err = checkedSub(state.LivePrincipalLocked, amount)
	if err != nil {
		return nil, err
	}
	state.TotalWeightedDeposits, err = checkedSub(state.TotalWeightedDeposits, positionWeight(amount, duration, cfg))
	if err != nil {
		return nil, err
	}

	if err := e.state.PutGlobalState(state); err != nil {
		return nil, err
	}
	if lockup.PrincipalLocked.Sign() == 0 {
		user.removeDuration(duration)
		if err := e.state.DeleteLockup(withdrawer, duration); err != nil {
			return nil, err
		}
	} else {
		if err := e.state.PutLockup(lockup); err != nil {
			return nil, err
		}
	}
	if err := e.state.PutUserInfo(user); err != nil {
		return nil, err
	}

	resp := &Response{}
	resp.push(NativeTransfer{Recipient: withdrawer, Denom: cfg.DepositDenom, Amount: new(big.Int).Set(amount)})
	resp.emit(NewWithdrawnEvent(withdrawer, duration, amount))
	return resp, nil
}

// UpdateConfig applies owner adjustments. Collaborator addresses may change
// at any time; the timing fields only move forward and only while their
// current deadline has not passed.
func (e *Engine) UpdateConfig(caller crypto.Address, update ConfigUpdate) (*Response, error) {
	cfg, err := e.loadConfig()
	if err != nil {
		return nil, err
	}
	if !caller.Equal(cfg.Owner) {
		return nil, errNotOwner
	}

	if update.Owner != nil {
		cfg.Owner = *update.Owner
	}
	if update.Venue != nil {
		cfg.Venue = *update.Venue
	}
	if update.ShareToken != nil {
		cfg.ShareToken = *update.ShareToken
	}
	if update.RewardToken != nil {
		cfg.RewardToken = *update.RewardToken
	}
	if update.IncentiveToken != nil {
		cfg.IncentiveToken = *update.IncentiveToken
	}
	if update.DelegationProgram != nil {
		cfg.DelegationProgram = *update.DelegationProgram
	}

	if update.InitTimestamp != nil {
		if e.blockTime >= cfg.InitTimestamp {
			return nil, fmt.Errorf("%w: init timestamp already passed", errConfigFrozen)
		}
		if *update.InitTimestamp <= cfg.InitTimestamp {
			return nil, fmt.Errorf("%w: init timestamp may only move forward", errConfigTimestamp)
		}
		cfg.InitTimestamp = *update.InitTimestamp
	}
	if update.DepositWindow != nil {
		if e.blockTime > cfg.InitTimestamp+cfg.DepositWindow {
			return nil, fmt.Errorf("%w: deposit window already closed", errConfigFrozen)
		}
		if *update.DepositWindow <= cfg.DepositWindow {
			return nil, fmt.Errorf("%w: deposit window may only be extended", errConfigWindows)
		}
		cfg.DepositWindow = *update.DepositWindow
	}
	if update.WithdrawalWindow != nil {
		if e.blockTime > cfg.InitTimestamp+cfg.WithdrawalWindow {
			return nil, fmt.Errorf("%w: withdrawal window already closed", errConfigFrozen)
		}
		if *update.WithdrawalWindow <= cfg.WithdrawalWindow {
			return nil, fmt.Errorf("%w: withdrawal window may only be extended", errConfigWindows)
		}
		cfg.WithdrawalWindow = *update.WithdrawalWindow
	}

	if err := cfg.Validate(0); err != nil {
		return nil, err
	}
	if err := e.state.PutConfig(cfg); err != nil {
		return nil, err
	}

	resp := &Response{}
	resp.emit(NewConfigUpdatedEvent(cfg.Owner))
	return resp, nil
}

// EnableClaims flips the claims gate. Only the configured delegation program
// may call it, and only once.
func (e *Engine) EnableClaims(caller crypto.Address) (*Response, error) {
	cfg, state, err := e.loadLedger()
	if err != nil {
		return nil, err
	}
	if cfg.DelegationProgram.IsZero() {
		return nil, errDelegationUnset
	}
	if !caller.Equal(cfg.DelegationProgram) {
		return nil, errNotDelegationTarget
	}
	if state.ClaimsEnabled {
		return nil, errClaimsEnabled
	}
	state.ClaimsEnabled = true
	if err := e.state.PutGlobalState(state); err != nil {
		return nil, err
	}

	resp := &Response{}
	resp.emit(NewClaimsEnabledEvent())
	return resp, nil
}

// HandleCallback resumes a suspended transaction step. Only the contract's
// own identity is accepted as the origin.
func (e *Engine) HandleCallback(sender crypto.Address, msg CallbackMsg) (*Response, error) {
	if !sender.Equal(e.contractAddr) {
		return nil, errCallbackForged
	}
	switch m := msg.(type) {
	case ResumeInvest:
		return e.resumeInvest(m)
	case *ResumeInvest:
		return e.resumeInvest(*m)
	case ResumeClaim:
		return e.resumeClaim(m)
	case *ResumeClaim:
		return e.resumeClaim(*m)
	case DissolveStep:
		return e.dissolvePosition(m)
	case *DissolveStep:
		return e.dissolvePosition(*m)
	default:
		return nil, fmt.Errorf("lockdrop engine: unknown callback %T", msg)
	}
}

func (e *Engine) loadConfig() (*Config, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	cfg, err := e.state.GetConfig()
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, errConfigMissing
	}
	return cfg, nil
}

func (e *Engine) loadLedger() (*Config, *GlobalState, error) {
	cfg, err := e.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	state, err := e.state.GetGlobalState()
	if err != nil {
		return nil, nil, err
	}
	return cfg, state.normalize(), nil
}

func (e *Engine) ensureUser(addr crypto.Address) (*UserInfo, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	user, err := e.state.GetUserInfo(addr)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return newUserInfo(addr), nil
	}
	return user.normalize(), nil
}
