package lockdrop

import (
	"math/big"

	"lockdropd/crypto"
)

// ConfigResponse mirrors the stored configuration for callers.
type ConfigResponse struct {
	Owner                  string `json:"owner"`
	Venue                  string `json:"venue"`
	ShareToken             string `json:"shareToken"`
	RewardToken            string `json:"rewardToken"`
	IncentiveToken         string `json:"incentiveToken"`
	DelegationProgram      string `json:"delegationProgram"`
	DepositDenom           string `json:"depositDenom"`
	InitTimestamp          uint64 `json:"initTimestamp"`
	DepositWindow          uint64 `json:"depositWindow"`
	WithdrawalWindow       uint64 `json:"withdrawalWindow"`
	MinLockDuration        uint64 `json:"minLockDuration"`
	MaxLockDuration        uint64 `json:"maxLockDuration"`
	SecondsPerDurationUnit uint64 `json:"secondsPerDurationUnit"`
	WeightMultiplier       uint64 `json:"weightMultiplier"`
	WeightDivider          uint64 `json:"weightDivider"`
	TotalIncentivePool     string `json:"totalIncentivePool"`
}

// StateResponse exposes the global accounting totals.
type StateResponse struct {
	FinalPrincipalLocked    string `json:"finalPrincipalLocked"`
	FinalSharesReceived     string `json:"finalSharesReceived"`
	LivePrincipalLocked     string `json:"livePrincipalLocked"`
	LiveSharesHeld          string `json:"liveSharesHeld"`
	TotalWeightedDeposits   string `json:"totalWeightedDeposits"`
	TotalIncentiveDelegated string `json:"totalIncentiveDelegated"`
	ClaimsEnabled           bool   `json:"claimsEnabled"`
	RewardIndex             string `json:"rewardIndex"`
}

// UserInfoResponse summarises one depositor. Derived fields that have not
// been fixed yet are simulated for the read without persisting anything.
type UserInfoResponse struct {
	Address                     string   `json:"address"`
	TotalPrincipalLocked        string   `json:"totalPrincipalLocked"`
	TotalShareOfFrozenPrincipal string   `json:"totalShareOfFrozenPrincipal"`
	PositionDurations           []uint64 `json:"positionDurations"`
	TotalIncentiveEarned        string   `json:"totalIncentiveEarned"`
	IncentiveDelegated          string   `json:"incentiveDelegated"`
	IncentiveClaimed            bool     `json:"incentiveClaimed"`
	RewardIndexSnapshot         string   `json:"rewardIndexSnapshot"`
	TotalRewardClaimed          string   `json:"totalRewardClaimed"`
	PendingReward               string   `json:"pendingReward"`
}

// LockupResponse details one (depositor, duration) position.
type LockupResponse struct {
	Depositor              string `json:"depositor"`
	Duration               uint64 `json:"duration"`
	PrincipalLocked        string `json:"principalLocked"`
	ShareOfFrozenPrincipal string `json:"shareOfFrozenPrincipal"`
	IncentiveReward        string `json:"incentiveReward"`
	UnlockTimestamp        uint64 `json:"unlockTimestamp"`
	WithdrawalFlag         bool   `json:"withdrawalFlag"`
}

// QueryConfig returns the current configuration.
func (e *Engine) QueryConfig() (*ConfigResponse, error) {
	cfg, err := e.loadConfig()
	if err != nil {
		return nil, err
	}
	return &ConfigResponse{
		Owner:                  addressString(cfg.Owner),
		Venue:                  addressString(cfg.Venue),
		ShareToken:             addressString(cfg.ShareToken),
		RewardToken:            addressString(cfg.RewardToken),
		IncentiveToken:         addressString(cfg.IncentiveToken),
		DelegationProgram:      addressString(cfg.DelegationProgram),
		DepositDenom:           cfg.DepositDenom,
		InitTimestamp:          cfg.InitTimestamp,
		DepositWindow:          cfg.DepositWindow,
		WithdrawalWindow:       cfg.WithdrawalWindow,
		MinLockDuration:        cfg.MinLockDuration,
		MaxLockDuration:        cfg.MaxLockDuration,
		SecondsPerDurationUnit: cfg.SecondsPerDurationUnit,
		WeightMultiplier:       cfg.WeightMultiplier,
		WeightDivider:          cfg.WeightDivider,
		TotalIncentivePool:     amountString(cfg.TotalIncentivePool),
	}, nil
}

// QueryState returns the current global state.
func (e *Engine) QueryState() (*StateResponse, error) {
	_, state, err := e.loadLedger()
	if err != nil {
		return nil, err
	}
	return &StateResponse{
		FinalPrincipalLocked:    amountString(state.FinalPrincipalLocked),
		FinalSharesReceived:     amountString(state.FinalSharesReceived),
		LivePrincipalLocked:     amountString(state.LivePrincipalLocked),
		LiveSharesHeld:          amountString(state.LiveSharesHeld),
		TotalWeightedDeposits:   amountString(state.TotalWeightedDeposits),
		TotalIncentiveDelegated: amountString(state.TotalIncentiveDelegated),
		ClaimsEnabled:           state.ClaimsEnabled,
		RewardIndex:             amountString(state.RewardIndex),
	}, nil
}

// QueryUserInfo summarises a depositor, simulating the share, incentive and
// pending-reward values that a claim would fix, without mutating state.
func (e *Engine) QueryUserInfo(addr crypto.Address) (*UserInfoResponse, error) {
	cfg, state, err := e.loadLedger()
	if err != nil {
		return nil, err
	}
	user, err := e.ensureUser(addr)
	if err != nil {
		return nil, err
	}

	share := user.TotalShareOfFrozenPrincipal
	if !user.ShareComputed {
		share = proRataShare(user.TotalPrincipalLocked, state.FinalPrincipalLocked, state.FinalSharesReceived)
	}

	earned := user.TotalIncentiveEarned
	if !user.IncentivesComputed {
		earned = big.NewInt(0)
		for _, duration := range user.PositionDurations {
			lockup, err := e.state.GetLockup(addr, duration)
			if err != nil {
				return nil, err
			}
			if lockup == nil {
				continue
			}
			weight := positionWeight(lockup.PrincipalLocked, lockup.Duration, cfg)
			earned.Add(earned, incentiveForWeight(weight, state.TotalWeightedDeposits, cfg.TotalIncentivePool))
		}
	}

	// Simulate the index growth a claim would trigger right now.
	index := new(big.Int).Set(state.RewardIndex)
	if e.venue != nil {
		unclaimed, err := e.venue.PendingRewards(e.contractAddr)
		if err != nil {
			return nil, err
		}
		if unclaimed != nil && unclaimed.Sign() > 0 {
			index.Add(index, rewardIndexIncrement(unclaimed, state.LiveSharesHeld))
		}
	}
	pending := pendingReward(share, index, user.RewardIndexSnapshot)

	return &UserInfoResponse{
		Address:                     addressString(addr),
		TotalPrincipalLocked:        amountString(user.TotalPrincipalLocked),
		TotalShareOfFrozenPrincipal: amountString(share),
		PositionDurations:           append([]uint64(nil), user.PositionDurations...),
		TotalIncentiveEarned:        amountString(earned),
		IncentiveDelegated:          amountString(user.IncentiveDelegated),
		IncentiveClaimed:            user.IncentiveClaimed,
		RewardIndexSnapshot:         amountString(user.RewardIndexSnapshot),
		TotalRewardClaimed:          amountString(user.TotalRewardClaimed),
		PendingReward:               amountString(pending),
	}, nil
}

// QueryLockup details one position, computing the incentive on the fly when
// it has not been fixed yet.
func (e *Engine) QueryLockup(addr crypto.Address, duration uint64) (*LockupResponse, error) {
	cfg, state, err := e.loadLedger()
	if err != nil {
		return nil, err
	}
	lockup, err := e.state.GetLockup(addr, duration)
	if err != nil {
		return nil, err
	}
	if lockup == nil {
		return nil, errPositionMissing
	}

	incentive := lockup.IncentiveReward
	if incentive.Sign() == 0 {
		weight := positionWeight(lockup.PrincipalLocked, lockup.Duration, cfg)
		incentive = incentiveForWeight(weight, state.TotalWeightedDeposits, cfg.TotalIncentivePool)
	}

	return &LockupResponse{
		Depositor:              addressString(lockup.Depositor),
		Duration:               lockup.Duration,
		PrincipalLocked:        amountString(lockup.PrincipalLocked),
		ShareOfFrozenPrincipal: amountString(proRataShare(lockup.PrincipalLocked, state.FinalPrincipalLocked, state.FinalSharesReceived)),
		IncentiveReward:        amountString(incentive),
		UnlockTimestamp:        lockup.UnlockTimestamp,
		WithdrawalFlag:         lockup.WithdrawalFlag,
	}, nil
}

func addressString(addr crypto.Address) string {
	if addr.IsZero() {
		return ""
	}
	return addr.String()
}
