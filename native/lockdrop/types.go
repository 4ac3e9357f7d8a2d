package lockdrop

import (
	"math/big"

	"lockdropd/crypto"
)

// Config carries the write-once lockdrop parameters. Collaborator addresses
// may be assigned later by the owner; everything else is fixed at
// initialisation except the window fields, which the owner may extend before
// their respective deadlines pass.
type Config struct {
	// Owner may update the configuration and trigger the one-time
	// freeze-and-invest transition.
	Owner crypto.Address
	// Venue is the yield venue the aggregate principal is invested into.
	Venue crypto.Address
	// ShareToken is the venue share token minted against invested principal.
	ShareToken crypto.Address
	// RewardToken is the token the venue emits as ongoing rewards.
	RewardToken crypto.Address
	// IncentiveToken is the fixed-supply token distributed from the one-time
	// incentive pool.
	IncentiveToken crypto.Address
	// DelegationProgram is the external program earned incentives may be
	// redirected to. It is also the only caller allowed to enable claims.
	DelegationProgram crypto.Address
	// DepositDenom is the single native denom accepted for deposits.
	DepositDenom string
	// InitTimestamp is the unix second the enrollment window opens at.
	InitTimestamp uint64
	// DepositWindow is the number of seconds deposits are accepted for.
	DepositWindow uint64
	// WithdrawalWindow is the number of seconds withdrawals are allowed for.
	WithdrawalWindow uint64
	// MinLockDuration and MaxLockDuration bound the lock duration, expressed
	// in duration units.
	MinLockDuration uint64
	MaxLockDuration uint64
	// SecondsPerDurationUnit converts a duration into seconds.
	SecondsPerDurationUnit uint64
	// WeightMultiplier and WeightDivider parametrise the linear weight curve.
	WeightMultiplier uint64
	WeightDivider    uint64
	// TotalIncentivePool is the fixed incentive amount split pro-rata by
	// weight. Set at creation, never changed.
	TotalIncentivePool *big.Int
}

// Validate checks the structural config invariants. The init-timestamp
// freshness check only applies at initialisation, so callers pass now=0 to
// skip it when revalidating after an update.
func (c *Config) Validate(now uint64) error {
	if c == nil {
		return errConfigMissing
	}
	if now > 0 && c.InitTimestamp < now {
		return errConfigTimestamp
	}
	if c.DepositWindow == 0 || c.WithdrawalWindow == 0 || c.DepositWindow <= c.WithdrawalWindow {
		return errConfigWindows
	}
	if c.MinLockDuration == 0 || c.MaxLockDuration <= c.MinLockDuration {
		return errConfigDurations
	}
	if c.SecondsPerDurationUnit == 0 {
		return errConfigDurations
	}
	if c.WeightDivider == 0 {
		return errConfigWeights
	}
	if c.TotalIncentivePool == nil || c.TotalIncentivePool.Sign() < 0 {
		return errConfigIncentive
	}
	return nil
}

// Copy returns a deep copy so callers cannot mutate shared pointers.
func (c *Config) Copy() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	if c.TotalIncentivePool != nil {
		clone.TotalIncentivePool = new(big.Int).Set(c.TotalIncentivePool)
	}
	return &clone
}

// ConfigUpdate carries the owner-adjustable configuration fields. Nil fields
// are left untouched.
type ConfigUpdate struct {
	Owner             *crypto.Address
	Venue             *crypto.Address
	ShareToken        *crypto.Address
	RewardToken       *crypto.Address
	IncentiveToken    *crypto.Address
	DelegationProgram *crypto.Address
	InitTimestamp     *uint64
	DepositWindow     *uint64
	WithdrawalWindow  *uint64
}

// GlobalState is the single mutable ledger record shared by every operation.
type GlobalState struct {
	// FinalPrincipalLocked and FinalSharesReceived are zero until the
	// freeze-and-invest transition, then frozen forever.
	FinalPrincipalLocked *big.Int
	FinalSharesReceived  *big.Int
	// LivePrincipalLocked tracks deposited principal before the freeze and is
	// zeroed by it. LiveSharesHeld tracks venue shares still held by the
	// contract and shrinks as positions dissolve.
	LivePrincipalLocked *big.Int
	LiveSharesHeld      *big.Int
	// TotalWeightedDeposits is the weight sum over all positions, stable once
	// the deposit and withdrawal windows close.
	TotalWeightedDeposits *big.Int
	// TotalIncentiveDelegated accumulates incentives redirected to the
	// delegation program.
	TotalIncentiveDelegated *big.Int
	// ClaimsEnabled flips false->true exactly once, set by the delegation
	// program.
	ClaimsEnabled bool
	// RewardIndex is the cumulative reward-per-share counter, ray-scaled,
	// monotonically non-decreasing.
	RewardIndex *big.Int
}

func newGlobalState() *GlobalState {
	return &GlobalState{
		FinalPrincipalLocked:    big.NewInt(0),
		FinalSharesReceived:     big.NewInt(0),
		LivePrincipalLocked:     big.NewInt(0),
		LiveSharesHeld:          big.NewInt(0),
		TotalWeightedDeposits:   big.NewInt(0),
		TotalIncentiveDelegated: big.NewInt(0),
		RewardIndex:             big.NewInt(0),
	}
}

func (s *GlobalState) normalize() *GlobalState {
	if s == nil {
		return newGlobalState()
	}
	if s.FinalPrincipalLocked == nil {
		s.FinalPrincipalLocked = big.NewInt(0)
	}
	if s.FinalSharesReceived == nil {
		s.FinalSharesReceived = big.NewInt(0)
	}
	if s.LivePrincipalLocked == nil {
		s.LivePrincipalLocked = big.NewInt(0)
	}
	if s.LiveSharesHeld == nil {
		s.LiveSharesHeld = big.NewInt(0)
	}
	if s.TotalWeightedDeposits == nil {
		s.TotalWeightedDeposits = big.NewInt(0)
	}
	if s.TotalIncentiveDelegated == nil {
		s.TotalIncentiveDelegated = big.NewInt(0)
	}
	if s.RewardIndex == nil {
		s.RewardIndex = big.NewInt(0)
	}
	return s
}

// LockupPosition is one (depositor, duration) record of locked principal.
type LockupPosition struct {
	Depositor       crypto.Address
	Duration        uint64
	PrincipalLocked *big.Int
	// UnlockTimestamp is fixed at the first deposit for this key.
	UnlockTimestamp uint64
	// WithdrawalFlag records that a withdrawal happened after the deposit
	// window elapsed. Informational only.
	WithdrawalFlag bool
	// IncentiveReward is the position's slice of the incentive pool, computed
	// lazily once per user and cached. The forceful-unlock clawback pulls
	// back exactly this amount.
	IncentiveReward *big.Int
}

func (l *LockupPosition) normalize() *LockupPosition {
	if l == nil {
		return nil
	}
	if l.PrincipalLocked == nil {
		l.PrincipalLocked = big.NewInt(0)
	}
	if l.IncentiveReward == nil {
		l.IncentiveReward = big.NewInt(0)
	}
	return l
}

// UserInfo aggregates a depositor's positions and reward bookkeeping. It is
// created lazily on first deposit and persists for the contract lifetime.
type UserInfo struct {
	Address crypto.Address
	// TotalPrincipalLocked sums the user's positions during enrollment. It is
	// deliberately not decremented when positions dissolve post-freeze: the
	// frozen share calculation depends on the enrollment-time total.
	TotalPrincipalLocked *big.Int
	// PositionDurations is the set of durations with an open position.
	PositionDurations []uint64
	// TotalShareOfFrozenPrincipal is the user's slice of the venue shares
	// minted at the freeze. Snapshot once; ShareComputed guards against
	// recomputation even if global totals were to drift.
	TotalShareOfFrozenPrincipal *big.Int
	ShareComputed               bool
	// TotalIncentiveEarned is fixed lazily alongside the share snapshot.
	TotalIncentiveEarned *big.Int
	IncentivesComputed   bool
	// IncentiveDelegated counts incentives redirected to the delegation
	// program; IncentiveClaimed flips once when the remainder is paid out.
	IncentiveDelegated *big.Int
	IncentiveClaimed   bool
	// RewardIndexSnapshot is the ray-scaled index at the user's last claim.
	RewardIndexSnapshot *big.Int
	TotalRewardClaimed  *big.Int
}

func newUserInfo(addr crypto.Address) *UserInfo {
	return &UserInfo{
		Address:                     addr,
		TotalPrincipalLocked:        big.NewInt(0),
		TotalShareOfFrozenPrincipal: big.NewInt(0),
		TotalIncentiveEarned:        big.NewInt(0),
		IncentiveDelegated:          big.NewInt(0),
		RewardIndexSnapshot:         big.NewInt(0),
		TotalRewardClaimed:          big.NewInt(0),
	}
}

func (u *UserInfo) normalize() *UserInfo {
	if u == nil {
		return nil
	}
	if u.TotalPrincipalLocked == nil {
		u.TotalPrincipalLocked = big.NewInt(0)
	}
	if u.TotalShareOfFrozenPrincipal == nil {
		u.TotalShareOfFrozenPrincipal = big.NewInt(0)
	}
	if u.TotalIncentiveEarned == nil {
		u.TotalIncentiveEarned = big.NewInt(0)
	}
	if u.IncentiveDelegated == nil {
		u.IncentiveDelegated = big.NewInt(0)
	}
	if u.RewardIndexSnapshot == nil {
		u.RewardIndexSnapshot = big.NewInt(0)
	}
	if u.TotalRewardClaimed == nil {
		u.TotalRewardClaimed = big.NewInt(0)
	}
	return u
}

func (u *UserInfo) hasDuration(duration uint64) bool {
	for _, d := range u.PositionDurations {
		if d == duration {
			return true
		}
	}
	return false
}

func (u *UserInfo) addDuration(duration uint64) {
	if !u.hasDuration(duration) {
		u.PositionDurations = append(u.PositionDurations, duration)
	}
}

func (u *UserInfo) removeDuration(duration uint64) {
	for i, d := range u.PositionDurations {
		if d == duration {
			u.PositionDurations = append(u.PositionDurations[:i], u.PositionDurations[i+1:]...)
			return
		}
	}
}
