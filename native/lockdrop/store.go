package lockdrop

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"lockdropd/crypto"
	"lockdropd/storage"
)

// Store persists the ledger records as rlp-encoded values in a key-value
// database. Shadow structs keep the stored shape independent of the
// in-memory types.
type Store struct {
	db storage.Database
}

// NewStore binds a store to the provided database, typically a
// per-transaction overlay.
func NewStore(db storage.Database) *Store {
	return &Store{db: db}
}

type storedAddress [crypto.AddressLength]byte

func toStoredAddress(addr crypto.Address) storedAddress {
	var out storedAddress
	copy(out[:], addr.Bytes())
	return out
}

func (s storedAddress) address() crypto.Address {
	return crypto.NewAddress(crypto.LockPrefix, append([]byte(nil), s[:]...))
}

type storedConfig struct {
	Owner                  storedAddress
	Venue                  storedAddress
	ShareToken             storedAddress
	RewardToken            storedAddress
	IncentiveToken         storedAddress
	DelegationProgram      storedAddress
	DepositDenom           string
	InitTimestamp          uint64
	DepositWindow          uint64
	WithdrawalWindow       uint64
	MinLockDuration        uint64
	MaxLockDuration        uint64
	SecondsPerDurationUnit uint64
	WeightMultiplier       uint64
	WeightDivider          uint64
	TotalIncentivePool     *big.Int
}

type storedGlobalState struct {
	FinalPrincipalLocked    *big.Int
	FinalSharesReceived     *big.Int
	LivePrincipalLocked     *big.Int
	LiveSharesHeld          *big.Int
	TotalWeightedDeposits   *big.Int
	TotalIncentiveDelegated *big.Int
	ClaimsEnabled           bool
	RewardIndex             *big.Int
}

type storedLockup struct {
	Depositor       storedAddress
	Duration        uint64
	PrincipalLocked *big.Int
	UnlockTimestamp uint64
	WithdrawalFlag  bool
	IncentiveReward *big.Int
}

type storedUserInfo struct {
	Address                     storedAddress
	TotalPrincipalLocked        *big.Int
	PositionDurations           []uint64
	TotalShareOfFrozenPrincipal *big.Int
	ShareComputed               bool
	TotalIncentiveEarned        *big.Int
	IncentivesComputed          bool
	IncentiveDelegated          *big.Int
	IncentiveClaimed            bool
	RewardIndexSnapshot         *big.Int
	TotalRewardClaimed          *big.Int
}

func (s *Store) put(key []byte, value interface{}) error {
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	return s.db.Put(key, encoded)
}

func (s *Store) get(key []byte, out interface{}) (bool, error) {
	encoded, err := s.db.Get(key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := rlp.DecodeBytes(encoded, out); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) GetConfig() (*Config, error) {
	var stored storedConfig
	ok, err := s.get(configKey, &stored)
	if err != nil || !ok {
		return nil, err
	}
	return &Config{
		Owner:                  stored.Owner.address(),
		Venue:                  stored.Venue.address(),
		ShareToken:             stored.ShareToken.address(),
		RewardToken:            stored.RewardToken.address(),
		IncentiveToken:         stored.IncentiveToken.address(),
		DelegationProgram:      stored.DelegationProgram.address(),
		DepositDenom:           stored.DepositDenom,
		InitTimestamp:          stored.InitTimestamp,
		DepositWindow:          stored.DepositWindow,
		WithdrawalWindow:       stored.WithdrawalWindow,
		MinLockDuration:        stored.MinLockDuration,
		MaxLockDuration:        stored.MaxLockDuration,
		SecondsPerDurationUnit: stored.SecondsPerDurationUnit,
		WeightMultiplier:       stored.WeightMultiplier,
		WeightDivider:          stored.WeightDivider,
		TotalIncentivePool:     nonNil(stored.TotalIncentivePool),
	}, nil
}

func (s *Store) PutConfig(cfg *Config) error {
	if cfg == nil {
		return errConfigMissing
	}
	return s.put(configKey, &storedConfig{
		Owner:                  toStoredAddress(cfg.Owner),
		Venue:                  toStoredAddress(cfg.Venue),
		ShareToken:             toStoredAddress(cfg.ShareToken),
		RewardToken:            toStoredAddress(cfg.RewardToken),
		IncentiveToken:         toStoredAddress(cfg.IncentiveToken),
		DelegationProgram:      toStoredAddress(cfg.DelegationProgram),
		DepositDenom:           cfg.DepositDenom,
		InitTimestamp:          cfg.InitTimestamp,
		DepositWindow:          cfg.DepositWindow,
		WithdrawalWindow:       cfg.WithdrawalWindow,
		MinLockDuration:        cfg.MinLockDuration,
		MaxLockDuration:        cfg.MaxLockDuration,
		SecondsPerDurationUnit: cfg.SecondsPerDurationUnit,
		WeightMultiplier:       cfg.WeightMultiplier,
		WeightDivider:          cfg.WeightDivider,
		TotalIncentivePool:     nonNil(cfg.TotalIncentivePool),
	})
}

func (s *Store) GetGlobalState() (*GlobalState, error) {
	var stored storedGlobalState
	ok, err := s.get(stateKey, &stored)
	if err != nil {
		return nil, err
	}
	if !ok {
		return newGlobalState(), nil
	}
	return (&GlobalState{
		FinalPrincipalLocked:    stored.FinalPrincipalLocked,
		FinalSharesReceived:     stored.FinalSharesReceived,
		LivePrincipalLocked:     stored.LivePrincipalLocked,
		LiveSharesHeld:          stored.LiveSharesHeld,
		TotalWeightedDeposits:   stored.TotalWeightedDeposits,
		TotalIncentiveDelegated: stored.TotalIncentiveDelegated,
		ClaimsEnabled:           stored.ClaimsEnabled,
		RewardIndex:             stored.RewardIndex,
	}).normalize(), nil
}

func (s *Store) PutGlobalState(state *GlobalState) error {
	if state == nil {
		return errNilState
	}
	state = state.normalize()
	return s.put(stateKey, &storedGlobalState{
		FinalPrincipalLocked:    state.FinalPrincipalLocked,
		FinalSharesReceived:     state.FinalSharesReceived,
		LivePrincipalLocked:     state.LivePrincipalLocked,
		LiveSharesHeld:          state.LiveSharesHeld,
		TotalWeightedDeposits:   state.TotalWeightedDeposits,
		TotalIncentiveDelegated: state.TotalIncentiveDelegated,
		ClaimsEnabled:           state.ClaimsEnabled,
		RewardIndex:             state.RewardIndex,
	})
}

func (s *Store) GetLockup(addr crypto.Address, duration uint64) (*LockupPosition, error) {
	var stored storedLockup
	ok, err := s.get(lockupKey(addr, duration), &stored)
	if err != nil || !ok {
		return nil, err
	}
	return (&LockupPosition{
		Depositor:       stored.Depositor.address(),
		Duration:        stored.Duration,
		PrincipalLocked: stored.PrincipalLocked,
		UnlockTimestamp: stored.UnlockTimestamp,
		WithdrawalFlag:  stored.WithdrawalFlag,
		IncentiveReward: stored.IncentiveReward,
	}).normalize(), nil
}

func (s *Store) PutLockup(lockup *LockupPosition) error {
	if lockup == nil {
		return errPositionMissing
	}
	lockup = lockup.normalize()
	return s.put(lockupKey(lockup.Depositor, lockup.Duration), &storedLockup{
		Depositor:       toStoredAddress(lockup.Depositor),
		Duration:        lockup.Duration,
		PrincipalLocked: lockup.PrincipalLocked,
		UnlockTimestamp: lockup.UnlockTimestamp,
		WithdrawalFlag:  lockup.WithdrawalFlag,
		IncentiveReward: lockup.IncentiveReward,
	})
}

func (s *Store) DeleteLockup(addr crypto.Address, duration uint64) error {
	return s.db.Delete(lockupKey(addr, duration))
}

func (s *Store) GetUserInfo(addr crypto.Address) (*UserInfo, error) {
	var stored storedUserInfo
	ok, err := s.get(userKey(addr), &stored)
	if err != nil || !ok {
		return nil, err
	}
	return (&UserInfo{
		Address:                     stored.Address.address(),
		TotalPrincipalLocked:        stored.TotalPrincipalLocked,
		PositionDurations:           stored.PositionDurations,
		TotalShareOfFrozenPrincipal: stored.TotalShareOfFrozenPrincipal,
		ShareComputed:               stored.ShareComputed,
		TotalIncentiveEarned:        stored.TotalIncentiveEarned,
		IncentivesComputed:          stored.IncentivesComputed,
		IncentiveDelegated:          stored.IncentiveDelegated,
		IncentiveClaimed:            stored.IncentiveClaimed,
		RewardIndexSnapshot:         stored.RewardIndexSnapshot,
		TotalRewardClaimed:          stored.TotalRewardClaimed,
	}).normalize(), nil
}

func (s *Store) PutUserInfo(user *UserInfo) error {
	if user == nil {
		return errNilState
	}
	user = user.normalize()
	return s.put(userKey(user.Address), &storedUserInfo{
		Address:                     toStoredAddress(user.Address),
		TotalPrincipalLocked:        user.TotalPrincipalLocked,
		PositionDurations:           user.PositionDurations,
		TotalShareOfFrozenPrincipal: user.TotalShareOfFrozenPrincipal,
		ShareComputed:               user.ShareComputed,
		TotalIncentiveEarned:        user.TotalIncentiveEarned,
		IncentivesComputed:          user.IncentivesComputed,
		IncentiveDelegated:          user.IncentiveDelegated,
		IncentiveClaimed:            user.IncentiveClaimed,
		RewardIndexSnapshot:         user.RewardIndexSnapshot,
		TotalRewardClaimed:          user.TotalRewardClaimed,
	})
}

func nonNil(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return v
}
