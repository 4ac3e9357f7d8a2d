package lockdrop

import (
	"math/big"
	"testing"

	"lockdropd/storage"
)

func TestStoreConfigRoundTrip(t *testing.T) {
	store := NewStore(storage.NewMemDB())

	got, err := store.GetConfig()
	if err != nil {
		t.Fatalf("get absent config: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil config before initialisation")
	}

	cfg := testConfig()
	if err := store.PutConfig(cfg); err != nil {
		t.Fatalf("put config: %v", err)
	}
	got, err = store.GetConfig()
	if err != nil {
		t.Fatalf("get config: %v", err)
	}
	if !got.Owner.Equal(cfg.Owner) || !got.Venue.Equal(cfg.Venue) {
		t.Fatal("addresses did not survive the round trip")
	}
	if got.DepositDenom != cfg.DepositDenom || got.InitTimestamp != cfg.InitTimestamp {
		t.Fatal("scalar fields did not survive the round trip")
	}
	if got.TotalIncentivePool.Cmp(cfg.TotalIncentivePool) != 0 {
		t.Fatalf("pool = %s, want %s", got.TotalIncentivePool, cfg.TotalIncentivePool)
	}
}

func TestStoreGlobalStateDefaultsWhenAbsent(t *testing.T) {
	store := NewStore(storage.NewMemDB())
	state, err := store.GetGlobalState()
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if state == nil || state.LivePrincipalLocked == nil || state.LivePrincipalLocked.Sign() != 0 {
		t.Fatalf("expected zeroed state, got %+v", state)
	}

	state.LivePrincipalLocked = big.NewInt(123)
	state.ClaimsEnabled = true
	state.RewardIndex = big.NewInt(456)
	if err := store.PutGlobalState(state); err != nil {
		t.Fatalf("put state: %v", err)
	}
	got, err := store.GetGlobalState()
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if got.LivePrincipalLocked.Cmp(big.NewInt(123)) != 0 || !got.ClaimsEnabled || got.RewardIndex.Cmp(big.NewInt(456)) != 0 {
		t.Fatalf("state did not survive the round trip: %+v", got)
	}
}

func TestStoreLockupRoundTripAndDelete(t *testing.T) {
	store := NewStore(storage.NewMemDB())

	got, err := store.GetLockup(aliceAddr, 4)
	if err != nil {
		t.Fatalf("get absent lockup: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil for absent lockup")
	}

	lockup := &LockupPosition{
		Depositor:       aliceAddr,
		Duration:        4,
		PrincipalLocked: big.NewInt(1_000_000),
		UnlockTimestamp: 2400,
		WithdrawalFlag:  true,
		IncentiveReward: big.NewInt(42),
	}
	if err := store.PutLockup(lockup); err != nil {
		t.Fatalf("put lockup: %v", err)
	}

	got, err = store.GetLockup(aliceAddr, 4)
	if err != nil {
		t.Fatalf("get lockup: %v", err)
	}
	if !got.Depositor.Equal(aliceAddr) || got.Duration != 4 || !got.WithdrawalFlag {
		t.Fatalf("lockup did not survive the round trip: %+v", got)
	}
	if got.PrincipalLocked.Cmp(big.NewInt(1_000_000)) != 0 || got.IncentiveReward.Cmp(big.NewInt(42)) != 0 {
		t.Fatalf("amounts did not survive: %+v", got)
	}

	// Keys separate by duration.
	other, err := store.GetLockup(aliceAddr, 5)
	if err != nil {
		t.Fatalf("get other duration: %v", err)
	}
	if other != nil {
		t.Fatal("duration 5 should be empty")
	}

	if err := store.DeleteLockup(aliceAddr, 4); err != nil {
		t.Fatalf("delete lockup: %v", err)
	}
	got, err = store.GetLockup(aliceAddr, 4)
	if err != nil {
		t.Fatalf("get deleted lockup: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil after delete")
	}
}

func TestStoreUserInfoRoundTrip(t *testing.T) {
	store := NewStore(storage.NewMemDB())

	got, err := store.GetUserInfo(aliceAddr)
	if err != nil {
		t.Fatalf("get absent user: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil for absent user")
	}

	user := newUserInfo(aliceAddr)
	user.TotalPrincipalLocked = big.NewInt(500)
	user.PositionDurations = []uint64{2, 4}
	user.ShareComputed = true
	user.TotalShareOfFrozenPrincipal = big.NewInt(400)
	user.IncentivesComputed = true
	user.TotalIncentiveEarned = big.NewInt(9_999)
	user.RewardIndexSnapshot = big.NewInt(777)
	if err := store.PutUserInfo(user); err != nil {
		t.Fatalf("put user: %v", err)
	}

	got, err = store.GetUserInfo(aliceAddr)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if !got.Address.Equal(aliceAddr) || !got.ShareComputed || !got.IncentivesComputed {
		t.Fatalf("flags did not survive: %+v", got)
	}
	if len(got.PositionDurations) != 2 || got.PositionDurations[0] != 2 || got.PositionDurations[1] != 4 {
		t.Fatalf("durations = %v, want [2 4]", got.PositionDurations)
	}
	if got.TotalIncentiveEarned.Cmp(big.NewInt(9_999)) != 0 || got.RewardIndexSnapshot.Cmp(big.NewInt(777)) != 0 {
		t.Fatalf("amounts did not survive: %+v", got)
	}
}
