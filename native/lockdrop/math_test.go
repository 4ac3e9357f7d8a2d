package lockdrop

import (
	"errors"
	"math/big"
	"testing"
)

func TestPositionWeight(t *testing.T) {
	cfg := testConfig()
	cases := []struct {
		amount   int64
		duration uint64
		want     int64
	}{
		// Weight equals amount at the minimum duration.
		{1_000_000, 1, 1_000_000},
		// amount * (10 + 3*1) / 10.
		{1_000_000, 4, 1_300_000},
		{1_000_000, 10, 1_900_000},
		// Flooring: 7 * 13 / 10 = 9.
		{7, 4, 9},
		{0, 4, 0},
	}
	for _, tc := range cases {
		got := positionWeight(big.NewInt(tc.amount), tc.duration, cfg)
		if got.Cmp(big.NewInt(tc.want)) != 0 {
			t.Fatalf("weight(%d, %d) = %s, want %d", tc.amount, tc.duration, got, tc.want)
		}
	}
	if got := positionWeight(nil, 4, cfg); got.Sign() != 0 {
		t.Fatalf("weight(nil) = %s, want 0", got)
	}
}

func TestIncentiveForWeightNeverExceedsPool(t *testing.T) {
	pool := big.NewInt(10_000_000)
	total := big.NewInt(3)
	sum := big.NewInt(0)
	for i := int64(1); i <= 3; i++ {
		sum.Add(sum, incentiveForWeight(big.NewInt(1), total, pool))
	}
	if sum.Cmp(pool) > 0 {
		t.Fatalf("allocated %s exceeds pool %s", sum, pool)
	}
	// 10_000_000 / 3 floors; a dust remainder stays in the pool.
	if sum.Cmp(big.NewInt(9_999_999)) != 0 {
		t.Fatalf("allocated %s, want 9999999", sum)
	}
}

func TestIncentiveForWeightZeroTotal(t *testing.T) {
	if got := incentiveForWeight(big.NewInt(1), big.NewInt(0), big.NewInt(100)); got.Sign() != 0 {
		t.Fatalf("zero total weight should yield 0, got %s", got)
	}
}

func TestProRataShare(t *testing.T) {
	got := proRataShare(big.NewInt(250), big.NewInt(1000), big.NewInt(800))
	if got.Cmp(big.NewInt(200)) != 0 {
		t.Fatalf("share = %s, want 200", got)
	}
	if got := proRataShare(big.NewInt(250), big.NewInt(0), big.NewInt(800)); got.Sign() != 0 {
		t.Fatalf("zero frozen principal should yield 0, got %s", got)
	}
}

func TestRewardIndexRoundTrip(t *testing.T) {
	// 900 reward over 800_000 shares, then a holder of 200_000 shares claims.
	inc := rewardIndexIncrement(big.NewInt(900), big.NewInt(800_000))
	index := new(big.Int).Set(inc)
	got := pendingReward(big.NewInt(200_000), index, big.NewInt(0))
	// Floors twice: 900*ray/800000 floors, then *200000/ray floors again.
	if got.Cmp(big.NewInt(225)) != 0 {
		t.Fatalf("pending = %s, want 225", got)
	}
	// Claiming against an up-to-date snapshot pays nothing.
	if again := pendingReward(big.NewInt(200_000), index, index); again.Sign() != 0 {
		t.Fatalf("second claim = %s, want 0", again)
	}
}

func TestRewardIndexIncrementZeroShares(t *testing.T) {
	if got := rewardIndexIncrement(big.NewInt(900), big.NewInt(0)); got.Sign() != 0 {
		t.Fatalf("zero shares should yield 0, got %s", got)
	}
}

func TestPendingRewardFlooringFavoursPool(t *testing.T) {
	// Payouts across all holders never exceed what accrued.
	accrued := big.NewInt(1000)
	shares := []int64{333_333, 333_333, 333_334}
	index := rewardIndexIncrement(accrued, big.NewInt(1_000_000))
	paid := big.NewInt(0)
	for _, s := range shares {
		paid.Add(paid, pendingReward(big.NewInt(s), index, big.NewInt(0)))
	}
	if paid.Cmp(accrued) > 0 {
		t.Fatalf("paid %s exceeds accrued %s", paid, accrued)
	}
}

func TestCheckedSub(t *testing.T) {
	got, err := checkedSub(big.NewInt(10), big.NewInt(4))
	if err != nil {
		t.Fatalf("checkedSub: %v", err)
	}
	if got.Cmp(big.NewInt(6)) != 0 {
		t.Fatalf("result = %s, want 6", got)
	}
	if _, err := checkedSub(big.NewInt(3), big.NewInt(4)); !errors.Is(err, errAmountUnderflow) {
		t.Fatalf("expected errAmountUnderflow, got %v", err)
	}
}
