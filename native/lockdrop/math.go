package lockdrop

import "math/big"

// ray scales the cumulative reward index, matching 1e18 fixed-point
// accounting. All divisions floor so that pro-rata sums never exceed the
// pools they are carved from.
var ray = big.NewInt(1_000_000_000_000_000_000)

// positionWeight returns amount * (1 + (duration-1)*multiplier/divider),
// evaluated as a single floored integer expression:
// amount * (divider + (duration-1)*multiplier) / divider.
// Weight equals amount at the minimum unit duration.
func positionWeight(amount *big.Int, duration uint64, cfg *Config) *big.Int {
	if amount == nil || amount.Sign() == 0 {
		return big.NewInt(0)
	}
	scaled := new(big.Int).SetUint64(duration - 1)
	scaled.Mul(scaled, new(big.Int).SetUint64(cfg.WeightMultiplier))
	scaled.Add(scaled, new(big.Int).SetUint64(cfg.WeightDivider))
	weight := new(big.Int).Mul(amount, scaled)
	return weight.Quo(weight, new(big.Int).SetUint64(cfg.WeightDivider))
}

// incentiveForWeight splits the fixed incentive pool pro-rata by weight,
// rounding down. A zero total weight yields zero.
func incentiveForWeight(weight, totalWeight, pool *big.Int) *big.Int {
	if weight == nil || totalWeight == nil || pool == nil || totalWeight.Sign() == 0 {
		return big.NewInt(0)
	}
	share := new(big.Int).Mul(pool, weight)
	return share.Quo(share, totalWeight)
}

// proRataShare returns principal's slice of the shares minted at the freeze:
// finalShares * principal / finalPrincipal, floored. Zero when nothing was
// frozen.
func proRataShare(principal, finalPrincipal, finalShares *big.Int) *big.Int {
	if principal == nil || finalPrincipal == nil || finalShares == nil || finalPrincipal.Sign() == 0 {
		return big.NewInt(0)
	}
	share := new(big.Int).Mul(finalShares, principal)
	return share.Quo(share, finalPrincipal)
}

// rewardIndexIncrement returns the ray-scaled index growth for newly accrued
// rewards spread over the shares still held.
func rewardIndexIncrement(accrued, sharesHeld *big.Int) *big.Int {
	if accrued == nil || sharesHeld == nil || sharesHeld.Sign() == 0 {
		return big.NewInt(0)
	}
	inc := new(big.Int).Mul(accrued, ray)
	return inc.Quo(inc, sharesHeld)
}

// pendingReward resolves the user's payout for the index delta since their
// last snapshot.
func pendingReward(share, index, snapshot *big.Int) *big.Int {
	if share == nil || share.Sign() == 0 || index == nil || snapshot == nil {
		return big.NewInt(0)
	}
	delta := new(big.Int).Sub(index, snapshot)
	if delta.Sign() <= 0 {
		return big.NewInt(0)
	}
	pending := new(big.Int).Mul(share, delta)
	return pending.Quo(pending, ray)
}

// checkedSub subtracts delta from total, failing instead of wrapping when the
// result would go negative.
func checkedSub(total, delta *big.Int) (*big.Int, error) {
	if total == nil {
		total = big.NewInt(0)
	}
	if delta == nil {
		delta = big.NewInt(0)
	}
	if total.Cmp(delta) < 0 {
		return nil, errAmountUnderflow
	}
	return new(big.Int).Sub(total, delta), nil
}
