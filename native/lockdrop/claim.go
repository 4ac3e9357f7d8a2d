package lockdrop

import (
	"fmt"
	"math/big"

	"lockdropd/crypto"
)

// fixEntitlements snapshots the user's two derived values the first time any
// claim or delegation path reaches them: the pro-rata share of the frozen
// principal and the weight-allocated slice of the incentive pool. Both are
// cached behind explicit flags and never recomputed, so the global totals
// they derive from must already be stable when this runs. The share stays
// unfixed until the freeze has minted shares: delegation is reachable
// between window closure and the invest transaction, and caching a zero
// share there would silence the user's venue rewards for good. Per-position
// incentives derive only from the enrollment weights and are safe to fix as
// soon as the windows close.
func (e *Engine) fixEntitlements(cfg *Config, state *GlobalState, user *UserInfo) error {
	if !user.ShareComputed && state.FinalSharesReceived.Sign() > 0 {
		user.TotalShareOfFrozenPrincipal = proRataShare(user.TotalPrincipalLocked, state.FinalPrincipalLocked, state.FinalSharesReceived)
		user.ShareComputed = true
	}
	if !user.IncentivesComputed {
		total := big.NewInt(0)
		for _, duration := range user.PositionDurations {
			lockup, err := e.state.GetLockup(user.Address, duration)
			if err != nil {
				return err
			}
			if lockup == nil {
				continue
			}
			weight := positionWeight(lockup.PrincipalLocked, lockup.Duration, cfg)
			lockup.IncentiveReward = incentiveForWeight(weight, state.TotalWeightedDeposits, cfg.TotalIncentivePool)
			total.Add(total, lockup.IncentiveReward)
			if err := e.state.PutLockup(lockup); err != nil {
				return err
			}
		}
		user.TotalIncentiveEarned = total
		user.IncentivesComputed = true
	}
	return nil
}

// Delegate redirects part of the caller's earned incentive to the external
// delegation program. Allowed only between window closure and the moment
// claims are enabled.
func (e *Engine) Delegate(caller crypto.Address, amount *big.Int) (*Response, error) {
	cfg, state, err := e.loadLedger()
	if err != nil {
		return nil, err
	}
	if !windowsClosed(e.blockTime, cfg) {
		return nil, errWindowsOpen
	}
	if state.ClaimsEnabled {
		return nil, errDelegationClosed
	}
	if cfg.DelegationProgram.IsZero() {
		return nil, errDelegationUnset
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, errInvalidAmount
	}

	user, err := e.ensureUser(caller)
	if err != nil {
		return nil, err
	}
	if len(user.PositionDurations) == 0 {
		return nil, errNoPositions
	}

	if err := e.fixEntitlements(cfg, state, user); err != nil {
		return nil, err
	}

	available := new(big.Int).Sub(user.TotalIncentiveEarned, user.IncentiveDelegated)
	if amount.Cmp(available) > 0 {
		return nil, fmt.Errorf("%w: requested %s, delegatable %s", errDelegationExceeds, amount, available)
	}

	user.IncentiveDelegated = new(big.Int).Add(user.IncentiveDelegated, amount)
	state.TotalIncentiveDelegated = new(big.Int).Add(state.TotalIncentiveDelegated, amount)

	if err := e.state.PutGlobalState(state); err != nil {
		return nil, err
	}
	if err := e.state.PutUserInfo(user); err != nil {
		return nil, err
	}

	resp := &Response{}
	resp.push(DelegationNotice{
		Program: cfg.DelegationProgram,
		User:    caller,
		Amount:  new(big.Int).Set(amount),
	})
	resp.emit(NewDelegatedEvent(caller, amount))
	return resp, nil
}

// ClaimRewardsAndUnlock runs the full claim flow and, when unlockDuration is
// nonzero, schedules the dissolution of that position as an additional step
// of the same transaction. The claim itself queries the venue for pending
// rewards, requests them when nonzero, and always resumes through
// ResumeClaim so the index bookkeeping happens after the payout settles.
func (e *Engine) ClaimRewardsAndUnlock(caller crypto.Address, unlockDuration uint64, forceful bool) (*Response, error) {
	cfg, state, err := e.loadLedger()
	if err != nil {
		return nil, err
	}
	if e.venue == nil {
		return nil, errNilVenue
	}

	if unlockDuration > 0 {
		lockup, err := e.state.GetLockup(caller, unlockDuration)
		if err != nil {
			return nil, err
		}
		if lockup == nil || lockup.PrincipalLocked.Sign() == 0 {
			return nil, errPositionMissing
		}
		if !forceful && lockup.UnlockTimestamp > e.blockTime {
			return nil, fmt.Errorf("%w: %d seconds to unlock", errStillLocked, lockup.UnlockTimestamp-e.blockTime)
		}
	}

	user, err := e.ensureUser(caller)
	if err != nil {
		return nil, err
	}
	if user.TotalPrincipalLocked.Sign() == 0 {
		return nil, errNothingLocked
	}
	if !state.ClaimsEnabled {
		return nil, errClaimsNotEnabled
	}

	if err := e.fixEntitlements(cfg, state, user); err != nil {
		return nil, err
	}
	if err := e.state.PutUserInfo(user); err != nil {
		return nil, err
	}

	unclaimed, err := e.venue.PendingRewards(e.contractAddr)
	if err != nil {
		return nil, err
	}
	rewardBalance, err := e.venue.RewardBalance(e.contractAddr)
	if err != nil {
		return nil, err
	}

	resp := &Response{}
	if unclaimed != nil && unclaimed.Sign() > 0 {
		resp.push(VenueClaimRewards{Venue: cfg.Venue})
	}
	resp.push(Callback{Contract: e.contractAddr, Msg: ResumeClaim{User: caller, PrevRewardBalance: rewardBalance}})
	if unlockDuration > 0 {
		resp.push(Callback{Contract: e.contractAddr, Msg: DissolveStep{User: caller, Duration: unlockDuration, Forceful: forceful}})
	}
	return resp, nil
}

// resumeClaim runs after the venue reward payout settled. Newly accrued
// rewards grow the global index; the caller is then paid their index delta,
// and the one-time incentive payout happens on their first claim.
func (e *Engine) resumeClaim(msg ResumeClaim) (*Response, error) {
	cfg, state, err := e.loadLedger()
	if err != nil {
		return nil, err
	}
	if e.venue == nil {
		return nil, errNilVenue
	}
	user, err := e.ensureUser(msg.User)
	if err != nil {
		return nil, err
	}

	curBalance, err := e.venue.RewardBalance(e.contractAddr)
	if err != nil {
		return nil, err
	}
	accrued, err := checkedSub(curBalance, msg.PrevRewardBalance)
	if err != nil {
		return nil, err
	}

	resp := &Response{}

	if accrued.Sign() > 0 {
		state.RewardIndex = new(big.Int).Add(state.RewardIndex, rewardIndexIncrement(accrued, state.LiveSharesHeld))
	}

	pending := pendingReward(user.TotalShareOfFrozenPrincipal, state.RewardIndex, user.RewardIndexSnapshot)
	user.RewardIndexSnapshot = new(big.Int).Set(state.RewardIndex)
	if pending.Sign() > 0 {
		user.TotalRewardClaimed = new(big.Int).Add(user.TotalRewardClaimed, pending)
		resp.push(TokenTransfer{Token: cfg.RewardToken, Recipient: msg.User, Amount: pending})
		resp.emit(NewRewardsClaimedEvent(msg.User, pending))
	}

	if !user.IncentiveClaimed {
		payout, err := checkedSub(user.TotalIncentiveEarned, user.IncentiveDelegated)
		if err != nil {
			return nil, err
		}
		user.IncentiveClaimed = true
		if payout.Sign() > 0 {
			resp.push(TokenTransfer{Token: cfg.IncentiveToken, Recipient: msg.User, Amount: payout})
			resp.emit(NewIncentivePaidEvent(msg.User, payout))
		}
	}

	if err := e.state.PutGlobalState(state); err != nil {
		return nil, err
	}
	if err := e.state.PutUserInfo(user); err != nil {
		return nil, err
	}
	return resp, nil
}
