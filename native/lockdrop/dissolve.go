package lockdrop

import "math/big"

// dissolvePosition releases one lockup after the claim flow that requested
// it: the position's pro-rata slice of the frozen shares leaves the
// contract, the position record is deleted, and, when the unlock was
// forceful, the incentive originally credited to that position is pulled
// back from the user before the shares go out.
func (e *Engine) dissolvePosition(msg DissolveStep) (*Response, error) {
	cfg, state, err := e.loadLedger()
	if err != nil {
		return nil, err
	}

	lockup, err := e.state.GetLockup(msg.User, msg.Duration)
	if err != nil {
		return nil, err
	}
	if lockup == nil || lockup.PrincipalLocked.Sign() == 0 {
		return nil, errPositionMissing
	}

	user, err := e.ensureUser(msg.User)
	if err != nil {
		return nil, err
	}

	sharesOwed := proRataShare(lockup.PrincipalLocked, state.FinalPrincipalLocked, state.FinalSharesReceived)

	state.LiveSharesHeld, err = checkedSub(state.LiveSharesHeld, sharesOwed)
	if err != nil {
		return nil, err
	}
	user.TotalShareOfFrozenPrincipal, err = checkedSub(user.TotalShareOfFrozenPrincipal, sharesOwed)
	if err != nil {
		return nil, err
	}

	clawback := new(big.Int).Set(lockup.IncentiveReward)

	lockup.PrincipalLocked = big.NewInt(0)
	user.removeDuration(msg.Duration)

	if err := e.state.PutGlobalState(state); err != nil {
		return nil, err
	}
	if err := e.state.PutUserInfo(user); err != nil {
		return nil, err
	}
	if err := e.state.DeleteLockup(msg.User, msg.Duration); err != nil {
		return nil, err
	}

	resp := &Response{}
	if msg.Forceful {
		resp.push(TokenTransferFrom{
			Token:     cfg.IncentiveToken,
			Owner:     msg.User,
			Recipient: e.contractAddr,
			Amount:    clawback,
		})
	}
	resp.push(TokenTransfer{Token: cfg.ShareToken, Recipient: msg.User, Amount: sharesOwed})
	resp.emit(NewDissolvedEvent(msg.User, msg.Duration, sharesOwed, msg.Forceful))
	return resp, nil
}
