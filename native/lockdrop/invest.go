package lockdrop

import (
	"math/big"

	"lockdropd/crypto"
)

// Invest starts the one-time freeze-and-invest transition: it snapshots the
// contract's current venue share balance, instructs the venue to take the
// whole live principal, and schedules the resumption that reconciles the
// minted shares. Owner-only, and only once both enrollment windows have
// elapsed.
func (e *Engine) Invest(caller crypto.Address) (*Response, error) {
	cfg, state, err := e.loadLedger()
	if err != nil {
		return nil, err
	}
	if e.venue == nil {
		return nil, errNilVenue
	}
	if !caller.Equal(cfg.Owner) {
		return nil, errNotOwner
	}
	if !windowsClosed(e.blockTime, cfg) {
		return nil, errWindowsOpen
	}
	if state.FinalSharesReceived.Sign() != 0 {
		return nil, errAlreadyInvested
	}

	prevShares, err := e.venue.ShareBalance(e.contractAddr)
	if err != nil {
		return nil, err
	}

	resp := &Response{}
	resp.push(VenueDeposit{
		Venue:  cfg.Venue,
		Denom:  cfg.DepositDenom,
		Amount: new(big.Int).Set(state.LivePrincipalLocked),
	})
	resp.push(Callback{Contract: e.contractAddr, Msg: ResumeInvest{PrevShareBalance: prevShares}})
	resp.emit(NewInvestedEvent(state.LivePrincipalLocked, e.blockTime))
	return resp, nil
}

// resumeInvest runs after the venue deposit settled. The difference between
// the current and the pre-call share balance is the amount minted; it fixes
// the frozen totals forever.
func (e *Engine) resumeInvest(msg ResumeInvest) (*Response, error) {
	_, state, err := e.loadLedger()
	if err != nil {
		return nil, err
	}
	if e.venue == nil {
		return nil, errNilVenue
	}

	curShares, err := e.venue.ShareBalance(e.contractAddr)
	if err != nil {
		return nil, err
	}
	minted, err := checkedSub(curShares, msg.PrevShareBalance)
	if err != nil {
		return nil, err
	}

	state.FinalPrincipalLocked = new(big.Int).Set(state.LivePrincipalLocked)
	state.FinalSharesReceived = new(big.Int).Set(minted)
	state.LivePrincipalLocked = big.NewInt(0)
	state.LiveSharesHeld = new(big.Int).Set(minted)

	if err := e.state.PutGlobalState(state); err != nil {
		return nil, err
	}

	resp := &Response{}
	resp.emit(NewInvestSettledEvent(minted))
	return resp, nil
}
