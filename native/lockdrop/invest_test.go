package lockdrop

import (
	"errors"
	"math/big"
	"testing"
)

func TestInvestFreezesTotals(t *testing.T) {
	engine, venue := newTestEngine(t)
	engine.SetBlockTime(1050)
	mustDeposit(t, engine, aliceAddr, 4, 800_000)

	engine.SetBlockTime(2100)
	resp, err := engine.Invest(ownerAddr)
	if err != nil {
		t.Fatalf("invest: %v", err)
	}

	deposit, ok := resp.Instructions[0].(VenueDeposit)
	if !ok {
		t.Fatalf("expected VenueDeposit first, got %T", resp.Instructions[0])
	}
	if deposit.Amount.Cmp(big.NewInt(800_000)) != 0 {
		t.Fatalf("venue deposit = %s, want 800000", deposit.Amount)
	}
	if deposit.Denom != "ulock" || !deposit.Venue.Equal(venueAddr) {
		t.Fatalf("unexpected venue deposit %+v", deposit)
	}

	// The venue mints shares 1:1 before the resumption runs.
	venue.shares = big.NewInt(800_000)
	runCallbacks(t, engine, resp)

	state, err := engine.state.GetGlobalState()
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if state.FinalPrincipalLocked.Cmp(big.NewInt(800_000)) != 0 {
		t.Fatalf("final principal = %s, want 800000", state.FinalPrincipalLocked)
	}
	if state.FinalSharesReceived.Cmp(big.NewInt(800_000)) != 0 {
		t.Fatalf("final shares = %s, want 800000", state.FinalSharesReceived)
	}
	if state.LivePrincipalLocked.Sign() != 0 {
		t.Fatalf("live principal = %s, want 0", state.LivePrincipalLocked)
	}
	if state.LiveSharesHeld.Cmp(big.NewInt(800_000)) != 0 {
		t.Fatalf("live shares = %s, want 800000", state.LiveSharesHeld)
	}
}

func TestInvestReconcilesAgainstPriorShareBalance(t *testing.T) {
	engine, venue := newTestEngine(t)
	engine.SetBlockTime(1050)
	mustDeposit(t, engine, aliceAddr, 4, 500_000)

	// The contract already held shares before the freeze; only the newly
	// minted difference counts.
	venue.shares = big.NewInt(40_000)

	engine.SetBlockTime(2100)
	resp, err := engine.Invest(ownerAddr)
	if err != nil {
		t.Fatalf("invest: %v", err)
	}
	venue.shares = big.NewInt(540_000)
	runCallbacks(t, engine, resp)

	state, err := engine.state.GetGlobalState()
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if state.FinalSharesReceived.Cmp(big.NewInt(500_000)) != 0 {
		t.Fatalf("final shares = %s, want 500000", state.FinalSharesReceived)
	}
}

func TestInvestGuards(t *testing.T) {
	engine, venue := newTestEngine(t)
	engine.SetBlockTime(1050)
	mustDeposit(t, engine, aliceAddr, 4, 800_000)

	if _, err := engine.Invest(aliceAddr); !errors.Is(err, errNotOwner) {
		t.Fatalf("non-owner: expected errNotOwner, got %v", err)
	}
	if _, err := engine.Invest(ownerAddr); !errors.Is(err, errWindowsOpen) {
		t.Fatalf("windows open: expected errWindowsOpen, got %v", err)
	}

	engine.SetBlockTime(2100)
	resp, err := engine.Invest(ownerAddr)
	if err != nil {
		t.Fatalf("invest: %v", err)
	}
	venue.shares = big.NewInt(800_000)
	runCallbacks(t, engine, resp)

	// The freeze is one-shot: a second call changes nothing.
	if _, err := engine.Invest(ownerAddr); !errors.Is(err, errAlreadyInvested) {
		t.Fatalf("second invest: expected errAlreadyInvested, got %v", err)
	}
	state, err := engine.state.GetGlobalState()
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if state.FinalSharesReceived.Cmp(big.NewInt(800_000)) != 0 {
		t.Fatalf("final shares drifted to %s", state.FinalSharesReceived)
	}
}
