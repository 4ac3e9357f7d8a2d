package lockdrop

import "math/big"

// depositOpen reports whether deposits are accepted at the given time. Both
// bounds are inclusive.
func depositOpen(now uint64, cfg *Config) bool {
	return now >= cfg.InitTimestamp && now <= cfg.InitTimestamp+cfg.DepositWindow
}

// withdrawOpen reports whether withdrawals are accepted at the given time.
func withdrawOpen(now uint64, cfg *Config) bool {
	return now >= cfg.InitTimestamp && now <= cfg.InitTimestamp+cfg.WithdrawalWindow
}

// windowsClosed reports whether both enrollment windows have fully elapsed.
func windowsClosed(now uint64, cfg *Config) bool {
	return now >= cfg.InitTimestamp &&
		now > cfg.InitTimestamp+cfg.DepositWindow &&
		now > cfg.InitTimestamp+cfg.WithdrawalWindow
}

// unlockTimestamp anchors a position's unlock at the deposit-window close
// plus the lock duration.
func unlockTimestamp(cfg *Config, duration uint64) uint64 {
	return cfg.InitTimestamp + cfg.DepositWindow + duration*cfg.SecondsPerDurationUnit
}

// allowedWithdrawalPercent returns the fraction of a position's principal
// that may currently be withdrawn. Three phases anchored at the
// deposit-window close: 100% before it, 50% through the first half of the
// post-deposit withdrawal window, then linear decay from 50% to 0%.
//
// Note: config validation requires withdrawal_window < deposit_window, which
// makes withdrawOpen reject any time past init+withdrawal_window before the
// curve ever leaves its 100% phase. The 50% and decay phases are kept as
// the protocol defines them rather than reconciled; see DESIGN.md.
func allowedWithdrawalPercent(now uint64, cfg *Config) *big.Rat {
	cutoffInit := cfg.InitTimestamp + cfg.DepositWindow

	// Deposit window still open: full withdrawals.
	if now < cutoffInit {
		return big.NewRat(1, 1)
	}

	cutoffSecond := cutoffInit + cfg.WithdrawalWindow/2
	if now <= cutoffSecond {
		return big.NewRat(1, 2)
	}

	cutoffFinal := cutoffInit + cfg.WithdrawalWindow
	if now < cutoffFinal {
		timeLeft := cutoffFinal - now
		return big.NewRat(int64(timeLeft), 2*int64(cutoffFinal-cutoffSecond))
	}
	return new(big.Rat)
}

// maxAllowedWithdrawal floors principal * percent.
func maxAllowedWithdrawal(principal *big.Int, percent *big.Rat) *big.Int {
	if principal == nil || principal.Sign() == 0 || percent == nil || percent.Sign() == 0 {
		return big.NewInt(0)
	}
	capped := new(big.Int).Mul(principal, percent.Num())
	return capped.Quo(capped, percent.Denom())
}
