package lockdrop

import (
	"math/big"
	"sync"

	"lockdropd/core/types"
	"lockdropd/crypto"
	"lockdropd/storage"
)

// InstructionSink receives the instructions that cross the contract
// boundary: venue deposits and claims, token transfers and delegation
// notices. The environment guarantees the whole transaction, including
// effects already delivered, is rolled back if a later step fails, so a
// sink only ever observes instructions from transactions that either fully
// commit or are fully undone by its host.
type InstructionSink interface {
	Deliver(ins Instruction) error
}

// Processor applies one top-level message at a time to the ledger. Every
// message runs against a fresh storage overlay; the handler's emitted
// instructions execute in order, self-addressed callbacks re-enter the
// engine, and the overlay commits only when every step succeeded.
type Processor struct {
	mu       sync.Mutex
	db       storage.Database
	contract crypto.Address
	venue    VenueQuerier
	sink     InstructionSink
}

// NewProcessor wires a processor over the backing database.
func NewProcessor(db storage.Database, contract crypto.Address, venue VenueQuerier, sink InstructionSink) *Processor {
	return &Processor{db: db, contract: contract, venue: venue, sink: sink}
}

// Initialize persists the genesis configuration. Committed atomically like
// any other transaction.
func (p *Processor) Initialize(cfg *Config, now uint64) error {
	_, err := p.Execute(now, func(e *Engine) (*Response, error) {
		if err := Initialize(e.state, cfg, now); err != nil {
			return nil, err
		}
		return &Response{}, nil
	})
	return err
}

// Execute runs a single handler as one atomic transaction and returns the
// events it produced.
func (p *Processor) Execute(now uint64, handler func(*Engine) (*Response, error)) ([]*types.Event, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	overlay := storage.NewOverlay(p.db)
	engine := p.newEngine(overlay, now)

	resp, err := handler(engine)
	if err != nil {
		overlay.Discard()
		return nil, err
	}
	events := append([]*types.Event(nil), resp.Events...)
	if err := p.run(engine, resp.Instructions, &events); err != nil {
		overlay.Discard()
		return nil, err
	}
	if err := overlay.Commit(); err != nil {
		overlay.Discard()
		return nil, err
	}
	return events, nil
}

// View runs a read-only function against the committed ledger state.
func (p *Processor) View(now uint64, fn func(*Engine) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	overlay := storage.NewOverlay(p.db)
	defer overlay.Discard()
	return fn(p.newEngine(overlay, now))
}

func (p *Processor) newEngine(overlay *storage.Overlay, now uint64) *Engine {
	engine := NewEngine(p.contract)
	engine.SetState(NewStore(overlay))
	engine.SetVenue(p.venue)
	engine.SetBlockTime(now)
	return engine
}

// run executes instructions depth-first in emission order: a callback's own
// instructions complete before the next sibling starts, mirroring the
// message semantics the engine was written against.
func (p *Processor) run(engine *Engine, instructions []Instruction, events *[]*types.Event) error {
	for _, ins := range instructions {
		switch m := ins.(type) {
		case Callback:
			if !m.Contract.Equal(p.contract) {
				return errCallbackForged
			}
			sub, err := engine.HandleCallback(p.contract, m.Msg)
			if err != nil {
				return err
			}
			*events = append(*events, sub.Events...)
			if err := p.run(engine, sub.Instructions, events); err != nil {
				return err
			}
		default:
			if p.sink != nil {
				if err := p.sink.Deliver(ins); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Deposit applies a user deposit transaction.
func (p *Processor) Deposit(now uint64, depositor crypto.Address, duration uint64, funds []Coin) ([]*types.Event, error) {
	return p.Execute(now, func(e *Engine) (*Response, error) {
		return e.Deposit(depositor, duration, funds)
	})
}

// Withdraw applies a user withdrawal transaction.
func (p *Processor) Withdraw(now uint64, withdrawer crypto.Address, duration uint64, amount *big.Int) ([]*types.Event, error) {
	return p.Execute(now, func(e *Engine) (*Response, error) {
		return e.Withdraw(withdrawer, duration, amount)
	})
}

// UpdateConfig applies an owner configuration update.
func (p *Processor) UpdateConfig(now uint64, caller crypto.Address, update ConfigUpdate) ([]*types.Event, error) {
	return p.Execute(now, func(e *Engine) (*Response, error) {
		return e.UpdateConfig(caller, update)
	})
}

// EnableClaims applies the delegation program's one-time claim unlock.
func (p *Processor) EnableClaims(now uint64, caller crypto.Address) ([]*types.Event, error) {
	return p.Execute(now, func(e *Engine) (*Response, error) {
		return e.EnableClaims(caller)
	})
}

// Invest applies the owner's freeze-and-invest transaction.
func (p *Processor) Invest(now uint64, caller crypto.Address) ([]*types.Event, error) {
	return p.Execute(now, func(e *Engine) (*Response, error) {
		return e.Invest(caller)
	})
}

// Delegate applies a user incentive delegation.
func (p *Processor) Delegate(now uint64, caller crypto.Address, amount *big.Int) ([]*types.Event, error) {
	return p.Execute(now, func(e *Engine) (*Response, error) {
		return e.Delegate(caller, amount)
	})
}

// ClaimRewardsAndUnlock applies a claim, optionally dissolving one position
// in the same transaction.
func (p *Processor) ClaimRewardsAndUnlock(now uint64, caller crypto.Address, unlockDuration uint64, forceful bool) ([]*types.Event, error) {
	return p.Execute(now, func(e *Engine) (*Response, error) {
		return e.ClaimRewardsAndUnlock(caller, unlockDuration, forceful)
	})
}
