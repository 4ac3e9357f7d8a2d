package storage

import "sync"

// Overlay buffers writes and deletes on top of a backing database so that a
// whole transaction can be committed or discarded as a unit. Reads see the
// buffered state first and fall through to the backing store.
type Overlay struct {
	mu      sync.Mutex
	backing Database
	writes  map[string][]byte
	deletes map[string]struct{}
}

// NewOverlay wraps the backing database with an empty write buffer.
func NewOverlay(backing Database) *Overlay {
	return &Overlay{
		backing: backing,
		writes:  make(map[string][]byte),
		deletes: make(map[string]struct{}),
	}
}

func (o *Overlay) Put(key []byte, value []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	k := string(key)
	delete(o.deletes, k)
	o.writes[k] = append([]byte(nil), value...)
	return nil
}

func (o *Overlay) Get(key []byte) ([]byte, error) {
	o.mu.Lock()
	k := string(key)
	if _, gone := o.deletes[k]; gone {
		o.mu.Unlock()
		return nil, ErrKeyNotFound
	}
	if value, ok := o.writes[k]; ok {
		o.mu.Unlock()
		return append([]byte(nil), value...), nil
	}
	o.mu.Unlock()
	return o.backing.Get(key)
}

func (o *Overlay) Has(key []byte) (bool, error) {
	o.mu.Lock()
	k := string(key)
	if _, gone := o.deletes[k]; gone {
		o.mu.Unlock()
		return false, nil
	}
	if _, ok := o.writes[k]; ok {
		o.mu.Unlock()
		return true, nil
	}
	o.mu.Unlock()
	return o.backing.Has(key)
}

func (o *Overlay) Delete(key []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	k := string(key)
	delete(o.writes, k)
	o.deletes[k] = struct{}{}
	return nil
}

// Close discards any buffered state without committing it.
func (o *Overlay) Close() {
	o.Discard()
}

// Commit flushes the buffered writes and deletes to the backing database and
// resets the buffer. The flush is sequential; callers serialise transactions
// so no concurrent committer exists.
func (o *Overlay) Commit() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for k := range o.deletes {
		if err := o.backing.Delete([]byte(k)); err != nil {
			return err
		}
	}
	for k, v := range o.writes {
		if err := o.backing.Put([]byte(k), v); err != nil {
			return err
		}
	}
	o.writes = make(map[string][]byte)
	o.deletes = make(map[string]struct{})
	return nil
}

// Discard drops all buffered state, leaving the backing database untouched.
func (o *Overlay) Discard() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.writes = make(map[string][]byte)
	o.deletes = make(map[string]struct{})
}
