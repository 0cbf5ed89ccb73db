package ledger

import (
	"slices"
	"sync"
)

// partyLocks serializes work per party id. Deleting a party holds its lock
// across the reference scan and the removal; creating an entry holds the
// locks of every party it references until the entry is stored.
type partyLocks struct {
	mu    sync.Mutex
	locks map[string]*partyLock
}

type partyLock struct {
	sync.Mutex
	refs int
}

// lock acquires the locks for ids in sorted order, so two callers locking
// overlapping sets cannot deadlock. Blank and repeated ids are ignored.
func (p *partyLocks) lock(ids ...string) (unlock func()) {
	keys := make([]string, 0, len(ids))
	for _, k := range ids {
		if k != "" {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	keys = slices.Compact(keys)

	held := make([]*partyLock, len(keys))
	for i, k := range keys {
		held[i] = p.acquire(k)
		held[i].Lock()
	}

	return func() {
		for i := len(keys) - 1; i >= 0; i-- {
			held[i].Unlock()
			p.release(keys[i])
		}
	}
}

func (p *partyLocks) acquire(key string) *partyLock {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.locks == nil {
		p.locks = make(map[string]*partyLock)
	}
	l, ok := p.locks[key]
	if !ok {
		l = &partyLock{}
		p.locks[key] = l
	}
	l.refs++
	return l
}

func (p *partyLocks) release(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	l := p.locks[key]
	l.refs--
	if l.refs == 0 {
		delete(p.locks, key)
	}
}
