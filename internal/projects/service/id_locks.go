package service

import "sync"

// idLocks hands out one mutex per project id. An entry is dropped once nobody
// holds or waits for it.
type idLocks struct {
	mu    sync.Mutex
	locks map[string]*idLock
}

type idLock struct {
	mu   sync.Mutex
	refs int
}

// lock blocks until id is free and returns the matching unlock func.
func (l *idLocks) lock(id string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*idLock)
	}
	e, ok := l.locks[id]
	if !ok {
		e = &idLock{}
		l.locks[id] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()

			l.mu.Lock()
			defer l.mu.Unlock()
			e.refs--
			if e.refs == 0 {
				delete(l.locks, id)
			}
		})
	}
}
