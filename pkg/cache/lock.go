package cache

import "sync"

// ChanLocker grants the callback to exactly one caller per key at a time.
// Callers that find the key locked wait for the holder to finish and return
// without running their callback.
type ChanLocker struct {
	mu    sync.Mutex
	locks map[interface{}]chan struct{}
}

func NewChanLocker() *ChanLocker {
	return &ChanLocker{
		locks: make(map[interface{}]chan struct{}),
	}
}

// Lock runs fn if no other caller currently holds k, returning true. When k
// is held, Lock blocks until the holder releases it and returns false without
// calling fn.
func (l *ChanLocker) Lock(k interface{}, fn func()) bool {
	l.mu.Lock()
	waiter, held := l.locks[k]
	if held {
		l.mu.Unlock()
		<-waiter
		return false
	}
	done := make(chan struct{})
	l.locks[k] = done
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		delete(l.locks, k)
		l.mu.Unlock()
		close(done)
	}()
	fn()
	return true
}
