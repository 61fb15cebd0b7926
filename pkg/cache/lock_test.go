package cache_test

import (
	"sync"
	"testing"
	"time"

	"github.com/quillhq/quill/pkg/cache"
)

func TestChanLocker_LockAfterLock(t *testing.T) {
	c := cache.NewChanLocker()
	acq := c.Lock("foo", func() {})
	if !acq {
		t.Fatalf("expected first lock to acquire")
	}

	acq = c.Lock("foo", func() {})
	if !acq {
		t.Fatalf("expected second lock to acquire")
	}
}

func TestChanLocker_Lock(t *testing.T) {
	c := cache.NewChanLocker()

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		acq := c.Lock("foo", func() {
			time.Sleep(time.Millisecond * 50)
			wg.Done()
		})
		if !acq {
			t.Error("expected to acquire foo lock")
		}
	}()

	go func() {
		time.Sleep(10 * time.Millisecond)
		acq := c.Lock("foo", func() {
			t.Error("foo shouldnt be called!")
		})
		if acq {
			t.Error("foo shouldnt be acquired")
		}
		wg.Done()
	}()

	go func() {
		time.Sleep(10 * time.Millisecond)
		acq := c.Lock("bar", func() {
			wg.Done()
		})
		if !acq {
			t.Error("expected to acquire bar lock")
		}
	}()

	wg.Wait()
}
