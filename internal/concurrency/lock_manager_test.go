package concurrency

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLockManager_SerializesPerKey(t *testing.T) {
	lm := NewLockManager()
	var inside, peak atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := lm.Lock("user-1")
			defer release()

			n := inside.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			inside.Add(-1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), peak.Load())
	assert.Zero(t, lm.Active(), "released keys are forgotten")
}

func TestLockManager_KeysAreIndependent(t *testing.T) {
	lm := NewLockManager()
	releaseA := lm.Lock("a")
	defer releaseA()

	acquired := make(chan struct{})
	go func() {
		release := lm.Lock("b")
		release()
		close(acquired)
	}()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("lock on b waited for a")
	}
	assert.Equal(t, 1, lm.Active())
}

func TestLockManager_WaiterKeepsEntryAlive(t *testing.T) {
	lm := NewLockManager()
	release := lm.Lock("a")

	got := make(chan struct{})
	go func() {
		r := lm.Lock("a")
		close(got)
		r()
	}()

	assert.Eventually(t, func() bool {
		lm.mu.Lock()
		defer lm.mu.Unlock()
		return lm.locks["a"] != nil && lm.locks["a"].holders == 2
	}, time.Second, 5*time.Millisecond)

	release()
	<-got
	assert.Eventually(t, func() bool { return lm.Active() == 0 }, time.Second, 5*time.Millisecond)
}
