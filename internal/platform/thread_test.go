package platform

import (
	"runtime"
	"testing"
)

func TestThreadIDStableWhileLocked(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	first := ThreadID()
	for i := 0; i < 10; i++ {
		runtime.Gosched()
		if got := ThreadID(); got != first {
			t.Fatalf("ThreadID changed on a locked thread: %d then %d", first, got)
		}
	}
}

func TestThreadIDDistinctThreads(t *testing.T) {
	switch runtime.GOOS {
	case "linux", "windows", "darwin", "freebsd", "netbsd":
	default:
		t.Skipf("no thread ids on %s", runtime.GOOS)
	}

	ids := make(chan uint64, 2)
	release := make(chan struct{})
	for i := 0; i < 2; i++ {
		go func() {
			// Both goroutines stay locked until each has reported, so they
			// cannot share an OS thread.
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()
			ids <- ThreadID()
			<-release
		}()
	}
	a, b := <-ids, <-ids
	close(release)

	if a == b {
		t.Errorf("two locked goroutines reported the same thread id %d", a)
	}
	if a == 0 || b == 0 {
		t.Errorf("thread ids should be non-zero, got %d and %d", a, b)
	}
}
