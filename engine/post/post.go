package post

import (
	"sync"

	"github.com/gwparam/paramstore/engine/gwutils"
)

// PostCallback is the type of functions to be posted
type PostCallback func()

var (
	callbacks []PostCallback
	lock      sync.Mutex
)

// Post queues a callback to run on the owner loop at its next Tick.
// Post may be called from any goroutine.
func Post(f PostCallback) {
	lock.Lock()
	callbacks = append(callbacks, f)
	lock.Unlock()
}

// Pending returns the number of queued callbacks
func Pending() int {
	lock.Lock()
	defer lock.Unlock()
	return len(callbacks)
}

// Tick runs all posted callbacks, including those posted by the callbacks themselves
func Tick() (n int) {
	for {
		lock.Lock()
		if len(callbacks) == 0 {
			lock.Unlock()
			return
		}
		batch := callbacks
		callbacks = make([]PostCallback, 0, len(batch))
		lock.Unlock()

		for _, f := range batch {
			gwutils.RunPanicless(f)
		}
		n += len(batch)
	}
}
