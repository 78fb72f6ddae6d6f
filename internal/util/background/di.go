package background

import (
	"sync"
	"time"
)

var (
	runner     *Runner
	runnerOnce sync.Once
)

// GetRunner returns the process wide runner. main starts and drains it.
func GetRunner() *Runner {
	runnerOnce.Do(func() {
		runner = NewRunner(4, 1024, 10*time.Second)
	})

	return runner
}
