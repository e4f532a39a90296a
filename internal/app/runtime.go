package app

import (
	"os"
	"sync"
	"sync/atomic"
)

const testModeEnv = "CONDOFACIL_TEST_MODE"

var (
	testMode     atomic.Bool
	testModeOnce sync.Once
)

// InTestMode reports whether the process runs with CONDOFACIL_TEST_MODE=1.
// Used to relax external integrations in the test environment.
func InTestMode() bool {
	testModeOnce.Do(func() {
		testMode.Store(os.Getenv(testModeEnv) == "1")
	})
	return testMode.Load()
}

// RefreshTestMode re-reads the environment. Only tests should call this.
func RefreshTestMode() {
	testMode.Store(os.Getenv(testModeEnv) == "1")
}
