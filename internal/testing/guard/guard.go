// Package guard forces test mode for packages whose tests exercise code
// gated on CONDOFACIL_TEST_MODE. Blank-import it from a _test file; its
// init runs before any test in the importing package.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

// Ensure applies the test-mode environment exactly once per process. The
// Gotenberg default points at an unroutable address so nothing reaches a
// real renderer by accident.
func Ensure() {
	once.Do(func() {
		if os.Getenv("CONDOFACIL_TEST_MODE") == "" {
			_ = os.Setenv("CONDOFACIL_TEST_MODE", "1")
		}
		if os.Getenv("GOTENBERG_URL") == "" {
			_ = os.Setenv("GOTENBERG_URL", "http://127.0.0.1:0")
		}
	})
}

func init() {
	Ensure()
}
