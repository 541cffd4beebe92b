// Package guard flips the application into test mode when imported. Test
// binaries that pull in main-adjacent packages import it for side effects so
// no server or worker startup happens during tests.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("UKOMBOZINI_TEST_MODE") == "" {
			_ = os.Setenv("UKOMBOZINI_TEST_MODE", "1")
		}
	})
}
