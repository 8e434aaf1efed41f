package skilltext

import (
	"testing"

	"go.uber.org/goleak"
)

// The package never starts goroutines; sessions run on the caller's event loop.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
