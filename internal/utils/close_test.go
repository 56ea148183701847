package utils

import (
	"errors"
	"testing"

	"github.com/MrSnakeDoc/savelater/internal/logger"
)

func TestMustCloseCallsClose(t *testing.T) {
	calls := 0
	c := CloserFunc(func() error {
		calls++
		return errors.New("already closed")
	})

	MustClose(logger.Nop(), "test", c)
	Close(c)

	if calls != 2 {
		t.Errorf("Close called %d times, want 2", calls)
	}
}
