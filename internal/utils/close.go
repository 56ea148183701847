package utils

import (
	"io"

	"github.com/MrSnakeDoc/savelater/internal/logger"
)

// Close closes c and ignores any error.
// Use for best-effort cleanup in defer where error handling is not critical.
func Close(c io.Closer) {
	_ = c.Close()
}

// MustClose closes c and logs any error under name.
// Use for defer statements where we want to track close errors.
func MustClose(log logger.Logger, name string, c io.Closer) {
	if err := c.Close(); err != nil {
		log.Warn("failed to close", logger.String("resource", name), logger.Error(err))
	}
}

// CloserFunc adapts a plain function to io.Closer.
type CloserFunc func() error

func (f CloserFunc) Close() error { return f() }
