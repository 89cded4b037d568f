//go:build !unix

package terminal

import (
	"errors"
)

func (t *TTY) PixelSize() (int, int, error) {
	return 0, 0, errors.ErrUnsupported
}
