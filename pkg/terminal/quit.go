package terminal

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/muesli/cancelreader"

	"github.com/macropower/termcam/pkg/keys"
)

// QuitWatcher reads terminal input on its own goroutine and records when a
// quit key is pressed. Input is not otherwise interpreted.
type QuitWatcher struct {
	reader    cancelreader.CancelReader
	matcher   *keys.Matcher
	done      chan struct{}
	requested atomic.Bool
	closeOnce sync.Once
}

// NewQuitWatcher starts watching in for any key of bind.
func NewQuitWatcher(in io.Reader, bind *keys.KeyBind) (*QuitWatcher, error) {
	m, err := bind.Matcher()
	if err != nil {
		return nil, fmt.Errorf("quit keys: %w", err)
	}

	r, err := cancelreader.NewReader(in)
	if err != nil {
		return nil, fmt.Errorf("create input reader: %w", err)
	}

	w := &QuitWatcher{
		reader:  r,
		matcher: m,
		done:    make(chan struct{}),
	}

	go w.watch()

	return w, nil
}

func (w *QuitWatcher) watch() {
	defer close(w.done)

	buf := make([]byte, 256)

	for {
		n, err := w.reader.Read(buf)
		if n > 0 && w.matcher.Match(buf[:n]) {
			w.requested.Store(true)

			return
		}

		if err != nil {
			if !errors.Is(err, cancelreader.ErrCanceled) && !errors.Is(err, io.EOF) {
				slog.Debug("stop reading input", slog.Any("error", err))
			}

			return
		}
	}
}

// CancelRequested reports whether a quit key has been pressed.
func (w *QuitWatcher) CancelRequested() bool {
	return w.requested.Load()
}

// Done is closed once the watcher stops reading.
func (w *QuitWatcher) Done() <-chan struct{} {
	return w.done
}

// Close stops reading. It waits for the reader goroutine only when the
// pending read could be interrupted.
func (w *QuitWatcher) Close() error {
	var err error

	w.closeOnce.Do(func() {
		if w.reader.Cancel() {
			<-w.done
		}

		err = w.reader.Close()
	})

	return err
}
