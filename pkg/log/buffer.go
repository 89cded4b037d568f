package log

import (
	"fmt"
	"io"
	"sync"
)

// CircularBuffer is an [io.Writer] that keeps the most recent log records
// while the terminal is owned by the renderer. Each Write is one record;
// when full, the oldest record is overwritten.
type CircularBuffer struct {
	records  [][]byte
	capacity int
	head     int
	size     int
	dropped  int
	mu       sync.Mutex
}

// NewCircularBuffer creates a buffer holding up to capacity records.
// Non-positive capacities default to 100.
func NewCircularBuffer(capacity int) *CircularBuffer {
	if capacity <= 0 {
		capacity = 100
	}

	return &CircularBuffer{
		records:  make([][]byte, capacity),
		capacity: capacity,
	}
}

// Write implements [io.Writer]. The data is copied.
func (cb *CircularBuffer) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	record := make([]byte, len(p))
	copy(record, p)

	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.records[cb.head] = record
	cb.head = (cb.head + 1) % cb.capacity

	if cb.size < cb.capacity {
		cb.size++
	} else {
		cb.dropped++
	}

	return len(p), nil
}

// Records returns copies of the stored records, oldest first.
func (cb *CircularBuffer) Records() [][]byte {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.size == 0 {
		return nil
	}

	out := make([][]byte, 0, cb.size)
	start := (cb.head - cb.size + cb.capacity) % cb.capacity

	for i := range cb.size {
		rec := cb.records[(start+i)%cb.capacity]
		cp := make([]byte, len(rec))
		copy(cp, rec)

		out = append(out, cp)
	}

	return out
}

// Size returns the number of stored records.
func (cb *CircularBuffer) Size() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return cb.size
}

// Capacity returns the maximum number of records.
func (cb *CircularBuffer) Capacity() int {
	return cb.capacity
}

// Dropped returns how many records were overwritten.
func (cb *CircularBuffer) Dropped() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return cb.dropped
}

// WriteTo writes all stored records to w, oldest first. It implements
// [io.WriterTo].
func (cb *CircularBuffer) WriteTo(w io.Writer) (int64, error) {
	var total int64

	for _, rec := range cb.Records() {
		n, err := w.Write(rec)
		total += int64(n)

		if err != nil {
			return total, fmt.Errorf("writing record: %w", err)
		}
	}

	return total, nil
}
