package ringbuf

import "fmt"

// prev steps one slot backward with wraparound.
func (r *RingBuffer) prev(i int64) int64 {
	if i == 0 {
		i = r.capacity
	}
	return i - 1
}

// Push writes record into the slot after last and persists the header. Once
// the ring is full the oldest record is overwritten.
func (r *RingBuffer) Push(record []byte) error {
	if r.closed {
		return ErrClosed
	}
	if len(record) != r.recordLen {
		return fmt.Errorf("%w: got %d bytes, length must be %d", ErrRecordSizeMismatch, len(record), r.recordLen)
	}
	if r.capacity == 0 {
		return ErrZeroCapacity
	}

	next := (r.last + 1) % r.capacity
	if err := r.store.writeAt(record, slotOffset(next, r.recordLen)); err != nil {
		return r.ioErr("write record", err)
	}
	if r.count == r.capacity {
		r.stats.Overwrites++
	}
	r.count = min(r.count+1, r.capacity)
	r.last = next
	r.stats.Pushes++
	return r.writeHeader()
}

// Pop removes and returns the newest record. It returns nil, nil when the
// buffer is empty.
func (r *RingBuffer) Pop() ([]byte, error) {
	if r.closed {
		return nil, ErrClosed
	}
	if r.count == 0 {
		return nil, nil
	}
	rec := make([]byte, r.recordLen)
	if err := r.store.readAt(rec, slotOffset(r.last, r.recordLen)); err != nil {
		return nil, r.ioErr("read record", err)
	}
	r.count--
	r.last = r.prev(r.last)
	r.stats.Pops++
	if err := r.writeHeader(); err != nil {
		return nil, err
	}
	return rec, nil
}

// Peek returns the newest record without removing it, or nil when empty.
func (r *RingBuffer) Peek() ([]byte, error) {
	if r.closed {
		return nil, ErrClosed
	}
	if r.count == 0 {
		return nil, nil
	}
	rec := make([]byte, r.recordLen)
	if err := r.store.readAt(rec, slotOffset(r.last, r.recordLen)); err != nil {
		return nil, r.ioErr("read record", err)
	}
	r.stats.Peeks++
	return rec, nil
}

// PeekN returns up to n records, newest first, without removing them.
//
// The live region seen backward from last is at most two contiguous slot
// ranges: [0, last] and, when it wraps, [capacity-rest, capacity). Each range
// is read with a single I/O call.
func (r *RingBuffer) PeekN(n int) ([][]byte, error) {
	if r.closed {
		return nil, ErrClosed
	}
	m := min(r.count, int64(max(n, 0)))
	out := make([][]byte, 0, m)
	if m == 0 {
		return out, nil
	}

	head := min(m, r.last+1) // records in [last-head+1, last]
	rest := m - head         // records in [capacity-rest, capacity)

	chunk, err := r.readSlots(r.last-head+1, head)
	if err != nil {
		return nil, err
	}
	out = appendReversed(out, chunk, head, r.recordLen)
	if rest > 0 {
		chunk, err := r.readSlots(r.capacity-rest, rest)
		if err != nil {
			return nil, err
		}
		out = appendReversed(out, chunk, rest, r.recordLen)
	}
	r.stats.Peeks++
	return out, nil
}

// readSlots reads n consecutive slots starting at slot from.
func (r *RingBuffer) readSlots(from, n int64) ([]byte, error) {
	buf := make([]byte, n*int64(r.recordLen))
	if err := r.store.readAt(buf, slotOffset(from, r.recordLen)); err != nil {
		return nil, r.ioErr("read records", err)
	}
	return buf, nil
}

func appendReversed(out [][]byte, chunk []byte, n int64, recordLen int) [][]byte {
	for i := n - 1; i >= 0; i-- {
		lo := i * int64(recordLen)
		hi := lo + int64(recordLen)
		out = append(out, chunk[lo:hi:hi])
	}
	return out
}

// Delete removes the newest record. It is a no-op on an empty buffer.
func (r *RingBuffer) Delete() error {
	return r.DeleteN(1)
}

// DeleteN removes up to n of the newest records without reading them. It is
// equivalent to min(n, Count()) calls to Delete.
func (r *RingBuffer) DeleteN(n int) error {
	if r.closed {
		return ErrClosed
	}
	removed := min(r.count, int64(max(n, 0)))
	if removed == 0 {
		return nil
	}
	r.count -= removed
	if r.last >= removed {
		r.last -= removed
	} else {
		r.last = r.capacity - (removed - r.last)
	}
	r.stats.Deletes += uint64(removed)
	return r.writeHeader()
}
