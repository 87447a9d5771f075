package ringbuf

import "github.com/sirupsen/logrus"

// Resize changes the number of slots, keeping the newest live records and
// their order.
//
// Growing extends the file first, then moves the wrapped (older) tail
// segment to the end of the new data region so the live records stay one
// backward walk from last.
//
// Shrinking keeps the newest min(count, newCapacity) records and drops the
// oldest. The retained records are moved inside the new bounds, the header
// is written and only then the file is truncated, so an interrupted shrink
// leaves a larger but valid file behind.
func (r *RingBuffer) Resize(newCapacity int64) error {
	if r.closed {
		return ErrClosed
	}
	if err := validateGeometry(newCapacity, r.recordLen); err != nil {
		return err
	}
	if newCapacity == r.capacity {
		return nil
	}
	oldCapacity, oldCount := r.capacity, r.count

	var err error
	if newCapacity > r.capacity {
		err = r.grow(newCapacity)
	} else {
		err = r.shrink(newCapacity)
	}
	if err != nil {
		return err
	}
	r.stats.Resizes++
	r.log.WithFields(logrus.Fields{
		"old_capacity": oldCapacity,
		"new_capacity": newCapacity,
		"dropped":      oldCount - r.count,
	}).Debug("ring buffer resized")
	return nil
}

func (r *RingBuffer) grow(newCapacity int64) error {
	if err := r.store.truncate(fileSize(newCapacity, r.recordLen)); err != nil {
		return r.ioErr("extend", err)
	}
	if wrapped := r.count - (r.last + 1); wrapped > 0 {
		if err := r.move(r.capacity-wrapped, newCapacity-wrapped, wrapped); err != nil {
			return err
		}
	}
	r.capacity = newCapacity
	return r.writeHeader()
}

func (r *RingBuffer) shrink(newCapacity int64) error {
	keep := min(r.count, newCapacity)
	last := r.last
	switch {
	case keep == 0:
		last = 0
	case r.last+1 >= keep:
		// retained records are contiguous in [last-keep+1, last]
		if r.last >= newCapacity {
			if err := r.move(r.last-keep+1, 0, keep); err != nil {
				return err
			}
			last = keep - 1
		}
	default:
		// [0, last] already fits; move the older part to the new end
		wrapped := keep - (r.last + 1)
		if err := r.move(r.capacity-wrapped, newCapacity-wrapped, wrapped); err != nil {
			return err
		}
	}

	r.count, r.last = keep, last
	if err := r.writeHeader(); err != nil {
		return err
	}
	if err := r.store.truncate(fileSize(newCapacity, r.recordLen)); err != nil {
		return r.ioErr("truncate", err)
	}
	r.capacity = newCapacity
	return nil
}

// move copies n slots from src to dst with memmove semantics: overlapping
// ranges are copied in the direction that never overwrites unread source.
func (r *RingBuffer) move(src, dst, n int64) error {
	if src == dst || n <= 0 {
		return nil
	}
	buf := r.getBufFromPool()
	defer r.returnBufToPool(buf)

	for done := int64(0); done < n; {
		k := min(int64(moveChunk), n-done)
		off := done
		if dst > src {
			off = n - done - k
		}
		chunk := buf[:k*int64(r.recordLen)]
		if err := r.store.readAt(chunk, slotOffset(src+off, r.recordLen)); err != nil {
			return r.ioErr("move read", err)
		}
		if err := r.store.writeAt(chunk, slotOffset(dst+off, r.recordLen)); err != nil {
			return r.ioErr("move write", err)
		}
		done += k
	}
	return nil
}
