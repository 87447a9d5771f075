package ringbuf

// Flush memaksa data dan header tersimpan ke disk. Berguna bila
// Options.Sync dimatikan.
func (r *RingBuffer) Flush() error {
	if r.closed {
		return ErrClosed
	}
	return r.ioErr("sync", r.store.sync())
}

// Close menutup file (dan mmap) milik buffer dan melepas lock. Close hanya
// boleh dipanggil sekali; panggilan berikutnya mengembalikan ErrClosed.
func (r *RingBuffer) Close() error {
	if r.closed {
		return ErrClosed
	}
	r.closed = true
	var firstErr error
	if err := r.store.sync(); err != nil {
		firstErr = r.ioErr("sync", err)
	}
	if err := r.store.close(); err != nil && firstErr == nil {
		firstErr = r.ioErr("close", err)
	}
	return firstErr
}
