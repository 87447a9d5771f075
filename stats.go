package ringbuf

// Stats menyimpan penghitung operasi sejak buffer dibuka (atau sejak
// ResetStats terakhir).
type Stats struct {
	Pushes            uint64 // record yang ditulis
	Pops              uint64
	Peeks             uint64 // panggilan Peek/PeekN yang mengembalikan data
	Deletes           uint64 // record yang dihapus lewat Delete/DeleteN
	Overwrites        uint64 // Push yang menimpa record tertua
	Resizes           uint64
	Reinitializations uint64 // Open yang jatuh ke Create karena file tidak cocok
}

// Stats returns a snapshot of the operation counters.
func (r *RingBuffer) Stats() Stats { return r.stats }

// ResetStats zeroes the operation counters.
func (r *RingBuffer) ResetStats() { r.stats = Stats{} }

// Capacity returns the number of slots.
func (r *RingBuffer) Capacity() int64 { return r.capacity }

// RecordLength returns the size of every record in bytes.
func (r *RingBuffer) RecordLength() int { return r.recordLen }

// Count returns the number of live records.
func (r *RingBuffer) Count() int64 { return r.count }

// Last returns the slot index of the newest record. It is meaningless when
// Count is 0.
func (r *RingBuffer) Last() int64 { return r.last }

// Path returns the backing file path.
func (r *RingBuffer) Path() string { return r.path }

func (r *RingBuffer) IsEmpty() bool { return r.count == 0 }

func (r *RingBuffer) IsFull() bool { return r.count == r.capacity }

// Reinitialized reports whether Open discarded an incompatible file.
func (r *RingBuffer) Reinitialized() bool { return r.reinitialized }
