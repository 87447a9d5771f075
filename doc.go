// Package ringbuf provides a persistent circular buffer of fixed-size records
// stored in a single file.
//
// The file starts with a 20-byte big-endian header (record length as uint32,
// live count and slot of the newest record as int64) followed by capacity
// slots of record length bytes each. Push always writes the slot after the
// newest record, so the newest record is always reachable and, once the ring
// is full, the oldest is silently overwritten. Pop, Peek and Delete work
// newest first.
//
// The library is organised into several files for clarity:
//
//	header.go      – on-disk header codec
//	options.go     – configuration struct & defaults
//	storage.go     – file and mmap backed byte stores, flock
//	ring.go        – constructors, open/reopen policy, header persistence
//	io.go          – push/pop/peek/delete
//	resize.go      – capacity change with record migration
//	buffer.go      – pooled scratch buffers for migration
//	stats.go       – counters & accessors
//	flush_close.go – flush & close helpers
//	errors.go      – error values
package ringbuf
