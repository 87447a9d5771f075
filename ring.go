package ringbuf

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// RingBuffer is a fixed-record-size circular buffer persisted in a single
// file. The newest record is always reachable; once the ring is full each
// Push silently overwrites the oldest record.
//
// A RingBuffer is not safe for concurrent use. It owns its file exclusively
// (enforced with flock unless Options.DisableLocking is set).
type RingBuffer struct {
	path      string
	store     storage
	capacity  int64 // jumlah slot
	count     int64 // jumlah record hidup
	last      int64 // slot record terbaru, valid bila count > 0
	recordLen int

	opts    Options
	log     logrus.FieldLogger
	bufPool *sync.Pool // scratch buffer untuk relokasi saat resize

	reinitialized bool
	closed        bool
	stats         Stats
}

// Create makes a new, empty buffer at path with DefaultOptions. Any existing
// content at path is discarded.
func Create(path string, capacity int64, recordLen int) (*RingBuffer, error) {
	return CreateWithOptions(path, capacity, recordLen, DefaultOptions())
}

// CreateWithOptions is Create with custom options.
func CreateWithOptions(path string, capacity int64, recordLen int, opts Options) (*RingBuffer, error) {
	if err := validateGeometry(capacity, recordLen); err != nil {
		return nil, err
	}
	r, err := openRing(path, true, opts)
	if err != nil {
		return nil, err
	}
	if err := r.initialize(capacity, recordLen); err != nil {
		r.store.close()
		return nil, err
	}
	r.log.WithFields(logrus.Fields{"capacity": capacity, "record_len": recordLen}).Debug("ring buffer created")
	return r, nil
}

// Open opens the buffer at path if its geometry matches capacity and
// recordLen, and creates it otherwise. See OpenWithOptions.
func Open(path string, capacity int64, recordLen int) (*RingBuffer, error) {
	return OpenWithOptions(path, capacity, recordLen, DefaultOptions())
}

// OpenWithOptions implements the "reopen if compatible, else reinitialize"
// policy. An existing file is accepted as-is only when its stored record
// length equals recordLen, its data region holds exactly capacity slots and
// its counters are in range. Any other existing file is reinitialized, which
// destroys its records; this is logged as a warning and reported by
// Reinitialized. Lock contention and I/O errors are returned, never masked.
func OpenWithOptions(path string, capacity int64, recordLen int, opts Options) (*RingBuffer, error) {
	if err := validateGeometry(capacity, recordLen); err != nil {
		return nil, err
	}
	existed := true
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		existed = false
	} else if err != nil {
		return nil, &StorageError{Op: "stat", Path: path, Err: err}
	}
	if !existed {
		return CreateWithOptions(path, capacity, recordLen, opts)
	}

	r, err := openRing(path, true, opts)
	if err != nil {
		return nil, err
	}
	reason, err := r.adopt(capacity, recordLen)
	if err != nil {
		r.store.close()
		return nil, err
	}
	if reason == "" {
		r.log.WithFields(logrus.Fields{"count": r.count, "last": r.last}).Debug("ring buffer opened")
		return r, nil
	}

	r.log.WithFields(logrus.Fields{
		"path":                 path,
		"reason":               reason,
		"requested_capacity":   capacity,
		"requested_record_len": recordLen,
	}).Warn("incompatible ring buffer file, reinitializing")
	if err := r.initialize(capacity, recordLen); err != nil {
		r.store.close()
		return nil, err
	}
	r.reinitialized = true
	r.stats.Reinitializations++
	return r, nil
}

// Reopen opens an existing buffer trusting its header for record length and
// capacity. It fails with ErrMissingFile if path does not exist and with
// ErrCorruptHeader if the header does not describe the file.
func Reopen(path string) (*RingBuffer, error) {
	return ReopenWithOptions(path, DefaultOptions())
}

// ReopenWithOptions is Reopen with custom options.
func ReopenWithOptions(path string, opts Options) (*RingBuffer, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingFile, path)
	} else if err != nil {
		return nil, &StorageError{Op: "stat", Path: path, Err: err}
	}

	r, err := openRing(path, false, opts)
	if err != nil {
		return nil, err
	}
	h, size, err := r.loadHeader()
	if err != nil {
		r.store.close()
		return nil, err
	}
	if h.recordLen == 0 || h.recordLen > math.MaxInt32 {
		r.store.close()
		return nil, fmt.Errorf("%w: record length %d", ErrCorruptHeader, h.recordLen)
	}
	data := size - headerLen
	if data%int64(h.recordLen) != 0 {
		r.store.close()
		return nil, fmt.Errorf("%w: data region of %d bytes is not a multiple of record length %d", ErrCorruptHeader, data, h.recordLen)
	}
	capacity := data / int64(h.recordLen)
	if err := checkCounters(h, capacity); err != nil {
		r.store.close()
		return nil, err
	}
	r.capacity, r.recordLen, r.count, r.last = capacity, int(h.recordLen), h.count, h.last
	r.log.WithFields(logrus.Fields{
		"capacity":   capacity,
		"record_len": h.recordLen,
		"count":      h.count,
		"last":       h.last,
	}).Debug("ring buffer reopened")
	return r, nil
}

// Reset reinitializes the open buffer with a new geometry, discarding all
// records. This is the only way to change the record length.
func (r *RingBuffer) Reset(capacity int64, recordLen int) error {
	if r.closed {
		return ErrClosed
	}
	if err := validateGeometry(capacity, recordLen); err != nil {
		return err
	}
	if err := r.initialize(capacity, recordLen); err != nil {
		return err
	}
	r.log.WithFields(logrus.Fields{"capacity": capacity, "record_len": recordLen}).Debug("ring buffer reset")
	return nil
}

func validateGeometry(capacity int64, recordLen int) error {
	if capacity < 0 {
		return fmt.Errorf("%w: capacity %d must not be negative", ErrInvalidArgument, capacity)
	}
	if recordLen <= 0 || int64(recordLen) > math.MaxInt32 {
		return fmt.Errorf("%w: record length %d out of range", ErrInvalidArgument, recordLen)
	}
	if capacity > 0 && capacity > (math.MaxInt64-headerLen)/int64(recordLen) {
		return fmt.Errorf("%w: capacity %d with record length %d overflows file size", ErrInvalidArgument, capacity, recordLen)
	}
	return nil
}

// checkCounters verifies count and last against capacity. last must be a
// valid slot index even when the buffer is empty because Push steps from it.
func checkCounters(h header, capacity int64) error {
	if h.count < 0 || h.count > capacity {
		return fmt.Errorf("%w: count %d outside [0, %d]", ErrCorruptHeader, h.count, capacity)
	}
	if h.last < 0 || h.last >= max(capacity, 1) {
		return fmt.Errorf("%w: last %d outside [0, %d)", ErrCorruptHeader, h.last, max(capacity, 1))
	}
	return nil
}

func openRing(path string, create bool, opts Options) (*RingBuffer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, &StorageError{Op: "mkdir", Path: path, Err: err}
	}
	flags := os.O_RDWR
	if create {
		flags |= os.O_CREATE
	}
	f, err := os.OpenFile(path, flags, 0o666)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingFile, path)
		}
		return nil, &StorageError{Op: "open", Path: path, Err: err}
	}
	if !opts.DisableLocking {
		if err := lockFile(f); err != nil {
			f.Close()
			if errors.Is(err, ErrLocked) {
				return nil, fmt.Errorf("%w: %s", ErrLocked, path)
			}
			return nil, &StorageError{Op: "flock", Path: path, Err: err}
		}
	}

	var st storage = &fileStorage{file: f}
	if opts.UseMmap {
		ms, err := newMmapStorage(f)
		if err != nil {
			f.Close()
			return nil, &StorageError{Op: "mmap", Path: path, Err: err}
		}
		st = ms
	}

	return &RingBuffer{
		path:    path,
		store:   st,
		opts:    opts,
		log:     opts.logger().WithField("path", path),
		bufPool: &sync.Pool{},
	}, nil
}

// loadHeader reads the header and the current file size. A file shorter than
// the header yields ErrCorruptHeader.
func (r *RingBuffer) loadHeader() (header, int64, error) {
	size, err := r.store.size()
	if err != nil {
		return header{}, 0, r.ioErr("stat", err)
	}
	if size < headerLen {
		return header{}, size, fmt.Errorf("%w: file of %d bytes has no header", ErrCorruptHeader, size)
	}
	buf := make([]byte, headerLen)
	if err := r.store.readAt(buf, 0); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return header{}, size, fmt.Errorf("%w: %v", ErrCorruptHeader, err)
		}
		return header{}, size, r.ioErr("read header", err)
	}
	h, err := decodeHeader(buf)
	return h, size, err
}

// adopt loads the existing header if the file matches the requested
// geometry. It returns a non-empty reason when the file must be
// reinitialized instead.
func (r *RingBuffer) adopt(capacity int64, recordLen int) (string, error) {
	h, size, err := r.loadHeader()
	if errors.Is(err, ErrCorruptHeader) {
		return err.Error(), nil
	}
	if err != nil {
		return "", err
	}
	if int(h.recordLen) != recordLen {
		return fmt.Sprintf("stored record length %d differs", h.recordLen), nil
	}
	if size != fileSize(capacity, recordLen) {
		return fmt.Sprintf("stored capacity %d differs", (size-headerLen)/int64(recordLen)), nil
	}
	if err := checkCounters(h, capacity); err != nil {
		return err.Error(), nil
	}
	r.capacity, r.recordLen, r.count, r.last = capacity, recordLen, h.count, h.last
	return "", nil
}

// initialize truncates the file to the given geometry and writes an empty
// header.
func (r *RingBuffer) initialize(capacity int64, recordLen int) error {
	if err := r.store.truncate(0); err != nil {
		return r.ioErr("truncate", err)
	}
	if err := r.store.truncate(fileSize(capacity, recordLen)); err != nil {
		return r.ioErr("truncate", err)
	}
	r.capacity, r.recordLen, r.count, r.last = capacity, recordLen, 0, 0
	r.bufPool = &sync.Pool{}
	return r.writeHeader()
}

// writeHeader persists recordLen, count and last, syncing when Options.Sync
// is set.
func (r *RingBuffer) writeHeader() error {
	buf := encodeHeader(uint32(r.recordLen), r.count, r.last)
	if err := r.store.writeAt(buf[:], 0); err != nil {
		return r.ioErr("write header", err)
	}
	if r.opts.Sync {
		if err := r.store.sync(); err != nil {
			return r.ioErr("sync", err)
		}
	}
	return nil
}
