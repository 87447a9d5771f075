package ringbuf

import (
	"errors"
	"fmt"
)

var (
	// ErrRecordSizeMismatch is returned by Push when the record length differs
	// from the buffer's record length.
	ErrRecordSizeMismatch = errors.New("record size mismatch")
	// ErrZeroCapacity is returned by Push on a buffer with no slots.
	ErrZeroCapacity = errors.New("storage capacity is 0")
	// ErrCorruptHeader means the file header could not be decoded or its
	// values do not describe the file.
	ErrCorruptHeader = errors.New("corrupt header")
	// ErrMissingFile is returned by Reopen when the path does not exist.
	ErrMissingFile = errors.New("ring buffer file does not exist")
	// ErrClosed is returned for any use of a closed RingBuffer.
	ErrClosed = errors.New("ring buffer is closed")
	// ErrLocked means another handle holds the exclusive lock on the file.
	ErrLocked = errors.New("ring buffer file is locked by another owner")
	// ErrInvalidArgument reports a negative capacity or an unusable record length.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrStorageIO matches every *StorageError via errors.Is.
	ErrStorageIO = errors.New("storage i/o error")
)

// StorageError wraps a failure of the backing storage. After a failed write
// the handle state is unspecified and it should be closed and reopened.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("ringbuf: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is reports ErrStorageIO as a match so callers need not type-assert.
func (e *StorageError) Is(target error) bool { return target == ErrStorageIO }

func (r *RingBuffer) ioErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Path: r.path, Err: err}
}
