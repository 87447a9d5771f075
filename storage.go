package ringbuf

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// storage merepresentasikan byte store di belakang ring buffer.
//
// Ada dua implementasi: fileStorage memakai ReadAt/WriteAt langsung pada
// descriptor, mmapStorage memetakan seluruh file dengan unix.Mmap sehingga
// baca/tulis cukup lewat copy memori. Setelah truncate, mapping dibuat ulang.
type storage interface {
	readAt(p []byte, off int64) error
	writeAt(p []byte, off int64) error
	size() (int64, error)
	truncate(size int64) error
	sync() error
	close() error
}

type fileStorage struct {
	file *os.File // descriptor file fisik
}

func (s *fileStorage) readAt(p []byte, off int64) error {
	n, err := s.file.ReadAt(p, off)
	if n == len(p) {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

func (s *fileStorage) writeAt(p []byte, off int64) error {
	_, err := s.file.WriteAt(p, off)
	return err
}

func (s *fileStorage) size() (int64, error) {
	fi, err := s.file.Stat()
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

func (s *fileStorage) truncate(size int64) error { return s.file.Truncate(size) }

func (s *fileStorage) sync() error { return s.file.Sync() }

func (s *fileStorage) close() error { return s.file.Close() }

type mmapStorage struct {
	file *os.File
	mmap []byte // region memory-map; panjang selalu sama dengan ukuran file
}

func newMmapStorage(f *os.File) (*mmapStorage, error) {
	s := &mmapStorage{file: f}
	if err := s.remap(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *mmapStorage) remap() error {
	if s.mmap != nil {
		if err := unix.Munmap(s.mmap); err != nil {
			return fmt.Errorf("munmap: %w", err)
		}
		s.mmap = nil
	}
	fi, err := s.file.Stat()
	if err != nil {
		return err
	}
	if fi.Size() == 0 {
		return nil
	}
	m, err := unix.Mmap(int(s.file.Fd()), 0, int(fi.Size()), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return fmt.Errorf("mmap: %w", err)
	}
	s.mmap = m
	return nil
}

func (s *mmapStorage) readAt(p []byte, off int64) error {
	if off < 0 || off+int64(len(p)) > int64(len(s.mmap)) {
		return io.ErrUnexpectedEOF
	}
	copy(p, s.mmap[off:])
	return nil
}

func (s *mmapStorage) writeAt(p []byte, off int64) error {
	if off < 0 || off+int64(len(p)) > int64(len(s.mmap)) {
		return fmt.Errorf("write of %d bytes at %d beyond mapping of %d bytes", len(p), off, len(s.mmap))
	}
	copy(s.mmap[off:], p)
	return nil
}

func (s *mmapStorage) size() (int64, error) { return int64(len(s.mmap)), nil }

func (s *mmapStorage) truncate(size int64) error {
	if s.mmap != nil {
		if err := unix.Msync(s.mmap, unix.MS_SYNC); err != nil {
			return fmt.Errorf("msync: %w", err)
		}
	}
	if err := s.file.Truncate(size); err != nil {
		return err
	}
	return s.remap()
}

func (s *mmapStorage) sync() error {
	if s.mmap == nil {
		return nil
	}
	return unix.Msync(s.mmap, unix.MS_SYNC)
}

func (s *mmapStorage) close() error {
	var firstErr error
	if s.mmap != nil {
		if err := unix.Munmap(s.mmap); err != nil {
			firstErr = fmt.Errorf("munmap: %w", err)
		}
		s.mmap = nil
	}
	if err := s.file.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// lockFile memasang flock eksklusif non-blocking. Lock dilepas otomatis saat
// descriptor ditutup.
func lockFile(f *os.File) error {
	err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if errors.Is(err, unix.EWOULDBLOCK) {
		return ErrLocked
	}
	return err
}
