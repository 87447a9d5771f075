// Package audit turns a ring buffer into a bounded audit trail of
// timestamped, uniquely identified messages.
package audit

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// record layout (big-endian, zero padded to the ring's record length)
// 0..15  : event UUID
// 16..23 : int64 unix nanoseconds
// 24     : logrus level
// 25..26 : uint16 message length
// 27..   : message bytes
const (
	offTime   = 16
	offLevel  = 24
	offMsgLen = 25
	offMsg    = 27

	// MinRecordLength is the smallest record that can hold an event with an
	// empty message.
	MinRecordLength = offMsg
	maxMessageLen   = 1<<16 - 1
)

var (
	ErrRecordTooSmall = errors.New("record length too small for audit events")
	ErrMalformed      = errors.New("malformed audit record")
)

// Event is one entry of the trail.
type Event struct {
	ID      uuid.UUID
	Time    time.Time
	Level   logrus.Level
	Message string
}

// Encode packs ev into a record of exactly recordLength bytes. Messages that
// do not fit are cut at the last complete UTF-8 sequence.
func Encode(ev Event, recordLength int) ([]byte, error) {
	if recordLength < MinRecordLength {
		return nil, fmt.Errorf("%w: %d < %d", ErrRecordTooSmall, recordLength, MinRecordLength)
	}
	msg := truncateUTF8(ev.Message, min(recordLength-offMsg, maxMessageLen))

	buf := make([]byte, recordLength)
	copy(buf[:offTime], ev.ID[:])
	binary.BigEndian.PutUint64(buf[offTime:offLevel], uint64(ev.Time.UnixNano()))
	buf[offLevel] = byte(ev.Level)
	binary.BigEndian.PutUint16(buf[offMsgLen:offMsg], uint16(len(msg)))
	copy(buf[offMsg:], msg)
	return buf, nil
}

// Decode unpacks a record produced by Encode.
func Decode(rec []byte) (Event, error) {
	if len(rec) < MinRecordLength {
		return Event{}, fmt.Errorf("%w: %d bytes", ErrMalformed, len(rec))
	}
	n := int(binary.BigEndian.Uint16(rec[offMsgLen:offMsg]))
	if offMsg+n > len(rec) {
		return Event{}, fmt.Errorf("%w: message length %d exceeds record", ErrMalformed, n)
	}
	id, err := uuid.FromBytes(rec[:offTime])
	if err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return Event{
		ID:      id,
		Time:    time.Unix(0, int64(binary.BigEndian.Uint64(rec[offTime:offLevel]))).UTC(),
		Level:   logrus.Level(rec[offLevel]),
		Message: string(rec[offMsg : offMsg+n]),
	}, nil
}

func truncateUTF8(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	s = s[:limit]
	for len(s) > 0 {
		r, size := utf8.DecodeLastRuneInString(s)
		if r != utf8.RuneError || size > 1 {
			break
		}
		s = s[:len(s)-1]
	}
	return s
}
