package audit

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Ring is the subset of *ringbuf.RingBuffer the trail needs.
type Ring interface {
	Push(record []byte) error
	PeekN(n int) ([][]byte, error)
	RecordLength() int
}

// Trail appends events to a ring and reads back the newest ones. Once the
// ring is full the oldest events are overwritten.
type Trail struct {
	ring Ring
	now  func() time.Time
}

// NewTrail wraps ring. The ring's record length must be at least
// MinRecordLength.
func NewTrail(ring Ring) (*Trail, error) {
	if ring.RecordLength() < MinRecordLength {
		return nil, fmt.Errorf("%w: %d < %d", ErrRecordTooSmall, ring.RecordLength(), MinRecordLength)
	}
	return &Trail{ring: ring, now: time.Now}, nil
}

// Append records msg at level and returns the stored event. The message is
// truncated to what fits in one record.
func (t *Trail) Append(level logrus.Level, msg string) (Event, error) {
	ev := Event{
		ID:      uuid.New(),
		Time:    t.now().UTC(),
		Level:   level,
		Message: msg,
	}
	rec, err := Encode(ev, t.ring.RecordLength())
	if err != nil {
		return Event{}, err
	}
	if err := t.ring.Push(rec); err != nil {
		return Event{}, fmt.Errorf("append audit event: %w", err)
	}
	// report what was actually stored, including truncation
	return Decode(rec)
}

// Recent returns up to n events, newest first.
func (t *Trail) Recent(n int) ([]Event, error) {
	recs, err := t.ring.PeekN(n)
	if err != nil {
		return nil, fmt.Errorf("read audit events: %w", err)
	}
	out := make([]Event, 0, len(recs))
	for i, rec := range recs {
		ev, err := Decode(rec)
		if err != nil {
			return out, fmt.Errorf("decode audit event %d: %w", i, err)
		}
		out = append(out, ev)
	}
	return out, nil
}
