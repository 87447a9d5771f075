package ringbuf

import (
	"encoding/binary"
	"fmt"
)

// header layout: 20 bytes (big-endian)
// 0..3   : uint32 record length
// 4..11  : int64  count (live records)
// 12..19 : int64  last (slot of the newest record, valid only when count > 0)
const headerLen = 20

type header struct {
	recordLen uint32
	count     int64
	last      int64
}

func encodeHeader(recordLen uint32, count, last int64) [headerLen]byte {
	var buf [headerLen]byte
	binary.BigEndian.PutUint32(buf[0:4], recordLen)
	binary.BigEndian.PutUint64(buf[4:12], uint64(count))
	binary.BigEndian.PutUint64(buf[12:20], uint64(last))
	return buf
}

func decodeHeader(b []byte) (header, error) {
	if len(b) < headerLen {
		return header{}, fmt.Errorf("%w: header too small (%d bytes)", ErrCorruptHeader, len(b))
	}
	return header{
		recordLen: binary.BigEndian.Uint32(b[0:4]),
		count:     int64(binary.BigEndian.Uint64(b[4:12])),
		last:      int64(binary.BigEndian.Uint64(b[12:20])),
	}, nil
}

// slotOffset returns the byte offset of slot i in the backing file.
func slotOffset(i int64, recordLen int) int64 {
	return headerLen + i*int64(recordLen)
}

func fileSize(capacity int64, recordLen int) int64 {
	return headerLen + capacity*int64(recordLen)
}
