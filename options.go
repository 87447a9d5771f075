package ringbuf

import "github.com/sirupsen/logrus"

// Options menyediakan opsi konfigurasi untuk RingBuffer.
//
//   - UseMmap:        akses data lewat memory-mapping alih-alih ReadAt/WriteAt
//   - Sync:           fsync/msync setelah setiap operasi yang mengubah isi
//   - DisableLocking: jangan pasang flock eksklusif pada file
//   - Logger:         tujuan log (nil = logrus.StandardLogger())
//
// Lihat DefaultOptions() untuk nilai bawaan.
type Options struct {
	UseMmap        bool               // Gunakan memory-mapping
	Sync           bool               // Sinkronkan ke disk setiap mutasi
	DisableLocking bool               // Pemanggil menjamin akses eksklusif sendiri
	Logger         logrus.FieldLogger // Logger untuk event reinit/resize
}

// DefaultOptions mengembalikan konfigurasi default yang digunakan Create, Open
// dan Reopen bila opts nil.
func DefaultOptions() Options {
	return Options{
		UseMmap: false,
		Sync:    true,
		Logger:  logrus.StandardLogger(),
	}
}

func (o *Options) logger() logrus.FieldLogger {
	if o.Logger == nil {
		return logrus.StandardLogger()
	}
	return o.Logger
}
