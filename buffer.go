package ringbuf

// moveChunk adalah jumlah record maksimum yang dipindah per I/O saat resize.
const moveChunk = 256

// getBufFromPool mengambil scratch buffer dari pool atau membuat baru jika
// tidak tersedia. Ukuran buffer selalu moveChunk*recordLen byte.
func (r *RingBuffer) getBufFromPool() []byte {
	if b, ok := r.bufPool.Get().([]byte); ok && len(b) == r.chunkBytes() {
		return b
	}
	return make([]byte, r.chunkBytes())
}

// returnBufToPool mengembalikan buffer ke pool. Buffer dengan ukuran lain
// (misalnya setelah Reset mengganti record length) dibuang.
func (r *RingBuffer) returnBufToPool(buf []byte) {
	if len(buf) == r.chunkBytes() {
		r.bufPool.Put(buf)
	}
}

func (r *RingBuffer) chunkBytes() int {
	return moveChunk * r.recordLen
}
