package audio

// loopReader streams a PCM buffer forever. The read index wraps at the end
// of the buffer, so the track loops until its player is closed.
// It never returns io.EOF.
type loopReader struct {
	pcm []byte
	pos int
}

func (r *loopReader) Read(p []byte) (int, error) {
	if len(r.pcm) == 0 {
		// Silence; NewStream rejects empty tracks so this is unreachable
		// in normal operation.
		clear(p)
		return len(p), nil
	}

	n := 0
	for n < len(p) {
		c := copy(p[n:], r.pcm[r.pos:])
		n += c
		r.pos += c
		if r.pos == len(r.pcm) {
			r.pos = 0
		}
	}
	return n, nil
}
