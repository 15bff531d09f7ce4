package zel

// GetTotalDurationMs sums every frame's duration (§4.7): each term is the
// frame-index entry's own duration, or the file header's default when the
// entry's is zero.
func (d *Decoder) GetTotalDurationMs() (uint32, error) {
	if err := d.checkOpen(); err != nil {
		return 0, err
	}
	var total uint32
	for i := range d.frameIndex {
		total += d.frameIndex[i].DurationMs(d.header.DefaultFrameDuration)
	}
	return total, nil
}

// FindFrameByTimeMs reduces t modulo the total duration and walks frames
// accumulating durations, returning the frame whose interval contains the
// reduced time and that interval's start (§4.7, §8 property 8).
//
// The source this decoder is modeled on falls through to
// (frameCount-1, totalDuration-1) after an inclusive loop that the spec
// treats as unreachable: since durations sum exactly to totalDurationMs
// and the reduced time is strictly less than totalDurationMs, the loop
// always returns before reaching that fall-through. This implementation
// preserves the same shape without relying on it.
func (d *Decoder) FindFrameByTimeMs(t uint32) (int, uint32, error) {
	if err := d.checkOpen(); err != nil {
		return 0, 0, err
	}
	total, err := d.GetTotalDurationMs()
	if err != nil {
		return 0, 0, err
	}
	if total == 0 {
		return 0, 0, errf(ResultCorruptData, "total duration is zero, cannot locate a frame by time")
	}
	reduced := t % total
	var accumulated uint32
	for i := range d.frameIndex {
		duration := d.frameIndex[i].DurationMs(d.header.DefaultFrameDuration)
		if reduced < accumulated+duration {
			return i, accumulated, nil
		}
		accumulated += duration
	}
	panic("zel: findFrameByTimeMs: reduced time exceeded the accumulated total duration")
}
