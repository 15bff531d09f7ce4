package zel

import "testing"

// buildTimelineFile builds a file of frameCount single-pixel frames, each
// with the given duration (§8 scenario S5).
func buildTimelineFile(t *testing.T, durations []uint16, defaultDuration uint16) []byte {
	t.Helper()
	fh := fileHeaderBytes(1, 1, 1, 1, 0x04, uint16(len(durations)), defaultDuration) // hasFrameIndexTable only

	frameIndexLen := len(durations) * 11
	var entries []byte
	var blocks []byte
	offset := uint32(34 + frameIndexLen)
	for _, dur := range durations {
		frameHeader := frameHeaderBytes(0, 1, 0) // not a keyframe, 1 zone, NONE
		block := append(append([]byte{}, frameHeader...), zoneChunkBytes([]byte{0})...)
		entries = append(entries, frameIndexEntryBytes(offset, uint32(len(block)), 0, dur)...)
		blocks = append(blocks, block...)
		offset += uint32(len(block))
	}

	out := append([]byte{}, fh...)
	out = append(out, entries...)
	out = append(out, blocks...)
	return out
}

func TestS5TimelineLookup(t *testing.T) {
	data := buildTimelineFile(t, []uint16{10, 20, 30}, 0)
	d := openFixture(t, data)

	total, err := d.GetTotalDurationMs()
	if err != nil {
		t.Fatalf("GetTotalDurationMs: %v", err)
	}
	if total != 60 {
		t.Fatalf("GetTotalDurationMs = %d, want 60", total)
	}

	cases := []struct {
		t         uint32
		wantFrame int
		wantStart uint32
	}{
		{0, 0, 0},
		{9, 0, 0},
		{10, 1, 10},
		{29, 1, 10},
		{30, 2, 30},
		{59, 2, 30},
		{60, 0, 0}, // wraps via modulo
	}
	for _, c := range cases {
		frame, start, err := d.FindFrameByTimeMs(c.t)
		if err != nil {
			t.Fatalf("FindFrameByTimeMs(%d): %v", c.t, err)
		}
		if frame != c.wantFrame || start != c.wantStart {
			t.Errorf("FindFrameByTimeMs(%d) = (%d, %d), want (%d, %d)", c.t, frame, start, c.wantFrame, c.wantStart)
		}
	}
}

func TestTotalDurationSumsDefaultForZeroEntries(t *testing.T) {
	data := buildTimelineFile(t, []uint16{0, 5, 0}, 7)
	d := openFixture(t, data)

	total, err := d.GetTotalDurationMs()
	if err != nil {
		t.Fatalf("GetTotalDurationMs: %v", err)
	}
	if total != 7+5+7 {
		t.Fatalf("GetTotalDurationMs = %d, want %d", total, 7+5+7)
	}
}

func TestFindFrameByTimeMsRequiresNonZeroTotal(t *testing.T) {
	data := buildTimelineFile(t, []uint16{0}, 0)
	d := openFixture(t, data)

	_, _, err := d.FindFrameByTimeMs(0)
	assertResult(t, err, ResultCorruptData)
}
