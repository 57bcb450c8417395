package commands

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/haivivi/oggopus/pkg/oggopus"
)

// faultySource yields its packets and then fails with err instead of a
// clean end of stream.
type faultySource struct {
	packets [][]byte
	err     error
}

func (s *faultySource) NextPacket() ([]byte, error) {
	if len(s.packets) == 0 {
		return nil, s.err
	}
	p := s.packets[0]
	s.packets = s.packets[1:]
	return p, nil
}

func TestGatherStats(t *testing.T) {
	// TOC 0x78: config 15 (Hybrid FB 20ms), mono, one frame.
	packets := [][]byte{
		{0x78, 1, 2, 3},
		{0x78, 4, 5},
	}

	stats, err := gatherStats(oggopus.NewSliceSource(packets...))
	if err != nil {
		t.Fatalf("gatherStats failed: %v", err)
	}
	if stats.packets != 2 {
		t.Errorf("packets = %d, want 2", stats.packets)
	}
	if stats.bytes != 7 {
		t.Errorf("bytes = %d, want 7", stats.bytes)
	}
	if want := 40 * time.Millisecond; stats.duration != want {
		t.Errorf("duration = %s, want %s", stats.duration, want)
	}
	if stats.configs[15] != 2 {
		t.Errorf("configs[15] = %d, want 2", stats.configs[15])
	}
}

func TestGatherStatsSourceError(t *testing.T) {
	errRead := errors.New("read failure")
	src := &faultySource{packets: [][]byte{{0x78, 1}}, err: errRead}

	if _, err := gatherStats(src); !errors.Is(err, errRead) {
		t.Errorf("gatherStats = %v, want the source error", err)
	}

	// A clean end of stream is not an error.
	if _, err := gatherStats(&faultySource{err: io.EOF}); err != nil {
		t.Errorf("gatherStats on EOF = %v, want nil", err)
	}
}
