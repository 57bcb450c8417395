package oggopus

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/haivivi/oggopus/pkg/opus"
)

func sinePCM(samples, channels int, freq float64) []int16 {
	pcm := make([]int16, samples*channels)
	for i := 0; i < samples; i++ {
		v := int16(16000 * math.Sin(2*math.Pi*freq*float64(i)/48000))
		for c := 0; c < channels; c++ {
			pcm[i*channels+c] = v
		}
	}
	return pcm
}

// encodeOggOpus builds an in-memory Ogg-Opus stream with one audio packet
// per entry of frameSizes (samples per channel at 48 kHz).
func encodeOggOpus(t *testing.T, channels int, preSkip uint16, frameSizes []int) []byte {
	t.Helper()

	enc, err := opus.NewAudioEncoder(48000, channels)
	if err != nil {
		t.Fatalf("NewAudioEncoder failed: %v", err)
	}
	defer enc.Close()

	id := &IDHeader{
		Version:       1,
		Channels:      channels,
		PreSkip:       preSkip,
		SampleRate:    48000,
		MappingFamily: 0,
	}
	comments := &CommentHeader{Vendor: "test"}
	comments.Add("TITLE", "sine sweep")

	var buf bytes.Buffer
	w, err := NewWriter(&buf, id, comments)
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}
	for _, size := range frameSizes {
		packet, err := enc.Encode(sinePCM(size, channels, 440), size)
		if err != nil {
			t.Fatalf("Encode(%d samples) failed: %v", size, err)
		}
		if err := w.WritePacket(packet); err != nil {
			t.Fatalf("WritePacket failed: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Writer.Close failed: %v", err)
	}
	return buf.Bytes()
}

// drain pulls frames until io.EOF, checking shape and range of each.
func drain(t *testing.T, s *Stream) int {
	t.Helper()
	frames := 0
	for {
		frame, err := s.Next()
		if errors.Is(err, io.EOF) {
			return frames
		}
		if err != nil {
			t.Fatalf("Next failed after %d frames: %v", frames, err)
		}
		if len(frame) != s.Channels() {
			t.Fatalf("frame has %d samples, want %d", len(frame), s.Channels())
		}
		for _, v := range frame {
			if v < -1 || v > 1 {
				t.Fatalf("sample %f out of range", v)
			}
		}
		frames++
	}
}

func TestStreamDecode(t *testing.T) {
	for _, channels := range []int{1, 2} {
		data := encodeOggOpus(t, channels, 0, []int{960, 960, 960, 960})

		s, err := NewReader(bytes.NewReader(data), 48000)
		if err != nil {
			t.Fatalf("NewReader failed: %v", err)
		}

		if got := s.Channels(); got != channels {
			t.Errorf("Channels = %d, want %d", got, channels)
		}
		if got := s.SampleRate(); got != 48000 {
			t.Errorf("SampleRate = %d, want 48000", got)
		}
		if title, ok := s.Comments().Get("title"); !ok || title != "sine sweep" {
			t.Errorf("Comments().Get(title) = %q, %v", title, ok)
		}

		if frames := drain(t, s); frames != 4*960 {
			t.Errorf("decoded %d frames, want %d", frames, 4*960)
		}
		// EOF is sticky.
		if _, err := s.Next(); !errors.Is(err, io.EOF) {
			t.Errorf("Next after EOF = %v, want io.EOF", err)
		}
		if err := s.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	}
}

func TestStreamDownsampled(t *testing.T) {
	data := encodeOggOpus(t, 1, 0, []int{960, 960, 960})

	s, err := NewReader(bytes.NewReader(data), 16000)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer s.Close()

	// 20 ms packets decode to 320 samples at 16 kHz.
	if frames := drain(t, s); frames != 3*320 {
		t.Errorf("decoded %d frames, want %d", frames, 3*320)
	}
}

func TestStreamVaryingFrameSizes(t *testing.T) {
	// The scratch buffer must grow and shrink across packets.
	sizes := []int{960, 480, 1920, 480, 960}
	total := 0
	for _, n := range sizes {
		total += n
	}
	data := encodeOggOpus(t, 2, 0, sizes)

	s, err := NewReader(bytes.NewReader(data), 48000)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer s.Close()

	if frames := drain(t, s); frames != total {
		t.Errorf("decoded %d frames, want %d", frames, total)
	}
}

func TestStreamPreSkip(t *testing.T) {
	const preSkip = 480
	data := encodeOggOpus(t, 1, preSkip, []int{960, 960})

	s, err := NewReader(bytes.NewReader(data), 48000)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer s.Close()

	if frames := drain(t, s); frames != 2*960-preSkip {
		t.Errorf("decoded %d frames, want %d", frames, 2*960-preSkip)
	}
}

func TestStreamPreSkipScaled(t *testing.T) {
	// 480 samples of 48 kHz pre-skip are 80 samples at 8 kHz.
	data := encodeOggOpus(t, 1, 480, []int{960, 960})

	s, err := NewReader(bytes.NewReader(data), 8000)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer s.Close()

	if frames := drain(t, s); frames != 2*160-80 {
		t.Errorf("decoded %d frames, want %d", frames, 2*160-80)
	}
}

func TestWriterEmptyStream(t *testing.T) {
	// Closing a Writer before any audio packet yields a headers-only
	// stream that readers terminate on cleanly.
	id := &IDHeader{Version: 1, Channels: 1, MappingFamily: 0}
	var buf bytes.Buffer
	w, err := NewWriter(&buf, id, &CommentHeader{Vendor: "test"})
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := w.WritePacket(opus.Packet{0x78}); !errors.Is(err, ErrWriterClosed) {
		t.Errorf("WritePacket after Close = %v, want ErrWriterClosed", err)
	}

	s, err := NewReader(bytes.NewReader(buf.Bytes()), 48000)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer s.Close()
	if frames := drain(t, s); frames != 0 {
		t.Errorf("decoded %d frames from empty stream, want 0", frames)
	}
}

func TestStreamBadSampleRate(t *testing.T) {
	for _, rate := range []int{0, -1, 22050, 44100, 96000} {
		if _, err := NewStream(NewSliceSource(), rate); !errors.Is(err, ErrSampleRate) {
			t.Errorf("NewStream(rate=%d) = %v, want ErrSampleRate", rate, err)
		}
	}
}

func TestStreamTruncatedHeaders(t *testing.T) {
	id := &IDHeader{Version: 1, Channels: 1, MappingFamily: 0}
	idPacket, err := id.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary failed: %v", err)
	}

	for _, tt := range []struct {
		name    string
		packets [][]byte
	}{
		{"empty-source", nil},
		{"only-id-header", [][]byte{idPacket}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewStream(NewSliceSource(tt.packets...), 48000); !errors.Is(err, ErrTruncated) {
				t.Errorf("NewStream = %v, want ErrTruncated", err)
			}
		})
	}
}

func TestStreamBadHeaders(t *testing.T) {
	if _, err := NewStream(NewSliceSource([]byte("not a header")), 48000); !errors.Is(err, ErrBadHeader) {
		t.Errorf("NewStream with garbage first packet = %v, want ErrBadHeader", err)
	}
}

func TestStreamInvalidAudioPacket(t *testing.T) {
	id := &IDHeader{Version: 1, Channels: 1, MappingFamily: 0}
	idPacket, err := id.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary failed: %v", err)
	}
	commentPacket, err := (&CommentHeader{Vendor: "test"}).MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary failed: %v", err)
	}

	s, err := NewStream(NewSliceSource(idPacket, commentPacket, []byte{}), 48000)
	if err != nil {
		t.Fatalf("NewStream failed: %v", err)
	}
	defer s.Close()

	if _, err := s.Next(); !errors.Is(err, opus.StatusBadArg) {
		t.Errorf("Next on empty audio packet = %v, want StatusBadArg", err)
	}
}

func TestStreamClose(t *testing.T) {
	data := encodeOggOpus(t, 1, 0, []int{960})

	s, err := NewReader(bytes.NewReader(data), 48000)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}
	if _, err := s.Next(); !errors.Is(err, ErrClosed) {
		t.Errorf("Next after Close = %v, want ErrClosed", err)
	}
}

func TestDecodeScoped(t *testing.T) {
	data := encodeOggOpus(t, 2, 0, []int{960, 960})

	src, err := NewOggSource(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("NewOggSource failed: %v", err)
	}

	frames := 0
	err = Decode(src, 48000, func(s *Stream) error {
		for {
			_, err := s.Next()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			frames++
		}
	})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if frames != 2*960 {
		t.Errorf("decoded %d frames, want %d", frames, 2*960)
	}

	errBoom := errors.New("boom")
	err = Decode(NewSliceSource(), 48000, func(*Stream) error { return errBoom })
	if !errors.Is(err, ErrTruncated) {
		t.Errorf("Decode over empty source = %v, want ErrTruncated", err)
	}
}

func TestSliceSource(t *testing.T) {
	src := NewSliceSource([]byte{1}, []byte{2, 3})

	p, err := src.NextPacket()
	if err != nil || !bytes.Equal(p, []byte{1}) {
		t.Fatalf("NextPacket = %v, %v", p, err)
	}
	p, err = src.NextPacket()
	if err != nil || !bytes.Equal(p, []byte{2, 3}) {
		t.Fatalf("NextPacket = %v, %v", p, err)
	}
	if _, err := src.NextPacket(); !errors.Is(err, io.EOF) {
		t.Errorf("NextPacket past end = %v, want io.EOF", err)
	}
	// Exhaustion is terminal.
	if _, err := src.NextPacket(); !errors.Is(err, io.EOF) {
		t.Errorf("NextPacket past end = %v, want io.EOF", err)
	}
}

func TestOggSourceRoundTrip(t *testing.T) {
	data := encodeOggOpus(t, 1, 0, []int{960, 480})

	src, err := NewOggSource(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("NewOggSource failed: %v", err)
	}
	defer src.Close()

	// Two headers then two audio packets.
	for i := 0; i < 2; i++ {
		p, err := src.NextPacket()
		if err != nil {
			t.Fatalf("header packet %d: %v", i, err)
		}
		if !IsHeaderPacket(p) {
			t.Errorf("packet %d is not a header", i)
		}
	}
	for i := 0; i < 2; i++ {
		p, err := src.NextPacket()
		if err != nil {
			t.Fatalf("audio packet %d: %v", i, err)
		}
		if IsHeaderPacket(p) {
			t.Errorf("audio packet %d looks like a header", i)
		}
	}
	if _, err := src.NextPacket(); !errors.Is(err, io.EOF) {
		t.Errorf("NextPacket past end = %v, want io.EOF", err)
	}
}
