// Package oggopus decodes Ogg-encapsulated Opus streams (RFC 7845) into
// PCM frames.
//
// The package splits the problem into three small layers. The header
// codec parses and serializes the two mandatory header packets
// (IDHeader, CommentHeader). A PacketSource abstracts "the next raw
// packet", decoupling decoding from the container; OggSource is the
// Ogg-backed implementation. Stream drives the decode loop: it consumes
// the headers, owns a libopus multistream decoder sized from them, and
// yields interleaved float32 frames one at a time.
//
// Typical use:
//
//	s, err := oggopus.NewReader(f, 48000)
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//	for {
//		frame, err := s.Next()
//		if err == io.EOF {
//			break
//		}
//		if err != nil {
//			return err
//		}
//		// frame holds one sample per channel in [-1, 1]
//	}
//
// Entropy decoding is libopus's job (see package opus) and Ogg page
// framing is libogg's (see package ogg); this package only owns the
// Ogg-Opus framing, header layout and buffer management between them.
package oggopus
