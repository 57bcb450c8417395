package commands

import (
	"encoding/binary"
	"io"
)

// writeWAV writes interleaved 16-bit samples as a minimal PCM WAV file:
// a RIFF header, an fmt chunk and one data chunk.
func writeWAV(w io.Writer, samples []int16, channels, sampleRate int) error {
	dataSize := len(samples) * 2
	blockAlign := channels * 2

	header := make([]byte, 0, 44)
	header = append(header, "RIFF"...)
	header = binary.LittleEndian.AppendUint32(header, uint32(36+dataSize))
	header = append(header, "WAVE"...)
	header = append(header, "fmt "...)
	header = binary.LittleEndian.AppendUint32(header, 16)
	header = binary.LittleEndian.AppendUint16(header, 1) // PCM
	header = binary.LittleEndian.AppendUint16(header, uint16(channels))
	header = binary.LittleEndian.AppendUint32(header, uint32(sampleRate))
	header = binary.LittleEndian.AppendUint32(header, uint32(sampleRate*blockAlign))
	header = binary.LittleEndian.AppendUint16(header, uint16(blockAlign))
	header = binary.LittleEndian.AppendUint16(header, 16) // bits per sample
	header = append(header, "data"...)
	header = binary.LittleEndian.AppendUint32(header, uint32(dataSize))

	if _, err := w.Write(header); err != nil {
		return err
	}
	return writeRaw(w, samples)
}

// writeRaw writes interleaved samples as little-endian 16-bit PCM.
func writeRaw(w io.Writer, samples []int16) error {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	_, err := w.Write(buf)
	return err
}
