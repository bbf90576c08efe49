package speech

import "encoding/binary"

// WrapPCMInWAV wraps raw PCM16 mono samples in a canonical WAV container.
func WrapPCMInWAV(pcm []byte, sampleRateHz int) []byte {
	const (
		channels      = 1
		bitsPerSample = 16
	)
	blockAlign := channels * bitsPerSample / 8
	byteRate := sampleRateHz * blockAlign
	dataLen := len(pcm)

	header := make([]byte, 44)

	// RIFF chunk descriptor
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+dataLen))
	copy(header[8:12], "WAVE")

	// fmt sub-chunk
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], channels)
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRateHz))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], bitsPerSample)

	// data sub-chunk
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(dataLen))

	return append(header, pcm...)
}

// SilentWAV returns a well-formed WAV of PCM16 silence.
func SilentWAV(sampleRateHz, durationMS int) []byte {
	frames := sampleRateHz * durationMS / 1000
	return WrapPCMInWAV(make([]byte, frames*2), sampleRateHz)
}
