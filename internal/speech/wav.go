package speech

import (
	"bytes"
	"encoding/binary"
)

const (
	pcmSampleRate = 24000
	pcmChannels   = 1
	pcmSampleBits = 16
)

// wrapPCM frames raw 16-bit mono 24kHz PCM into a WAV container, the
// format the TTS model emits.
func wrapPCM(pcm []byte) []byte {
	var buf bytes.Buffer

	byteRate := pcmSampleRate * pcmChannels * pcmSampleBits / 8
	blockAlign := pcmChannels * pcmSampleBits / 8

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(pcmChannels))
	binary.Write(&buf, binary.LittleEndian, uint32(pcmSampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(pcmSampleBits))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes()
}
