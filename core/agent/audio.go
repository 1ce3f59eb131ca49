package agent

import (
	"bytes"
	"encoding/binary"
	"time"
)

// Audio format of the voice call frames: mono PCM16LE.
const (
	SampleRate    = 16000
	bitsPerSample = 16
	channels      = 1

	// SilenceThreshold is the loudness, on a 0-255 scale, above which a frame is speech.
	SilenceThreshold = 10
	SilenceDuration  = 2500 * time.Millisecond

	// MinUtteranceSize is the WAV size at or under which an utterance is dropped as noise.
	MinUtteranceSize = 1000

	// PreSpeechPadding is how much quiet audio before the speech is kept in an utterance.
	PreSpeechPadding = 300 * time.Millisecond
	// MaxUtteranceDuration force-ends an utterance that never goes quiet.
	MaxUtteranceDuration = 30 * time.Second
)

// pcmSize returns the size of d of audio.
func pcmSize(d time.Duration) int {
	return int(d*SampleRate/time.Second) * channels * bitsPerSample / 8
}

// Loudness returns the average of |sample|/128 over the PCM16LE frame.
func Loudness(frame []byte) float64 {
	n := len(frame) / 2
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		s := int16(binary.LittleEndian.Uint16(frame[2*i:]))
		v := float64(s)
		if v < 0 {
			v = -v
		}
		sum += v / 128
	}
	return sum / float64(n)
}

// FrameDuration returns how long frame plays at SampleRate.
func FrameDuration(frame []byte) time.Duration {
	samples := len(frame) / 2
	return time.Duration(samples) * time.Second / SampleRate
}

// SilenceDetector ends an utterance after SilenceDuration of quiet audio following speech.
// Time is measured on the audio itself, not on the wall clock.
type SilenceDetector struct {
	noiseDetected bool
	quiet         time.Duration
}

// Feed reports whether the utterance ended with frame.
func (d *SilenceDetector) Feed(frame []byte) bool {
	if Loudness(frame) > SilenceThreshold {
		d.noiseDetected = true
		d.quiet = 0
		return false
	}
	if !d.noiseDetected {
		return false
	}
	d.quiet += FrameDuration(frame)
	return d.quiet >= SilenceDuration
}

func (d *SilenceDetector) NoiseDetected() bool { return d.noiseDetected }

func (d *SilenceDetector) Reset() {
	d.noiseDetected = false
	d.quiet = 0
}

// EncodeWAV wraps mono PCM16LE samples in a RIFF/WAVE container.
func EncodeWAV(pcm []byte) []byte {
	const headerSize = 44
	byteRate := SampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	buf := bytes.NewBuffer(make([]byte, 0, headerSize+len(pcm)))
	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16)) // PCM chunk size
	_ = binary.Write(buf, binary.LittleEndian, uint16(1))  // PCM format
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(buf, binary.LittleEndian, uint32(SampleRate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(byteRate))
	_ = binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(buf, binary.LittleEndian, uint16(bitsPerSample))
	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes()
}

// Speaker returns the TTS voice of the conversation type.
func Speaker(convType string) int {
	if convType == TypeGenerate {
		return 0
	}
	return 1
}
