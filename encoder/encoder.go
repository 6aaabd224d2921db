// Package encoder turns captured s16le PCM into the upload formats the
// transcription providers accept.
package encoder

const (
	SampleRate    = 16000
	Channels      = 1
	BitsPerSample = 16
	BlockSize     = 4096
)

// Duration returns the length in seconds of a raw s16le mono buffer.
func Duration(pcm []byte) float64 {
	return float64(len(pcm)/2) / float64(SampleRate)
}
