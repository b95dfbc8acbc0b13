package pcm

// BytesToSamples decodes little-endian 16-bit PCM bytes into samples.
// Trailing odd bytes are dropped.
func BytesToSamples(b []byte) []int16 {
	n := len(b) / 2
	out := make([]int16, n)
	for i := 0; i < n; i++ {
		out[i] = int16(b[i*2]) | int16(b[i*2+1])<<8
	}
	return out
}

// SamplesToBytes encodes samples as little-endian 16-bit PCM bytes.
func SamplesToBytes(s []int16) []byte {
	out := make([]byte, len(s)*2)
	for i, v := range s {
		out[i*2] = byte(v)
		out[i*2+1] = byte(v >> 8)
	}
	return out
}

// DownmixStereo folds interleaved stereo samples to mono by averaging
// each left/right pair.
func DownmixStereo(s []int16) []int16 {
	n := len(s) / 2
	out := make([]int16, n)
	for i := 0; i < n; i++ {
		l := int32(s[i*2])
		r := int32(s[i*2+1])
		out[i] = int16((l + r) / 2)
	}
	return out
}
