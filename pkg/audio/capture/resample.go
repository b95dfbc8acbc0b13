package capture

import (
	"fmt"
	"io"

	resampling "github.com/tphakala/go-audio-resampling"

	"github.com/praxislabs/vocalis/pkg/audio/pcm"
)

// Resample wraps src so that it yields samples in dst format. Sample
// rate conversion uses a pure Go resampler; stereo input is downmixed
// to mono before conversion when dst is mono. If src already matches
// dst, src is returned unchanged.
func Resample(src Source, dst pcm.Format) (Source, error) {
	sf := src.Format()
	if sf == dst {
		return src, nil
	}
	if !sf.Valid() || !dst.Valid() {
		return nil, fmt.Errorf("capture: cannot resample %v to %v", sf, dst)
	}
	if dst.Channels == 2 && sf.Channels == 1 {
		return nil, fmt.Errorf("capture: mono to stereo upmix not supported")
	}

	rs := &resampleSource{src: src, dst: dst}
	if sf.Rate != dst.Rate {
		r, err := resampling.New(&resampling.Config{
			InputRate:  float64(sf.Rate),
			OutputRate: float64(dst.Rate),
			Channels:   dst.Channels,
			Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
		})
		if err != nil {
			return nil, fmt.Errorf("capture: create resampler: %w", err)
		}
		rs.resampler = r
	}
	return rs, nil
}

type resampleSource struct {
	src       Source
	dst       pcm.Format
	resampler resampling.Resampler
	pending   []int16
	scratch   []int16
	srcErr    error
}

func (r *resampleSource) Format() pcm.Format {
	return r.dst
}

func (r *resampleSource) Read(buf []int16) (int, error) {
	for len(r.pending) == 0 {
		if r.srcErr != nil {
			return 0, r.srcErr
		}
		if err := r.fill(len(buf)); err != nil && len(r.pending) == 0 {
			return 0, err
		}
	}
	n := copy(buf, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

// fill reads one chunk from the source, converts it, and appends the
// result to the pending buffer.
func (r *resampleSource) fill(want int) error {
	sf := r.src.Format()

	// Estimate how many source samples produce `want` output samples.
	need := want * sf.Rate / r.dst.Rate * sf.Channels
	if need < sf.Channels*64 {
		need = sf.Channels * 64
	}
	if cap(r.scratch) < need {
		r.scratch = make([]int16, need)
	}

	n, err := r.src.Read(r.scratch[:need])
	if err != nil {
		r.srcErr = err
		if n == 0 {
			return err
		}
	}

	in := r.scratch[:n]
	if sf.Channels == 2 && r.dst.Channels == 1 {
		in = pcm.DownmixStereo(in)
	}

	if r.resampler == nil {
		r.pending = append(r.pending, in...)
		return nil
	}

	input := make([]float64, len(in))
	for i, s := range in {
		input[i] = float64(s) / 32768.0
	}
	output, err := r.resampler.Process(input)
	if err != nil {
		return fmt.Errorf("capture: resample: %w", err)
	}
	for _, s := range output {
		v := s * 32767.0
		switch {
		case v > 32767:
			v = 32767
		case v < -32768:
			v = -32768
		}
		r.pending = append(r.pending, int16(v))
	}
	return nil
}

func (r *resampleSource) Close() error {
	if r.srcErr == nil {
		r.srcErr = io.EOF
	}
	return r.src.Close()
}
