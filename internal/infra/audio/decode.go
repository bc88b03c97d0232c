package audio

import (
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cockroachdb/errors"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"

	"github.com/stemloop/stemloop/internal/domain/set"
)

// Decode loads an audio file and converts it to interleaved signed 16-bit
// PCM at the given rate and channel count. The source format is picked by
// file extension: .wav, .ogg and .mp3 are recognized.
func Decode(path string, rate, channels int) (*set.Track, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	var (
		samples []int16
		srcRate int
		srcCh   int
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".ogg":
		samples, srcRate, srcCh, err = decodeVorbis(f)
	case ".mp3":
		samples, srcRate, srcCh, err = decodeMP3(f)
	case ".wav":
		samples, srcRate, srcCh, err = decodeWAV(f)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%s", path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", path)
	}
	if len(samples) == 0 {
		return nil, errors.Wrapf(ErrEmptyTrack, "%s", path)
	}

	samples, err = remapChannels(samples, srcCh, channels)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to convert %s", path)
	}
	samples = resampleLinear(samples, channels, srcRate, rate)

	frames := len(samples) / channels
	return &set.Track{
		Name:       filepath.Base(path),
		Path:       path,
		PCM:        pcmBytes(samples),
		SampleRate: rate,
		Channels:   channels,
		Duration:   time.Duration(frames) * time.Second / time.Duration(rate),
	}, nil
}

func decodeVorbis(r io.Reader) ([]int16, int, int, error) {
	data, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, 0, 0, err
	}

	samples := make([]int16, len(data))
	for i, v := range data {
		samples[i] = clampSample(float64(v) * 32767)
	}
	return samples, format.SampleRate, format.Channels, nil
}

func decodeMP3(r io.Reader) ([]int16, int, int, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, 0, 0, err
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, 0, 0, err
	}

	// go-mp3 always emits 16-bit little-endian stereo
	raw = raw[:len(raw)&^3]
	samples := make([]int16, len(raw)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(raw[i*2:]))
	}
	return samples, dec.SampleRate(), 2, nil
}

func decodeWAV(f *os.File) ([]int16, int, int, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, 0, errors.New("not a valid WAV file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, 0, err
	}
	return intBufferToPCM(buf), buf.Format.SampleRate, buf.Format.NumChannels, nil
}

// intBufferToPCM scales a go-audio buffer of arbitrary bit depth to 16-bit.
func intBufferToPCM(buf *goaudio.IntBuffer) []int16 {
	samples := make([]int16, len(buf.Data))
	switch buf.SourceBitDepth {
	case 8:
		// 8-bit WAV is unsigned
		for i, v := range buf.Data {
			samples[i] = int16((v - 128) << 8)
		}
	case 24:
		for i, v := range buf.Data {
			samples[i] = int16(v >> 8)
		}
	case 32:
		for i, v := range buf.Data {
			samples[i] = int16(v >> 16)
		}
	default:
		for i, v := range buf.Data {
			samples[i] = clampSample(float64(v))
		}
	}
	return samples
}

// remapChannels converts interleaved samples between channel counts.
// Mono is duplicated to stereo; stereo is averaged down to mono.
func remapChannels(samples []int16, from, to int) ([]int16, error) {
	if from == to {
		return samples, nil
	}

	switch {
	case from == 1 && to == 2:
		out := make([]int16, len(samples)*2)
		for i, v := range samples {
			out[i*2] = v
			out[i*2+1] = v
		}
		return out, nil
	case from == 2 && to == 1:
		out := make([]int16, len(samples)/2)
		for i := range out {
			out[i] = int16((int32(samples[i*2]) + int32(samples[i*2+1])) / 2)
		}
		return out, nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%d-channel source", from)
	}
}

// resampleLinear converts interleaved samples between sample rates using
// linear interpolation. Good enough for musical beds; no filtering.
func resampleLinear(samples []int16, channels, from, to int) []int16 {
	if from == to || len(samples) == 0 {
		return samples
	}

	srcFrames := len(samples) / channels
	dstFrames := int(int64(srcFrames) * int64(to) / int64(from))
	out := make([]int16, dstFrames*channels)

	for i := 0; i < dstFrames; i++ {
		pos := float64(i) * float64(from) / float64(to)
		i0 := int(pos)
		frac := pos - float64(i0)
		i1 := i0 + 1
		if i1 >= srcFrames {
			i1 = srcFrames - 1
		}
		for c := 0; c < channels; c++ {
			a := float64(samples[i0*channels+c])
			b := float64(samples[i1*channels+c])
			out[i*channels+c] = clampSample(a + (b-a)*frac)
		}
	}
	return out
}

// pcmBytes serializes samples as little-endian bytes for the device.
func pcmBytes(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return buf
}

func clampSample(v float64) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
