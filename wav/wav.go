// Package wav reads and writes stereo wav streams in blocks of float32
// samples, the format the bridge processes.
package wav

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	numChannels = 2
	pcmFormat   = 1
)

var (
	// ErrUnsupportedBitDepth is returned when unsupported bit depth is used.
	ErrUnsupportedBitDepth = errors.New("only 16, 24 and 32 bit depth is supported")
	// ErrNotStereo is returned when a stream doesn't have two channels.
	ErrNotStereo = errors.New("only stereo is supported")
	// ErrInvalidFile is returned when a stream is not a valid PCM wav.
	ErrInvalidFile = errors.New("wav is not valid")
)

// Reader reads stereo blocks from a wav stream.
type Reader struct {
	decoder    *wav.Decoder
	buf        *audio.IntBuffer
	scale      float32
	sampleRate int
	bitDepth   int
}

// NewReader reads the header of a wav stream. The reader deinterleaves
// at most blockSize samples per channel with every Read.
func NewReader(r io.ReadSeeker, blockSize int) (*Reader, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() || decoder.WavAudioFormat != pcmFormat {
		return nil, ErrInvalidFile
	}
	bitDepth := int(decoder.BitDepth)
	if !supported(bitDepth) {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}
	if decoder.NumChans != numChannels {
		return nil, fmt.Errorf("%w: %d channels", ErrNotStereo, decoder.NumChans)
	}
	return &Reader{
		decoder: decoder,
		buf: &audio.IntBuffer{
			Format:         decoder.Format(),
			Data:           make([]int, blockSize*numChannels),
			SourceBitDepth: bitDepth,
		},
		scale:      scale(bitDepth),
		sampleRate: int(decoder.SampleRate),
		bitDepth:   bitDepth,
	}, nil
}

// SampleRate of the stream.
func (r *Reader) SampleRate() int {
	return r.sampleRate
}

// BitDepth of the stream.
func (r *Reader) BitDepth() int {
	return r.bitDepth
}

// Read fills left and right with the next block and returns the number
// of samples per channel. The last block may be short. io.EOF is
// returned once the stream is exhausted.
func (r *Reader) Read(left, right []float32) (int, error) {
	size := min(len(left), len(right), cap(r.buf.Data)/numChannels)
	r.buf.Data = r.buf.Data[:size*numChannels]
	read, err := r.decoder.PCMBuffer(r.buf)
	if err != nil {
		return 0, err
	}
	if read == 0 {
		return 0, io.EOF
	}
	n := read / numChannels
	for i := 0; i < n; i++ {
		left[i] = float32(r.buf.Data[i*numChannels]) / r.scale
		right[i] = float32(r.buf.Data[i*numChannels+1]) / r.scale
	}
	return n, nil
}

// Writer writes stereo blocks to a wav stream.
type Writer struct {
	encoder *wav.Encoder
	buf     *audio.IntBuffer
	scale   float64
	max     int
}

// NewWriter creates a PCM wav writer. The underlying stream is not
// closed by the writer.
func NewWriter(w io.WriteSeeker, sampleRate, bitDepth int) (*Writer, error) {
	if !supported(bitDepth) {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}
	return &Writer{
		encoder: wav.NewEncoder(w, sampleRate, bitDepth, numChannels, pcmFormat),
		buf: &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: numChannels,
				SampleRate:  sampleRate,
			},
			SourceBitDepth: bitDepth,
		},
		scale: float64(scale(bitDepth)),
		max:   int(int64(1)<<(bitDepth-1) - 1),
	}, nil
}

// Write interleaves left and right and writes them. Samples outside
// [-1, 1] are clipped.
func (w *Writer) Write(left, right []float32) error {
	n := min(len(left), len(right))
	if cap(w.buf.Data) < n*numChannels {
		w.buf.Data = make([]int, n*numChannels)
	}
	w.buf.Data = w.buf.Data[:n*numChannels]
	for i := 0; i < n; i++ {
		w.buf.Data[i*numChannels] = w.quantize(left[i])
		w.buf.Data[i*numChannels+1] = w.quantize(right[i])
	}
	return w.encoder.Write(w.buf)
}

// Close updates the wav header.
func (w *Writer) Close() error {
	return w.encoder.Close()
}

func (w *Writer) quantize(v float32) int {
	s := int(float64(v) * w.scale)
	switch {
	case s > w.max:
		return w.max
	case s < -w.max-1:
		return -w.max - 1
	}
	return s
}

func supported(bitDepth int) bool {
	return bitDepth == 16 || bitDepth == 24 || bitDepth == 32
}

// scale returns the magnitude of full scale for signed integer samples.
func scale(bitDepth int) float32 {
	return float32(int64(1) << (bitDepth - 1))
}
