package storage

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/san-kum/particles/internal/physics"
)

const (
	// Magic opens every psobj stream.
	Magic uint32 = 0x5E65BEAD

	// Version is the only layout this package reads and writes.
	Version int32 = 1

	// RecordSize is one particle: eight float64 fields and a packed colour.
	RecordSize = 8*8 + 4
)

// Encode writes the psobj header and one big-endian record per particle:
// mass, radius, inverse spring, drag, colour, x, y, vx, vy.
func Encode(w io.Writer, ps []physics.Particle) error {
	bw := bufio.NewWriter(w)
	var head [12]byte
	binary.BigEndian.PutUint32(head[0:], Magic)
	binary.BigEndian.PutUint32(head[4:], uint32(Version))
	binary.BigEndian.PutUint32(head[8:], uint32(int32(len(ps))))
	if _, err := bw.Write(head[:]); err != nil {
		return err
	}

	var rec [RecordSize]byte
	for i := range ps {
		putRecord(rec[:], &ps[i])
		if _, err := bw.Write(rec[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Decode reads one psobj stream. Words before the magic are skipped.
func Decode(r io.Reader) ([]*physics.Particle, error) {
	br := bufio.NewReader(r)
	var word [4]byte
	var offset int64
	for {
		if _, err := io.ReadFull(br, word[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, ErrBadMagic
			}
			return nil, err
		}
		offset += 4
		if binary.BigEndian.Uint32(word[:]) == Magic {
			break
		}
	}

	var head [8]byte
	if _, err := io.ReadFull(br, head[:]); err != nil {
		return nil, &FormatError{Offset: offset, Index: -1, Wrapped: io.ErrUnexpectedEOF}
	}
	offset += 8
	if v := int32(binary.BigEndian.Uint32(head[0:])); v != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}
	n := int32(binary.BigEndian.Uint32(head[4:]))
	if n < 0 {
		return nil, &FormatError{Offset: offset - 4, Index: -1, Wrapped: fmt.Errorf("negative count %d", n)}
	}

	ps := make([]*physics.Particle, 0, min(int(n), 1<<16))
	var rec [RecordSize]byte
	for i := 0; i < int(n); i++ {
		if _, err := io.ReadFull(br, rec[:]); err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return nil, &FormatError{Offset: offset, Index: i, Wrapped: err}
		}
		offset += RecordSize
		ps = append(ps, getRecord(rec[:]))
	}
	return ps, nil
}

func putRecord(b []byte, p *physics.Particle) {
	f := func(off int, v float64) { binary.BigEndian.PutUint64(b[off:], math.Float64bits(v)) }
	f(0, p.Mass)
	f(8, p.Radius)
	f(16, p.InvSpring)
	f(24, p.Drag)
	binary.BigEndian.PutUint32(b[32:], uint32(p.Color.Int32()))
	f(36, p.X)
	f(44, p.Y)
	f(52, p.VX)
	f(60, p.VY)
}

func getRecord(b []byte) *physics.Particle {
	f := func(off int) float64 { return math.Float64frombits(binary.BigEndian.Uint64(b[off:])) }
	return &physics.Particle{
		Mass:      f(0),
		Radius:    f(8),
		InvSpring: f(16),
		Drag:      f(24),
		Color:     physics.ColorFromInt32(int32(binary.BigEndian.Uint32(b[32:]))),
		X:         f(36),
		Y:         f(44),
		VX:        f(52),
		VY:        f(60),
	}
}

// WriteFile encodes ps to path.
func WriteFile(path string, ps []physics.Particle) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, ps); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadFile decodes the psobj file at path.
func ReadFile(path string) ([]*physics.Particle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ps, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ps, nil
}
