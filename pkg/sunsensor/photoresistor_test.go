package sunsensor

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

// fakeSource serves canned raw counts and per-channel failures.
type fakeSource struct {
	values map[int]int
	fail   map[int]bool
}

func (f *fakeSource) ReadChannel(ch int) (int, error) {
	if f.fail[ch] {
		return 0, errors.New("channel unreachable")
	}
	v, ok := f.values[ch]
	if !ok {
		return 0, errors.New("no such channel")
	}
	return v, nil
}

func (f *fakeSource) Close() error { return nil }

func TestNormalizeClampsAndNeverFails(t *testing.T) {
	p := newPhotoresistor(nil, 0, "", r3.Vec{X: 1}, Calibration{Scale: 1.0 / 4095.0})

	tests := []struct {
		raw  int
		want float64
	}{
		{0, 0},
		{4095, 1},
		{-50, 0},      // below range clamps to 0
		{100000, 1},   // above range clamps to 1
		{2048, 2048.0 / 4095.0},
	}
	for _, tt := range tests {
		if got := p.Normalize(tt.raw); math.Abs(got-tt.want) > 1e-12 {
			t.Fatalf("Normalize(%d) = %v; want %v", tt.raw, got, tt.want)
		}
	}
}

func TestNormalizeAppliesOffsetAndScale(t *testing.T) {
	p := newPhotoresistor(nil, 0, "", r3.Vec{X: 1}, Calibration{Scale: 1.0 / 2000.0, Offset: 100})

	if got := p.Normalize(1100); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("offset/scale: got %v want 0.5", got)
	}
	// offset pushes small raws negative; clamp absorbs it
	if got := p.Normalize(50); got != 0 {
		t.Fatalf("below offset: got %v want 0", got)
	}
}

func TestNormalizeIsPure(t *testing.T) {
	p := newPhotoresistor(nil, 0, "", r3.Vec{X: 1}, Calibration{Scale: 1.0 / 4095.0})
	a := p.Normalize(1234)
	b := p.Normalize(1234)
	if a != b {
		t.Fatalf("Normalize not deterministic: %v vs %v", a, b)
	}
}

func TestReadRawPropagatesSourceError(t *testing.T) {
	src := &fakeSource{fail: map[int]bool{2: true}}
	p := newPhotoresistor(src, 2, "orange", r3.Vec{Z: 1}, Calibration{Scale: 1})
	if _, err := p.ReadRaw(); err == nil {
		t.Fatalf("expected read error")
	}
}
