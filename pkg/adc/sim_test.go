package adc

import (
	"math"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestSimReadChannel(t *testing.T) {
	dirs := map[int]r3.Vec{
		0: {X: 1},
		3: {X: -1},
		2: {Z: 1},
	}
	s := NewSim(dirs, time.Minute)
	// pin time to the start of the sweep: sun at azimuth 0, elevation 30 deg
	s.now = func() time.Time { return s.start }

	got, err := s.ReadChannel(0)
	if err != nil {
		t.Fatalf("read +x: %v", err)
	}
	want := int(math.Cos(simElevation) * simFullScale)
	if got != want {
		t.Fatalf("+x at azimuth 0: got %d want %d", got, want)
	}

	// the -x face points away from the sun: no response
	got, err = s.ReadChannel(3)
	if err != nil {
		t.Fatalf("read -x: %v", err)
	}
	if got != 0 {
		t.Fatalf("-x at azimuth 0: got %d want 0", got)
	}

	got, err = s.ReadChannel(2)
	if err != nil {
		t.Fatalf("read +z: %v", err)
	}
	want = int(math.Sin(simElevation) * simFullScale)
	if got != want {
		t.Fatalf("+z: got %d want %d", got, want)
	}
}

func TestSimUnknownChannel(t *testing.T) {
	s := NewSim(map[int]r3.Vec{0: {X: 1}}, time.Minute)
	if _, err := s.ReadChannel(7); err == nil {
		t.Fatalf("expected error for unknown channel")
	}
}

func TestSimDeterministicAtFixedTime(t *testing.T) {
	dirs := map[int]r3.Vec{0: {X: 1}}
	s := NewSim(dirs, time.Minute)
	at := s.start.Add(17 * time.Second)
	s.now = func() time.Time { return at }

	a, err := s.ReadChannel(0)
	if err != nil {
		t.Fatalf("first read: %v", err)
	}
	b, err := s.ReadChannel(0)
	if err != nil {
		t.Fatalf("second read: %v", err)
	}
	if a != b {
		t.Fatalf("reads at identical time differ: %d vs %d", a, b)
	}
}
