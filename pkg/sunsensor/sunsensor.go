// Package sunsensor estimates the direction of incident sunlight in body
// coordinates from five photoresistors mounted on the faces of a cube.
package sunsensor

import (
	"fmt"
	"time"

	"github.com/adcslab/sunvector/pkg/adc"
	"github.com/adcslab/sunvector/pkg/config"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"
)

// signalFloor is the peak intensity at which a reading is considered fully
// trustworthy; below it confidence degrades linearly toward zero.
const signalFloor = 0.2

// ConfigError reports a channel configuration the aggregator refuses to run
// with (duplicate direction, missing calibration, unparseable direction).
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return "sun sensor config: " + e.Reason }

// LightVector is the per-cycle estimate: a unit-length direction toward the
// dominant light source, or the zero vector with Confidence 0 when there is
// no usable signal. Confidence in [0,1] reflects how many channels were read
// successfully and how strong the peak intensity was.
type LightVector struct {
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	Z          float64   `json:"z"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

// Vec returns the direction as an r3 vector.
func (v LightVector) Vec() r3.Vec { return r3.Vec{X: v.X, Y: v.Y, Z: v.Z} }

// IsZero reports whether the estimate carries no direction.
func (v LightVector) IsZero() bool { return v.X == 0 && v.Y == 0 && v.Z == 0 }

// axisPair holds the sensors covering one body axis. The flight layout has
// opposed pairs on x and y but a single +z sensor; a nil side is a deliberate
// hardware asymmetry, not a configuration hole.
type axisPair struct {
	pos *Photoresistor
	neg *Photoresistor
}

// SunSensor owns the fixed photoresistor set and turns one round of readings
// into a LightVector. No state is retained between cycles beyond the channel
// configuration, so Sample is idempotent for identical raw inputs.
type SunSensor struct {
	axes  [3]axisPair
	order []*Photoresistor
	total int
	log   *zap.Logger
}

// ParseDirection maps a direction label to its unit vector.
func ParseDirection(s string) (r3.Vec, error) {
	switch s {
	case "+x", "x":
		return r3.Vec{X: 1}, nil
	case "-x":
		return r3.Vec{X: -1}, nil
	case "+y", "y":
		return r3.Vec{Y: 1}, nil
	case "-y":
		return r3.Vec{Y: -1}, nil
	case "+z", "z":
		return r3.Vec{Z: 1}, nil
	case "-z":
		return r3.Vec{Z: -1}, nil
	}
	return r3.Vec{}, fmt.Errorf("unknown direction %q", s)
}

// New builds the aggregator from the enabled channel configs. It fails with
// *ConfigError rather than running with an ill-defined axis mapping.
func New(src adc.Source, channels []config.ChannelConfig, log *zap.Logger) (*SunSensor, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &SunSensor{log: log}
	seen := map[int]bool{}
	for _, ch := range channels {
		if !ch.Enabled {
			continue
		}
		if seen[ch.Channel] {
			return nil, &ConfigError{Reason: fmt.Sprintf("channel %d configured twice", ch.Channel)}
		}
		seen[ch.Channel] = true
		if ch.CalibrationScale == 0 {
			return nil, &ConfigError{Reason: fmt.Sprintf("channel %d: missing calibration scale", ch.Channel)}
		}
		dir, err := ParseDirection(ch.Direction)
		if err != nil {
			return nil, &ConfigError{Reason: fmt.Sprintf("channel %d: %v", ch.Channel, err)}
		}
		p := newPhotoresistor(src, ch.Channel, ch.Color, dir, Calibration{
			Scale:  ch.CalibrationScale,
			Offset: ch.CalibrationOffset,
		})
		axis, positive := axisSlot(dir)
		slot := &s.axes[axis].pos
		if !positive {
			slot = &s.axes[axis].neg
		}
		if *slot != nil {
			return nil, &ConfigError{Reason: fmt.Sprintf("direction %s assigned to channels %d and %d",
				ch.Direction, (*slot).channel, ch.Channel)}
		}
		*slot = p
	}
	if len(seen) < 2 {
		return nil, &ConfigError{Reason: "need at least 2 enabled channels"}
	}
	// fixed read order: x+, x-, y+, y-, z+, z- so cycles are reproducible
	for i := range s.axes {
		if p := s.axes[i].pos; p != nil {
			s.order = append(s.order, p)
		}
		if p := s.axes[i].neg; p != nil {
			s.order = append(s.order, p)
		}
	}
	s.total = len(s.order)
	return s, nil
}

func axisSlot(dir r3.Vec) (axis int, positive bool) {
	switch {
	case dir.X != 0:
		return 0, dir.X > 0
	case dir.Y != 0:
		return 1, dir.Y > 0
	default:
		return 2, dir.Z > 0
	}
}

// Sample polls every channel once and computes the light vector. A failed
// channel contributes zero intensity and a confidence penalty but never
// aborts the cycle: partial data beats none. Sample itself never fails;
// total darkness and all-channels-dead both degrade to the zero vector with
// confidence 0.
func (s *SunSensor) Sample() (LightVector, []Reading) {
	now := time.Now()
	intensities := make(map[*Photoresistor]float64, s.total)
	readings := make([]Reading, 0, s.total)
	healthy := 0
	peak := 0.0

	for _, p := range s.order {
		r := Reading{Channel: p.channel, Color: p.color, Timestamp: now}
		raw, err := p.ReadRaw()
		if err != nil {
			s.log.Warn("channel read failed",
				zap.Int("channel", p.channel),
				zap.String("color", p.color),
				zap.Error(err))
		} else {
			in := p.Normalize(raw)
			r.Raw = raw
			r.Intensity = in
			r.Voltage = in * adcReferenceVolts
			r.OK = true
			intensities[p] = in
			healthy++
			if in > peak {
				peak = in
			}
		}
		readings = append(readings, r)
	}

	zero := LightVector{Timestamp: now}
	if healthy < 2 {
		// a single reading cannot bound any axis
		s.log.Warn("insufficient healthy channels", zap.Int("healthy", healthy))
		return zero, readings
	}
	if peak == 0 {
		s.log.Debug("no light signal")
		return zero, readings
	}

	var raw r3.Vec
	for i := range s.axes {
		// opposed pair: pos - neg; single sensor: its intensity signed by
		// the facing direction (no synthetic opposite reading)
		c := 0.0
		if p := s.axes[i].pos; p != nil {
			c += intensities[p]
		}
		if p := s.axes[i].neg; p != nil {
			c -= intensities[p]
		}
		switch i {
		case 0:
			raw.X = c
		case 1:
			raw.Y = c
		case 2:
			raw.Z = c
		}
	}

	scaled := r3.Scale(1/peak, raw)
	norm := r3.Norm(scaled)
	if norm == 0 {
		// perfectly cancelling opposite intensities: defined, not an error
		s.log.Debug("degenerate signal, opposing intensities cancel")
		return zero, readings
	}
	unit := r3.Scale(1/norm, scaled)

	confidence := float64(healthy) / float64(s.total)
	if strength := peak / signalFloor; strength < 1 {
		confidence *= strength
	}

	return LightVector{
		X:          unit.X,
		Y:          unit.Y,
		Z:          unit.Z,
		Confidence: confidence,
		Timestamp:  now,
	}, readings
}
