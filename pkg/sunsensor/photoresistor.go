package sunsensor

import (
	"time"

	"github.com/adcslab/sunvector/pkg/adc"
	"gonum.org/v1/gonum/spatial/r3"
)

// adcReferenceVolts is the BeagleBone Black ADC reference; a normalized
// intensity of 1.0 corresponds to 1.8 V at the pin.
const adcReferenceVolts = 1.8

// Calibration is the fixed linear transform from raw counts to intensity.
// No runtime recalibration: values are set once at construction.
type Calibration struct {
	Scale  float64
	Offset float64
}

// Photoresistor wraps one analog channel together with the direction the
// sensor faces on the cube. Immutable after construction.
type Photoresistor struct {
	channel   int
	color     string
	direction r3.Vec
	cal       Calibration
	src       adc.Source
}

func newPhotoresistor(src adc.Source, channel int, color string, direction r3.Vec, cal Calibration) *Photoresistor {
	return &Photoresistor{channel: channel, color: color, direction: direction, cal: cal, src: src}
}

func (p *Photoresistor) Channel() int      { return p.channel }
func (p *Photoresistor) Color() string     { return p.color }
func (p *Photoresistor) Direction() r3.Vec { return p.direction }

// ReadRaw queries the analog input once. It fails when the channel is
// unreachable or the device reports a value outside its range; retry policy
// belongs to the caller.
func (p *Photoresistor) ReadRaw() (int, error) {
	return p.src.ReadChannel(p.channel)
}

// Normalize maps a raw count to an intensity in [0,1]. Pure and total:
// clamping absorbs any out-of-range input, so calibration behavior is
// testable without hardware.
func (p *Photoresistor) Normalize(raw int) float64 {
	v := (float64(raw) - p.cal.Offset) * p.cal.Scale
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Reading is one channel's result for a single poll cycle. OK is false when
// the read failed; Raw, Intensity and Voltage are zero in that case.
type Reading struct {
	Channel   int       `json:"channel"`
	Color     string    `json:"color,omitempty"`
	Raw       int       `json:"raw"`
	Intensity float64   `json:"intensity"`
	Voltage   float64   `json:"voltage"`
	OK        bool      `json:"ok"`
	Timestamp time.Time `json:"timestamp"`
}
