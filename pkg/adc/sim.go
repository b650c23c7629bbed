package adc

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	simFullScale = 4095
	// the simulated sun sits 30 degrees above the body x-y plane
	simElevation = math.Pi / 6
)

// SimSource synthesizes photoresistor counts from a virtual sun that sweeps
// around the body x-y plane once per period. Each channel responds with the
// cosine of the angle between its mounting direction and the sun, zero when
// the face points away. Lets the whole pipeline run without hardware.
type SimSource struct {
	dirs   map[int]r3.Vec
	period time.Duration
	start  time.Time
	now    func() time.Time
}

func NewSim(dirs map[int]r3.Vec, period time.Duration) *SimSource {
	if period <= 0 {
		period = time.Minute
	}
	return &SimSource{dirs: dirs, period: period, start: time.Now(), now: time.Now}
}

func (s *SimSource) ReadChannel(channel int) (int, error) {
	dir, ok := s.dirs[channel]
	if !ok {
		return 0, fmt.Errorf("sim: unknown channel %d", channel)
	}
	elapsed := s.now().Sub(s.start).Seconds()
	az := 2 * math.Pi * math.Mod(elapsed, s.period.Seconds()) / s.period.Seconds()
	sun := r3.Vec{
		X: math.Cos(simElevation) * math.Cos(az),
		Y: math.Cos(simElevation) * math.Sin(az),
		Z: math.Sin(simElevation),
	}
	response := r3.Dot(dir, sun)
	if response < 0 {
		response = 0
	}
	return int(response * simFullScale), nil
}

func (s *SimSource) Close() error { return nil }
