package output

import "github.com/adcslab/sunvector/pkg/sunsensor"

// Output forwards one poll cycle's estimate to a sink. The core never
// serializes anything itself; wire formats live entirely in the sinks.
type Output interface {
	Publish(vec sunsensor.LightVector, readings []sunsensor.Reading) error
	Close() error
}

// concrete sinks live in subpackages
