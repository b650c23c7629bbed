// Package adc abstracts the analog inputs the photoresistors are wired to.
// The core only depends on Source; the concrete backend (IIO sysfs, ADS1115
// over I2C, or a simulator) is picked at startup.
package adc

import "errors"

// ErrOutOfRange reports a raw count outside the device's representable range.
var ErrOutOfRange = errors.New("raw value out of device range")

// Source reads raw counts from numbered analog channels. A read either
// returns promptly or fails; retry policy belongs to the caller.
type Source interface {
	ReadChannel(channel int) (int, error)
	Close() error
}
