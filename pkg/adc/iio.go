package adc

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// iioMaxCount is the full scale of the BeagleBone Black 12-bit ADC.
const iioMaxCount = 4095

// IIOSource reads raw counts from the Linux industrial I/O sysfs files
// (in_voltage<N>_raw). pathFmt must contain a %d formatter for the channel.
type IIOSource struct {
	pathFmt string
}

func NewIIO(pathFmt string) *IIOSource {
	return &IIOSource{pathFmt: pathFmt}
}

func (s *IIOSource) ReadChannel(channel int) (int, error) {
	path := fmt.Sprintf(s.pathFmt, channel)
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read channel %d: %w", channel, err)
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		return 0, fmt.Errorf("parse channel %d (%s): %w", channel, path, err)
	}
	if v < 0 || v > iioMaxCount {
		return 0, fmt.Errorf("channel %d: %w: %d", channel, ErrOutOfRange, v)
	}
	return v, nil
}

func (s *IIOSource) Close() error { return nil }
