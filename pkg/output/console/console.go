package console

import (
	"fmt"
	"time"

	"github.com/adcslab/sunvector/pkg/output"
	"github.com/adcslab/sunvector/pkg/sunsensor"
)

type ConsoleOutput struct{}

func NewConsole() output.Output { return &ConsoleOutput{} }

func (c *ConsoleOutput) Publish(vec sunsensor.LightVector, readings []sunsensor.Reading) error {
	fmt.Printf("%s light=(%.4f, %.4f, %.4f) confidence=%.3f\n",
		vec.Timestamp.Format(time.RFC3339), vec.X, vec.Y, vec.Z, vec.Confidence)
	for _, r := range readings {
		fmt.Printf("  channel=%d color=%s raw=%d intensity=%.4f voltage=%.3f ok=%v\n",
			r.Channel, r.Color, r.Raw, r.Intensity, r.Voltage, r.OK)
	}
	return nil
}

func (c *ConsoleOutput) Close() error { return nil }
