package main

import (
	"testing"

	"github.com/adcslab/sunvector/pkg/adc"
	"github.com/adcslab/sunvector/pkg/config"
)

func TestInitOutputsSetsInterval(t *testing.T) {
	cfg := config.Config{IntervalMs: 123, Outputs: []config.OutputConfig{{Type: "console"}}}
	entries, err := initOutputs(&cfg)
	if err != nil {
		t.Fatalf("initOutputs: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries len: %d", len(entries))
	}
	if cfg.Outputs[0].IntervalMs != 123 {
		t.Fatalf("cfg output interval not set, got %d", cfg.Outputs[0].IntervalMs)
	}
	if entries[0].IntervalMs != 123 {
		t.Fatalf("entry interval not set, got %d", entries[0].IntervalMs)
	}
}

func TestInitOutputsUnknownType(t *testing.T) {
	cfg := config.Config{Outputs: []config.OutputConfig{{Type: "carrier-pigeon"}}}
	if _, err := initOutputs(&cfg); err == nil {
		t.Fatalf("expected error for unknown output type")
	}
}

func TestInitOutputsPlotAppNeedsURL(t *testing.T) {
	cfg := config.Config{Outputs: []config.OutputConfig{{Type: "plotapp"}}}
	if _, err := initOutputs(&cfg); err == nil {
		t.Fatalf("expected error for plotapp without url")
	}
}

func TestOpenSourceSim(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.SensorType = "sim"
	src, err := openSource(cfg)
	if err != nil {
		t.Fatalf("openSource(sim): %v", err)
	}
	defer src.Close()
	if _, ok := src.(*adc.SimSource); !ok {
		t.Fatalf("expected *adc.SimSource, got %T", src)
	}
	// every enabled default channel must be readable in sim mode
	for _, ch := range cfg.Channels {
		if _, err := src.ReadChannel(ch.Channel); err != nil {
			t.Fatalf("sim read channel %d: %v", ch.Channel, err)
		}
	}
}

func TestOpenSourceIIO(t *testing.T) {
	cfg := config.DefaultConfig()
	src, err := openSource(cfg)
	if err != nil {
		t.Fatalf("openSource(iio): %v", err)
	}
	defer src.Close()
	if _, ok := src.(*adc.IIOSource); !ok {
		t.Fatalf("expected *adc.IIOSource, got %T", src)
	}
}

func TestOpenSourceUnknownType(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.SensorType = "quantum"
	if _, err := openSource(cfg); err == nil {
		t.Fatalf("expected error for unknown sensor type")
	}
}
