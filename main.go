package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/adcslab/sunvector/pkg/adc"
	"github.com/adcslab/sunvector/pkg/config"
	"github.com/adcslab/sunvector/pkg/logging"
	"github.com/adcslab/sunvector/pkg/metrics"
	"github.com/adcslab/sunvector/pkg/output"
	"github.com/adcslab/sunvector/pkg/output/console"
	mqttout "github.com/adcslab/sunvector/pkg/output/mqtt"
	"github.com/adcslab/sunvector/pkg/output/plotapp"
	"github.com/adcslab/sunvector/pkg/sunsensor"
)

// simSweepPeriod is how long the simulated sun takes for a full revolution.
const simSweepPeriod = time.Minute

type outputEntry struct {
	Type       string
	Out        output.Output
	IntervalMs int
	last       time.Time
}

func main() {
	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logging:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	src, err := openSource(cfg)
	if err != nil {
		logger.Fatal("open sensor source", zap.Error(err))
	}
	defer src.Close()

	sensor, err := sunsensor.New(src, cfg.Channels, logger)
	if err != nil {
		logger.Fatal("configure sun sensor", zap.Error(err))
	}

	entries, err := initOutputs(&cfg)
	if err != nil {
		logger.Fatal("init outputs", zap.Error(err))
	}
	defer closeOutputs(entries, logger)

	if cfg.MetricsListen != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			if err := http.ListenAndServe(cfg.MetricsListen, mux); err != nil {
				logger.Error("metrics listener", zap.Error(err))
			}
		}()
	}

	logger.Info("starting",
		zap.String("sensor_type", cfg.SensorType),
		zap.Int("interval_ms", cfg.IntervalMs),
		zap.Int("channels", len(cfg.Channels)))

	run(cfg, sensor, entries, logger)
}

func run(cfg config.Config, sensor *sunsensor.SunSensor, entries []*outputEntry, logger *zap.Logger) {
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Duration(cfg.IntervalMs) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-sigc:
			logger.Info("shutting down")
			return
		case now := <-ticker.C:
			vec, readings := sensor.Sample()
			metrics.RecordSample(vec, readings)
			for _, e := range entries {
				if !e.last.IsZero() && now.Sub(e.last) < time.Duration(e.IntervalMs)*time.Millisecond {
					continue
				}
				e.last = now
				if err := e.Out.Publish(vec, readings); err != nil {
					metrics.RecordPublishError(e.Type)
					logger.Error("publish failed", zap.String("output", e.Type), zap.Error(err))
				}
			}
		}
	}
}

func openSource(cfg config.Config) (adc.Source, error) {
	switch cfg.SensorType {
	case "iio", "":
		return adc.NewIIO(cfg.IIODevicePath), nil
	case "ads1115":
		return adc.NewADS1115(cfg.I2C.Bus, cfg.I2C.Address, cfg.SampleRate)
	case "sim":
		dirs := map[int]r3.Vec{}
		for _, ch := range cfg.Channels {
			if !ch.Enabled {
				continue
			}
			dir, err := sunsensor.ParseDirection(ch.Direction)
			if err != nil {
				return nil, fmt.Errorf("channel %d: %w", ch.Channel, err)
			}
			dirs[ch.Channel] = dir
		}
		return adc.NewSim(dirs, simSweepPeriod), nil
	}
	return nil, fmt.Errorf("unknown sensor type %q", cfg.SensorType)
}

func initOutputs(cfg *config.Config) ([]*outputEntry, error) {
	entries := make([]*outputEntry, 0, len(cfg.Outputs))
	for i := range cfg.Outputs {
		oc := &cfg.Outputs[i]
		if oc.IntervalMs == 0 {
			oc.IntervalMs = cfg.IntervalMs
		}
		var (
			out output.Output
			err error
		)
		switch oc.Type {
		case "console":
			out = console.NewConsole()
		case "mqtt":
			mc := config.MQTTConfig{}
			if oc.MQTT != nil {
				mc = *oc.MQTT
			}
			out, err = mqttout.NewMQTT(mc)
		case "plotapp":
			pc := config.PlotAppConfig{}
			if oc.PlotApp != nil {
				pc = *oc.PlotApp
			}
			out, err = plotapp.NewPlotApp(pc)
		default:
			return nil, fmt.Errorf("unknown output type %q", oc.Type)
		}
		if err != nil {
			return nil, fmt.Errorf("output %s: %w", oc.Type, err)
		}
		entries = append(entries, &outputEntry{Type: oc.Type, Out: out, IntervalMs: oc.IntervalMs})
	}
	return entries, nil
}

func closeOutputs(entries []*outputEntry, logger *zap.Logger) {
	for _, e := range entries {
		if err := e.Out.Close(); err != nil {
			logger.Warn("close output", zap.String("output", e.Type), zap.Error(err))
		}
	}
}
