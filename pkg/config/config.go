package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
)

type ChannelConfig struct {
	Channel           int     `json:"channel"`
	Direction         string  `json:"direction"`
	Color             string  `json:"color,omitempty"`
	CalibrationScale  float64 `json:"calibration_scale"`
	CalibrationOffset float64 `json:"calibration_offset"`
	Enabled           bool    `json:"enabled"`
}

type MQTTConfig struct {
	Server       string `json:"server"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	ClientID     string `json:"client_id"`
	StateTopic   string `json:"state_topic"`
	ChannelTopic string `json:"channel_topic,omitempty"`
}

type PlotAppConfig struct {
	URL       string `json:"url"`
	APIKey    string `json:"api_key"`
	TimeoutMs int    `json:"timeout_ms,omitempty"`
}

type OutputConfig struct {
	Type       string         `json:"type"`
	IntervalMs int            `json:"interval_ms,omitempty"`
	MQTT       *MQTTConfig    `json:"mqtt,omitempty"`
	PlotApp    *PlotAppConfig `json:"plot_app,omitempty"`
}

type I2CConfig struct {
	Bus     string `json:"bus"`
	Address int    `json:"address"`
}

type LogConfig struct {
	Level      string `json:"level"`
	File       string `json:"file,omitempty"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty"`
	MaxBackups int    `json:"max_backups,omitempty"`
	MaxAgeDays int    `json:"max_age_days,omitempty"`
	Compress   bool   `json:"compress,omitempty"`
}

type Config struct {
	SensorType    string          `json:"sensor_type"` // iio, ads1115 or sim
	IIODevicePath string          `json:"iio_device_path"`
	I2C           I2CConfig       `json:"i2c"`
	SampleRate    int             `json:"sample_rate"`
	Channels      []ChannelConfig `json:"channels"`
	Outputs       []OutputConfig  `json:"outputs"`
	IntervalMs    int             `json:"interval_ms"`
	MetricsListen string          `json:"metrics_listen,omitempty"`
	Log           LogConfig       `json:"log"`
}

// defaultScale normalizes the 12-bit BeagleBone Black ADC range to [0,1].
const defaultScale = 1.0 / 4095.0

func DefaultConfig() Config {
	return Config{
		SensorType:    "iio",
		IIODevicePath: "/sys/bus/iio/devices/iio:device0/in_voltage%d_raw",
		I2C:           I2CConfig{Bus: "2", Address: 0x48},
		SampleRate:    128,
		Channels: []ChannelConfig{
			{Channel: 0, Direction: "+x", Color: "white", CalibrationScale: defaultScale, Enabled: true},
			{Channel: 3, Direction: "-x", Color: "brown", CalibrationScale: defaultScale, Enabled: true},
			{Channel: 5, Direction: "+y", Color: "yellow", CalibrationScale: defaultScale, Enabled: true},
			{Channel: 1, Direction: "-y", Color: "green", CalibrationScale: defaultScale, Enabled: true},
			{Channel: 2, Direction: "+z", Color: "orange", CalibrationScale: defaultScale, Enabled: true},
		},
		Outputs:    []OutputConfig{{Type: "console", IntervalMs: 1000}},
		IntervalMs: 1000,
		Log:        LogConfig{Level: "info"},
	}
}

// LoadFromFlags loads configuration from a JSON file (optional) and flags.
// Flags override values present in the JSON file.
func LoadFromFlags() (Config, error) {
	cfgPath := flag.String("config", "", "Path to JSON config file")
	flagSensorType := flag.String("sensor-type", "", "sensor type: iio|ads1115|sim")
	flagIIOPath := flag.String("iio-path", "", "IIO raw value path template (with %d channel formatter)")
	flagI2CBus := flag.String("i2c-bus", "", "I2C bus (e.g., '2' -> /dev/i2c-2)")
	flagI2CAddStr := flag.String("i2c-address", "", "I2C address (decimal or 0x hex)")
	flagSampleRate := flag.Int("sample-rate", -1, "ADS1115 sample rate (SPS)")
	flagInterval := flag.Int("interval-ms", -1, "Poll interval in ms")
	flagOutputs := flag.String("outputs", "", "Comma-separated outputs (console,mqtt,plotapp)")
	flagOutputIntervals := flag.String("output-intervals", "", "Comma-separated output intervals e.g. console=1000,mqtt=5000")
	flagMQTTServer := flag.String("mqtt-server", "", "MQTT server (tcp://host:port)")
	flagMQTTUser := flag.String("mqtt-user", "", "MQTT username")
	flagMQTTPass := flag.String("mqtt-pass", "", "MQTT password")
	flagClientID := flag.String("mqtt-client-id", "", "MQTT client id")
	flagTopic := flag.String("mqtt-topic", "", "MQTT state topic")
	flagPlotAppURL := flag.String("plotapp-url", "", "Plot app update endpoint URL")
	flagPlotAppKey := flag.String("plotapp-key", "", "Plot app Authorization header value")
	flagMetricsListen := flag.String("metrics-listen", "", "Prometheus listen address (e.g., ':9090')")
	flagLogLevel := flag.String("log-level", "", "Log level: debug|info|warn|error")
	flagLogFile := flag.String("log-file", "", "Log file path (rotated)")

	flag.Parse()

	cfg := DefaultConfig()

	if *cfgPath != "" {
		b, err := os.ReadFile(*cfgPath)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if *flagSensorType != "" {
		cfg.SensorType = *flagSensorType
	}
	if *flagIIOPath != "" {
		cfg.IIODevicePath = *flagIIOPath
	}
	if *flagI2CBus != "" {
		cfg.I2C.Bus = *flagI2CBus
	}
	if *flagI2CAddStr != "" {
		v, err := parseIntOrHex(*flagI2CAddStr)
		if err != nil {
			return cfg, fmt.Errorf("i2c-address: %w", err)
		}
		cfg.I2C.Address = v
	}
	if *flagSampleRate != -1 {
		cfg.SampleRate = *flagSampleRate
	}
	if *flagInterval != -1 {
		cfg.IntervalMs = *flagInterval
	}
	if *flagOutputs != "" {
		parts := parseCSV(*flagOutputs)
		outs := make([]OutputConfig, 0, len(parts))
		for _, p := range parts {
			outs = append(outs, OutputConfig{Type: p, IntervalMs: cfg.IntervalMs})
		}
		cfg.Outputs = outs
	}
	if *flagOutputIntervals != "" {
		intervals, err := parseOutputIntervals(*flagOutputIntervals)
		if err != nil {
			return cfg, fmt.Errorf("output-intervals: %w", err)
		}
		for i := range cfg.Outputs {
			if v, ok := intervals[cfg.Outputs[i].Type]; ok {
				cfg.Outputs[i].IntervalMs = v
			}
		}
	}
	if *flagMQTTServer != "" || *flagMQTTUser != "" || *flagMQTTPass != "" || *flagClientID != "" || *flagTopic != "" {
		mc := findOrAddOutput(&cfg, "mqtt")
		if mc.MQTT == nil {
			mc.MQTT = &MQTTConfig{}
		}
		if *flagMQTTServer != "" {
			mc.MQTT.Server = *flagMQTTServer
		}
		if *flagMQTTUser != "" {
			mc.MQTT.Username = *flagMQTTUser
		}
		if *flagMQTTPass != "" {
			mc.MQTT.Password = *flagMQTTPass
		}
		if *flagClientID != "" {
			mc.MQTT.ClientID = *flagClientID
		}
		if *flagTopic != "" {
			mc.MQTT.StateTopic = *flagTopic
		}
	}
	if *flagPlotAppURL != "" || *flagPlotAppKey != "" {
		pc := findOrAddOutput(&cfg, "plotapp")
		if pc.PlotApp == nil {
			pc.PlotApp = &PlotAppConfig{}
		}
		if *flagPlotAppURL != "" {
			pc.PlotApp.URL = *flagPlotAppURL
		}
		if *flagPlotAppKey != "" {
			pc.PlotApp.APIKey = *flagPlotAppKey
		}
	}
	if *flagMetricsListen != "" {
		cfg.MetricsListen = *flagMetricsListen
	}
	if *flagLogLevel != "" {
		cfg.Log.Level = *flagLogLevel
	}
	if *flagLogFile != "" {
		cfg.Log.File = *flagLogFile
	}

	// ensure outputs have interval default
	for i := range cfg.Outputs {
		if cfg.Outputs[i].IntervalMs == 0 {
			cfg.Outputs[i].IntervalMs = cfg.IntervalMs
		}
	}

	if cfg.SampleRate <= 0 {
		return cfg, errors.New("sample-rate must be > 0")
	}
	if cfg.IntervalMs <= 0 {
		return cfg, errors.New("interval-ms must be > 0")
	}

	return cfg, nil
}

// findOrAddOutput returns the first output of the given type, appending a new
// one (with the global interval) when none is configured yet.
func findOrAddOutput(cfg *Config, typ string) *OutputConfig {
	for i := range cfg.Outputs {
		if strings.EqualFold(cfg.Outputs[i].Type, typ) {
			return &cfg.Outputs[i]
		}
	}
	cfg.Outputs = append(cfg.Outputs, OutputConfig{Type: typ, IntervalMs: cfg.IntervalMs})
	return &cfg.Outputs[len(cfg.Outputs)-1]
}

func parseIntOrHex(s string) (int, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseInt(s[2:], 16, 0)
		return int(v), err
	}
	v, err := strconv.Atoi(s)
	return v, err
}

func parseCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func parseOutputIntervals(s string) (map[string]int, error) {
	out := map[string]int{}
	for _, p := range parseCSV(s) {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("invalid entry %q", p)
		}
		v, err := strconv.Atoi(strings.TrimSpace(kv[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid interval %q: %w", kv[1], err)
		}
		out[strings.TrimSpace(kv[0])] = v
	}
	return out, nil
}
