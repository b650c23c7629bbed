package console

import (
	"bytes"
	"io"
	"os"
	"testing"
	"time"

	"github.com/adcslab/sunvector/pkg/sunsensor"
)

func captureStdout(f func()) string {
	r, w, _ := os.Pipe()
	stdout := os.Stdout
	os.Stdout = w
	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()
	f()
	_ = w.Close()
	os.Stdout = stdout
	return <-outC
}

func TestConsolePublish(t *testing.T) {
	c := NewConsole()
	ts := time.Date(2025, 9, 19, 14, 41, 54, 0, time.UTC)
	vec := sunsensor.LightVector{X: 0.7682, Y: 0, Z: 0.6402, Confidence: 1, Timestamp: ts}
	readings := []sunsensor.Reading{
		{Channel: 0, Color: "white", Raw: 1600, Intensity: 0.8, Voltage: 1.44, OK: true, Timestamp: ts},
	}
	out := captureStdout(func() { _ = c.Publish(vec, readings) })
	want := "2025-09-19T14:41:54Z light=(0.7682, 0.0000, 0.6402) confidence=1.000\n" +
		"  channel=0 color=white raw=1600 intensity=0.8000 voltage=1.440 ok=true\n"
	if out != want {
		t.Fatalf("console output mismatch:\n got: %q\nwant: %q", out, want)
	}
}
