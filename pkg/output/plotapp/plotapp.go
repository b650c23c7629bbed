// Package plotapp posts light vectors to the remote visualization service.
// The wire format is the plot app's: a two-element JSON array of the vector
// components and the per-channel normalized intensities, authenticated with
// a static Authorization header.
package plotapp

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/adcslab/sunvector/pkg/config"
	"github.com/adcslab/sunvector/pkg/output"
	"github.com/adcslab/sunvector/pkg/sunsensor"
)

const defaultTimeout = 5 * time.Second

type PlotAppOutput struct {
	url    string
	apiKey string
	client *http.Client
}

func NewPlotApp(cfg config.PlotAppConfig) (output.Output, error) {
	if cfg.URL == "" {
		return nil, errors.New("plotapp: url is required")
	}
	timeout := defaultTimeout
	if cfg.TimeoutMs > 0 {
		timeout = time.Duration(cfg.TimeoutMs) * time.Millisecond
	}
	return &PlotAppOutput{
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: timeout},
	}, nil
}

func (p *PlotAppOutput) Publish(vec sunsensor.LightVector, readings []sunsensor.Reading) error {
	values := make([]float64, 0, len(readings))
	for _, r := range readings {
		values = append(values, r.Intensity)
	}
	body, err := json.Marshal([][]float64{{vec.X, vec.Y, vec.Z}, values})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("plotapp request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("plotapp post: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("plotapp post: unexpected status %s", resp.Status)
	}
	return nil
}

func (p *PlotAppOutput) Close() error {
	p.client.CloseIdleConnections()
	return nil
}
