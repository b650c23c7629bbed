package mqtt

import (
	"encoding/json"
	"fmt"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/adcslab/sunvector/pkg/config"
	"github.com/adcslab/sunvector/pkg/output"
	"github.com/adcslab/sunvector/pkg/sunsensor"
)

const (
	DefaultServer      = "tcp://localhost:1883"
	DefaultClientID    = "sunvector-client"
	DefaultStateTopic  = "sunvector/state"
	perChannelTopicFmt = "sunvector/channel/%d"
)

type MQTTOutput struct {
	client       mqtt.Client
	stateTopic   string
	channelTopic string
}

func NewMQTT(cfg config.MQTTConfig) (output.Output, error) {
	server := cfg.Server
	if server == "" {
		server = DefaultServer
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = DefaultClientID
	}
	opts := mqtt.NewClientOptions().AddBroker(server).SetClientID(clientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}

	st := cfg.StateTopic
	if st == "" {
		st = DefaultStateTopic
	}
	return &MQTTOutput{client: client, stateTopic: st, channelTopic: cfg.ChannelTopic}, nil
}

func (m *MQTTOutput) Publish(vec sunsensor.LightVector, readings []sunsensor.Reading) error {
	payload := map[string]interface{}{
		"x":          vec.X,
		"y":          vec.Y,
		"z":          vec.Z,
		"confidence": vec.Confidence,
		"timestamp":  vec.Timestamp,
		"channels":   readings,
	}
	if err := m.publishJSON(m.stateTopic, payload); err != nil {
		return err
	}

	// optional per-channel topics for dashboards that chart one face each
	if m.channelTopic != "" {
		for _, r := range readings {
			topic := m.channelTopic
			if strings.Contains(topic, "%d") {
				topic = fmt.Sprintf(topic, r.Channel)
			} else {
				topic = fmt.Sprintf(perChannelTopicFmt, r.Channel)
			}
			if err := m.publishJSON(topic, r); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *MQTTOutput) publishJSON(topic string, payload interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	token := m.client.Publish(topic, 0, false, b)
	token.Wait()
	return token.Error()
}

func (m *MQTTOutput) Close() error {
	if m.client != nil {
		m.client.Disconnect(250)
	}
	return nil
}
