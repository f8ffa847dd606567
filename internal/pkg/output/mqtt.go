package output

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"github.com/anicoll/upmon/internal/pkg/config"
	"github.com/anicoll/upmon/internal/pkg/model"
)

var errMqttTimeout = errors.New("mqtt publish timed out")

// MqttWriter mirrors change records to an MQTT broker, one JSON state message
// per record on <topic-prefix>/<device-slug>/state.
type MqttWriter struct {
	client paho_mqtt.Client
	prefix string
	logger *zap.Logger
}

// NewMqttWriter connects to the configured broker.
func NewMqttWriter(cfg *config.MqttConfig) (*MqttWriter, error) {
	opts := paho_mqtt.NewClientOptions().
		AddBroker(cfg.Host).
		SetClientID("upmon").
		SetUsername(cfg.Username).
		SetPassword(cfg.Password)

	client := paho_mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(time.Second * 5) {
		return nil, errors.New("unable to connect in time")
	}
	if err := token.Error(); err != nil {
		return nil, err
	}

	return &MqttWriter{
		client: client,
		prefix: cfg.TopicPrefix,
		logger: zap.L(),
	}, nil
}

func (w *MqttWriter) Write(_ context.Context, devicePath string, changes model.Changes) error {
	payload := make(map[string]string, len(changes))
	for name, property := range changes {
		payload[name] = property.String()
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	topic := fmt.Sprintf("%s/%s/state", w.prefix, slug.Make(devicePath))
	w.logger.Debug("publishing changes", zap.String("topic", topic), zap.Int("count", len(payload)))

	token := w.client.Publish(topic, 1, false, data)
	if !token.WaitTimeout(time.Second * 10) {
		return errMqttTimeout
	}
	return token.Error()
}
