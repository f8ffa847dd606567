package config

import (
	"github.com/caarlos0/env/v11"
)

// Config carries everything the monitor needs at startup. It is assembled
// once in cmd from CLI flags and the environment and never mutated.
type Config struct {
	Devices    []*DeviceConfig
	Output     *OutputConfig
	Mqtt       *MqttConfig
	LogLevel   string
	PrintRules bool
}

// OutputConfig controls the line-oriented output sink.
type OutputConfig struct {
	// FilePath is appended to when set; standard output is used otherwise.
	FilePath string
	// Separator sits between each property name and its value.
	Separator string
	// Delimiter joins property-value pairs on a line.
	Delimiter string
	// Timestamp prefixes each line with an ISO 8601 timestamp.
	Timestamp bool
}

// MqttConfig enables the optional MQTT sink when Host is set. Broker
// credentials are normally supplied through the environment so they stay out
// of argv.
type MqttConfig struct {
	Host        string `env:"UPMON_MQTT_HOST"`
	Username    string `env:"UPMON_MQTT_USER"`
	Password    string `env:"UPMON_MQTT_PASS"`
	TopicPrefix string `env:"UPMON_MQTT_TOPIC_PREFIX" envDefault:"upmon"`
}

// MqttFromEnv reads MQTT defaults from UPMON_MQTT_* environment variables.
func MqttFromEnv() (*MqttConfig, error) {
	cfg := &MqttConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (m *MqttConfig) Enabled() bool {
	return m != nil && m.Host != ""
}
