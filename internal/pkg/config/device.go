package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/anicoll/upmon/internal/pkg/model"
)

var (
	ErrEmptyTargetList      = errors.New("must specify one or more target properties to monitor")
	ErrUnrecognizedProperty = errors.New("unexpected target property")
	ErrOddArgumentCount     = errors.New("invalid aggregate number of path arguments")
)

// DeviceConfig is a single configured device: its DBus object path and the
// properties to monitor on it. Created once at startup and never mutated.
type DeviceConfig struct {
	// Path is the device's DBus object path, stored verbatim. Path syntax is
	// validated later, when the match rule is built.
	Path string
	// Targets are the property names to monitor for this device.
	Targets []string
}

// NewDeviceConfig builds a DeviceConfig from a device path and a
// comma-delimited list of target property names. Every name must be one of
// model.PropertyNames.
func NewDeviceConfig(path, targets string) (*DeviceConfig, error) {
	if targets == "" {
		return nil, ErrEmptyTargetList
	}
	known := model.PropertyNames()
	split := strings.Split(targets, ",")
	for _, target := range split {
		if !lo.Contains(known, target) {
			return nil, fmt.Errorf("%w: %s", ErrUnrecognizedProperty, target)
		}
	}
	return &DeviceConfig{
		Path:    path,
		Targets: split,
	}, nil
}

// DeviceConfigsFromPairs builds DeviceConfigs from a flat list of alternating
// (path, targets) arguments, as collected from repeated --path flags.
func DeviceConfigsFromPairs(args []string) ([]*DeviceConfig, error) {
	if len(args)%2 != 0 {
		return nil, fmt.Errorf("%w: %d", ErrOddArgumentCount, len(args))
	}
	configs := make([]*DeviceConfig, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		cfg, err := NewDeviceConfig(args[i], args[i+1])
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}
