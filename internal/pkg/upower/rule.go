package upower

import (
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/anicoll/upmon/internal/pkg/config"
)

const (
	propertiesInterface     = "org.freedesktop.DBus.Properties"
	propertiesChangedMember = "PropertiesChanged"
	propertiesChangedSignal = propertiesInterface + "." + propertiesChangedMember
)

var ErrInvalidPath = errors.New("invalid device object path")

// MatchRule selects PropertiesChanged signals for a single device. One rule
// is derived per device config; it carries no state beyond the path.
type MatchRule struct {
	Interface string
	Member    string
	Path      dbus.ObjectPath
}

// NewMatchRule builds the match rule for a device config, validating the
// object path syntax.
func NewMatchRule(cfg *config.DeviceConfig) (*MatchRule, error) {
	path := dbus.ObjectPath(cfg.Path)
	if !path.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPath, cfg.Path)
	}
	return &MatchRule{
		Interface: propertiesInterface,
		Member:    propertiesChangedMember,
		Path:      path,
	}, nil
}

// Rules builds the match rule for every device config. Called before any
// subscription starts so a malformed path fails the whole process up front.
func Rules(configs []*config.DeviceConfig) ([]*MatchRule, error) {
	rules := make([]*MatchRule, 0, len(configs))
	for _, cfg := range configs {
		rule, err := NewMatchRule(cfg)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// String renders the rule in DBus match-rule syntax.
func (r *MatchRule) String() string {
	return fmt.Sprintf("type='signal',interface='%s',member='%s',path='%s'",
		r.Interface, r.Member, r.Path)
}

// Options expresses the rule as godbus match options for AddMatchSignal and
// RemoveMatchSignal. The signal type is implied by AddMatchSignal.
func (r *MatchRule) Options() []dbus.MatchOption {
	return []dbus.MatchOption{
		dbus.WithMatchInterface(r.Interface),
		dbus.WithMatchMember(r.Member),
		dbus.WithMatchObjectPath(r.Path),
	}
}
