package model

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

var (
	ErrUnknownProperty = errors.New("unknown property")
	ErrTypeMismatch    = errors.New("unexpected property value type")
)

// Property is the newly received value of a single monitorable property of
// the org.freedesktop.UPower.Device interface. String renders it in the
// human-readable form used for output.
//
// Only a small number of properties are currently supported; support for
// additional properties can be implemented by adding them to propertyTable.
// See https://upower.freedesktop.org/docs/Device.html for all available
// properties and their descriptions.
type Property interface {
	fmt.Stringer
	property()
}

type (
	// UpdateTime is seconds since the epoch, rendered as an ISO 8601 UTC
	// timestamp with second precision.
	UpdateTime uint64
	// Online reports whether the power source is connected.
	Online bool
	// TimeToEmpty is an estimate in seconds, rendered as HH:MM:SS.
	TimeToEmpty int64
	// TimeToFull is an estimate in seconds, rendered as HH:MM:SS.
	TimeToFull int64
	// Percentage is the battery charge level.
	Percentage float64
	// IsPresent reports whether the battery is physically present.
	IsPresent bool
	// BatteryState is the UPower charge state code, rendered as its
	// enumerated name.
	BatteryState uint32
)

func (UpdateTime) property()   {}
func (Online) property()       {}
func (TimeToEmpty) property()  {}
func (TimeToFull) property()   {}
func (Percentage) property()   {}
func (IsPresent) property()    {}
func (BatteryState) property() {}

// Changes maps a property name to its newly received value. One Changes map
// is built per received notification and discarded after it is written.
type Changes map[string]Property

// propertyTable is the single source of truth for the monitorable property
// names and their expected wire types. Consulted by both ParseProperty and
// PropertyNames so the list-properties output cannot drift from the parser.
var propertyTable = []struct {
	name  string
	parse func(value any) (Property, bool)
}{
	{"UpdateTime", func(value any) (Property, bool) { t, ok := value.(uint64); return UpdateTime(t), ok }},
	{"Online", func(value any) (Property, bool) { b, ok := value.(bool); return Online(b), ok }},
	{"TimeToEmpty", func(value any) (Property, bool) { t, ok := value.(int64); return TimeToEmpty(t), ok }},
	{"TimeToFull", func(value any) (Property, bool) { t, ok := value.(int64); return TimeToFull(t), ok }},
	{"Percentage", func(value any) (Property, bool) { p, ok := value.(float64); return Percentage(p), ok }},
	{"IsPresent", func(value any) (Property, bool) { b, ok := value.(bool); return IsPresent(b), ok }},
	{"State", func(value any) (Property, bool) { s, ok := value.(uint32); return BatteryState(s), ok }},
}

// ParseProperty converts a raw value from a PropertiesChanged notification
// into a typed Property. The value's runtime type must match the type the
// table expects for name; mismatches are rejected with ErrTypeMismatch,
// never coerced.
func ParseProperty(name string, value any) (Property, error) {
	for _, entry := range propertyTable {
		if entry.name != name {
			continue
		}
		p, ok := entry.parse(value)
		if !ok {
			return nil, fmt.Errorf("%w for %s: %T", ErrTypeMismatch, name, value)
		}
		return p, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownProperty, name)
}

// PropertyNames lists every property that can be monitored, in table order.
func PropertyNames() []string {
	names := make([]string, 0, len(propertyTable))
	for _, entry := range propertyTable {
		names = append(names, entry.name)
	}
	return names
}

func (t UpdateTime) String() string {
	return time.Unix(int64(t), 0).UTC().Format(time.RFC3339)
}

func (b Online) String() string { return strconv.FormatBool(bool(b)) }

func (b IsPresent) String() string { return strconv.FormatBool(bool(b)) }

func (t TimeToEmpty) String() string { return secsToClock(int64(t)) }

func (t TimeToFull) String() string { return secsToClock(int64(t)) }

func (p Percentage) String() string { return strconv.FormatFloat(float64(p), 'f', -1, 64) }

var batteryStateNames = [...]string{
	"Unknown",
	"Charging",
	"Discharging",
	"Empty",
	"FullyCharged",
	"PendingCharge",
	"PendingDischarge",
}

func (s BatteryState) String() string {
	// Unreachable for values produced by ParseProperty from a conforming
	// UPower daemon; anything else is a table bug.
	if int(s) >= len(batteryStateNames) {
		panic(fmt.Sprintf("unexpected value for State: %d", uint32(s)))
	}
	return batteryStateNames[s]
}

// secsToClock renders a duration in seconds as HH:MM:SS. Non-positive
// durations render as 00:00:00.
func secsToClock(s int64) string {
	if s <= 0 {
		return "00:00:00"
	}
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, s%3600/60, s%60)
}
