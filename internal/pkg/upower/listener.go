package upower

import (
	"context"
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"

	"github.com/anicoll/upmon/internal/pkg/config"
	"github.com/anicoll/upmon/internal/pkg/model"
	"github.com/anicoll/upmon/internal/pkg/output"
)

var (
	ErrStreamClosed    = errors.New("signal stream closed")
	ErrMalformedSignal = errors.New("malformed PropertiesChanged signal")
)

const signalBufferSize = 16

// Conn is the subset of the bus connection the listeners use.
// *dbus.Conn satisfies it.
type Conn interface {
	AddMatchSignal(options ...dbus.MatchOption) error
	RemoveMatchSignal(options ...dbus.MatchOption) error
	Signal(ch chan<- *dbus.Signal)
	RemoveSignal(ch chan<- *dbus.Signal)
}

// listener monitors the configured properties of a single device.
type listener struct {
	cfg     *config.DeviceConfig
	conn    Conn
	writer  output.Writer
	logger  *zap.Logger
	signals chan *dbus.Signal
}

func newListener(conn Conn, cfg *config.DeviceConfig, writer output.Writer) *listener {
	return &listener{
		cfg:     cfg,
		conn:    conn,
		writer:  writer,
		logger:  zap.L().With(zap.String("device", cfg.Path)),
		signals: make(chan *dbus.Signal, signalBufferSize),
	}
}

func (l *listener) subscribe() (*MatchRule, error) {
	rule, err := NewMatchRule(l.cfg)
	if err != nil {
		return nil, err
	}
	if err := l.conn.AddMatchSignal(rule.Options()...); err != nil {
		return nil, err
	}
	l.conn.Signal(l.signals)
	return rule, nil
}

// listen subscribes to the device's PropertiesChanged signals and writes the
// monitored changes as they arrive. It returns only on a fatal stream or
// sink error, or when ctx is cancelled.
func (l *listener) listen(ctx context.Context) error {
	rule, err := l.subscribe()
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", l.cfg.Path, err)
	}
	defer func() {
		l.conn.RemoveSignal(l.signals)
		_ = l.conn.RemoveMatchSignal(rule.Options()...)
	}()
	l.logger.Info("listening for property changes", zap.String("rule", rule.String()))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sig, ok := <-l.signals:
			if !ok {
				return fmt.Errorf("%s: %w", l.cfg.Path, ErrStreamClosed)
			}
			if err := l.handle(ctx, sig); err != nil {
				return fmt.Errorf("%s: %w", l.cfg.Path, err)
			}
		}
	}
}

func (l *listener) handle(ctx context.Context, sig *dbus.Signal) error {
	// The connection fans every matched signal out to every registered
	// channel; drop anything meant for a sibling device.
	if sig.Path != dbus.ObjectPath(l.cfg.Path) || sig.Name != propertiesChangedSignal {
		return nil
	}
	changed, err := changedProperties(sig)
	if err != nil {
		return err
	}
	changes := l.collectChanges(changed)
	if len(changes) == 0 {
		return nil
	}
	if err := l.writer.Write(ctx, l.cfg.Path, changes); err != nil {
		return fmt.Errorf("write changes: %w", err)
	}
	return nil
}

// collectChanges extracts the monitored targets from the changed-property
// map. A target simply absent from the notification is skipped; a target
// present with the wrong wire type is logged and skipped, keeping the
// listener alive while making the corruption visible.
func (l *listener) collectChanges(changed map[string]dbus.Variant) model.Changes {
	changes := make(model.Changes, len(l.cfg.Targets))
	for _, name := range l.cfg.Targets {
		variant, ok := changed[name]
		if !ok {
			continue
		}
		property, err := model.ParseProperty(name, variant.Value())
		if err != nil {
			l.logger.Error("dropping property with unexpected wire type",
				zap.String("property", name),
				zap.Error(err))
			continue
		}
		changes[name] = property
	}
	return changes
}

// changedProperties decodes the changed-property map out of a
// PropertiesChanged signal body (interface name, changed properties,
// invalidated properties).
func changedProperties(sig *dbus.Signal) (map[string]dbus.Variant, error) {
	if len(sig.Body) < 2 {
		return nil, fmt.Errorf("%w: body has %d fields", ErrMalformedSignal, len(sig.Body))
	}
	changed, ok := sig.Body[1].(map[string]dbus.Variant)
	if !ok {
		return nil, fmt.Errorf("%w: changed properties have type %T", ErrMalformedSignal, sig.Body[1])
	}
	return changed, nil
}
