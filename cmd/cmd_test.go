package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/anicoll/upmon/internal/pkg/config"
	"github.com/anicoll/upmon/internal/pkg/output"
	"github.com/anicoll/upmon/internal/pkg/upower"
)

const displayDevicePath = "/org/freedesktop/UPower/devices/DisplayDevice"

// newTestApp mirrors the flag set declared in main.
func newTestApp(out *bytes.Buffer) *cli.App {
	return &cli.App{
		Name:                      "upmon",
		Writer:                    out,
		Action:                    MonitorCommand,
		DisableSliceFlagSeparator: true,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "path", Aliases: []string{"p"}},
			&cli.BoolFlag{Name: "list-properties", Aliases: []string{"l"}},
			&cli.StringFlag{Name: "output-file", Aliases: []string{"o"}},
			&cli.StringFlag{Name: "separator", Aliases: []string{"s"}, Value: "="},
			&cli.StringFlag{Name: "delimiter", Aliases: []string{"d"}, Value: " "},
			&cli.BoolFlag{Name: "rules", Aliases: []string{"r"}},
			&cli.BoolFlag{Name: "timestamp", Aliases: []string{"t"}},
			&cli.StringFlag{Name: "log-level", Value: "INFO"},
			&cli.StringFlag{Name: "mqtt-host"},
			&cli.StringFlag{Name: "mqtt-user"},
			&cli.StringFlag{Name: "mqtt-pass"},
			&cli.StringFlag{Name: "mqtt-topic-prefix"},
		},
	}
}

type nopConn struct{}

func (nopConn) AddMatchSignal(_ ...dbus.MatchOption) error    { return nil }
func (nopConn) RemoveMatchSignal(_ ...dbus.MatchOption) error { return nil }
func (nopConn) Signal(_ chan<- *dbus.Signal)                  {}
func (nopConn) RemoveSignal(_ chan<- *dbus.Signal)            {}
func (nopConn) Close() error                                  { return nil }

func TestMonitorCommand_ListProperties(t *testing.T) {
	out := &bytes.Buffer{}
	app := newTestApp(out)

	require.NoError(t, app.Run([]string{"upmon", "--list-properties"}))
	assert.Equal(t, "UpdateTime\nOnline\nTimeToEmpty\nTimeToFull\nPercentage\nIsPresent\nState\n", out.String())
}

func TestMonitorCommand_PrintRules(t *testing.T) {
	out := &bytes.Buffer{}
	app := newTestApp(out)

	err := app.Run([]string{
		"upmon", "--rules",
		"-p", displayDevicePath, "-p", "TimeToFull",
	})
	require.NoError(t, err)
	assert.Equal(t, "type='signal',interface='org.freedesktop.DBus.Properties',"+
		"member='PropertiesChanged',"+
		"path='/org/freedesktop/UPower/devices/DisplayDevice'\n", out.String())
}

func TestMonitorCommand_OddPathArguments(t *testing.T) {
	app := newTestApp(&bytes.Buffer{})

	err := app.Run([]string{"upmon", "-p", displayDevicePath})
	assert.ErrorIs(t, err, config.ErrOddArgumentCount)
}

func TestMonitorCommand_UnrecognizedProperty(t *testing.T) {
	app := newTestApp(&bytes.Buffer{})

	err := app.Run([]string{"upmon", "-p", displayDevicePath, "-p", "Online,BadTarget"})
	assert.ErrorIs(t, err, config.ErrUnrecognizedProperty)
}

func TestMonitorCommand_CommaListStaysOnePairElement(t *testing.T) {
	// Comma-delimited property lists must not be split into extra slice
	// entries, or pairs would fall out of step.
	app := newTestApp(&bytes.Buffer{})

	err := app.Run([]string{"upmon", "--rules", "-p", displayDevicePath, "-p", "Online,State,Percentage"})
	assert.NoError(t, err)
}

func TestMonitorCommand_InvalidDevicePath(t *testing.T) {
	app := newTestApp(&bytes.Buffer{})

	err := app.Run([]string{"upmon", "-p", "not-an-object-path", "-p", "Online"})
	assert.ErrorIs(t, err, upower.ErrInvalidPath)
}

func TestMonitorCommand_StartsListeners(t *testing.T) {
	originalListen, originalConnect := listenAll, connectBus
	t.Cleanup(func() {
		listenAll, connectBus = originalListen, originalConnect
	})

	var gotConfigs []*config.DeviceConfig
	var gotWriter output.Writer
	listenAll = func(_ context.Context, _ upower.Conn, configs []*config.DeviceConfig, writer output.Writer) error {
		gotConfigs = configs
		gotWriter = writer
		return nil
	}
	connectBus = func() (busConn, error) { return nopConn{}, nil }

	app := newTestApp(&bytes.Buffer{})
	err := app.Run([]string{
		"upmon",
		"-o", filepath.Join(t.TempDir(), "upmon.log"),
		"-p", displayDevicePath, "-p", "Percentage,State",
		"-p", "/org/freedesktop/UPower/devices/line_power_AC", "-p", "Online",
	})
	require.NoError(t, err)

	require.Len(t, gotConfigs, 2)
	assert.Equal(t, []string{"Percentage", "State"}, gotConfigs[0].Targets)
	assert.Equal(t, "/org/freedesktop/UPower/devices/line_power_AC", gotConfigs[1].Path)
	assert.NotNil(t, gotWriter)
}

func TestRun_BadLogLevel(t *testing.T) {
	cfg := &config.Config{
		Output:   &config.OutputConfig{Separator: "=", Delimiter: " "},
		Mqtt:     &config.MqttConfig{},
		LogLevel: "not-a-level",
	}
	err := run(context.Background(), cfg, &bytes.Buffer{})
	assert.Error(t, err)
}
