package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/godbus/dbus/v5"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/anicoll/upmon/internal/pkg/config"
	"github.com/anicoll/upmon/internal/pkg/model"
	"github.com/anicoll/upmon/internal/pkg/output"
	"github.com/anicoll/upmon/internal/pkg/publisher"
	"github.com/anicoll/upmon/internal/pkg/upower"
)

// Swappable in tests.
var (
	listenAll  listenFunc = upower.ListenAll
	connectBus            = func() (busConn, error) { return dbus.ConnectSystemBus() }
)

// MonitorCommand is the main entry point for the upmon CLI. It validates
// configuration and starts one listener per configured device.
func MonitorCommand(ctx *cli.Context) error {
	if ctx.Bool("list-properties") {
		for _, name := range model.PropertyNames() {
			fmt.Fprintln(ctx.App.Writer, name)
		}
		return nil
	}

	devices, err := config.DeviceConfigsFromPairs(ctx.StringSlice("path"))
	if err != nil {
		return err
	}

	mqttCfg, err := config.MqttFromEnv()
	if err != nil {
		return err
	}
	if host := ctx.String("mqtt-host"); host != "" {
		mqttCfg.Host = host
	}
	if user := ctx.String("mqtt-user"); user != "" {
		mqttCfg.Username = user
	}
	if pass := ctx.String("mqtt-pass"); pass != "" {
		mqttCfg.Password = pass
	}
	if prefix := ctx.String("mqtt-topic-prefix"); prefix != "" {
		mqttCfg.TopicPrefix = prefix
	}

	cfg := &config.Config{
		Devices: devices,
		Output: &config.OutputConfig{
			FilePath:  ctx.String("output-file"),
			Separator: ctx.String("separator"),
			Delimiter: ctx.String("delimiter"),
			Timestamp: ctx.Bool("timestamp"),
		},
		Mqtt:       mqttCfg,
		LogLevel:   ctx.String("log-level"),
		PrintRules: ctx.Bool("rules"),
	}

	return run(ctx.Context, cfg, ctx.App.Writer)
}

func run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	// Build every match rule up front so a malformed device path is fatal
	// before any subscription starts.
	rules, err := upower.Rules(cfg.Devices)
	if err != nil {
		return err
	}
	if cfg.PrintRules {
		for _, rule := range rules {
			fmt.Fprintln(out, rule)
		}
		return nil
	}

	logCfg := zap.NewProductionConfig()
	logCfg.Level, err = zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	// Change records own stdout; diagnostics go to stderr.
	logCfg.OutputPaths = []string{"stderr"}
	logCfg.ErrorOutputPaths = []string{"stderr"}
	logCfg.Sampling = nil
	logger := zap.Must(logCfg.Build(zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel)))
	defer func() {
		_ = logger.Sync() // flushes buffer, if any.
	}()
	zap.ReplaceGlobals(logger)

	lineWriter, err := output.NewLineWriter(cfg.Output)
	if err != nil {
		return err
	}
	defer func() {
		_ = lineWriter.Close()
	}()

	pub := publisher.New("line", lineWriter)
	if cfg.Mqtt.Enabled() {
		mqttWriter, err := output.NewMqttWriter(cfg.Mqtt)
		if err != nil {
			return err
		}
		if err := pub.Register("mqtt", mqttWriter); err != nil {
			return err
		}
	}

	conn, err := connectBus()
	if err != nil {
		return err
	}
	defer conn.Close()

	return listenAll(ctx, conn, cfg.Devices, pub)
}
