package cmd

import (
	"context"
	"io"

	"github.com/anicoll/upmon/internal/pkg/config"
	"github.com/anicoll/upmon/internal/pkg/output"
	"github.com/anicoll/upmon/internal/pkg/upower"
)

// busConn is what run needs from a bus connection. *dbus.Conn satisfies it.
type busConn interface {
	upower.Conn
	io.Closer
}

// listenFunc matches upower.ListenAll so tests can drive the command
// pipeline without a system bus.
type listenFunc func(ctx context.Context, conn upower.Conn, configs []*config.DeviceConfig, writer output.Writer) error
