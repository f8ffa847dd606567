// Package upower subscribes to PropertiesChanged signals for UPower devices
// on the system bus and writes the monitored property changes to a sink.
package upower

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/anicoll/upmon/internal/pkg/config"
	"github.com/anicoll/upmon/internal/pkg/output"
)

// ListenAll runs one listener per device config over the shared connection
// and waits for all of them. A plain errgroup is used on purpose: there is
// no shared cancellable context, so one listener's failure never tears down
// its siblings. The first error is returned once every listener has exited.
func ListenAll(ctx context.Context, conn Conn, configs []*config.DeviceConfig, writer output.Writer) error {
	eg := new(errgroup.Group)
	for _, cfg := range configs {
		l := newListener(conn, cfg, writer)
		eg.Go(func() error {
			err := l.listen(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				l.logger.Error("listener terminated", zap.Error(err))
			}
			return err
		})
	}
	return eg.Wait()
}
