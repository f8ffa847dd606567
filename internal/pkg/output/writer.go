package output

import (
	"context"

	"github.com/anicoll/upmon/internal/pkg/model"
)

// Writer delivers one change record to a sink.
type Writer interface {
	// Write emits every changed property for the device at devicePath as a
	// single record. Implementations must be safe for concurrent use.
	Write(ctx context.Context, devicePath string, changes model.Changes) error
}
