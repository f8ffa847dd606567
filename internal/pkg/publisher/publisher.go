package publisher

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/anicoll/upmon/internal/pkg/model"
	"github.com/anicoll/upmon/internal/pkg/output"
)

var ErrAlreadyRegistered = errors.New("publisher already registered")

// Publisher fans one change record out to every registered writer. The
// primary writer's error is returned to the caller so listeners see sink
// failures; failures of any other writer are logged and skipped so a flaky
// side channel cannot take a listener down.
type Publisher struct {
	mu      sync.Mutex
	primary string
	writers map[string]output.Writer
}

// New creates a Publisher with its primary writer.
func New(name string, primary output.Writer) *Publisher {
	return &Publisher{
		primary: name,
		writers: map[string]output.Writer{name: primary},
	}
}

// Register adds a secondary writer under a unique name.
func (p *Publisher) Register(name string, writer output.Writer) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.writers[name]; ok {
		return ErrAlreadyRegistered
	}
	p.writers[name] = writer
	return nil
}

func (p *Publisher) Write(ctx context.Context, devicePath string, changes model.Changes) error {
	p.mu.Lock()
	writers := make(map[string]output.Writer, len(p.writers))
	for name, writer := range p.writers {
		writers[name] = writer
	}
	p.mu.Unlock()

	var primaryErr error
	for name, writer := range writers {
		err := writer.Write(ctx, devicePath, changes)
		if err == nil {
			continue
		}
		if name == p.primary {
			primaryErr = err
			continue
		}
		zap.L().Error("failed to publish changes",
			zap.Error(err),
			zap.String("publisher", name),
			zap.String("device", devicePath))
	}
	return primaryErr
}
