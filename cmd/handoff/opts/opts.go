package opts

import (
	"context"

	"github.com/gameforge/handoff/pkg/config"
	"github.com/gameforge/handoff/pkg/log"
	"gitlab.com/tozd/go/errors"
)

// RootOpts contains shared options used by all commands.
type RootOpts struct {
	ConfigPath string
	Debug      bool
	UserLogger *log.UserLogger
}

// LoadConfig loads the project configuration from the configured path.
// Commands that need no config (init, token) never call this.
func (o *RootOpts) LoadConfig(ctx context.Context) (*config.Config, error) {
	if o.ConfigPath == "" {
		return nil, errors.Errorf("no config file given, use --config")
	}
	cfg, err := config.Load(ctx, o.ConfigPath)
	if err != nil {
		return nil, errors.Errorf("loading config: %w", err)
	}
	return cfg, nil
}
