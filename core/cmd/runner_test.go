package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/capitanshop/shopbot/core/config"
	coretelegram "github.com/capitanshop/shopbot/core/telegram"
)

type carrier struct{ cfg *coreconfig.Config }

func (c carrier) CoreConfig() *coreconfig.Config { return c.cfg }

type app struct {
	closed bool
}

func (a *app) TelegramRunOptions() (coretelegram.RunOptions, error) {
	return coretelegram.RunOptions{}, nil
}

func (a *app) Close() error {
	a.closed = true
	return nil
}

func TestRunWiresLifecycle(t *testing.T) {
	t.Setenv("SHOPBOT_TEST_CONFIG", "ignored.yaml")
	a := &app{}
	var hooks []string
	err := Run(Options{
		ConfigEnvVar: "SHOPBOT_TEST_CONFIG",
		LoadConfig: func(path string) (ConfigCarrier, error) {
			assert.Equal(t, "ignored.yaml", path)
			return carrier{cfg: &coreconfig.Config{}}, nil
		},
		Bootstrap:      func(context.Context, ConfigCarrier) (TelegramApp, error) { return a, nil },
		ShutdownLogger: func() error { hooks = append(hooks, "logger"); return nil },
		RunTelegram: func(ctx context.Context, opts coretelegram.RunOptions) error {
			require.NoError(t, opts.OnStart(ctx, coretelegram.Runtime{}))
			hooks = append(hooks, "run")
			return opts.OnStop(ctx, coretelegram.Runtime{})
		},
	})
	require.NoError(t, err)
	assert.True(t, a.closed)
	assert.Equal(t, []string{"run", "logger"}, hooks)
}

func TestRunReportsBootstrapFailure(t *testing.T) {
	err := Run(Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(string) (ConfigCarrier, error) {
			return carrier{cfg: &coreconfig.Config{}}, nil
		},
		Bootstrap: func(context.Context, ConfigCarrier) (TelegramApp, error) {
			return nil, errors.New("db down")
		},
		ShutdownLogger: func() error { return nil },
	})
	assert.ErrorContains(t, err, "db down")

	assert.Error(t, Run(Options{}))
}
