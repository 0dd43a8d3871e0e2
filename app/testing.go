package app

import (
	"context"
	"testing"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"proxy-rotator/internal/common"
)

// TestApplication wires the full module graph for tests, with overrides
type TestApplication struct {
	tb      testing.TB
	opts    *common.ServiceOptions
	testApp *fxtest.App
	options []fx.Option
}

func NewTestApplication(tb testing.TB, opts ...common.Option) *TestApplication {
	return &TestApplication{
		tb:   tb,
		opts: common.Apply(opts...),
	}
}

// WithOption appends an fx option such as fx.Replace or fx.Populate
func (ta *TestApplication) WithOption(opt fx.Option) *TestApplication {
	ta.options = append(ta.options, opt)
	return ta
}

func (ta *TestApplication) Start(ctx context.Context) error {
	testOptions := []fx.Option{
		Options(ta.opts),
		fx.NopLogger,
		fx.StartTimeout(10 * time.Second),
		fx.StopTimeout(10 * time.Second),
	}
	testOptions = append(testOptions, ta.options...)

	ta.testApp = fxtest.New(ta.tb, testOptions...)
	return ta.testApp.Start(ctx)
}

func (ta *TestApplication) Stop(ctx context.Context) error {
	if ta.testApp != nil {
		return ta.testApp.Stop(ctx)
	}
	return nil
}
