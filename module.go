package eventchannel

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module returns an fx module providing a *Registry whose channels are
// activated when the application starts and deactivated when it stops.
// A *zap.Logger or *Metrics in the container is picked up when present.
func Module(opts ...Option) fx.Option {
	return fx.Module("eventchannel",
		fx.Provide(provideRegistry(opts)),
		fx.Invoke(registerLifecycle),
	)
}

type registryInput struct {
	fx.In

	Logger  *zap.Logger `optional:"true"`
	Metrics *Metrics    `optional:"true"`
}

func provideRegistry(opts []Option) func(registryInput) *Registry {
	return func(in registryInput) *Registry {
		all := make([]Option, 0, len(opts)+2)
		if in.Logger != nil {
			all = append(all, WithLogger(in.Logger))
		}
		if in.Metrics != nil {
			all = append(all, WithMetrics(in.Metrics))
		}
		all = append(all, opts...)
		return NewRegistry(all...)
	}
}

type lifecycleInput struct {
	fx.In

	LC       fx.Lifecycle
	Registry *Registry
}

func registerLifecycle(in lifecycleInput) {
	in.LC.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			in.Registry.ActivateAll()
			return nil
		},
		OnStop: func(_ context.Context) error {
			in.Registry.DeactivateAll()
			return nil
		},
	})
}
