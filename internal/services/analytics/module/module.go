// Package module wires the analytics recorder
package module

import (
	modkit "medner/internal/modkit"
	"medner/internal/modkit/httpkit"
	"medner/internal/platform/config"

	"medner/internal/services/analytics/domain"
	"medner/internal/services/analytics/repo"
	svc "medner/internal/services/analytics/service"
)

// Ports exposes the recorder for cross-module wiring
type Ports struct {
	Recorder domain.ServicePort
}

// Module implements the modkit.Module interface. It mounts no routes;
// it exists so the recorder gets built and registered like any module
type Module struct {
	name  string
	ports Ports
}

// FromConfig reads buffering options from ANALYTICS_* keys
func FromConfig(cfg config.Conf) svc.Options {
	c := cfg.Prefix("ANALYTICS_")
	return svc.Options{
		BufferSize: c.MayInt("BUFFER", 1024),
		BatchSize:  c.MayInt("BATCH", 128),
		FlushEvery: c.MayDuration("FLUSH_EVERY", 0),
	}
}

// New constructs the analytics module. Requires deps.CH
func New(deps modkit.Deps, opts svc.Options, mopts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("analytics"),
	}, mopts...)...)

	s := svc.New(repo.NewCH(deps.CH), opts)
	return &Module{name: b.Name, ports: Ports{Recorder: s}}
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(httpkit.Router) {}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return m.name }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return m.ports }
