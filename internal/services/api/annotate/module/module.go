// Package module wires annotate endpoints into the API
package module

import (
	"net/http"

	modkit "medner/internal/modkit"
	"medner/internal/modkit/httpkit"
	str "medner/internal/platform/strings"

	"medner/internal/core/pipeline"
	"medner/internal/services/api/annotate/domain"
	annhttp "medner/internal/services/api/annotate/http"
	svc "medner/internal/services/api/annotate/service"
)

// Ports are the cross-module dependencies annotate consumes
type Ports struct {
	Annotator *pipeline.Annotator
	Events    domain.Recorder // optional
}

// Module implements the modkit.Module interface
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc svc.Service
}

// New constructs the annotate module. The Annotator port is required
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("annotate"),
		modkit.WithPrefix("/annotate"),
	}, opts...)...)

	ports, ok := b.Ports.(Ports)
	if !ok || ports.Annotator == nil {
		panic("annotate module requires Ports{Annotator}")
	}

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		subrouter: b.Subrouter,
		svc:       svc.New(ports.Annotator, ports.Events),
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		annhttp.Register(r, m.svc)
		if external != nil {
			external(r)
		}
	}

	return m
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return str.MustString(m.name, "annotate") }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }
