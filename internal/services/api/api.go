// Package api provides the HTTP API for the application
package api

import (
	"context"

	"medner/internal/platform/config"
	"medner/internal/platform/logger"
	phttp "medner/internal/platform/net/http"
	"medner/internal/platform/store"

	"medner/internal/modkit"
	"medner/internal/modkit/httpkit"
	"medner/internal/modkit/module"
	"medner/internal/modkit/swaggerkit"

	"medner/internal/core/pipeline"
	andom "medner/internal/services/analytics/domain"
	anamod "medner/internal/services/analytics/module"
	anndom "medner/internal/services/api/annotate/domain"
	annmod "medner/internal/services/api/annotate/module"
	metahttp "medner/internal/services/api/meta/http"
	metamod "medner/internal/services/api/meta/module"
	akrepo "medner/internal/services/apikeys/repo"
	aksvc "medner/internal/services/apikeys/service"
)

// Options are the API options
type Options struct {
	Config config.Conf
	Store  *store.Store
	Logger *logger.Logger

	// Annotator is the composed detection pipeline
	Annotator *pipeline.Annotator
	// Pipeline describes the annotator for the meta endpoints
	Pipeline metahttp.PipelineInfo

	// RequireAuth protects annotate routes with PG-backed api keys
	RequireAuth bool

	EnableSwagger  bool
	EnableProfiler bool
}

// Mounted exposes background workers the caller must run
type Mounted struct {
	// Analytics is non nil when the clickhouse seam was configured;
	// run it until shutdown
	Analytics andom.ServicePort
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) Mounted {
	// shared deps for modules
	deps := modkit.Deps{
		Log: *opt.Logger,
		Cfg: opt.Config,
		PG:  opt.Store.PG,
		CH:  opt.Store.CH,
	}

	var out Mounted

	var mods []module.Module

	// usage analytics is optional, keyed off the CH seam
	var events anndom.Recorder
	if deps.CH != nil {
		analytics := anamod.New(deps, anamod.FromConfig(deps.Cfg))
		rec := module.MustPortsOf[anamod.Ports](analytics).Recorder
		out.Analytics = rec
		events = recorderAdapter{rec: rec}
		mods = append(mods, analytics)
	}

	// annotate, optionally behind api key auth
	annOpts := []modkit.Option{
		modkit.WithPorts(annmod.Ports{Annotator: opt.Annotator, Events: events}),
	}
	if opt.RequireAuth {
		if deps.PG == nil {
			panic("api: RequireAuth needs the postgres seam")
		}
		keys := aksvc.New(deps.PG, akrepo.NewPG())
		annOpts = append(annOpts, modkit.WithMiddlewares(
			httpkit.Auth(httpkit.NewPortFunc(keys.TokenFunc())),
		))
	}

	mods = append(mods,
		metamod.New(deps, modkit.WithPorts(metamod.Ports{
			Pipeline: opt.Pipeline,
			CH:       deps.CH,
		})),
		annmod.New(deps, annOpts...),
	)

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		// Swagger + profiler
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its Prefix()
			m.MountRoutes(api)
		}
	})

	return out
}

// recorderAdapter maps annotate usage events onto the analytics domain
type recorderAdapter struct {
	rec andom.ServicePort
}

func (a recorderAdapter) Record(ctx context.Context, ev anndom.Event) {
	a.rec.Record(ctx, andom.Event{
		Endpoint: ev.Endpoint,
		Texts:    ev.Texts,

		Entities:       ev.Tally.Entities,
		Problems:       ev.Tally.Problems,
		Treatments:     ev.Tally.Treatments,
		Tests:          ev.Tally.Tests,
		FromModel:      ev.Tally.FromModel,
		FromPattern:    ev.Tally.FromPattern,
		FromDictionary: ev.Tally.FromDictionary,

		Threshold: ev.Threshold,
		ElapsedMs: ev.ElapsedMs,
		UserID:    ev.UserID,
	})
}
