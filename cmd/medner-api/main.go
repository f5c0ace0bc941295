// @title         MedNER API
// @version       0.1.0
// @description   Clinical entity annotation for Italian medical text

package main

import (
	"context"

	"medner/internal/platform/config"
	"medner/internal/platform/logger"
	phttp "medner/internal/platform/net/http"
	"medner/internal/platform/store"

	"medner/internal/core/lexicon"
	"medner/internal/core/model"
	"medner/internal/core/patterns"
	"medner/internal/core/pipeline"

	"medner/internal/services/api"
	metahttp "medner/internal/services/api/meta/http"
)

func main() {
	// service-scoped config for HTTP etc (CORE_API_*)
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	pgCfg := root.Prefix("SERVICE_PGSQL_")      // pgCfg lives under SERVICE_PGSQL_*
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_") // chCfg lives under SERVICE_CLICKHOUSE_*
	nerCfg := root.Prefix("NER_")               // neural model files live under NER_*

	// bring up logging early
	l := logger.Get()

	// stores are optional: PG backs api keys, CH backs usage analytics
	pgEnabled := pgCfg.MayBool("ENABLED", false)
	chEnabled := chCfg.MayBool("ENABLED", false)

	cfg := store.Config{AppName: "medner-api"}
	if pgEnabled {
		cfg.PG = store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", true),
		}
	}
	if chEnabled {
		cfg.CH = store.CHConfig{
			Enabled: true,
			URL:     chCfg.MustString("DBURL"),
		}
	}

	st, err := store.Open(context.Background(), cfg, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// detection sources
	pp, err := patterns.Load()
	if err != nil {
		l.Panic().Err(err).Msg("pattern rules failed to load")
	}
	lp, err := lexicon.Load()
	if err != nil {
		l.Panic().Err(err).Msg("lexicon terms failed to load")
	}

	var port model.Port
	modelEnabled := false
	if dir := nerCfg.MayString("MODEL_DIR", ""); dir != "" {
		port = model.NewONNX(model.ONNXConfig{
			ModelPath:   dir + "/model.onnx",
			VocabPath:   dir + "/vocab.txt",
			LabelsPath:  dir + "/labels.json",
			LibraryPath: nerCfg.MayString("ONNX_LIB", ""),
			Lowercase:   nerCfg.MayBool("LOWERCASE", true),
			MaxSeqLen:   nerCfg.MayInt("MAX_SEQ_LEN", 512),
		})
		modelEnabled = true
	}

	ann := pipeline.NewWithOptions(pipeline.Deps{
		Model:    port,
		Patterns: patterns.New(pp),
		Lexicon:  lexicon.New(lp),
		Log:      l,
	}, pipeline.Options{
		Threshold: apiCfg.MayFloat64("THRESHOLD", 0),
	})

	// http server (reads CORE_API_PORT / CORE_API_ADDR)
	srv := phttp.NewServer(apiCfg)

	mounted := api.Mount(
		srv.Router(),
		api.Options{
			Config:    apiCfg,
			Store:     st,
			Logger:    l,
			Annotator: ann,
			Pipeline: metahttp.PipelineInfo{
				ModelEnabled:     modelEnabled,
				PatternRules:     len(pp.Rules),
				LexiconTerms:     len(lp.Index),
				DefaultThreshold: ann.Threshold(),
			},
			RequireAuth:    apiCfg.MayBool("AUTH", false) && pgEnabled,
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", true),
		},
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if mounted.Analytics != nil {
		go func() {
			if err := mounted.Analytics.Run(ctx); err != nil && ctx.Err() == nil {
				l.Error().Err(err).Msg("analytics worker stopped")
			}
		}()
	}

	// run
	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
