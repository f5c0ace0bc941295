// Package http provides http transport for annotate
package http

import (
	stdhttp "net/http"

	"medner/internal/modkit/httpkit"
	"medner/internal/platform/net/http/bind"
	"medner/internal/services/api/annotate/domain"
	svc "medner/internal/services/api/annotate/service"
)

// Register mounts annotate endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}
	httpkit.Post(r, "/analyze", h.analyze)
	httpkit.Post(r, "/batch", h.batch)
	httpkit.Get(r, "/examples", h.examples)
}

type handlers struct{ svc svc.Service }

// swagger:route POST /annotate/analyze Annotate annotateAnalyze
// @Summary Annotate one clinical text
// @Tags Annotate
// @Accept json
// @Produce json
// @Param payload body domain.AnalyzeInput true "Text to annotate"
// @Success 200 {object} domain.AnalyzeResponse "ok"
// @Router /annotate/analyze [post]
func (h *handlers) analyze(r *stdhttp.Request) (any, error) {
	in, err := bind.ParseJSON[domain.AnalyzeInput](r)
	if err != nil {
		return nil, err
	}
	return h.svc.Analyze(r.Context(), in)
}

// swagger:route POST /annotate/batch Annotate annotateBatch
// @Summary Annotate up to 100 texts in one call
// @Tags Annotate
// @Accept json
// @Produce json
// @Param payload body domain.BatchInput true "Texts to annotate"
// @Success 200 {object} domain.BatchResponse "ok"
// @Router /annotate/batch [post]
func (h *handlers) batch(r *stdhttp.Request) (any, error) {
	in, err := bind.ParseJSON[domain.BatchInput](r)
	if err != nil {
		return nil, err
	}
	return h.svc.Batch(r.Context(), in)
}

// swagger:route GET /annotate/examples Annotate annotateExamples
// @Summary Demo texts for trying the annotator
// @Tags Annotate
// @Produce json
// @Success 200 {object} domain.ExamplesResponse "ok"
// @Router /annotate/examples [get]
func (h *handlers) examples(r *stdhttp.Request) (any, error) {
	return h.svc.Examples(r.Context())
}
