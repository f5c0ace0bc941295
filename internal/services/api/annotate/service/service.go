// Package service contains annotate workflows
package service

import (
	"context"
	"time"

	"medner/internal/core/entity"
	"medner/internal/core/normalize"
	"medner/internal/core/pipeline"
	pnet "medner/internal/platform/net"
	"medner/internal/services/api/annotate/domain"
)

// Service defines the service contract for annotate
type Service interface{ domain.ServicePort }

// Svc implements the Service interface
type Svc struct {
	ann     *pipeline.Annotator
	events  domain.Recorder // optional, nil means no usage analytics
	modelID string
}

// New creates a new annotate service
func New(ann *pipeline.Annotator, events domain.Recorder) *Svc {
	if ann == nil {
		panic("annotate.Service requires a non nil Annotator")
	}
	modelID := "patterns+lexicon"
	if ann.ModelEnabled() {
		modelID = "onnx"
	}
	return &Svc{ann: ann, events: events, modelID: modelID}
}

// Analyze annotates a single text. Input is sanitized first, so spans in
// the response index into the returned text, not the raw request body
func (s *Svc) Analyze(ctx context.Context, in domain.AnalyzeInput) (domain.AnalyzeResponse, error) {
	res, err := s.ann.AnnotateWithThreshold(ctx, normalize.Sanitize(in.Text), s.threshold(in.ConfidenceThreshold))
	if err != nil {
		return domain.AnalyzeResponse{}, err
	}
	out := s.toResponse(res, in.IncludeSource)
	s.record(ctx, "analyze", 1, tally(res.Entities), s.threshold(in.ConfidenceThreshold), res.ElapsedSeconds)
	return out, nil
}

// Batch annotates each text independently and returns results in input
// order. One empty text yields one empty result, it never fails the batch
func (s *Svc) Batch(ctx context.Context, in domain.BatchInput) (domain.BatchResponse, error) {
	started := time.Now()
	thr := s.threshold(in.ConfidenceThreshold)

	out := domain.BatchResponse{
		Results:    make([]domain.AnalyzeResponse, 0, len(in.Texts)),
		TotalTexts: len(in.Texts),
	}
	var total domain.Tally
	for _, text := range in.Texts {
		res, err := s.ann.AnnotateWithThreshold(ctx, normalize.Sanitize(text), thr)
		if err != nil {
			return domain.BatchResponse{}, err
		}
		out.Results = append(out.Results, s.toResponse(res, in.IncludeSource))
		total = total.Add(tally(res.Entities))
	}
	out.ElapsedSeconds = time.Since(started).Seconds()
	s.record(ctx, "batch", len(in.Texts), total, thr, out.ElapsedSeconds)
	return out, nil
}

// Examples returns canned Italian clinical texts for quick demos
func (s *Svc) Examples(_ context.Context) (domain.ExamplesResponse, error) {
	return domain.ExamplesResponse{Examples: demoTexts}, nil
}

func (s *Svc) threshold(override *float64) float64 {
	if override != nil {
		return *override
	}
	return s.ann.Threshold()
}

func (s *Svc) record(ctx context.Context, endpoint string, texts int, t domain.Tally, thr, elapsed float64) {
	if s.events == nil {
		return
	}
	s.events.Record(ctx, domain.Event{
		Endpoint:  endpoint,
		Texts:     texts,
		Tally:     t,
		Threshold: thr,
		ElapsedMs: int64(elapsed * 1000),
		UserID:    pnet.UserID(ctx),
	})
}

func tally(es []entity.Entity) domain.Tally {
	var t domain.Tally
	t.Entities = len(es)
	for _, e := range es {
		switch e.Label {
		case entity.LabelProblem:
			t.Problems++
		case entity.LabelTreatment:
			t.Treatments++
		case entity.LabelTest:
			t.Tests++
		}
		switch e.Source {
		case entity.SourceModel:
			t.FromModel++
		case entity.SourcePattern:
			t.FromPattern++
		case entity.SourceDictionary:
			t.FromDictionary++
		}
	}
	return t
}

func (s *Svc) toResponse(res pipeline.Result, includeSource bool) domain.AnalyzeResponse {
	out := domain.AnalyzeResponse{
		Text:           res.Text,
		Entities:       make([]domain.Entity, 0, len(res.Entities)),
		TotalEntities:  res.TotalEntities,
		ElapsedSeconds: res.ElapsedSeconds,
		ModelVersion:   s.modelID,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	}
	for _, e := range res.Entities {
		dto := domain.Entity{
			Text:       e.Text,
			Label:      string(e.Label),
			Start:      e.Start,
			End:        e.End,
			Confidence: e.Confidence,
		}
		if includeSource {
			dto.Source = e.Source.String()
		}
		out.Entities = append(out.Entities, dto)
	}
	return out
}

var demoTexts = []domain.Example{
	{
		Title: "Diabete",
		Text:  "Paziente di 65 anni con diabete mellito di tipo 2 in terapia insulinica. Richiesti emocromo completo e glicemia a digiuno.",
	},
	{
		Title: "Cardiologia",
		Text:  "Sospetta angina pectoris, si prescrive elettrocardiogramma sotto sforzo ed ecocardiogramma. Prosegue terapia anticoagulante.",
	},
	{
		Title: "Pneumologia",
		Text:  "Quadro di polmonite bilaterale con febbre alta e dispnea. Eseguita radiografia del torace, avviata terapia antibiotica.",
	},
	{
		Title: "Oncologia",
		Text:  "Carcinoma del colon in follow-up dopo chemioterapia adiuvante. Programmata TAC addome con mezzo di contrasto.",
	},
}
