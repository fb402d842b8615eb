package correction

import (
	"context"
	"strings"
	"time"

	"github.com/oukeidos/tamilfix/internal/apperrors"
	"github.com/oukeidos/tamilfix/internal/gemini"
	"github.com/oukeidos/tamilfix/internal/logger"
	"github.com/rivo/uniseg"
)

const (
	DefaultFallbackConfidence = 0.9
	DefaultModelConfidence    = 0.85

	// SmokePrompt is sent by SmokeTest.
	SmokePrompt = "Say 'Hello' in Tamil"
)

// Outcome labels passed to Observer.ObserveRequest.
const (
	OutcomeModel      = "model"
	OutcomeDictionary = "fallback_dictionary"
	OutcomeDegraded   = "degraded"
	OutcomeError      = "error"
)

// Observer receives per-request measurements. Implementations must be safe
// for concurrent use.
type Observer interface {
	ObserveInput(op Operation, graphemes int)
	ObserveRequest(op Operation, outcome string, elapsed time.Duration)
	ObserveUpstreamError(op Operation, kind apperrors.Kind)
}

type nopObserver struct{}

func (nopObserver) ObserveInput(Operation, int)                     {}
func (nopObserver) ObserveRequest(Operation, string, time.Duration) {}
func (nopObserver) ObserveUpstreamError(Operation, apperrors.Kind)  {}

// Options configures a Service. Zero values select the built-in defaults.
type Options struct {
	Registry           *Registry
	Dictionary         *Dictionary
	FallbackConfidence float64
	ModelConfidence    float64
	Observer           Observer
}

// Service runs correction requests against a Generator. It holds no mutable
// state and may be shared by concurrent requests.
type Service struct {
	gen                gemini.Generator
	registry           *Registry
	dictionary         *Dictionary
	fallbackConfidence float64
	modelConfidence    float64
	observer           Observer
}

// NewService builds a Service. gen may be nil, in which case every remote
// call fails with a configuration error.
func NewService(gen gemini.Generator, opts Options) *Service {
	s := &Service{
		gen:                gen,
		registry:           opts.Registry,
		dictionary:         opts.Dictionary,
		fallbackConfidence: opts.FallbackConfidence,
		modelConfidence:    opts.ModelConfidence,
		observer:           opts.Observer,
	}
	if s.registry == nil {
		s.registry = DefaultRegistry()
	}
	if s.dictionary == nil {
		s.dictionary = DefaultDictionary()
	}
	if s.fallbackConfidence <= 0 {
		s.fallbackConfidence = DefaultFallbackConfidence
	}
	if s.modelConfidence <= 0 {
		s.modelConfidence = DefaultModelConfidence
	}
	if s.observer == nil {
		s.observer = nopObserver{}
	}
	return s
}

// Process validates req, consults the fallback dictionary for spell checks,
// calls the model and derives suggestions from the result.
//
// Only spell_check survives upstream failures: it answers from the dictionary
// or echoes the input with Degraded set. Every other operation returns the
// classified error.
func (s *Service) Process(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}
	tmpl, ok := s.registry.Lookup(req.Operation)
	if !ok {
		return nil, ErrInvalidOperation
	}

	log := logger.FromContext(ctx).With("operation", string(req.Operation))
	graphemes := uniseg.GraphemeClusterCount(req.Text)
	s.observer.ObserveInput(req.Operation, graphemes)

	if req.Operation == OpSpellCheck {
		if fixed, hit := s.dictionary.Lookup(req.Text); hit {
			log.Debug("Served from fallback dictionary", "graphemes", graphemes)
			s.observer.ObserveRequest(req.Operation, OutcomeDictionary, time.Since(start))
			return s.respond(req.Text, fixed, tmpl, s.fallbackConfidence, SourceDictionary, false), nil
		}
	}

	corrected, err := s.generate(ctx, BuildPrompt(tmpl, req.Text))
	if err != nil {
		kind, _ := apperrors.KindOf(err)
		if apperrors.IsUpstream(err) {
			s.observer.ObserveUpstreamError(req.Operation, kind)
		}

		if req.Operation != OpSpellCheck {
			log.Error("Correction failed", "kind", string(kind), "error", err)
			s.observer.ObserveRequest(req.Operation, OutcomeError, time.Since(start))
			return nil, err
		}

		log.Warn("Model unavailable, serving degraded spell check", "kind", string(kind), "error", err)
		s.observer.ObserveRequest(req.Operation, OutcomeDegraded, time.Since(start))
		if fixed, hit := s.dictionary.Lookup(req.Text); hit {
			return s.respond(req.Text, fixed, tmpl, s.fallbackConfidence, SourceDictionary, true), nil
		}
		return s.respond(req.Text, req.Text, tmpl, s.modelConfidence, SourceOriginal, true), nil
	}

	log.Debug("Correction served", "graphemes", graphemes, "changed", Changed(req.Text, corrected))
	s.observer.ObserveRequest(req.Operation, OutcomeModel, time.Since(start))
	return s.respond(req.Text, corrected, tmpl, s.modelConfidence, SourceModel, false), nil
}

func (s *Service) respond(original, corrected string, tmpl Template, confidence float64, src Source, degraded bool) *Response {
	return &Response{
		OriginalText:  original,
		CorrectedText: corrected,
		Suggestions:   Suggestions(original, corrected),
		Errors:        Errors(original, corrected, tmpl.ErrorType),
		Confidence:    confidence,
		Degraded:      degraded,
		Source:        src,
	}
}

func (s *Service) generate(ctx context.Context, prompt string) (string, error) {
	if s.gen == nil {
		return "", apperrors.Config("GEMINI_API_KEY not found in environment variables")
	}
	return s.gen.Generate(ctx, prompt)
}

// SmokeTest sends a fixed prompt and returns the model's reply.
func (s *Service) SmokeTest(ctx context.Context) (string, error) {
	return s.generate(ctx, SmokePrompt)
}

// OperationInfo describes one registered operation.
type OperationInfo struct {
	Name      Operation `json:"name"`
	ErrorType string    `json:"error_type"`
}

// Operations lists the registered operations in name order.
func (s *Service) Operations() []OperationInfo {
	ops := s.registry.Operations()
	out := make([]OperationInfo, 0, len(ops))
	for _, op := range ops {
		t, _ := s.registry.Lookup(op)
		out = append(out, OperationInfo{Name: op, ErrorType: t.ErrorType})
	}
	return out
}
