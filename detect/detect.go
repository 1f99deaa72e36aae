package detect

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/gy212/cheekai-core/aggregate"
	"github.com/gy212/cheekai-core/appidentity"
	"github.com/gy212/cheekai-core/dualmode"
	"github.com/gy212/cheekai-core/errors"
	"github.com/gy212/cheekai-core/foundry"
	"github.com/gy212/cheekai-core/llmscore"
	"github.com/gy212/cheekai-core/logging"
	"github.com/gy212/cheekai-core/model"
	"github.com/gy212/cheekai-core/normalize"
	"github.com/gy212/cheekai-core/scoring"
	"github.com/gy212/cheekai-core/segment"
	"github.com/gy212/cheekai-core/telemetry"
	"github.com/gy212/cheekai-core/telemetry/metrics"
)

// Error taxonomy codes, per spec.md §7. CodeProviderTransient/CodeProviderFatal
// mirror provider.ErrorClass and only ever classify a retry decision inside
// llmscore; per the propagation policy neither is returned as an
// ErrorEnvelope.Code here, since C4 failures are always recovered locally.
// CodePartialLLMFailure is likewise non-fatal and surfaced via
// Cost.ProviderBreakdown and per-segment explanation tags rather than a
// returned error.
const (
	CodeInvalidInput      = "INVALID_INPUT"
	CodeBusy              = "BUSY"
	CodeSegmenterError    = "SEGMENTER_ERROR"
	CodeProviderTransient = "PROVIDER_TRANSIENT"
	CodeProviderFatal     = "PROVIDER_FATAL"
	CodePartialLLMFailure = "PARTIAL_LLM_FAILURE"

	llmBatchFallbackTag = "llm_batch_unavailable_local_fallback"
	llmRetryFallbackTag = "deepseek_retry_exhausted_local_fallback"
)

// PreprocessSummary reports normalization/segmentation statistics surfaced
// alongside the aggregation.
type PreprocessSummary struct {
	Language string `json:"language"`
	Chunks   int    `json:"chunks"`
	Redacted int    `json:"redacted"`
}

// ProviderBreakdown reports, per spec.md §7's PARTIAL_LLM_FAILURE note, how
// many LLM-eligible segments fell back to the local baseline.
type ProviderBreakdown struct {
	Attempted int `json:"attempted"`
	Fallback  int `json:"fallback"`
}

// Cost reports token/latency accounting for the detection run.
type Cost struct {
	Tokens            int                `json:"tokens"`
	LatencyMs         int64              `json:"latency_ms"`
	ProviderBreakdown *ProviderBreakdown `json:"provider_breakdown,omitempty"`
}

// FilterSummary reports how many blocks were excluded from aggregation by
// length-based routing or a caller-supplied filter hint (SPEC_FULL.md §9.3).
type FilterSummary struct {
	Filtered int `json:"filtered"`
}

// Response is the wire shape of a completed detect/detect_dual_mode call.
type Response struct {
	Aggregation       model.Aggregation    `json:"aggregation"`
	Segments          []model.SegmentScore `json:"segments"`
	PreprocessSummary PreprocessSummary    `json:"preprocess_summary"`
	Cost              Cost                 `json:"cost"`
	Version           string               `json:"version"`
	RequestID         string               `json:"request_id"`
	DualDetection     *model.DualResult    `json:"dual_detection,omitempty"`
	FilterSummary     *FilterSummary       `json:"filter_summary,omitempty"`
}

// Service wires the pipeline components together and enforces the global
// single-detection-in-flight admission policy (spec.md §5).
type Service struct {
	Identity   *appidentity.Identity
	Logger     *logging.Logger
	HTTPClient *http.Client
	Segmenter  *segment.Segmenter

	busy chan struct{}
}

// NewService builds a Service. A nil HTTPClient gets a default one.
func NewService(identity *appidentity.Identity, logger *logging.Logger, client *http.Client) *Service {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Service{
		Identity:   identity,
		Logger:     logger,
		HTTPClient: client,
		busy:       make(chan struct{}, 1),
	}
}

func (s *Service) acquireBusy() bool {
	select {
	case s.busy <- struct{}{}:
		return true
	default:
		return false
	}
}

func (s *Service) releaseBusy() {
	<-s.busy
}

// Detect runs the pipeline, taking the dual-mode path only when the
// request asks for it.
func (s *Service) Detect(ctx context.Context, req Request) (Response, error) {
	return s.run(ctx, req, req.DualMode)
}

// DetectDualMode always runs the dual-mode coordinator (C6), regardless of
// req.DualMode.
func (s *Service) DetectDualMode(ctx context.Context, req Request) (Response, error) {
	return s.run(ctx, req, true)
}

func (s *Service) run(ctx context.Context, req Request, runDual bool) (Response, error) {
	start := time.Now()
	telemetry.EmitCounter(metrics.DetectRequestsTotal, 1, nil)

	if req.Text == "" {
		return Response{}, errors.NewErrorEnvelope(CodeInvalidInput, "text must not be empty")
	}
	if !validSensitivity(req.Sensitivity) {
		return Response{}, errors.NewErrorEnvelope(CodeInvalidInput, fmt.Sprintf("unknown sensitivity %q", req.Sensitivity))
	}

	if !s.acquireBusy() {
		telemetry.EmitCounter(metrics.DetectBusyRejectsTotal, 1, nil)
		return Response{}, errors.NewErrorEnvelope(CodeBusy, "a detection is already in flight")
	}
	defer s.releaseBusy()

	requestID := foundry.GenerateCorrelationID()
	if s.Logger != nil {
		s.Logger.Info("detect started", zap.String("request_id", requestID), zap.String("stage", "normalize"))
	}

	normalized := normalize.Normalize(req.Text)
	language := normalize.DetectLanguage(normalized)
	tokens := normalize.EstimateTokens(normalized)

	providerName, modelName := ParseProviderSpec(req.Provider)
	capability := BuildCapability(s.Identity, providerName, s.HTTPClient)
	llmCfg := llmscore.Config{Capability: capability, FastModel: modelName, ReasoningModel: modelName, Logger: s.Logger}

	opts := scoring.Options{UsePerplexity: req.UsePerplexity, UseStylometry: req.UseStylometry}

	runParagraph := func(ctx context.Context) dualmode.Pass {
		if s.Logger != nil {
			s.Logger.Info("detect stage", zap.String("request_id", requestID), zap.String("stage", "segment_paragraph"))
		}
		blocks := segment.Paragraphs(normalized)
		baseline := scoreBlocks(blocks, language, opts)
		if s.Logger != nil {
			s.Logger.Info("detect stage", zap.String("request_id", requestID), zap.String("stage", "llm_score_paragraph"))
		}
		scores := llmscore.ParagraphBatch(ctx, blocks, baseline, llmCfg)
		return dualmode.Pass{Blocks: blocks, Scores: scores}
	}

	var resp Response
	filtered := 0

	if runDual {
		var refiner *segment.BoundaryRefiner
		if !SentenceLLMRefineDisabled(s.Identity) && capability.Call != nil {
			refiner = &segment.BoundaryRefiner{Capability: capability, Model: modelName}
		}
		sentenceSegmenter := s.Segmenter
		if sentenceSegmenter == nil {
			sentenceSegmenter = segment.NewSegmenter("", s.HTTPClient, refiner, s.Logger)
		}

		var segErr error
		runSentence := func(ctx context.Context) dualmode.Pass {
			if s.Logger != nil {
				s.Logger.Info("detect stage", zap.String("request_id", requestID), zap.String("stage", "segment_sentence"))
			}
			blocks, err := sentenceSegmenter.Sentences(ctx, normalized, language)
			if err != nil {
				segErr = err
				return dualmode.Pass{}
			}
			baseline := scoreBlocks(blocks, language, opts)
			if s.Logger != nil {
				s.Logger.Info("detect stage", zap.String("request_id", requestID), zap.String("stage", "llm_score_sentence"))
			}
			keptBlocks, scores := llmscore.SentenceFanOut(ctx, blocks, baseline, llmCfg)
			return dualmode.Pass{Blocks: keptBlocks, Scores: scores}
		}

		paragraphPass, sentencePass := dualmode.RunPasses(ctx, runParagraph, runSentence)
		if segErr != nil {
			return Response{}, errors.NewErrorEnvelope(CodeSegmenterError, "sentence segmentation failed").WithOriginal(segErr)
		}
		filtered = countFiltered(sentencePass.Blocks)

		dualResult := dualmode.Compare(paragraphPass, sentencePass, req.Sensitivity)

		resp = buildResponse(dualResult.Fused, paragraphPass.Scores, language, len(paragraphPass.Blocks), tokens, requestID, s.Identity)
		resp.DualDetection = &dualResult
		resp.Cost.ProviderBreakdown = providerBreakdown(capability.Call != nil, paragraphPass.Scores, sentencePass.Scores)
	} else {
		paragraphPass := runParagraph(ctx)
		agg := aggregate.Aggregate(paragraphPass.Scores, req.Sensitivity)
		resp = buildResponse(agg, paragraphPass.Scores, language, len(paragraphPass.Blocks), tokens, requestID, s.Identity)
		resp.Cost.ProviderBreakdown = providerBreakdown(capability.Call != nil, paragraphPass.Scores)
	}

	if filtered > 0 {
		resp.FilterSummary = &FilterSummary{Filtered: filtered}
	}
	resp.Cost.LatencyMs = time.Since(start).Milliseconds()
	telemetry.EmitHistogram(metrics.DetectDurationMs, time.Since(start), nil)

	return resp, nil
}

func scoreBlocks(blocks []model.TextBlock, language string, opts scoring.Options) []model.SegmentScore {
	out := make([]model.SegmentScore, len(blocks))
	for i, b := range blocks {
		out[i] = scoring.Score(b, language, opts)
	}
	return out
}

// countFiltered counts blocks the sentence pass excluded from aggregation
// because they fell below the minimum-length threshold (SPEC_FULL.md §9.3).
func countFiltered(blocks []model.TextBlock) int {
	n := 0
	for _, b := range blocks {
		if b.Label == model.LabelFiltered {
			n++
		}
	}
	return n
}

// providerBreakdown reports how many segments that were eligible for an LLM
// call fell back to the local baseline, per spec.md §7's PARTIAL_LLM_FAILURE
// note. Blocks dropped as too short never reach this function: they're
// excluded from the scores slices by the sentence pass (see countFiltered).
// It returns nil when the request never attempted an LLM call.
func providerBreakdown(callAttempted bool, passes ...[]model.SegmentScore) *ProviderBreakdown {
	if !callAttempted {
		return nil
	}
	b := &ProviderBreakdown{}
	for _, scores := range passes {
		for _, s := range scores {
			b.Attempted++
			for _, e := range s.Explanations {
				if e == llmBatchFallbackTag || e == llmRetryFallbackTag {
					b.Fallback++
					break
				}
			}
		}
	}
	return b
}

func buildResponse(agg model.Aggregation, scores []model.SegmentScore, language string, chunks, tokens int, requestID string, identity *appidentity.Identity) Response {
	version := "dev"
	if identity != nil {
		version = identity.ServiceName()
	}
	return Response{
		Aggregation: agg,
		Segments:    scores,
		PreprocessSummary: PreprocessSummary{
			Language: language,
			Chunks:   chunks,
			Redacted: 0,
		},
		Cost:      Cost{Tokens: tokens},
		Version:   version,
		RequestID: requestID,
	}
}

func validSensitivity(s model.Sensitivity) bool {
	switch s {
	case model.SensitivityLow, model.SensitivityMedium, model.SensitivityHigh:
		return true
	default:
		return false
	}
}
