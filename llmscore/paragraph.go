package llmscore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gy212/cheekai-core/logging"
	"github.com/gy212/cheekai-core/model"
	"github.com/gy212/cheekai-core/provider"
	"github.com/gy212/cheekai-core/telemetry"
	"github.com/gy212/cheekai-core/telemetry/metrics"
)

const (
	batchTimeout        = 120 * time.Second
	sentenceTimeout     = 60 * time.Second
	maxSegmentAttempts  = 3
	llmConcurrencyLimit = 4
)

var retryBackoff = []time.Duration{400 * time.Millisecond, 800 * time.Millisecond}

const batchUnavailableTag = "llm_batch_unavailable_local_fallback"
const retryExhaustedTag = "deepseek_retry_exhausted_local_fallback"

const paragraphSystemPrompt = `You score each numbered text segment for the probability it was written by ` +
	`a large language model. Reply with JSON only: ` +
	`{"segments":[{"chunk_id":i,"probability":p,"confidence":c}, ...]} where p and c are in [0,1].`

// Config bundles the LLM capability and tuning parameters shared by both
// the paragraph batch pass and the sentence fan-out pass.
type Config struct {
	Capability     provider.Capability
	FastModel      string
	ReasoningModel string
	Logger         *logging.Logger
}

type segmentResult struct {
	ChunkID     int      `json:"chunk_id"`
	Probability float64  `json:"probability"`
	Confidence  float64  `json:"confidence"`
}

type batchResponse struct {
	Segments []segmentResult `json:"segments"`
}

// ParagraphBatch sends every paragraph block in one request and overwrites
// the corresponding local baseline score on success. On any failure the
// whole batch falls back to the local baseline with an explanation tag.
func ParagraphBatch(ctx context.Context, blocks []model.TextBlock, baseline []model.SegmentScore, cfg Config) []model.SegmentScore {
	start := time.Now()
	defer func() {
		telemetry.EmitHistogram(metrics.LLMCallDurationMs, time.Since(start), map[string]string{metrics.TagPass: metrics.TagParagraphPass})
	}()

	out := make([]model.SegmentScore, len(baseline))
	copy(out, baseline)

	if cfg.Capability.Call == nil || len(blocks) == 0 {
		return fallbackAll(out)
	}

	prompt := buildParagraphPrompt(blocks)
	telemetry.EmitCounter(metrics.LLMCallsTotal, 1, map[string]string{metrics.TagPass: metrics.TagParagraphPass})

	raw, err := cfg.Capability.Call(ctx, cfg.FastModel, paragraphSystemPrompt, prompt, true, batchTimeout)
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("paragraph batch LLM call failed, falling back to local scores", zap.Error(err))
		}
		return fallbackAll(out)
	}

	parsed, err := parseBatchResponse(raw)
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("paragraph batch response unusable, falling back to local scores", zap.Error(err))
		}
		return fallbackAll(out)
	}

	byChunk := make(map[int]segmentResult, len(parsed.Segments))
	for _, s := range parsed.Segments {
		byChunk[s.ChunkID] = s
	}

	for i := range out {
		if res, ok := byChunk[out[i].ChunkID]; ok {
			fuseLLMResult(&out[i], res.Probability, res.Confidence, []string{cfg.FastModel})
		} else {
			out[i].Explanations = append(out[i].Explanations, batchUnavailableTag)
		}
	}
	return out
}

func buildParagraphPrompt(blocks []model.TextBlock) string {
	var sb strings.Builder
	for _, b := range blocks {
		fmt.Fprintf(&sb, "[chunk_id=%d] %s\n", b.ChunkID, b.Text)
	}
	return sb.String()
}

func parseBatchResponse(raw string) (batchResponse, error) {
	jsonText := raw
	if extracted, ok := provider.ExtractJSON(raw); ok {
		jsonText = extracted
	}
	var parsed batchResponse
	if err := json.Unmarshal([]byte(jsonText), &parsed); err != nil {
		return batchResponse{}, fmt.Errorf("malformed batch response: %w", err)
	}
	if len(parsed.Segments) == 0 {
		return batchResponse{}, fmt.Errorf("batch response contained no segments")
	}
	return parsed, nil
}

func fallbackAll(scores []model.SegmentScore) []model.SegmentScore {
	for i := range scores {
		scores[i].Explanations = append(scores[i].Explanations, batchUnavailableTag)
	}
	return scores
}

// fuseLLMResult applies §4.4.3's fusion rule: the LLM probability dominates
// ai_probability while the local baseline remains visible in
// signals.stylometry for explainability.
func fuseLLMResult(score *model.SegmentScore, prob, confidence float64, models []string) {
	score.AIProbability = clampProbability(prob)
	if confidence > score.Confidence {
		score.Confidence = clampConfidence(confidence)
	}
	score.Signals.LLM = &model.LLMSignal{Prob: clampProbability(prob), Models: models}
}

func clampProbability(p float64) float64 {
	if p < 0.02 {
		return 0.02
	}
	if p > 0.98 {
		return 0.98
	}
	return p
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 0.95 {
		return 0.95
	}
	return c
}
