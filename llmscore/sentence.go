package llmscore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gy212/cheekai-core/model"
	"github.com/gy212/cheekai-core/provider"
	"github.com/gy212/cheekai-core/telemetry"
	"github.com/gy212/cheekai-core/telemetry/metrics"
)

const sentenceSystemPrompt = `You score one text segment for the probability it was written by a large ` +
	`language model. Reply with JSON only: {"chunk_id":i,"probability":p,"confidence":c,"uncertainty":u} ` +
	`where p, c, u are in [0,1]. chunk_id, start, end identify the segment and must be echoed back unchanged.`

type singleResult struct {
	ChunkID     int      `json:"chunk_id"`
	Probability float64  `json:"probability"`
	Confidence  float64  `json:"confidence"`
	Uncertainty *float64 `json:"uncertainty,omitempty"`
}

// SentenceFanOut scores sentence blocks concurrently (bounded to
// llmConcurrencyLimit in-flight calls), calling the fast or reasoning model
// depending on length, keeping the local score for short-but-not-tiny
// blocks, and dropping very short blocks from aggregation entirely (spec
// §4.4.2): those blocks are relabeled model.LabelFiltered and returned in
// the blocks slice but excluded from the returned scores. Each LLM call is
// retried up to maxSegmentAttempts times with the fixed back-off table.
func SentenceFanOut(ctx context.Context, blocks []model.TextBlock, baseline []model.SegmentScore, cfg Config) ([]model.TextBlock, []model.SegmentScore) {
	start := time.Now()
	defer func() {
		telemetry.EmitHistogram(metrics.LLMCallDurationMs, time.Since(start), map[string]string{metrics.TagPass: metrics.TagSentencePass})
	}()

	outBlocks := make([]model.TextBlock, len(blocks))
	copy(outBlocks, blocks)

	out := make([]model.SegmentScore, len(baseline))
	copy(out, baseline)
	dropped := make([]bool, len(out))

	sem := make(chan struct{}, llmConcurrencyLimit)
	var wg sync.WaitGroup

	for i, block := range blocks {
		action := RouteForText(block.Text)
		switch action {
		case RouteDrop:
			outBlocks[i].Label = model.LabelFiltered
			dropped[i] = true
			continue
		case RouteLocalOnly:
			continue
		}

		if cfg.Capability.Call == nil {
			out[i].Explanations = append(out[i].Explanations, retryExhaustedTag)
			continue
		}

		modelName := cfg.FastModel
		if action == RouteReasoning {
			modelName = cfg.ReasoningModel
		}

		wg.Add(1)
		go func(idx int, b model.TextBlock, modelName string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			res, models, err := callWithRetry(ctx, cfg, b, modelName)
			if err != nil {
				if cfg.Logger != nil {
					cfg.Logger.Warn("sentence LLM call exhausted retries, using local fallback",
						zap.Int("chunk_id", b.ChunkID), zap.Error(err))
				}
				out[idx].Explanations = append(out[idx].Explanations, retryExhaustedTag)
				return
			}
			fuseLLMResult(&out[idx], res.Probability, res.Confidence, models)
			if res.Uncertainty != nil {
				out[idx].Uncertainty = res.Uncertainty
			}
		}(i, block, modelName)
	}

	wg.Wait()

	kept := make([]model.SegmentScore, 0, len(out))
	for i, s := range out {
		if !dropped[i] {
			kept = append(kept, s)
		}
	}
	return outBlocks, kept
}

// callWithRetry attempts one segment up to maxSegmentAttempts times,
// sleeping the fixed back-off table between attempts. A rate-limit
// classification uses the same table (the longer step is simply the next
// entry in it, per the fixed two-step back-off).
func callWithRetry(ctx context.Context, cfg Config, block model.TextBlock, modelName string) (singleResult, []string, error) {
	prompt := buildSentencePrompt(block)

	var lastErr error
	for attempt := 0; attempt < maxSegmentAttempts; attempt++ {
		telemetry.EmitCounter(metrics.LLMCallsTotal, 1, map[string]string{metrics.TagPass: metrics.TagSentencePass})

		raw, err := cfg.Capability.Call(ctx, modelName, sentenceSystemPrompt, prompt, true, sentenceTimeout)
		if err == nil {
			res, perr := parseSingleResponse(raw)
			if perr == nil {
				return res, []string{modelName}, nil
			}
			lastErr = perr
		} else {
			lastErr = err
			if callErr, ok := err.(*provider.CallError); ok && callErr.Class == provider.ErrorFatal {
				// Non-retryable: JSON/4xx class errors stop immediately.
				return singleResult{}, nil, lastErr
			}
		}

		if attempt < len(retryBackoff) {
			telemetry.EmitCounter(metrics.LLMRetriesTotal, 1, map[string]string{metrics.TagPass: metrics.TagSentencePass})
			select {
			case <-time.After(retryBackoff[attempt]):
			case <-ctx.Done():
				return singleResult{}, nil, ctx.Err()
			}
		}
	}
	telemetry.EmitCounter(metrics.LLMFallbacksTotal, 1, map[string]string{metrics.TagPass: metrics.TagSentencePass})
	return singleResult{}, nil, lastErr
}

func buildSentencePrompt(block model.TextBlock) string {
	payload := map[string]any{
		"chunk_id": block.ChunkID,
		"start":    block.Offsets.Start,
		"end":      block.Offsets.End,
		"text":     block.Text,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("[chunk_id=%d] %s", block.ChunkID, block.Text)
	}
	return string(data)
}

func parseSingleResponse(raw string) (singleResult, error) {
	jsonText := raw
	if extracted, ok := provider.ExtractJSON(raw); ok {
		jsonText = extracted
	}
	var res singleResult
	if err := json.Unmarshal([]byte(jsonText), &res); err != nil {
		return singleResult{}, fmt.Errorf("malformed sentence response: %w", err)
	}
	return res, nil
}
