package segment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/gy212/cheekai-core/logging"
	"github.com/gy212/cheekai-core/model"
	"github.com/gy212/cheekai-core/provider"
	"github.com/gy212/cheekai-core/telemetry"
	"github.com/gy212/cheekai-core/telemetry/metrics"
)

const (
	sentenceServiceTimeout = 2 * time.Second
	packMinCodepoints      = 50
	packTargetCodepoints   = 200
	packMaxCodepoints      = 300
)

// BoundaryRefiner optionally merges adjacent local-rule sentence boundaries
// using an LLM. It may only merge; it must never rewrite text.
type BoundaryRefiner struct {
	Capability provider.Capability
	Model      string
}

// Segmenter runs the sentence-segmentation pipeline: an optional external
// HTTP service with a local-rule fallback, optional LLM boundary
// refinement, and packing into sentence blocks.
type Segmenter struct {
	ServiceURL string
	Client     *http.Client
	Refiner    *BoundaryRefiner
	Logger     *logging.Logger
}

// NewSegmenter builds a Segmenter. ServiceURL may be empty, in which case
// the local rule is used directly.
func NewSegmenter(serviceURL string, client *http.Client, refiner *BoundaryRefiner, logger *logging.Logger) *Segmenter {
	if client == nil {
		client = &http.Client{Timeout: sentenceServiceTimeout}
	}
	return &Segmenter{ServiceURL: serviceURL, Client: client, Refiner: refiner, Logger: logger}
}

// Sentences produces sentence blocks for text, packed per the min/target/max
// codepoint parameters, with dense chunk_id assignment.
func (s *Segmenter) Sentences(ctx context.Context, text, language string) ([]model.TextBlock, error) {
	start := time.Now()
	defer func() {
		telemetry.EmitHistogram(metrics.SegmentDurationMs, time.Since(start), map[string]string{metrics.TagPhase: "sentence"})
	}()

	boundaries, err := s.obtainSentences(ctx, text, language)
	if err != nil {
		return nil, err
	}

	if s.Refiner != nil {
		boundaries = s.refineBoundaries(ctx, text, boundaries)
	}

	packed := packSentences(text, boundaries)
	blocks := make([]model.TextBlock, 0, len(packed))
	for i, p := range packed {
		blocks = append(blocks, model.TextBlock{
			ChunkID: i,
			Label:   model.LabelSentenceBlock,
			Offsets: model.Offsets{Start: p.start, End: p.end},
			Text:    text[p.start:p.end],
		})
	}
	telemetry.EmitCounter(metrics.SegmentSentencesTotal, float64(len(blocks)), nil)
	return blocks, nil
}

// obtainSentences tries the external segmentation service first (best
// effort, silent failure), falling back to the local rule.
func (s *Segmenter) obtainSentences(ctx context.Context, text, language string) ([]span, error) {
	if s.ServiceURL != "" {
		if spans, err := s.callExternalService(ctx, text, language); err == nil {
			return spans, nil
		} else if s.Logger != nil {
			s.Logger.Warn("sentence segmentation service unavailable, using local rule", zap.Error(err))
		}
		telemetry.EmitCounter(metrics.SegmentServiceFallbacks, 1, nil)
	}
	return localRuleSentences(text), nil
}

type serviceRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

type serviceSpan struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type serviceResponse struct {
	Sentences []serviceSpan `json:"sentences"`
}

func (s *Segmenter) callExternalService(ctx context.Context, text, language string) ([]span, error) {
	ctx, cancel := context.WithTimeout(ctx, sentenceServiceTimeout)
	defer cancel()

	payload, err := json.Marshal(serviceRequest{Text: text, Language: language})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.ServiceURL+"/segment", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("segmentation service returned status %d", resp.StatusCode)
	}

	var out serviceResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if len(out.Sentences) == 0 {
		return nil, fmt.Errorf("segmentation service returned zero sentences")
	}
	spans := make([]span, len(out.Sentences))
	for i, sp := range out.Sentences {
		spans[i] = span{sp.Start, sp.End}
	}
	return spans, nil
}

// LocalRuleSentenceOffsets exposes the local sentence-splitting rule (no
// external service, no LLM refinement) so that other stages — notably the
// local scorer's avg_sentence_len feature — use exactly the same splitter
// as the segmenter's fallback path.
func LocalRuleSentenceOffsets(text string) []model.Offsets {
	spans := localRuleSentences(text)
	out := make([]model.Offsets, len(spans))
	for i, s := range spans {
		out[i] = model.Offsets{Start: s.start, End: s.end}
	}
	return out
}

// localRuleSentences splits on sentence-terminal punctuation, skipping
// splits inside paired double quotes and at decimal points (digit . digit).
func localRuleSentences(text string) []span {
	var spans []span
	runeOffsets, runes := decodeWithOffsets(text)
	n := len(runes)

	inQuote := false
	start := 0
	i := 0
	for i < n {
		r := runes[i]
		if r == '"' {
			inQuote = !inQuote
		}
		if sentenceTerminators[r] && !inQuote {
			if r == '.' && isDecimalPoint(runes, i) {
				i++
				continue
			}
			end := i + 1
			// Absorb a single immediately-following closing quote.
			if end < n && runes[end] == '"' {
				end++
			}
			byteEnd := byteOffsetAt(runeOffsets, end, len(text))
			byteStart := byteOffsetAt(runeOffsets, start, len(text))
			trimmed := trimSpan(text, byteStart, byteEnd)
			if trimmed.start < trimmed.end {
				spans = append(spans, trimmed)
			}
			start = end
			i = end
			continue
		}
		i++
	}
	if start < n {
		byteStart := byteOffsetAt(runeOffsets, start, len(text))
		trimmed := trimSpan(text, byteStart, len(text))
		if trimmed.start < trimmed.end {
			spans = append(spans, trimmed)
		}
	}
	return spans
}

func isDecimalPoint(runes []rune, dotIdx int) bool {
	if dotIdx == 0 || dotIdx+1 >= len(runes) {
		return false
	}
	return unicode.IsDigit(runes[dotIdx-1]) && unicode.IsDigit(runes[dotIdx+1])
}

// decodeWithOffsets returns, for each rune index, its starting byte offset.
func decodeWithOffsets(text string) ([]int, []rune) {
	offsets := make([]int, 0, len(text))
	runes := make([]rune, 0, len(text))
	for i, r := range text {
		offsets = append(offsets, i)
		runes = append(runes, r)
	}
	return offsets, runes
}

func byteOffsetAt(offsets []int, runeIdx, textLen int) int {
	if runeIdx >= len(offsets) {
		return textLen
	}
	return offsets[runeIdx]
}

// packSentences greedily accumulates sentence spans into blocks of roughly
// packTargetCodepoints, emitting a block when the target would be
// exceeded, and carrying the last sentence forward only when the current
// block already meets packMinCodepoints. A single sentence longer than
// packMaxCodepoints becomes its own block.
func packSentences(text string, sentences []span) []span {
	var packed []span
	var cur span
	curLen := 0
	hasCurrent := false

	flush := func() {
		if hasCurrent {
			packed = append(packed, cur)
			hasCurrent = false
			curLen = 0
		}
	}

	for _, sent := range sentences {
		sentLen := utf8.RuneCountInString(text[sent.start:sent.end])

		if sentLen > packMaxCodepoints {
			flush()
			packed = append(packed, sent)
			continue
		}

		if !hasCurrent {
			cur = sent
			curLen = sentLen
			hasCurrent = true
			continue
		}

		if curLen+sentLen > packTargetCodepoints {
			if curLen >= packMinCodepoints {
				flush()
				cur = sent
				curLen = sentLen
				hasCurrent = true
			} else {
				// Current block is still short of the minimum: carry the
				// new sentence into it anyway rather than emit an
				// under-sized block.
				cur.end = sent.end
				curLen += sentLen
			}
			continue
		}

		cur.end = sent.end
		curLen += sentLen
	}
	flush()
	return packed
}

type refinePrompt struct {
	Sentences []string `json:"sentences"`
}

type refineResponse struct {
	MergeAfter []int `json:"mergeAfter"`
}

const refineSystemPrompt = `You are given a numbered list of sentences extracted from one document. ` +
	`Some adjacent sentences were split incorrectly and should be merged back into one. ` +
	`Reply with JSON {"mergeAfter":[i,...]} listing the indices i (0-based) such that sentence i ` +
	`and sentence i+1 should be merged. Never suggest any other change.`

// refineBoundaries asks the configured LLM which adjacent boundaries to
// merge, then recomputes offsets for merged runs by taking the outer start
// and end. Refinement never changes the character set of the text, only
// where boundaries fall; on any failure the unrefined boundaries are kept.
func (s *Segmenter) refineBoundaries(ctx context.Context, text string, spans []span) []span {
	if len(spans) < 2 || s.Refiner == nil || s.Refiner.Capability.Call == nil {
		return spans
	}

	texts := make([]string, len(spans))
	for i, sp := range spans {
		texts[i] = text[sp.start:sp.end]
	}
	prompt, err := json.Marshal(refinePrompt{Sentences: texts})
	if err != nil {
		return spans
	}

	raw, err := s.Refiner.Capability.Call(ctx, s.Refiner.Model, refineSystemPrompt, string(prompt), true, sentenceServiceTimeout)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Warn("sentence boundary refinement unavailable, keeping local boundaries", zap.Error(err))
		}
		return spans
	}

	jsonText, ok := provider.ExtractJSON(raw)
	if !ok {
		jsonText = raw
	}
	var parsed refineResponse
	if err := json.Unmarshal([]byte(jsonText), &parsed); err != nil {
		return spans
	}

	mergeAfter := make(map[int]bool, len(parsed.MergeAfter))
	for _, idx := range parsed.MergeAfter {
		if idx >= 0 && idx < len(spans)-1 {
			mergeAfter[idx] = true
		}
	}
	if len(mergeAfter) == 0 {
		return spans
	}

	keys := make([]int, 0, len(mergeAfter))
	for k := range mergeAfter {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	merged := make([]span, 0, len(spans))
	i := 0
	for i < len(spans) {
		run := spans[i]
		for mergeAfter[i] && i+1 < len(spans) {
			i++
			run.end = spans[i].end
		}
		merged = append(merged, run)
		i++
	}
	return merged
}
