// Package segment implements the segmenter (C2): paragraph blocks and
// sentence blocks, both with exact UTF-8 byte offsets into the normalized
// text.
package segment

import (
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/gy212/cheekai-core/model"
	"github.com/gy212/cheekai-core/telemetry"
	"github.com/gy212/cheekai-core/telemetry/metrics"
)

var paragraphSplit = regexp.MustCompile(`\n{2,}`)

// sentenceTerminators is the set of sentence-terminal punctuation from
// spec.md's data model section.
var sentenceTerminators = map[rune]bool{
	'.': true, '!': true, '?': true,
	'。': true, '！': true, '？': true,
}

const shortTitleMaxCodepoints = 20

// Paragraphs splits text on runs of >=2 LF characters, trims whitespace by
// advancing/retracting offsets (never rebuilding the substring), merges
// short-title-like blocks into the adjacent body block, and renumbers
// chunk_id densely from 0.
func Paragraphs(text string) []model.TextBlock {
	start := time.Now()
	defer func() {
		telemetry.EmitHistogram(metrics.SegmentDurationMs, time.Since(start), map[string]string{metrics.TagPhase: "paragraph"})
	}()

	candidates := splitParagraphCandidates(text)
	merged := mergeShortTitles(text, candidates)

	blocks := make([]model.TextBlock, 0, len(merged))
	for i, c := range merged {
		blocks = append(blocks, model.TextBlock{
			ChunkID: i,
			Label:   model.LabelParagraphBody,
			Offsets: model.Offsets{Start: c.start, End: c.end},
			Text:    text[c.start:c.end],
		})
	}

	telemetry.EmitCounter(metrics.SegmentParagraphsTotal, float64(len(blocks)), nil)
	return blocks
}

type span struct {
	start, end int
}

// splitParagraphCandidates splits on \n\n+ and trims each candidate's
// leading/trailing whitespace by moving its byte offsets, never touching
// the underlying text.
func splitParagraphCandidates(text string) []span {
	var spans []span
	pos := 0
	locs := paragraphSplit.FindAllStringIndex(text, -1)
	for _, loc := range locs {
		spans = append(spans, trimSpan(text, pos, loc[0]))
		pos = loc[1]
	}
	spans = append(spans, trimSpan(text, pos, len(text)))

	out := spans[:0]
	for _, s := range spans {
		if s.start < s.end {
			out = append(out, s)
		}
	}
	return out
}

// trimSpan advances start and retracts end past ASCII/CJK whitespace while
// keeping both bounds on rune boundaries.
func trimSpan(text string, start, end int) span {
	for start < end {
		r, size := utf8.DecodeRuneInString(text[start:end])
		if !isTrimmableSpace(r) {
			break
		}
		start += size
	}
	for end > start {
		r, size := utf8.DecodeLastRuneInString(text[start:end])
		if !isTrimmableSpace(r) {
			break
		}
		end -= size
	}
	return span{start, end}
}

func isTrimmableSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// mergeShortTitles folds consecutive short-title-like candidate spans
// forward into the next body block, or backward into the previous body
// block if there is no following body block.
func mergeShortTitles(text string, spans []span) []span {
	isShort := make([]bool, len(spans))
	for i, s := range spans {
		isShort[i] = isShortTitleLike(text[s.start:s.end])
	}

	merged := make([]span, 0, len(spans))
	i := 0
	for i < len(spans) {
		if !isShort[i] {
			merged = append(merged, spans[i])
			i++
			continue
		}

		// Collect a run of short-title candidates.
		runStart := i
		for i < len(spans) && isShort[i] {
			i++
		}
		if i < len(spans) {
			// Merge forward into the next body block by extending its start.
			spans[i].start = spans[runStart].start
			continue
		}
		// No following body block: merge backward into the previous one.
		if len(merged) > 0 {
			merged[len(merged)-1].end = spans[len(spans)-1].end
		} else {
			// No previous body block either: keep the run as its own block.
			merged = append(merged, span{spans[runStart].start, spans[len(spans)-1].end})
		}
	}
	return merged
}

// isShortTitleLike reports whether a block has fewer than 20 non-whitespace
// codepoints and contains no sentence-terminal punctuation.
func isShortTitleLike(text string) bool {
	count := 0
	for _, r := range text {
		if isTrimmableSpace(r) {
			continue
		}
		if sentenceTerminators[r] {
			return false
		}
		count++
		if count >= shortTitleMaxCodepoints {
			return false
		}
	}
	return true
}
