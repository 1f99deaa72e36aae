// Package scoring implements the local scorer (C3): stylometry feature
// extraction, heuristic perplexity, and continuous log-odds scoring with
// deterministic perturbation.
package scoring

import (
	"math"
	"regexp"
	"unicode/utf8"

	"github.com/gy212/cheekai-core/model"
	"github.com/gy212/cheekai-core/normalize"
	"github.com/gy212/cheekai-core/segment"
)

var (
	ngramRepeatMinTokens = 3
	functionWords        = map[string]bool{
		"the": true, "a": true, "an": true, "of": true, "to": true, "in": true,
		"and": true, "is": true, "it": true, "that": true, "for": true, "on": true,
		"的": true, "了": true, "是": true, "在": true, "和": true, "也": true,
	}
	punctuationPattern = regexp.MustCompile(`[[:punct:]。！？，、；：“”‘’]`)
)

// ExtractFeatures computes the stylometry fingerprint for a block's text.
func ExtractFeatures(text string) model.StylometryFeatures {
	tokens := normalize.Tokenize(text)
	f := model.StylometryFeatures{
		TTR:               typeTokenRatio(tokens),
		AvgSentenceLen:    avgSentenceLen(text),
		RepeatRatio:       repeatRatio(tokens),
		NgramRepeatRate:   ngramRepeatRate(tokens, 3),
		FunctionWordRatio: functionWordRatio(tokens),
		PunctuationRatio:  punctuationRatio(text),
	}
	return clampFeatures(f)
}

func typeTokenRatio(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	seen := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		seen[t] = true
	}
	return float64(len(seen)) / float64(len(tokens))
}

// avgSentenceLen is the mean sentence length in characters (codepoints),
// using the same local sentence-splitting rule as the segmenter's fallback.
func avgSentenceLen(text string) float64 {
	offsets := segment.LocalRuleSentenceOffsets(text)
	if len(offsets) == 0 {
		return float64(utf8.RuneCountInString(text))
	}
	total := 0
	for _, o := range offsets {
		total += utf8.RuneCountInString(text[o.Start:o.End])
	}
	return float64(total) / float64(len(offsets))
}

// repeatRatio is the fraction of token occurrences belonging to tokens that
// appear at least 3 times in the block.
func repeatRatio(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}
	repeated := 0
	for _, t := range tokens {
		if counts[t] >= ngramRepeatMinTokens {
			repeated++
		}
	}
	return float64(repeated) / float64(len(tokens))
}

// ngramRepeatRate is the share of repeated n-grams (default trigrams).
func ngramRepeatRate(tokens []string, n int) float64 {
	if len(tokens) < n {
		return 0
	}
	total := len(tokens) - n + 1
	counts := make(map[string]int, total)
	for i := 0; i <= len(tokens)-n; i++ {
		key := joinNGram(tokens[i : i+n])
		counts[key]++
	}
	repeated := 0
	for i := 0; i <= len(tokens)-n; i++ {
		key := joinNGram(tokens[i : i+n])
		if counts[key] > 1 {
			repeated++
		}
	}
	return float64(repeated) / float64(total)
}

func joinNGram(tokens []string) string {
	out := ""
	for i, t := range tokens {
		if i > 0 {
			out += "\x00"
		}
		out += t
	}
	return out
}

func functionWordRatio(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	count := 0
	for _, t := range tokens {
		if functionWords[t] {
			count++
		}
	}
	return float64(count) / float64(len(tokens))
}

func punctuationRatio(text string) float64 {
	runeCount := utf8.RuneCountInString(text)
	if runeCount == 0 {
		return 0
	}
	matches := punctuationPattern.FindAllString(text, -1)
	return float64(len(matches)) / float64(runeCount)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, -1) {
		return 0
	}
	if math.IsInf(v, 1) {
		return 1
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampFeatures(f model.StylometryFeatures) model.StylometryFeatures {
	f.TTR = clamp01(f.TTR)
	f.RepeatRatio = clamp01(f.RepeatRatio)
	f.NgramRepeatRate = clamp01(f.NgramRepeatRate)
	f.FunctionWordRatio = clamp01(f.FunctionWordRatio)
	f.PunctuationRatio = clamp01(f.PunctuationRatio)
	if math.IsNaN(f.AvgSentenceLen) || math.IsInf(f.AvgSentenceLen, 0) {
		f.AvgSentenceLen = 0
	}
	return f
}
