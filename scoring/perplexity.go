package scoring

import (
	"math"
	"unicode/utf8"
)

// HeuristicPerplexity computes the blended heuristic perplexity channel
// described in spec.md §4.3.2: unigram entropy scaled into a "perplexity"
// range, blended 50/50 with a length/diversity correction term.
func HeuristicPerplexity(tokens []string, charCount int) float64 {
	h := unigramEntropy(tokens)
	pplUni := math.Exp(h)
	pplScaled := 20 + math.Min(280, (pplUni-1)*22.5)

	diversity := 0.0
	if len(tokens) > 0 {
		seen := make(map[string]bool, len(tokens))
		for _, t := range tokens {
			seen[t] = true
		}
		diversity = float64(len(seen)) / float64(len(tokens))
	}
	pplLegacy := 120 - 60*diversity + float64(charCount)/500

	ppl := 0.5*pplScaled + 0.5*pplLegacy
	return clampRange(ppl, 20, 300)
}

func unigramEntropy(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}
	n := float64(len(tokens))
	var h float64
	for _, c := range counts {
		p := float64(c) / n
		h -= p * math.Log(p)
	}
	return h
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// charCount returns the codepoint count of text, used as the perplexity
// length correction term.
func charCount(text string) int {
	return utf8.RuneCountInString(text)
}
