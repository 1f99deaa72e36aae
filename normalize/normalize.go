// Package normalize implements the text normalizer (C1): it rewrites raw
// text into a canonical UTF-8 form so that byte offsets computed against the
// result stay stable through segmentation, scoring, and aggregation.
package normalize

import (
	"regexp"
	"strings"
	"time"

	"github.com/gy212/cheekai-core/telemetry"
	"github.com/gy212/cheekai-core/telemetry/metrics"
)

var (
	smartQuoteReplacer = strings.NewReplacer(
		"“", "\"", "”", "\"",
		"‘", "'", "’", "'",
	)
	dashReplacer = strings.NewReplacer(
		"–", "-", "—", "-", "―", "-",
	)
	hspaceRun = regexp.MustCompile(`[ \t]+`)

	tokenPattern = regexp.MustCompile(`[A-Za-z0-9_]+|[\x{4E00}-\x{9FFF}]`)
)

// Normalize rewrites raw text per the documented operation order: smart
// quotes, em/en dashes, ideographic spaces, CRLF/CR line endings, collapsed
// horizontal whitespace runs, and trailing-whitespace trimming per line.
//
// Normalize is a total function: there are no failure modes for valid UTF-8
// input. Normalize(Normalize(t)) == Normalize(t).
func Normalize(text string) string {
	start := time.Now()
	defer func() {
		telemetry.EmitHistogram(metrics.NormalizeDurationMs, time.Since(start), nil)
	}()

	s := smartQuoteReplacer.Replace(text)
	s = dashReplacer.Replace(s)
	s = strings.ReplaceAll(s, "　", " ")

	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		collapsed := hspaceRun.ReplaceAllString(line, " ")
		lines[i] = strings.TrimRight(collapsed, " \t")
	}
	return strings.Join(lines, "\n")
}

// DetectLanguage returns "zh" when the share of CJK codepoints (U+4E00..
// U+9FFF) among non-whitespace codepoints exceeds 0.30, otherwise "en".
func DetectLanguage(text string) string {
	var cjk, nonSpace int
	for _, r := range text {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		nonSpace++
		if r >= 0x4E00 && r <= 0x9FFF {
			cjk++
		}
	}
	if nonSpace == 0 {
		return "en"
	}
	if float64(cjk)/float64(nonSpace) > 0.30 {
		return "zh"
	}
	return "en"
}

// EstimateTokens counts matches of [A-Za-z0-9_]+ or single CJK codepoints,
// with a floor of 1.
func EstimateTokens(text string) int {
	n := len(tokenPattern.FindAllString(text, -1))
	if n < 1 {
		return 1
	}
	return n
}

// Tokenize returns the raw token strings used by the stylometry features in
// package scoring: English tokens by word, Chinese tokens by character.
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(text, -1)
}
