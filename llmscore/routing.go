// Package llmscore implements the LLM scorer (C4): a paragraph batch pass
// and a sentence fan-out pass over an external model capability, with
// length-based routing, bounded concurrency, retry, and conservative fusion
// with the local baseline.
package llmscore

import "unicode/utf8"

// RouteAction is the length-routing verdict for a sentence block.
type RouteAction string

const (
	RouteDrop      RouteAction = "drop"       // < 10 codepoints: excluded from aggregation
	RouteLocalOnly RouteAction = "local_only" // 10-49 codepoints: keep local score
	RouteFast      RouteAction = "fast"       // 50-299 codepoints: fast model
	RouteReasoning RouteAction = "reasoning"  // >= 300 codepoints: reasoning model
)

// RouteForLength returns the routing action for a sentence block's
// codepoint count, per spec.md §4.4.2's routing table.
func RouteForLength(codepoints int) RouteAction {
	switch {
	case codepoints < 10:
		return RouteDrop
	case codepoints < 50:
		return RouteLocalOnly
	case codepoints < 300:
		return RouteFast
	default:
		return RouteReasoning
	}
}

// RouteForText is a convenience wrapper counting codepoints directly.
func RouteForText(text string) RouteAction {
	return RouteForLength(utf8.RuneCountInString(text))
}
