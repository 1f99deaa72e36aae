// Package aggregate implements the aggregator (C5): robust weighted/trimmed
// combination of per-segment probabilities, contrast sharpening in logit
// space, and the pass/review/flag decision.
package aggregate

import (
	"math"
	"sort"
	"time"

	"github.com/gy212/cheekai-core/model"
	"github.com/gy212/cheekai-core/telemetry"
	"github.com/gy212/cheekai-core/telemetry/metrics"
)

const bufferMargin = 0.03

const (
	minProbability = 0.02
	maxProbability = 0.98
)

// sharpeningGamma maps sensitivity to the contrast-sharpening exponent
// applied to each block's deviation from the weighted mean, per spec §4.5.3.
var sharpeningGamma = map[model.Sensitivity]float64{
	model.SensitivityLow:    1.10,
	model.SensitivityMedium: 1.45,
	model.SensitivityHigh:   1.75,
}

// FusionWeights is the per-sensitivity local/LLM scalar pair documented in
// SPEC_FULL.md §9.2: low sensitivity trusts the local baseline more (and
// flags more conservatively), high sensitivity trusts the LLM channel more
// (and widens the review window).
type FusionWeights struct {
	Local float64
	LLM   float64
}

var fusionBySensitivity = map[model.Sensitivity]FusionWeights{
	model.SensitivityLow:    {Local: 0.65, LLM: 0.35},
	model.SensitivityMedium: {Local: 0.5, LLM: 0.5},
	model.SensitivityHigh:   {Local: 0.3, LLM: 0.7},
}

// FusionWeightsFor returns the local/LLM scalar pair for a sensitivity,
// defaulting to medium for an unrecognized value.
func FusionWeightsFor(s model.Sensitivity) FusionWeights {
	if w, ok := fusionBySensitivity[s]; ok {
		return w
	}
	return fusionBySensitivity[model.SensitivityMedium]
}

// Aggregate combines segment scores into one Aggregation, per spec §4.5:
// a weighted mean, a trimmed mean, a 0.7/0.3 blend, logit-space contrast
// sharpening driven by sensitivity, and a buffered three-way decision.
// Sharpening runs after any LLM fusion already present in the scores
// (SPEC_FULL.md §9.1), so Aggregate is a pure function of whatever
// ai_probability values the caller passes in.
func Aggregate(scores []model.SegmentScore, sensitivity model.Sensitivity) model.Aggregation {
	start := time.Now()
	defer func() {
		telemetry.EmitHistogram(metrics.AggregateDurationMs, time.Since(start), nil)
	}()

	if len(scores) == 0 {
		return model.Aggregation{
			OverallProbability: minProbability,
			OverallConfidence:  0,
			Method:             "weighted_trimmed_mean",
			Thresholds:         defaultThresholds(),
			BufferMargin:       bufferMargin,
			Decision:           model.DecisionPass,
		}
	}

	weights := blockWeights(scores)
	weightedMean := weightedMeanOf(scores, weights)
	trimmedMean := trimmedMeanOf(scores, weights)
	overall := clampProbability(0.7*weightedMean + 0.3*trimmedMean)

	sharpened := sharpen(scores, weights, weightedMean, sharpeningGamma[sensitivity])
	finalOverall := clampProbability(blendWithConfidence(weights, sharpened, overall))

	confidence := weightedConfidence(scores, weights)
	decision := decide(finalOverall, bufferMargin)

	telemetry.EmitCounter(metrics.ScoringBlocksTotal, float64(len(scores)), nil)

	return model.Aggregation{
		OverallProbability: finalOverall,
		OverallConfidence:  confidence,
		Method:             "weighted_trimmed_mean",
		Thresholds:         defaultThresholds(),
		BufferMargin:       bufferMargin,
		Decision:           decision,
	}
}

func defaultThresholds() model.Thresholds {
	return model.Thresholds{Low: 0.65, Medium: 0.75, High: 0.85, VeryHigh: 0.90}
}

// blockWeights implements §4.5.1: w_i = sqrt(max(len_bytes_i, 50)) * max(confidence_i, 0.3).
func blockWeights(scores []model.SegmentScore) []float64 {
	weights := make([]float64, len(scores))
	for i, s := range scores {
		lenBytes := float64(s.Offsets.End - s.Offsets.Start)
		if lenBytes < 50 {
			lenBytes = 50
		}
		conf := s.Confidence
		if conf < 0.3 {
			conf = 0.3
		}
		weights[i] = math.Sqrt(lenBytes) * conf
	}
	return weights
}

func weightedMeanOf(scores []model.SegmentScore, weights []float64) float64 {
	var num, den float64
	for i, s := range scores {
		num += s.AIProbability * weights[i]
		den += weights[i]
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// trimmedMeanOf implements §4.5.2: for N >= 5, drop ceil(0.1*N) top and
// bottom by probability before meaning the rest.
func trimmedMeanOf(scores []model.SegmentScore, weights []float64) float64 {
	n := len(scores)
	if n < 5 {
		return weightedMeanOf(scores, weights)
	}

	type indexed struct {
		prob float64
		idx  int
	}
	sorted := make([]indexed, n)
	for i, s := range scores {
		sorted[i] = indexed{prob: s.AIProbability, idx: i}
	}
	sort.Slice(sorted, func(a, b int) bool { return sorted[a].prob < sorted[b].prob })

	trim := int(math.Ceil(0.1 * float64(n)))
	if trim*2 >= n {
		trim = 0
	}
	kept := sorted[trim : n-trim]

	var sum float64
	for _, k := range kept {
		sum += k.prob
	}
	return sum / float64(len(kept))
}

func weightedConfidence(scores []model.SegmentScore, weights []float64) float64 {
	var num, den float64
	for i, s := range scores {
		num += s.Confidence * weights[i]
		den += weights[i]
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// sharpen implements §4.5.3: a robust z-score for each block's probability,
// scaled by the IQR of the probability set, re-expressed in logit space and
// multiplied by gamma, then a binary-searched offset that restores the
// pre-sharpening weighted mean, and a 20/80 blend toward the original value
// for low-confidence blocks.
func sharpen(scores []model.SegmentScore, weights []float64, originalMean, gamma float64) []float64 {
	n := len(scores)
	out := make([]float64, n)
	if n == 0 {
		return out
	}

	probs := make([]float64, n)
	for i, s := range scores {
		probs[i] = s.AIProbability
	}

	// z-scores from the IQR of the probability set (§4.5.3): a robust
	// alternative to a stddev-based z-score that doesn't get dragged around
	// by one or two extreme blocks. robustSpread falls back to mean absolute
	// deviation when the IQR collapses to zero (small N, tied values).
	medianProb := percentile(sortedCopy(probs), 0.5)
	probSpread := robustSpread(probs)
	zScores := make([]float64, n)
	for i, p := range probs {
		if probSpread > 0 {
			zScores[i] = (p - medianProb) / probSpread
		}
	}

	logitOriginal := make([]float64, n)
	for i, p := range probs {
		logitOriginal[i] = logit(p)
	}
	meanLogit := meanOf(logitOriginal)

	// The z-scores are dimensionless; re-expressing them in logit units means
	// scaling by the spread of the logit-transformed set, so a wide
	// probability spread and a wide logit spread both sharpen proportionally.
	logitSpread := robustSpread(logitOriginal)

	sharpenWithOffset := func(offset float64) []float64 {
		result := make([]float64, n)
		for i := range logitOriginal {
			deviation := zScores[i] * logitSpread * gamma
			result[i] = sigmoidOf(meanLogit + deviation + offset)
		}
		return result
	}

	restoresMean := func(offset float64) float64 {
		sharpenedProbs := sharpenWithOffset(offset)
		var num, den float64
		for i := range sharpenedProbs {
			num += sharpenedProbs[i] * weights[i]
			den += weights[i]
		}
		if den == 0 {
			return 0
		}
		return num/den - originalMean
	}

	lo, hi := -10.0, 10.0
	for iter := 0; iter < 50; iter++ {
		mid := (lo + hi) / 2
		if restoresMean(mid) > 0 {
			hi = mid
		} else {
			lo = mid
		}
	}
	offset := (lo + hi) / 2

	sharpenedProbs := sharpenWithOffset(offset)
	for i := range out {
		if scores[i].Confidence < 0.5 {
			out[i] = 0.2*sharpenedProbs[i] + 0.8*probs[i]
		} else {
			out[i] = sharpenedProbs[i]
		}
	}
	return out
}

// blendWithConfidence reconciles the unsharpened §4.5.2 overall with the
// per-block sharpened values by taking the weighted mean of the sharpened
// set; the restoring offset in sharpen keeps it close to overall, which
// absorbs any residual drift from clamping and the 20/80 low-confidence
// blend.
func blendWithConfidence(weights []float64, sharpened []float64, overall float64) float64 {
	if len(sharpened) == 0 {
		return overall
	}
	var num, den float64
	for i, p := range sharpened {
		num += p * weights[i]
		den += weights[i]
	}
	if den == 0 {
		return overall
	}
	return num / den
}

func decide(overall, margin float64) model.Decision {
	switch {
	case overall < 0.65-margin:
		return model.DecisionPass
	case overall >= 0.85-margin:
		return model.DecisionFlag
	default:
		return model.DecisionReview
	}
}

func interquartileRange(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	q1 := percentile(sortedCopy(values), 0.25)
	q3 := percentile(sortedCopy(values), 0.75)
	return q3 - q1
}

// robustSpread returns the IQR of values, falling back to the mean absolute
// deviation when the IQR is zero (small N or values tied at the quartile
// positions, e.g. several blocks all scored at the same probability) so a
// tied median doesn't silently disable sharpening.
func robustSpread(values []float64) float64 {
	if iqr := interquartileRange(values); iqr > 0 {
		return iqr
	}
	mean := meanOf(values)
	var sumAbs float64
	for _, v := range values {
		sumAbs += math.Abs(v - mean)
	}
	if len(values) == 0 {
		return 0
	}
	return sumAbs / float64(len(values))
}

func sortedCopy(values []float64) []float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return sorted
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func logit(p float64) float64 {
	p = clampProbability(p)
	return math.Log(p / (1 - p))
}

func sigmoidOf(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func clampProbability(p float64) float64 {
	if p < minProbability {
		return minProbability
	}
	if p > maxProbability {
		return maxProbability
	}
	return p
}
