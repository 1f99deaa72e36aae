package scoring

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/gy212/cheekai-core/fulhash"
	"github.com/gy212/cheekai-core/model"
	"github.com/gy212/cheekai-core/normalize"
	"github.com/gy212/cheekai-core/telemetry"
	"github.com/gy212/cheekai-core/telemetry/metrics"
)

// perturbationSeed is the fixed integer seed mixed into the deterministic
// hash used for the soft-threshold micro-jitter (spec.md §4.3.3). It must
// never change across runs: the same text must always produce the same
// perturbation.
const perturbationSeed uint64 = 0x43484545_4B414931 // "CHEEKAI1" in hex-packed ASCII

const (
	minProbability = 0.02
	maxProbability = 0.98
	maxConfidence  = 0.95
)

// Options configures the local scorer's optional channels.
type Options struct {
	UsePerplexity bool
	UseStylometry bool
}

// DefaultOptions enables both optional channels, matching the scores a
// caller gets when it does not specify use_perplexity/use_stylometry.
func DefaultOptions() Options {
	return Options{UsePerplexity: true, UseStylometry: true}
}

// Score computes the local (non-LLM) SegmentScore for a single TextBlock.
func Score(block model.TextBlock, language string, opts Options) model.SegmentScore {
	start := time.Now()
	defer func() {
		telemetry.EmitHistogram(metrics.ScoringDurationMs, time.Since(start), nil)
		telemetry.EmitCounter(metrics.ScoringBlocksTotal, 1, nil)
	}()

	tokens := normalize.Tokenize(block.Text)
	features := ExtractFeatures(block.Text)

	var ppl float64
	if opts.UsePerplexity {
		ppl = HeuristicPerplexity(tokens, charCount(block.Text))
	} else {
		ppl = 150 // neutral midpoint when the channel is disabled
	}

	logit := accumulateLogit(features, ppl)
	p := sigmoidInverse(logit)

	if p > 0.35 && p < 0.75 {
		p += deterministicPerturbation(block.Text)
	}
	p = clampRange(p, minProbability, maxProbability)

	confidence := math.Min(maxConfidence, 0.55+math.Min(0.35, float64(len(block.Text))/1800))

	var pplSignal *model.PerplexitySignal
	if opts.UsePerplexity {
		pplSignal = &model.PerplexitySignal{PPL: ppl}
	}

	var stylSignal model.StylometryFeatures
	if opts.UseStylometry {
		stylSignal = features
	}

	return model.SegmentScore{
		ChunkID:        block.ChunkID,
		Language:       language,
		Offsets:        block.Offsets,
		AIProbability:  p,
		RawProbability: p,
		Confidence:     confidence,
		Signals: model.Signals{
			Perplexity: pplSignal,
			Stylometry: stylSignal,
		},
	}
}

// sig is the sigmoid soft threshold 1/(1+exp((x-c)/k)).
func sig(x, c, k float64) float64 {
	return 1 / (1 + math.Exp((x-c)/k))
}

// sigInv is 1 - sig(x, c, k).
func sigInv(x, c, k float64) float64 {
	return 1 - sig(x, c, k)
}

func accumulateLogit(f model.StylometryFeatures, ppl float64) float64 {
	logit := 0.0
	logit += 1.2 * sig(f.TTR, 0.58, 0.08)
	logit -= 0.9 * sigInv(f.TTR, 0.78, 0.06)
	logit += 1.0 * sigInv(f.RepeatRatio, 0.18, 0.06)
	logit += 1.1 * sigInv(f.NgramRepeatRate, 0.10, 0.04)
	logit += 0.3 * sig(f.AvgSentenceLen, 35, 10)
	logit += 0.4 * sigInv(f.AvgSentenceLen, 120, 25)
	logit += 1.0 * sig(ppl, 85, 20)
	logit -= 0.6 * sigInv(ppl, 200, 30)

	aiStrength := sig(f.TTR, 0.55, 0.05) * sig(ppl, 90, 15) *
		mean(sigInv(f.RepeatRatio, 0.15, 0.04), sigInv(f.NgramRepeatRate, 0.10, 0.03))
	if aiStrength > 0.3 {
		logit += 1.5 * aiStrength
	}

	humanStrength := sigInv(f.TTR, 0.70, 0.05) * sigInv(ppl, 170, 25) *
		sig(f.RepeatRatio, 0.15, 0.04) * sigInv(f.AvgSentenceLen, 25, 8)
	if humanStrength > 0.3 {
		logit -= 1.2 * humanStrength
	}

	return logit
}

func mean(a, b float64) float64 { return (a + b) / 2 }

func sigmoidInverse(logit float64) float64 {
	return 1 / (1 + math.Exp(-logit))
}

// deterministicPerturbation derives a stable ±0.01 jitter from a hash of the
// block text plus the fixed perturbation seed: identical text always
// produces an identical perturbation, and the hash is never the language
// runtime's randomized default map/string hash.
func deterministicPerturbation(text string) float64 {
	var seedBytes [8]byte
	binary.BigEndian.PutUint64(seedBytes[:], perturbationSeed)

	digest, err := fulhash.Hash(append(seedBytes[:], text...), fulhash.WithAlgorithm(fulhash.XXH3_128))
	if err != nil {
		return 0
	}
	raw := binary.BigEndian.Uint64(digest.Bytes()[:8])
	// Map to [-0.01, 0.01].
	frac := float64(raw%2000) / 2000.0
	return (frac - 0.5) * 0.02
}
