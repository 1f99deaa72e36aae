// Package dualmode implements the dual-mode coordinator (C6): concurrent
// paragraph and sentence passes over the same normalized text, a
// consistency/divergence comparison between them, and a weighted fusion of
// their aggregations.
package dualmode

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gy212/cheekai-core/aggregate"
	"github.com/gy212/cheekai-core/foundry/similarity"
	"github.com/gy212/cheekai-core/model"
	"github.com/gy212/cheekai-core/telemetry"
	"github.com/gy212/cheekai-core/telemetry/metrics"
)

const (
	paragraphFusionWeight = 0.6
	sentenceFusionWeight  = 0.4

	mutualCoverageThreshold = 0.5
	divergenceThreshold     = 0.20
	previewMaxCodepoints    = 100

	// duplicatePreviewSimilarity folds two divergent-region previews into
	// one entry when their fuzzy similarity score meets or exceeds this,
	// keeping near-identical repeated phrases from flooding the report.
	duplicatePreviewSimilarity = 0.92
)

// Pass holds the blocks and scores produced by one segmentation pass
// (paragraph or sentence) after local and optional LLM scoring.
type Pass struct {
	Blocks []model.TextBlock
	Scores []model.SegmentScore
}

// RunPasses executes the paragraph and sentence producers concurrently and
// returns both results once both complete, per spec §4.6's "runs... passes
// concurrently" requirement.
func RunPasses(ctx context.Context, runParagraph, runSentence func(context.Context) Pass) (Pass, Pass) {
	var paragraph, sentence Pass
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		paragraph = runParagraph(ctx)
	}()
	go func() {
		defer wg.Done()
		sentence = runSentence(ctx)
	}()
	wg.Wait()
	return paragraph, sentence
}

// Compare implements §4.6 steps 1-3: independent aggregation, consistency
// comparison over mutually-overlapping segment pairs, and a 0.6/0.4 fusion.
func Compare(paragraph, sentence Pass, sensitivity model.Sensitivity) model.DualResult {
	start := time.Now()
	defer func() {
		telemetry.EmitHistogram(metrics.DualModeDurationMs, time.Since(start), nil)
	}()

	aPara := aggregate.Aggregate(paragraph.Scores, sensitivity)
	aSent := aggregate.Aggregate(sentence.Scores, sensitivity)

	if len(sentence.Scores) == 0 {
		return model.DualResult{
			Paragraph: aPara,
			Sentence:  aSent,
			Comparison: model.ComparisonResult{
				ProbabilityDiff:  0,
				ConsistencyScore: 1.0,
				DivergentRegions: nil,
			},
			Fused: aPara,
		}
	}

	comparison := compareSegments(paragraph, sentence)
	comparison.ProbabilityDiff = absFloat(aPara.OverallProbability - aSent.OverallProbability)
	fused := fuse(aPara, aSent)

	return model.DualResult{
		Paragraph:  aPara,
		Sentence:   aSent,
		Comparison: comparison,
		Fused:      fused,
	}
}

func compareSegments(paragraph, sentence Pass) model.ComparisonResult {
	regions := make([]model.DivergentRegion, 0)
	agreements, comparable := 0, 0

	sentenceScoreByChunk := make(map[int]model.SegmentScore, len(sentence.Scores))
	for _, s := range sentence.Scores {
		sentenceScoreByChunk[s.ChunkID] = s
	}

	for pi, pBlock := range paragraph.Blocks {
		if pi >= len(paragraph.Scores) {
			continue
		}
		pScore := paragraph.Scores[pi]
		for _, sBlock := range sentence.Blocks {
			sScore, ok := sentenceScoreByChunk[sBlock.ChunkID]
			if !ok {
				continue
			}
			coverage := mutualCoverage(pBlock.Offsets, sBlock.Offsets)
			if coverage < mutualCoverageThreshold {
				continue
			}
			comparable++
			pAI := pScore.AIProbability > 0.5
			sAI := sScore.AIProbability > 0.5
			if pAI == sAI {
				agreements++
			}
			if diff := absFloat(pScore.AIProbability - sScore.AIProbability); diff > divergenceThreshold {
				regions = append(regions, model.DivergentRegion{
					ParagraphChunkID: pBlock.ChunkID,
					SentenceChunkID:  sBlock.ChunkID,
					ParagraphProb:    pScore.AIProbability,
					SentenceProb:     sScore.AIProbability,
					Preview:          previewOf(sBlock.Text),
				})
			}
		}
	}

	consistency := 1.0
	if comparable > 0 {
		consistency = float64(agreements) / float64(comparable)
	}

	regions = dedupRegions(regions)

	return model.ComparisonResult{
		ConsistencyScore: consistency,
		DivergentRegions: regions,
	}
}

// mutualCoverage is intersection-length / min(lenA, lenB), matching
// "intersection/length... exceeds 0.5 on both sides" from spec §4.6.2.
func mutualCoverage(a, b model.Offsets) float64 {
	start := a.Start
	if b.Start > start {
		start = b.Start
	}
	end := a.End
	if b.End < end {
		end = b.End
	}
	overlap := end - start
	if overlap <= 0 {
		return 0
	}
	lenA := a.End - a.Start
	lenB := b.End - b.Start
	covA := float64(overlap) / float64(lenA)
	covB := float64(overlap) / float64(lenB)
	if covA < covB {
		return covA
	}
	return covB
}

func previewOf(text string) string {
	if utf8.RuneCountInString(text) <= previewMaxCodepoints {
		return text
	}
	count := 0
	for i := range text {
		if count == previewMaxCodepoints {
			return text[:i]
		}
		count++
	}
	return text
}

// dedupRegions folds near-duplicate previews (e.g. a repeated boilerplate
// sentence flagged at several offsets) into a single representative entry
// using the teacher lineage's fuzzy-similarity scorer.
func dedupRegions(regions []model.DivergentRegion) []model.DivergentRegion {
	if len(regions) <= 1 {
		return regions
	}
	kept := make([]model.DivergentRegion, 0, len(regions))
	for _, r := range regions {
		duplicate := false
		for _, k := range kept {
			if similarity.Score(r.Preview, k.Preview) >= duplicatePreviewSimilarity {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, r)
		}
	}
	return kept
}

// fuse implements §4.6 step 3: 0.6 paragraph / 0.4 sentence weighted
// overall and confidence, with the decision re-derived from the fused
// overall via the same §4.5.4 thresholds the aggregator uses.
func fuse(para, sent model.Aggregation) model.Aggregation {
	overall := paragraphFusionWeight*para.OverallProbability + sentenceFusionWeight*sent.OverallProbability
	confidence := paragraphFusionWeight*para.OverallConfidence + sentenceFusionWeight*sent.OverallConfidence

	fused := model.Aggregation{
		OverallProbability: overall,
		OverallConfidence:  confidence,
		Method:             "dual_mode_fusion",
		Thresholds:         para.Thresholds,
		BufferMargin:       para.BufferMargin,
	}
	fused.Decision = decideFused(overall, fused.BufferMargin)
	return fused
}

func decideFused(overall, margin float64) model.Decision {
	switch {
	case overall < 0.65-margin:
		return model.DecisionPass
	case overall >= 0.85-margin:
		return model.DecisionFlag
	default:
		return model.DecisionReview
	}
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
