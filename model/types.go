// Package model defines the shared data model for the CheekAI detection
// pipeline (normalize -> segment -> scoring/llmscore -> aggregate ->
// dualmode): the value types every stage and the detect orchestrator agree
// on. It has no dependency on any stage package, so it is safe for both
// sides of the pipeline to import.
package model

// BlockLabel classifies a TextBlock produced by the segmenter.
type BlockLabel string

const (
	LabelParagraphBody BlockLabel = "paragraph_body"
	LabelShortTitle    BlockLabel = "short_title"
	LabelSentenceBlock BlockLabel = "sentence_block"
	LabelFiltered      BlockLabel = "filtered"
)

// Offsets is a UTF-8 byte-exact, end-exclusive span into the normalized text.
type Offsets struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// TextBlock is a contiguous span of normalized text, produced by the
// segmenter and immutable thereafter.
type TextBlock struct {
	ChunkID int        `json:"chunkId"`
	Label   BlockLabel `json:"label"`
	Offsets Offsets    `json:"offsets"`
	Text    string     `json:"text"`

	// FilterHint is an optional external preprocessing hint (titles/TOC/
	// references classification) attached to paragraph blocks before
	// segmentation. The core never produces it itself.
	FilterHint string `json:"filterHint,omitempty"`
}

// StylometryFeatures is the numeric fingerprint of a block.
type StylometryFeatures struct {
	TTR               float64 `json:"ttr"`
	AvgSentenceLen    float64 `json:"avgSentenceLen"`
	RepeatRatio       float64 `json:"repeatRatio"`
	NgramRepeatRate   float64 `json:"ngramRepeatRate"`
	FunctionWordRatio float64 `json:"functionWordRatio"`
	PunctuationRatio  float64 `json:"punctuationRatio"`
}

// PerplexitySignal carries the heuristic perplexity channel.
type PerplexitySignal struct {
	PPL float64  `json:"ppl"`
	Z   *float64 `json:"z,omitempty"`
}

// LLMSignal carries the external-model channel, when a call succeeded.
type LLMSignal struct {
	Prob     float64  `json:"prob"`
	Models   []string `json:"models,omitempty"`
	Evidence string   `json:"evidence,omitempty"`
}

// Signals bundles every per-block evidence channel.
type Signals struct {
	LLM        *LLMSignal        `json:"llm,omitempty"`
	Perplexity *PerplexitySignal `json:"perplexity,omitempty"`
	Stylometry StylometryFeatures `json:"stylometry"`
}

// SegmentScore is the per-block scoring result.
type SegmentScore struct {
	ChunkID        int      `json:"chunkId"`
	Language       string   `json:"language"`
	Offsets        Offsets  `json:"offsets"`
	AIProbability  float64  `json:"aiProbability"`
	RawProbability float64  `json:"rawProbability"`
	Confidence     float64  `json:"confidence"`
	Uncertainty    *float64 `json:"uncertainty,omitempty"`
	Signals        Signals  `json:"signals"`
	Explanations   []string `json:"explanations,omitempty"`
}

// Decision is the pass/review/flag verdict for an aggregation.
type Decision string

const (
	DecisionPass   Decision = "pass"
	DecisionReview Decision = "review"
	DecisionFlag   Decision = "flag"
)

// Thresholds are the named decision boundaries used for explainability; the
// actual decision additionally applies BufferMargin (see package aggregate).
type Thresholds struct {
	Low      float64 `json:"low"`
	Medium   float64 `json:"medium"`
	High     float64 `json:"high"`
	VeryHigh float64 `json:"veryHigh"`
}

// Aggregation is a per-pass summary produced by the aggregator (C5).
type Aggregation struct {
	OverallProbability float64    `json:"overallProbability"`
	OverallConfidence  float64    `json:"overallConfidence"`
	Method             string     `json:"method"`
	Thresholds         Thresholds `json:"thresholds"`
	BufferMargin       float64    `json:"bufferMargin"`
	Decision           Decision   `json:"decision"`
}

// ComparisonResult summarizes agreement between a paragraph pass and a
// sentence pass over the same text.
type ComparisonResult struct {
	ProbabilityDiff  float64           `json:"probabilityDiff"`
	ConsistencyScore float64           `json:"consistencyScore"`
	DivergentRegions []DivergentRegion `json:"divergentRegions"`
}

// DivergentRegion is a paragraph/sentence pair with large disagreement.
type DivergentRegion struct {
	ParagraphChunkID int     `json:"paragraphChunkId"`
	SentenceChunkID  int     `json:"sentenceChunkId"`
	ParagraphProb    float64 `json:"paragraphProb"`
	SentenceProb     float64 `json:"sentenceProb"`
	Preview          string  `json:"preview"`
}

// DualResult bundles both passes, their comparison, and the fused aggregation.
type DualResult struct {
	Paragraph  Aggregation      `json:"paragraph"`
	Sentence   Aggregation      `json:"sentence"`
	Comparison ComparisonResult `json:"comparison"`
	Fused      Aggregation      `json:"fused"`
}

// Sensitivity controls fusion weights and decision-threshold shifts.
type Sensitivity string

const (
	SensitivityLow    Sensitivity = "low"
	SensitivityMedium Sensitivity = "medium"
	SensitivityHigh   Sensitivity = "high"
)
