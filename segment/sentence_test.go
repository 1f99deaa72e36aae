package segment

import (
	"context"
	"strings"
	"testing"
)

func TestLocalRuleSentencesSplitsOnTerminators(t *testing.T) {
	text := "First sentence. Second sentence! Third one?"
	spans := localRuleSentences(text)
	if len(spans) != 3 {
		t.Fatalf("expected 3 sentences, got %d", len(spans))
	}
}

func TestLocalRuleSentencesDoesNotSplitDecimal(t *testing.T) {
	text := strings.Repeat("填充字符内容用于凑够长度测试分句逻辑是否正确处理小数点问题。", 3) + "3.14"
	spans := localRuleSentences(text)
	if len(spans) != 1 {
		t.Fatalf("expected decimal point not to split the sentence, got %d spans", len(spans))
	}
	if text[spans[0].start:spans[0].end] != text {
		t.Errorf("expected the whole text as one sentence, got %q", text[spans[0].start:spans[0].end])
	}
}

func TestLocalRuleSentencesRespectsQuotedTerminators(t *testing.T) {
	text := `She said "Wait. Stop." and left.`
	spans := localRuleSentences(text)
	if len(spans) != 2 {
		t.Fatalf("expected quoted period not to split mid-quote, got %d spans: %+v", len(spans), spans)
	}
}

func TestPackSentencesSingleLongSentenceBecomesOwnBlock(t *testing.T) {
	long := strings.Repeat("字", 350)
	spans := []span{{0, len(long)}}
	packed := packSentences(long, spans)
	if len(packed) != 1 || packed[0].start != 0 || packed[0].end != len(long) {
		t.Errorf("expected the oversized sentence to form its own block unchanged, got %+v", packed)
	}
}

func TestPackSentencesAccumulatesToTarget(t *testing.T) {
	sentence := strings.Repeat("a", 60) + "."
	text := strings.Repeat(sentence, 10)
	var spans []span
	for i := 0; i < 10; i++ {
		spans = append(spans, span{i * len(sentence), (i + 1) * len(sentence)})
	}
	packed := packSentences(text, spans)
	if len(packed) < 2 {
		t.Fatalf("expected more than one packed block for %d-char sentences, got %d", len(text), len(packed))
	}
	// Concatenation must be a subsequence of the original text, in order.
	prevEnd := 0
	for _, p := range packed {
		if p.start < prevEnd {
			t.Fatalf("packed spans overlap or go backward: %+v", packed)
		}
		prevEnd = p.end
	}
}

func TestSegmenterSentencesFallsBackToLocalRuleWithoutServiceURL(t *testing.T) {
	s := NewSegmenter("", nil, nil, nil)
	blocks, err := s.Sentences(context.Background(), "One sentence here. Another one follows.", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(blocks) == 0 {
		t.Fatal("expected at least one sentence block")
	}
	for i, b := range blocks {
		if b.ChunkID != i {
			t.Errorf("expected dense chunk ids, block %d has id %d", i, b.ChunkID)
		}
	}
}

func TestIsDecimalPointBoundaryChecks(t *testing.T) {
	runes := []rune("3.14")
	if !isDecimalPoint(runes, 1) {
		t.Error("expected '.' between two digits to be a decimal point")
	}
	runes2 := []rune(".14")
	if isDecimalPoint(runes2, 0) {
		t.Error("leading '.' cannot be a decimal point")
	}
}
