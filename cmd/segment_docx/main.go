// Command segment_docx is a batch debugging CLI for the detection pipeline:
// it feeds one or more text documents through detect.Service and prints the
// resulting blocks and scores.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/gy212/cheekai-core/appidentity"
	"github.com/gy212/cheekai-core/ascii"
	"github.com/gy212/cheekai-core/detect"
	cheekaierrors "github.com/gy212/cheekai-core/errors"
	"github.com/gy212/cheekai-core/foundry/similarity"
	"github.com/gy212/cheekai-core/logging"
	"github.com/gy212/cheekai-core/model"
	"github.com/gy212/cheekai-core/pathfinder"
)

const (
	exitSuccess  = 0
	exitProvider = 1
	exitBadInput = 2
)

var knownProviders = []string{"glm", "deepseek", "openai", "gemini", "anthropic"}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("segment_docx", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	filterFlag := fs.Bool("filter", false, "drop title/TOC-like short lines before scoring")
	llmFlag := fs.Bool("llm", false, "use the configured LLM provider in addition to local scoring")
	providerFlag := fs.String("provider", "", "provider spec as name[:model], e.g. deepseek:deepseek-chat")
	outFlag := fs.String("out", "", "write the full JSON response to FILE instead of printing a table")
	if err := fs.Parse(args); err != nil {
		return exitBadInput
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: segment_docx <path|dir|glob> [--filter] [--llm] [--provider name:model] [--out FILE]")
		return exitBadInput
	}

	logger, err := logging.NewCLI("segment_docx")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		logger = nil
	}

	identity := appidentity.Must(context.Background())

	providerName, _ := detect.ParseProviderSpec(*providerFlag)
	if *llmFlag && providerName != "" {
		if !containsString(knownProviders, providerName) {
			suggestions := similarity.Suggest(providerName, knownProviders, similarity.DefaultSuggestOptions())
			msg := fmt.Sprintf("unknown provider %q", providerName)
			if len(suggestions) > 0 {
				msg += fmt.Sprintf(" (did you mean %q?)", suggestions[0].Value)
			}
			fmt.Fprintln(os.Stderr, msg)
			return exitBadInput
		}
	}

	paths, err := resolvePaths(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return exitBadInput
	}
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "no matching documents found")
		return exitBadInput
	}

	svc := detect.NewService(identity, logger, nil)

	responses := make(map[string]detect.Response, len(paths))
	for _, p := range paths {
		raw, err := os.ReadFile(p) // #nosec G304 -- user-provided path is the CLI's purpose
		if err != nil {
			fmt.Fprintf(os.Stderr, "read %s: %v\n", p, err)
			return exitBadInput
		}
		text := string(raw)
		if *filterFlag {
			text = dropTitleLikeLines(text)
		}
		if strings.TrimSpace(text) == "" {
			fmt.Fprintf(os.Stderr, "%s: empty after filtering\n", p)
			return exitBadInput
		}

		req := detect.Request{
			Text:          text,
			UsePerplexity: true,
			UseStylometry: true,
			Sensitivity:   model.SensitivityMedium,
		}
		if *llmFlag {
			req.Provider = *providerFlag
		}

		resp, err := svc.Detect(context.Background(), req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", p, err)
			if envelope, ok := err.(*cheekaierrors.ErrorEnvelope); ok && envelope.Code == detect.CodeInvalidInput {
				return exitBadInput
			}
			return exitProvider
		}
		responses[p] = resp
	}

	if *outFlag != "" {
		data, err := json.MarshalIndent(responses, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "encode response: %v\n", err)
			return exitProvider
		}
		if err := os.WriteFile(*outFlag, data, 0o644); err != nil { // #nosec G306 -- CLI output file, not secret material
			fmt.Fprintf(os.Stderr, "write %s: %v\n", *outFlag, err)
			return exitProvider
		}
		return exitSuccess
	}

	for _, p := range paths {
		printTable(p, responses[p])
	}
	return exitSuccess
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// resolvePaths expands a single path argument into a list of document paths:
// a literal file is returned as-is, a directory is walked for .txt files, and
// anything containing glob metacharacters is expanded via doublestar.
func resolvePaths(arg string) ([]string, error) {
	if strings.ContainsAny(arg, "*?[") {
		if _, err := doublestar.Match(arg, "probe"); err != nil {
			return nil, fmt.Errorf("invalid glob %q: %w", arg, err)
		}
		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid glob %q: %w", arg, err)
		}
		return matches, nil
	}

	info, err := os.Stat(arg)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", arg, err)
	}
	if !info.IsDir() {
		return []string{arg}, nil
	}

	finder := pathfinder.NewFinder()
	results, err := finder.FindByExtension(context.Background(), arg, []string{"txt"})
	if err != nil {
		return nil, fmt.Errorf("discover documents under %s: %w", arg, err)
	}
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.SourcePath
	}
	return out, nil
}

// dropTitleLikeLines drops short, unpunctuated single lines (headings,
// table-of-contents entries) from a paragraph-delimited text before it
// reaches the segmenter.
func dropTitleLikeLines(text string) string {
	paragraphs := strings.Split(text, "\n\n")
	kept := paragraphs[:0]
	for _, p := range paragraphs {
		if looksLikeTitle(p) {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, "\n\n")
}

func looksLikeTitle(paragraph string) bool {
	trimmed := strings.TrimSpace(paragraph)
	if trimmed == "" || strings.Contains(trimmed, "\n") {
		return false
	}
	if len(trimmed) >= 60 {
		return false
	}
	last := trimmed[len(trimmed)-1]
	return last != '.' && last != '!' && last != '?'
}

func printTable(path string, resp detect.Response) {
	header := fmt.Sprintf("%s  decision=%s  overall=%.3f  confidence=%.3f",
		path, resp.Aggregation.Decision, resp.Aggregation.OverallProbability, resp.Aggregation.OverallConfidence)
	fmt.Println(ascii.DrawBox(header, ascii.MaxContentWidth([]string{header})+4))

	const chunkWidth, probWidth, confWidth = 8, 12, 12
	fmt.Println(padColumn("chunk", chunkWidth) + padColumn("aiProb", probWidth) + padColumn("confidence", confWidth) + "explanations")
	for _, seg := range resp.Segments {
		explanations := strings.Join(seg.Explanations, ",")
		row := padColumn(fmt.Sprintf("%d", seg.ChunkID), chunkWidth) +
			padColumn(fmt.Sprintf("%.3f", seg.AIProbability), probWidth) +
			padColumn(fmt.Sprintf("%.3f", seg.Confidence), confWidth) +
			explanations
		fmt.Println(row)
	}
	if resp.FilterSummary != nil {
		fmt.Printf("filtered: %d\n", resp.FilterSummary.Filtered)
	}
	fmt.Println()
}

// padColumn right-pads a cell to width terminal columns, using rune-width
// (not byte-length) so mixed CJK/Latin text still aligns.
func padColumn(s string, width int) string {
	pad := width - ascii.StringWidth(s)
	if pad <= 0 {
		return s + " "
	}
	return s + strings.Repeat(" ", pad)
}
