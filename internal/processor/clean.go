// internal/processor/clean.go
package processor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"emotion-prep-go/internal/actionable"
	"emotion-prep-go/internal/aggregator"
	"emotion-prep-go/internal/dataset"
	"emotion-prep-go/internal/logger"
	"emotion-prep-go/internal/pipeline"
	"emotion-prep-go/internal/types"
)

// CleanOptions are the per-call overrides of a batch clean.
type CleanOptions struct {
	TextColumn  string
	LabelColumn string
	Bounds      types.Bounds
	Workers     int
}

// CleanResult is returned by CleanFile
type CleanResult struct {
	InputPath  string                  `json:"input_path"`
	OutputPath string                  `json:"output_path"`
	Report     aggregator.Report       `json:"report"`
	Actions    []actionable.ActionCard `json:"actions"`
	DurationMs int64                   `json:"duration_ms"`
}

// ResolveOutputPath picks where a cleaned table goes. An explicit path is forced
// to a table extension (.csv unless it already is .csv or .xlsx); without one the
// suffix is put between the input's stem and its table extension.
func ResolveOutputPath(in, out, suffix string) string {
	if out != "" {
		return tablePath(out, "")
	}
	return tablePath(in, suffix)
}

func tablePath(path, suffix string) string {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	switch strings.ToLower(ext) {
	case ".csv", ".xlsx":
	default:
		ext = ".csv"
	}
	return stem + suffix + ext
}

// CleanFile reads a table, runs batch cleaning on its text column and writes the
// result to out, creating parent directories. The returned output path is absolute.
func CleanFile(ctx context.Context, p *pipeline.Pipeline, in, out string, opts CleanOptions) (CleanResult, error) {
	log := logger.New().Component("processor.clean").WithField("input", in)
	start := time.Now()
	res := CleanResult{InputPath: in, OutputPath: out}

	raw, err := dataset.ReadTable(in)
	if err != nil {
		log.WithError(err).Error("read failed")
		return res, fmt.Errorf("read input: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	cleaned, err := p.CleanTableParallel(raw, opts.TextColumn, opts.Bounds, opts.Workers)
	if err != nil {
		log.WithError(err).Error("clean failed")
		return res, fmt.Errorf("clean %s: %w", in, err)
	}
	res.Report = aggregator.Aggregate(raw, cleaned, opts.LabelColumn)
	res.Actions = actionable.Generate(res.Report, opts.Bounds)

	if err := dataset.WriteTable(out, cleaned); err != nil {
		log.WithError(err).Error("write failed")
		return res, fmt.Errorf("write output: %w", err)
	}
	if abs, err := filepath.Abs(out); err == nil {
		res.OutputPath = abs
	}
	res.DurationMs = time.Since(start).Milliseconds()

	log.WithFields(map[string]interface{}{
		"output":      res.OutputPath,
		"rows_in":     res.Report.Input,
		"rows_kept":   res.Report.Kept,
		"drop_rate":   fmt.Sprintf("%.3f", res.Report.DropRate),
		"bounds":      opts.Bounds.String(),
		"duration_ms": res.DurationMs,
	}).Info("cleaned table written")
	if actionable.NeedsAction(res.Actions) {
		for _, c := range res.Actions {
			log.WithField("action", c.Action).Warn(c.Insight)
		}
	}
	if s, err := dataset.Summarize(cleaned, opts.TextColumn, opts.LabelColumn); err == nil {
		log.WithField("top_labels", s.TopLabels()).WithField("mean_len", fmt.Sprintf("%.1f", s.MeanLen)).Debug("cleaned table summary")
	}
	return res, nil
}

// CleanText runs single-string cleaning and wraps the outcome for callers that
// report it (CLI, HTTP).
func CleanText(p *pipeline.Pipeline, text string, b types.Bounds) (types.CleanResponse, error) {
	start := time.Now()
	res := types.CleanResponse{Original: text, Bounds: b}
	cleaned, err := p.CleanText(text, b)
	res.DurationMs = time.Since(start).Milliseconds()
	if err != nil {
		return res, err
	}
	res.Text = cleaned
	res.Length = pipeline.Length(cleaned)
	return res, nil
}
