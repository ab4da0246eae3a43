package processor

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"emotion-prep-go/internal/config"
	"emotion-prep-go/internal/dataset"
	"emotion-prep-go/internal/logger"
	"emotion-prep-go/internal/source"
	"emotion-prep-go/internal/types"
)

// NewSource builds the data source selected by cfg.Source.
func NewSource(cfg config.Config) (source.Source, error) {
	switch cfg.Source {
	case "hf":
		s := source.NewHFSource(cfg.HFBaseURL, cfg.HFDataset, cfg.HFConfig, cfg.HFTimeout)
		s.PageSize = cfg.HFPageSize
		s.Token = cfg.HFToken
		return s, nil
	case "parquet":
		return &source.ParquetSource{Dir: cfg.ParquetDir, Vocab: types.Vocabulary(cfg.LabelNames)}, nil
	}
	return nil, fmt.Errorf("unknown dataset source %q", cfg.Source)
}

// MaterializeResult maps each split to the absolute path of its table.
type MaterializeResult struct {
	RunID      string            `json:"run_id"`
	Paths      map[string]string `json:"paths"`
	Rows       map[string]int    `json:"rows"`
	DurationMs int64             `json:"duration_ms"`
}

// Materialize runs dataset.Materialize against sink and logs the run.
func Materialize(ctx context.Context, src source.Source, splits []string, sink dataset.DirSink) (MaterializeResult, error) {
	log, runID := logger.New().WithRun()
	log = log.WithField("component", "processor.materialize").WithField("splits", splits)
	start := time.Now()
	res := MaterializeResult{RunID: runID, Paths: map[string]string{}, Rows: map[string]int{}}

	log.Info("materializing dataset")
	tables, err := dataset.Materialize(ctx, src, splits, sink)
	if err != nil {
		log.WithField("error", err.Error()).Error("materialize failed")
		return res, err
	}
	for _, s := range splits {
		p := sink.Path(s)
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		res.Paths[s] = p
		res.Rows[s] = tables[s].Len()
		log.WithField("split", s).WithField("rows", res.Rows[s]).WithField("path", p).Info("saved split")
	}
	res.DurationMs = time.Since(start).Milliseconds()
	log.WithField("duration_ms", res.DurationMs).Info("materialize complete")
	return res, nil
}
