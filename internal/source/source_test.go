package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/writer"

	"emotion-prep-go/internal/types"
)

type fakeRow struct {
	Text  *string `json:"text"`
	Label int64   `json:"label"`
}

func strPtr(s string) *string { return &s }

// fakeDatasetsServer mimics the datasets-server endpoints for one dataset.
func fakeDatasetsServer(t *testing.T, rows map[string][]fakeRow, failFirst *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/splits", func(w http.ResponseWriter, r *http.Request) {
		var splits []map[string]string
		for _, name := range []string{"train", "test"} {
			if _, ok := rows[name]; ok {
				splits = append(splits, map[string]string{"dataset": r.URL.Query().Get("dataset"), "config": "split", "split": name})
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"splits": splits})
	})
	mux.HandleFunc("/info", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"dataset_info": map[string]any{
				"features": map[string]any{
					"text":  map[string]any{"dtype": "string", "_type": "Value"},
					"label": map[string]any{"names": []string{"sadness", "joy"}, "_type": "ClassLabel"},
				},
			},
		})
	})
	mux.HandleFunc("/rows", func(w http.ResponseWriter, r *http.Request) {
		if failFirst != nil && atomic.AddInt32(failFirst, -1) >= 0 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		q := r.URL.Query()
		split, ok := rows[q.Get("split")]
		if !ok {
			http.Error(w, `{"error":"Not found."}`, http.StatusNotFound)
			return
		}
		offset, _ := strconv.Atoi(q.Get("offset"))
		length, _ := strconv.Atoi(q.Get("length"))
		var page []map[string]any
		for i := offset; i < offset+length && i < len(split); i++ {
			page = append(page, map[string]any{"row_idx": i, "row": split[i], "truncated_cells": []string{}})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"rows": page, "num_rows_total": len(split)})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestHF(url string) *HFSource {
	s := NewHFSource(url, "dair-ai/emotion", "split", 5*time.Second)
	s.PageSize = 2
	s.MaxElapsed = 5 * time.Second
	return s
}

func TestHFSourcePagesAllRows(t *testing.T) {
	data := map[string][]fakeRow{
		"train": {
			{Text: strPtr("i feel sad"), Label: 0},
			{Text: strPtr("i feel great"), Label: 1},
			{Text: nil, Label: 1},
		},
		"test": {{Text: strPtr("meh"), Label: 0}},
	}
	srv := fakeDatasetsServer(t, data, nil)
	s := newTestHF(srv.URL)

	var progress []string
	s.OnPage = func(split string, fetched, total int) {
		progress = append(progress, fmt.Sprintf("%s:%d/%d", split, fetched, total))
	}

	ctx := context.Background()
	splits, err := s.Splits(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"train", "test"}, splits)

	vocab, err := s.Vocabulary(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.Vocabulary{"sadness", "joy"}, vocab)

	recs, err := s.Records(ctx, "train")
	require.NoError(t, err)
	assert.Equal(t, []types.Record{
		{Text: "i feel sad", Label: 0},
		{Text: "i feel great", Label: 1},
		{Text: "", Label: 1},
	}, recs)
	assert.Equal(t, []string{"train:2/3", "train:3/3"}, progress)
}

func TestHFSourceRetriesServerErrors(t *testing.T) {
	fail := int32(1)
	srv := fakeDatasetsServer(t, map[string][]fakeRow{"train": {{Text: strPtr("ok then"), Label: 0}}}, &fail)
	recs, err := newTestHF(srv.URL).Records(context.Background(), "train")
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestHFSourceMissingSplitIsPermanent(t *testing.T) {
	srv := fakeDatasetsServer(t, map[string][]fakeRow{"train": nil}, nil)
	start := time.Now()
	_, err := newTestHF(srv.URL).Records(context.Background(), "validation")
	assert.ErrorIs(t, err, ErrDataSource)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestHFSourceUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	s := newTestHF(url)
	s.MaxElapsed = 500 * time.Millisecond
	_, err := s.Splits(context.Background())
	assert.ErrorIs(t, err, ErrDataSource)
}

func TestHFSourceNoLabelNames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"dataset_info":{"features":{"text":{"_type":"Value"}}}}`))
	}))
	t.Cleanup(srv.Close)
	_, err := newTestHF(srv.URL).Vocabulary(context.Background())
	assert.ErrorIs(t, err, ErrDataSource)
}

func writeParquet(t *testing.T, path string, rows []ParquetRow) {
	t.Helper()
	fw, err := local.NewLocalFileWriter(path)
	require.NoError(t, err)
	pw, err := writer.NewParquetWriter(fw, new(ParquetRow), 1)
	require.NoError(t, err)
	for _, r := range rows {
		require.NoError(t, pw.Write(r))
	}
	require.NoError(t, pw.WriteStop())
	require.NoError(t, fw.Close())
}

func TestParquetSource(t *testing.T) {
	dir := t.TempDir()
	one, four := int64(1), int64(4)
	writeParquet(t, filepath.Join(dir, "train.parquet"), []ParquetRow{
		{Text: strPtr("i am so happy today"), Label: &one},
		{Text: strPtr("i am scared"), Label: &four},
		{Text: nil, Label: nil},
	})
	writeParquet(t, filepath.Join(dir, "test.parquet"), nil)

	src := &ParquetSource{Dir: dir, Vocab: types.Vocabulary{"sadness", "joy", "love", "anger", "fear", "surprise"}}
	ctx := context.Background()

	splits, err := src.Splits(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"test", "train"}, splits)

	recs, err := src.Records(ctx, "train")
	require.NoError(t, err)
	assert.Equal(t, []types.Record{
		{Text: "i am so happy today", Label: 1},
		{Text: "i am scared", Label: 4},
		{Text: "", Label: -1},
	}, recs)

	_, err = src.Records(ctx, "validation")
	assert.ErrorIs(t, err, ErrDataSource)

	_, err = (&ParquetSource{Dir: dir}).Vocabulary(ctx)
	assert.ErrorIs(t, err, ErrDataSource)

	_, err = (&ParquetSource{Dir: filepath.Join(dir, "missing")}).Splits(ctx)
	assert.ErrorIs(t, err, ErrDataSource)
}

func TestMemorySource(t *testing.T) {
	m := &MemorySource{Vocab: types.Vocabulary{"a"}, Data: map[string][]types.Record{"train": {{Text: "x"}}}}
	splits, _ := m.Splits(context.Background())
	assert.Equal(t, []string{"train"}, splits)
	_, err := m.Records(context.Background(), "test")
	assert.ErrorIs(t, err, ErrDataSource)
}
