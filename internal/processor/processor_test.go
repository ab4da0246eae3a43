package processor

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emotion-prep-go/internal/config"
	"emotion-prep-go/internal/dataset"
	"emotion-prep-go/internal/pipeline"
	"emotion-prep-go/internal/source"
	"emotion-prep-go/internal/types"
)

func TestResolveOutputPath(t *testing.T) {
	cases := []struct {
		in, out, want string
	}{
		{"data/train.csv", "", filepath.Join("data", "train_clean.csv")},
		{"data/train.xlsx", "", filepath.Join("data", "train_clean.xlsx")},
		{"train.csv", "", "train_clean.csv"},
		{"data/train.csv", "out/clean.csv", "out/clean.csv"},
		{"data/train.csv", "out/clean.XLSX", "out/clean.XLSX"},
		{"data/train.csv", "out/clean", "out/clean.csv"},
		{"data/train.csv", "out/clean.txt", "out/clean.csv"},
		{"data/tweets.txt", "", filepath.Join("data", "tweets_clean.csv")},
		{"data/tweets", "", filepath.Join("data", "tweets_clean.csv")},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ResolveOutputPath(tc.in, tc.out, "_clean"), "in=%q out=%q", tc.in, tc.out)
	}
}

func writeCSV(t *testing.T, path string, tbl *types.Table) {
	t.Helper()
	require.NoError(t, dataset.WriteTable(path, tbl))
}

func TestCleanFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "train.csv")
	tbl := types.NewTable("text", "emotion")
	tbl.Append("I   FEEL   SO   HAPPY!!!!!!", "joy")
	tbl.Append("   ", "fear")
	tbl.Append("so angry... ...", "anger")
	writeCSV(t, in, tbl)

	out := filepath.Join(dir, "nested", "train_clean.csv")
	res, err := CleanFile(context.Background(), pipeline.New(), in, out, CleanOptions{
		TextColumn:  "text",
		LabelColumn: "emotion",
		Bounds:      types.DefaultBounds(),
		Workers:     2,
	})
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(res.OutputPath))
	assert.Equal(t, 3, res.Report.Input)
	assert.Equal(t, 1, res.Report.Kept)
	assert.Equal(t, map[string]int{"joy": 1}, res.Report.LabelsAfter)
	require.NotEmpty(t, res.Actions)
	assert.Contains(t, res.Actions[0].Insight, `"anger"`)

	got, err := dataset.ReadTable(res.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"text", "emotion"}, got.Columns)
	assert.Equal(t, [][]string{{"i feel so happy!", "joy"}}, got.Rows)
}

func TestCleanFileEmptyResultKeepsHeader(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "short.csv")
	tbl := types.NewTable("text")
	tbl.Append("hi")
	writeCSV(t, in, tbl)

	res, err := CleanFile(context.Background(), pipeline.New(), in, filepath.Join(dir, "out.csv"), CleanOptions{
		TextColumn: "text",
		Bounds:     types.DefaultBounds(),
	})
	require.NoError(t, err)
	got, err := dataset.ReadTable(res.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"text"}, got.Columns)
	assert.Zero(t, got.Len())
}

func TestCleanFileErrors(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	opts := CleanOptions{TextColumn: "text", Bounds: types.DefaultBounds()}

	_, err := CleanFile(ctx, pipeline.New(), filepath.Join(dir, "missing.csv"), filepath.Join(dir, "o.csv"), opts)
	assert.Error(t, err)

	in := filepath.Join(dir, "sentences.csv")
	tbl := types.NewTable("sentence")
	tbl.Append("i feel great about this")
	writeCSV(t, in, tbl)
	out := filepath.Join(dir, "o.csv")
	_, err = CleanFile(ctx, pipeline.New(), in, out, opts)
	assert.ErrorIs(t, err, pipeline.ErrMissingColumn)
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "no output on failure")
}

func TestCleanText(t *testing.T) {
	p := pipeline.New()
	res, err := CleanText(p, "i m not sure what to feel today", types.DefaultBounds())
	require.NoError(t, err)
	assert.Equal(t, "i am not sure what to feel today", res.Text)
	assert.Equal(t, 32, res.Length)
	assert.Equal(t, "i m not sure what to feel today", res.Original)

	_, err = CleanText(p, "Hello", types.DefaultBounds())
	assert.ErrorIs(t, err, pipeline.ErrLengthOutOfRange)
}

func TestNewSource(t *testing.T) {
	cfg := config.Default()
	s, err := NewSource(cfg)
	require.NoError(t, err)
	hf, ok := s.(*source.HFSource)
	require.True(t, ok)
	assert.Equal(t, config.DefaultHFDataset, hf.Dataset)
	assert.Equal(t, config.MaxHFPageSize, hf.PageSize)

	cfg.Source = "parquet"
	s, err = NewSource(cfg)
	require.NoError(t, err)
	assert.IsType(t, &source.ParquetSource{}, s)

	cfg.Source = "ftp"
	_, err = NewSource(cfg)
	assert.Error(t, err)
}

func TestMaterialize(t *testing.T) {
	src := &source.MemorySource{
		Vocab: types.Vocabulary(config.DefaultLabelNames),
		Data: map[string][]types.Record{
			"train": {{Text: "i feel great", Label: 1}, {Text: "i am scared", Label: 4}},
			"test":  {{Text: "what a surprise", Label: 5}},
		},
	}
	dir := t.TempDir()
	res, err := Materialize(context.Background(), src, []string{"train", "test"}, dataset.DirSink{Dir: dir})
	require.NoError(t, err)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, map[string]int{"train": 2, "test": 1}, res.Rows)

	got, err := dataset.ReadTable(res.Paths["train"])
	require.NoError(t, err)
	assert.Equal(t, []string{dataset.TextColumn, dataset.EmotionColumn}, got.Columns)
	assert.Equal(t, []string{"i am scared", "fear"}, got.Rows[1])
}

func TestMaterializeBadLabelWritesNothing(t *testing.T) {
	src := &source.MemorySource{
		Vocab: types.Vocabulary{"sadness", "joy"},
		Data: map[string][]types.Record{
			"train": {{Text: "fine", Label: 1}},
			"test":  {{Text: "odd", Label: 9}},
		},
	}
	dir := t.TempDir()
	_, err := Materialize(context.Background(), src, []string{"train", "test"}, dataset.DirSink{Dir: dir})
	assert.ErrorIs(t, err, dataset.ErrVocabulary)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestProgressWaitReturnsForUnfinishedBars(t *testing.T) {
	var buf bytes.Buffer
	pr := NewProgress(&buf)
	pr.Update("train", 0, 0) // unknown total is ignored
	pr.Update("train", 100, 300)
	pr.Update("test", 50, 50)

	done := make(chan struct{})
	go func() {
		pr.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Wait blocked on an unfinished bar")
	}
}
