package source

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"

	"emotion-prep-go/internal/types"
)

// ParquetRow is the on-disk layout of one split row. Columns are optional, as in
// the files published on the Hugging Face hub.
type ParquetRow struct {
	Text  *string `parquet:"name=text, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Label *int64  `parquet:"name=label, type=INT64, repetitiontype=OPTIONAL"`
}

// ParquetSource reads <Dir>/<split>.parquet files. Parquet carries no class
// label names, so the vocabulary is configured.
type ParquetSource struct {
	Dir   string
	Vocab types.Vocabulary
}

func (p *ParquetSource) Splits(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(p.Dir)
	if err != nil {
		return nil, sourceErr("read dir %s: %v", p.Dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".parquet") {
			continue
		}
		out = append(out, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
	}
	sort.Strings(out)
	return out, nil
}

func (p *ParquetSource) Vocabulary(ctx context.Context) (types.Vocabulary, error) {
	if len(p.Vocab) == 0 {
		return nil, sourceErr("no label names configured for %s", p.Dir)
	}
	return p.Vocab, nil
}

func (p *ParquetSource) Records(ctx context.Context, split string) ([]types.Record, error) {
	path := filepath.Join(p.Dir, split+".parquet")
	if _, err := os.Stat(path); err != nil {
		return nil, sourceErr("split %q: %v", split, err)
	}
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, sourceErr("open %s: %v", path, err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(ParquetRow), 1)
	if err != nil {
		return nil, sourceErr("parquet reader %s: %v", path, err)
	}
	defer pr.ReadStop()

	n := int(pr.GetNumRows())
	rows := make([]ParquetRow, n)
	if n > 0 {
		if err := pr.Read(&rows); err != nil {
			return nil, sourceErr("read %s: %v", path, err)
		}
	}
	out := make([]types.Record, len(rows))
	for i, r := range rows {
		out[i].Label = -1
		if r.Text != nil {
			out[i].Text = *r.Text
		}
		if r.Label != nil {
			out[i].Label = *r.Label
		}
	}
	return out, nil
}
