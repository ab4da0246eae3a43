package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"emotion-prep-go/internal/logger"
	"emotion-prep-go/internal/types"
)

// HFSource reads a dataset through the Hugging Face datasets-server API.
type HFSource struct {
	BaseURL  string
	Dataset  string
	Config   string
	PageSize int
	Token    string
	Client   *http.Client
	// MaxElapsed bounds the retries of a single request.
	MaxElapsed time.Duration
	OnPage     ProgressFunc
}

func NewHFSource(baseURL, dataset, config string, timeout time.Duration) *HFSource {
	return &HFSource{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Dataset:    dataset,
		Config:     config,
		PageSize:   100,
		Client:     &http.Client{Timeout: timeout},
		MaxElapsed: 30 * time.Second,
	}
}

type splitsResponse struct {
	Splits []struct {
		Dataset string `json:"dataset"`
		Config  string `json:"config"`
		Split   string `json:"split"`
	} `json:"splits"`
}

type infoResponse struct {
	DatasetInfo struct {
		Features map[string]struct {
			Type  string   `json:"_type"`
			Names []string `json:"names"`
		} `json:"features"`
	} `json:"dataset_info"`
}

type rowsResponse struct {
	Rows []struct {
		RowIdx int `json:"row_idx"`
		Row    struct {
			Text  *string `json:"text"`
			Label *int64  `json:"label"`
		} `json:"row"`
	} `json:"rows"`
	NumRowsTotal int `json:"num_rows_total"`
}

func (s *HFSource) Splits(ctx context.Context) ([]string, error) {
	var resp splitsResponse
	if err := s.get(ctx, "/splits", url.Values{"dataset": {s.Dataset}}, &resp); err != nil {
		return nil, err
	}
	var out []string
	for _, sp := range resp.Splits {
		if s.Config == "" || sp.Config == s.Config {
			out = append(out, sp.Split)
		}
	}
	if len(out) == 0 {
		return nil, sourceErr("dataset %q config %q has no splits", s.Dataset, s.Config)
	}
	return out, nil
}

func (s *HFSource) Vocabulary(ctx context.Context) (types.Vocabulary, error) {
	var resp infoResponse
	q := url.Values{"dataset": {s.Dataset}, "config": {s.Config}}
	if err := s.get(ctx, "/info", q, &resp); err != nil {
		return nil, err
	}
	label, ok := resp.DatasetInfo.Features["label"]
	if !ok || len(label.Names) == 0 {
		return nil, sourceErr("dataset %q has no class label names", s.Dataset)
	}
	return types.Vocabulary(label.Names), nil
}

// Records pages through /rows until num_rows_total rows were read.
func (s *HFSource) Records(ctx context.Context, split string) ([]types.Record, error) {
	log := logger.New().Component("source.hf").WithField("split", split)
	pageSize := s.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 100
	}
	var out []types.Record
	total := -1
	for offset := 0; total < 0 || offset < total; offset += pageSize {
		q := url.Values{
			"dataset": {s.Dataset},
			"config":  {s.Config},
			"split":   {split},
			"offset":  {strconv.Itoa(offset)},
			"length":  {strconv.Itoa(pageSize)},
		}
		var page rowsResponse
		if err := s.get(ctx, "/rows", q, &page); err != nil {
			return nil, err
		}
		total = page.NumRowsTotal
		if len(page.Rows) == 0 && offset < total {
			return nil, sourceErr("split %q: empty page at offset %d of %d", split, offset, total)
		}
		for _, r := range page.Rows {
			rec := types.Record{Label: -1}
			if r.Row.Text != nil {
				rec.Text = *r.Row.Text
			}
			if r.Row.Label != nil {
				rec.Label = *r.Row.Label
			}
			out = append(out, rec)
		}
		if s.OnPage != nil {
			s.OnPage(split, len(out), total)
		}
		log.WithField("fetched", len(out)).WithField("total", total).Debug("page fetched")
	}
	return out, nil
}

func (s *HFSource) client() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	return http.DefaultClient
}

// get retries transport errors, 429 and 5xx with exponential backoff.
// Other 4xx responses fail at once.
func (s *HFSource) get(ctx context.Context, path string, q url.Values, target interface{}) error {
	endpoint := s.BaseURL + path + "?" + q.Encode()
	bo := backoff.NewExponentialBackOff()
	if s.MaxElapsed > 0 {
		bo.MaxElapsedTime = s.MaxElapsed
	}
	var lastErr error
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			lastErr = err
			return backoff.Permanent(err)
		}
		if s.Token != "" {
			req.Header.Set("Authorization", "Bearer "+s.Token)
		}
		resp, err := s.client().Do(req)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("server error %d: %s", resp.StatusCode, string(body))
			return lastErr
		}
		if resp.StatusCode >= 300 {
			lastErr = fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
			return backoff.Permanent(lastErr)
		}
		if len(body) == 0 {
			lastErr = fmt.Errorf("empty body")
			return lastErr
		}
		if err := json.Unmarshal(body, target); err != nil {
			lastErr = fmt.Errorf("json decode error: %v body=%s", err, string(body))
			return backoff.Permanent(lastErr)
		}
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		if lastErr == nil {
			lastErr = err
		}
		return fmt.Errorf("%w: GET %s: %v", ErrDataSource, path, lastErr)
	}
	return nil
}
