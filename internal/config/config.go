// Package config reads runtime settings from the environment and an optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"emotion-prep-go/internal/types"
)

const (
	DefaultTextColumn   = "text"
	DefaultLabelColumn  = "emotion"
	DefaultOutputSuffix = "_clean"
	DefaultHFBaseURL    = "https://datasets-server.huggingface.co"
	DefaultHFDataset    = "dair-ai/emotion"
	DefaultHFConfig     = "split"
	MaxHFPageSize       = 100
)

// DefaultLabelNames is the label vocabulary of the emotion dataset, in index order.
var DefaultLabelNames = []string{"sadness", "joy", "love", "anger", "fear", "surprise"}

var DefaultSplits = []string{"train", "validation", "test"}

type Config struct {
	Bounds       types.Bounds
	TextColumn   string
	LabelColumn  string
	OutputSuffix string
	DataDir      string
	Workers      int

	Source      string // "hf" or "parquet"
	HFBaseURL   string
	HFDataset   string
	HFConfig    string
	HFPageSize  int
	HFTimeout   time.Duration
	HFToken     string
	ParquetDir  string
	LabelNames  []string
	Splits      []string
	Port        string
	Environment string
}

func Default() Config {
	return Config{
		Bounds:       types.DefaultBounds(),
		TextColumn:   DefaultTextColumn,
		LabelColumn:  DefaultLabelColumn,
		OutputSuffix: DefaultOutputSuffix,
		DataDir:      "data",
		Workers:      1,
		Source:       "hf",
		HFBaseURL:    DefaultHFBaseURL,
		HFDataset:    DefaultHFDataset,
		HFConfig:     DefaultHFConfig,
		HFPageSize:   MaxHFPageSize,
		HFTimeout:    30 * time.Second,
		ParquetDir:   "data/parquet",
		LabelNames:   append([]string(nil), DefaultLabelNames...),
		Splits:       append([]string(nil), DefaultSplits...),
		Port:         "8080",
		Environment:  "local",
	}
}

// Load reads .env (if present, never overriding set variables) and the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function; empty values keep defaults.
func FromEnv(getenv func(string) string) (Config, error) {
	c := Default()
	var err error

	if c.Bounds.Min, err = intOr(getenv, "MIN_LENGTH", c.Bounds.Min); err != nil {
		return c, err
	}
	if c.Bounds.Max, err = intOr(getenv, "MAX_LENGTH", c.Bounds.Max); err != nil {
		return c, err
	}
	if c.Workers, err = intOr(getenv, "WORKERS", c.Workers); err != nil {
		return c, err
	}
	if c.HFPageSize, err = intOr(getenv, "HF_PAGE_SIZE", c.HFPageSize); err != nil {
		return c, err
	}
	timeoutSec, err := intOr(getenv, "HF_TIMEOUT_SEC", int(c.HFTimeout/time.Second))
	if err != nil {
		return c, err
	}
	c.HFTimeout = time.Duration(timeoutSec) * time.Second

	c.TextColumn = strOr(getenv, "TEXT_COLUMN", c.TextColumn)
	c.LabelColumn = strOr(getenv, "LABEL_COLUMN", c.LabelColumn)
	c.OutputSuffix = strOr(getenv, "OUTPUT_SUFFIX", c.OutputSuffix)
	c.DataDir = strOr(getenv, "DATA_DIR", c.DataDir)
	c.Source = strings.ToLower(strOr(getenv, "DATASET_SOURCE", c.Source))
	c.HFBaseURL = strings.TrimRight(strOr(getenv, "HF_BASE_URL", c.HFBaseURL), "/")
	c.HFDataset = strOr(getenv, "HF_DATASET", c.HFDataset)
	c.HFConfig = strOr(getenv, "HF_CONFIG", c.HFConfig)
	c.HFToken = getenv("HF_TOKEN")
	c.ParquetDir = strOr(getenv, "PARQUET_DIR", c.ParquetDir)
	c.Port = strOr(getenv, "PORT", c.Port)
	c.Environment = strOr(getenv, "ENVIRONMENT", c.Environment)
	if v := getenv("LABEL_NAMES"); v != "" {
		c.LabelNames = SplitList(v)
	}
	if v := getenv("SPLITS"); v != "" {
		c.Splits = SplitList(v)
	}

	return c, c.Validate()
}

func (c Config) Validate() error {
	if err := c.Bounds.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.TextColumn == "" {
		return fmt.Errorf("config: TEXT_COLUMN is empty")
	}
	if c.Workers < 1 {
		return fmt.Errorf("config: WORKERS must be >= 1, got %d", c.Workers)
	}
	if c.HFPageSize < 1 || c.HFPageSize > MaxHFPageSize {
		return fmt.Errorf("config: HF_PAGE_SIZE must be in [1,%d], got %d", MaxHFPageSize, c.HFPageSize)
	}
	if c.HFTimeout <= 0 {
		return fmt.Errorf("config: HF_TIMEOUT_SEC must be positive")
	}
	switch c.Source {
	case "hf", "parquet":
	default:
		return fmt.Errorf("config: unknown DATASET_SOURCE %q (want hf or parquet)", c.Source)
	}
	if len(c.Splits) == 0 {
		return fmt.Errorf("config: SPLITS is empty")
	}
	return nil
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func strOr(getenv func(string) string, k, def string) string {
	if v := strings.TrimSpace(getenv(k)); v != "" {
		return v
	}
	return def
}

func intOr(getenv func(string) string, k string, def int) (int, error) {
	v := strings.TrimSpace(getenv(k))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("config: %s=%q is not an integer", k, v)
	}
	return n, nil
}
