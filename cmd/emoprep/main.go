package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"emotion-prep-go/internal/config"
	"emotion-prep-go/internal/dataset"
	"emotion-prep-go/internal/pipeline"
	"emotion-prep-go/internal/processor"
	"emotion-prep-go/internal/source"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type cleanFlags struct {
	input      string
	output     string
	minLength  int
	maxLength  int
	textColumn string
	workers    int
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "emoprep",
		Short:         "Prepare the emotion dataset and clean text for classification",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.AddCommand(newMaterializeCmd(), newCleanCmd(), newTextCmd())
	return root
}

func newMaterializeCmd() *cobra.Command {
	var splits, out, format, src string
	var noProgress bool
	cmd := &cobra.Command{
		Use:   "materialize",
		Short: "Download the emotion dataset and write one labeled table per split",
		Long:  `The materialize command fetches every requested split, resolves label indexes to emotion names and writes <out>/<split>.<format>. Nothing is written unless every split resolves.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("source") {
				cfg.Source = strings.ToLower(src)
			}
			if !cmd.Flags().Changed("out") {
				out = cfg.DataDir
			}
			wanted := cfg.Splits
			if cmd.Flags().Changed("splits") {
				wanted = config.SplitList(splits)
			}
			if format != "csv" && format != "xlsx" {
				return fmt.Errorf("%w: %q", dataset.ErrUnsupportedFormat, format)
			}

			s, err := processor.NewSource(cfg)
			if err != nil {
				return err
			}
			var bars *processor.Progress
			if hf, ok := s.(*source.HFSource); ok && !noProgress {
				bars = processor.NewProgress(cmd.ErrOrStderr())
				hf.OnPage = bars.Update
			}
			res, err := processor.Materialize(cmd.Context(), s, wanted, dataset.DirSink{Dir: out, Format: format})
			if bars != nil {
				bars.Wait()
			}
			if err != nil {
				return err
			}
			for _, split := range wanted {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\n", split, res.Rows[split], res.Paths[split])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&splits, "splits", strings.Join(config.DefaultSplits, ","), "Comma separated splits to materialize")
	cmd.Flags().StringVar(&out, "out", "data", "Output directory (default DATA_DIR)")
	cmd.Flags().StringVar(&format, "format", "csv", "Output format, options: csv, xlsx")
	cmd.Flags().StringVar(&src, "source", "hf", "Dataset source, options: hf, parquet")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable download progress bars")
	return cmd
}

func newCleanCmd() *cobra.Command {
	var f cleanFlags
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Clean the text column of a CSV or XLSX table",
		Long:  `The clean command runs the text pipeline over every row, drops rows that end up empty or outside the length bounds and prints the absolute path of the written table.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts := processor.CleanOptions{
				TextColumn:  cfg.TextColumn,
				LabelColumn: cfg.LabelColumn,
				Bounds:      cfg.Bounds,
				Workers:     cfg.Workers,
			}
			if cmd.Flags().Changed("min-length") {
				opts.Bounds.Min = f.minLength
			}
			if cmd.Flags().Changed("max-length") {
				opts.Bounds.Max = f.maxLength
			}
			if cmd.Flags().Changed("text-column") {
				opts.TextColumn = f.textColumn
			}
			if cmd.Flags().Changed("workers") {
				opts.Workers = f.workers
			}

			out := processor.ResolveOutputPath(f.input, f.output, cfg.OutputSuffix)
			res, err := processor.CleanFile(cmd.Context(), pipeline.New(), f.input, out, opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.OutputPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&f.input, "input-csv", "i", "", "Input table (.csv or .xlsx)")
	cmd.Flags().StringVarP(&f.output, "output-csv", "o", "", "Output table (default <input stem>_clean<ext>)")
	cmd.Flags().IntVar(&f.minLength, "min-length", config.Default().Bounds.Min, "Minimum cleaned length in characters")
	cmd.Flags().IntVar(&f.maxLength, "max-length", config.Default().Bounds.Max, "Maximum cleaned length in characters")
	cmd.Flags().StringVar(&f.textColumn, "text-column", config.DefaultTextColumn, "Column holding the text")
	cmd.Flags().IntVar(&f.workers, "workers", 1, "Parallel cleaning workers")
	cobra.CheckErr(cmd.MarkFlagRequired("input-csv"))
	return cmd
}

func newTextCmd() *cobra.Command {
	var minLength, maxLength int
	cmd := &cobra.Command{
		Use:   "text TEXT",
		Short: "Clean a single string and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			b := cfg.Bounds
			if cmd.Flags().Changed("min-length") {
				b.Min = minLength
			}
			if cmd.Flags().Changed("max-length") {
				b.Max = maxLength
			}
			res, err := processor.CleanText(pipeline.New(), args[0], b)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Text)
			return nil
		},
	}
	cmd.Flags().IntVar(&minLength, "min-length", config.Default().Bounds.Min, "Minimum cleaned length in characters")
	cmd.Flags().IntVar(&maxLength, "max-length", config.Default().Bounds.Max, "Maximum cleaned length in characters")
	return cmd
}
