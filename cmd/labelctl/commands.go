package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/multihop-ai/nli-review/internal/catalog"
	"github.com/multihop-ai/nli-review/internal/export"
	"github.com/multihop-ai/nli-review/internal/labeling"
	"github.com/multihop-ai/nli-review/internal/loader"
	"github.com/multihop-ai/nli-review/internal/session"
	"github.com/multihop-ai/nli-review/internal/stats"
	"github.com/multihop-ai/nli-review/pkg/models"
)

var exportOut string

var summaryCmd = &cobra.Command{
	Use:   "summary <file.json>",
	Short: "Print label distribution and agreement statistics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, _, err := buildCatalog(args[0])
		if err != nil {
			return err
		}
		entries, err := cat.Entries(catalog.ViewAll)
		if err != nil {
			return err
		}
		report := stats.Summarize(entries, 0)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "examples\t%d\n", report.Total)
		fmt.Fprintf(w, "auto-assigned\t%d\n", report.AutoAssigned)
		fmt.Fprintf(w, "manually-assigned\t%d\n", report.ManualAssigned)
		fmt.Fprintf(w, "mean agreement\t%.2f\n", report.MeanAgree)
		fmt.Fprintf(w, "label entropy\t%.3f\n", report.LabelEntropy)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "label\tcount")
		for _, lc := range report.Labels {
			fmt.Fprintf(w, "%s\t%d\n", lc.Label, lc.Count)
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, "agreement\tcount")
		for _, lc := range report.Agreement {
			fmt.Fprintf(w, "%s\t%d\n", lc.Label, lc.Count)
		}
		return w.Flush()
	},
}

var viewsCmd = &cobra.Command{
	Use:   "views <file.json>",
	Short: "Print the fixed views and their member counts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, _, err := buildCatalog(args[0])
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "view\tcount")
		for _, name := range cat.ViewNames() {
			size, err := cat.Size(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%d\n", name, size)
		}
		return w.Flush()
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <file.json>",
	Short: "Recompute labels and write the updated export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		examples, labeler, err := loadExamples(args[0])
		if err != nil {
			return err
		}

		// a throwaway session: a batch export has no reviewer edits
		data, err := export.Export(examples, session.New(nil), labeler)
		if err != nil {
			return err
		}

		out := exportOut
		if out == "" {
			out = export.DefaultFilename
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		logger.Info("export written",
			zap.String("path", out),
			zap.Int("examples", len(examples)),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output path (default "+export.DefaultFilename+")")
}

func loadExamples(path string) ([]models.Example, *labeling.Service, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	examples, err := loader.Load(f)
	if err != nil {
		return nil, nil, err
	}
	return examples, labeling.NewService(labeling.Config{Threshold: threshold}), nil
}

func buildCatalog(path string) (*catalog.Catalog, []models.Example, error) {
	examples, labeler, err := loadExamples(path)
	if err != nil {
		return nil, nil, err
	}
	cat := catalog.New(catalog.DefaultConfig(), labeler, examples, nil)
	return cat, examples, nil
}
