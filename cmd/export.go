package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadminer/internal/export"
	"github.com/sells-group/leadminer/internal/model"
)

var (
	exportAnalysisID string
	exportFormat     string
	exportOut        string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export an analysis as a CSV lead table or a strategy report",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		s, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		analysis, err := s.GetAnalysis(ctx, exportAnalysisID)
		if err != nil {
			return err
		}
		leads, err := s.ListLeads(ctx, exportAnalysisID)
		if err != nil {
			return err
		}

		f, err := os.Create(exportOut)
		if err != nil {
			return eris.Wrapf(err, "create %s", exportOut)
		}
		defer f.Close() //nolint:errcheck

		loc := model.NormalizeLocale(cfg.Locale)
		switch exportFormat {
		case "csv":
			err = export.WriteLeadsCSV(f, leads, loc)
		case "report":
			err = export.WriteStrategyReport(f, *analysis, leads, loc)
		default:
			err = eris.Errorf("unknown export format %q (want csv or report)", exportFormat)
		}
		if err != nil {
			return err
		}

		zap.L().Info("export complete",
			zap.String("analysis_id", exportAnalysisID),
			zap.String("format", exportFormat),
			zap.String("out", exportOut),
			zap.Int("leads", len(leads)),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportAnalysisID, "analysis", "", "analysis ID (required)")
	_ = exportCmd.MarkFlagRequired("analysis")
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "export format: csv|report")
	exportCmd.Flags().StringVar(&exportOut, "out", "leads.csv", "output file path")
	rootCmd.AddCommand(exportCmd)
}
