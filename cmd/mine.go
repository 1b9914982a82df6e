package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadminer/internal/fetcher"
	"github.com/sells-group/leadminer/internal/ingest"
	"github.com/sells-group/leadminer/internal/model"
)

var (
	mineFile    string
	mineInput   string
	mineMaxRows int
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Mine sales leads from a spreadsheet and/or free text",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if mineFile == "" && mineInput == "" {
			return eris.New("either --file or --input is required")
		}

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		maxRows := mineMaxRows
		if maxRows <= 0 {
			maxRows = cfg.Mine.MaxRows
		}

		var lines []string
		rowCount := 0
		if mineFile != "" {
			table, err := fetcher.ReadTableFile(mineFile)
			if err != nil {
				return eris.Wrap(err, "read table")
			}
			rowCount = len(table.Rows)

			lines, _, err = ingest.ExtractTable(table, maxRows)
			if eris.Is(err, ingest.ErrNoContentColumn) {
				if mineInput == "" {
					return eris.Wrapf(err, "could not find matching columns in %s", mineFile)
				}
				zap.L().Warn("could not find matching columns; continuing with free text only",
					zap.String("file", mineFile),
				)
			} else if err != nil {
				return err
			}
		}

		corpus := ingest.BuildCorpus(mineInput, lines)

		analysis, err := e.Store.CreateAnalysis(ctx, corpus, mineFile, rowCount)
		if err != nil {
			return err
		}
		if err := e.Store.UpdateAnalysisStatus(ctx, analysis.ID, model.AnalysisStatusMining); err != nil {
			return err
		}

		leads, usage, err := e.Miner.Mine(ctx, corpus)
		if err != nil {
			if failErr := e.Store.FailAnalysis(ctx, analysis.ID, err.Error()); failErr != nil {
				zap.L().Error("mark analysis failed", zap.Error(failErr))
			}
			return eris.Wrap(err, "mine")
		}
		if err := e.Store.CompleteAnalysis(ctx, analysis.ID, leads); err != nil {
			return err
		}

		fmt.Printf("Analysis %s: %d leads from %d rows\n", analysis.ID, len(leads), rowCount)
		for _, l := range leads {
			fmt.Printf("  %-30s %-12s %-20s %s\n",
				l.AccountName, l.Platform,
				l.ValueCategory.Label(e.Locale), l.OutreachStatus.Label(e.Locale))
		}
		zap.L().Info("mine complete",
			zap.String("analysis_id", analysis.ID),
			zap.Int("leads", len(leads)),
			zap.Int64("input_tokens", usage.InputTokens),
			zap.Int64("output_tokens", usage.OutputTokens),
		)
		return nil
	},
}

func init() {
	mineCmd.Flags().StringVar(&mineFile, "file", "", "path to CSV/TSV/XLSX export")
	mineCmd.Flags().StringVar(&mineInput, "input", "", "free-text input to analyze")
	mineCmd.Flags().IntVar(&mineMaxRows, "max-rows", 0, "max data rows to ingest (default from config)")
	rootCmd.AddCommand(mineCmd)
}
