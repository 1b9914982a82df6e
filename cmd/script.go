package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leadminer/internal/model"
)

var (
	scriptAnalysisID string
	scriptLeadKey    string
	scriptAll        bool
)

var scriptCmd = &cobra.Command{
	Use:   "script",
	Short: "Generate outreach scripts for mined leads",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if !scriptAll && scriptLeadKey == "" {
			return eris.New("either --lead or --all is required")
		}

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		leads, err := e.Store.ListLeads(ctx, scriptAnalysisID)
		if err != nil {
			return err
		}

		if scriptAll {
			scripts, err := e.Miner.GenerateScripts(ctx, leads)
			if err != nil {
				return err
			}
			for _, l := range leads {
				fmt.Printf("=== %s (%s)\n%s\n\n", l.AccountName, l.Platform, scripts[l.Key()])
			}
			return nil
		}

		lead, ok := findLead(leads, scriptLeadKey)
		if !ok {
			return eris.Errorf("lead %s not found in analysis %s", scriptLeadKey, scriptAnalysisID)
		}
		script, _, err := e.Miner.GenerateScript(ctx, lead)
		if err != nil {
			return err
		}
		fmt.Println(script)
		return nil
	},
}

func findLead(leads []model.MinedLead, key string) (model.MinedLead, bool) {
	for _, l := range leads {
		if l.Key() == key {
			return l, true
		}
	}
	return model.MinedLead{}, false
}

func init() {
	scriptCmd.Flags().StringVar(&scriptAnalysisID, "analysis", "", "analysis ID (required)")
	_ = scriptCmd.MarkFlagRequired("analysis")
	scriptCmd.Flags().StringVar(&scriptLeadKey, "lead", "", "lead key to script")
	scriptCmd.Flags().BoolVar(&scriptAll, "all", false, "generate scripts for every lead")
	rootCmd.AddCommand(scriptCmd)
}
