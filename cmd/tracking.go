package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadminer/internal/model"
	"github.com/sells-group/leadminer/pkg/notion"
)

var trackingCmd = &cobra.Command{
	Use:   "tracking",
	Short: "Manage CRM tracking state for mined leads",
}

var (
	trackSetKey     string
	trackSetAccount string
	trackSetStatus  string
	trackSetNote    string
)

var trackingSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set tracking status for a lead",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		status := model.TrackingStatus(trackSetStatus)
		if !model.ValidTrackingStatus(status) {
			return eris.Errorf("invalid status %q (want new|contacted|replied|closed)", trackSetStatus)
		}

		s, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		err = s.UpsertTracking(ctx, model.Tracking{
			LeadKey:     trackSetKey,
			AccountName: trackSetAccount,
			Status:      status,
			Note:        trackSetNote,
		})
		if err != nil {
			return err
		}
		zap.L().Info("tracking updated",
			zap.String("lead_key", trackSetKey),
			zap.String("status", trackSetStatus),
		)
		return nil
	},
}

var trackingListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracking records",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		s, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		records, err := s.ListTracking(ctx)
		if err != nil {
			return err
		}
		for _, t := range records {
			fmt.Printf("%-40s %-30s %-10s %s\n", t.LeadKey, t.AccountName, t.Status, t.Note)
		}
		return nil
	},
}

var trackingSyncAnalysis string

var trackingSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push an analysis's leads into the Notion CRM database",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if cfg.Notion.Token == "" {
			return eris.New("notion token is required (LEADMINER_NOTION_TOKEN)")
		}
		if cfg.Notion.LeadDB == "" {
			return eris.New("notion lead DB ID is required (LEADMINER_NOTION_LEAD_DB)")
		}

		s, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		leads, err := s.ListLeads(ctx, trackingSyncAnalysis)
		if err != nil {
			return err
		}

		client := notion.NewClient(cfg.Notion.Token)
		created, err := notion.SyncLeads(ctx, client, cfg.Notion.LeadDB, leads)
		if err != nil {
			return eris.Wrap(err, "sync leads")
		}

		zap.L().Info("notion sync complete",
			zap.Int("created", created),
			zap.String("analysis_id", trackingSyncAnalysis),
		)
		return nil
	},
}

func init() {
	trackingSetCmd.Flags().StringVar(&trackSetKey, "lead", "", "lead key (required)")
	_ = trackingSetCmd.MarkFlagRequired("lead")
	trackingSetCmd.Flags().StringVar(&trackSetAccount, "account", "", "account name")
	trackingSetCmd.Flags().StringVar(&trackSetStatus, "status", "", "tracking status (required)")
	_ = trackingSetCmd.MarkFlagRequired("status")
	trackingSetCmd.Flags().StringVar(&trackSetNote, "note", "", "free-form note")

	trackingSyncCmd.Flags().StringVar(&trackingSyncAnalysis, "analysis", "", "analysis ID (required)")
	_ = trackingSyncCmd.MarkFlagRequired("analysis")

	trackingCmd.AddCommand(trackingSetCmd, trackingListCmd, trackingSyncCmd)
	rootCmd.AddCommand(trackingCmd)
}
