package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sells-group/leadminer/internal/leadview"
	"github.com/sells-group/leadminer/internal/model"
)

var (
	leadsAnalysisID string
	leadsRecency    string
	leadsType       string
	leadsPlatform   string
	leadsSortKey    string
	leadsSortDir    string
	leadsPage       int
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Show mined leads for an analysis",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		s, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		leads, err := s.ListLeads(ctx, leadsAnalysisID)
		if err != nil {
			return err
		}

		loc := model.NormalizeLocale(cfg.Locale)
		deriver := leadview.NewDeriver(loc)

		sort := leadview.Sort{Key: leadview.SortKey(leadsSortKey)}
		if sort.Key == "" {
			sort = leadview.DefaultSort()
		} else {
			sort.Direction = leadview.DefaultDirection(sort.Key)
		}
		switch leadsSortDir {
		case "asc":
			sort.Direction = leadview.Asc
		case "desc":
			sort.Direction = leadview.Desc
		}

		page := deriver.Derive(leads, leadview.Filters{
			Recency:  leadview.Recency(leadsRecency),
			LeadType: model.LeadType(leadsType),
			Platform: leadsPlatform,
		}, sort, leadsPage, leadview.DefaultPageSize, time.Now())

		fmt.Printf("Page %d/%d (%d leads)\n", page.Page, page.TotalPages, page.TotalCount)
		for _, l := range page.Leads {
			date := l.Date
			if date == "" {
				date = "-"
			}
			fmt.Printf("  %-30s %-12s %-20s %-20s %s\n",
				l.AccountName, l.Platform,
				l.ValueCategory.Label(loc), l.OutreachStatus.Label(loc), date)
		}
		return nil
	},
}

func init() {
	leadsCmd.Flags().StringVar(&leadsAnalysisID, "analysis", "", "analysis ID (required)")
	_ = leadsCmd.MarkFlagRequired("analysis")
	leadsCmd.Flags().StringVar(&leadsRecency, "recency", "all", "recency filter: all|recent|stale")
	leadsCmd.Flags().StringVar(&leadsType, "type", "", "lead type filter: user|factory|kol")
	leadsCmd.Flags().StringVar(&leadsPlatform, "platform", "", "platform filter")
	leadsCmd.Flags().StringVar(&leadsSortKey, "sort", "", "sort key: date|value_category|outreach_status|account_name|lead_type")
	leadsCmd.Flags().StringVar(&leadsSortDir, "dir", "", "sort direction: asc|desc (default per key)")
	leadsCmd.Flags().IntVar(&leadsPage, "page", 1, "page number")
	rootCmd.AddCommand(leadsCmd)
}
