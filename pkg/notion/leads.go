package notion

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadminer/internal/model"
)

// SyncLeads creates one Notion page per lead in the CRM database, skipping
// duplicates by lead identity within the batch. Returns the number of pages
// created.
func SyncLeads(ctx context.Context, c Client, dbID string, leads []model.MinedLead) (int, error) {
	seen := make(map[string]struct{}, len(leads))
	created := 0

	for _, l := range leads {
		if ctx.Err() != nil {
			return created, eris.Wrap(ctx.Err(), "notion: sync leads cancelled")
		}
		key := l.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		req := &notionapi.PageCreateRequest{
			Parent: notionapi.Parent{
				Type:       notionapi.ParentTypeDatabaseID,
				DatabaseID: notionapi.DatabaseID(dbID),
			},
			Properties: leadProperties(l),
		}
		if _, err := c.CreatePage(ctx, req); err != nil {
			return created, eris.Wrapf(err, "notion: sync lead %s", l.AccountName)
		}
		created++
	}
	return created, nil
}

// leadProperties maps a lead onto the CRM database schema: account name as
// the title, enum fields as selects, date when present, and evidence text as
// rich_text.
func leadProperties(l model.MinedLead) notionapi.Properties {
	props := notionapi.Properties{
		"Name": notionapi.TitleProperty{
			Type:  notionapi.PropertyTypeTitle,
			Title: richText(l.AccountName),
		},
		"Platform": notionapi.SelectProperty{
			Type:   notionapi.PropertyTypeSelect,
			Select: notionapi.Option{Name: l.Platform},
		},
		"Lead Type": notionapi.SelectProperty{
			Type:   notionapi.PropertyTypeSelect,
			Select: notionapi.Option{Name: l.LeadType.Label(model.LocaleEN)},
		},
		"Value Category": notionapi.SelectProperty{
			Type:   notionapi.PropertyTypeSelect,
			Select: notionapi.Option{Name: l.ValueCategory.Label(model.LocaleEN)},
		},
		"Outreach Status": notionapi.SelectProperty{
			Type:   notionapi.PropertyTypeSelect,
			Select: notionapi.Option{Name: l.OutreachStatus.Label(model.LocaleEN)},
		},
		"Lead Key": notionapi.RichTextProperty{
			Type:     notionapi.PropertyTypeRichText,
			RichText: richText(l.Key()),
		},
	}

	if l.Context != "" {
		props["Context"] = notionapi.RichTextProperty{
			Type:     notionapi.PropertyTypeRichText,
			RichText: richText(l.Context),
		}
	}
	if l.SuggestedAction != "" {
		props["Suggested Action"] = notionapi.RichTextProperty{
			Type:     notionapi.PropertyTypeRichText,
			RichText: richText(l.SuggestedAction),
		}
	}
	if d := l.ParsedDate(); !d.IsZero() {
		date := notionapi.Date(d)
		props["Date"] = notionapi.DateProperty{
			Type: notionapi.PropertyTypeDate,
			Date: &notionapi.DateObject{Start: &date},
		}
	}
	return props
}

func richText(s string) []notionapi.RichText {
	return []notionapi.RichText{
		{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: s}},
	}
}
