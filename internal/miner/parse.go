package miner

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadminer/internal/model"
)

// rawLead mirrors the JSON contract with loose string enums; enum parsing
// happens after unmarshal so slightly off-contract answers still land.
type rawLead struct {
	AccountName     string `json:"account_name"`
	Platform        string `json:"platform"`
	LeadType        string `json:"lead_type"`
	ValueCategory   string `json:"value_category"`
	OutreachStatus  string `json:"outreach_status"`
	Date            string `json:"date"`
	Context         string `json:"context"`
	SuggestedAction string `json:"suggested_action"`
	Reason          string `json:"reason"`
}

// ParseLeads extracts the JSON lead array from raw model output. Code fences
// and surrounding prose are tolerated; leads without an account name are
// dropped.
func ParseLeads(text string) ([]model.MinedLead, error) {
	payload := extractJSONArray(text)
	if payload == "" {
		return nil, eris.New("miner: no JSON array in model response")
	}

	var raw []rawLead
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, eris.Wrap(err, "miner: unmarshal leads")
	}

	leads := make([]model.MinedLead, 0, len(raw))
	for _, r := range raw {
		name := strings.TrimSpace(r.AccountName)
		if name == "" {
			continue
		}
		platform := strings.TrimSpace(r.Platform)
		if platform == "" {
			platform = "unknown"
		}
		leads = append(leads, model.MinedLead{
			AccountName:     name,
			Platform:        platform,
			LeadType:        model.ParseLeadType(r.LeadType),
			ValueCategory:   model.ParseValueCategory(r.ValueCategory),
			OutreachStatus:  model.ParseOutreachStatus(r.OutreachStatus),
			Date:            strings.TrimSpace(r.Date),
			Context:         strings.TrimSpace(r.Context),
			SuggestedAction: strings.TrimSpace(r.SuggestedAction),
			Reason:          strings.TrimSpace(r.Reason),
		})
	}
	return leads, nil
}

// extractJSONArray returns the outermost JSON array in text, or "" when none
// is present.
func extractJSONArray(text string) string {
	text = stripCodeFences(text)
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}

func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
