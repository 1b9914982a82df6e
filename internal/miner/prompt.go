// Package miner orchestrates the calls to the analysis model: prompt
// construction, response parsing, and stale-response handling.
package miner

import (
	"fmt"
	"strings"

	"github.com/sells-group/leadminer/internal/model"
)

// Model constants.
const (
	ModelHaiku  = "claude-haiku-4-5-20251001"
	ModelSonnet = "claude-sonnet-4-5-20250929"
)

// DefaultMaxTokens bounds one mining response.
const DefaultMaxTokens = 4096

// miningSystemPrompt instructs the model to act as a sales-intelligence
// analyst over a normalized comment corpus.
const miningSystemPrompt = `You are a sales-intelligence analyst for a consumer brand. You receive social-media comments and lead notes, one per line, each labeled with Content and optionally User, Date, and Loc segments.

Identify accounts worth pursuing as sales leads and return ONLY a JSON array. Each element must have exactly these fields:
- "account_name": string, the account or user to contact
- "platform": string, the platform the account lives on (e.g. "douyin", "xiaohongshu", "wechat"); use "unknown" if unclear
- "lead_type": one of "user", "factory", "kol"
- "value_category": one of "high_value", "potential_partner", "medium_value", "low_value"
- "outreach_status": one of "likely_uncontacted", "unknown", "likely_contacted"
- "date": string "YYYY-MM-DD" when a date is evident, else ""
- "context": string, the comment or evidence this lead is based on
- "suggested_action": string, the next concrete outreach step
- "reason": string, why this account is worth the category you assigned

Rules:
- Base every lead strictly on the provided lines; never invent accounts
- One element per distinct account; merge repeated mentions
- Return valid JSON with no commentary before or after the array
- Return [] when no line supports a lead`

// MiningPrompt builds the user message for one mining request.
func MiningPrompt(corpus string) string {
	return "Analyze the following data and extract sales leads:\n\n" + corpus
}

// MiningSystemPrompt returns the system instruction for mining requests.
func MiningSystemPrompt() string {
	return miningSystemPrompt
}

// scriptSystemPrompt instructs the model to write an outreach message.
const scriptSystemPrompt = `You are a sales outreach copywriter. Write a short, personal first-contact message for the given lead. Match the platform's tone, reference the lead's own words naturally, and end with one low-friction call to action. Return only the message text.`

// ScriptPrompt builds the user message for an outreach-script request.
func ScriptPrompt(l model.MinedLead, loc model.Locale) string {
	var b strings.Builder
	lang := "English"
	if loc == model.LocaleZH {
		lang = "Simplified Chinese"
	}
	fmt.Fprintf(&b, "Write the message in %s.\n\n", lang)
	fmt.Fprintf(&b, "Account: %s\n", l.AccountName)
	fmt.Fprintf(&b, "Platform: %s\n", l.Platform)
	fmt.Fprintf(&b, "Lead type: %s\n", l.LeadType.Label(model.LocaleEN))
	fmt.Fprintf(&b, "Value category: %s\n", l.ValueCategory.Label(model.LocaleEN))
	fmt.Fprintf(&b, "What they said: %s\n", l.Context)
	if l.SuggestedAction != "" {
		fmt.Fprintf(&b, "Suggested angle: %s\n", l.SuggestedAction)
	}
	return b.String()
}

// ScriptSystemPrompt returns the system instruction for script requests.
func ScriptSystemPrompt() string {
	return scriptSystemPrompt
}
