package model

import "strings"

type ChatRole string

const (
	ChatRoleUser ChatRole = "user"
	ChatRoleAI   ChatRole = "ai"
)

type ChatMessage struct {
	Role ChatRole `json:"role"`
	Text string   `json:"text"`
}

// Intent 是助手后端对回复的分类标签
type Intent string

const (
	IntentNone           Intent = ""
	IntentRecommendation Intent = "RECOMMENDATION"
	IntentTeamMatching   Intent = "TEAM_MATCHING"
	IntentIdeaGen        Intent = "IDEA_GEN"
	IntentAnalytics      Intent = "ANALYTICS"
)

// ParseIntent maps the raw classifier output onto the closed set, using the
// same marker precedence as the assistant backend: RECOMMENDATION, TEAM, ANALYTICS.
// Any other non-empty tag is idea generation.
func ParseIntent(raw string) Intent {
	tag := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case tag == "":
		return IntentNone
	case strings.Contains(tag, string(IntentRecommendation)):
		return IntentRecommendation
	case strings.Contains(tag, "TEAM"):
		return IntentTeamMatching
	case strings.Contains(tag, string(IntentAnalytics)):
		return IntentAnalytics
	}
	return IntentIdeaGen
}
