package model

type TeamMember struct {
	StudentID int    `json:"student_id"`
	Name      string `json:"name"`
}

type TeamMode string

const (
	TeamModeSelection TeamMode = "selection"
	TeamModeCreate    TeamMode = "create"
	TeamModeJoin      TeamMode = "join"
	TeamModeSuccess   TeamMode = "success"
)
