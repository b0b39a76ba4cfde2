package model

// Mission 即黑客松活动；Deadline 保持后端原样（无时区的 ISO 时间）
type Hackathon struct {
	HackathonID    int      `json:"hackathon_id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	SkillsRequired []string `json:"skills_required,omitempty"`
	Deadline       string   `json:"deadline,omitempty"`
}

type Recommendation struct {
	HackathonID int    `json:"hackathon_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MatchScore  int    `json:"match_score"`
	Reason      string `json:"reason"`
}

type ProgressEntry struct {
	HackathonID int    `json:"hackathon_id,omitempty"`
	Hackathon   string `json:"hackathon"`
	Status      string `json:"status"`
	Deadline    string `json:"deadline,omitempty"`
}

type RoadmapStep struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
}

type Roadmap struct {
	Steps   []RoadmapStep `json:"steps"`
	SVGPath string        `json:"svg_path"`
}
