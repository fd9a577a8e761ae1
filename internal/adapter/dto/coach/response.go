package coach

import (
	"github.com/pitchlabs/salescoach/internal/domain/entities"
)

// ComplianceResponse is the compliance section of a score payload.
type ComplianceResponse struct {
	Pass  bool                           `json:"pass"`
	Flags []entities.ComplianceViolation `json:"flags"`
}

// LiveScoreResponse is the on-demand scoring payload for the live-coaching
// surface. Field names are part of that surface's wire contract.
type LiveScoreResponse struct {
	OverallScore int                `json:"overall_score"`
	SkillGrade   string             `json:"skill_grade"`
	PhaseScores  map[string]int     `json:"phase_scores"`
	Compliance   ComplianceResponse `json:"compliance"`
	Strengths    []string           `json:"strengths"`
	Improvements []string           `json:"improvements"`
	NextDrill    string             `json:"next_drill"`
}

// NewLiveScoreResponse flattens a report into the live wire shape.
func NewLiveScoreResponse(report *entities.CoachReport) *LiveScoreResponse {
	phaseScores := make(map[string]int)
	for phase, score := range report.PhaseScores.Data() {
		phaseScores[string(phase)] = score
	}

	flags := []entities.ComplianceViolation(report.ComplianceFlags)
	if flags == nil {
		flags = []entities.ComplianceViolation{}
	}
	strengths := []string(report.Strengths)
	if strengths == nil {
		strengths = []string{}
	}
	improvements := []string(report.Improvements)
	if improvements == nil {
		improvements = []string{}
	}

	return &LiveScoreResponse{
		OverallScore: report.OverallScore,
		SkillGrade:   report.Grade,
		PhaseScores:  phaseScores,
		Compliance:   ComplianceResponse{Pass: report.CompliancePass, Flags: flags},
		Strengths:    strengths,
		Improvements: improvements,
		NextDrill:    report.NextDrill,
	}
}

// ReportResponse is a stored coach report plus its analysis status.
type ReportResponse struct {
	Report         *entities.CoachReport `json:"report,omitempty"`
	AnalysisStatus string                `json:"analysis_status"`
}
