package domain

import "time"

// ApplicationStage is the position of an application in the hiring pipeline.
type ApplicationStage string

const (
	StageApplied   ApplicationStage = "applied"
	StageScreening ApplicationStage = "screening"
	StageInterview ApplicationStage = "interview"
	StageOffer     ApplicationStage = "offer"
	StageHired     ApplicationStage = "hired"
	StageRejected  ApplicationStage = "rejected"
)

// KnownStages returns all stages in pipeline display order.
func KnownStages() []ApplicationStage {
	return []ApplicationStage{
		StageApplied,
		StageScreening,
		StageInterview,
		StageOffer,
		StageHired,
		StageRejected,
	}
}

// Valid reports whether the stage is one of the six known values.
// Transitions between known stages are intentionally unrestricted.
func (s ApplicationStage) Valid() bool {
	switch s {
	case StageApplied, StageScreening, StageInterview, StageOffer, StageHired, StageRejected:
		return true
	}
	return false
}

// Application links one candidate to one job, unique per pair.
type Application struct {
	ID          string
	CandidateID string
	JobID       string
	Stage       ApplicationStage
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
