package models

import "time"

// Source identifies how a candidate first heard about the institution.
type Source string

const (
	SourceGraduate  Source = "GRADUATE"
	SourceVisitedMe Source = "VISITED_ME"
	SourceAd        Source = "AD"
	SourceFriend    Source = "FRIEND"
)

// Sources lists every valid Source in canonical order.
var Sources = []Source{SourceGraduate, SourceVisitedMe, SourceAd, SourceFriend}

// Valid reports whether the source is a member of the closed set.
func (s Source) Valid() bool {
	switch s {
	case SourceGraduate, SourceVisitedMe, SourceAd, SourceFriend:
		return true
	}
	return false
}

// Stage marks where a candidate sits in the recruitment funnel.
type Stage string

const (
	StageInitial      Stage = "INITIAL"
	StageScheduled    Stage = "SCHEDULED"
	StageVisiting     Stage = "VISITING"
	StageDidInterview Stage = "DID_INTERVIEW"
	StageNoInterview  Stage = "NO_INTERVIEW"
	StageDecision     Stage = "DECISION"
	StageClosed       Stage = "CLOSED"
)

// Valid reports whether the stage is a member of the closed set.
func (s Stage) Valid() bool {
	switch s {
	case StageInitial, StageScheduled, StageVisiting, StageDidInterview,
		StageNoInterview, StageDecision, StageClosed:
		return true
	}
	return false
}

// Status classifies the near-terminal outcome of a candidacy.
type Status string

const (
	StatusAccepted Status = "ACCEPTED"
	StatusEnrolled Status = "ENROLLED"
	StatusPassed   Status = "PASSED"
)

// Valid reports whether the status is a member of the closed set.
func (s Status) Valid() bool {
	switch s {
	case StatusAccepted, StatusEnrolled, StatusPassed:
		return true
	}
	return false
}

// InterviewState tracks whether the admission interview happened.
type InterviewState string

const (
	InterviewPending InterviewState = "PENDING"
	InterviewDone    InterviewState = "DONE"
)

// Valid reports whether the interview state is a member of the closed set.
func (s InterviewState) Valid() bool {
	switch s {
	case InterviewPending, InterviewDone:
		return true
	}
	return false
}

// Candidate represents a prospective student tracked by one institution.
type Candidate struct {
	ID             string `db:"id" json:"id"`
	InstitutionID  string `db:"institution_id" json:"institution_id"`
	FullName       string `db:"full_name" json:"full_name"`
	Phone          string `db:"phone" json:"phone"`
	CurrentYeshiva string `db:"current_yeshiva" json:"current_yeshiva"`
	Source         Source `db:"source" json:"source"`
	Stage          Stage  `db:"stage" json:"stage"`
	Status         Status `db:"status" json:"status"`

	// Photo holds a data URI captured at intake; optional.
	Photo *string `db:"photo" json:"photo,omitempty"`

	// Visit logistics.
	VisitStart          *time.Time `db:"visit_start" json:"visit_start,omitempty"`
	VisitEnd            *time.Time `db:"visit_end" json:"visit_end,omitempty"`
	AssignedHost        *string    `db:"assigned_host" json:"assigned_host,omitempty"`
	AssignedRoom        *string    `db:"assigned_room" json:"assigned_room,omitempty"`
	SpecialRequirements *string    `db:"special_requirements" json:"special_requirements,omitempty"`

	// Evaluation.
	EvaluationScore *int            `db:"evaluation_score" json:"evaluation_score,omitempty"`
	InterviewerName *string         `db:"interviewer_name" json:"interviewer_name,omitempty"`
	InterviewStatus *InterviewState `db:"interview_status" json:"interview_status,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Tenant returns the owning institution ID.
func (c Candidate) Tenant() string { return c.InstitutionID }

// CandidateFilter encapsulates allowed search parameters for listing candidates.
type CandidateFilter struct {
	Search    string
	Stage     *Stage
	Status    *Status
	Source    *Source
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
