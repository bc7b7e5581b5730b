package events

import "time"

// Event types that drive the award cascade. Each external trigger maps to
// exactly one of these; handlers are registered per type, so there is no
// runtime inspection of event payloads.
const (
	EventRatingCreated         = "badges.rating.created"
	EventAssessmentCreated     = "badges.assessment.created"
	EventAssessmentCompleted   = "badges.assessment.completed"
	EventTaskCompletionToggled = "projects.task_completion.toggled"
	EventAwardIssued           = "badges.award.issued"
	EventProjectCreated        = "projects.project.created"
	EventParticipationCreated  = "projects.participation.created"
)

// RatingCreatedEvent is emitted after a rubric rating has been persisted
// and the assessment's final rating recomputed.
type RatingCreatedEvent struct {
	BaseEvent
	RatingID     int64 `json:"rating_id"`
	AssessmentID int64 `json:"assessment_id"`
	RubricID     int64 `json:"rubric_id"`
	Score        int   `json:"score"`
}

// NewRatingCreatedEvent creates a new RatingCreatedEvent
func NewRatingCreatedEvent(ratingID, assessmentID, rubricID int64, score int, assessorID int64) *RatingCreatedEvent {
	return &RatingCreatedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: EventRatingCreated,
			Timestamp: time.Now(),
			UserID:    &assessorID,
		},
		RatingID:     ratingID,
		AssessmentID: assessmentID,
		RubricID:     rubricID,
		Score:        score,
	}
}

// AssessmentCreatedEvent is emitted when a reviewer files a new assessment.
type AssessmentCreatedEvent struct {
	BaseEvent
	AssessmentID int64  `json:"assessment_id"`
	BadgeID      int64  `json:"badge_id"`
	AssessorID   int64  `json:"assessor_id"`
	AssessedID   int64  `json:"assessed_id"`
	SubmissionID *int64 `json:"submission_id,omitempty"`
}

// NewAssessmentCreatedEvent creates a new AssessmentCreatedEvent
func NewAssessmentCreatedEvent(assessmentID, badgeID, assessorID, assessedID int64, submissionID *int64) *AssessmentCreatedEvent {
	return &AssessmentCreatedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: EventAssessmentCreated,
			Timestamp: time.Now(),
			UserID:    &assessorID,
		},
		AssessmentID: assessmentID,
		BadgeID:      badgeID,
		AssessorID:   assessorID,
		AssessedID:   assessedID,
		SubmissionID: submissionID,
	}
}

// AssessmentCompletedEvent is emitted exactly once per assessment, when its
// rating set first covers every rubric of the badge (or immediately on
// creation for rubric-less badges). It carries the cascade into the
// progress tracker and award engine.
type AssessmentCompletedEvent struct {
	BaseEvent
	AssessmentID int64 `json:"assessment_id"`
	BadgeID      int64 `json:"badge_id"`
	AssessorID   int64 `json:"assessor_id"`
	AssessedID   int64 `json:"assessed_id"`
}

// NewAssessmentCompletedEvent creates a new AssessmentCompletedEvent
func NewAssessmentCompletedEvent(assessmentID, badgeID, assessorID, assessedID int64) *AssessmentCompletedEvent {
	return &AssessmentCompletedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: EventAssessmentCompleted,
			Timestamp: time.Now(),
			UserID:    &assessorID,
		},
		AssessmentID: assessmentID,
		BadgeID:      badgeID,
		AssessorID:   assessorID,
		AssessedID:   assessedID,
	}
}

// TaskCompletionToggledEvent is emitted when a user checks or unchecks a
// project task. Checked=true with AllCompleted=true is the trigger for
// self-completion badge awarding.
type TaskCompletionToggledEvent struct {
	BaseEvent
	ProjectID    int64 `json:"project_id"`
	TaskID       int64 `json:"task_id"`
	Checked      bool  `json:"checked"`
	AllCompleted bool  `json:"all_completed"`
}

// NewTaskCompletionToggledEvent creates a new TaskCompletionToggledEvent
func NewTaskCompletionToggledEvent(projectID, taskID, userID int64, checked, allCompleted bool) *TaskCompletionToggledEvent {
	return &TaskCompletionToggledEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: EventTaskCompletionToggled,
			Timestamp: time.Now(),
			UserID:    &userID,
		},
		ProjectID:    projectID,
		TaskID:       taskID,
		Checked:      checked,
		AllCompleted: allCompleted,
	}
}

// AwardIssuedEvent records the terminal side effect of the cascade.
// Published asynchronously; nothing in the award path depends on it.
type AwardIssuedEvent struct {
	BaseEvent
	AwardID int64 `json:"award_id"`
	BadgeID int64 `json:"badge_id"`
}

// NewAwardIssuedEvent creates a new AwardIssuedEvent
func NewAwardIssuedEvent(awardID, badgeID, userID int64) *AwardIssuedEvent {
	return &AwardIssuedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: EventAwardIssued,
			Timestamp: time.Now(),
			UserID:    &userID,
		},
		AwardID: awardID,
		BadgeID: badgeID,
	}
}

// ProjectCreatedEvent is emitted after a project and its organizer
// participation have been persisted.
type ProjectCreatedEvent struct {
	BaseEvent
	ProjectID int64  `json:"project_id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
}

// NewProjectCreatedEvent creates a new ProjectCreatedEvent
func NewProjectCreatedEvent(projectID, creatorID int64, name, slug string) *ProjectCreatedEvent {
	return &ProjectCreatedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: EventProjectCreated,
			Timestamp: time.Now(),
			UserID:    &creatorID,
		},
		ProjectID: projectID,
		Name:      name,
		Slug:      slug,
	}
}

// ParticipationCreatedEvent is emitted when a user joins a project.
type ParticipationCreatedEvent struct {
	BaseEvent
	ParticipationID int64 `json:"participation_id"`
	ProjectID       int64 `json:"project_id"`
	Organizing      bool  `json:"organizing"`
}

// NewParticipationCreatedEvent creates a new ParticipationCreatedEvent
func NewParticipationCreatedEvent(participationID, projectID, userID int64, organizing bool) *ParticipationCreatedEvent {
	return &ParticipationCreatedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: EventParticipationCreated,
			Timestamp: time.Now(),
			UserID:    &userID,
		},
		ParticipationID: participationID,
		ProjectID:       projectID,
		Organizing:      organizing,
	}
}
