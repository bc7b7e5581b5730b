// file: internal/models/badge.go
package models

import (
	"regexp"
	"strings"
	"time"
)

// ===============================
// BADGE CLASSIFICATION
// ===============================

// Assessment types describe who judges eligibility for a badge.
const (
	AssessmentSelf    = "self"    // obtainable without outside assessment
	AssessmentPeer    = "peer"    // granted by peers reviewing each other
	AssessmentStealth = "stealth" // granted by the system from supplied logic
)

// Badge types classify badges by origin.
const (
	BadgeCompletion = "completion" // awarded by self assessment on task completion
	BadgeSkill      = "skill"      // skill based, peer assessed against logic
	BadgeCommunity  = "community"  // peer-to-peer community badges
	BadgeStealth    = "stealth"    // system awarded
	BadgeOther      = "other"      // organizer or staff issued
)

// Badge represents a recognition artifact a user can earn inside
// one or more projects.
type Badge struct {
	ID            int64   `json:"id" db:"id"`
	Name          string  `json:"name" db:"name" validate:"required,max=225"`
	Slug          string  `json:"slug" db:"slug"`
	Description   string  `json:"description" db:"description" validate:"required,max=225"`
	ImageURL      *string `json:"image_url,omitempty" db:"image_url"`
	ImagePublicID *string `json:"image_public_id,omitempty" db:"image_public_id"`

	AssessmentType string `json:"assessment_type" db:"assessment_type" validate:"required,oneof=self peer stealth"`
	BadgeType      string `json:"badge_type" db:"badge_type" validate:"required,oneof=completion skill community stealth other"`

	// Unique restricts the badge to at most one award per user.
	Unique bool `json:"unique" db:"is_unique"`

	LogicID   *int64 `json:"logic_id,omitempty" db:"logic_id"`
	CreatorID *int64 `json:"creator_id,omitempty" db:"creator_id"`

	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	LastUpdate time.Time `json:"last_update" db:"last_update"`

	// Loaded relations (not columns)
	Logic         *Logic    `json:"logic,omitempty" db:"-"`
	Prerequisites []int64   `json:"prerequisites,omitempty" db:"-"`
	Rubrics       []*Rubric `json:"rubrics,omitempty" db:"-"`
	ProjectIDs    []int64   `json:"project_ids,omitempty" db:"-"`
}

// IsSelfCompletion reports whether the badge is awarded on task completion.
func (b *Badge) IsSelfCompletion() bool {
	return b.AssessmentType == AssessmentSelf && b.BadgeType == BadgeCompletion
}

// IsPeerSkill reports whether the badge is a peer assessed skill badge.
func (b *Badge) IsPeerSkill() bool {
	return b.AssessmentType == AssessmentPeer && b.BadgeType == BadgeSkill
}

// IsPeerCommunity reports whether the badge is a peer-to-peer community badge.
func (b *Badge) IsPeerCommunity() bool {
	return b.AssessmentType == AssessmentPeer && b.BadgeType == BadgeCommunity
}

// BadgeFilter selects disjoint classification subsets of a project's badges.
// The zero value selects all three classification pairs.
type BadgeFilter struct {
	OnlySelfCompletion bool `json:"only_self_completion"`
	OnlyPeerSkill      bool `json:"only_peer_skill"`
	OnlyPeerCommunity  bool `json:"only_peer_community"`
}

// ClassificationPairs expands the filter into the (assessment_type,
// badge_type) lists a badge must match. Both lists empty means the filter
// combination selects nothing.
func (f BadgeFilter) ClassificationPairs() (assessmentTypes, badgeTypes []string) {
	if !f.OnlySelfCompletion && !f.OnlyPeerCommunity {
		assessmentTypes = append(assessmentTypes, AssessmentPeer)
		badgeTypes = append(badgeTypes, BadgeSkill)
	}
	if !f.OnlyPeerSkill && !f.OnlyPeerCommunity {
		assessmentTypes = append(assessmentTypes, AssessmentSelf)
		badgeTypes = append(badgeTypes, BadgeCompletion)
	}
	if !f.OnlyPeerSkill && !f.OnlySelfCompletion {
		assessmentTypes = append(assessmentTypes, AssessmentPeer)
		badgeTypes = append(badgeTypes, BadgeCommunity)
	}
	return assessmentTypes, badgeTypes
}

// Rubric is a single evaluation criterion badges are judged against.
type Rubric struct {
	ID       int64  `json:"id" db:"id"`
	Question string `json:"question" db:"question" validate:"required,max=200"`
}

// Logic holds the numeric thresholds gating a peer assessed badge.
// A badge without logic has no threshold requirements.
type Logic struct {
	ID int64 `json:"id" db:"id"`

	// MinQualifiedAdopterVotes is the minimum number of qualified votes by
	// organizers, mentors or adopters required to be awarded.
	MinQualifiedAdopterVotes int `json:"min_qualified_adopter_votes" db:"min_qualified_adopter_votes" validate:"min=0"`

	// MinQualifiedVotes is the minimum number of qualified votes required.
	MinQualifiedVotes int `json:"min_qualified_votes" db:"min_qualified_votes" validate:"min=0"`

	// MinRating is the minimum average rating required.
	MinRating int `json:"min_rating" db:"min_rating" validate:"min=0,max=4"`
}

// ===============================
// SUBMISSIONS & ASSESSMENTS
// ===============================

// Submission is a user's application for a badge. Immutable once created.
type Submission struct {
	ID        int64     `json:"id" db:"id"`
	BadgeID   int64     `json:"badge_id" db:"badge_id" validate:"required"`
	AuthorID  int64     `json:"author_id" db:"author_id" validate:"required"`
	Content   string    `json:"content" db:"content" validate:"required"`
	URL       string    `json:"url" db:"url" validate:"omitempty,url,max=1023"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Assessment is one reviewer's judgment of one candidate for one badge,
// optionally tied to a submission. FinalRating is a derived cache of the
// mean rating score, recomputed eagerly on every new rating.
type Assessment struct {
	ID           int64   `json:"id" db:"id"`
	BadgeID      int64   `json:"badge_id" db:"badge_id" validate:"required"`
	AssessorID   int64   `json:"assessor_id" db:"assessor_id" validate:"required"`
	AssessedID   int64   `json:"assessed_id" db:"assessed_id" validate:"required"`
	Comment      string  `json:"comment" db:"comment" validate:"required"`
	SubmissionID *int64  `json:"submission_id,omitempty" db:"submission_id"`
	FinalRating  float64 `json:"final_rating" db:"final_rating"`

	// Completed flips exactly once, when every rubric of the badge has a
	// rating under this assessment (or immediately, for rubric-less badges).
	Completed bool `json:"completed" db:"completed"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Loaded relations (not columns)
	Ratings []*Rating `json:"ratings,omitempty" db:"-"`
}

// FinalRatingAsPercentage returns the final rating as a percentage of the
// maximum score, for display.
func (a *Assessment) FinalRatingAsPercentage() float64 {
	return (a.FinalRating / float64(RatingAlways)) * 100
}

// FinalRatingDisplay returns the label closest to the final rating.
func (a *Assessment) FinalRatingDisplay() string {
	pos := int(a.FinalRating+0.5) - 1
	if pos < 0 {
		pos = 0
	}
	if pos > len(ratingLabels)-1 {
		pos = len(ratingLabels) - 1
	}
	return ratingLabels[pos]
}

// ===============================
// RATINGS
// ===============================

// Ordinal rating scores for a single rubric.
const (
	RatingNever         = 1
	RatingSometimes     = 2
	RatingMostOfTheTime = 3
	RatingAlways        = 4
)

var ratingLabels = []string{"Never", "Sometimes", "Most of the time", "Always"}

// RatingLabel returns the display label for an ordinal score, or the empty
// string when the score is outside the 1-4 range.
func RatingLabel(score int) string {
	if score < RatingNever || score > RatingAlways {
		return ""
	}
	return ratingLabels[score-1]
}

// Rating is one rubric-scoped score within an assessment. Immutable once
// created; ratings are only ever added to an assessment, never removed.
type Rating struct {
	ID           int64     `json:"id" db:"id"`
	AssessmentID int64     `json:"assessment_id" db:"assessment_id" validate:"required"`
	RubricID     int64     `json:"rubric_id" db:"rubric_id" validate:"required"`
	Score        int       `json:"score" db:"score" validate:"required,min=1,max=4"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// ScoreAsPercentage returns the score as a percentage of the maximum.
func (r *Rating) ScoreAsPercentage() float64 {
	return (float64(r.Score) / float64(RatingAlways)) * 100
}

// ===============================
// PROGRESS & AWARDS
// ===============================

// Progress caches a user's cumulative count of qualifying peer ratings
// toward a badge so eligibility does not recompute from full history.
// The counter is monotonically non-decreasing.
type Progress struct {
	ID                      int64     `json:"id" db:"id"`
	BadgeID                 int64     `json:"badge_id" db:"badge_id"`
	UserID                  int64     `json:"user_id" db:"user_id"`
	CurrentQualifiedRatings int       `json:"current_qualified_ratings" db:"current_qualified_ratings"`
	CreatedAt               time.Time `json:"created_at" db:"created_at"`
	UpdatedAt               time.Time `json:"updated_at" db:"updated_at"`
}

// Award is the immutable record that a user holds a badge.
type Award struct {
	ID        int64     `json:"id" db:"id"`
	BadgeID   int64     `json:"badge_id" db:"badge_id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	AwardedOn time.Time `json:"awarded_on" db:"awarded_on"`
}

// ProjectBadgeBoard partitions a project's badges for one viewing user.
type ProjectBadgeBoard struct {
	Awarded        []*Badge `json:"awarded"`
	UponCompletion []*Badge `json:"upon_completion"`
	InProgress     []*Badge `json:"in_progress"`
	NotAttempted   []*Badge `json:"not_attempted"`
	NeedsReview    []*Badge `json:"needs_review"`
}

// ===============================
// SLUGS
// ===============================

var (
	slugStrip  = regexp.MustCompile(`[^a-z0-9-]+`)
	slugDashes = regexp.MustCompile(`-{2,}`)
)

// Slugify converts a name into its canonical slug form. Collision suffixing
// happens at the repository layer where existing slugs are visible.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "-")
	s = slugStrip.ReplaceAllString(s, "")
	s = slugDashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
