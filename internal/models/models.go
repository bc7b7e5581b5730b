// file: internal/models/models.go
package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// ===============================
// CORE ENTITIES
// ===============================

// User represents a community member. Authentication lives outside this
// service; only the profile fields the badge pipeline needs are kept.
type User struct {
	ID       int64  `json:"id" db:"id"`
	Username string `json:"username" db:"username" validate:"required,min=3,max=50,alphanum"`
	Email    string `json:"email" db:"email" validate:"required,email,max=320"`

	DisplayName string  `json:"display_name" db:"display_name"`
	Bio         *string `json:"bio,omitempty" db:"bio" validate:"omitempty,max=1000"`

	// Deleted users never count as peers and receive no notifications.
	Deleted bool `json:"deleted" db:"deleted"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// GetDisplayName returns the display name or falls back to the username.
func (u *User) GetDisplayName() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// Project categories.
const (
	ProjectStudyGroup = "study group"
	ProjectCourse     = "course"
	ProjectChallenge  = "challenge"
)

// Project is a collaborative group badges are scoped to.
type Project struct {
	ID               int64  `json:"id" db:"id"`
	Name             string `json:"name" db:"name" validate:"required,max=100"`
	Slug             string `json:"slug" db:"slug"`
	Category         string `json:"category" db:"category" validate:"required,oneof='study group' course challenge"`
	ShortDescription string `json:"short_description" db:"short_description" validate:"required,max=150"`
	LongDescription  string `json:"long_description" db:"long_description" validate:"omitempty,max=700"`

	UnderDevelopment bool `json:"under_development" db:"under_development"`
	NotListed        bool `json:"not_listed" db:"not_listed"`
	Archived         bool `json:"archived" db:"archived"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Participation links a user to a project. A row with a nil LeftOn is an
// active membership; departed members keep their row for history.
type Participation struct {
	ID         int64      `json:"id" db:"id"`
	UserID     int64      `json:"user_id" db:"user_id" validate:"required"`
	ProjectID  int64      `json:"project_id" db:"project_id" validate:"required"`
	Organizing bool       `json:"organizing" db:"organizing"`
	Adopter    bool       `json:"adopter" db:"adopter"`
	JoinedOn   time.Time  `json:"joined_on" db:"joined_on"`
	LeftOn     *time.Time `json:"left_on,omitempty" db:"left_on"`
}

// IsActive reports whether the participation is current.
func (p *Participation) IsActive() bool {
	return p.LeftOn == nil
}

// Task is one listed unit of work inside a project. Unlisted or deleted
// tasks do not count toward completion badges.
type Task struct {
	ID        int64     `json:"id" db:"id"`
	ProjectID int64     `json:"project_id" db:"project_id" validate:"required"`
	Title     string    `json:"title" db:"title" validate:"required,max=100"`
	Listed    bool      `json:"listed" db:"listed"`
	Deleted   bool      `json:"deleted" db:"deleted"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TaskCompletion records a user checking off a task. Unchecking stamps
// UncheckedOn instead of deleting the row.
type TaskCompletion struct {
	ID          int64      `json:"id" db:"id"`
	TaskID      int64      `json:"task_id" db:"task_id" validate:"required"`
	UserID      int64      `json:"user_id" db:"user_id" validate:"required"`
	URL         *string    `json:"url,omitempty" db:"url" validate:"omitempty,url,max=1023"`
	CheckedOn   time.Time  `json:"checked_on" db:"checked_on"`
	UncheckedOn *time.Time `json:"unchecked_on,omitempty" db:"unchecked_on"`
}

// IsChecked reports whether the completion currently counts.
func (t *TaskCompletion) IsChecked() bool {
	return t.UncheckedOn == nil
}

// ===============================
// PAGINATION & QUERY HELPERS
// ===============================

// PaginationParams represents pagination parameters
type PaginationParams struct {
	Limit  int    `json:"limit" validate:"min=1,max=100"`
	Offset int    `json:"offset" validate:"min=0"`
	Sort   string `json:"sort,omitempty" validate:"omitempty,oneof=created_at updated_at name"`
	Order  string `json:"order,omitempty" validate:"omitempty,oneof=asc desc"`
}

// PaginatedResponse represents a paginated API response
type PaginatedResponse[T any] struct {
	Data       []T            `json:"data"`
	Pagination PaginationMeta `json:"pagination"`
	Filters    map[string]any `json:"filters,omitempty"`
}

// PaginationMeta contains pagination metadata
type PaginationMeta struct {
	CurrentPage  int   `json:"current_page"`
	TotalPages   int   `json:"total_pages"`
	TotalItems   int64 `json:"total_items"`
	ItemsPerPage int   `json:"items_per_page"`
	HasNext      bool  `json:"has_next"`
	HasPrev      bool  `json:"has_prev"`
}

// ===============================
// CUSTOM TYPES
// ===============================

// Int64Array handles PostgreSQL bigint array columns.
type Int64Array []int64

// Scan implements sql.Scanner
func (a *Int64Array) Scan(value interface{}) error {
	if value == nil {
		*a = Int64Array{}
		return nil
	}

	switch v := value.(type) {
	case string:
		v = strings.Trim(v, "{}")
		if v == "" {
			*a = Int64Array{}
			return nil
		}
		parts := strings.Split(v, ",")
		out := make(Int64Array, 0, len(parts))
		for _, p := range parts {
			var n int64
			if _, err := fmt.Sscanf(strings.TrimSpace(p), "%d", &n); err != nil {
				return fmt.Errorf("cannot scan %q into Int64Array: %w", p, err)
			}
			out = append(out, n)
		}
		*a = out
	case []byte:
		return a.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Int64Array", value)
	}
	return nil
}

// Value implements driver.Valuer
func (a Int64Array) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "{}", nil
	}
	parts := make([]string, len(a))
	for i, n := range a {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return "{" + strings.Join(parts, ",") + "}", nil
}
