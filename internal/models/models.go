package models

import (
	"strings"
	"time"

	"github.com/lib/pq"
)

type Project struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	GroupID     *string   `db:"group_id"`
	StageCount  int       `db:"stage_count"`
	CreatedBy   *string   `db:"created_by"`
	CreatedAt   time.Time `db:"created_at"`
	CompletedAt *string   `db:"completed_at"`
}

type Member struct {
	ProjectID     string         `db:"project_id"`
	UserID        string         `db:"user_id"`
	StudentID     *string        `db:"student_id"`
	RealName      string         `db:"real_name"`
	AttributeTags pq.StringArray `db:"attribute_tags"`
}

type Task struct {
	ID         string  `db:"id"`
	ProjectID  string  `db:"project_id"`
	AssigneeID *string `db:"assignee_id"`
}

// Assignee returns the assignee id, or "" when the task is unassigned.
func (t Task) Assignee() string {
	if t.AssigneeID == nil {
		return ""
	}
	return *t.AssigneeID
}

type ChecklistItem struct {
	TaskID      string  `db:"task_id"`
	IsDone      bool    `db:"is_done"`
	CompletedAt *string `db:"completed_at"`
}

// CompletedTime parses CompletedAt. The second return is false when the
// column is null or holds something that is not a timestamp.
func (c ChecklistItem) CompletedTime() (time.Time, bool) {
	if c.CompletedAt == nil {
		return time.Time{}, false
	}
	return ParseTimestamp(*c.CompletedAt)
}

type Feedback struct {
	TaskID       string   `db:"task_id"`
	UserID       string   `db:"user_id"`
	Rating       *float64 `db:"rating"`
	IsReflection bool     `db:"is_reflection"`
}

type SharedResource struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	ProjectID   string    `db:"project_id"`
	Title       string    `db:"title"`
	Tag         string    `db:"tag"`
	Link        string    `db:"link"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

type ResourceReply struct {
	UserID     string  `db:"user_id"`
	ResourceID *string `db:"resource_id"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp accepts the textual forms Postgres, sqlite and ISO-8601
// producers emit. Values without a zone are read as UTC.
func ParseTimestamp(raw string) (time.Time, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
