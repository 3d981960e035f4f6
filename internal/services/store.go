package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"piaopiao-backend-go/internal/models"

	"github.com/jmoiron/sqlx"
)

// Source is the read side the aggregators run against. LatestProjectForGroup
// and GetProject return (nil, nil) when nothing matches.
type Source interface {
	LatestProjectForGroup(ctx context.Context, groupID string) (*models.Project, error)
	GetProject(ctx context.Context, projectID string) (*models.Project, error)
	ListMembers(ctx context.Context, projectID string) ([]models.Member, error)
	ListTasks(ctx context.Context, projectID string) ([]models.Task, error)
	ListChecklists(ctx context.Context, taskIDs []string) ([]models.ChecklistItem, error)
	ListFeedbacks(ctx context.Context, taskIDs []string) ([]models.Feedback, error)
	ListSharedResources(ctx context.Context, projectID string) ([]models.SharedResource, error)
	ListResourceReplies(ctx context.Context, projectID string, scoped bool) ([]models.ResourceReply, error)
}

const DefaultFetchTimeout = 10 * time.Second

// Store reads and writes project rows through sqlx. Queries are written with
// '?' placeholders and rebound for the open driver.
type Store struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewStore(db *sqlx.DB, fetchTimeout time.Duration) *Store {
	if fetchTimeout <= 0 {
		fetchTimeout = DefaultFetchTimeout
	}
	return &Store{db: db, timeout: fetchTimeout}
}

func (s *Store) selectRows(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.db.SelectContext(ctx, dest, s.db.Rebind(query), args...)
}

func (s *Store) selectIn(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	expanded, expandedArgs, err := sqlx.In(query, args...)
	if err != nil {
		return err
	}
	return s.selectRows(ctx, dest, expanded, expandedArgs...)
}

func (s *Store) getRow(ctx context.Context, dest interface{}, query string, args ...interface{}) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	err := s.db.GetContext(ctx, dest, s.db.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) exec(ctx context.Context, query string, args ...interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	_, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	return err
}

const projectColumns = `id, name, group_id, stage_count, created_by, created_at, completed_at`

func (s *Store) LatestProjectForGroup(ctx context.Context, groupID string) (*models.Project, error) {
	var project models.Project
	found, err := s.getRow(ctx, &project, `
SELECT `+projectColumns+`
FROM projects
WHERE group_id = ?
ORDER BY created_at DESC
LIMIT 1
`, groupID)
	if err != nil || !found {
		return nil, err
	}
	return &project, nil
}

func (s *Store) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	var project models.Project
	found, err := s.getRow(ctx, &project, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, projectID)
	if err != nil || !found {
		return nil, err
	}
	return &project, nil
}

func (s *Store) ListMembers(ctx context.Context, projectID string) ([]models.Member, error) {
	members := []models.Member{}
	err := s.selectRows(ctx, &members, `
SELECT project_id, user_id, student_id, real_name, attribute_tags
FROM project_members
WHERE project_id = ?
ORDER BY id
`, projectID)
	return members, err
}

func (s *Store) ListTasks(ctx context.Context, projectID string) ([]models.Task, error) {
	tasks := []models.Task{}
	err := s.selectRows(ctx, &tasks, `SELECT id, project_id, assignee_id FROM tasks WHERE project_id = ? ORDER BY created_at, id`, projectID)
	return tasks, err
}

func (s *Store) ListChecklists(ctx context.Context, taskIDs []string) ([]models.ChecklistItem, error) {
	items := []models.ChecklistItem{}
	if len(taskIDs) == 0 {
		return items, nil
	}
	err := s.selectIn(ctx, &items, `SELECT task_id, is_done, completed_at FROM task_checklists WHERE task_id IN (?) ORDER BY id`, taskIDs)
	return items, err
}

func (s *Store) ListFeedbacks(ctx context.Context, taskIDs []string) ([]models.Feedback, error) {
	feedbacks := []models.Feedback{}
	if len(taskIDs) == 0 {
		return feedbacks, nil
	}
	err := s.selectIn(ctx, &feedbacks, `
SELECT task_id, user_id, rating, is_reflection
FROM task_feedbacks
WHERE task_id IN (?) AND is_reflection = ?
ORDER BY id
`, taskIDs, false)
	return feedbacks, err
}

func (s *Store) ListSharedResources(ctx context.Context, projectID string) ([]models.SharedResource, error) {
	resources := []models.SharedResource{}
	err := s.selectRows(ctx, &resources, `
SELECT id, user_id, project_id, title, tag, link, description, created_at
FROM shared_resources
WHERE project_id = ?
ORDER BY created_at, id
`, projectID)
	return resources, err
}

// ListResourceReplies returns every reply on the platform unless scoped is
// set, in which case only replies to this project's resources are returned.
func (s *Store) ListResourceReplies(ctx context.Context, projectID string, scoped bool) ([]models.ResourceReply, error) {
	replies := []models.ResourceReply{}
	if !scoped {
		err := s.selectRows(ctx, &replies, `SELECT user_id, resource_id FROM resource_replies ORDER BY id`)
		return replies, err
	}
	err := s.selectRows(ctx, &replies, `
SELECT rr.user_id, rr.resource_id
FROM resource_replies rr
JOIN shared_resources sr ON sr.id = rr.resource_id
WHERE sr.project_id = ?
ORDER BY rr.id
`, projectID)
	return replies, err
}

func (s *Store) CreateProject(ctx context.Context, project models.Project) error {
	if project.CreatedAt.IsZero() {
		project.CreatedAt = time.Now().UTC()
	}
	return s.exec(ctx, `
INSERT INTO projects (id, name, group_id, stage_count, created_by, created_at)
VALUES (?,?,?,?,?,?)
`, project.ID, project.Name, project.GroupID, project.StageCount, project.CreatedBy, project.CreatedAt)
}

func (s *Store) MemberExists(ctx context.Context, projectID, userID string) (bool, error) {
	var count int
	if _, err := s.getRow(ctx, &count, `SELECT COUNT(1) FROM project_members WHERE project_id = ? AND user_id = ?`, projectID, userID); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) AddMember(ctx context.Context, member models.Member) error {
	tags := member.AttributeTags
	if tags == nil {
		tags = []string{}
	}
	return s.exec(ctx, `
INSERT INTO project_members (project_id, user_id, student_id, real_name, attribute_tags)
VALUES (?,?,?,?,?)
`, member.ProjectID, member.UserID, member.StudentID, member.RealName, tags)
}

func (s *Store) CreateSharedResource(ctx context.Context, resource models.SharedResource) error {
	if resource.CreatedAt.IsZero() {
		resource.CreatedAt = time.Now().UTC()
	}
	return s.exec(ctx, `
INSERT INTO shared_resources (id, user_id, project_id, title, tag, link, description, created_at)
VALUES (?,?,?,?,?,?,?,?)
`, resource.ID, resource.UserID, resource.ProjectID, resource.Title, resource.Tag, resource.Link, resource.Description, resource.CreatedAt)
}
