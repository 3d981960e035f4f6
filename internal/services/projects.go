package services

import (
	"context"
	"regexp"
	"strings"
	"time"

	"piaopiao-backend-go/internal/models"

	"github.com/google/uuid"
)

// ProjectRepository is the write side used by chat commands.
type ProjectRepository interface {
	LatestProjectForGroup(ctx context.Context, groupID string) (*models.Project, error)
	CreateProject(ctx context.Context, project models.Project) error
	MemberExists(ctx context.Context, projectID, userID string) (bool, error)
	AddMember(ctx context.Context, member models.Member) error
	CreateSharedResource(ctx context.Context, resource models.SharedResource) error
}

type ProjectService struct {
	repo  ProjectRepository
	newID func() string
	now   func() time.Time
}

func NewProjectService(repo ProjectRepository) *ProjectService {
	return &ProjectService{repo: repo, newID: uuid.NewString, now: time.Now}
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func (p *ProjectService) CreateProject(ctx context.Context, name string, stageCount int, creatorID, groupID string) (models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Project{}, ErrBadRequest("⚠️ 請輸入專案名稱，如 ➡️ 建立專案：我的新專案")
	}
	if stageCount <= 0 {
		return models.Project{}, ErrBadRequest("⚠️ 請用阿拉伯數字輸入階段數量（此次課程請輸入4）：")
	}
	project := models.Project{
		ID:         p.newID(),
		Name:       name,
		GroupID:    optional(groupID),
		StageCount: stageCount,
		CreatedBy:  optional(creatorID),
		CreatedAt:  p.now().UTC(),
	}
	if err := p.repo.CreateProject(ctx, project); err != nil {
		return models.Project{}, WrapError(err, "create project")
	}
	return project, nil
}

// currentProject resolves the group's latest project or a NotFound error.
func (p *ProjectService) currentProject(ctx context.Context, groupID, notFound string) (*models.Project, error) {
	project, err := p.repo.LatestProjectForGroup(ctx, groupID)
	if err != nil {
		return nil, ErrFetch("latest project", err)
	}
	if project == nil {
		return nil, ErrNotFound(notFound)
	}
	return project, nil
}

func (p *ProjectService) Join(ctx context.Context, groupID, userID, studentID, realName string) (*models.Project, error) {
	project, err := p.currentProject(ctx, groupID, "⚠️ 目前你的群組沒有任何專案，請先讓管理員建立專案！")
	if err != nil {
		return nil, err
	}
	exists, err := p.repo.MemberExists(ctx, project.ID, userID)
	if err != nil {
		return nil, ErrFetch("member exists", err)
	}
	if exists {
		return nil, ErrBadRequest("⚠️ 你已經加入此專案，無需重複加入！")
	}
	member := models.Member{
		ProjectID: project.ID,
		UserID:    userID,
		StudentID: optional(studentID),
		RealName:  strings.TrimSpace(realName),
	}
	if err := p.repo.AddMember(ctx, member); err != nil {
		return nil, WrapError(err, "add member")
	}
	return project, nil
}

type ShareRequest struct {
	Title       string
	Tag         string
	Link        string
	Description string
}

var sharePattern = regexp.MustCompile(`^#分享\s+(\S+)\s+(\S+)\s+(https?://\S+)(?:\s+(.*))?$`)

// ParseShareMessage reads "#分享 title tag link [description]".
func ParseShareMessage(text string) (ShareRequest, bool) {
	match := sharePattern.FindStringSubmatch(strings.TrimSpace(text))
	if match == nil {
		return ShareRequest{}, false
	}
	return ShareRequest{
		Title:       match[1],
		Tag:         match[2],
		Link:        match[3],
		Description: strings.TrimSpace(match[4]),
	}, true
}

func (p *ProjectService) Share(ctx context.Context, groupID, userID string, req ShareRequest) (models.SharedResource, error) {
	project, err := p.currentProject(ctx, groupID, MsgNoProjectInGroup)
	if err != nil {
		return models.SharedResource{}, err
	}
	resource := models.SharedResource{
		ID:          p.newID(),
		UserID:      userID,
		ProjectID:   project.ID,
		Title:       req.Title,
		Tag:         req.Tag,
		Link:        req.Link,
		Description: req.Description,
		CreatedAt:   p.now().UTC(),
	}
	if err := p.repo.CreateSharedResource(ctx, resource); err != nil {
		return models.SharedResource{}, WrapError(err, "create shared resource")
	}
	return resource, nil
}

// ParseJoinMessage reads "studentID／name／加入專案".
func ParseJoinMessage(text string) (studentID, realName string, ok bool) {
	parts := strings.Split(strings.TrimSpace(text), "／")
	if len(parts) != 3 || strings.TrimSpace(parts[2]) != "加入專案" {
		return "", "", false
	}
	studentID = strings.TrimSpace(parts[0])
	realName = strings.TrimSpace(parts[1])
	if studentID == "" || realName == "" {
		return "", "", false
	}
	return studentID, realName, true
}
