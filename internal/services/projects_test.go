package services

import (
	"context"
	"testing"
	"time"

	"piaopiao-backend-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentWeek(t *testing.T) {
	tests := []struct {
		name  string
		now   time.Time
		start string
		label string
	}{
		{name: "midweek", now: fixedNow, start: "2025-03-10", label: "03/10 - 03/16"},
		{name: "monday morning", now: time.Date(2025, 3, 10, 0, 0, 0, 0, ReportZone), start: "2025-03-10", label: "03/10 - 03/16"},
		{name: "sunday night", now: time.Date(2025, 3, 16, 23, 59, 59, 0, ReportZone), start: "2025-03-10", label: "03/10 - 03/16"},
		{name: "utc sunday is taipei monday", now: time.Date(2025, 3, 16, 17, 0, 0, 0, time.UTC), start: "2025-03-17", label: "03/17 - 03/23"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			week := CurrentWeek(tc.now)
			assert.Equal(t, tc.start, week.Start.Format("2006-01-02"))
			assert.Equal(t, time.Monday, week.Start.Weekday())
			assert.Equal(t, 7*24*time.Hour, week.End.Sub(week.Start))
			assert.Equal(t, tc.label, week.Label())
		})
	}
}

func TestParseShareMessage(t *testing.T) {
	req, ok := ParseShareMessage("#分享 Figma UI/UX https://www.figma.com/ 視覺設計工具")
	require.True(t, ok)
	assert.Equal(t, ShareRequest{Title: "Figma", Tag: "UI/UX", Link: "https://www.figma.com/", Description: "視覺設計工具"}, req)

	req, ok = ParseShareMessage("#分享 Miro 白板 https://miro.com/")
	require.True(t, ok)
	assert.Equal(t, "", req.Description)

	_, ok = ParseShareMessage("#分享 Figma UI/UX not-a-link")
	assert.False(t, ok)
}

func TestParseJoinMessage(t *testing.T) {
	studentID, name, ok := ParseJoinMessage("111219060／王曉明／加入專案")
	require.True(t, ok)
	assert.Equal(t, "111219060", studentID)
	assert.Equal(t, "王曉明", name)

	_, _, ok = ParseJoinMessage("111219060／加入專案")
	assert.False(t, ok)
	_, _, ok = ParseJoinMessage("／王曉明／加入專案")
	assert.False(t, ok)
}

type memoryRepo struct {
	projects  []models.Project
	members   []models.Member
	resources []models.SharedResource
}

func (m *memoryRepo) LatestProjectForGroup(_ context.Context, groupID string) (*models.Project, error) {
	var latest *models.Project
	for i := range m.projects {
		p := m.projects[i]
		if p.GroupID != nil && *p.GroupID == groupID && (latest == nil || p.CreatedAt.After(latest.CreatedAt)) {
			latest = &p
		}
	}
	return latest, nil
}

func (m *memoryRepo) CreateProject(_ context.Context, project models.Project) error {
	m.projects = append(m.projects, project)
	return nil
}

func (m *memoryRepo) MemberExists(_ context.Context, projectID, userID string) (bool, error) {
	for _, member := range m.members {
		if member.ProjectID == projectID && member.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryRepo) AddMember(_ context.Context, member models.Member) error {
	m.members = append(m.members, member)
	return nil
}

func (m *memoryRepo) CreateSharedResource(_ context.Context, resource models.SharedResource) error {
	m.resources = append(m.resources, resource)
	return nil
}

func TestProjectServiceFlow(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewProjectService(repo)
	ctx := context.Background()

	_, err := svc.Join(ctx, "G1", "U1", "111", "Alice")
	assert.True(t, IsKind(err, KindNotFound))

	project, err := svc.CreateProject(ctx, "畢業專題", 4, "U1", "G1")
	require.NoError(t, err)
	assert.NotEmpty(t, project.ID)
	assert.Equal(t, "G1", *project.GroupID)

	joined, err := svc.Join(ctx, "G1", "U1", "111", "Alice")
	require.NoError(t, err)
	assert.Equal(t, project.ID, joined.ID)

	_, err = svc.Join(ctx, "G1", "U1", "111", "Alice")
	assert.True(t, IsKind(err, KindBadRequest))
	assert.Equal(t, "⚠️ 你已經加入此專案，無需重複加入！", UserMessage(err))

	resource, err := svc.Share(ctx, "G1", "U1", ShareRequest{Title: "Figma", Tag: "UI", Link: "https://www.figma.com/"})
	require.NoError(t, err)
	assert.Equal(t, project.ID, resource.ProjectID)
	assert.Len(t, repo.resources, 1)

	_, err = svc.CreateProject(ctx, "  ", 4, "U1", "G1")
	assert.True(t, IsKind(err, KindBadRequest))
}

func TestMemoryConversations(t *testing.T) {
	store := NewMemoryConversations(time.Minute)
	now := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	_, ok := store.Get(ctx, "U1")
	assert.False(t, ok)

	store.Set(ctx, "U1", ConversationState{Step: StepWaitingForStageCount, ProjectName: "畢業專題"})
	state, ok := store.Get(ctx, "U1")
	require.True(t, ok)
	assert.Equal(t, StepWaitingForStageCount, state.Step)

	now = now.Add(2 * time.Minute)
	_, ok = store.Get(ctx, "U1")
	assert.False(t, ok)

	store.Set(ctx, "U2", ConversationState{Step: StepWaitingForStageCount})
	store.Clear(ctx, "U2")
	_, ok = store.Get(ctx, "U2")
	assert.False(t, ok)
}
