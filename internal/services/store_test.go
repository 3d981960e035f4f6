package services

import (
	"context"
	"testing"
	"time"

	"piaopiao-backend-go/internal/migrations"
	"piaopiao-backend-go/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	_, err = migrations.Apply(context.Background(), db, zap.NewNop())
	require.NoError(t, err)
	return db
}

func seed(t *testing.T, db *sqlx.DB, query string, args ...interface{}) {
	t.Helper()
	_, err := db.Exec(db.Rebind(query), args...)
	require.NoError(t, err)
}

func TestStoreLatestProjectForGroup(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db, time.Second)
	ctx := context.Background()

	project, err := store.LatestProjectForGroup(ctx, "G1")
	require.NoError(t, err)
	assert.Nil(t, project)

	require.NoError(t, store.CreateProject(ctx, models.Project{ID: "P0", Name: "Old", GroupID: strPtr("G1"), StageCount: 4, CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}))
	require.NoError(t, store.CreateProject(ctx, models.Project{ID: "P1", Name: "New", GroupID: strPtr("G1"), StageCount: 4, CreatedAt: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)}))
	require.NoError(t, store.CreateProject(ctx, models.Project{ID: "P2", Name: "Other", GroupID: strPtr("G2"), StageCount: 4, CreatedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)}))

	project, err = store.LatestProjectForGroup(ctx, "G1")
	require.NoError(t, err)
	require.NotNil(t, project)
	assert.Equal(t, "P1", project.ID)
	assert.Equal(t, 4, project.StageCount)
	assert.Nil(t, project.CompletedAt)

	missing, err := store.GetProject(ctx, "P404")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStoreMembersAndTags(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db, time.Second)
	ctx := context.Background()

	require.NoError(t, store.AddMember(ctx, models.Member{ProjectID: "P1", UserID: "U1", StudentID: strPtr("111"), RealName: "Alice", AttributeTags: []string{"設計", "簡報"}}))
	require.NoError(t, store.AddMember(ctx, models.Member{ProjectID: "P1", UserID: "U2", RealName: "Bob"}))
	require.NoError(t, store.AddMember(ctx, models.Member{ProjectID: "P2", UserID: "U3", RealName: "Carol"}))

	members, err := store.ListMembers(ctx, "P1")
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "Alice", members[0].RealName)
	assert.Equal(t, []string{"設計", "簡報"}, []string(members[0].AttributeTags))
	assert.Empty(t, members[1].AttributeTags)

	exists, err := store.MemberExists(ctx, "P1", "U2")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = store.MemberExists(ctx, "P1", "U3")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStoreChecklistsAndFeedbacksByTaskSet(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db, time.Second)
	ctx := context.Background()

	seed(t, db, `INSERT INTO task_checklists (task_id, is_done, completed_at) VALUES (?,?,?)`, "T1", true, "2025-03-11T01:30:00Z")
	seed(t, db, `INSERT INTO task_checklists (task_id, is_done, completed_at) VALUES (?,?,?)`, "T2", false, nil)
	seed(t, db, `INSERT INTO task_checklists (task_id, is_done, completed_at) VALUES (?,?,?)`, "T3", true, nil)
	seed(t, db, `INSERT INTO task_feedbacks (task_id, user_id, rating, is_reflection) VALUES (?,?,?,?)`, "T1", "U1", 4.0, false)
	seed(t, db, `INSERT INTO task_feedbacks (task_id, user_id, rating, is_reflection) VALUES (?,?,?,?)`, "T1", "U1", 2.0, true)
	seed(t, db, `INSERT INTO task_feedbacks (task_id, user_id, rating, is_reflection) VALUES (?,?,?,?)`, "T2", "U2", nil, false)

	items, err := store.ListChecklists(ctx, []string{"T1", "T2"})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.True(t, items[0].IsDone)
	done, ok := items[0].CompletedTime()
	require.True(t, ok)
	assert.True(t, done.Equal(time.Date(2025, 3, 11, 1, 30, 0, 0, time.UTC)))
	assert.False(t, items[1].IsDone)
	assert.Nil(t, items[1].CompletedAt)

	empty, err := store.ListChecklists(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	feedbacks, err := store.ListFeedbacks(ctx, []string{"T1", "T2"})
	require.NoError(t, err)
	require.Len(t, feedbacks, 2)
	require.NotNil(t, feedbacks[0].Rating)
	assert.Equal(t, 4.0, *feedbacks[0].Rating)
	assert.Nil(t, feedbacks[1].Rating)
}

func TestStoreResourceRepliesScope(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db, time.Second)
	ctx := context.Background()

	require.NoError(t, store.CreateSharedResource(ctx, models.SharedResource{ID: "R1", UserID: "U1", ProjectID: "P1", Title: "Figma", Tag: "UI", Link: "https://www.figma.com/"}))
	require.NoError(t, store.CreateSharedResource(ctx, models.SharedResource{ID: "R2", UserID: "U1", ProjectID: "P2", Title: "Miro", Tag: "UX", Link: "https://miro.com/"}))
	seed(t, db, `INSERT INTO resource_replies (resource_id, user_id) VALUES (?,?)`, "R1", "U2")
	seed(t, db, `INSERT INTO resource_replies (resource_id, user_id) VALUES (?,?)`, "R2", "U2")

	resources, err := store.ListSharedResources(ctx, "P1")
	require.NoError(t, err)
	require.Len(t, resources, 1)
	assert.Equal(t, "Figma", resources[0].Title)

	all, err := store.ListResourceReplies(ctx, "P1", false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	scoped, err := store.ListResourceReplies(ctx, "P1", true)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "R1", *scoped[0].ResourceID)
}

func TestStoreBackedWeekly(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db, time.Second)
	ctx := context.Background()

	require.NoError(t, store.CreateProject(ctx, models.Project{ID: "P1", Name: "Launch", GroupID: strPtr("G1"), StageCount: 4}))
	require.NoError(t, store.AddMember(ctx, models.Member{ProjectID: "P1", UserID: "U1", RealName: "Alice"}))
	require.NoError(t, store.AddMember(ctx, models.Member{ProjectID: "P1", UserID: "U2", RealName: "Bob"}))
	seed(t, db, `INSERT INTO tasks (id, project_id, assignee_id) VALUES (?,?,?)`, "T1", "P1", "U1")
	seed(t, db, `INSERT INTO tasks (id, project_id, assignee_id) VALUES (?,?,?)`, "T2", "P1", "U2")
	seed(t, db, `INSERT INTO tasks (id, project_id, assignee_id) VALUES (?,?,?)`, "T3", "P1", "U_unknown")
	seed(t, db, `INSERT INTO task_checklists (task_id, is_done, completed_at) VALUES (?,?,?)`, "T1", true, "2025-03-11T01:30:00Z")
	seed(t, db, `INSERT INTO task_checklists (task_id, is_done, completed_at) VALUES (?,?,?)`, "T2", false, nil)
	seed(t, db, `INSERT INTO task_checklists (task_id, is_done, completed_at) VALUES (?,?,?)`, "T3", true, "2025-03-11T01:30:00Z")

	agg := NewAggregator(store, AggregateOptions{}).WithClock(fixedClock)
	report, err := agg.Weekly(ctx, "G1")
	require.NoError(t, err)
	assert.Equal(t, "🧾 本週任務週報（03/10 - 03/16）\nAlice：1 / 1 ✅（本週完成 1）\nBob：0 / 1 ✅（本週完成 0）", report.Text())
}
