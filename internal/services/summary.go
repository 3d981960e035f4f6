package services

import (
	"context"
	"time"

	"piaopiao-backend-go/internal/models"

	"golang.org/x/sync/errgroup"
)

type ProjectSummary struct {
	ProjectID     string          `json:"projectId"`
	ProjectName   string          `json:"projectName"`
	Date          time.Time       `json:"date"`
	TaskTotal     int             `json:"taskTotal"`
	ResourceTotal int             `json:"resourceTotal"`
	MemberNames   []string        `json:"memberNames"`
	Members       []MemberMetrics `json:"members"`
}

// SummaryForGroup runs Summary on the group's most recently created project.
func (a *Aggregator) SummaryForGroup(ctx context.Context, groupID string) (ProjectSummary, error) {
	project, err := a.source.LatestProjectForGroup(ctx, groupID)
	if err != nil {
		return ProjectSummary{}, ErrFetch("latest project", err)
	}
	if project == nil {
		return ProjectSummary{}, ErrNotFound(MsgNoProjectInGroup)
	}
	return a.summarize(ctx, project)
}

func (a *Aggregator) Summary(ctx context.Context, projectID string) (ProjectSummary, error) {
	project, err := a.source.GetProject(ctx, projectID)
	if err != nil {
		return ProjectSummary{}, ErrFetch("get project", err)
	}
	if project == nil {
		return ProjectSummary{}, ErrNotFound(MsgProjectNotFound)
	}
	return a.summarize(ctx, project)
}

func (a *Aggregator) summarize(ctx context.Context, project *models.Project) (ProjectSummary, error) {
	var (
		members   []models.Member
		tasks     []models.Task
		resources []models.SharedResource
		replies   []models.ResourceReply
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		members, tasks, err = a.fetchRoster(gctx, project.ID)
		return err
	})
	g.Go(func() error {
		rows, err := a.source.ListSharedResources(gctx, project.ID)
		if err != nil {
			return ErrFetch("list shared resources", err)
		}
		resources = rows
		return nil
	})
	g.Go(func() error {
		rows, err := a.source.ListResourceReplies(gctx, project.ID, a.opts.ScopeRepliesToProject)
		if err != nil {
			return ErrFetch("list resource replies", err)
		}
		replies = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return ProjectSummary{}, err
	}

	r := newRollup(members)
	r.assignTasks(tasks)

	var (
		items     []models.ChecklistItem
		feedbacks []models.Feedback
	)
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := a.source.ListChecklists(gctx, r.taskIDs)
		if err != nil {
			return ErrFetch("list checklists", err)
		}
		items = rows
		return nil
	})
	g.Go(func() error {
		rows, err := a.source.ListFeedbacks(gctx, r.taskIDs)
		if err != nil {
			return ErrFetch("list feedbacks", err)
		}
		feedbacks = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return ProjectSummary{}, err
	}

	r.applyChecklists(items, nil, a.opts.CountEmptyTasksComplete)
	for _, f := range feedbacks {
		if f.IsReflection || f.Rating == nil {
			continue
		}
		if _, ok := r.taskOwner[f.TaskID]; !ok {
			continue
		}
		if m, ok := r.byID[f.UserID]; ok {
			m.RatingSum += *f.Rating
			m.RatingCount++
		}
	}
	for _, res := range resources {
		if m, ok := r.byID[res.UserID]; ok {
			m.ResourceCount++
		}
	}
	for _, reply := range replies {
		if m, ok := r.byID[reply.UserID]; ok {
			m.CommentCount++
		}
	}

	summary := ProjectSummary{
		ProjectID:   project.ID,
		ProjectName: project.Name,
		Date:        a.projectDate(project),
		Members:     r.members(),
		MemberNames: make([]string, 0, len(r.order)),
	}
	for _, m := range summary.Members {
		summary.TaskTotal += m.TaskTotal
		summary.ResourceTotal += m.ResourceCount
		summary.MemberNames = append(summary.MemberNames, m.Name)
	}
	return summary, nil
}

// projectDate is completed_at when it parses, otherwise the current time.
func (a *Aggregator) projectDate(project *models.Project) time.Time {
	if project.CompletedAt != nil {
		if done, ok := models.ParseTimestamp(*project.CompletedAt); ok {
			return done.In(ReportZone)
		}
	}
	return a.now().In(ReportZone)
}
