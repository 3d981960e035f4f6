package services

import (
	"context"
	"math"
	"time"

	"piaopiao-backend-go/internal/models"

	"golang.org/x/sync/errgroup"
)

const RatingSentinel = "--"

// MemberMetrics is the per-member rollup both reports are built from.
type MemberMetrics struct {
	UserID                   string   `json:"userId"`
	Name                     string   `json:"name"`
	Attributes               []string `json:"attributes"`
	TaskTotal                int      `json:"taskTotal"`
	TaskCompleted            int      `json:"taskCompleted"`
	TaskWeeklyCompleted      int      `json:"taskWeeklyCompleted"`
	ChecklistTotal           int      `json:"checklistTotal"`
	ChecklistCompleted       int      `json:"checklistCompleted"`
	ChecklistWeeklyCompleted int      `json:"checklistWeeklyCompleted"`
	ResourceCount            int      `json:"resourceCount"`
	CommentCount             int      `json:"commentCount"`
	RatingSum                float64  `json:"ratingSum"`
	RatingCount              int      `json:"ratingCount"`
}

// AverageRating is RatingSum/RatingCount rounded to one decimal. ok is false
// when the member has no ratings.
func (m MemberMetrics) AverageRating() (avg float64, ok bool) {
	if m.RatingCount == 0 {
		return 0, false
	}
	return math.Round(m.RatingSum/float64(m.RatingCount)*10) / 10, true
}

type AggregateOptions struct {
	// ScopeRepliesToProject restricts comment counts to replies on this
	// project's shared resources. Off by default, which counts every reply a
	// member has written anywhere.
	ScopeRepliesToProject bool
	// CountEmptyTasksComplete treats a task without checklist items as done.
	CountEmptyTasksComplete bool
}

type Aggregator struct {
	source Source
	opts   AggregateOptions
	now    func() time.Time
}

func NewAggregator(source Source, opts AggregateOptions) *Aggregator {
	return &Aggregator{source: source, opts: opts, now: time.Now}
}

// WithClock returns a copy of the aggregator that reads the current time from now.
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	clone := *a
	clone.now = now
	return &clone
}

type rollup struct {
	order     []string
	byID      map[string]*MemberMetrics
	taskOwner map[string]string
	taskIDs   []string
}

func newRollup(members []models.Member) *rollup {
	r := &rollup{
		order:     make([]string, 0, len(members)),
		byID:      make(map[string]*MemberMetrics, len(members)),
		taskOwner: map[string]string{},
	}
	for _, member := range members {
		if _, dup := r.byID[member.UserID]; dup {
			continue
		}
		attrs := []string(member.AttributeTags)
		if attrs == nil {
			attrs = []string{}
		}
		r.order = append(r.order, member.UserID)
		r.byID[member.UserID] = &MemberMetrics{UserID: member.UserID, Name: member.RealName, Attributes: attrs}
	}
	return r
}

// assignTasks keeps only tasks owned by a known member.
func (r *rollup) assignTasks(tasks []models.Task) {
	for _, task := range tasks {
		metrics, ok := r.byID[task.Assignee()]
		if !ok {
			continue
		}
		if _, seen := r.taskOwner[task.ID]; seen {
			continue
		}
		metrics.TaskTotal++
		r.taskOwner[task.ID] = task.Assignee()
		r.taskIDs = append(r.taskIDs, task.ID)
	}
}

// applyChecklists counts items per owner and derives task completion. A task
// is complete when every one of its items is done; week may be nil.
func (r *rollup) applyChecklists(items []models.ChecklistItem, week *WeekWindow, emptyComplete bool) {
	byTask := map[string][]models.ChecklistItem{}
	for _, item := range items {
		uid, ok := r.taskOwner[item.TaskID]
		if !ok {
			continue
		}
		byTask[item.TaskID] = append(byTask[item.TaskID], item)
		metrics := r.byID[uid]
		metrics.ChecklistTotal++
		if !item.IsDone {
			continue
		}
		metrics.ChecklistCompleted++
		if week == nil {
			continue
		}
		if done, ok := item.CompletedTime(); ok && week.Contains(done) {
			metrics.ChecklistWeeklyCompleted++
		}
	}

	for _, taskID := range r.taskIDs {
		group := byTask[taskID]
		if !taskComplete(group, emptyComplete) {
			continue
		}
		metrics := r.byID[r.taskOwner[taskID]]
		metrics.TaskCompleted++
		if week == nil {
			continue
		}
		if finished, ok := latestCompletion(group); ok && week.Contains(finished) {
			metrics.TaskWeeklyCompleted++
		}
	}
}

func taskComplete(items []models.ChecklistItem, emptyComplete bool) bool {
	if len(items) == 0 {
		return emptyComplete
	}
	for _, item := range items {
		if !item.IsDone {
			return false
		}
	}
	return true
}

func latestCompletion(items []models.ChecklistItem) (time.Time, bool) {
	var latest time.Time
	found := false
	for _, item := range items {
		done, ok := item.CompletedTime()
		if !ok {
			continue
		}
		if !found || done.After(latest) {
			latest = done
			found = true
		}
	}
	return latest, found
}

func (r *rollup) members() []MemberMetrics {
	out := make([]MemberMetrics, 0, len(r.order))
	for _, uid := range r.order {
		out = append(out, *r.byID[uid])
	}
	return out
}

// fetchRoster loads members and tasks for a project in parallel.
func (a *Aggregator) fetchRoster(ctx context.Context, projectID string) ([]models.Member, []models.Task, error) {
	var members []models.Member
	var tasks []models.Task
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := a.source.ListMembers(gctx, projectID)
		if err != nil {
			return ErrFetch("list members", err)
		}
		members = rows
		return nil
	})
	g.Go(func() error {
		rows, err := a.source.ListTasks(gctx, projectID)
		if err != nil {
			return ErrFetch("list tasks", err)
		}
		tasks = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return members, tasks, nil
}
