package services

import (
	"context"
	"fmt"
	"strings"
)

type WeeklyReport struct {
	ProjectID string          `json:"projectId"`
	Week      WeekWindow      `json:"-"`
	Members   []MemberMetrics `json:"members"`
}

// Weekly builds checklist and task counts for the group's current project,
// with completions bucketed into the current UTC+8 week.
func (a *Aggregator) Weekly(ctx context.Context, groupID string) (WeeklyReport, error) {
	week := CurrentWeek(a.now())

	project, err := a.source.LatestProjectForGroup(ctx, groupID)
	if err != nil {
		return WeeklyReport{}, ErrFetch("latest project", err)
	}
	if project == nil {
		return WeeklyReport{}, ErrNotFound(MsgGroupHasNoProject)
	}

	members, tasks, err := a.fetchRoster(ctx, project.ID)
	if err != nil {
		return WeeklyReport{}, err
	}
	r := newRollup(members)
	r.assignTasks(tasks)

	items, err := a.source.ListChecklists(ctx, r.taskIDs)
	if err != nil {
		return WeeklyReport{}, ErrFetch("list checklists", err)
	}
	r.applyChecklists(items, &week, a.opts.CountEmptyTasksComplete)

	return WeeklyReport{ProjectID: project.ID, Week: week, Members: r.members()}, nil
}

// Text renders the report as the plain-text reply, one line per member.
func (w WeeklyReport) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "🧾 本週任務週報（%s）\n", w.Week.Label())
	for i, m := range w.Members {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s：%d / %d ✅（本週完成 %d）", m.Name, m.ChecklistCompleted, m.ChecklistTotal, m.ChecklistWeeklyCompleted)
	}
	return b.String()
}
