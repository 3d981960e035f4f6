package card

import (
	"fmt"
	"strings"

	"piaopiao-backend-go/internal/services"
)

// WeeklyCard renders the weekly progress report, one block per member.
func WeeklyCard(report services.WeeklyReport, layout Layout) Document {
	labels := layout.Weekly
	b := NewBuilder(layout).
		SetTitle(labels.Title).
		SetDateRange(report.Week.Label())
	if len(report.Members) == 0 {
		b.AddNote(labels.EmptyMembers)
	}
	for _, m := range report.Members {
		b.AddMemberBlock(m.Name,
			Row{Label: labels.TaskProgress, Value: fmt.Sprintf("%d / %d", m.TaskCompleted, m.TaskTotal)},
			Row{Label: labels.TaskWeekly, Value: fmt.Sprintf("%d", m.TaskWeeklyCompleted)},
			Row{Label: labels.ChecklistDone, Value: fmt.Sprintf("%d / %d", m.ChecklistCompleted, m.ChecklistTotal)},
			Row{Label: labels.ChecklistWeek, Value: fmt.Sprintf("%d", m.ChecklistWeeklyCompleted)},
		)
	}
	return Document{AltText: labels.AltText, Bubble: b.Build()}
}

// SummaryCard renders the end-of-project summary with the per-member breakdown.
func SummaryCard(summary services.ProjectSummary, layout Layout) Document {
	labels := layout.Summary
	memberNames := services.RatingSentinel
	if len(summary.MemberNames) > 0 {
		memberNames = strings.Join(summary.MemberNames, labels.MemberSeparator)
	}

	b := NewBuilder(layout).
		SetTitle(labels.Title).
		SetDateRange(summary.Date.Format("01/02")).
		SetOverview(
			Row{Label: labels.ProjectName, Value: summary.ProjectName, Wrap: true},
			Row{Label: labels.TaskTotal, Value: fmt.Sprintf("%d %s", summary.TaskTotal, labels.ItemUnit)},
			Row{Label: labels.ResourceTotal, Value: fmt.Sprintf("%d %s", summary.ResourceTotal, labels.ItemUnit)},
			Row{Label: labels.Members, Value: memberNames, Wrap: true},
		).
		SetFooter(labels.Footer)

	for _, m := range summary.Members {
		b.AddMemberBlock(m.Name,
			Row{Label: labels.Attributes, Value: attributeText(m.Attributes, labels.MemberSeparator), Wrap: true},
			Row{Label: labels.TaskProgress, Value: fmt.Sprintf("%d / %d", m.TaskCompleted, m.TaskTotal)},
			Row{Label: labels.ResourceCount, Value: fmt.Sprintf("%d %s", m.ResourceCount, labels.ItemUnit)},
			Row{Label: labels.CommentCount, Value: fmt.Sprintf("%d %s", m.CommentCount, labels.TimesUnit)},
			Row{Label: labels.AverageRating, Value: RatingLabel(m)},
		)
	}
	return Document{AltText: labels.AltText, Bubble: b.Build()}
}

// RatingLabel is "⭐ 4.5" or the sentinel when the member has no ratings.
func RatingLabel(m services.MemberMetrics) string {
	avg, ok := m.AverageRating()
	if !ok {
		return services.RatingSentinel
	}
	return fmt.Sprintf("⭐ %.1f", avg)
}

func attributeText(attrs []string, sep string) string {
	if len(attrs) == 0 {
		return services.RatingSentinel
	}
	return strings.Join(attrs, sep)
}

func Welcome(layout Layout) Document {
	labels := layout.Menu
	b := NewBuilder(layout).SetTitle(labels.WelcomeTitle)
	for _, step := range labels.WelcomeSteps {
		b.AddNote(step)
	}
	b.AddButton(Action{Type: "uri", Label: labels.SiteButton, URI: labels.SiteURL}, "primary")
	return Document{AltText: labels.WelcomeAltText, Bubble: b.Build()}
}

func Menu(layout Layout) Document {
	labels := layout.Menu
	b := NewBuilder(layout).
		SetTitle(labels.MenuTitle).
		AddButton(Action{Type: "message", Label: labels.WeeklyButton, Text: labels.WeeklyButton}, "primary").
		AddButton(Action{Type: "message", Label: labels.SummaryButton, Text: labels.SummaryButton}, "primary").
		AddButton(Action{Type: "postback", Label: labels.ShareButton, Data: labels.ShareData}, "secondary").
		AddButton(Action{Type: "uri", Label: labels.SiteButton, URI: labels.SiteURL}, "link")
	return Document{AltText: labels.MenuAltText, Bubble: b.Build()}
}
