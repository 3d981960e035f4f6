package bot

import (
	"context"

	"piaopiao-backend-go/internal/card"
	"piaopiao-backend-go/internal/messaging"
	"piaopiao-backend-go/internal/services"

	"go.uber.org/zap"
)

// PushWeekly sends the plain-text weekly report to a group. When the group has
// no project the NotFound message is pushed instead of failing.
func (b *Bot) PushWeekly(ctx context.Context, groupID string) error {
	if groupID == "" {
		return services.ErrBadRequest("missing group id")
	}
	report, err := b.reports.Weekly(ctx, groupID)
	var msg messaging.Message
	switch {
	case err == nil:
		msg = messaging.Text(report.Text())
	case services.IsKind(err, services.KindNotFound):
		msg = messaging.Text(services.UserMessage(err))
	default:
		return err
	}
	if err := b.transport.Push(ctx, groupID, msg); err != nil {
		b.logger.Error("push weekly failed", zap.String("group_id", groupID), zap.Error(err))
		return err
	}
	b.logger.Info("weekly report pushed", zap.String("group_id", groupID))
	return nil
}

// PushSummary sends a project's summary card to a group.
func (b *Bot) PushSummary(ctx context.Context, projectID, groupID string) error {
	if projectID == "" || groupID == "" {
		return services.ErrBadRequest(services.MsgMissingPushTargets)
	}
	summary, err := b.reports.Summary(ctx, projectID)
	if err != nil {
		return err
	}
	if err := b.transport.Push(ctx, groupID, messaging.Card(card.SummaryCard(summary, b.layout))); err != nil {
		b.logger.Error("push summary failed",
			zap.String("project_id", projectID),
			zap.String("group_id", groupID),
			zap.Error(err))
		return err
	}
	b.logger.Info("project summary pushed", zap.String("project_id", projectID), zap.String("group_id", groupID))
	return nil
}
