// Package bot maps chat commands to project reports and project writes.
package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"piaopiao-backend-go/internal/card"
	"piaopiao-backend-go/internal/messaging"
	"piaopiao-backend-go/internal/models"
	"piaopiao-backend-go/internal/services"

	"go.uber.org/zap"
)

const (
	CmdWelcome      = "開始使用"
	CmdMenu         = "呼叫飄飄"
	CmdWeekly       = "本週結算"
	CmdSummary      = "生成專案報表"
	CmdSharePrefix  = "#分享"
	CmdCreatePrefix = "建立專案："
	CmdJoinSuffix   = "／加入專案"

	PostbackExplainShare = "explain_share"
)

const (
	msgAskStageCount = "📌 請輸入此專案的階段數量（此次課程請輸入4）："
	msgStageCountNaN = "⚠️ 請用阿拉伯數字輸入階段數量（此次課程請輸入4）："
	msgJoinFormat    = "⚠️ 格式錯誤！請輸入【學號／姓名／加入專案】，例如：111234001／王曉明／加入專案"
	msgShareFormat   = "❗️格式錯誤，請使用：#分享 資源名稱 標籤 連結 描述（描述可省略）"
	msgShareHelp     = "請根據「#分享 名稱 標籤 相關連結 描述（選填）」格式輸入想分享的資源或工具，如「#分享 Figma UI/UX https://www.figma.com/ 視覺設計工具」"
	msgJoinExample   = "111219060／王曉明／加入專案"
)

type Reports interface {
	Weekly(ctx context.Context, groupID string) (services.WeeklyReport, error)
	Summary(ctx context.Context, projectID string) (services.ProjectSummary, error)
	SummaryForGroup(ctx context.Context, groupID string) (services.ProjectSummary, error)
}

type Projects interface {
	CreateProject(ctx context.Context, name string, stageCount int, creatorID, groupID string) (models.Project, error)
	Join(ctx context.Context, groupID, userID, studentID, realName string) (*models.Project, error)
	Share(ctx context.Context, groupID, userID string, req services.ShareRequest) (models.SharedResource, error)
}

type Options struct {
	Reports       Reports
	Projects      Projects
	Conversations services.ConversationStore
	Transport     messaging.Transport
	Layout        card.Layout
	JoinURL       string
	Logger        *zap.Logger
}

type Bot struct {
	reports       Reports
	projects      Projects
	conversations services.ConversationStore
	transport     messaging.Transport
	layout        card.Layout
	joinURL       string
	logger        *zap.Logger
}

func New(opts Options) *Bot {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{
		reports:       opts.Reports,
		projects:      opts.Projects,
		conversations: opts.Conversations,
		transport:     opts.Transport,
		layout:        opts.Layout,
		joinURL:       opts.JoinURL,
		logger:        logger,
	}
}

// HandleEvents answers each event in order. Delivery failures are logged and
// do not stop the remaining events.
func (b *Bot) HandleEvents(ctx context.Context, events []messaging.Event) {
	for _, ev := range events {
		msgs := b.Respond(ctx, ev)
		if len(msgs) == 0 {
			continue
		}
		if err := b.transport.Reply(ctx, ev.ReplyToken, msgs...); err != nil {
			b.logger.Error("reply failed",
				zap.String("user_id", ev.UserID),
				zap.String("group_id", ev.GroupID),
				zap.Error(err))
		}
	}
}

// Respond returns the reply for one event, or nothing when the event is not a
// command.
func (b *Bot) Respond(ctx context.Context, ev messaging.Event) []messaging.Message {
	switch ev.Kind {
	case messaging.EventPostback:
		if ev.Data == PostbackExplainShare {
			return text(msgShareHelp)
		}
		return nil
	case messaging.EventMessage:
		return b.command(ctx, ev, strings.TrimSpace(ev.Text))
	}
	return nil
}

func (b *Bot) command(ctx context.Context, ev messaging.Event, msg string) []messaging.Message {
	switch {
	case msg == CmdWelcome:
		return []messaging.Message{messaging.Card(card.Welcome(b.layout))}
	case msg == CmdMenu:
		return []messaging.Message{messaging.Card(card.Menu(b.layout))}
	case msg == CmdWeekly:
		report, err := b.reports.Weekly(ctx, ev.GroupID)
		if err != nil {
			return b.failure("weekly report", ev, err)
		}
		return []messaging.Message{messaging.Card(card.WeeklyCard(report, b.layout))}
	case msg == CmdSummary:
		summary, err := b.reports.SummaryForGroup(ctx, ev.GroupID)
		if err != nil {
			return b.failure("project summary", ev, err)
		}
		return []messaging.Message{messaging.Card(card.SummaryCard(summary, b.layout))}
	case strings.HasPrefix(msg, CmdSharePrefix):
		return b.share(ctx, ev, msg)
	}

	if state, ok := b.conversations.Get(ctx, ev.UserID); ok && state.Step == services.StepWaitingForStageCount {
		return b.finishCreate(ctx, ev, state, msg)
	}

	switch {
	case strings.Contains(msg, CmdJoinSuffix):
		return b.join(ctx, ev, msg)
	case strings.HasPrefix(msg, CmdCreatePrefix):
		return b.startCreate(ctx, ev, strings.TrimSpace(strings.TrimPrefix(msg, CmdCreatePrefix)))
	}
	return nil
}

func (b *Bot) share(ctx context.Context, ev messaging.Event, msg string) []messaging.Message {
	req, ok := services.ParseShareMessage(msg)
	if !ok {
		return text(msgShareFormat)
	}
	resource, err := b.projects.Share(ctx, ev.GroupID, ev.UserID, req)
	if err != nil {
		return b.failure("share resource", ev, err)
	}
	return text(fmt.Sprintf("✅ 資源「%s」已成功分享！", resource.Title))
}

func (b *Bot) startCreate(ctx context.Context, ev messaging.Event, name string) []messaging.Message {
	if name == "" {
		return text("⚠️ 請輸入專案名稱，如 ➡️ 建立專案：我的新專案")
	}
	b.conversations.Set(ctx, ev.UserID, services.ConversationState{
		Step:        services.StepWaitingForStageCount,
		ProjectName: name,
		GroupID:     ev.GroupID,
	})
	return text(msgAskStageCount)
}

// finishCreate consumes the stage count reply. A non-numeric reply keeps the
// conversation open and asks again.
func (b *Bot) finishCreate(ctx context.Context, ev messaging.Event, state services.ConversationState, msg string) []messaging.Message {
	stageCount, err := strconv.Atoi(msg)
	if err != nil || stageCount <= 0 {
		return text(msgStageCountNaN)
	}
	b.conversations.Clear(ctx, ev.UserID)

	groupID := state.GroupID
	if groupID == "" {
		groupID = ev.GroupID
	}
	project, err := b.projects.CreateProject(ctx, state.ProjectName, stageCount, ev.UserID, groupID)
	if err != nil {
		return b.failure("create project", ev, err)
	}
	return text(
		fmt.Sprintf("✅ 專案『%s』已建立，共%d個階段！\n成員可根據範例輸入學號姓名加入！", project.Name, project.StageCount),
		msgJoinExample,
	)
}

func (b *Bot) join(ctx context.Context, ev messaging.Event, msg string) []messaging.Message {
	studentID, realName, ok := services.ParseJoinMessage(msg)
	if !ok {
		return text(msgJoinFormat)
	}
	if _, err := b.projects.Join(ctx, ev.GroupID, ev.UserID, studentID, realName); err != nil {
		return b.failure("join project", ev, err)
	}
	reply := fmt.Sprintf("✅ 你已成功加入專案！\n學號：%s\n姓名：%s", studentID, realName)
	if b.joinURL != "" {
		reply += "\n" + b.joinURL
	}
	return text(reply)
}

// failure logs err and turns it into the user-facing reply.
func (b *Bot) failure(op string, ev messaging.Event, err error) []messaging.Message {
	fields := []zap.Field{
		zap.String("op", op),
		zap.String("user_id", ev.UserID),
		zap.String("group_id", ev.GroupID),
		zap.Error(err),
	}
	if services.IsKind(err, services.KindNotFound) || services.IsKind(err, services.KindBadRequest) {
		b.logger.Info("command rejected", fields...)
	} else {
		b.logger.Error("command failed", fields...)
	}
	return text(services.UserMessage(err))
}

func text(lines ...string) []messaging.Message {
	msgs := make([]messaging.Message, 0, len(lines))
	for _, line := range lines {
		msgs = append(msgs, messaging.Text(line))
	}
	return msgs
}
