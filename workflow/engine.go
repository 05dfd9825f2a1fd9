// Package workflow orchestrates the daily check-in cycle: prompt,
// collect, remind, summarize, plus leave registration and the message
// audit log.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/slack-go/slack"
	"github.com/teamops/muster-bot/entity"
	"github.com/teamops/muster-bot/policy"
	"github.com/teamops/muster-bot/repository"
	"go.uber.org/zap"
)

// ErrInvalidDateRange is returned by RegisterLeave when a date is
// missing or the end date is before the start date.
var ErrInvalidDateRange = errors.New("invalid leave date range")

type Engine struct {
	api       SlackAPI
	channelID string
	policy    *policy.Policy

	responseRepo *repository.ResponseRepository
	leaveRepo    *repository.LeaveRepository
	threadRepo   *repository.DailyThreadRepository
	messageRepo  *repository.MessageRepository

	logger *zap.Logger
	now    func() time.Time
}

func NewEngine(
	api SlackAPI,
	channelID string,
	pol *policy.Policy,
	responseRepo *repository.ResponseRepository,
	leaveRepo *repository.LeaveRepository,
	threadRepo *repository.DailyThreadRepository,
	messageRepo *repository.MessageRepository,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		api:          api,
		channelID:    channelID,
		policy:       pol,
		responseRepo: responseRepo,
		leaveRepo:    leaveRepo,
		threadRepo:   threadRepo,
		messageRepo:  messageRepo,
		logger:       logger,
		now:          time.Now,
	}
}

// offDay reports whether today should suppress an unforced run.
func (e *Engine) offDay(ctx context.Context, force bool) (bool, error) {
	if force {
		return false, nil
	}

	workday, err := e.policy.IsWorkday(ctx, e.now())
	if err != nil {
		return false, fmt.Errorf("is workday: %w", err)
	}

	return !workday, nil
}

// PostCheckin posts the interactive daily prompt to the target channel
// and records the prompt's timestamp as the day's thread handle.
func (e *Engine) PostCheckin(ctx context.Context, force bool) error {
	if off, err := e.offDay(ctx, force); err != nil {
		return err
	} else if off {
		e.logger.Info("holiday or weekend, no check-in prompt sent")
		return nil
	}

	buttons := make([]slack.BlockElement, 0, len(Statuses))
	for _, s := range Statuses {
		btn := slack.NewButtonBlockElement(s.ActionID, "", slack.NewTextBlockObject(slack.PlainTextType, s.buttonText(), false, false))
		if s.ButtonStyle != slack.StyleDefault {
			btn = btn.WithStyle(s.ButtonStyle)
		}
		buttons = append(buttons, btn)
	}

	_, ts, err := e.api.PostMessageContext(ctx, e.channelID,
		slack.MsgOptionText("Good morning team! Please check in for the day.", false),
		slack.MsgOptionBlocks(
			slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, "*Good morning! :sunrise: Please check in for today.*", false, false), nil, nil),
			slack.NewActionBlock(CheckinBlockID, buttons...),
		),
	)
	if err != nil {
		return fmt.Errorf("post check-in prompt: %w", err)
	}

	today := e.now().Format(entity.DateLayout)
	if err := e.threadRepo.Set(ctx, today, ts); err != nil {
		return fmt.Errorf("save thread handle: %w", err)
	}

	e.logger.Info("daily check-in prompt sent", zap.String("channel", e.channelID), zap.String("date", today))

	return nil
}

// RecordResponse upserts the user's check-in for today and posts a
// confirmation into the day's thread. Re-submitting replaces the
// earlier response.
func (e *Engine) RecordResponse(ctx context.Context, userID, userName, responseText, details string) error {
	today := e.now().Format(entity.DateLayout)

	if err := e.responseRepo.Upsert(ctx, userID, userName, today, responseText, details); err != nil {
		return fmt.Errorf("upsert response: %w", err)
	}

	detailsText := ""
	if details != "" {
		detailsText = fmt.Sprintf(" (Details: %s)", details)
	}

	opts := []slack.MsgOption{
		slack.MsgOptionText(fmt.Sprintf("<@%s> has checked in: *%s*%s", userID, responseText, detailsText), false),
	}

	ts, err := e.threadRepo.Get(ctx, today)
	if err != nil {
		return fmt.Errorf("get thread handle: %w", err)
	}
	if ts != "" {
		opts = append(opts, slack.MsgOptionTS(ts))
	}

	if _, _, err := e.api.PostMessageContext(ctx, e.channelID, opts...); err != nil {
		return fmt.Errorf("post confirmation: %w", err)
	}

	return nil
}

// PostReminders DMs everyone in the channel who has not checked in today
// and is not on leave. A failed delivery is logged and does not stop the
// remaining deliveries.
func (e *Engine) PostReminders(ctx context.Context, force bool) error {
	if off, err := e.offDay(ctx, force); err != nil {
		return err
	} else if off {
		return nil
	}

	today := e.now()
	todayStr := today.Format(entity.DateLayout)

	members := e.ChannelMembers(ctx)

	responses, err := e.responseRepo.ListByDate(ctx, todayStr)
	if err != nil {
		return fmt.Errorf("list responses: %w", err)
	}
	responded := make(map[string]bool, len(responses))
	for _, r := range responses {
		responded[r.UserID] = true
	}

	for _, userID := range members {
		if responded[userID] {
			continue
		}

		onLeave, err := e.policy.IsOnLeave(ctx, userID, today)
		if err != nil {
			e.logger.Error("leave check failed", zap.String("user_id", userID), zap.Error(err))
			continue
		}
		if onLeave {
			continue
		}

		if _, _, err := e.api.PostMessageContext(ctx, userID,
			slack.MsgOptionText("Just a friendly reminder to please check in for today! ☀️", false),
		); err != nil {
			e.logger.Error("send reminder failed", zap.String("user_id", userID), zap.Error(err))
			continue
		}

		e.logger.Info("sent reminder", zap.String("user_id", userID))
	}

	return nil
}

// PostSummary posts the roll-call of today's responses into the day's
// thread, or a fixed notice when nobody has checked in.
func (e *Engine) PostSummary(ctx context.Context, force bool) error {
	if off, err := e.offDay(ctx, force); err != nil {
		return err
	} else if off {
		return nil
	}

	today := e.now().Format(entity.DateLayout)

	responses, err := e.responseRepo.ListByDate(ctx, today)
	if err != nil {
		return fmt.Errorf("list responses: %w", err)
	}

	summary := SummaryText(today, responses)

	opts := []slack.MsgOption{slack.MsgOptionText(summary, false)}

	ts, err := e.threadRepo.Get(ctx, today)
	if err != nil {
		return fmt.Errorf("get thread handle: %w", err)
	}
	if ts != "" {
		opts = append(opts, slack.MsgOptionTS(ts))
	}

	if _, _, err := e.api.PostMessageContext(ctx, e.channelID, opts...); err != nil {
		return fmt.Errorf("post summary: %w", err)
	}

	e.logger.Info("posted daily summary", zap.String("date", today))

	return nil
}

// SummaryText renders the daily roll-call.
func SummaryText(date string, responses []entity.CheckinResponse) string {
	if len(responses) == 0 {
		return fmt.Sprintf("*Daily Status Summary for %s*\n\nNo one has checked in yet.", date)
	}

	summary := fmt.Sprintf("*Daily Status Summary for %s*\n", date)
	for _, r := range responses {
		detailsText := ""
		if r.Details != "" {
			detailsText = fmt.Sprintf(" (%s)", r.Details)
		}
		summary += fmt.Sprintf("\n• <@%s>: *%s*%s", r.UserID, r.ResponseText, detailsText)
	}

	return summary
}

// RegisterLeave stores an inclusive leave period and confirms it to the
// submitter with an ephemeral message.
func (e *Engine) RegisterLeave(ctx context.Context, userID, userName, startDate, endDate string) error {
	if startDate == "" || endDate == "" || endDate < startDate {
		return ErrInvalidDateRange
	}

	if err := e.leaveRepo.Create(ctx, userID, userName, startDate, endDate); err != nil {
		return fmt.Errorf("create leave period: %w", err)
	}

	if _, err := e.api.PostEphemeralContext(ctx, e.channelID, userID,
		slack.MsgOptionText(fmt.Sprintf("Got it! Your leave from %s to %s has been recorded.", startDate, endDate), false),
	); err != nil {
		e.logger.Error("leave confirmation failed", zap.String("user_id", userID), zap.Error(err))
	}

	return nil
}

// LogMessage appends an observed channel message to the audit log.
// Best effort: a failed sender lookup records the sender as Unknown.
func (e *Engine) LogMessage(ctx context.Context, senderID, destinationID, timestamp, text string) error {
	if senderID == "" || destinationID == "" || timestamp == "" || text == "" {
		return nil
	}

	senderName := "Unknown"
	if user, err := e.api.GetUserInfoContext(ctx, senderID); err != nil {
		e.logger.Warn("sender lookup failed", zap.String("user_id", senderID), zap.Error(err))
	} else {
		senderName = user.Name
	}

	if err := e.messageRepo.Create(ctx, entity.LoggedMessage{
		SenderID:      senderID,
		SenderName:    senderName,
		DestinationID: destinationID,
		SentTimestamp: timestamp,
		Message:       text,
	}); err != nil {
		return fmt.Errorf("log message: %w", err)
	}

	return nil
}

// ChannelMembers lists the non-bot members of the target channel.
// Platform failures degrade to an empty set.
func (e *Engine) ChannelMembers(ctx context.Context) []string {
	var members []string

	params := &slack.GetUsersInConversationParameters{ChannelID: e.channelID}
	for {
		ids, cursor, err := e.api.GetUsersInConversationContext(ctx, params)
		if err != nil {
			e.logger.Error("fetch channel members failed", zap.String("channel", e.channelID), zap.Error(err))
			return nil
		}

		for _, id := range ids {
			user, err := e.api.GetUserInfoContext(ctx, id)
			if err != nil {
				e.logger.Error("fetch user info failed", zap.String("user_id", id), zap.Error(err))
				return nil
			}
			if user.IsBot {
				continue
			}
			members = append(members, id)
		}

		if cursor == "" {
			return members
		}
		params.Cursor = cursor
	}
}

// OpenDetailModal opens the free-text follow-up for a status that needs
// a detail before it is recorded.
func (e *Engine) OpenDetailModal(ctx context.Context, triggerID string, status Status) error {
	view := slack.ModalViewRequest{
		Type:       slack.VTModal,
		CallbackID: status.ModalCallbackID(),
		Title:      slack.NewTextBlockObject(slack.PlainTextType, status.ModalTitle, false, false),
		Submit:     slack.NewTextBlockObject(slack.PlainTextType, "Submit", false, false),
		Blocks: slack.Blocks{BlockSet: []slack.Block{
			slack.NewInputBlock(
				DetailsBlockID,
				slack.NewTextBlockObject(slack.PlainTextType, status.ModalLabel, false, false),
				nil,
				slack.NewPlainTextInputBlockElement(
					slack.NewTextBlockObject(slack.PlainTextType, status.ModalPlaceholder, false, false),
					DetailsInputID,
				),
			),
		}},
	}

	if _, err := e.api.OpenViewContext(ctx, triggerID, view); err != nil {
		return fmt.Errorf("open detail modal: %w", err)
	}

	return nil
}

// OpenLeaveModal opens the two-datepicker leave registration form.
func (e *Engine) OpenLeaveModal(ctx context.Context, triggerID string) error {
	view := slack.ModalViewRequest{
		Type:       slack.VTModal,
		CallbackID: LeaveModalCallbackID,
		Title:      slack.NewTextBlockObject(slack.PlainTextType, "Register Leave/PTO", false, false),
		Submit:     slack.NewTextBlockObject(slack.PlainTextType, "Submit", false, false),
		Blocks: slack.Blocks{BlockSet: []slack.Block{
			slack.NewInputBlock(
				StartDateBlock,
				slack.NewTextBlockObject(slack.PlainTextType, "Start Date", false, false),
				nil,
				slack.NewDatePickerBlockElement(StartDatePicker),
			),
			slack.NewInputBlock(
				EndDateBlock,
				slack.NewTextBlockObject(slack.PlainTextType, "End Date", false, false),
				nil,
				slack.NewDatePickerBlockElement(EndDatePicker),
			),
		}},
	}

	if _, err := e.api.OpenViewContext(ctx, triggerID, view); err != nil {
		return fmt.Errorf("open leave modal: %w", err)
	}

	return nil
}
