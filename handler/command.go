package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/slack-go/slack"
	"github.com/teamops/muster-bot/entity"
)

// commandFunc runs one slash command and returns the reply text shown
// to the caller ("" for no reply).
type commandFunc func(ctx context.Context, cmd slack.SlashCommand) (string, error)

const adminRefusal = "Sorry, only admins can use this command."

// commandTable maps each slash command to its handler. Gated commands
// are wrapped in adminOnly so the check cannot be skipped.
func (h *Handler) commandTable() map[string]commandFunc {
	return map[string]commandFunc{
		"/post_checkin":   h.adminOnly(h.cmdPostCheckin),
		"/post_reminders": h.adminOnly(h.cmdPostReminders),
		"/post_summary":   h.adminOnly(h.cmdPostSummary),
		"/holiday":        h.adminOnly(h.cmdHoliday),
		"/add_admin":      h.adminOnly(comingSoon("Add admin")),
		"/edit_status":    h.adminOnly(comingSoon("Edit status")),
		"/report":         h.adminOnly(comingSoon("Report")),
		"/config":         h.adminOnly(comingSoon("Config")),
		"/timeoff":        h.cmdTimeoff,
		"/calendar":       h.cmdCalendar,
		"/status":         h.cmdStatus,
		"/help":           h.cmdHelp,
	}
}

// adminOnly refuses the wrapped command for callers without an admin
// flag.
func (h *Handler) adminOnly(next commandFunc) commandFunc {
	return func(ctx context.Context, cmd slack.SlashCommand) (string, error) {
		isAdmin, err := h.policy.IsAdmin(ctx, cmd.UserID)
		if err != nil {
			return "", fmt.Errorf("is admin: %w", err)
		}
		if !isAdmin {
			return adminRefusal, nil
		}

		return next(ctx, cmd)
	}
}

// comingSoon is the fixed reply for commands that are not built yet.
func comingSoon(feature string) commandFunc {
	return func(context.Context, slack.SlashCommand) (string, error) {
		return feature + " feature coming soon!", nil
	}
}

func (h *Handler) cmdPostCheckin(ctx context.Context, _ slack.SlashCommand) (string, error) {
	if err := h.engine.PostCheckin(ctx, true); err != nil {
		return "", err
	}

	return "Forcing the daily check-in post now...", nil
}

func (h *Handler) cmdPostReminders(ctx context.Context, _ slack.SlashCommand) (string, error) {
	if err := h.engine.PostReminders(ctx, true); err != nil {
		return "", err
	}

	return "Forcing reminder DMs now...", nil
}

func (h *Handler) cmdPostSummary(ctx context.Context, _ slack.SlashCommand) (string, error) {
	if err := h.engine.PostSummary(ctx, true); err != nil {
		return "", err
	}

	return "Forcing the daily summary post now...", nil
}

func (h *Handler) cmdTimeoff(ctx context.Context, cmd slack.SlashCommand) (string, error) {
	if err := h.engine.OpenLeaveModal(ctx, cmd.TriggerID); err != nil {
		return "", err
	}

	return "", nil
}

func (h *Handler) cmdHoliday(ctx context.Context, cmd slack.SlashCommand) (string, error) {
	parts := strings.SplitN(strings.TrimSpace(cmd.Text), " ", 2)
	if len(parts) < 2 {
		return "Usage: `/holiday YYYY-MM-DD Description`", nil
	}

	date, err := parseHolidayDate(parts[0])
	if err != nil {
		return "Sorry, I couldn't understand that date. Please use a format like YYYY-MM-DD.", nil
	}

	description := strings.TrimSpace(parts[1])
	if err := h.holidayRepo.Upsert(ctx, date, description); err != nil {
		return "", fmt.Errorf("upsert holiday: %w", err)
	}

	return fmt.Sprintf(":tada: Holiday '%s' on %s has been added.", description, date), nil
}

func (h *Handler) cmdCalendar(context.Context, slack.SlashCommand) (string, error) {
	return "Calendar feature coming soon!", nil
}

func (h *Handler) cmdStatus(_ context.Context, cmd slack.SlashCommand) (string, error) {
	if strings.TrimSpace(cmd.Text) == "" {
		return "Usage: `/status [@user|team]`", nil
	}

	return "Status lookup feature coming soon!", nil
}

func (h *Handler) cmdHelp(ctx context.Context, cmd slack.SlashCommand) (string, error) {
	helpText := "*Muster Bot Commands*\n" +
		"`/timeoff` - Register your upcoming leave or PTO.\n" +
		"`/calendar` - Display a calendar of team leave and holidays for the month.\n" +
		"`/status [@user|team]` - Check the status of a team member or the whole team.\n" +
		"`/help` - Shows this message.\n\n"

	isAdmin, err := h.policy.IsAdmin(ctx, cmd.UserID)
	if err != nil {
		return "", fmt.Errorf("is admin: %w", err)
	}
	if isAdmin {
		helpText += "*Admin Commands*\n" +
			"`/post_checkin` - Force the daily check-in post.\n" +
			"`/post_reminders` - Force the reminder DMs.\n" +
			"`/post_summary` - Force the daily summary post.\n" +
			"`/holiday [YYYY-MM-DD] [description]` - Add a company holiday.\n" +
			"`/edit_status [@user] [status]` - Manually set a user's status for today.\n" +
			"`/add_admin [@user]` - Grant a user admin permissions for this bot.\n" +
			"`/report [@user] [period]` - Generate an accountability report.\n" +
			"`/config [key] [value]` - View or set bot configuration.\n"
	}

	return helpText, nil
}

var holidayDateLayouts = []string{
	entity.DateLayout,
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
}

// parseHolidayDate accepts a handful of common date spellings and
// normalizes to ISO.
func parseHolidayDate(s string) (string, error) {
	for _, layout := range holidayDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(entity.DateLayout), nil
		}
	}

	return "", fmt.Errorf("unrecognized date %q", s)
}
