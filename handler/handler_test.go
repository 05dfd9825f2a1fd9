package handler

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/slack-go/slack"
	"github.com/teamops/muster-bot/policy"
	"github.com/teamops/muster-bot/repository"
	"github.com/teamops/muster-bot/workflow"
	"go.uber.org/zap"
)

const (
	testAdminID = "UADMIN"
	testUserID  = "UUSER"
)

type fakeSlack struct {
	posts int
	views int
}

func (f *fakeSlack) PostMessageContext(context.Context, string, ...slack.MsgOption) (string, string, error) {
	f.posts++
	return "C123", fmt.Sprintf("1700000000.%06d", f.posts), nil
}

func (f *fakeSlack) PostEphemeralContext(context.Context, string, string, ...slack.MsgOption) (string, error) {
	return "", nil
}

func (f *fakeSlack) OpenViewContext(context.Context, string, slack.ModalViewRequest) (*slack.ViewResponse, error) {
	f.views++
	return &slack.ViewResponse{}, nil
}

func (f *fakeSlack) GetUsersInConversationContext(context.Context, *slack.GetUsersInConversationParameters) ([]string, string, error) {
	return nil, "", nil
}

func (f *fakeSlack) GetUserInfoContext(_ context.Context, user string) (*slack.User, error) {
	return &slack.User{ID: user, Name: user}, nil
}

func newTestHandler(t *testing.T) (*Handler, *sqlx.DB, *fakeSlack) {
	t.Helper()
	ctx := context.Background()

	db, err := sqlx.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Open database: %v.", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := repository.Migrate(ctx, db); err != nil {
		t.Fatalf("Migrate: %v.", err)
	}
	if err := repository.NewAdminRepository(db).Add(ctx, testAdminID); err != nil {
		t.Fatalf("Should not be fail: %v.", err)
	}

	pol := policy.New(
		repository.NewHolidayRepository(db),
		repository.NewAdminRepository(db),
		repository.NewLeaveRepository(db),
	)

	api := &fakeSlack{}
	engine := workflow.NewEngine(
		api,
		"C123",
		pol,
		repository.NewResponseRepository(db),
		repository.NewLeaveRepository(db),
		repository.NewDailyThreadRepository(db),
		repository.NewMessageRepository(db),
		zap.NewNop(),
	)

	h := NewHandler(engine, pol, repository.NewHolidayRepository(db), "secret", zap.NewNop())

	return h, db, api
}

func (h *Handler) dispatch(ctx context.Context, command, userID, text string) (string, error) {
	return h.commands[command](ctx, slack.SlashCommand{
		Command:   command,
		UserID:    userID,
		Text:      text,
		TriggerID: "trigger-1",
	})
}

func TestHandler_GatedCommandsRefuseNonAdmins(t *testing.T) {
	ctx := context.Background()
	h, _, api := newTestHandler(t)

	gated := []string{
		"/post_checkin",
		"/post_reminders",
		"/post_summary",
		"/holiday",
		"/add_admin",
		"/edit_status",
		"/report",
		"/config",
	}
	for _, command := range gated {
		reply, err := h.dispatch(ctx, command, testUserID, "")
		if err != nil {
			t.Fatalf("Should not be fail: %v.", err)
		}
		if got, want := reply, adminRefusal; got != want {
			t.Fatalf("%s reply is %q, but want %q.", command, got, want)
		}
	}
	if got, want := api.posts, 0; got != want {
		t.Fatalf("Post count is %d, but want %d.", got, want)
	}
}

func TestHandler_ForceCommands(t *testing.T) {
	ctx := context.Background()
	h, _, api := newTestHandler(t)

	reply, err := h.dispatch(ctx, "/post_checkin", testAdminID, "")
	if err != nil {
		t.Fatalf("Should not be fail: %v.", err)
	}
	if got, want := reply, "Forcing the daily check-in post now..."; got != want {
		t.Fatalf("Reply is %q, but want %q.", got, want)
	}
	if got, want := api.posts, 1; got != want {
		t.Fatalf("Post count is %d, but want %d.", got, want)
	}

	reply, err = h.dispatch(ctx, "/post_summary", testAdminID, "")
	if err != nil {
		t.Fatalf("Should not be fail: %v.", err)
	}
	if got, want := reply, "Forcing the daily summary post now..."; got != want {
		t.Fatalf("Reply is %q, but want %q.", got, want)
	}
}

func TestHandler_HelpVariesByAdmin(t *testing.T) {
	ctx := context.Background()
	h, _, _ := newTestHandler(t)

	reply, err := h.dispatch(ctx, "/help", testUserID, "")
	if err != nil {
		t.Fatalf("Should not be fail: %v.", err)
	}
	if strings.Contains(reply, "*Admin Commands*") {
		t.Fatal("Non-admin help should not list admin commands.")
	}

	reply, err = h.dispatch(ctx, "/help", testAdminID, "")
	if err != nil {
		t.Fatalf("Should not be fail: %v.", err)
	}
	if !strings.Contains(reply, "*Admin Commands*") {
		t.Fatal("Admin help should list admin commands.")
	}
}

func TestHandler_Holiday(t *testing.T) {
	ctx := context.Background()
	h, db, _ := newTestHandler(t)

	reply, err := h.dispatch(ctx, "/holiday", testAdminID, "2025-12-25 Christmas Day")
	if err != nil {
		t.Fatalf("Should not be fail: %v.", err)
	}
	if got, want := reply, ":tada: Holiday 'Christmas Day' on 2025-12-25 has been added."; got != want {
		t.Fatalf("Reply is %q, but want %q.", got, want)
	}

	exists, err := repository.NewHolidayRepository(db).Exists(ctx, "2025-12-25")
	if err != nil {
		t.Fatalf("Should not be fail: %v.", err)
	}
	if !exists {
		t.Fatal("Holiday should exist.")
	}

	reply, err = h.dispatch(ctx, "/holiday", testAdminID, "someday Party")
	if err != nil {
		t.Fatalf("Should not be fail: %v.", err)
	}
	if !strings.Contains(reply, "couldn't understand that date") {
		t.Fatalf("Reply is %q, but want a date apology.", reply)
	}

	reply, err = h.dispatch(ctx, "/holiday", testAdminID, "2025-12-25")
	if err != nil {
		t.Fatalf("Should not be fail: %v.", err)
	}
	if !strings.Contains(reply, "Usage:") {
		t.Fatalf("Reply is %q, but want the usage line.", reply)
	}
}

func TestHandler_Stubs(t *testing.T) {
	ctx := context.Background()
	h, _, _ := newTestHandler(t)

	tests := []struct {
		command string
		want    string
	}{
		{"/add_admin", "Add admin feature coming soon!"},
		{"/edit_status", "Edit status feature coming soon!"},
		{"/report", "Report feature coming soon!"},
		{"/config", "Config feature coming soon!"},
		{"/calendar", "Calendar feature coming soon!"},
	}
	for _, tt := range tests {
		reply, err := h.dispatch(ctx, tt.command, testAdminID, "")
		if err != nil {
			t.Fatalf("Should not be fail: %v.", err)
		}
		if got := reply; got != tt.want {
			t.Fatalf("%s reply is %q, but want %q.", tt.command, got, tt.want)
		}
	}
}

func TestHandler_Timeoff(t *testing.T) {
	ctx := context.Background()
	h, _, api := newTestHandler(t)

	reply, err := h.dispatch(ctx, "/timeoff", testUserID, "")
	if err != nil {
		t.Fatalf("Should not be fail: %v.", err)
	}
	if got, want := reply, ""; got != want {
		t.Fatalf("Reply is %q, but want %q.", got, want)
	}
	if got, want := api.views, 1; got != want {
		t.Fatalf("View count is %d, but want %d.", got, want)
	}
}

func TestParseHolidayDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2025-12-25", "2025-12-25"},
		{"2025/12/25", "2025-12-25"},
		{"12/25/2025", "2025-12-25"},
		{"7/4/2025", "2025-07-04"},
	}
	for _, tt := range tests {
		got, err := parseHolidayDate(tt.in)
		if err != nil {
			t.Fatalf("Should not be fail: %v.", err)
		}
		if got != tt.want {
			t.Fatalf("parseHolidayDate(%q) is %q, but want %q.", tt.in, got, tt.want)
		}
	}

	if _, err := parseHolidayDate("next tuesday"); err == nil {
		t.Fatal("Should fail on an unparsable date.")
	}
}
