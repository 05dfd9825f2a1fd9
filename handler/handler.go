// Package handler receives Slack's signed HTTP callbacks: events,
// slash commands, and interactive component payloads.
package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/teamops/muster-bot/policy"
	"github.com/teamops/muster-bot/repository"
	"github.com/teamops/muster-bot/workflow"
	"go.uber.org/zap"
)

type Handler struct {
	engine             *workflow.Engine
	policy             *policy.Policy
	holidayRepo        *repository.HolidayRepository
	slackSigningSecret string
	logger             *zap.Logger

	commands map[string]commandFunc
}

func NewHandler(
	engine *workflow.Engine,
	pol *policy.Policy,
	holidayRepo *repository.HolidayRepository,
	slackSigningSecret string,
	logger *zap.Logger,
) *Handler {
	h := &Handler{
		engine:             engine,
		policy:             pol,
		holidayRepo:        holidayRepo,
		slackSigningSecret: slackSigningSecret,
		logger:             logger,
	}
	h.commands = h.commandTable()

	return h
}

// ReceiveEvent handles the events API: the URL verification handshake
// and message events, which feed the audit log.
func (h *Handler) ReceiveEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	bodyBytes, err := h.readAndValidate(w, r)
	if err != nil {
		return
	}

	eventsAPIEvent, err := slackevents.ParseEvent(bodyBytes, slackevents.OptionNoVerifyToken())
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.logger.Error("parse event", zap.Error(err))
		return
	}

	switch eventsAPIEvent.Type {
	case slackevents.URLVerification:
		var cr slackevents.ChallengeResponse
		if err := json.Unmarshal(bodyBytes, &cr); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			h.logger.Error("unmarshal challenge response", zap.Error(err))
			return
		}

		w.Header().Set("Content-type", "text/plain")
		w.Write([]byte(cr.Challenge))
	case slackevents.CallbackEvent:
		switch e := eventsAPIEvent.InnerEvent.Data.(type) {
		case *slackevents.MessageEvent:
			if err := h.engine.LogMessage(ctx, e.User, e.Channel, e.TimeStamp, e.Text); err != nil {
				h.logger.Error("log message", zap.Error(err))
			}
		}
	}
}

// ReceiveCommand dispatches a slash command through the command table.
// The reply text is written to the response, which Slack shows only to
// the caller.
func (h *Handler) ReceiveCommand(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	bodyBytes, err := h.readAndValidate(w, r)
	if err != nil {
		return
	}

	// SlashCommandParse consumes the body, so re-arm it after the
	// signature check.
	r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	cmd, err := slack.SlashCommandParse(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		h.logger.Error("parse slash command", zap.Error(err))
		return
	}

	fn, ok := h.commands[cmd.Command]
	if !ok {
		h.logger.Warn("unknown command", zap.String("command", cmd.Command))
		return
	}

	reply, err := fn(ctx, cmd)
	if err != nil {
		h.logger.Error("command failed", zap.String("command", cmd.Command), zap.Error(err))
		reply = "Sorry, something went wrong."
	}

	if reply != "" {
		w.Header().Set("Content-type", "text/plain")
		w.Write([]byte(reply))
	}
}

// ReceiveInteraction handles button clicks and modal submissions.
func (h *Handler) ReceiveInteraction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	bodyBytes, err := h.readAndValidate(w, r)
	if err != nil {
		return
	}

	values, err := url.ParseQuery(string(bodyBytes))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		h.logger.Error("parse interaction body", zap.Error(err))
		return
	}

	var cb slack.InteractionCallback
	if err := json.Unmarshal([]byte(values.Get("payload")), &cb); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		h.logger.Error("unmarshal interaction payload", zap.Error(err))
		return
	}

	switch cb.Type {
	case slack.InteractionTypeBlockActions:
		h.handleBlockActions(ctx, cb)
	case slack.InteractionTypeViewSubmission:
		h.handleViewSubmission(ctx, w, cb)
	}
}

func (h *Handler) handleBlockActions(ctx context.Context, cb slack.InteractionCallback) {
	for _, action := range cb.ActionCallback.BlockActions {
		status, ok := workflow.StatusByActionID(action.ActionID)
		if !ok {
			continue
		}

		if status.NeedsDetail {
			if err := h.engine.OpenDetailModal(ctx, cb.TriggerID, status); err != nil {
				h.logger.Error("open detail modal", zap.String("action_id", action.ActionID), zap.Error(err))
			}
			continue
		}

		if err := h.engine.RecordResponse(ctx, cb.User.ID, cb.User.Name, status.Label, ""); err != nil {
			h.logger.Error("record response", zap.String("user_id", cb.User.ID), zap.Error(err))
		}
	}
}

func (h *Handler) handleViewSubmission(ctx context.Context, w http.ResponseWriter, cb slack.InteractionCallback) {
	if cb.View.State == nil {
		return
	}

	if cb.View.CallbackID == workflow.LeaveModalCallbackID {
		values := cb.View.State.Values
		start := values[workflow.StartDateBlock][workflow.StartDatePicker].SelectedDate
		end := values[workflow.EndDateBlock][workflow.EndDatePicker].SelectedDate

		err := h.engine.RegisterLeave(ctx, cb.User.ID, cb.User.Name, start, end)
		if errors.Is(err, workflow.ErrInvalidDateRange) {
			writeViewErrors(w, map[string]string{
				workflow.EndDateBlock: "End date must not be before the start date.",
			})
			return
		}
		if err != nil {
			h.logger.Error("register leave", zap.String("user_id", cb.User.ID), zap.Error(err))
		}
		return
	}

	status, ok := workflow.StatusByCallbackID(cb.View.CallbackID)
	if !ok {
		return
	}

	details := cb.View.State.Values[workflow.DetailsBlockID][workflow.DetailsInputID].Value
	if err := h.engine.RecordResponse(ctx, cb.User.ID, cb.User.Name, status.Label, details); err != nil {
		h.logger.Error("record response", zap.String("user_id", cb.User.ID), zap.Error(err))
	}
}

// readAndValidate reads the body and verifies Slack's request signature,
// writing the failure status itself.
func (h *Handler) readAndValidate(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		h.logger.Error("read body", zap.Error(err))
		return nil, err
	}

	if err := validateRequest(h.slackSigningSecret, r.Header, bodyBytes); err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		h.logger.Error("validate request", zap.Error(err))
		return nil, err
	}

	return bodyBytes, nil
}

func validateRequest(signingSecret string, header http.Header, body []byte) error {
	sv, err := slack.NewSecretsVerifier(header, signingSecret)
	if err != nil {
		return fmt.Errorf("new secret verifier: %w", err)
	}
	if _, err := sv.Write(body); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	if err := sv.Ensure(); err != nil {
		return fmt.Errorf("ensure secret: %w", err)
	}

	return nil
}

func writeViewErrors(w http.ResponseWriter, errs map[string]string) {
	w.Header().Set("Content-type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"response_action": "errors",
		"errors":          errs,
	})
}
