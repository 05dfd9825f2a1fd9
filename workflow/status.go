package workflow

import "github.com/slack-go/slack"

// Action and block identifiers shared between the posted blocks and the
// interaction handlers.
const (
	CheckinBlockID = "check_in_actions"

	ActionInNormal    = "action_in_normal"
	ActionInLate      = "action_in_late"
	ActionWFH         = "action_wfh"
	ActionAppointment = "action_appointment"
	ActionOutSick     = "action_out_sick"
	ActionLiberty     = "action_liberty"
	ActionOther       = "action_other"

	DetailsBlockID  = "details_block"
	DetailsInputID  = "details_input"
	StartDateBlock  = "start_date_block"
	StartDatePicker = "start_date_picker"
	EndDateBlock    = "end_date_block"
	EndDatePicker   = "end_date_picker"

	LeaveModalCallbackID = "leave_modal"

	modalCallbackPrefix = "modal_submit_"
)

// Status is one of the seven check-in choices. Statuses with NeedsDetail
// collect a free-text detail through a modal before being recorded.
type Status struct {
	ActionID    string
	Label       string
	ButtonStyle slack.Style
	NeedsDetail bool

	// ButtonText overrides Label on the prompt button when set.
	ButtonText string

	// Modal copy, only meaningful when NeedsDetail is set.
	ModalTitle       string
	ModalLabel       string
	ModalPlaceholder string
}

// Statuses in button order on the daily prompt.
var Statuses = []Status{
	{ActionID: ActionInNormal, Label: "In at Normal Time", ButtonStyle: slack.StylePrimary},
	{
		ActionID:         ActionInLate,
		Label:            "In Late",
		NeedsDetail:      true,
		ModalTitle:       "In Late",
		ModalLabel:       "What time do you expect to be in?",
		ModalPlaceholder: "e.g., 10:30 AM",
	},
	{ActionID: ActionWFH, Label: "Working from Home"},
	{
		ActionID:         ActionAppointment,
		Label:            "Appointment",
		NeedsDetail:      true,
		ModalTitle:       "Appointment",
		ModalLabel:       "What are the details of the appointment?",
		ModalPlaceholder: "e.g., Dentist at 2 PM",
	},
	{ActionID: ActionOutSick, Label: "Out Sick", ButtonStyle: slack.StyleDanger},
	{ActionID: ActionLiberty, Label: "Liberty"},
	{
		ActionID:         ActionOther,
		Label:            "Other",
		ButtonText:       "Other...",
		NeedsDetail:      true,
		ModalTitle:       "Other Status",
		ModalLabel:       "Please provide your status for the day.",
		ModalPlaceholder: "e.g., Working from the airport",
	},
}

func StatusByActionID(actionID string) (Status, bool) {
	for _, s := range Statuses {
		if s.ActionID == actionID {
			return s, true
		}
	}

	return Status{}, false
}

// StatusByCallbackID resolves a detail-modal submission back to its
// status. Callback IDs are "modal_submit_" + action ID.
func StatusByCallbackID(callbackID string) (Status, bool) {
	if len(callbackID) <= len(modalCallbackPrefix) || callbackID[:len(modalCallbackPrefix)] != modalCallbackPrefix {
		return Status{}, false
	}

	s, ok := StatusByActionID(callbackID[len(modalCallbackPrefix):])
	if !ok || !s.NeedsDetail {
		return Status{}, false
	}

	return s, true
}

func (s Status) ModalCallbackID() string {
	return modalCallbackPrefix + s.ActionID
}

func (s Status) buttonText() string {
	if s.ButtonText != "" {
		return s.ButtonText
	}

	return s.Label
}
