package workflow

import (
	"context"
	"testing"
)

func TestStatusByActionID(t *testing.T) {
	s, ok := StatusByActionID(ActionWFH)
	if !ok {
		t.Fatal("Should resolve action_wfh.")
	}
	if got, want := s.Label, "Working from Home"; got != want {
		t.Fatalf("Label is %q, but want %q.", got, want)
	}
	if s.NeedsDetail {
		t.Fatal("action_wfh should not need a detail.")
	}

	if _, ok := StatusByActionID("action_unknown"); ok {
		t.Fatal("Should not resolve an unknown action.")
	}
}

func TestStatusByCallbackID(t *testing.T) {
	s, ok := StatusByCallbackID("modal_submit_action_in_late")
	if !ok {
		t.Fatal("Should resolve the in-late modal callback.")
	}
	if got, want := s.Label, "In Late"; got != want {
		t.Fatalf("Label is %q, but want %q.", got, want)
	}

	// Statuses without a detail modal have no callback.
	if _, ok := StatusByCallbackID("modal_submit_action_in_normal"); ok {
		t.Fatal("Should not resolve a detail-free status.")
	}
	if _, ok := StatusByCallbackID("leave_modal"); ok {
		t.Fatal("Should not resolve the leave modal.")
	}
}

func TestEngine_OpenModals(t *testing.T) {
	ctx := context.Background()
	api := &fakeSlack{}
	e, _ := newTestEngine(t, api)

	late, _ := StatusByActionID(ActionInLate)
	if err := e.OpenDetailModal(ctx, "trigger-1", late); err != nil {
		t.Fatalf("Should not be fail: %v.", err)
	}
	if err := e.OpenLeaveModal(ctx, "trigger-2"); err != nil {
		t.Fatalf("Should not be fail: %v.", err)
	}

	if got, want := len(api.views), 2; got != want {
		t.Fatalf("View count is %d, but want %d.", got, want)
	}
	if got, want := api.views[0].CallbackID, "modal_submit_action_in_late"; got != want {
		t.Fatalf("CallbackID is %q, but want %q.", got, want)
	}
	if got, want := api.views[1].CallbackID, LeaveModalCallbackID; got != want {
		t.Fatalf("CallbackID is %q, but want %q.", got, want)
	}
	if got, want := len(api.views[1].Blocks.BlockSet), 2; got != want {
		t.Fatalf("Leave modal block count is %d, but want %d.", got, want)
	}
}
