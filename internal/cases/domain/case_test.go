package domain

import (
	"testing"
	"time"

	"github.com/mischa23v/traf3li-backend-sub004/platform/apperr"

	"github.com/google/uuid"
)

var (
	testUser  = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	otherUser = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	testFirm  = uuid.MustParse("33333333-3333-3333-3333-333333333333")
	baseTime  = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
)

func newCivilCase() *Case {
	firm := testFirm
	return &Case{
		ID:             uuid.New(),
		FirmID:         &firm,
		LawyerID:       testUser,
		Title:          "Ahmed v. Contracting Co",
		Category:       CategoryCivil,
		Status:         StatusOpen,
		Outcome:        OutcomeOngoing,
		CurrentStage:   "filing",
		StageEnteredAt: baseTime,
		CreatedAt:      baseTime,
	}
}

func countOpenEntries(c *Case) int {
	open := 0
	for _, entry := range c.StageHistory {
		if entry.ExitedAt == nil {
			open++
		}
	}
	return open
}

func TestMoveToStageFromInitialStage(t *testing.T) {
	vocab := DefaultVocabulary()
	c := newCivilCase()
	now := baseTime.Add(48 * time.Hour)

	if err := c.MoveToStage(vocab, "reconciliation", "moving forward", testUser, now); err != nil {
		t.Fatalf("MoveToStage failed: %v", err)
	}

	if c.CurrentStage != "reconciliation" {
		t.Errorf("currentStage = %q, want reconciliation", c.CurrentStage)
	}
	if len(c.StageHistory) != 2 {
		t.Fatalf("history length = %d, want 2 (implicit initial entry + new)", len(c.StageHistory))
	}
	if c.StageHistory[0].Stage != "filing" || c.StageHistory[0].ExitedAt == nil {
		t.Errorf("initial entry should be the closed filing occupancy: %+v", c.StageHistory[0])
	}
	if !c.StageHistory[0].ExitedAt.Equal(now) {
		t.Errorf("initial entry exitedAt = %v, want %v", c.StageHistory[0].ExitedAt, now)
	}
	if c.StageHistory[1].ExitedAt != nil {
		t.Error("new entry must be open")
	}
	if c.StageHistory[1].Notes != "moving forward" || c.StageHistory[1].ChangedBy != testUser {
		t.Errorf("new entry metadata wrong: %+v", c.StageHistory[1])
	}
	if !c.StageEnteredAt.Equal(now) {
		t.Errorf("stageEnteredAt = %v, want %v", c.StageEnteredAt, now)
	}
}

func TestConsecutiveMovesKeepSingleOpenEntry(t *testing.T) {
	vocab := DefaultVocabulary()
	c := newCivilCase()

	stages := []string{"reconciliation", "hearing", "judgment", "appeal"}
	for i, stage := range stages {
		now := baseTime.Add(time.Duration(i+1) * 24 * time.Hour)
		if err := c.MoveToStage(vocab, stage, "", testUser, now); err != nil {
			t.Fatalf("move %d to %q failed: %v", i, stage, err)
		}
	}

	// N moves leave N+1 entries including the implicit initial stage.
	if len(c.StageHistory) != len(stages)+1 {
		t.Errorf("history length = %d, want %d", len(c.StageHistory), len(stages)+1)
	}
	if countOpenEntries(c) != 1 {
		t.Errorf("open entries = %d, want exactly 1", countOpenEntries(c))
	}
	last := c.StageHistory[len(c.StageHistory)-1]
	if last.ExitedAt != nil || last.Stage != c.CurrentStage {
		t.Errorf("open entry must be the last and match currentStage: %+v vs %q", last, c.CurrentStage)
	}
}

func TestMoveToForeignStageRejectedWithRemediation(t *testing.T) {
	vocab := DefaultVocabulary()
	c := newCivilCase()
	c.Category = CategoryLabor
	c.CurrentStage = "filing"

	// mediation belongs to the commercial vocabulary only.
	err := c.MoveToStage(vocab, "mediation", "", testUser, baseTime.Add(time.Hour))
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	details, ok := err.(*apperr.Error).Details.(InvalidStageDetails)
	if !ok {
		t.Fatalf("error should carry InvalidStageDetails, got %T", err.(*apperr.Error).Details)
	}
	if details.Category != CategoryLabor || details.RequestedStage != "mediation" {
		t.Errorf("remediation payload wrong: %+v", details)
	}
	if len(details.ValidStages) == 0 {
		t.Error("remediation payload must include the valid stage list")
	}

	if len(c.StageHistory) != 0 || c.CurrentStage != "filing" {
		t.Error("rejected move must not mutate state")
	}
}

func TestMoveToStageRequiresNonEmptyStage(t *testing.T) {
	vocab := DefaultVocabulary()
	c := newCivilCase()

	if err := c.MoveToStage(vocab, "   ", "", testUser, baseTime); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("expected validation error for blank stage, got %v", err)
	}
}

func TestEndFreezesFinalStage(t *testing.T) {
	vocab := DefaultVocabulary()
	c := newCivilCase()
	moveTime := baseTime.Add(24 * time.Hour)
	endTime := baseTime.Add(72 * time.Hour)

	if err := c.MoveToStage(vocab, "hearing", "", testUser, moveTime); err != nil {
		t.Fatalf("move failed: %v", err)
	}
	if err := c.End(EndParams{Outcome: OutcomeWon, EndReason: "favorable judgment"}, testUser, endTime); err != nil {
		t.Fatalf("End failed: %v", err)
	}

	if c.Status != StatusClosed || c.Outcome != OutcomeWon {
		t.Errorf("status/outcome = %q/%q, want closed/won", c.Status, c.Outcome)
	}
	if c.CurrentStage != "hearing" {
		t.Errorf("ending must not change the stage: got %q", c.CurrentStage)
	}
	if countOpenEntries(c) != 0 {
		t.Error("ending must close the open history entry")
	}
	if c.EndDetails == nil {
		t.Fatal("endDetails not populated")
	}
	if c.EndDetails.EndedBy != testUser || !c.EndDetails.EndDate.Equal(endTime) {
		t.Errorf("endDetails wrong: %+v", c.EndDetails)
	}
}

func TestEndTwiceRejectedAndUnchanged(t *testing.T) {
	c := newCivilCase()
	endTime := baseTime.Add(time.Hour)

	if err := c.End(EndParams{Outcome: OutcomeSettled, EndReason: "settlement"}, testUser, endTime); err != nil {
		t.Fatalf("first End failed: %v", err)
	}
	first := *c.EndDetails

	err := c.End(EndParams{Outcome: OutcomeLost}, testUser, endTime.Add(time.Hour))
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("second End should conflict, got %v", err)
	}

	if c.Outcome != OutcomeSettled {
		t.Errorf("outcome changed by rejected End: %q", c.Outcome)
	}
	if *c.EndDetails != first {
		t.Errorf("endDetails changed by rejected End: %+v", c.EndDetails)
	}
}

func TestMoveAfterEndRejectedAndUnchanged(t *testing.T) {
	vocab := DefaultVocabulary()
	c := newCivilCase()

	if err := c.End(EndParams{Outcome: OutcomeWon}, testUser, baseTime.Add(time.Hour)); err != nil {
		t.Fatalf("End failed: %v", err)
	}
	historyLen := len(c.StageHistory)

	err := c.MoveToStage(vocab, "hearing", "", testUser, baseTime.Add(2*time.Hour))
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("move after end should conflict, got %v", err)
	}
	if c.CurrentStage != "filing" || len(c.StageHistory) != historyLen {
		t.Error("rejected move mutated an ended case")
	}
}

func TestEndRejectsInvalidOutcome(t *testing.T) {
	c := newCivilCase()

	for _, outcome := range []Outcome{OutcomeOngoing, Outcome(""), Outcome("dismissed")} {
		err := c.End(EndParams{Outcome: outcome}, testUser, baseTime)
		if !apperr.Is(err, apperr.KindValidation) {
			t.Errorf("End with outcome %q: expected validation error, got %v", outcome, err)
		}
	}
}

func TestEndRejectsNegativeFinalAmount(t *testing.T) {
	c := newCivilCase()
	amount := -500.0

	err := c.End(EndParams{Outcome: OutcomeWon, FinalAmount: &amount}, testUser, baseTime)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("expected validation error for negative final amount, got %v", err)
	}
}

func TestAccessibleBy(t *testing.T) {
	c := newCivilCase()
	otherFirm := uuid.MustParse("44444444-4444-4444-4444-444444444444")

	if !c.AccessibleBy(testUser, nil) {
		t.Error("assigned lawyer must have access")
	}
	if !c.AccessibleBy(otherUser, &testFirm) {
		t.Error("firm colleague must have access")
	}
	if c.AccessibleBy(otherUser, &otherFirm) {
		t.Error("different firm and not assigned must be denied")
	}
	if c.AccessibleBy(otherUser, nil) {
		t.Error("unrelated solo lawyer must be denied")
	}
}

func TestNoteLifecycle(t *testing.T) {
	vocab := DefaultVocabulary()
	c := newCivilCase()
	now := baseTime.Add(time.Hour)

	first, err := c.AddNote(vocab, "  client called  ", false, "", testUser, now)
	if err != nil {
		t.Fatalf("AddNote failed: %v", err)
	}
	if first.Text != "client called" {
		t.Errorf("note text not trimmed: %q", first.Text)
	}

	second, err := c.AddNote(vocab, "strategy draft", true, "filing", testUser, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("AddNote with stage failed: %v", err)
	}

	// Newest-first ordering.
	if c.Notes[0].ID != second.ID || c.Notes[1].ID != first.ID {
		t.Error("notes must be stored newest-first")
	}

	if _, err := c.AddNote(vocab, "   ", false, "", testUser, now); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("blank note should be rejected, got %v", err)
	}
	if _, err := c.AddNote(vocab, "x", false, "mediation", testUser, now); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("note with foreign stage id should be rejected, got %v", err)
	}
}

func TestNoteCreatorOnlyEditAndDelete(t *testing.T) {
	vocab := DefaultVocabulary()
	c := newCivilCase()
	note, err := c.AddNote(vocab, "original", false, "", testUser, baseTime)
	if err != nil {
		t.Fatalf("AddNote failed: %v", err)
	}

	newText := "edited"
	if _, err := c.UpdateNote(note.ID, otherUser, &newText, nil, baseTime); !apperr.Is(err, apperr.KindForbidden) {
		t.Errorf("non-creator edit should be forbidden, got %v", err)
	}
	if err := c.DeleteNote(note.ID, otherUser, baseTime); !apperr.Is(err, apperr.KindForbidden) {
		t.Errorf("non-creator delete should be forbidden, got %v", err)
	}

	updated, err := c.UpdateNote(note.ID, testUser, &newText, nil, baseTime)
	if err != nil {
		t.Fatalf("creator edit failed: %v", err)
	}
	if updated.Text != "edited" {
		t.Errorf("note text = %q, want edited", updated.Text)
	}

	if err := c.DeleteNote(note.ID, testUser, baseTime); err != nil {
		t.Fatalf("creator delete failed: %v", err)
	}
	if len(c.Notes) != 0 {
		t.Error("note not removed")
	}

	if err := c.DeleteNote(note.ID, testUser, baseTime); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("deleting a missing note should be not found, got %v", err)
	}
}

func TestVisibleNotesFiltersOthersPrivateNotes(t *testing.T) {
	vocab := DefaultVocabulary()
	c := newCivilCase()

	if _, err := c.AddNote(vocab, "public note", false, "", testUser, baseTime); err != nil {
		t.Fatal(err)
	}
	if _, err := c.AddNote(vocab, "my secret", true, "", testUser, baseTime); err != nil {
		t.Fatal(err)
	}

	mine := c.VisibleNotes(testUser)
	if len(mine) != 2 {
		t.Errorf("creator should see both notes, got %d", len(mine))
	}

	theirs := c.VisibleNotes(otherUser)
	if len(theirs) != 1 || theirs[0].Text != "public note" {
		t.Errorf("other user should see only the public note, got %+v", theirs)
	}
}

func TestDaysInCurrentStage(t *testing.T) {
	c := newCivilCase()

	tests := []struct {
		elapsed time.Duration
		want    int
	}{
		{0, 0},
		{23 * time.Hour, 0},
		{24 * time.Hour, 1},
		{10*24*time.Hour + time.Hour, 10},
	}
	for _, tc := range tests {
		if got := c.DaysInCurrentStage(baseTime.Add(tc.elapsed)); got != tc.want {
			t.Errorf("DaysInCurrentStage after %v = %d, want %d", tc.elapsed, got, tc.want)
		}
	}
}

func TestPartyNameFallbackChain(t *testing.T) {
	tests := []struct {
		name     string
		c        Case
		want     string
	}{
		{
			name: "explicit column wins",
			c: Case{
				PlaintiffName: "Explicit Name",
				LegacyDetails: map[string]interface{}{"plaintiffName": "Flat Legacy"},
			},
			want: "Explicit Name",
		},
		{
			name: "flat legacy field",
			c:    Case{LegacyDetails: map[string]interface{}{"plaintiffName": "Flat Legacy"}},
			want: "Flat Legacy",
		},
		{
			name: "nested legacy shape",
			c: Case{LegacyDetails: map[string]interface{}{
				"parties": map[string]interface{}{
					"plaintiff": map[string]interface{}{"name": "Nested Legacy"},
				},
			}},
			want: "Nested Legacy",
		},
		{
			name: "no source yields empty string",
			c:    Case{LegacyDetails: map[string]interface{}{"parties": "corrupted"}},
			want: "",
		},
		{
			name: "nil details yields empty string",
			c:    Case{},
			want: "",
		},
	}

	for _, tc := range tests {
		if got := tc.c.ResolvePlaintiffName(); got != tc.want {
			t.Errorf("%s: ResolvePlaintiffName() = %q, want %q", tc.name, got, tc.want)
		}
	}
}
