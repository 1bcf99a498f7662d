package domain

import (
	"strings"
	"time"

	"github.com/mischa23v/traf3li-backend-sub004/platform/apperr"

	"github.com/google/uuid"
)

// Status is the case lifecycle status. Closed and completed are terminal:
// no pipeline mutation is permitted once a case reaches either.
type Status string

const (
	StatusOpen      Status = "open"
	StatusOnHold    Status = "on_hold"
	StatusClosed    Status = "closed"
	StatusCompleted Status = "completed"
)

// Outcome is the result of an ended case.
type Outcome string

const (
	OutcomeOngoing Outcome = "ongoing"
	OutcomeWon     Outcome = "won"
	OutcomeLost    Outcome = "lost"
	OutcomeSettled Outcome = "settled"
)

// ValidEndOutcome reports whether the outcome may be used to end a case.
func ValidEndOutcome(o Outcome) bool {
	return o == OutcomeWon || o == OutcomeLost || o == OutcomeSettled
}

// StageHistoryEntry records one stage occupancy interval. ExitedAt is nil
// while the stage is the case's current stage; at most one entry is open
// at any time.
type StageHistoryEntry struct {
	Stage     string     `json:"stage"`
	EnteredAt time.Time  `json:"enteredAt"`
	ExitedAt  *time.Time `json:"exitedAt"`
	Notes     string     `json:"notes,omitempty"`
	ChangedBy uuid.UUID  `json:"changedBy"`
}

// Note is a free-text annotation on a case. Private notes are visible only
// to their creator; only the creator may edit or delete a note.
type Note struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	Date      time.Time `json:"date"`
	CreatedBy uuid.UUID `json:"createdBy"`
	IsPrivate bool      `json:"isPrivate"`
	StageID   string    `json:"stageId,omitempty"`
}

// EndDetails is populated once when a case is ended.
type EndDetails struct {
	EndDate     time.Time `json:"endDate"`
	EndReason   string    `json:"endReason,omitempty"`
	FinalAmount *float64  `json:"finalAmount,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	EndedBy     uuid.UUID `json:"endedBy"`
}

// Case is the pipeline aggregate. It is created elsewhere (case intake is
// a separate bounded context); this package only mutates its stage,
// outcome, and note fields through the methods below.
//
// Ownership is exactly one of: a firm (FirmID set) or a solo lawyer
// (FirmID nil). LawyerID is the assigned lawyer in both models.
type Case struct {
	ID       uuid.UUID
	FirmID   *uuid.UUID
	LawyerID uuid.UUID

	Title    string
	Category Category
	Priority string

	Status  Status
	Outcome Outcome

	CurrentStage   string
	StageEnteredAt time.Time
	StageHistory   []StageHistoryEntry

	Notes      []Note // newest-first
	EndDetails *EndDetails

	ClaimAmount       *float64
	ExpectedWinAmount *float64
	FinalAmount       *float64

	PlaintiffName string
	DefendantName string
	CourtName     string
	// LegacyDetails holds the pre-migration document shape. Party names
	// missing from the explicit columns are resolved from it (see party.go).
	LegacyDetails map[string]interface{}

	Revision  int64
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// IsTerminal reports whether the case has ended.
func (c *Case) IsTerminal() bool {
	return c.Status == StatusClosed || c.Status == StatusCompleted
}

// AccessibleBy reports whether the caller may operate on this case:
// same firm as the case, or the case's assigned lawyer.
func (c *Case) AccessibleBy(userID uuid.UUID, firmID *uuid.UUID) bool {
	if c.LawyerID == userID {
		return true
	}
	if c.FirmID != nil && firmID != nil && *c.FirmID == *firmID {
		return true
	}
	return false
}

// DaysInCurrentStage returns whole days since the last transition.
func (c *Case) DaysInCurrentStage(now time.Time) int {
	days := int(now.Sub(c.StageEnteredAt).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// OpenHistoryIndex returns the index of the open history entry, or -1.
func (c *Case) OpenHistoryIndex() int {
	for i := len(c.StageHistory) - 1; i >= 0; i-- {
		if c.StageHistory[i].ExitedAt == nil {
			return i
		}
	}
	return -1
}

// seedHistory materializes the implicit initial stage occupancy for cases
// that have never transitioned, so the first move closes a real entry and
// N moves leave N+1 entries.
func (c *Case) seedHistory() {
	if len(c.StageHistory) > 0 {
		return
	}
	c.StageHistory = append(c.StageHistory, StageHistoryEntry{
		Stage:     c.CurrentStage,
		EnteredAt: c.StageEnteredAt,
	})
}

var (
	errEndedCase   = apperr.Conflict("cannot modify ended case").WithArabic("لا يمكن تعديل قضية منتهية")
	errAlreadyEnd  = apperr.Conflict("case already ended").WithArabic("القضية منتهية بالفعل")
	errBadOutcome  = apperr.Validation("outcome must be one of: won, lost, settled").WithArabic("يجب أن تكون النتيجة: ربح أو خسارة أو تسوية")
	errEmptyStage  = apperr.Validation("stage is required").WithArabic("المرحلة مطلوبة")
	errEmptyNote   = apperr.Validation("note text is required").WithArabic("نص الملاحظة مطلوب")
	errNoteMissing = apperr.NotFound("note not found").WithArabic("الملاحظة غير موجودة")
	errNotCreator  = apperr.Forbidden("only the note creator may modify it").WithArabic("فقط منشئ الملاحظة يمكنه تعديلها")
)

// InvalidStageDetails is the remediation payload attached to an invalid
// stage error so the caller can self-correct.
type InvalidStageDetails struct {
	Category       Category `json:"category"`
	RequestedStage string   `json:"requestedStage"`
	ValidStages    []string `json:"validStages"`
}

func invalidStageError(category Category, stage string, vocab Vocabulary) *apperr.Error {
	return apperr.Validation("invalid stage for case category").
		WithArabic("مرحلة غير صالحة لتصنيف القضية").
		WithDetails(InvalidStageDetails{
			Category:       category,
			RequestedStage: stage,
			ValidStages:    vocab.StagesFor(category),
		})
}

// MoveToStage transitions the case to a new stage: the open history entry
// is closed at now, a new open entry is appended, and the current-stage
// fields are updated. The caller persists the result.
func (c *Case) MoveToStage(vocab Vocabulary, stage, note string, userID uuid.UUID, now time.Time) error {
	if c.IsTerminal() {
		return errEndedCase
	}

	stage = strings.TrimSpace(stage)
	if stage == "" {
		return errEmptyStage
	}
	if !vocab.Contains(c.Category, stage) {
		return invalidStageError(c.Category, stage, vocab)
	}

	c.seedHistory()
	if i := c.OpenHistoryIndex(); i >= 0 {
		exited := now
		c.StageHistory[i].ExitedAt = &exited
	}

	c.StageHistory = append(c.StageHistory, StageHistoryEntry{
		Stage:     stage,
		EnteredAt: now,
		Notes:     strings.TrimSpace(note),
		ChangedBy: userID,
	})
	c.CurrentStage = stage
	c.StageEnteredAt = now
	c.UpdatedAt = now

	return nil
}

// EndParams carries the optional fields of an end-case command.
type EndParams struct {
	Outcome     Outcome
	EndReason   string
	FinalAmount *float64
	Notes       string
	EndDate     *time.Time
}

// End closes the case with the given outcome. The case's final stage is
// frozen at whatever stage it was in; the open history entry (if any) is
// closed with the end timestamp. Ending an already-ended case is rejected.
func (c *Case) End(params EndParams, userID uuid.UUID, now time.Time) error {
	if c.IsTerminal() {
		return errAlreadyEnd
	}
	if !ValidEndOutcome(params.Outcome) {
		return errBadOutcome
	}
	if params.FinalAmount != nil && *params.FinalAmount < 0 {
		return apperr.Validation("final amount must be a non-negative number").
			WithArabic("يجب أن يكون المبلغ النهائي رقماً غير سالب")
	}

	endDate := now
	if params.EndDate != nil {
		endDate = *params.EndDate
	}

	c.seedHistory()
	if i := c.OpenHistoryIndex(); i >= 0 {
		exited := endDate
		c.StageHistory[i].ExitedAt = &exited
	}

	c.Status = StatusClosed
	c.Outcome = params.Outcome
	c.FinalAmount = params.FinalAmount
	c.EndDetails = &EndDetails{
		EndDate:     endDate,
		EndReason:   strings.TrimSpace(params.EndReason),
		FinalAmount: params.FinalAmount,
		Notes:       strings.TrimSpace(params.Notes),
		EndedBy:     userID,
	}
	c.UpdatedAt = now

	return nil
}

// AddNote prepends a note (notes are stored newest-first). Text is trimmed
// before storage; empty-after-trim is rejected. A supplied stage id must
// belong to the case category's vocabulary.
func (c *Case) AddNote(vocab Vocabulary, text string, isPrivate bool, stageID string, userID uuid.UUID, now time.Time) (Note, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Note{}, errEmptyNote
	}
	stageID = strings.TrimSpace(stageID)
	if stageID != "" && !vocab.Contains(c.Category, stageID) {
		return Note{}, invalidStageError(c.Category, stageID, vocab)
	}

	note := Note{
		ID:        uuid.New(),
		Text:      text,
		Date:      now,
		CreatedBy: userID,
		IsPrivate: isPrivate,
		StageID:   stageID,
	}
	c.Notes = append([]Note{note}, c.Notes...)
	c.UpdatedAt = now

	return note, nil
}

// UpdateNote edits a note's text and/or privacy flag. Only the creator may
// edit; nil fields are left unchanged.
func (c *Case) UpdateNote(noteID, userID uuid.UUID, text *string, isPrivate *bool, now time.Time) (Note, error) {
	for i := range c.Notes {
		if c.Notes[i].ID != noteID {
			continue
		}
		if c.Notes[i].CreatedBy != userID {
			return Note{}, errNotCreator
		}
		if text != nil {
			trimmed := strings.TrimSpace(*text)
			if trimmed == "" {
				return Note{}, errEmptyNote
			}
			c.Notes[i].Text = trimmed
		}
		if isPrivate != nil {
			c.Notes[i].IsPrivate = *isPrivate
		}
		c.UpdatedAt = now
		return c.Notes[i], nil
	}
	return Note{}, errNoteMissing
}

// DeleteNote removes a note. Only the creator may delete.
func (c *Case) DeleteNote(noteID, userID uuid.UUID, now time.Time) error {
	for i := range c.Notes {
		if c.Notes[i].ID != noteID {
			continue
		}
		if c.Notes[i].CreatedBy != userID {
			return errNotCreator
		}
		c.Notes = append(c.Notes[:i], c.Notes[i+1:]...)
		c.UpdatedAt = now
		return nil
	}
	return errNoteMissing
}

// VisibleNotes returns the case's notes with other users' private notes
// filtered out. Order is preserved (newest-first).
func (c *Case) VisibleNotes(userID uuid.UUID) []Note {
	visible := make([]Note, 0, len(c.Notes))
	for _, note := range c.Notes {
		if note.IsPrivate && note.CreatedBy != userID {
			continue
		}
		visible = append(visible, note)
	}
	return visible
}

// LatestNoteText returns the text of the most recent non-private note,
// used for board summaries.
func (c *Case) LatestNoteText() string {
	for _, note := range c.Notes {
		if !note.IsPrivate {
			return note.Text
		}
	}
	return ""
}
