package pack

import (
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Session is an editing transaction over one pack. It performs no I/O and
// is not safe for concurrent use; callers serialize access.
//
// Every operation is all-or-nothing: a rejected call returns a *Error and
// leaves the session as it was.
type Session struct {
	pack  Pack
	draft *Draft
	newID func() string
}

// NewSession starts the create flow with an empty pack.
func NewSession() *Session {
	return &Session{
		pack:  Pack{Questions: []Question{}},
		newID: uuid.NewString,
	}
}

// SeedSession starts the edit flow from a persisted record. The record is
// trusted as valid; each question gets a fresh editing id.
func SeedSession(rec Record) *Session {
	s := NewSession()
	s.pack = Pack{
		ID:           rec.ID,
		Name:         rec.Name,
		Description:  rec.Description,
		Time:         rec.Time,
		Difficulty:   rec.Difficulty,
		CategoryID:   rec.CategoryID,
		CategoryName: rec.CategoryName,
		Version:      rec.Version,
		Questions:    make([]Question, 0, len(rec.Questions)),
	}
	for _, q := range rec.Questions {
		s.pack.Questions = append(s.pack.Questions, Question{
			ID:      s.newID(),
			Text:    q.Text,
			Options: cloneOptions(q.Options),
		})
	}
	return s
}

// Snapshot is a read-only copy of the session state.
type Snapshot struct {
	Pack  Pack   `json:"pack"`
	Draft *Draft `json:"draft,omitempty"`
}

// Snapshot returns a deep copy of the current pack and active draft.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Pack:  s.pack.Clone(),
		Draft: s.draft.clone(),
	}
}

// Questions returns a copy of the ordered questions.
func (s *Session) Questions() []Question {
	return cloneQuestions(s.pack.Questions)
}

func (s *Session) SetName(name string)               { s.pack.Name = name }
func (s *Session) SetDescription(description string) { s.pack.Description = description }
func (s *Session) SetTime(minutes int)               { s.pack.Time = minutes }
func (s *Session) SetDifficulty(d Difficulty)        { s.pack.Difficulty = d }

// SetCategory sets the category reference and its denormalized name.
func (s *Session) SetCategory(id, name string) {
	s.pack.CategoryID = id
	s.pack.CategoryName = name
}

// SetField sets a scalar field from its string form. Empty values are
// accepted; only unparseable ones are rejected.
func (s *Session) SetField(field Field, value string) error {
	switch field {
	case FieldName:
		s.pack.Name = value
	case FieldDescription:
		s.pack.Description = value
	case FieldCategoryID:
		s.pack.CategoryID = value
	case FieldCategoryName:
		s.pack.CategoryName = value
	case FieldTime:
		if strings.TrimSpace(value) == "" {
			s.pack.Time = 0
			return nil
		}
		minutes, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return invalidField(string(FieldTime), "time must be a whole number of minutes")
		}
		if err := checkTime(minutes); err != nil {
			return err
		}
		s.pack.Time = minutes
	case FieldDifficulty:
		d := Difficulty(strings.TrimSpace(value))
		if d != "" && !d.Valid() {
			return invalidField(string(FieldDifficulty), "difficulty must be easy, medium or hard")
		}
		s.pack.Difficulty = d
	default:
		return invalidField(string(field), "unknown field "+strconv.Quote(string(field)))
	}
	return nil
}

// AddQuestion validates text and options and appends a new question.
func (s *Session) AddQuestion(text string, options []Option) (Question, error) {
	q, err := buildQuestion(text, options)
	if err != nil {
		return Question{}, err
	}
	q.ID = s.newID()
	s.pack.Questions = append(s.pack.Questions, q)
	return cloneQuestion(q), nil
}

// EditQuestion replaces a question in place, keeping its id and position.
func (s *Session) EditQuestion(questionID, text string, options []Option) (Question, error) {
	idx := s.indexOf(questionID)
	if idx < 0 {
		return Question{}, ErrNotFound
	}
	q, err := buildQuestion(text, options)
	if err != nil {
		return Question{}, err
	}
	q.ID = questionID
	s.pack.Questions[idx] = q
	return cloneQuestion(q), nil
}

// DeleteQuestion removes a question; the rest keep their relative order.
func (s *Session) DeleteQuestion(questionID string) error {
	idx := s.indexOf(questionID)
	if idx < 0 {
		return ErrNotFound
	}
	qs := make([]Question, 0, len(s.pack.Questions)-1)
	qs = append(qs, s.pack.Questions[:idx]...)
	qs = append(qs, s.pack.Questions[idx+1:]...)
	s.pack.Questions = qs
	if s.draft != nil && s.draft.Mode == DraftEdit && s.draft.QuestionID == questionID {
		s.draft = nil
	}
	return nil
}

// ReorderQuestions moves fromID to the slot currently held by toID; the
// questions in between shift by one. It reports whether anything moved.
func (s *Session) ReorderQuestions(fromID, toID string) bool {
	if fromID == toID {
		return false
	}
	from, to := s.indexOf(fromID), s.indexOf(toID)
	if from < 0 || to < 0 {
		return false
	}

	moved := s.pack.Questions[from]
	qs := make([]Question, 0, len(s.pack.Questions))
	qs = append(qs, s.pack.Questions[:from]...)
	qs = append(qs, s.pack.Questions[from+1:]...)
	qs = append(qs[:to], append([]Question{moved}, qs[to:]...)...)
	s.pack.Questions = qs
	return true
}

// Finalize validates the pack and returns an independent copy in the
// persisted shape. Checks short-circuit in order: name, category,
// questions.
func (s *Session) Finalize() (Record, error) {
	if strings.TrimSpace(s.pack.Name) == "" {
		return Record{}, ErrMissingName
	}
	if s.pack.CategoryID == "" {
		return Record{}, ErrMissingCategory
	}
	if len(s.pack.Questions) == 0 {
		return Record{}, ErrNoQuestions
	}
	if err := checkTime(s.pack.Time); err != nil {
		return Record{}, err
	}

	rec := Record{
		ID:           s.pack.ID,
		Name:         strings.TrimSpace(s.pack.Name),
		Description:  s.pack.Description,
		Time:         s.pack.Time,
		Difficulty:   s.pack.Difficulty,
		CategoryID:   s.pack.CategoryID,
		CategoryName: s.pack.CategoryName,
		Version:      s.pack.Version,
		Questions:    make([]RecordQuestion, 0, len(s.pack.Questions)),
	}
	for _, q := range s.pack.Questions {
		opts := make([]Option, 0, len(q.Options))
		for _, o := range q.Options {
			if strings.TrimSpace(o.Text) == "" {
				continue
			}
			opts = append(opts, Option{Text: o.Text, IsCorrect: o.IsCorrect})
		}
		rec.Questions = append(rec.Questions, RecordQuestion{Text: q.Text, Options: opts})
	}
	return rec, nil
}

// BeginDraft opens the add-question form, replacing any open draft.
func (s *Session) BeginDraft() *Draft {
	s.draft = NewDraft()
	return s.draft.clone()
}

// BeginEdit opens the edit modal for an existing question.
func (s *Session) BeginEdit(questionID string) (*Draft, error) {
	idx := s.indexOf(questionID)
	if idx < 0 {
		return nil, ErrNotFound
	}
	s.draft = editDraft(s.pack.Questions[idx])
	return s.draft.clone(), nil
}

// ActiveDraft returns a copy of the open draft, or nil.
func (s *Session) ActiveDraft() *Draft {
	return s.draft.clone()
}

func (s *Session) withDraft(fn func(d *Draft) error) error {
	if s.draft == nil {
		return ErrNoActiveDraft
	}
	return fn(s.draft)
}

func (s *Session) SetDraftText(text string) error {
	return s.withDraft(func(d *Draft) error {
		d.SetText(text)
		return nil
	})
}

func (s *Session) SetOptionText(index int, text string) error {
	return s.withDraft(func(d *Draft) error { return d.SetOptionText(index, text) })
}

func (s *Session) AddOption() error {
	return s.withDraft(func(d *Draft) error { return d.AddOption() })
}

func (s *Session) RemoveOption(index int) error {
	return s.withDraft(func(d *Draft) error { return d.RemoveOption(index) })
}

func (s *Session) SetCorrectOption(index int) error {
	return s.withDraft(func(d *Draft) error { return d.SetCorrectOption(index) })
}

// CommitDraft turns the open draft into an added or edited question. A
// rejected draft stays open so it can be corrected.
func (s *Session) CommitDraft() (Question, error) {
	if s.draft == nil {
		return Question{}, ErrNoActiveDraft
	}
	var (
		q   Question
		err error
	)
	switch s.draft.Mode {
	case DraftEdit:
		q, err = s.EditQuestion(s.draft.QuestionID, s.draft.Text, s.draft.Options)
	default:
		q, err = s.AddQuestion(s.draft.Text, s.draft.Options)
	}
	if err != nil {
		return Question{}, err
	}
	s.draft = nil
	return q, nil
}

// DiscardDraft closes the open draft without side effects.
func (s *Session) DiscardDraft() {
	s.draft = nil
}

func (s *Session) indexOf(questionID string) int {
	for i, q := range s.pack.Questions {
		if q.ID == questionID {
			return i
		}
	}
	return -1
}

// checkTime keeps the duration storable in a 32-bit integer column.
func checkTime(minutes int) error {
	if minutes < 0 || minutes > math.MaxInt32 {
		return invalidField(string(FieldTime), "time must be between 0 and 2147483647 minutes")
	}
	return nil
}

func buildQuestion(text string, options []Option) (Question, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Question{}, ErrMissingQuestionText
	}

	opts := make([]Option, 0, len(options))
	correct := 0
	for _, o := range options {
		t := strings.TrimSpace(o.Text)
		if t == "" {
			continue
		}
		if o.IsCorrect {
			correct++
		}
		opts = append(opts, Option{Text: t, IsCorrect: o.IsCorrect})
	}

	switch {
	case len(opts) < MinOptions:
		return Question{}, ErrTooFewOptions
	case len(opts) > MaxOptions:
		return Question{}, ErrMaxOptionsReached
	case correct == 0:
		return Question{}, ErrNoCorrectOption
	case correct > 1:
		return Question{}, ErrMultipleCorrectOptions
	}
	return Question{Text: text, Options: opts}, nil
}
