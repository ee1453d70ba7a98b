package pack

import "fmt"

// DraftMode tells whether a draft composes a new question or edits one.
type DraftMode string

const (
	DraftNew  DraftMode = "new"
	DraftEdit DraftMode = "edit"
)

// Draft is the uncommitted state of the add-question form or the edit
// modal. At most one option is correct at any time; a fresh draft starts
// with exactly one.
type Draft struct {
	Mode       DraftMode `json:"mode"`
	QuestionID string    `json:"question_id,omitempty"`
	Text       string    `json:"text"`
	Options    []Option  `json:"options"`
}

// NewDraft returns an empty add-question draft: two blank options, the
// first one marked correct.
func NewDraft() *Draft {
	return &Draft{
		Mode: DraftNew,
		Options: []Option{
			{IsCorrect: true},
			{},
		},
	}
}

func editDraft(q Question) *Draft {
	d := &Draft{
		Mode:       DraftEdit,
		QuestionID: q.ID,
		Text:       q.Text,
		Options:    cloneOptions(q.Options),
	}
	for len(d.Options) < MinOptions {
		d.Options = append(d.Options, Option{})
	}
	return d
}

func (d *Draft) clone() *Draft {
	if d == nil {
		return nil
	}
	c := *d
	c.Options = cloneOptions(d.Options)
	return &c
}

// SetText replaces the question text.
func (d *Draft) SetText(text string) {
	d.Text = text
}

// SetOptionText replaces the text of the option at index.
func (d *Draft) SetOptionText(index int, text string) error {
	if err := d.checkIndex(index); err != nil {
		return err
	}
	d.Options[index].Text = text
	return nil
}

// AddOption appends a blank, not-correct option.
func (d *Draft) AddOption() error {
	if len(d.Options) >= MaxOptions {
		return ErrMaxOptionsReached
	}
	d.Options = append(d.Options, Option{})
	return nil
}

// RemoveOption drops the option at index. When the removed option was the
// correct one, the option that is now first becomes correct.
func (d *Draft) RemoveOption(index int) error {
	if len(d.Options) <= MinOptions {
		return ErrMinOptionsReached
	}
	if err := d.checkIndex(index); err != nil {
		return err
	}

	wasCorrect := d.Options[index].IsCorrect
	opts := make([]Option, 0, len(d.Options)-1)
	opts = append(opts, d.Options[:index]...)
	opts = append(opts, d.Options[index+1:]...)
	if wasCorrect {
		opts[0].IsCorrect = true
	}
	d.Options = opts
	return nil
}

// SetCorrectOption marks the option at index correct and every other
// option not correct.
func (d *Draft) SetCorrectOption(index int) error {
	if err := d.checkIndex(index); err != nil {
		return err
	}
	for i := range d.Options {
		d.Options[i].IsCorrect = i == index
	}
	return nil
}

// CorrectCount returns how many options are marked correct.
func (d *Draft) CorrectCount() int {
	n := 0
	for _, o := range d.Options {
		if o.IsCorrect {
			n++
		}
	}
	return n
}

func (d *Draft) checkIndex(index int) error {
	if index < 0 || index >= len(d.Options) {
		return invalidField("index", fmt.Sprintf("option index %d out of range [0, %d)", index, len(d.Options)))
	}
	return nil
}
