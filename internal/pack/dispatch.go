package pack

// Op names a session operation reachable through Apply.
type Op string

const (
	OpSetField         Op = "setField"
	OpAddQuestion      Op = "addQuestion"
	OpEditQuestion     Op = "editQuestion"
	OpDeleteQuestion   Op = "deleteQuestion"
	OpReorderQuestions Op = "reorderQuestions"
	OpBeginDraft       Op = "beginDraft"
	OpBeginEdit        Op = "beginEdit"
	OpSetDraftText     Op = "setDraftText"
	OpSetOptionText    Op = "setOptionText"
	OpAddOption        Op = "addOption"
	OpRemoveOption     Op = "removeOption"
	OpSetCorrectOption Op = "setCorrectOption"
	OpCommitDraft      Op = "commitDraft"
	OpDiscardDraft     Op = "discardDraft"
)

// Command is the single dispatch payload accepted by Apply. Only the
// arguments relevant to Op are read.
type Command struct {
	Op         Op       `json:"op"`
	Field      Field    `json:"field,omitempty"`
	Value      string   `json:"value,omitempty"`
	Name       string   `json:"name,omitempty"` // category name paired with field=category_id
	QuestionID string   `json:"question_id,omitempty"`
	FromID     string   `json:"from_id,omitempty"`
	ToID       string   `json:"to_id,omitempty"`
	Text       string   `json:"text,omitempty"`
	Options    []Option `json:"options,omitempty"`
	Index      int      `json:"index,omitempty"`
}

// Apply runs cmd and returns the resulting snapshot.
func (s *Session) Apply(cmd Command) (Snapshot, error) {
	var err error
	switch cmd.Op {
	case OpSetField:
		if cmd.Field == FieldCategoryID && cmd.Name != "" {
			s.SetCategory(cmd.Value, cmd.Name)
			break
		}
		err = s.SetField(cmd.Field, cmd.Value)
	case OpAddQuestion:
		_, err = s.AddQuestion(cmd.Text, cmd.Options)
	case OpEditQuestion:
		_, err = s.EditQuestion(cmd.QuestionID, cmd.Text, cmd.Options)
	case OpDeleteQuestion:
		err = s.DeleteQuestion(cmd.QuestionID)
	case OpReorderQuestions:
		s.ReorderQuestions(cmd.FromID, cmd.ToID)
	case OpBeginDraft:
		s.BeginDraft()
	case OpBeginEdit:
		_, err = s.BeginEdit(cmd.QuestionID)
	case OpSetDraftText:
		err = s.SetDraftText(cmd.Text)
	case OpSetOptionText:
		err = s.SetOptionText(cmd.Index, cmd.Text)
	case OpAddOption:
		err = s.AddOption()
	case OpRemoveOption:
		err = s.RemoveOption(cmd.Index)
	case OpSetCorrectOption:
		err = s.SetCorrectOption(cmd.Index)
	case OpCommitDraft:
		_, err = s.CommitDraft()
	case OpDiscardDraft:
		s.DiscardDraft()
	default:
		err = ErrUnknownOperation
	}
	if err != nil {
		return Snapshot{}, err
	}
	return s.Snapshot(), nil
}
