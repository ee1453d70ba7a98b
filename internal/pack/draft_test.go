package pack

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemovingCorrectOptionPromotesFirst(t *testing.T) {
	d := &Draft{Mode: DraftNew, Options: []Option{
		{Text: "A", IsCorrect: false},
		{Text: "B", IsCorrect: true},
		{Text: "C", IsCorrect: false},
	}}

	require.NoError(t, d.RemoveOption(1))
	assert.Equal(t, []Option{{Text: "A", IsCorrect: true}, {Text: "C", IsCorrect: false}}, d.Options)
}

func TestRemovingOtherOptionKeepsCorrect(t *testing.T) {
	d := &Draft{Mode: DraftNew, Options: []Option{
		{Text: "A"},
		{Text: "B", IsCorrect: true},
		{Text: "C"},
	}}

	require.NoError(t, d.RemoveOption(0))
	assert.Equal(t, []Option{{Text: "B", IsCorrect: true}, {Text: "C"}}, d.Options)
}

func TestOptionBounds(t *testing.T) {
	d := NewDraft()
	for len(d.Options) < MaxOptions {
		require.NoError(t, d.AddOption())
	}
	assert.ErrorIs(t, d.AddOption(), ErrMaxOptionsReached)
	assert.Len(t, d.Options, MaxOptions)
	assert.False(t, d.Options[MaxOptions-1].IsCorrect)

	for len(d.Options) > MinOptions {
		require.NoError(t, d.RemoveOption(len(d.Options)-1))
	}
	assert.ErrorIs(t, d.RemoveOption(0), ErrMinOptionsReached)
	assert.Len(t, d.Options, MinOptions)
}

func TestOptionIndexOutOfRange(t *testing.T) {
	d := NewDraft()
	require.NoError(t, d.AddOption())

	assert.ErrorIs(t, d.RemoveOption(5), ErrInvalidField)
	assert.ErrorIs(t, d.RemoveOption(-1), ErrInvalidField)
	assert.ErrorIs(t, d.SetCorrectOption(3), ErrInvalidField)
	assert.ErrorIs(t, d.SetOptionText(9, "x"), ErrInvalidField)
	assert.Len(t, d.Options, 3)
}

func TestSetCorrectOptionIsExclusive(t *testing.T) {
	d := NewDraft()
	require.NoError(t, d.AddOption())
	require.NoError(t, d.AddOption())

	for i := range d.Options {
		require.NoError(t, d.SetCorrectOption(i))
		assert.Equal(t, 1, d.CorrectCount())
		assert.True(t, d.Options[i].IsCorrect)
	}
}

// Random add/remove/select sequences never leave the option count outside
// the bounds nor a draft without exactly one correct option.
func TestDraftInvariantsUnderRandomOps(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 200; run++ {
		d := NewDraft()
		for step := 0; step < 50; step++ {
			before := len(d.Options)
			switch rng.Intn(3) {
			case 0:
				err := d.AddOption()
				if before == MaxOptions {
					assert.ErrorIs(t, err, ErrMaxOptionsReached)
					assert.Len(t, d.Options, before)
				}
			case 1:
				err := d.RemoveOption(rng.Intn(before))
				if before == MinOptions {
					assert.ErrorIs(t, err, ErrMinOptionsReached)
					assert.Len(t, d.Options, before)
				}
			case 2:
				require.NoError(t, d.SetCorrectOption(rng.Intn(before)))
			}

			require.GreaterOrEqual(t, len(d.Options), MinOptions)
			require.LessOrEqual(t, len(d.Options), MaxOptions)
			require.Equal(t, 1, d.CorrectCount(), "run %d step %d", run, step)
		}
	}
}

func TestCommitNewDraft(t *testing.T) {
	s := newTestSession()
	s.BeginDraft()
	require.NoError(t, s.SetDraftText("Largest planet?"))
	require.NoError(t, s.SetOptionText(0, "Mars"))
	require.NoError(t, s.SetOptionText(1, "Jupiter"))
	require.NoError(t, s.AddOption())
	require.NoError(t, s.SetCorrectOption(1))

	q, err := s.CommitDraft()
	require.NoError(t, err)
	assert.Equal(t, []Option{{Text: "Mars"}, {Text: "Jupiter", IsCorrect: true}}, q.Options)
	assert.Nil(t, s.ActiveDraft())
	assert.Len(t, s.Questions(), 1)
}

func TestRejectedCommitKeepsDraft(t *testing.T) {
	s := newTestSession()
	s.BeginDraft()
	require.NoError(t, s.SetDraftText("Only one answer"))
	require.NoError(t, s.SetOptionText(0, "yes"))

	_, err := s.CommitDraft()
	assert.ErrorIs(t, err, ErrTooFewOptions)
	require.NotNil(t, s.ActiveDraft())
	assert.Equal(t, "Only one answer", s.ActiveDraft().Text)
	assert.Empty(t, s.Questions())
}

func TestCommitEditDraft(t *testing.T) {
	s := newTestSession()
	ids := seedQuestions(t, s, "one", "two")

	d, err := s.BeginEdit(ids[0])
	require.NoError(t, err)
	assert.Equal(t, DraftEdit, d.Mode)
	assert.Equal(t, "one", d.Text)

	require.NoError(t, s.SetDraftText("ONE"))
	require.NoError(t, s.SetCorrectOption(1))

	q, err := s.CommitDraft()
	require.NoError(t, err)
	assert.Equal(t, ids[0], q.ID)
	assert.Equal(t, []string{"ONE", "two"}, questionTexts(s))
	assert.True(t, s.Questions()[0].Options[1].IsCorrect)
}

func TestEditDraftRemoveAtMinimum(t *testing.T) {
	s := newTestSession()
	ids := seedQuestions(t, s, "one")

	_, err := s.BeginEdit(ids[0])
	require.NoError(t, err)
	assert.ErrorIs(t, s.RemoveOption(0), ErrMinOptionsReached)

	require.NoError(t, s.AddOption())
	require.NoError(t, s.SetOptionText(2, "C"))
	require.NoError(t, s.RemoveOption(0))
	require.NoError(t, s.SetDraftText("ONE"))

	q, err := s.CommitDraft()
	require.NoError(t, err)
	assert.Equal(t, ids[0], q.ID)
	assert.Equal(t, []Option{{Text: "B", IsCorrect: true}, {Text: "C"}}, q.Options)
	assert.Equal(t, "ONE", s.Questions()[0].Text)
}

func TestDraftOpsWithoutDraft(t *testing.T) {
	s := newTestSession()
	assert.ErrorIs(t, s.AddOption(), ErrNoActiveDraft)
	assert.ErrorIs(t, s.RemoveOption(0), ErrNoActiveDraft)
	assert.ErrorIs(t, s.SetCorrectOption(0), ErrNoActiveDraft)
	assert.ErrorIs(t, s.SetDraftText("x"), ErrNoActiveDraft)
	_, err := s.CommitDraft()
	assert.ErrorIs(t, err, ErrNoActiveDraft)

	_, err = s.BeginEdit("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDiscardDraftHasNoSideEffects(t *testing.T) {
	s := newTestSession()
	ids := seedQuestions(t, s, "one")
	before := s.Snapshot()

	_, err := s.BeginEdit(ids[0])
	require.NoError(t, err)
	require.NoError(t, s.SetDraftText("changed"))
	s.DiscardDraft()

	assert.Equal(t, before, s.Snapshot())
}

func TestDeletingEditedQuestionClosesDraft(t *testing.T) {
	s := newTestSession()
	ids := seedQuestions(t, s, "one", "two")

	_, err := s.BeginEdit(ids[1])
	require.NoError(t, err)
	require.NoError(t, s.DeleteQuestion(ids[1]))
	assert.Nil(t, s.ActiveDraft())
}
