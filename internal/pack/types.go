package pack

// Difficulty of a pack.
type Difficulty string

// Difficulty constants for readability.
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Option bounds enforced while a question is being drafted.
const (
	MinOptions = 2
	MaxOptions = 6
)

// Option is one selectable answer.
type Option struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// Question is a prompt plus its ordered options. ID is assigned when the
// question enters a session and stays stable across reorders.
type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []Option `json:"options"`
}

// Pack is the live, editable state of a question pack.
type Pack struct {
	ID           string     `json:"id,omitempty"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Time         int        `json:"time"`
	Difficulty   Difficulty `json:"difficulty"`
	CategoryID   string     `json:"category_id"`
	CategoryName string     `json:"category_name"`
	Questions    []Question `json:"questions"`
	Version      int64      `json:"version"`
}

// RecordQuestion is the persisted shape of a question (no editing ids).
type RecordQuestion struct {
	Text    string   `json:"text"`
	Options []Option `json:"options"`
}

// Record is a finalized pack ready for persistence, or a pack loaded back
// from storage to seed an edit session.
type Record struct {
	ID           string           `json:"id,omitempty"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	Time         int              `json:"time"`
	Difficulty   Difficulty       `json:"difficulty"`
	CategoryID   string           `json:"category_id"`
	CategoryName string           `json:"category_name"`
	Questions    []RecordQuestion `json:"questions"`
	Version      int64            `json:"version"`
}

// Category is the external entity a pack belongs to.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Field names accepted by Session.SetField.
type Field string

const (
	FieldName         Field = "name"
	FieldDescription  Field = "description"
	FieldTime         Field = "time"
	FieldDifficulty   Field = "difficulty"
	FieldCategoryID   Field = "category_id"
	FieldCategoryName Field = "category_name"
)
