package question

import (
	"strings"
	"time"
)

// Label identifies an answer choice.
type Label string

const (
	LabelA Label = "a"
	LabelB Label = "b"
	LabelC Label = "c"
	LabelD Label = "d"
	LabelE Label = "e"
)

// Labels lists every answer label in display order.
var Labels = []Label{LabelA, LabelB, LabelC, LabelD, LabelE}

// ParseLabel lower-cases s and reports whether it names one of Labels.
func ParseLabel(s string) (Label, bool) {
	l := Label(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Labels {
		if l == known {
			return l, true
		}
	}
	return "", false
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "facil"
	DifficultyMedium Difficulty = "medio"
	DifficultyHard   Difficulty = "dificil"
)

var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

func (d Difficulty) IsValid() bool {
	for _, known := range Difficulties {
		if d == known {
			return true
		}
	}
	return false
}

// Source records how a Question entered the bank.
type Source string

const (
	SourceManual Source = "manual"
	SourceImport Source = "import"
)

// Choices holds the text of the five answer choices.
type Choices struct {
	A string `json:"a"`
	B string `json:"b"`
	C string `json:"c"`
	D string `json:"d"`
	E string `json:"e"`
}

func (c Choices) Get(l Label) string {
	switch l {
	case LabelA:
		return c.A
	case LabelB:
		return c.B
	case LabelC:
		return c.C
	case LabelD:
		return c.D
	case LabelE:
		return c.E
	}
	return ""
}

func (c *Choices) Set(l Label, text string) {
	switch l {
	case LabelA:
		c.A = text
	case LabelB:
		c.B = text
	case LabelC:
		c.C = text
	case LabelD:
		c.D = text
	case LabelE:
		c.E = text
	}
}

// Complete reports whether all five choices carry text.
func (c Choices) Complete() bool {
	for _, l := range Labels {
		if strings.TrimSpace(c.Get(l)) == "" {
			return false
		}
	}
	return true
}

// Extracted is a question recognized in a pasted document. It is never built partially.
type Extracted struct {
	Prompt       string  `json:"prompt" yaml:"prompt" validate:"required,notblank"`
	Choices      Choices `json:"choices" yaml:"choices"`
	CorrectLabel Label   `json:"correct_label" yaml:"correct_label" validate:"required,label"`
}

// Question is a stored question of the bank.
type Question struct {
	ID           string     `json:"id"`
	SubjectID    string     `json:"subject_id"`
	Prompt       string     `json:"prompt"`
	Choices      Choices    `json:"choices"`
	CorrectLabel Label      `json:"correct_label"`
	Difficulty   Difficulty `json:"difficulty"`
	Source       Source     `json:"source"`
	ImportedBy   string     `json:"imported_by,omitempty"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"` // UTC
	UpdatedAt    time.Time  `json:"updated_at"` // UTC
}

// AnalyzeRequest is the body of an extraction preview.
type AnalyzeRequest struct {
	HTMLContent string `json:"html_content" validate:"required,notblank"`
	SubjectID   string `json:"subject_id" validate:"required,notblank"`
}

type AnalyzeResult struct {
	Questions []Extracted `json:"questions" yaml:"questions"`
	Count     int         `json:"count" yaml:"count"`
}

// ImportRequest carries reviewed extraction results to be stored.
type ImportRequest struct {
	SubjectID  string      `json:"subject_id" validate:"required,notblank"`
	Difficulty Difficulty  `json:"difficulty" validate:"omitempty,difficulty"`
	Questions  []Extracted `json:"questions" validate:"required,min=1,dive"`
}

type ImportResult struct {
	Questions      []Question `json:"questions"`
	Count          int        `json:"count"`
	Skipped        int        `json:"skipped"`
	SkippedPrompts []string   `json:"skipped_prompts"`
}

// NewQuestion contains information needed to create a single Question by hand.
type NewQuestion struct {
	SubjectID    string     `json:"subject_id" validate:"required,notblank"`
	Prompt       string     `json:"prompt" validate:"required,notblank"`
	Choices      Choices    `json:"choices"`
	CorrectLabel Label      `json:"correct_label" validate:"required,label"`
	Difficulty   Difficulty `json:"difficulty" validate:"omitempty,difficulty"`
}

type QueryFilter struct {
	SubjectID  string `query:"subject_id"`
	Difficulty string `query:"difficulty"`
	Source     string `query:"source"`
	Search     string `query:"search"`
	ActiveOnly bool   `query:"active"`
}

func (qf *QueryFilter) Clean() {
	qf.SubjectID = strings.TrimSpace(qf.SubjectID)
	qf.Difficulty = strings.ToLower(strings.TrimSpace(qf.Difficulty))
	qf.Source = strings.ToLower(strings.TrimSpace(qf.Source))
	qf.Search = strings.TrimSpace(qf.Search)
}
