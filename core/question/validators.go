package question

import (
	"fmt"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/simulado/core"
)

var (
	difficultyTag  = "difficulty"
	difficultyText = fmt.Sprintf("difficulty must be one of %s, %s or %s", DifficultyEasy, DifficultyMedium, DifficultyHard)

	labelTag  = "label"
	labelText = "label must be one of a, b, c, d or e"

	choicesTag  = "choices"
	choicesText = "all five choices (a to e) are required"

	blobTooLargeText = "content exceeds %d bytes"
)

// InitValidators registers the question validators and their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(difficultyTag, difficultyValidation)
	core.RegisterCustomTranslation(validate, translator, difficultyTag, difficultyText)

	_ = validate.RegisterValidation(labelTag, labelValidation)
	core.RegisterCustomTranslation(validate, translator, labelTag, labelText)

	validate.RegisterStructValidation(questionStructValidation, Extracted{}, NewQuestion{})
	core.RegisterCustomTranslation(validate, translator, choicesTag, choicesText)
}

func (ar *AnalyzeRequest) Validate(validate *validator.Validate, maxBytes int) error {
	ar.SubjectID = core.CleanString(ar.SubjectID)
	if err := validate.Struct(ar); err != nil {
		return err
	}
	if maxBytes > 0 && len(ar.HTMLContent) > maxBytes {
		return core.NewValidationError(nil, core.FieldError{Field: "html_content", Error: fmt.Sprintf(blobTooLargeText, maxBytes)})
	}
	return nil
}

func (ir *ImportRequest) Validate(validate *validator.Validate) error {
	ir.SubjectID = core.CleanString(ir.SubjectID)
	ir.Difficulty = Difficulty(core.CleanString(string(ir.Difficulty), true /* lower */))
	for i := range ir.Questions {
		ir.Questions[i].clean()
	}
	return validate.Struct(ir)
}

func (nq *NewQuestion) Validate(validate *validator.Validate) error {
	nq.SubjectID = core.CleanString(nq.SubjectID)
	nq.Prompt = core.CleanString(nq.Prompt)
	nq.CorrectLabel = Label(core.CleanString(string(nq.CorrectLabel), true /* lower */))
	nq.Difficulty = Difficulty(core.CleanString(string(nq.Difficulty), true /* lower */))
	nq.Choices = nq.Choices.cleaned()
	return validate.Struct(nq)
}

func (q *Extracted) clean() {
	q.Prompt = core.CleanString(q.Prompt)
	q.CorrectLabel = Label(core.CleanString(string(q.CorrectLabel), true /* lower */))
	q.Choices = q.Choices.cleaned()
}

func (c Choices) cleaned() Choices {
	for _, l := range Labels {
		c.Set(l, strings.TrimSpace(c.Get(l)))
	}
	return c
}

// Custom Validators

func difficultyValidation(fl validator.FieldLevel) bool {
	if d, ok := fl.Field().Interface().(Difficulty); ok {
		return d.IsValid()
	}
	return false
}

func labelValidation(fl validator.FieldLevel) bool {
	if l, ok := fl.Field().Interface().(Label); ok {
		_, valid := ParseLabel(string(l))
		return valid && string(l) == strings.ToLower(string(l))
	}
	return false
}

// questionStructValidation checks that Extracted and NewQuestion carry all five choices.
func questionStructValidation(sl validator.StructLevel) {
	var choices Choices
	switch q := sl.Current().Interface().(type) {
	case Extracted:
		choices = q.Choices
	case NewQuestion:
		choices = q.Choices
	default:
		return
	}
	if !choices.Complete() {
		sl.ReportError(choices, "choices", "Choices", choicesTag, "")
	}
}
