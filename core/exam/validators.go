package exam

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/sqoolify/sqoolify/core"
)

var (
	questionTypeTag  = "questiontype"
	questionTypeText = "invalid question type"

	mcqOptionsTag  = "mcqoptions"
	mcqOptionsText = "a multiple choice question needs at least 2 options"

	correctAnswerTag  = "correctanswer"
	correctAnswerText = "the correct answer must be one of the options"

	tfAnswerTag  = "tfanswer"
	tfAnswerText = `the correct answer must be "true" or "false"`

	markingSchemeTag  = "markingscheme"
	markingSchemeText = "a marking scheme only applies to essay and short answer questions"
)

// InitValidators registers this package's custom validations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(questionTypeTag, questionTypeValidation)
	core.RegisterCustomTranslation(validate, translator, questionTypeTag, questionTypeText)

	validate.RegisterStructValidation(questionStructValidation, NewQuestion{})
	core.RegisterCustomTranslation(validate, translator, mcqOptionsTag, mcqOptionsText)
	core.RegisterCustomTranslation(validate, translator, correctAnswerTag, correctAnswerText)
	core.RegisterCustomTranslation(validate, translator, tfAnswerTag, tfAnswerText)
	core.RegisterCustomTranslation(validate, translator, markingSchemeTag, markingSchemeText)
}

// questionTypeValidation checks that the provided type is a known QuestionType.
func questionTypeValidation(fl validator.FieldLevel) bool {
	return QuestionType(fl.Field().String()).Valid()
}

// questionStructValidation applies the per-type structural rules:
// - mcq: at least 2 options; the correct answer must be one of them
// - true_false: the correct answer must be "true" or "false"
// - essay/short_answer: no marking scheme anywhere else
func questionStructValidation(sl validator.StructLevel) {
	nq, ok := sl.Current().Interface().(NewQuestion)
	if !ok {
		return
	}

	switch QuestionType(nq.Type) {
	case TypeMCQ:
		if len(nq.Options) < 2 {
			sl.ReportError(nq.Options, "options", "Options", mcqOptionsTag, "")
		}
		if nq.CorrectAnswer != "" && !containsString(nq.Options, nq.CorrectAnswer) {
			sl.ReportError(nq.CorrectAnswer, "correct_answer", "CorrectAnswer", correctAnswerTag, "")
		}
	case TypeTrueFalse:
		if nq.CorrectAnswer != "" && nq.CorrectAnswer != "true" && nq.CorrectAnswer != "false" {
			sl.ReportError(nq.CorrectAnswer, "correct_answer", "CorrectAnswer", tfAnswerTag, "")
		}
	}

	if nq.MarkingScheme != "" && !QuestionType(nq.Type).HasMarkingScheme() {
		sl.ReportError(nq.MarkingScheme, "marking_scheme", "MarkingScheme", markingSchemeTag, "")
	}
}

func containsString(vals []string, s string) bool {
	for _, v := range vals {
		if v == s {
			return true
		}
	}
	return false
}
