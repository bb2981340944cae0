package schedule

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/skapefps/Unimap-sub001/core"
)

var (
	startBeforeEndTag  = "startbeforeend"
	startBeforeEndText = "start must be before end"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(sessionStructValidation, NewSession{})
	core.RegisterCustomTranslation(validate, translator, startBeforeEndTag, startBeforeEndText)
}

// sessionStructValidation requires Start < End. Both are HH:MM so string order is time order.
func sessionStructValidation(sl validator.StructLevel) {
	ns := sl.Current().Interface().(NewSession)
	if !core.IsHHMM(ns.Start) || !core.IsHHMM(ns.End) {
		return // reported by the field tags
	}
	if ns.Start >= ns.End {
		sl.ReportError(ns.End, "end", "End", startBeforeEndTag, "")
	}
}
