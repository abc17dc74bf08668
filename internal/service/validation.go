package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/iliyamo/classroom-seating/internal/model"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	// custom validation tags
	boardTag    = "board"
	notBlankTag = "notblank"
	windowTag   = "window"
)

func init() {
	validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(boardTag, boardValidation)
	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)
	validate.RegisterStructValidation(subRoomStructValidation, SubRoomInput{})

	registerFn := func(ut.Translator) error { return nil }
	for _, tag := range []string{boardTag, notBlankTag, windowTag} {
		_ = validate.RegisterTranslation(tag, translator, registerFn, translateCustom)
	}
}

func translateCustom(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case boardTag:
		return "board must be one of top, bottom, left, right"
	case notBlankTag:
		return "this field cannot be blank"
	case windowTag:
		return "ends_at must be after starts_at"
	}
	return fe.Error()
}

func boardValidation(fl validator.FieldLevel) bool {
	switch model.BoardPosition(fl.Field().String()) {
	case model.BoardTop, model.BoardBottom, model.BoardLeft, model.BoardRight:
		return true
	}
	return false
}

func notBlankValidation(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func subRoomStructValidation(sl validator.StructLevel) {
	in, ok := sl.Current().Interface().(SubRoomInput)
	if !ok {
		return
	}
	if in.StartsAt != nil && in.EndsAt != nil && !in.EndsAt.After(*in.StartsAt) {
		sl.ReportError(in.EndsAt, "ends_at", "EndsAt", windowTag, "")
	}
}

// validateStruct runs the struct tags and converts failures into a
// ValidationError with translated messages.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	flds := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		flds = append(flds, FieldError{Field: fieldPath(fe), Error: fe.Translate(translator)})
	}
	return NewValidationError(nil, flds...)
}

// fieldPath drops the root struct name from the namespace,
// e.g. "RoomInput.columns[0].tables" -> "columns[0].tables".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}
