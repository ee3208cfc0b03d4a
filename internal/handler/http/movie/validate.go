package movie

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"notioner/internal/domain/entity"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// itemId は UUID 形式 (ハイフンなし 32 桁も可)
		_ = validate.RegisterValidation("notionid", func(fl validator.FieldLevel) bool {
			return entity.ValidateNotionID(fl.Field().String()) == nil
		})
		_ = validate.RegisterValidation("movietitle", func(fl validator.FieldLevel) bool {
			return entity.ValidateTitle(fl.Field().String()) == nil
		})
		// numeric は符号や小数点も通すので年は entity 側の規則で判定する
		_ = validate.RegisterValidation("year", func(fl validator.FieldLevel) bool {
			return entity.ValidateYear(fl.Field().String()) == nil
		})
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

// validateRequest returns nil or an error whose message lists every failed field.
func validateRequest(v any) error {
	err := getValidator().Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return &entity.ValidationError{Field: fieldErrs[0].Field(), Message: strings.Join(msgs, "; ")}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "movietitle":
		return fmt.Sprintf("%s must be at least %d characters", fe.Field(), entity.MinTitleLength)
	case "year":
		return fe.Field() + " must be a 4 digit year"
	case "notionid":
		return fe.Field() + " must be a Notion page id"
	default:
		return fe.Field() + " is invalid"
	}
}
