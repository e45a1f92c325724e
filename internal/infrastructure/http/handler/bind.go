package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/expertteam/expert/internal/infrastructure/http/response"
)

// requestValidator holds the singleton validator and its English translator.
type requestValidator struct {
	validate   *validator.Validate
	translator ut.Translator
}

var (
	validatorOnce sync.Once
	validatorSvc  *requestValidator
)

// getValidator initializes the validator on first use with json tag names and English messages.
func getValidator() *requestValidator {
	validatorOnce.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())

		// prefer json tag names in messages
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})

		_ = en_translations.RegisterDefaultTranslations(v, trans)
		registerShort(v, trans, "min", "{0} must be at least {1} characters")
		registerShort(v, trans, "max", "{0} must be at most {1} characters")

		validatorSvc = &requestValidator{validate: v, translator: trans}
	})
	return validatorSvc
}

func registerShort(v *validator.Validate, trans ut.Translator, tag, text string) {
	_ = v.RegisterTranslation(tag, trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, text, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T(tag, fe.Field(), fe.Param())
			return msg
		},
	)
}

// errInvalidJSON marks bodies that could not be decoded.
var errInvalidJSON = errors.New("invalid JSON")

// fieldErrors translates validation failures into response details.
type fieldErrors []response.ErrorField

func (f fieldErrors) Error() string {
	parts := make([]string, len(f))
	for i, fe := range f {
		parts[i] = fe.Field + ": " + fe.Issue
	}
	return strings.Join(parts, "; ")
}

// decodeJSON decodes a single JSON object into T, rejecting unknown fields and
// trailing data, and validates it.
func decodeJSON[T any](r *http.Request) (T, error) {
	var dst T

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&dst); err != nil {
		if errors.Is(err, io.EOF) {
			return dst, fmt.Errorf("%w: empty body", errInvalidJSON)
		}
		return dst, fmt.Errorf("%w: %v", errInvalidJSON, err)
	}
	if dec.More() {
		return dst, fmt.Errorf("%w: unexpected trailing data", errInvalidJSON)
	}

	return dst, validateStruct(dst)
}

// validateStruct runs struct tag validation and returns fieldErrors on failure.
func validateStruct(v any) error {
	svc := getValidator()
	err := svc.validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(fieldErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, response.ErrorField{Field: fe.Field(), Issue: fe.Translate(svc.translator)})
	}
	return out
}

// writeBindError answers a failed decodeJSON.
func writeBindError(w http.ResponseWriter, r *http.Request, err error) {
	var fields fieldErrors
	switch {
	case errors.As(err, &fields):
		response.ValidationErrors(w, fields)
	case errors.Is(err, errInvalidJSON):
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w, r, err)
	}
}
