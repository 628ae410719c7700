package validator

import (
	"encoding/json"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/shandysiswandi/otpgate/internal/pkg/strcase"
)

var (
	// Optional leading plus, 3 to 15 digits. Deliberately looser than E.164
	// because tenants register short test numbers such as "+1555".
	rePhone   = regexp.MustCompile(`^\+?[0-9]{3,15}$`)
	reOTPCode = regexp.MustCompile(`^[0-9]{5}$`)
)

var ErrTranslatorNotFound = errors.New("translator not found")

// V10ValidationError maps snake_case field names to messages.
type V10ValidationError map[string]string

func (vs V10ValidationError) Error() string {
	if len(vs) == 0 {
		return "validation error"
	}

	b, err := json.Marshal(map[string]string(vs))
	if err != nil {
		return "validation error"
	}
	return string(b)
}

func (vs V10ValidationError) Values() map[string]string {
	return vs
}

type V10Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func NewV10Validator() (*V10Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	lang := en.New()
	trans, ok := ut.New(lang, lang).GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}

	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	rules := []struct {
		tag string
		re  *regexp.Regexp
		msg string
	}{
		{tag: "phone", re: rePhone, msg: "{0} must be a valid phone number"},
		{tag: "otpcode", re: reOTPCode, msg: "{0} must be exactly 5 digits"},
	}
	for _, rule := range rules {
		if err := register(validate, trans, rule.tag, rule.re, rule.msg); err != nil {
			return nil, err
		}
	}

	return &V10Validator{validate: validate, translator: trans}, nil
}

func register(validate *validator.Validate, trans ut.Translator, tag string, re *regexp.Regexp, msg string) error {
	err := validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		return ok && re.MatchString(s)
	})
	if err != nil {
		return err
	}

	return validate.RegisterTranslation(tag, trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, msg, false)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, err := ut.T(fe.Tag(), fe.Field())
			if err != nil {
				slog.Warn("failed to translate validation error", "tag", fe.Tag(), "error", err)
				return fe.Error()
			}
			return t
		},
	)
}

// Validate returns V10ValidationError for rule failures and the raw error
// for anything else (e.g. a non-struct argument).
func (v *V10Validator) Validate(data any) error {
	err := v.validate.Struct(data)
	if err == nil {
		return nil
	}

	var fes validator.ValidationErrors
	if !errors.As(err, &fes) {
		return err
	}

	out := make(V10ValidationError, len(fes))
	for _, fe := range fes {
		field := strcase.ToLowerSnake(fe.Field())
		out[field] = strings.Replace(fe.Translate(v.translator), fe.Field(), field, 1)
	}
	return out
}
