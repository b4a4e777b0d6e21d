// Package validate holds the form schemas' rule set and turns validator
// failures into per-field messages.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/mmcdole/seerctl/internal/domain"
)

// PGPKeyPattern is the armored public key envelope
var PGPKeyPattern = regexp.MustCompile(`(?s)^-----BEGIN PGP PUBLIC KEY BLOCK-----.+-----END PGP PUBLIC KEY BLOCK-----$`)

var telegramIDPattern = regexp.MustCompile(`^-?\d+$`)

// Errors maps a struct field name to a user facing message
type Errors map[string]string

// Error implements error
func (e Errors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	fields := e.Fields()
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, e[f])
	}
	return strings.Join(parts, "; ")
}

// Unwrap lets callers match with domain.ErrInvalid
func (e Errors) Unwrap() error { return domain.ErrInvalid }

// Fields returns the failing field names sorted
func (e Errors) Fields() []string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Has reports whether field failed
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Err returns e as an error, or nil when empty
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

var (
	once     sync.Once
	instance *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		// Use the label tag for messages
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			if label := fld.Tag.Get("label"); label != "" {
				return label
			}
			return fld.Name
		})

		must(v.RegisterValidation("port", isPort))
		must(v.RegisterValidation("pgpkey", isPGPKey))
		must(v.RegisterValidation("telegramid", isTelegramID))
		instance = v
	})
	return instance
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func isPort(fl validator.FieldLevel) bool {
	var n int64
	switch f := fl.Field(); f.Kind() {
	case reflect.String:
		parsed, err := strconv.ParseInt(strings.TrimSpace(f.String()), 10, 32)
		if err != nil {
			return false
		}
		n = parsed
	case reflect.Int, reflect.Int32, reflect.Int64:
		n = f.Int()
	default:
		return false
	}
	return n >= 1 && n <= 65535
}

func isPGPKey(fl validator.FieldLevel) bool {
	return PGPKeyPattern.MatchString(strings.TrimSpace(fl.Field().String()))
}

func isTelegramID(fl validator.FieldLevel) bool {
	return telegramIDPattern.MatchString(strings.TrimSpace(fl.Field().String()))
}

// Struct validates v and returns per-field messages. An empty result means valid.
func Struct(v any) Errors {
	err := get().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Errors{"": err.Error()}
	}

	out := make(Errors, len(verrs))
	for _, fe := range verrs {
		// first failure per field wins
		if _, seen := out[fe.StructField()]; seen {
			continue
		}
		out[fe.StructField()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	label := fe.Field()
	switch fe.Tag() {
	case "required", "required_with":
		return fmt.Sprintf("You must provide %s", withArticle(strings.ToLower(label)))
	case "port":
		return "Please enter a valid port number"
	case "hostname_rfc1123":
		return fmt.Sprintf("You must provide a valid %s (no protocol or path)", strings.ToLower(label))
	case "url", "http_url":
		return "Please enter a valid URL"
	case "pgpkey":
		return "You must provide a valid PGP public key"
	case "telegramid":
		return "You must provide a valid chat ID"
	case "numeric", "number":
		return fmt.Sprintf("%s must be a number", label)
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

// withArticle prefixes "a" or "an" by the leading letter
func withArticle(noun string) string {
	if noun != "" && strings.ContainsRune("aeiou", rune(noun[0])) {
		return "an " + noun
	}
	return "a " + noun
}
