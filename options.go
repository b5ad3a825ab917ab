package apicontract

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/Gobd/apicontract/formats"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Option is a functional option for Build.
type Option func(*config) error

type config struct {
	formats        []formats.Format
	nullableBodies bool
	externalRefs   bool
	validateDoc    bool
	logger         *slog.Logger
}

func defaultConfig() *config {
	return &config{
		nullableBodies: true,
		validateDoc:    true,
		logger:         slog.New(slog.DiscardHandler),
	}
}

// WithFormats layers custom formats onto the built-in numeric ones. A custom
// format is checked wherever a schema names it, for values of its Type
// (number formats also cover integer schemas). Names of built-in formats
// cannot be reused.
func WithFormats(fs ...formats.Format) Option {
	return func(c *config) error {
		for _, f := range fs {
			if err := validateFormat(f); err != nil {
				return &ConfigError{Message: "invalid format " + strconv.Quote(f.Name), Cause: err}
			}
			c.formats = append(c.formats, f)
		}
		return nil
	}
}

func validateFormat(f formats.Format) error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Name, validation.Required, validation.By(notBuiltin)),
		validation.Field(&f.Type, validation.Required,
			validation.In(formats.TypeNumber, formats.TypeInteger, formats.TypeString)),
		validation.Field(&f.Check, validation.By(notNilCheck)),
	)
}

func notBuiltin(value any) error {
	if name, _ := value.(string); formats.IsBuiltin(name) {
		return validation.NewError("validation_format_builtin", "must not shadow a built-in format")
	}
	return nil
}

func notNilCheck(value any) error {
	if check, _ := value.(func(any) bool); check == nil {
		return validation.NewError("validation_format_check", "is required")
	}
	return nil
}

// WithNullableBodies sets whether request bodies honour "nullable: true".
// When false, null is rejected in request bodies even where the schema
// allows it. Responses always honour the keyword. Default is true.
func WithNullableBodies(allow bool) Option {
	return func(c *config) error {
		c.nullableBodies = allow
		return nil
	}
}

// WithExternalRefs allows $ref to point at other files or URLs. Default is
// false.
func WithExternalRefs(allow bool) Option {
	return func(c *config) error {
		c.externalRefs = allow
		return nil
	}
}

// WithDocumentValidation sets whether the document itself is validated
// against the OpenAPI specification before compiling. Default is true.
func WithDocumentValidation(validate bool) Option {
	return func(c *config) error {
		c.validateDoc = validate
		return nil
	}
}

// WithLogger sets the logger for build and rejection events. Default
// discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) error {
		if l == nil {
			return &ConfigError{Message: "invalid logger", Cause: errors.New("logger cannot be nil")}
		}
		c.logger = l
		return nil
	}
}
