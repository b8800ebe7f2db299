package carryover

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"

	coerrors "github.com/scsphylo/carryover/errors"
)

var inputsValidate = newInputsValidator()

func newInputsValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("flag")
	})
	return v
}

// Inputs names the files of one run. Every path except Tree and Out must
// refer to an existing file; Tree must exist when set. Out need not exist.
type Inputs struct {
	Tree      string `flag:"tree" validate:"omitempty,file"`
	Estimates string `flag:"estimates" validate:"required,file"`
	Results   string `flag:"results" validate:"required,file"`
	Template1 string `flag:"template1" validate:"required,file"`
	Template2 string `flag:"template2" validate:"required,file"`
	Out       string `flag:"out" validate:"required"`
}

// Validate checks that every supplied input exists. Each failing path is
// reported as a *coerrors.MissingInputError; several are joined.
func (in Inputs) Validate() error {
	err := inputsValidate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate inputs: %w", err)
	}
	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		path, _ := fe.Value().(string)
		errs = append(errs, &coerrors.MissingInputError{Flag: fe.Field(), Path: path})
	}
	return errors.Join(errs...)
}
