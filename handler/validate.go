package handler

import (
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws/arn"
	"gopkg.in/go-playground/validator.v9"
)

var check = validator.New()

func mustRegister(err error) {
	if err != nil {
		panic(fmt.Sprintf("Register custom validator: %v", err))
	}
}

func init() {
	mustRegister(check.RegisterValidation("arn", func(fl validator.FieldLevel) bool {
		_, err := arn.Parse(fl.Field().String())
		return err == nil
	}))
}

var once sync.Once
var formats map[string]string

// Validate validates a resource model using its validate struct tags.
//
// Returns an InvalidRequest error describing every failing field.
func Validate(model interface{}) error {
	err := check.Struct(model)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return Errorf(InvalidRequest, "Invalid request provided: %v", err)
	}
	once.Do(initFormatters)
	msgs := make([]string, len(errs))
	for i, fe := range errs {
		msgs[i] = fieldError(fe)
	}
	return Errorf(InvalidRequest, "Invalid request provided: %s", strings.Join(msgs, "; "))
}

func fieldError(fe validator.FieldError) string {
	field := strings.SplitN(fe.Namespace(), ".", 2)
	name := fe.Namespace()
	if len(field) == 2 {
		name = field[1]
	}
	format, ok := formats[fe.Tag()]
	if !ok {
		return fmt.Sprintf("%s failed %q", name, fe.Tag())
	}
	if !strings.Contains(format, "%v") {
		return name + " " + format
	}
	return name + " " + fmt.Sprintf(format, fe.Param())
}

func initFormatters() {
	formats = map[string]string{
		"required": "is required",
		"min":      "must be at least %v",
		"max":      "must be at most %v",
		"gte":      "must be %v or more",
		"lte":      "must be %v or less",
		"oneof":    "must be one of: [%v]",

		// custom
		"arn": "must be a valid arn (https://docs.aws.amazon.com/general/latest/gr/aws-arns-and-namespaces.html)",
	}
}
