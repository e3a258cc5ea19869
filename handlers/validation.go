package handlers

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/Shashank-1177/SBFood/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var hhmm = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

var registerOnce sync.Once

// RegisterValidators installs the domain binding rules on gin's validator.
// Safe to call more than once.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		rules := map[string]validator.Func{
			"cuisine":       oneOf(models.Cuisines),
			"category":      oneOf(models.Categories),
			"paymentmethod": paymentMethod,
			"orderstatus":   orderStatus,
			"hhmm":          func(fl validator.FieldLevel) bool { return hhmm.MatchString(fl.Field().String()) },
		}
		for tag, fn := range rules {
			if err = v.RegisterValidation(tag, fn); err != nil {
				return
			}
		}
	})
	return err
}

func oneOf(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		for _, a := range allowed {
			if a == s {
				return true
			}
		}
		return false
	}
}

func paymentMethod(fl validator.FieldLevel) bool {
	switch models.PaymentMethod(fl.Field().String()) {
	case models.PaymentCard, models.PaymentCash, models.PaymentDigitalWallet:
		return true
	}
	return false
}

func orderStatus(fl validator.FieldLevel) bool {
	return models.OrderStatus(fl.Field().String()).Valid()
}
