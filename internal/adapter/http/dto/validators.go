package dto

import (
	"html"
	"reflect"
	"regexp"
	"strings"

	"empower-pay/internal/core/domain"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var phoneRe = regexp.MustCompile(`^\+[1-9]\d{8,13}$`)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("phone_e164", validatePhone)
		_ = v.RegisterValidation("momo_network", validateNetwork)
	}
}

// validatePhone accepts E.164 numbers. The country prefix requirement is
// config-dependent and enforced by the auth service.
func validatePhone(fl validator.FieldLevel) bool {
	return phoneRe.MatchString(fl.Field().String())
}

// validateNetwork accepts the supported mobile money networks.
func validateNetwork(fl validator.FieldLevel) bool {
	return domain.Network(fl.Field().String()).Valid()
}

// SanitizeStruct trims whitespace and HTML-escapes every exported string
// field (including *string) of a struct pointer.
func SanitizeStruct(v interface{}) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return
	}
	sanitizeFields(rv.Elem())
}

func sanitizeFields(rv reflect.Value) {
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanSet() {
			continue
		}
		switch f.Kind() {
		case reflect.String:
			f.SetString(sanitize(f.String()))
		case reflect.Ptr:
			if f.IsNil() {
				continue
			}
			elem := f.Elem()
			if elem.Kind() == reflect.String {
				s := sanitize(elem.String())
				elem.SetString(s)
			}
		}
	}
}

func sanitize(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}
