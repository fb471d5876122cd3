package config

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"task-management/internal/auth"
	"task-management/internal/service"
)

var (
	// Global dependency yang akan digunakan di seluruh aplikasi.
	// Diisi oleh cmd/api (atau oleh test) sebelum route didaftarkan.
	Validate = newValidator()

	Tokens   *auth.TokenService
	Accounts *service.AccountService
	Tasks    *service.TaskService
)

// newValidator reports field errors under their json names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
