package handler

import (
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	usernameRe   = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,32}$`)
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators adds the "username" and "password" tags to gin's
// validator. Safe to call more than once.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		if registerErr = v.RegisterValidation("username", validUsername); registerErr != nil {
			return
		}
		registerErr = v.RegisterValidation("password", validPassword)
	})
	return registerErr
}

func validUsername(fl validator.FieldLevel) bool {
	return usernameRe.MatchString(fl.Field().String())
}

// A password is 8 to 128 characters with at least one letter and one
// digit, and no surrounding whitespace.
func validPassword(fl validator.FieldLevel) bool {
	pw := fl.Field().String()
	if len(pw) < 8 || len(pw) > 128 || strings.TrimSpace(pw) != pw {
		return false
	}
	var letter, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}
