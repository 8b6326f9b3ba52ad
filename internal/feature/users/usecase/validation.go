package usecase

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	// minPasswordLength はパスワードの最低文字数を定義します。
	minPasswordLength = 8
	// maxPasswordLength はbcryptが扱える最大バイト数です。
	maxPasswordLength = 72
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// normalizeEmail はメールアドレスの前後の空白を除去し小文字化します。
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "name", Message: "is required"}
	}
	return nil
}

func validateEmail(email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return &ValidationError{Field: "email", Message: "must be a valid email address"}
	}
	return nil
}

// validatePassword はパスワードがセキュリティ要件を満たしているかチェックします。
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return &ValidationError{Field: "password", Message: fmt.Sprintf("must be at least %d characters long", minPasswordLength)}
	}
	if len(password) > maxPasswordLength {
		return &ValidationError{Field: "password", Message: fmt.Sprintf("must be at most %d characters long", maxPasswordLength)}
	}
	if strings.Contains(strings.ToLower(password), "password") {
		return &ValidationError{Field: "password", Message: `must not contain "password"`}
	}
	return nil
}

func validateAge(age int) error {
	if err := validate.Var(age, "gte=0"); err != nil {
		return &ValidationError{Field: "age", Message: "must be a positive number"}
	}
	return nil
}
