package user

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/tempo/core"
)

var (
	// password policy
	pwdMinLen     = 6
	pwdMinLenText = fmt.Sprintf("Password must be at least %d characters.", pwdMinLen)

	pwdNoSpaceText   = "Password must not contain whitespace."
	pwdNotAllNumText = "Password cannot be entirely numeric."

	pwdMaxSim      = .7
	pwdAttrSimText = "Password is too similar to the username or email."
)

// ValidatePassword applies the password policy to provided password:
// - minLen: 6
// - no whitespace
// - not all numeric
// - not similar to user attributes (username, email..)
func ValidatePassword(pwd string, attrs ...string) error {
	reportErr := func(text string) error {
		return core.NewFieldError("password", text)
	}

	if len([]rune(pwd)) < pwdMinLen {
		return reportErr(pwdMinLenText)
	}

	var digitCount int
	for _, char := range pwd {
		if unicode.IsSpace(char) {
			return reportErr(pwdNoSpaceText)
		}
		if unicode.IsDigit(char) {
			digitCount++
		}
	}
	if digitCount == len([]rune(pwd)) {
		return reportErr(pwdNotAllNumText)
	}

	lpwd := strings.ToLower(pwd)
	for _, attr := range attrs {
		attr = strings.ToLower(attr)
		if i := strings.Index(attr, "@"); i > 0 {
			attr = attr[:i]
		}
		if attr == "" {
			continue
		}
		ratio := difflib.NewMatcher(strings.Split(lpwd, ""), strings.Split(attr, "")).QuickRatio()
		if ratio >= pwdMaxSim {
			return reportErr(pwdAttrSimText)
		}
	}
	return nil
}
