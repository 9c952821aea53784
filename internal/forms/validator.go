package forms

import "regexp"

// Field rules shared by every form in the portal. Validation runs in full on
// each submit; a failing form never reaches the network.
const (
	minNameLength    = 2
	minPhoneLength   = 8
	minSubjectLength = 3
	minMessageLength = 10
	codeLength       = 6
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
var codePattern = regexp.MustCompile(`^[0-9]{6}$`)

// Errors maps a field name to a human-readable message. Recomputed on every
// validation pass; individual entries are cleared optimistically as the user
// edits that field.
type Errors map[string]string

func (e Errors) Set(field, message string) {
	e[field] = message
}

func (e Errors) Clear(field string) {
	delete(e, field)
}

func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

func (e Errors) Empty() bool {
	return len(e) == 0
}

func ValidName(name string) bool {
	return len(NormalizeString(name)) >= minNameLength
}

func ValidEmail(email string) bool {
	return emailPattern.MatchString(NormalizeEmail(email))
}

func ValidPhone(phone string) bool {
	return len(NormalizePhone(phone)) >= minPhoneLength
}

func ValidSubject(subject string) bool {
	return len(NormalizeString(subject)) >= minSubjectLength
}

func ValidMessage(message string) bool {
	return len(NormalizeString(message)) >= minMessageLength
}

func ValidCode(code string) bool {
	return codePattern.MatchString(code)
}
