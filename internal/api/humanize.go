package api

import (
	"regexp"
	"strings"
)

var errorMessages = map[string]string{
	"UniqueViolation": "Item already exists",
}

var pascalWord = regexp.MustCompile(`[A-Z][^A-Z]+`)

// HumanizeErrorType turns a service error_type into a sentence for the user.
// Unknown identifiers are split on their capitalized words, so "NotFound"
// reads "Not found".
func HumanizeErrorType(errorType string) string {
	if msg, ok := errorMessages[errorType]; ok {
		return msg
	}

	words := pascalWord.FindAllString(errorType, -1)
	if len(words) == 0 {
		return errorType
	}

	sentence := strings.Join(words, " ")
	return sentence[:1] + strings.ToLower(sentence[1:])
}
