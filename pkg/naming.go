package pkg

import (
	"go/token"
	"strings"
	"unicode"
)

// PascalCase converts an identifier like "aws-marketplace_catalog" to "AwsMarketplaceCatalog".
// Segments are split on '_' and '-', each gets its first letter upper-cased.
// Characters that cannot appear in a Go identifier are dropped.
func PascalCase(id string) string {
	var sb strings.Builder
	for _, segment := range strings.FieldsFunc(id, func(r rune) bool { return r == '_' || r == '-' }) {
		sb.WriteString(upperFirst(identifierChars(segment)))
	}
	name := sb.String()
	if name == "" || unicode.IsDigit([]rune(name)[0]) {
		name = "X" + name
	}
	return name
}

// exportedName converts a documented name such as "CreateWidget" or
// "ResourceTag/${TagKey}" into an exported Go identifier: "CreateWidget", "ResourceTag".
func exportedName(name string) string {
	name = placeholderRegex.ReplaceAllString(name, "")
	var sb strings.Builder
	for _, part := range strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		sb.WriteString(upperFirst(part))
	}
	exported := sb.String()
	if exported == "" || unicode.IsDigit([]rune(exported)[0]) {
		exported = "X" + exported
	}
	return exported
}

// parameterName converts a placeholder name like "InstanceId" to "instanceId",
// steering clear of keywords and names the generated code already uses
func parameterName(placeholder string) string {
	name := lowerFirst(exportedName(placeholder))
	if token.IsKeyword(name) || reservedParameterNames[name] {
		name += "Value"
	}
	return name
}

var reservedParameterNames = map[string]bool{
	"b":        true,
	"policy":   true,
	"operator": true,
	"value":    true,
	"string":   true,
}

// fileName returns the generated file name of a module identifier
func fileName(id string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r == '_':
			return '-'
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '.':
			return unicode.ToLower(r)
		}
		return -1
	}, id)
	return name + ".go"
}

func identifierChars(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}
