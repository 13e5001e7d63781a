package pkg

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

const (
	actionRowFields       = 6
	continuationRowFields = 3
	scenarioMarker        = "SCENARIO:"
	requiredMarker        = "*"
)

// annotationMarkerRegex matches trailing markers on action names
// Examples:
// CreateWidget [permission only]
// CreateWidget[permission only]
var annotationMarkerRegex = regexp.MustCompile(`(\s*\[[^\]]*\])+\s*$`)

// actionTableState is the accumulator threaded through the rows of one actions table
type actionTableState struct {
	actions        map[string]Action
	lastActionName string
}

// ClassifyActionRows folds the rows of an actions table into a map of actions.
//
// A row of six cells starts an action and carries its first resource type triple,
// a row of three cells continues the last started action, anything else is skipped.
func ClassifyActionRows(rows []Row, reporter *Reporter) map[string]Action {
	state := actionTableState{actions: make(map[string]Action)}
	for _, row := range rows {
		state = state.classify(row, reporter)
	}
	return state.actions
}

func (s actionTableState) classify(row Row, reporter *Reporter) actionTableState {
	switch len(row.Cells) {
	case actionRowFields:
		return s.startAction(row.Cells, reporter)
	case continuationRowFields:
		return s.continueAction(row.Cells, reporter)
	default:
		text := row.Text()
		if text != "" && !strings.HasPrefix(text, scenarioMarker) {
			reporter.Warn(DiagnosticUnexpectedRow, text, "unexpected number of fields", zap.Int("fields", len(row.Cells)))
		}
		return s
	}
}

func (s actionTableState) startAction(cells []Cell, reporter *Reporter) actionTableState {
	name := actionName(cells[0].Text)
	level, err := ParseAccessLevel(cells[2].Text)
	if name == "" || err != nil {
		reporter.Warn(DiagnosticParseError, cells[0].Text, "skipping malformed action row", zap.Error(err))
		s.lastActionName = ""
		return s
	}

	// a repeated name replaces the earlier definition
	s.actions[name] = Action{
		URL:         cells[0].Link,
		Description: normalizeWhitespace(cells[1].Text),
		AccessLevel: level,
	}
	s.lastActionName = name
	return s.continueAction(cells[3:], reporter)
}

func (s actionTableState) continueAction(cells []Cell, reporter *Reporter) actionTableState {
	resourceType := cells[0].Text
	conditions := cells[1].Values()
	dependentActions := cells[2].Values()

	if s.lastActionName == "" {
		if resourceType != "" || len(conditions) > 0 || len(dependentActions) > 0 {
			reporter.Warn(DiagnosticOrphanRow, Row{Cells: cells}.Text(), "continuation row without a preceding action")
		}
		return s
	}

	action := s.actions[s.lastActionName]
	if resourceType != "" {
		name, required := parseResourceTypeName(resourceType)
		refs := make(map[string]ResourceTypeRef, len(action.ResourceTypes)+1)
		for k, v := range action.ResourceTypes {
			refs[k] = v
		}
		ref := refs[name]
		ref.Required = ref.Required || required
		ref.Conditions = appendStrings(ref.Conditions, conditions)
		refs[name] = ref
		action.ResourceTypes = refs
	} else if len(conditions) > 0 {
		action.Conditions = appendStrings(action.Conditions, conditions)
	}
	action.DependentActions = appendStrings(action.DependentActions, dependentActions)

	s.actions[s.lastActionName] = action
	return s
}

// actionName strips trailing annotation markers such as "[permission only]"
func actionName(text string) string {
	return strings.TrimSpace(annotationMarkerRegex.ReplaceAllString(text, ""))
}

// parseResourceTypeName reports a resource type as required when it contains the
// wildcard marker, and then drops the last character of the name.
// A marker in the middle of a name is detected but not stripped.
func parseResourceTypeName(text string) (string, bool) {
	if !strings.Contains(text, requiredMarker) {
		return text, false
	}
	runes := []rune(text)
	return string(runes[:len(runes)-1]), true
}

// ClassifyResourceTypeRows reads the resource types table: name, ARN, condition keys.
// ARNs are kept as scraped; normalization happens during assembly.
func ClassifyResourceTypeRows(rows []Row, reporter *Reporter) map[string]ResourceType {
	resourceTypes := make(map[string]ResourceType)
	for _, row := range rows {
		if len(row.Cells) != continuationRowFields {
			if text := row.Text(); text != "" {
				reporter.Warn(DiagnosticUnexpectedRow, text, "unexpected number of fields", zap.Int("fields", len(row.Cells)))
			}
			continue
		}
		name := row.Cells[0].Text
		if name == "" {
			continue
		}
		resourceTypes[name] = ResourceType{
			Name:          name,
			ARN:           row.Cells[1].Text,
			ConditionKeys: appendStrings(nil, row.Cells[2].Values()),
		}
	}
	return resourceTypes
}

// ClassifyConditionKeyRows reads the condition keys table: name, description, type
func ClassifyConditionKeyRows(rows []Row, reporter *Reporter) map[string]ConditionKey {
	keys := make(map[string]ConditionKey)
	for _, row := range rows {
		if len(row.Cells) != continuationRowFields {
			if text := row.Text(); text != "" {
				reporter.Warn(DiagnosticUnexpectedRow, text, "unexpected number of fields", zap.Int("fields", len(row.Cells)))
			}
			continue
		}
		name := row.Cells[0].Text
		if name == "" {
			continue
		}
		keys[name] = ConditionKey{
			Name:        name,
			Description: row.Cells[1].Text,
			Type:        row.Cells[2].Text,
		}
	}
	return keys
}

func appendStrings(dst, src []string) []string {
	if len(src) == 0 {
		return dst
	}
	out := make([]string, 0, len(dst)+len(src))
	out = append(out, dst...)
	return append(out, src...)
}
