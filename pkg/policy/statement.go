// Package policy holds the statement builder that generated service types append to.
package policy

import (
	"encoding/json"
	"regexp"
	"sort"
)

const (
	EffectAllow = "Allow"
	EffectDeny  = "Deny"
)

var placeholderRegex = regexp.MustCompile(`\$\{([A-Za-z0-9]+)\}`)

// Statement collects the actions, resources and conditions of one IAM policy statement
type Statement struct {
	Sid        string
	Effect     string
	Actions    []string
	Resources  []string
	Conditions map[string]map[string][]string // operator -> key -> values

	// Defaults used for ARN placeholders not given explicitly
	Partition string
	Region    string
	Account   string
}

// NewStatement returns an Allow statement with the default partition "aws"
// and wildcard region and account
func NewStatement() *Statement {
	return &Statement{
		Effect:    EffectAllow,
		Partition: "aws",
		Region:    "*",
		Account:   "*",
	}
}

// AddAction appends an action such as "ec2:RunInstances", ignoring duplicates
func (s *Statement) AddAction(action string) {
	for _, existing := range s.Actions {
		if existing == action {
			return
		}
	}
	s.Actions = append(s.Actions, action)
}

// AddResource expands an ARN template and appends it, ignoring duplicates
func (s *Statement) AddResource(template string, values map[string]string) {
	resource := Expand(template, s.withDefaults(values))
	for _, existing := range s.Resources {
		if existing == resource {
			return
		}
	}
	s.Resources = append(s.Resources, resource)
}

// AddCondition appends a value to the condition operator/key pair
func (s *Statement) AddCondition(operator, key, value string) {
	if s.Conditions == nil {
		s.Conditions = make(map[string]map[string][]string)
	}
	if s.Conditions[operator] == nil {
		s.Conditions[operator] = make(map[string][]string)
	}
	s.Conditions[operator][key] = append(s.Conditions[operator][key], value)
}

func (s *Statement) withDefaults(values map[string]string) map[string]string {
	merged := map[string]string{
		"Partition": s.Partition,
		"Region":    s.Region,
		"Account":   s.Account,
	}
	for k, v := range values {
		merged[k] = v
	}
	return merged
}

// Expand replaces ${Name} placeholders with their values. Empty or missing
// values become "*".
func Expand(template string, values map[string]string) string {
	return placeholderRegex.ReplaceAllStringFunc(template, func(match string) string {
		name := placeholderRegex.FindStringSubmatch(match)[1]
		if v := values[name]; v != "" {
			return v
		}
		return "*"
	})
}

// Operator returns the first given operator, or fallback when none is given
func Operator(given []string, fallback string) string {
	if len(given) > 0 && given[0] != "" {
		return given[0]
	}
	return fallback
}

type statementJSON struct {
	Sid       string                            `json:"Sid,omitempty"`
	Effect    string                            `json:"Effect"`
	Action    []string                          `json:"Action"`
	Resource  []string                          `json:"Resource"`
	Condition map[string]map[string]interface{} `json:"Condition,omitempty"`
}

// MarshalJSON renders the statement in IAM policy grammar. Without resources the
// statement applies to "*".
func (s *Statement) MarshalJSON() ([]byte, error) {
	out := statementJSON{
		Sid:      s.Sid,
		Effect:   s.Effect,
		Action:   sortedCopy(s.Actions),
		Resource: sortedCopy(s.Resources),
	}
	if out.Effect == "" {
		out.Effect = EffectAllow
	}
	if len(out.Resource) == 0 {
		out.Resource = []string{"*"}
	}
	if len(s.Conditions) > 0 {
		out.Condition = make(map[string]map[string]interface{}, len(s.Conditions))
		for operator, keys := range s.Conditions {
			out.Condition[operator] = make(map[string]interface{}, len(keys))
			for key, values := range keys {
				if len(values) == 1 {
					out.Condition[operator][key] = values[0]
				} else {
					out.Condition[operator][key] = values
				}
			}
		}
	}
	return json.Marshal(out)
}

func sortedCopy(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	sort.Strings(out)
	return out
}
