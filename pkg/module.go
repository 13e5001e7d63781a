package pkg

import (
	"fmt"
	"sort"
	"strings"
)

// AccessLevel is the authorization impact of an action as documented by AWS
type AccessLevel string

const (
	AccessLevelRead                  AccessLevel = "Read"
	AccessLevelWrite                 AccessLevel = "Write"
	AccessLevelList                  AccessLevel = "List"
	AccessLevelTagging               AccessLevel = "Tagging"
	AccessLevelPermissionsManagement AccessLevel = "Permissions management"
)

// ParseAccessLevel matches a trimmed access level label against the known levels
func ParseAccessLevel(label string) (AccessLevel, error) {
	level := AccessLevel(strings.TrimSpace(label))
	switch level {
	case AccessLevelRead, AccessLevelWrite, AccessLevelList, AccessLevelTagging, AccessLevelPermissionsManagement:
		return level, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAccessLevel, label)
}

// Module represents everything scraped from a single service authorization page
type Module struct {
	Name          string                  `json:"name"`  // scraped service prefix, "ec2"
	Slug          string                  `json:"slug"`  // normalized page slug, "amazonec2"
	URL           string                  `json:"url"`   // page the module was scraped from
	Title         string                  `json:"title"` // "Amazon EC2"
	Actions       map[string]Action       `json:"actions"`
	ResourceTypes map[string]ResourceType `json:"resource_types,omitempty"`
	ConditionKeys map[string]ConditionKey `json:"condition_keys,omitempty"`
	Fix           *FixEntry               `json:"fix,omitempty"`
}

// Action is a single permission entry of a service
type Action struct {
	URL              string                     `json:"url"`
	Description      string                     `json:"description"`
	AccessLevel      AccessLevel                `json:"accessLevel"`
	ResourceTypes    map[string]ResourceTypeRef `json:"resourceTypes,omitempty"`
	Conditions       []string                   `json:"conditions,omitempty"`
	DependentActions []string                   `json:"dependentActions,omitempty"`
}

// ResourceTypeRef links an action to a resource type it can be scoped to
type ResourceTypeRef struct {
	Required   bool     `json:"required"`
	Conditions []string `json:"conditions,omitempty"`
}

// ResourceType is a row of the resource types table
type ResourceType struct {
	Name          string   `json:"name"`
	ARN           string   `json:"arn"` // normalized ARN template
	ConditionKeys []string `json:"conditionKeys,omitempty"`
}

// ConditionKey is a row of the condition keys table
type ConditionKey struct {
	Name        string `json:"name"` // "ec2:ResourceTag/${TagKey}"
	Description string `json:"description"`
	Type        string `json:"type"` // "String", "ARN", "Bool", ...
}

// ID returns the identifier used for the generated file and type name.
// A fix entry wins over the scraped prefix; the prefix itself is never replaced.
func (m *Module) ID() string {
	if m.Fix != nil && m.Fix.ID != "" {
		return m.Fix.ID
	}
	return m.Name
}

// TypeName returns the PascalCase name of the generated builder type
func (m *Module) TypeName() string {
	return PascalCase(m.ID())
}

// ActionNames returns the action names sorted lexically
func (m *Module) ActionNames() []string {
	return sortedKeys(m.Actions)
}

// ResourceTypeNames returns the resource type names sorted lexically
func (m *Module) ResourceTypeNames() []string {
	return sortedKeys(m.ResourceTypes)
}

// ConditionKeyNames returns the condition key names sorted lexically
func (m *Module) ConditionKeyNames() []string {
	return sortedKeys(m.ConditionKeys)
}

func newModule(slug string, page *Page) *Module {
	return &Module{
		Name:          page.ServicePrefix,
		Slug:          slug,
		URL:           page.URL,
		Title:         page.Title,
		Actions:       make(map[string]Action),
		ResourceTypes: make(map[string]ResourceType),
		ConditionKeys: make(map[string]ConditionKey),
	}
}

func sortedKeys[TV any](m map[string]TV) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
