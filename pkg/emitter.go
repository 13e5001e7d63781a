package pkg

import (
	"bytes"
	"encoding/json"
	"fmt"
	"go/format"
	"regexp"
	"sort"
	"strings"
	"text/template"
	"unicode"
)

const (
	DefaultPackageName  = "statements"
	DefaultPolicyImport = "github.com/udondan/iam-floyd-sub044/pkg/policy"
	DefaultGenerator    = "iamgen"
	IndexFileName       = "index.go"
)

var placeholderRegex = regexp.MustCompile(`\$\{([A-Za-z0-9]+)\}`)

// statementPlaceholders are filled from the statement defaults, not from method parameters
var statementPlaceholders = map[string]bool{
	"Partition": true,
	"Region":    true,
	"Account":   true,
}

// EmitOptions controls the generated package
type EmitOptions struct {
	PackageName  string // "statements"
	PolicyImport string // import path of the policy package
	Generator    string // name written into the generated header
}

func (o EmitOptions) withDefaults() EmitOptions {
	if o.PackageName == "" {
		o.PackageName = DefaultPackageName
	}
	if o.PolicyImport == "" {
		o.PolicyImport = DefaultPolicyImport
	}
	if o.Generator == "" {
		o.Generator = DefaultGenerator
	}
	return o
}

type moduleView struct {
	EmitOptions
	TypeName      string
	Title         string
	URL           string
	ServicePrefix string
	ActionsVar    string
	ActionsJSON   string
	Actions       []actionView
	Resources     []resourceView
	Conditions    []conditionView
}

type actionView struct {
	Method      string
	Literal     string // "ec2:RunInstances"
	Doc         string
	AccessLevel AccessLevel
	URL         string
	Conditions  []string
}

type resourceView struct {
	Method     string
	Name       string
	ARN        string
	ParamList  string
	Params     []paramView
	Conditions []string
}

type conditionView struct {
	Method    string
	Key       string
	Doc       string
	Type      string
	Operator  string
	ParamList string
	Params    []paramView
}

type paramView struct {
	Name        string // Go parameter name
	Placeholder string // placeholder it fills
}

var moduleTemplate = template.Must(template.New("module").Parse(`// Code generated by {{.Generator}}. DO NOT EDIT.
{{- if .URL}}
// Source: {{.URL}}
{{- end}}

package {{.PackageName}}

import "{{.PolicyImport}}"

const {{.ActionsVar}} = {{printf "%q" .ActionsJSON}}

// {{.TypeName}} adds statements for {{.Title}} (service prefix: {{.ServicePrefix}})
type {{.TypeName}} struct {
	statement     *policy.Statement
	servicePrefix string
	actions       string
}

// New{{.TypeName}} returns a {{.TypeName}} writing into statement
func New{{.TypeName}}(statement *policy.Statement) *{{.TypeName}} {
	return &{{.TypeName}}{
		statement:     statement,
		servicePrefix: {{printf "%q" .ServicePrefix}},
		actions:       {{.ActionsVar}},
	}
}

// Statement returns the statement the builder writes into
func (b *{{.TypeName}}) Statement() *policy.Statement {
	return b.statement
}

// ServicePrefix returns the IAM service prefix
func (b *{{.TypeName}}) ServicePrefix() string {
	return b.servicePrefix
}

// Actions returns the JSON encoded action definitions
func (b *{{.TypeName}}) Actions() string {
	return b.actions
}
{{range .Actions}}
// {{.Method}} {{.Doc}}
//
// Access level: {{.AccessLevel}}
{{- if .Conditions}}
//
// Possible conditions:
{{- range .Conditions}}
//   - {{.}}
{{- end}}
{{- end}}
{{- if .URL}}
//
// {{.URL}}
{{- end}}
func (b *{{$.TypeName}}) {{.Method}}() *{{$.TypeName}} {
	b.statement.AddAction({{printf "%q" .Literal}})
	return b
}
{{end}}
{{- range .Resources}}
// {{.Method}} adds a resource of type {{.Name}}
//
// ARN: {{.ARN}}
{{- if .Conditions}}
//
// Possible conditions:
{{- range .Conditions}}
//   - {{.}}
{{- end}}
{{- end}}
func (b *{{$.TypeName}}) {{.Method}}({{.ParamList}}) *{{$.TypeName}} {
	b.statement.AddResource({{printf "%q" .ARN}}, {{if .Params}}map[string]string{
{{- range .Params}}
		{{printf "%q" .Placeholder}}: {{.Name}},
{{- end}}
	}{{else}}nil{{end}})
	return b
}
{{end}}
{{- range .Conditions}}
// {{.Method}} {{.Doc}}
//
// Key: {{.Key}}
//
// Type: {{.Type}}, default operator: {{.Operator}}
func (b *{{$.TypeName}}) {{.Method}}({{.ParamList}}) *{{$.TypeName}} {
	b.statement.AddCondition(policy.Operator(operator, {{printf "%q" .Operator}}), {{if .Params}}policy.Expand({{printf "%q" .Key}}, map[string]string{
{{- range .Params}}
		{{printf "%q" .Placeholder}}: {{.Name}},
{{- end}}
	}){{else}}{{printf "%q" .Key}}{{end}}, value)
	return b
}
{{end}}`))

// EmitModule renders the Go source of one service builder and formats it.
// The builder type and file are named after the module ID, while every action
// string uses the scraped service prefix.
func EmitModule(module *Module, options EmitOptions, reporter *Reporter) ([]byte, error) {
	options = options.withDefaults()
	reporter = reporter.ForPage(module.Slug).ForService(module.Name)

	actionsJSON, err := json.Marshal(module.Actions)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal actions of %s: %w", module.Name, err)
	}

	typeName := module.TypeName()
	view := moduleView{
		EmitOptions:   options,
		TypeName:      typeName,
		Title:         module.Title,
		URL:           module.URL,
		ServicePrefix: module.Name,
		ActionsVar:    lowerFirst(typeName) + "Actions",
		ActionsJSON:   string(actionsJSON),
	}
	if view.Title == "" {
		view.Title = module.Name
	}

	methods := newMethodSet(reporter)
	for _, name := range module.ActionNames() {
		action := module.Actions[name]
		method := "To" + exportedName(name)
		if !methods.claim(method, name) {
			continue
		}
		view.Actions = append(view.Actions, actionView{
			Method:      method,
			Literal:     module.Name + ":" + name,
			Doc:         docSentence(action.Description, "adds the "+name+" action"),
			AccessLevel: action.AccessLevel,
			URL:         action.URL,
			Conditions:  actionConditions(action),
		})
	}

	for _, name := range module.ResourceTypeNames() {
		resourceType := module.ResourceTypes[name]
		method := "On" + exportedName(name)
		if !methods.claim(method, name) {
			continue
		}
		params := placeholderParams(resourceType.ARN)
		view.Resources = append(view.Resources, resourceView{
			Method:     method,
			Name:       name,
			ARN:        resourceType.ARN,
			ParamList:  paramList(params, ""),
			Params:     params,
			Conditions: resourceType.ConditionKeys,
		})
	}

	servicePrefix := module.Name + ":"
	for _, key := range module.ConditionKeyNames() {
		if !strings.HasPrefix(key, servicePrefix) {
			continue
		}
		conditionKey := module.ConditionKeys[key]
		method := "If" + exportedName(strings.TrimPrefix(key, servicePrefix))
		if !methods.claim(method, key) {
			continue
		}
		params := placeholderParams(key)
		view.Conditions = append(view.Conditions, conditionView{
			Method:    method,
			Key:       key,
			Doc:       docSentence(conditionKey.Description, "adds a condition on "+key),
			Type:      conditionKey.Type,
			Operator:  defaultOperator(conditionKey.Type),
			ParamList: paramList(params, "value string, operator ...string"),
			Params:    params,
		})
	}

	return render(moduleTemplate, view)
}

type methodSet struct {
	seen     map[string]string
	reporter *Reporter
}

func newMethodSet(reporter *Reporter) *methodSet {
	return &methodSet{seen: make(map[string]string), reporter: reporter}
}

// claim reserves a method name; a clash between two documented names keeps the first
func (m *methodSet) claim(method, source string) bool {
	if previous, ok := m.seen[method]; ok {
		m.reporter.Warn(DiagnosticParseError, source,
			fmt.Sprintf("method %s already generated for %s, skipping", method, previous))
		return false
	}
	m.seen[method] = source
	return true
}

// placeholderParams returns one parameter per distinct placeholder that is not
// filled from the statement defaults
func placeholderParams(template string) []paramView {
	var params []paramView
	seenPlaceholders := make(map[string]bool)
	usedNames := make(map[string]bool)
	for _, match := range placeholderRegex.FindAllStringSubmatch(template, -1) {
		placeholder := match[1]
		if statementPlaceholders[placeholder] || seenPlaceholders[placeholder] {
			continue
		}
		seenPlaceholders[placeholder] = true
		name := parameterName(placeholder)
		for i := 2; usedNames[name]; i++ {
			name = fmt.Sprintf("%s%d", parameterName(placeholder), i)
		}
		usedNames[name] = true
		params = append(params, paramView{Name: name, Placeholder: placeholder})
	}
	return params
}

func paramList(params []paramView, tail string) string {
	parts := make([]string, 0, len(params)+1)
	for _, p := range params {
		parts = append(parts, p.Name+" string")
	}
	if tail != "" {
		parts = append(parts, tail)
	}
	return strings.Join(parts, ", ")
}

// actionConditions lists the condition keys of an action, global and per resource type
func actionConditions(action Action) []string {
	seen := make(map[string]bool)
	var conditions []string
	add := func(keys []string) {
		for _, key := range keys {
			if !seen[key] {
				seen[key] = true
				conditions = append(conditions, key)
			}
		}
	}
	add(action.Conditions)
	for _, name := range sortedKeys(action.ResourceTypes) {
		add(action.ResourceTypes[name].Conditions)
	}
	return conditions
}

// docSentence turns "Grants permission to create a widget" into "grants permission to create a widget"
// so it reads after the method name
func docSentence(description, fallback string) string {
	if description == "" {
		return fallback
	}
	runes := []rune(description)
	if len(runes) > 1 && unicode.IsUpper(runes[0]) && unicode.IsLower(runes[1]) {
		return lowerFirst(description)
	}
	return description
}

// defaultOperator picks the condition operator for a documented condition key type
func defaultOperator(keyType string) string {
	switch strings.TrimPrefix(keyType, "ArrayOf") {
	case "ARN":
		return "ArnLike"
	case "Bool":
		return "Bool"
	case "Numeric":
		return "NumericEquals"
	case "Date":
		return "DateEquals"
	case "IPAddress":
		return "IpAddress"
	default:
		return "StringLike"
	}
}

type indexView struct {
	EmitOptions
	Entries []IndexEntry
}

var indexTemplate = template.Must(template.New("index").Parse(`// Code generated by {{.Generator}}. DO NOT EDIT.

package {{.PackageName}}

import "{{.PolicyImport}}"

// IndexEntry describes one generated service builder
type IndexEntry struct {
	ID     string // identifier of the generated file and type
	Prefix string // IAM service prefix
	Name   string // builder type name
	New    func(statement *policy.Statement) any
}

// Index lists every generated builder, sorted by identifier
var Index = []IndexEntry{
{{- range .Entries}}
	{ID: {{printf "%q" .ID}}, Prefix: {{printf "%q" .Prefix}}, Name: {{printf "%q" .Name}}, New: func(statement *policy.Statement) any { return New{{.Name}}(statement) }},
{{- end}}
}

// LookupIndex returns the index entry of an identifier
func LookupIndex(id string) (IndexEntry, bool) {
	for _, entry := range Index {
		if entry.ID == id {
			return entry, true
		}
	}
	return IndexEntry{}, false
}
`))

// EmitIndex renders the aggregate index file. Entries are sorted by ID whatever
// order they come in, so regenerating yields the same file.
func EmitIndex(entries []IndexEntry, options EmitOptions) ([]byte, error) {
	sorted := make([]IndexEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	return render(indexTemplate, indexView{EmitOptions: options.withDefaults(), Entries: sorted})
}

func render(tmpl *template.Template, data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render %s template: %w", tmpl.Name(), err)
	}
	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to format generated %s source: %w", tmpl.Name(), err)
	}
	return formatted, nil
}
