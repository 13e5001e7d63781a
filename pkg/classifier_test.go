package pkg

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestClassifyActionRows_HeaderRowWithContinuation(t *testing.T) {
	rows := []Row{
		{Cells: []Cell{
			linkCell("CreateWidget[permission only]", "https://example.com/API_CreateWidget.html"),
			TextCell("Grants permission to create a widget"),
			TextCell("Write"),
			TextCell("widget"),
			TextCell(""),
			TextCell(""),
		}},
		NewRow("instance*", "aws:ResourceTag/${TagKey}", ""),
	}

	actions := ClassifyActionRows(rows, nil)

	require.Len(t, actions, 1)
	action, ok := actions["CreateWidget"]
	require.True(t, ok)
	assert.Equal(t, AccessLevelWrite, action.AccessLevel)
	assert.Equal(t, "https://example.com/API_CreateWidget.html", action.URL)
	assert.Equal(t, "Grants permission to create a widget", action.Description)
	assert.Equal(t, map[string]ResourceTypeRef{
		"widget":   {Required: false},
		"instance": {Required: true, Conditions: []string{"aws:ResourceTag/${TagKey}"}},
	}, action.ResourceTypes)
	assert.Empty(t, action.Conditions)
}

func TestClassifyActionRows_RowShapes(t *testing.T) {
	tests := []struct {
		name        string
		rows        []Row
		wantActions []string
		wantWarns   int
		wantKind    DiagnosticKind
	}{
		{
			name: "six cells start an action",
			rows: []Row{
				NewRow("ListWidgets", "Grants permission to list widgets", "List", "", "", ""),
			},
			wantActions: []string{"ListWidgets"},
		},
		{
			name: "two cells are skipped with a warning",
			rows: []Row{
				NewRow("ListWidgets", "Grants permission to list widgets", "List", "", "", ""),
				NewRow("stray", "row"),
			},
			wantActions: []string{"ListWidgets"},
			wantWarns:   1,
			wantKind:    DiagnosticUnexpectedRow,
		},
		{
			name: "seven cells are skipped with a warning",
			rows: []Row{
				NewRow("A", "B", "List", "", "", "", "G"),
			},
			wantWarns: 1,
			wantKind:  DiagnosticUnexpectedRow,
		},
		{
			name: "scenario rows are skipped silently",
			rows: []Row{
				NewRow("SCENARIO: launch an instance"),
			},
		},
		{
			name: "empty rows are skipped silently",
			rows: []Row{
				{Cells: []Cell{}},
				NewRow("", ""),
			},
		},
		{
			name: "continuation without an action is an orphan",
			rows: []Row{
				NewRow("widget*", "", ""),
			},
			wantWarns: 1,
			wantKind:  DiagnosticOrphanRow,
		},
		{
			name: "unknown access level drops the action and orphans its continuation",
			rows: []Row{
				NewRow("DoThing", "Grants permission to do a thing", "Maybe", "", "", ""),
				NewRow("widget*", "", ""),
			},
			wantWarns: 2,
			wantKind:  DiagnosticParseError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reporter, logs := newObservedReporter()

			actions := ClassifyActionRows(tt.rows, reporter)

			assert.ElementsMatch(t, tt.wantActions, sortedKeys(actions))
			assert.Equal(t, tt.wantWarns, logs.FilterLevelExact(zapcore.WarnLevel).Len())
			assert.Equal(t, tt.wantWarns, reporter.Diagnostics.Len())
			if tt.wantKind != "" {
				assert.Equal(t, 1, reporter.Diagnostics.Count(tt.wantKind))
			}
		})
	}
}

func TestClassifyActionRows_UnexpectedRowIsLogged(t *testing.T) {
	reporter, logs := newObservedReporter()

	ClassifyActionRows([]Row{NewRow("one", "two")}, reporter.ForPage("amazonec2").ForService("ec2"))

	entries := logs.FilterMessage("unexpected number of fields").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "unexpected_row", fields["kind"])
	assert.Equal(t, "amazonec2", fields["slug"])
	assert.Equal(t, "ec2", fields["service"])
	assert.Equal(t, "one two", fields["subject"])
	assert.Equal(t, int64(2), fields["fields"])
}

func TestClassifyActionRows_ContinuationAttachesToLastAction(t *testing.T) {
	rows := []Row{
		NewRow("RunInstances", "Grants permission to launch instances", "Write", "image", "", ""),
		{Cells: []Cell{TextCell(""), paragraphCell("aws:RequestTag/${TagKey}", "aws:TagKeys"), TextCell("")}},
		{Cells: []Cell{TextCell("instance*"), paragraphCell("ec2:InstanceType"), paragraphCell("iam:PassRole")}},
		NewRow("instance*", "ec2:Tenancy", ""),
		NewRow("StopInstances", "Grants permission to stop instances", "Write", "instance*", "", ""),
	}

	actions := ClassifyActionRows(rows, nil)

	require.Len(t, actions, 2)
	run := actions["RunInstances"]
	assert.Equal(t, []string{"aws:RequestTag/${TagKey}", "aws:TagKeys"}, run.Conditions)
	assert.Equal(t, []string{"iam:PassRole"}, run.DependentActions)
	assert.Equal(t, ResourceTypeRef{Required: true, Conditions: []string{"ec2:InstanceType", "ec2:Tenancy"}}, run.ResourceTypes["instance"])
	assert.Equal(t, ResourceTypeRef{}, run.ResourceTypes["image"])

	stop := actions["StopInstances"]
	assert.Equal(t, map[string]ResourceTypeRef{"instance": {Required: true}}, stop.ResourceTypes)
	assert.Empty(t, stop.DependentActions)
}

func TestClassifyActionRows_DuplicateActionReplacesEarlier(t *testing.T) {
	rows := []Row{
		NewRow("GetWidget", "first", "Read", "widget", "", ""),
		NewRow("GetWidget", "second", "List", "", "", ""),
	}

	actions := ClassifyActionRows(rows, nil)

	require.Len(t, actions, 1)
	assert.Equal(t, "second", actions["GetWidget"].Description)
	assert.Equal(t, AccessLevelList, actions["GetWidget"].AccessLevel)
	assert.Empty(t, actions["GetWidget"].ResourceTypes)
}

func TestClassifyActionRows_IsDeterministic(t *testing.T) {
	rows := []Row{
		NewRow("CreateWidget [permission only]", "Grants permission to create a widget", "Write", "widget*", "aws:TagKeys", "widgets:TagResource"),
		NewRow("gadget", "widgets:GadgetType", ""),
		NewRow("DeleteWidget", "Grants permission to delete a widget", "Write", "widget*", "", ""),
		NewRow("TagWidget", "Grants permission to tag a widget", "Tagging", "widget", "", ""),
	}

	first := ClassifyActionRows(rows, nil)
	second := ClassifyActionRows(rows, nil)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("classification differs between runs (-first +second):\n%s", diff)
	}
}

func TestClassifyActionRows_DoesNotMutateInput(t *testing.T) {
	build := func() []Row {
		return []Row{
			{Cells: []Cell{TextCell("GetWidget"), TextCell("desc"), TextCell("Read"), TextCell("widget"), paragraphCell("a:b"), TextCell("")}},
			{Cells: []Cell{TextCell("widget"), paragraphCell("a:c"), TextCell("")}},
		}
	}
	rows := build()

	actions := ClassifyActionRows(rows, nil)

	if diff := cmp.Diff(build(), rows); diff != "" {
		t.Errorf("input rows were modified (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"a:b", "a:c"}, actions["GetWidget"].ResourceTypes["widget"].Conditions)
}

func TestActionName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"CreateWidget", "CreateWidget"},
		{"CreateWidget[permission only]", "CreateWidget"},
		{"CreateWidget [permission only]", "CreateWidget"},
		{"CreateWidget [permission only] [deprecated]", "CreateWidget"},
		{"  CreateWidget  ", "CreateWidget"},
		{"[permission only]", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, actionName(tt.input))
		})
	}
}

func TestParseResourceTypeName(t *testing.T) {
	tests := []struct {
		input        string
		wantName     string
		wantRequired bool
	}{
		{"instance*", "instance", true},
		{"instance", "instance", false},
		{"*", "", true},
		// the marker is detected anywhere, but only the last character is removed
		{"inst*ance", "inst*anc", true},
		{"instance**", "instance*", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			name, required := parseResourceTypeName(tt.input)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantRequired, required)
		})
	}
}

func TestClassifyResourceTypeRows(t *testing.T) {
	reporter, logs := newObservedReporter()
	rows := []Row{
		{Cells: []Cell{}},
		{Cells: []Cell{TextCell("instance"), TextCell("arn:${Partition}:ec2:${Region}:${Account}:instance/${InstanceId}"), paragraphCell("aws:ResourceTag/${TagKey}", "ec2:Tenancy")}},
		NewRow("volume", "arn:${Partition}:ec2:${Region}:${Account}:volume/${VolumeId}", ""),
		NewRow("broken", "row"),
	}

	resourceTypes := ClassifyResourceTypeRows(rows, reporter)

	assert.Equal(t, map[string]ResourceType{
		"instance": {
			Name:          "instance",
			ARN:           "arn:${Partition}:ec2:${Region}:${Account}:instance/${InstanceId}",
			ConditionKeys: []string{"aws:ResourceTag/${TagKey}", "ec2:Tenancy"},
		},
		"volume": {
			Name: "volume",
			ARN:  "arn:${Partition}:ec2:${Region}:${Account}:volume/${VolumeId}",
		},
	}, resourceTypes)
	assert.Equal(t, 1, logs.Len())
	assert.Equal(t, 1, reporter.Diagnostics.Count(DiagnosticUnexpectedRow))
}

func TestClassifyConditionKeyRows(t *testing.T) {
	rows := []Row{
		NewRow("ec2:Tenancy", "Filters access by the tenancy of the instance", "String"),
		NewRow("", "no name", "String"),
	}

	keys := ClassifyConditionKeyRows(rows, nil)

	assert.Equal(t, map[string]ConditionKey{
		"ec2:Tenancy": {Name: "ec2:Tenancy", Description: "Filters access by the tenancy of the instance", Type: "String"},
	}, keys)
}
