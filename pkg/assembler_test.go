package pkg

import (
	"errors"
	"testing"

	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func loadDefaultFixes(t *testing.T) FixRegistry {
	t.Helper()
	fixes, err := DefaultFixRegistry()
	require.NoError(t, err)
	return fixes
}

func TestAssemblePage_AppliesFixWithoutTouchingPrefix(t *testing.T) {
	reporter, _ := newObservedReporter()
	page := CreateTestServicePage("Amazon Simple Email Service v2", "ses")

	module, err := AssemblePage("amazonsimpleemailservicev2", "https://example.com/list_amazonsimpleemailservicev2.html", []byte(page), loadDefaultFixes(t), reporter)

	require.NoError(t, err)
	assert.Equal(t, "ses", module.Name)
	assert.Equal(t, "ses-v2", module.ID())
	assert.Equal(t, "SesV2", module.TypeName())
	assert.Equal(t, "amazonsimpleemailservicev2", module.Slug)
	assert.Equal(t, "Amazon Simple Email Service v2", module.Title)
	assert.Equal(t, "https://example.com/list_amazonsimpleemailservicev2.html", module.URL)

	assert.Equal(t, []string{"CreateEmailIdentity", "ListEmailIdentities", "TagResource"}, module.ActionNames())
	create := module.Actions["CreateEmailIdentity"]
	assert.Equal(t, AccessLevelWrite, create.AccessLevel)
	assert.Equal(t, map[string]ResourceTypeRef{"identity": {Required: true}}, create.ResourceTypes)
	assert.Equal(t, []string{"aws:RequestTag/${TagKey}", "aws:TagKeys"}, create.Conditions)
	assert.Equal(t, []string{"ses:TagResource"}, create.DependentActions)

	tag := module.Actions["TagResource"]
	assert.Equal(t, AccessLevelTagging, tag.AccessLevel)
	assert.Equal(t, map[string]ResourceTypeRef{
		"configuration-set": {},
		"identity":          {Conditions: []string{"aws:ResourceTag/${TagKey}"}},
	}, tag.ResourceTypes)

	assert.Equal(t, "arn:${Partition}:ses:${Region}:${Account}:configuration-set/${ConfigurationSetName}", module.ResourceTypes["configuration-set"].ARN)
	assert.Equal(t, []string{"aws:TagKeys", "ses:FeedbackAddress"}, module.ConditionKeyNames())
	assert.Zero(t, reporter.Diagnostics.Len())
}

func TestAssemblePage_WithoutFixUsesPrefix(t *testing.T) {
	page := CreateTestServicePage("Amazon SES", "ses")

	module, err := AssemblePage("list_amazonses.html", "", []byte(page), loadDefaultFixes(t), nil)

	require.NoError(t, err)
	assert.Nil(t, module.Fix)
	assert.Equal(t, "ses", module.ID())
	assert.Equal(t, "Ses", module.TypeName())
	assert.Equal(t, "amazonses", module.Slug)
}

func TestAssemblePage_SamePrefixDifferentIdentifiers(t *testing.T) {
	fixes := loadDefaultFixes(t)
	v1, err := AssemblePage("amazonses", "", []byte(CreateTestServicePage("Amazon SES", "ses")), fixes, nil)
	require.NoError(t, err)
	v2, err := AssemblePage("amazonsimpleemailservicev2", "", []byte(CreateTestServicePage("Amazon SES v2", "ses")), fixes, nil)
	require.NoError(t, err)

	assert.Equal(t, v1.Name, v2.Name)
	assert.NotEqual(t, v1.ID(), v2.ID())
	assert.NotEqual(t, v1.TypeName(), v2.TypeName())
}

func TestAssemblePage_EmptyPrefixIsRejected(t *testing.T) {
	reporter, logs := newObservedReporter()
	page := CreateTestServicePage("Broken Service", "")

	module, err := AssemblePage("amazonbroken", "list_amazonbroken.html", []byte(page), loadDefaultFixes(t), reporter)

	require.Error(t, err)
	assert.Nil(t, module)
	assert.ErrorIs(t, err, ErrEmptyServicePrefix)
	var pageErr *PageError
	require.True(t, errors.As(err, &pageErr))
	assert.Equal(t, "amazonbroken", pageErr.Slug)

	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
	assert.Equal(t, 1, reporter.Diagnostics.Count(DiagnosticEmptyPrefix))
}

func TestAssemblePage_UnparsablePage(t *testing.T) {
	_, err := AssemblePage("amazonempty", "", []byte("<html><body><code>svc</code></body></html>"), loadDefaultFixes(t), nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoActionsTable)
	var pageErr *PageError
	assert.True(t, errors.As(err, &pageErr))
}

func TestAssemble_InvalidARNIsKept(t *testing.T) {
	reporter, _ := newObservedReporter()
	page := &Page{
		ServicePrefix: "widgets",
		ActionRows:    []Row{NewRow("GetWidget", "Grants permission to get a widget", "Read", "widget*", "", "")},
		ResourceTypeRows: []Row{
			NewRow("widget", "arn:${Partition}:widgets:eu-west-1:123456789012:widget/<WidgetId>", ""),
		},
	}

	module, err := Assemble("widgets", page, FixRegistry{}, reporter)

	require.NoError(t, err)
	assert.Equal(t, "arn:${Partition}:widgets:${Region}:${Account}:widget/<WidgetId>", module.ResourceTypes["widget"].ARN)
	assert.Equal(t, 1, reporter.Diagnostics.Count(DiagnosticInvalidARN))
}

func TestAssemble_NoActionsIsReported(t *testing.T) {
	reporter, _ := newObservedReporter()

	module, err := Assemble("widgets", &Page{ServicePrefix: "widgets"}, FixRegistry{}, reporter)

	require.NoError(t, err)
	assert.Empty(t, module.Actions)
	assert.Equal(t, 1, reporter.Diagnostics.Count(DiagnosticParseError))
}

func TestAssembleFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	stub := gostub.Stub(&inputFs, fs)
	defer stub.Reset()
	require.NoError(t, afero.WriteFile(fs, "/pages/list_amazonsimpleemailservicev2.html", []byte(CreateTestServicePage("Amazon SES v2", "ses")), 0644))

	module, err := AssembleFile("/pages/list_amazonsimpleemailservicev2.html", loadDefaultFixes(t), nil)

	require.NoError(t, err)
	assert.Equal(t, "amazonsimpleemailservicev2", module.Slug)
	assert.Equal(t, "ses-v2", module.ID())

	_, err = AssembleFile("/pages/missing.html", loadDefaultFixes(t), nil)
	assert.Error(t, err)
}
