package pkg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePage_ServicePage(t *testing.T) {
	page, err := ParsePage(strings.NewReader(CreateTestServicePage("Amazon Simple Email Service v2", "ses")), "list_amazonsimpleemailservicev2.html")

	require.NoError(t, err)
	assert.Equal(t, "ses", page.ServicePrefix)
	assert.Equal(t, "Amazon Simple Email Service v2", page.Title)
	assert.Equal(t, "list_amazonsimpleemailservicev2.html", page.URL)

	var actionRowSizes []int
	for _, row := range page.ActionRows {
		actionRowSizes = append(actionRowSizes, len(row.Cells))
	}
	assert.Equal(t, []int{0, 6, 3, 6, 6, 3, 1}, actionRowSizes)

	first := page.ActionRows[1]
	assert.Equal(t, "CreateEmailIdentity", first.Cells[0].Text)
	assert.Equal(t, "https://docs.aws.amazon.com/ses/latest/APIReference-V2/API_CreateEmailIdentity.html", first.Cells[0].Link)
	assert.Equal(t, "Grants permission to start the process of verifying an email identity", first.Cells[1].Text)
	assert.Equal(t, "identity*", first.Cells[3].Text)

	continuation := page.ActionRows[2]
	assert.Equal(t, []string{"aws:RequestTag/${TagKey}", "aws:TagKeys"}, continuation.Cells[1].Values())
	assert.Equal(t, []string{"ses:TagResource"}, continuation.Cells[2].Values())

	require.Len(t, page.ResourceTypeRows, 3)
	assert.Equal(t, "arn:${Partition}:ses:${Region}:${Account}:identity/${IdentityName}", page.ResourceTypeRows[1].Cells[1].Text)
	require.Len(t, page.ConditionKeyRows, 3)
	assert.Equal(t, "ses:FeedbackAddress", page.ConditionKeyRows[2].Cells[0].Text)
}

func TestParsePage_EmptyPrefix(t *testing.T) {
	page, err := ParsePage(strings.NewReader(CreateTestServicePage("Broken Service", "")), "")

	require.NoError(t, err)
	assert.Equal(t, "", page.ServicePrefix)
}

func TestParsePage_NoTables(t *testing.T) {
	_, err := ParsePage(strings.NewReader(`<html><body><h1>Nothing</h1><code>svc</code></body></html>`), "")

	assert.ErrorIs(t, err, ErrNoActionsTable)
}

func TestParsePage_UnlabelledTableIsActionsTable(t *testing.T) {
	doc := `<html><body><code>svc</code>
<div class="table-container"><table>
<tr><td>GetThing</td><td>Grants permission to get a thing</td><td>Read</td><td></td><td></td><td></td></tr>
</table></div>
<div class="table-container"><table>
<tr><th>Condition keys</th><th>Description</th><th>Type</th></tr>
<tr><td>svc:Key</td><td>Filters access by key</td><td>String</td></tr>
</table></div>
</body></html>`

	page, err := ParsePage(strings.NewReader(doc), "")

	require.NoError(t, err)
	require.Len(t, page.ActionRows, 1)
	assert.Equal(t, "GetThing", page.ActionRows[0].Cells[0].Text)
	assert.Len(t, page.ConditionKeyRows, 2)
	assert.Empty(t, page.ResourceTypeRows)
}

func TestParsePage_TablesOutsideContainersAreIgnored(t *testing.T) {
	doc := `<html><body><code>svc</code>
<table><tr><td>GetThing</td><td>desc</td><td>Read</td><td></td><td></td><td></td></tr></table>
</body></html>`

	_, err := ParsePage(strings.NewReader(doc), "")

	assert.ErrorIs(t, err, ErrNoActionsTable)
}

func TestPageTitle(t *testing.T) {
	tests := []struct {
		heading string
		want    string
	}{
		{"Actions, resources, and condition keys for Amazon EC2", "Amazon EC2"},
		{"Amazon EC2", "Amazon EC2"},
	}

	for _, tt := range tests {
		t.Run(tt.heading, func(t *testing.T) {
			assert.Equal(t, tt.want, pageTitle(tt.heading))
		})
	}
}

func TestNormalizeWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", normalizeWhitespace("  a\n\t b   c \n"))
	assert.Equal(t, "", normalizeWhitespace(" \n "))
}
