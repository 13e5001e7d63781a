package pkg

import (
	"fmt"
)

// TestHelpers provides common test data and utilities for unit tests
// This reduces duplication across test files

// CreateTestModule creates a module whose fix identifier differs from its service
// prefix, the way the SES v2 page shares the "ses" prefix with SES v1
func CreateTestModule() *Module {
	return &Module{
		Name:  "ses",
		Slug:  "amazonsimpleemailservicev2",
		URL:   "https://docs.aws.amazon.com/service-authorization/latest/reference/list_amazonsimpleemailservicev2.html",
		Title: "Amazon Simple Email Service v2",
		Fix:   &FixEntry{ID: "ses-v2"},
		Actions: map[string]Action{
			"CreateEmailIdentity": {
				URL:         "https://docs.aws.amazon.com/ses/latest/APIReference-V2/API_CreateEmailIdentity.html",
				Description: "Grants permission to start the process of verifying an email identity",
				AccessLevel: AccessLevelWrite,
				ResourceTypes: map[string]ResourceTypeRef{
					"identity": {Required: true},
				},
				Conditions:       []string{"aws:RequestTag/${TagKey}", "aws:TagKeys"},
				DependentActions: []string{"ses:TagResource"},
			},
			"ListEmailIdentities": {
				Description: "Grants permission to list the email identities",
				AccessLevel: AccessLevelList,
			},
		},
		ResourceTypes: map[string]ResourceType{
			"identity": {
				Name:          "identity",
				ARN:           "arn:${Partition}:ses:${Region}:${Account}:identity/${IdentityName}",
				ConditionKeys: []string{"aws:ResourceTag/${TagKey}"},
			},
		},
		ConditionKeys: map[string]ConditionKey{
			"aws:TagKeys": {
				Name:        "aws:TagKeys",
				Description: "Filters access by the tag keys in the request",
				Type:        "ArrayOfString",
			},
			"ses:FeedbackAddress": {
				Name:        "ses:FeedbackAddress",
				Description: "Filters access by the feedback email address",
				Type:        "String",
			},
		},
	}
}

// CreateTestServicePage renders a service authorization page in the layout of the
// AWS documentation, with the given service prefix in the first <code> element
func CreateTestServicePage(title, prefix string) string {
	return fmt.Sprintf(testServicePageTemplate, title, prefix)
}

const testServicePageTemplate = `<!DOCTYPE html>
<html>
<head><title>Actions, resources, and condition keys</title></head>
<body>
<h1 class="topictitle">Actions, resources, and condition keys for %s</h1>
<p>The service (service prefix: <code class="code">%s</code>) provides the following
service-specific resources, actions, and condition context keys.</p>

<h2>Actions defined by the service</h2>
<div class="table-container"><div class="table-contents">
<table>
  <thead>
    <tr><th>Actions</th><th>Description</th><th>Access level</th><th>Resource types (*required)</th><th>Condition keys</th><th>Dependent actions</th></tr>
  </thead>
  <tr>
    <td rowspan="2"><a id="ses-CreateEmailIdentity" href="https://docs.aws.amazon.com/ses/latest/APIReference-V2/API_CreateEmailIdentity.html">CreateEmailIdentity</a></td>
    <td rowspan="2">Grants permission to start the process of
      verifying an email identity</td>
    <td rowspan="2">Write</td>
    <td><a href="#identity">identity*</a></td>
    <td></td>
    <td></td>
  </tr>
  <tr>
    <td></td>
    <td><p>aws:RequestTag/${TagKey}</p><p>aws:TagKeys</p></td>
    <td><p>ses:TagResource</p></td>
  </tr>
  <tr>
    <td><a href="https://docs.aws.amazon.com/ses/latest/APIReference-V2/API_ListEmailIdentities.html">ListEmailIdentities</a></td>
    <td>Grants permission to list the email identities</td>
    <td>List</td>
    <td></td>
    <td></td>
    <td></td>
  </tr>
  <tr>
    <td rowspan="2"><a href="https://docs.aws.amazon.com/ses/latest/APIReference-V2/API_TagResource.html">TagResource</a></td>
    <td rowspan="2">Grants permission to add tags to a resource</td>
    <td rowspan="2">Tagging</td>
    <td><a href="#configuration-set">configuration-set</a></td>
    <td></td>
    <td></td>
  </tr>
  <tr>
    <td><a href="#identity">identity</a></td>
    <td><p>aws:ResourceTag/${TagKey}</p></td>
    <td></td>
  </tr>
  <tr>
    <td>SCENARIO: a note spanning the table</td>
  </tr>
</table>
</div></div>

<h2>Resource types defined by the service</h2>
<div class="table-container"><div class="table-contents">
<table>
  <thead>
    <tr><th>Resource types</th><th>ARN</th><th>Condition keys</th></tr>
  </thead>
  <tr>
    <td><a id="identity">identity</a></td>
    <td><code class="code">arn:${Partition}:ses:${Region}:${Account}:identity/${IdentityName}</code></td>
    <td><p>aws:ResourceTag/${TagKey}</p></td>
  </tr>
  <tr>
    <td><a id="configuration-set">configuration-set</a></td>
    <td><code class="code">arn:${Partition}:ses:us-east-1:123456789012:configuration-set/${ConfigurationSetName}</code></td>
    <td></td>
  </tr>
</table>
</div></div>

<h2>Condition keys for the service</h2>
<div class="table-container"><div class="table-contents">
<table>
  <thead>
    <tr><th>Condition keys</th><th>Description</th><th>Type</th></tr>
  </thead>
  <tr>
    <td>aws:TagKeys</td>
    <td>Filters access by the tag keys in the request</td>
    <td>ArrayOfString</td>
  </tr>
  <tr>
    <td>ses:FeedbackAddress</td>
    <td>Filters access by the feedback email address</td>
    <td>String</td>
  </tr>
</table>
</div></div>
</body>
</html>
`

// TestIndexPage mimics the reference index linking every service page
const TestIndexPage = `<!DOCTYPE html>
<html>
<body>
<h1>Actions, resources, and condition keys for AWS services</h1>
<ul>
  <li><a href="./list_amazonsimpleemailservicev2.html">Amazon Simple Email Service v2</a></li>
  <li><a href="./list_amazonses.html#amazonses-actions-as-permissions">Amazon SES</a></li>
  <li><a href="list_amazonses.html">Amazon SES (again)</a></li>
  <li><a href="./reference_policies_condition-keys.html">Global condition keys</a></li>
  <li><a href="https://docs.aws.amazon.com/service-authorization/latest/reference/list_awslambda.html">AWS Lambda</a></li>
</ul>
</body>
</html>
`
