package pkg

import (
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws/arn"
	"go.uber.org/zap"
)

const (
	RegionPlaceholder    = "${Region}"
	AccountPlaceholder   = "${Account}"
	PartitionPlaceholder = "${Partition}"
)

const (
	arnPlaceholder = `\$\{[A-Za-z0-9]+\}`
	arnSegment     = `(?:` + arnPlaceholder + `|[A-Za-z0-9_.*@+=,-])+`
)

// arnRegex accepts the three ARN shapes found in the documentation, any part of
// which may be a placeholder:
// arn:${Partition}:sqs:${Region}:${Account}:${QueueName}
// arn:${Partition}:ec2:${Region}:${Account}:instance/${InstanceId}
// arn:${Partition}:lambda:${Region}:${Account}:function:${FunctionName}
// The resource section may start with '/': arn:${Partition}:apigateway:${Region}::/restapis/${RestApiId}
var arnRegex = regexp.MustCompile(
	`^arn:(?:` + arnPlaceholder + `|[a-z][a-z-]*):(?:` + arnPlaceholder + `|[a-z0-9][a-z0-9.-]*)` +
		`:` + regexp.QuoteMeta(RegionPlaceholder) + `:` + regexp.QuoteMeta(AccountPlaceholder) +
		`:/?` + arnSegment + `(?:[/:]` + arnSegment + `)*$`)

// NormalizeARN rewrites the region and account sections of an ARN template to
// placeholders, whatever the documentation put there. The resource section may
// itself contain ':'. Input that is not a six-section ARN is returned trimmed.
func NormalizeARN(raw string) string {
	raw = strings.TrimSpace(raw)
	parsed, err := arn.Parse(raw)
	if err != nil {
		return raw
	}
	parsed.Region = RegionPlaceholder
	parsed.AccountID = AccountPlaceholder
	return parsed.String()
}

// ValidateARN reports whether a normalized ARN template has a known shape
func ValidateARN(template string) bool {
	return arnRegex.MatchString(template)
}

// CheckARN normalizes an ARN template and validates it. A template of unknown shape
// is reported but still returned, as it usually points at a documentation mistake.
func CheckARN(service, resourceType, raw string, reporter *Reporter) string {
	normalized := NormalizeARN(raw)
	if !ValidateARN(normalized) {
		reporter.Warn(DiagnosticInvalidARN, resourceType, "ARN does not match the expected pattern",
			zap.String("resource_type", resourceType),
			zap.String("arn", normalized),
			zap.String("service_prefix", service))
	}
	return normalized
}
