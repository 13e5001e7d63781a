package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPascalCase(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"ec2", "Ec2"},
		{"ses-v2", "SesV2"},
		{"aws-marketplace-catalog", "AwsMarketplaceCatalog"},
		{"aws_marketplace_catalog", "AwsMarketplaceCatalog"},
		{"kafka-cluster", "KafkaCluster"},
		{"execute-api", "ExecuteApi"},
		{"a4b", "A4b"},
		{"4b", "X4b"},
		{"", "X"},
		{"route53.resolver", "Route53resolver"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, PascalCase(tt.input))
		})
	}
}

func TestPascalCase_IsDeterministic(t *testing.T) {
	assert.Equal(t, PascalCase("elasticloadbalancing-v2"), PascalCase("elasticloadbalancing-v2"))
}

func TestExportedName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"CreateWidget", "CreateWidget"},
		{"configuration-set", "ConfigurationSet"},
		{"ResourceTag/${TagKey}", "ResourceTag"},
		{"ResourceTag/${TagKey}/Value", "ResourceTagValue"},
		{"s3:prefix", "S3Prefix"},
		{"3dModel", "X3dModel"},
		{"${Name}", "X"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, exportedName(tt.input))
		})
	}
}

func TestParameterName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"InstanceId", "instanceId"},
		{"TagKey", "tagKey"},
		{"Type", "typeValue"},
		{"Func", "funcValue"},
		{"Value", "valueValue"},
		{"Operator", "operatorValue"},
		{"B", "bValue"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parameterName(tt.input))
		})
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "ses-v2.go", fileName("ses-v2"))
	assert.Equal(t, "aws-marketplace-catalog.go", fileName("aws_marketplace_catalog"))
	assert.Equal(t, "ec2.go", fileName("EC2"))
	assert.Equal(t, "route53.resolver.go", fileName("route53.resolver"))
}
