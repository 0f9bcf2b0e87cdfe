package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"records"},
		"properties": map[string]interface{}{
			"records": map[string]interface{}{
				"type":     "array",
				"minItems": 1,
				"items": map[string]interface{}{
					"type":                 "object",
					"required":             []interface{}{"entity", "parameter"},
					"additionalProperties": false,
					"properties": map[string]interface{}{
						"entity":    map[string]interface{}{"type": "string", "minLength": 1},
						"parameter": map[string]interface{}{"type": "string", "minLength": 1},
					},
				},
			},
		},
	}
}

type record struct {
	Entity    string `json:"entity"`
	Parameter string `json:"parameter"`
}

func TestValidator_Validate(t *testing.T) {
	v, err := NewValidator(recordSchema())
	require.NoError(t, err)

	tests := []struct {
		name        string
		document    interface{}
		valid       bool
		errorFields []string
	}{
		{
			name:     "valid struct document",
			document: map[string]interface{}{"records": []record{{Entity: "Flipkart", Parameter: "GMV"}}},
			valid:    true,
		},
		{
			name:        "missing top level field",
			document:    map[string]interface{}{},
			errorFields: []string{"records"},
		},
		{
			name:        "empty list",
			document:    map[string]interface{}{"records": []record{}},
			errorFields: []string{"records"},
		},
		{
			name: "missing nested field",
			document: map[string]interface{}{"records": []interface{}{
				map[string]interface{}{"entity": "Amazon"},
			}},
			errorFields: []string{"records.0.parameter"},
		},
		{
			name: "wrong type and empty string",
			document: map[string]interface{}{"records": []interface{}{
				map[string]interface{}{"entity": 42, "parameter": ""},
			}},
			errorFields: []string{"records.0.entity", "records.0.parameter"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := v.Validate(tt.document)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, result.Valid)

			var fields []string
			for _, e := range result.Errors {
				fields = append(fields, e.Field)
				assert.NotEmpty(t, e.Code)
				assert.NotEmpty(t, e.Message)
			}
			assert.ElementsMatch(t, tt.errorFields, fields)
		})
	}
}

func TestValidator_RequiredCode(t *testing.T) {
	result, err := ValidateDocument(recordSchema(), map[string]interface{}{})
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "REQUIRED", result.Errors[0].Code)
	assert.True(t, result.HasErrors("records"))
}

func TestNewValidator_BadSchema(t *testing.T) {
	_, err := NewValidator(map[string]interface{}{"type": "strng"})
	assert.Error(t, err)
}

func TestValidateDocument_EmptySchemaAcceptsAnything(t *testing.T) {
	result, err := ValidateDocument(nil, map[string]interface{}{"anything": true})
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestValidationResult_Helpers(t *testing.T) {
	vr := &ValidationResult{
		Errors: []ValidationError{
			{Field: "records.0.entity", Message: "Invalid type.", Code: "INVALID_TYPE"},
			{Field: "records.1.parameter", Message: "parameter is required", Code: "REQUIRED"},
			{Field: "query", Message: "String length must be greater than or equal to 1", Code: "STRING_GTE"},
		},
	}

	assert.Equal(t, []string{
		"records.0.entity: Invalid type.",
		"records.1.parameter: parameter is required",
		"query: String length must be greater than or equal to 1",
	}, vr.GetErrorMessages())

	assert.True(t, vr.HasErrors("query"))
	assert.False(t, vr.HasErrors("records"))
	assert.Len(t, vr.GetErrorsForField("records"), 2)
	assert.Empty(t, vr.GetErrorsForField("recordsX"))
}

func TestValidateActivityNaming(t *testing.T) {
	assert.NoError(t, ValidateActivityNaming("query.intent.build"))
	assert.Error(t, ValidateActivityNaming("build-query-result"))
	assert.Error(t, ValidateActivityNaming("Query.Intent.Build"))
}
