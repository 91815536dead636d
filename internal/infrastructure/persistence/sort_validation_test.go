package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string returns DESC", "", "DESC"},
		{"ASC uppercase returns ASC", "ASC", "ASC"},
		{"asc lowercase returns ASC", "asc", "ASC"},
		{"DESC uppercase returns DESC", "DESC", "DESC"},
		{"desc lowercase returns DESC", "DESC", "DESC"},
		{"invalid value returns DESC", "INVALID", "DESC"},
		{"sql injection attempt returns DESC", "ASC; DROP TABLE listings;--", "DESC"},
		{"whitespace only returns DESC", "   ", "DESC"},
		{"whitespace around ASC returns ASC", "  asc  ", "ASC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateSortOrder(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestValidateSortField(t *testing.T) {
	allowedFields := map[string]bool{
		"id":         true,
		"created_at": true,
		"updated_at": true,
		"house_name": true,
	}

	tests := []struct {
		name         string
		input        string
		allowedMap   map[string]bool
		defaultField string
		expected     string
	}{
		{"empty string returns default", "", allowedFields, "created_at", "created_at"},
		{"valid field returns field", "house_name", allowedFields, "created_at", "house_name"},
		{"valid field id returns field", "id", allowedFields, "created_at", "id"},
		{"invalid field returns default", "invalid_field", allowedFields, "created_at", "created_at"},
		{"sql injection attempt returns default", "id; DROP TABLE listings;--", allowedFields, "created_at", "created_at"},
		{"case sensitive - uppercase invalid", "HOUSE_NAME", allowedFields, "created_at", "created_at"},
		{"whitespace only returns default", "   ", allowedFields, "created_at", "created_at"},
		{"whitespace around valid field returns field", "  house_name  ", allowedFields, "created_at", "house_name"},
		{"field with spaces injection returns default", "house_name listings", allowedFields, "created_at", "created_at"},
		{"field with quotes injection returns default", "house_name'--", allowedFields, "created_at", "created_at"},
		{"empty default with valid field", "house_name", allowedFields, "", "house_name"},
		{"empty default with invalid field", "invalid", allowedFields, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateSortField(tt.input, tt.allowedMap, tt.defaultField)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestListingSortFields(t *testing.T) {
	for _, field := range []string{"id", "created_at", "updated_at", "receipt_start_date", "house_name"} {
		assert.True(t, ListingSortFields[field], "ListingSortFields should contain '%s'", field)
	}
	assert.False(t, ListingSortFields["house_manage_no; DROP TABLE listings"])
}

func TestSQLInjectionPrevention(t *testing.T) {
	injectionPayloads := []string{
		"id; DROP TABLE listings;--",
		"id' OR '1'='1",
		"id\"; DROP TABLE listings;--",
		"id UNION SELECT * FROM listings",
		"id ORDER BY 1",
		"id, (SELECT service_key FROM secrets)",
		"CASE WHEN 1=1 THEN id ELSE house_name END",
		"id/**/;DROP TABLE listings",
		"id\n; DROP TABLE listings",
		"id\t; DROP TABLE listings",
		"' OR ''='",
		"1; EXEC xp_cmdshell('dir')",
	}

	for _, payload := range injectionPayloads {
		t.Run("field: "+payload[:min(len(payload), 30)], func(t *testing.T) {
			result := ValidateSortField(payload, ListingSortFields, "receipt_start_date")
			assert.Equal(t, "receipt_start_date", result, "SQL injection payload should be rejected: %s", payload)
		})

		t.Run("order: "+payload[:min(len(payload), 30)], func(t *testing.T) {
			result := ValidateSortOrder(payload)
			assert.Equal(t, "DESC", result, "SQL injection payload should be rejected: %s", payload)
		})
	}
}
