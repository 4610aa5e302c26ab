// internal/service/member_service_test.go
package service

import (
	"testing"

	"loyaltystudio-service/internal/domain/member"

	"github.com/stretchr/testify/assert"
)

func TestValidateImportHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  []string
		wantErr bool
	}{
		{"exact header", []string{"email", "name", "initialPoints"}, false},
		{"case insensitive", []string{"Email", "NAME", "initialpoints"}, false},
		{"optional tier column", []string{"email", "name", "initialPoints", "tierName"}, false},
		{"padded cells", []string{" email", "name ", " initialPoints "}, false},
		{"too few columns", []string{"email", "name"}, true},
		{"wrong column order", []string{"name", "email", "initialPoints"}, true},
		{"wrong column name", []string{"email", "fullName", "initialPoints"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateImportHeader(tt.header)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseImportRow(t *testing.T) {
	t.Run("full row with tier", func(t *testing.T) {
		row := parseImportRow([]string{"a@example.com", "Ada", "150", "Gold"}, true)
		assert.Equal(t, member.ImportRow{
			Email:         "a@example.com",
			Name:          "Ada",
			InitialPoints: "150",
			TierName:      "Gold",
		}, row)
	})

	t.Run("tier column ignored when header has none", func(t *testing.T) {
		row := parseImportRow([]string{"a@example.com", "Ada", "150", "Gold"}, false)
		assert.Empty(t, row.TierName)
	})

	t.Run("short row fills what it can", func(t *testing.T) {
		row := parseImportRow([]string{"a@example.com"}, false)
		assert.Equal(t, "a@example.com", row.Email)
		assert.Empty(t, row.Name)
		assert.Empty(t, row.InitialPoints)
	})

	t.Run("empty record", func(t *testing.T) {
		assert.Equal(t, member.ImportRow{}, parseImportRow(nil, true))
	})
}
