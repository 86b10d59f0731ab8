package entity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "valid https URL", url: "https://example.com"},
		{name: "valid http URL with path", url: "http://example.com/news"},
		{name: "empty URL", url: "", wantErr: true},
		{name: "invalid scheme - ftp", url: "ftp://example.com/feed", wantErr: true},
		{name: "invalid scheme - javascript", url: "javascript:alert(1)", wantErr: true},
		{name: "no host", url: "https://", wantErr: true},
		{name: "no scheme", url: "example.com", wantErr: true},
		{name: "URL exceeding maximum length", url: "https://example.com/" + strings.Repeat("a", 2050), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("reader@example.com"))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail("Name <reader@example.com>"))
}

func TestValidateRequired(t *testing.T) {
	assert.NoError(t, ValidateRequired("title", "ok", 10))
	assert.NoError(t, ValidateRequired("content", strings.Repeat("x", 5000), 0))
	assert.Error(t, ValidateRequired("title", " \t", 10))
	assert.Error(t, ValidateRequired("title", strings.Repeat("é", 11), 10))
	assert.NoError(t, ValidateRequired("title", strings.Repeat("é", 10), 10))
}
