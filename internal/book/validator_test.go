package book

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftValidate(t *testing.T) {
	tests := []struct {
		name       string
		title      string
		author     string
		wantFields []string
	}{
		{name: "valid", title: "Dune", author: "Herbert"},
		{name: "missing title", title: "", author: "Herbert", wantFields: []string{"title"}},
		{name: "missing author", title: "Dune", author: "", wantFields: []string{"author"}},
		{name: "whitespace only", title: "   ", author: "\t", wantFields: []string{"title", "author"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDraft(tt.title, tt.author).Validate()
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))

			var fields []string
			for _, f := range verr.Fields {
				fields = append(fields, f.Field)
			}
			assert.Equal(t, tt.wantFields, fields)
			assert.Contains(t, verr.Error(), "is required")
		})
	}
}
