package validation

import (
	"strings"
	"testing"
)

func TestValidateOutputFormat(t *testing.T) {
	tests := []struct {
		name      string
		format    string
		expectErr bool
	}{
		{name: "Pretty", format: "pretty"},
		{name: "CSV", format: "csv"},
		{name: "JSON not supported", format: "json", expectErr: true},
		{name: "Empty", format: "", expectErr: true},
		{name: "Uppercase", format: "CSV", expectErr: true},
		{name: "Padded", format: " pretty ", expectErr: true},
		{name: "Prefix match", format: "prettyprint", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format)
			if tt.expectErr && err == nil {
				t.Errorf("ValidateOutputFormat(%q) expected error but got none", tt.format)
			}
			if !tt.expectErr && err != nil {
				t.Errorf("ValidateOutputFormat(%q) unexpected error = %v", tt.format, err)
			}
		})
	}
}

func TestValidateOutputFormatErrorMessage(t *testing.T) {
	err := ValidateOutputFormat("xml")
	if err == nil {
		t.Fatal("expected error for xml")
	}
	if !strings.Contains(err.Error(), "xml") {
		t.Errorf("error %q does not name the rejected format", err)
	}
}
