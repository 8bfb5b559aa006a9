package errors

import (
	"strings"
	"testing"
)

func TestValidateItemID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"numeric", "1042", false},
		{"uuid", "6f1c2b0e-9d43-5a6b-8f7e-2c1d0a9b8e7f", false},
		{"slug", "job-muller-bad", false},
		{"umlaut", "müller-bad", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 129), true},
		{"space", "job 1", true},
		{"tab", "job\t1", true},
		{"control char", "job\x01", true},
		{"quote", `job"1`, true},
		{"angle bracket", "<script>", true},
		{"ampersand", "a&b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateItemID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateItemID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidItem) {
				t.Errorf("ValidateItemID(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateColor(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty", "", false},
		{"short hex", "#fa0", false},
		{"long hex", "#3B82F6", false},

		{"named color", "red", true},
		{"missing hash", "3b82f6", true},
		{"rgb()", "rgb(1,2,3)", true},
		{"injection", `#fff" onload="x`, true},
		{"four digits", "#abcd", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateColor(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateColor(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "items.json", false},
		{"nested", "data/planner/items.yaml", false},
		{"absolute", "/var/lib/planboard/items.toml", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 600), true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidatePath(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}
