package object

import (
	"errors"
	"testing"
)

func TestCleanKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		key     string
		want    string
		wantErr bool
	}{
		{name: "plain", key: "resume_0001.pdf", want: "resume_0001.pdf"},
		{name: "nested", key: "batch/resume_0001.pdf", want: "batch/resume_0001.pdf"},
		{name: "dot segments", key: "batch/./x/../resume.pdf", want: "batch/resume.pdf"},
		{name: "backslashes", key: `batch\resume.pdf`, want: "batch/resume.pdf"},
		{name: "empty", key: " ", wantErr: true},
		{name: "absolute", key: "/etc/passwd", wantErr: true},
		{name: "traversal", key: "../secret", wantErr: true},
		{name: "nested traversal", key: "a/../../secret", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := CleanKey(tt.key)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidKey) {
					t.Fatalf("CleanKey(%q) err = %v, want ErrInvalidKey", tt.key, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("CleanKey(%q) = %q, %v, want %q", tt.key, got, err, tt.want)
			}
		})
	}
}
