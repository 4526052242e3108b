package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilePathValidator_ValidateAndSanitize(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	cwd, err := os.Getwd()
	require.NoError(t, err)

	v := NewFilePathValidator()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "absolute path", input: "/var/log/nextech.log", want: "/var/log/nextech.log"},
		{name: "tilde expansion", input: "~/logs/nextech.log", want: filepath.Join(home, "logs", "nextech.log")},
		{name: "relative path made absolute", input: "nextech.log", want: filepath.Join(cwd, "nextech.log")},
		{name: "redundant separators cleaned", input: "/var/log//nextech.log", want: "/var/log/nextech.log"},
		{name: "empty", input: "", wantErr: true},
		{name: "traversal", input: "/var/log/../../etc/passwd", wantErr: true},
		{name: "null byte", input: "/tmp/a\x00b", wantErr: true},
		{name: "control character", input: "/tmp/a\nb", wantErr: true},
		{name: "bare tilde user", input: "~root/log", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.ValidateAndSanitize(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilePathValidator_MaxLength(t *testing.T) {
	v := NewFilePathValidator()
	v.MaxPathLength = 10

	_, err := v.ValidateAndSanitize("/tmp/much-too-long.log")
	assert.Error(t, err)
}

func TestFilePathValidator_AllowedBaseDirs(t *testing.T) {
	base := t.TempDir()
	v := &FilePathValidator{
		AllowedBaseDirs: []string{base},
		MaxPathLength:   4096,
	}

	got, err := v.ValidateAndSanitize(filepath.Join(base, "app.log"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "app.log"), got)

	_, err = v.ValidateAndSanitize("/definitely/elsewhere/app.log")
	assert.Error(t, err)

	// a sibling that only shares a name prefix is outside
	_, err = v.ValidateAndSanitize(base + "-other/app.log")
	assert.Error(t, err)
}
