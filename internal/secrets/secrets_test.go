package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(t *testing.T) string
		want   map[string]string
		errMsg string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "anthropic-api-key", "  sk-ant-abc123  \n")
				writeFile(t, dir, "scraper-contact-email", "clerk@example.com\n")
				return dir
			},
			want: map[string]string{
				"anthropic-api-key":     "sk-ant-abc123",
				"scraper-contact-email": "clerk@example.com",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "anthropic-api-key", "valid-key")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				return dir
			},
			want: map[string]string{
				"anthropic-api-key": "valid-key",
			},
		},
		{
			name: "skips dotfiles",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, "anthropic-api-key", "ak_real")
				return dir
			},
			want: map[string]string{
				"anthropic-api-key": "ak_real",
			},
		},
		{
			name: "skips subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "anthropic-api-key", "ak_123")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: map[string]string{
				"anthropic-api-key": "ak_123",
			},
		},
		{
			name: "returns empty map for empty directory",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
			want: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := tt.setup(t)
			got, err := Load(dir)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    map[string]string
	}{
		{
			name:    "basic pairs",
			content: "ANTHROPIC_API_KEY=sk-ant-123\nOTHER=value\n",
			want:    map[string]string{"ANTHROPIC_API_KEY": "sk-ant-123", "OTHER": "value"},
		},
		{
			name:    "comments and blanks ignored",
			content: "# credentials\n\nANTHROPIC_API_KEY=sk-ant-123\n",
			want:    map[string]string{"ANTHROPIC_API_KEY": "sk-ant-123"},
		},
		{
			name:    "quoted values stripped",
			content: "A=\"double\"\nB='single'\n",
			want:    map[string]string{"A": "double", "B": "single"},
		},
		{
			name:    "value may contain equals sign",
			content: "URL=https://example.com/?a=b\n",
			want:    map[string]string{"URL": "https://example.com/?a=b"},
		},
		{
			name:    "lines without equals ignored",
			content: "not a pair\nKEY=val\n",
			want:    map[string]string{"KEY": "val"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k := range tt.want {
				require.NoError(t, os.Unsetenv(k))
			}
			path := filepath.Join(t.TempDir(), ".env.local")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			require.NoError(t, LoadEnvFile(path))
			for k, v := range tt.want {
				assert.Equal(t, v, os.Getenv(k))
				os.Unsetenv(k)
			}
		})
	}
}

func TestLoadEnvFileDoesNotOverrideExisting(t *testing.T) {
	t.Setenv("MINUTES_TEST_KEY", "from-environment")
	path := filepath.Join(t.TempDir(), ".env.local")
	require.NoError(t, os.WriteFile(path, []byte("MINUTES_TEST_KEY=from-file\n"), 0o644))
	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "from-environment", os.Getenv("MINUTES_TEST_KEY"))
}

func TestLoadEnvFileMissing(t *testing.T) {
	require.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "no-such-file")))
}

func TestLoadUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good-key", "value123")

	// Create a file then remove read permission.
	badPath := filepath.Join(dir, "bad-key")
	require.NoError(t, os.WriteFile(badPath, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	got, err := Load(dir)
	require.NoError(t, err)
	// The good file should still be returned; the bad file is skipped with a warning.
	assert.Equal(t, "value123", got["good-key"])
	_, hasBad := got["bad-key"]
	assert.False(t, hasBad, "unreadable file should not appear in result")
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
