// File: internal/sandbox/gateway_test.go
package sandbox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestGateway(t *testing.T, root string, allow, deny []string) *Gateway {
	t.Helper()
	g, err := New(root, allow, deny, zap.NewNop())
	require.NoError(t, err)
	return g
}

func TestIsAllowed_FirstMatchWins(t *testing.T) {
	g := newTestGateway(t, "/repo",
		[]string{"**/*.go"},
		[]string{"**/vendor/**"},
	)

	tests := []struct {
		name    string
		path    string
		allowed bool
		rule    string
	}{
		{"plain source file", "internal/server/main.go", true, "**/*.go"},
		{"top-level source file", "main.go", true, "**/*.go"},
		{"vendored file denied before allow", "vendor/lib/util.go", false, "**/vendor/**"},
		{"nested vendored file", "third/vendor/x/y.go", false, "**/vendor/**"},
		{"unmatched extension", "README.md", false, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := g.IsAllowed(tc.path)
			assert.Equal(t, tc.allowed, d.Allowed)
			assert.Equal(t, tc.rule, d.MatchedRule)
		})
	}
}

func TestIsAllowed_DefaultDeny(t *testing.T) {
	g := newTestGateway(t, "/repo", nil, nil)

	d := g.IsAllowed("anything.txt")
	assert.False(t, d.Allowed)
	assert.Contains(t, d.Reason, "default deny")
}

func TestIsAllowed_RootEscapeDenied(t *testing.T) {
	g := newTestGateway(t, "/repo", []string{"**/*"}, nil)

	for _, path := range []string{"../etc/passwd", "a/../../etc/passwd", "/etc/passwd"} {
		d := g.IsAllowed(path)
		assert.False(t, d.Allowed, "path %q must not escape the root", path)
	}
}

func TestIsAllowed_SingleStarStaysInSegment(t *testing.T) {
	g := newTestGateway(t, "/repo", []string{"src/*.go"}, nil)

	assert.True(t, g.IsAllowed("src/app.go").Allowed)
	assert.False(t, g.IsAllowed("src/sub/app.go").Allowed, "* must not cross a path separator")
}

func TestNew_RejectsInvalidPattern(t *testing.T) {
	// compileGlob quotes everything except wildcards, so invalid regexes can
	// only come from wildcard expansion edge cases; an empty rule list and a
	// valid one must both construct.
	_, err := New("/repo", []string{"**/*.go"}, []string{"**/.git/**"}, zap.NewNop())
	assert.NoError(t, err)
}

func TestReadFile_EnforcesDecision(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "app.go"), []byte("package main"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "secret.pem"), []byte("KEY"), 0o644))

	g := newTestGateway(t, root, []string{"**/*.go"}, []string{"**/*.pem"})

	data, err := g.ReadFile("src/app.go")
	require.NoError(t, err)
	assert.Equal(t, "package main", string(data))

	_, err = g.ReadFile("secret.pem")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "denied")
}

func TestReadFile_AbsolutePathInsideRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.go"), []byte("package main"), 0o644))

	g := newTestGateway(t, root, []string{"**/*.go"}, nil)

	data, err := g.ReadFile(filepath.Join(root, "app.go"))
	require.NoError(t, err)
	assert.Equal(t, "package main", string(data))
}

func TestReadFile_SymlinkOutOfRootDenied(t *testing.T) {
	outside := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret.txt"), []byte("s3cr3t"), 0o644))

	root := t.TempDir()
	require.NoError(t, os.Symlink(filepath.Join(outside, "secret.txt"), filepath.Join(root, "link.txt")))

	g := newTestGateway(t, root, []string{"**/*"}, nil)

	_, err := g.ReadFile("link.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside the sandbox root")
	assert.Equal(t, int64(0), g.ReadCount())
}

func TestReadFile_SymlinkInsideRootAllowed(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "real.go"), []byte("package real"), 0o644))
	require.NoError(t, os.Symlink(filepath.Join(root, "real.go"), filepath.Join(root, "alias.go")))

	g := newTestGateway(t, root, []string{"**/*.go"}, nil)

	data, err := g.ReadFile("alias.go")
	require.NoError(t, err)
	assert.Equal(t, "package real", string(data))
}

func TestReadFile_SizeCap(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "big.go"), make([]byte, 64), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "small.go"), []byte("package small"), 0o644))

	g, err := New(root, []string{"**/*.go"}, nil, zap.NewNop(), WithMaxFileSize(32))
	require.NoError(t, err)

	_, err = g.ReadFile("big.go")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
	assert.Equal(t, int64(0), g.ReadCount(), "oversized reads are not counted")

	_, err = g.ReadFile("small.go")
	require.NoError(t, err)
}

func TestReadFile_CountsReadsAndNotifiesObserver(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.go"), []byte("package a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.go"), []byte("package b"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "denied.pem"), []byte("KEY"), 0o644))

	var observed int
	g, err := New(root, []string{"**/*.go"}, []string{"**/*.pem"}, zap.NewNop(),
		WithReadObserver(func() { observed++ }))
	require.NoError(t, err)

	_, err = g.ReadFile("a.go")
	require.NoError(t, err)
	_, err = g.ReadFile("b.go")
	require.NoError(t, err)
	_, err = g.ReadFile("denied.pem")
	require.Error(t, err)

	assert.Equal(t, int64(2), g.ReadCount(), "denied reads are not counted")
	assert.Equal(t, 2, observed)
}
