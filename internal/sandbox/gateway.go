// File: internal/sandbox/gateway.go
// The sandbox package is the read-only file collaborator handed to every
// scanner. Access is governed by an ordered rule list evaluated first match
// wins, with a default deny for anything unmatched.
package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/vexred/aegis-cli/api/schemas"
)

// Action is what a matched rule decides.
type Action string

const (
	ActionAllow Action = "allow"
	ActionDeny  Action = "deny"
)

// Rule is one entry of the ordered access list.
type Rule struct {
	Pattern string
	Action  Action

	re *regexp.Regexp
}

// defaultMaxFileSize caps a single read. Scanners work on source files;
// anything bigger is almost certainly a binary artifact.
const defaultMaxFileSize = 10 << 20

// Gateway implements schemas.FileGateway over a root directory. All paths
// are interpreted relative to the root; escaping it is denied regardless of
// the rule list, and symlink targets are resolved before the check so a
// link cannot smuggle a read past the root.
type Gateway struct {
	root        string
	rules       []Rule
	maxFileSize int64
	logger      *zap.Logger

	reads  atomic.Int64
	onRead func()
}

var _ schemas.FileGateway = (*Gateway)(nil)

// Option configures optional gateway behavior.
type Option func(*Gateway)

// WithReadObserver installs a callback invoked after every successful read.
// The gateway is the single file-access chokepoint, so this is where
// files-processed accounting hooks in.
func WithReadObserver(f func()) Option {
	return func(g *Gateway) { g.onRead = f }
}

// WithMaxFileSize overrides the per-file read cap.
func WithMaxFileSize(n int64) Option {
	return func(g *Gateway) {
		if n > 0 {
			g.maxFileSize = n
		}
	}
}

// New builds a gateway rooted at root. Deny patterns are placed ahead of
// allow patterns so an explicit deny always wins over a broad allow.
func New(root string, allow, deny []string, logger *zap.Logger, opts ...Option) (*Gateway, error) {
	rules := make([]Rule, 0, len(allow)+len(deny))
	for _, p := range deny {
		rules = append(rules, Rule{Pattern: p, Action: ActionDeny})
	}
	for _, p := range allow {
		rules = append(rules, Rule{Pattern: p, Action: ActionAllow})
	}

	for i := range rules {
		re, err := compileGlob(rules[i].Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid sandbox pattern %q: %w", rules[i].Pattern, err)
		}
		rules[i].re = re
	}

	g := &Gateway{
		root:        filepath.Clean(root),
		rules:       rules,
		maxFileSize: defaultMaxFileSize,
		logger:      logger.Named("sandbox"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// ReadCount reports how many files have been read through the gateway.
func (g *Gateway) ReadCount() int64 {
	return g.reads.Load()
}

// IsAllowed evaluates path against the rule list. The first matching rule
// decides; an unmatched path is denied.
func (g *Gateway) IsAllowed(path string) schemas.AccessDecision {
	rel, err := g.relativize(path)
	if err != nil {
		return schemas.AccessDecision{
			Allowed: false,
			Reason:  err.Error(),
		}
	}

	for _, rule := range g.rules {
		if rule.re.MatchString(rel) {
			return schemas.AccessDecision{
				Allowed:     rule.Action == ActionAllow,
				Reason:      fmt.Sprintf("matched %s rule", rule.Action),
				MatchedRule: rule.Pattern,
			}
		}
	}

	return schemas.AccessDecision{
		Allowed: false,
		Reason:  "no rule matched; default deny",
	}
}

// ReadFile returns the file contents if and only if the path is allowed.
// The rule check runs on the requested path, the containment check on the
// resolved one: a symlink whose target sits outside the root is denied even
// when the link itself matches an allow rule.
func (g *Gateway) ReadFile(path string) ([]byte, error) {
	decision := g.IsAllowed(path)
	if !decision.Allowed {
		return nil, fmt.Errorf("access to %q denied: %s", path, decision.Reason)
	}

	rel, err := g.relativize(path)
	if err != nil {
		return nil, err
	}

	resolved, err := g.resolve(rel)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", path, err)
	}
	if info.Size() > g.maxFileSize {
		return nil, fmt.Errorf("file %q too large (%d bytes, limit %d bytes)", path, info.Size(), g.maxFileSize)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", path, err)
	}

	g.reads.Add(1)
	if g.onRead != nil {
		g.onRead()
	}
	g.logger.Debug("File read through sandbox",
		zap.String("path", rel),
		zap.Int("bytes", len(data)),
	)
	return data, nil
}

// resolve follows symlinks in rel and verifies the final target still lives
// under the root. The root is resolved too, so a symlinked root compares
// against its real location.
func (g *Gateway) resolve(rel string) (string, error) {
	rootReal, err := filepath.EvalSymlinks(g.root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve sandbox root %q: %w", g.root, err)
	}
	target, err := filepath.EvalSymlinks(filepath.Join(g.root, filepath.FromSlash(rel)))
	if err != nil {
		return "", fmt.Errorf("failed to read %q: %w", rel, err)
	}
	if target != rootReal && !strings.HasPrefix(target, rootReal+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q resolves outside the sandbox root", rel)
	}
	return target, nil
}

// relativize normalizes path to a slash-separated path relative to the
// gateway root and rejects anything that escapes it.
func (g *Gateway) relativize(path string) (string, error) {
	p := path
	if filepath.IsAbs(p) {
		rel, err := filepath.Rel(g.root, p)
		if err != nil {
			return "", fmt.Errorf("path %q is outside the sandbox root", path)
		}
		p = rel
	}
	p = filepath.ToSlash(filepath.Clean(p))
	if p == ".." || strings.HasPrefix(p, "../") {
		return "", fmt.Errorf("path %q escapes the sandbox root", path)
	}
	return p, nil
}

// compileGlob translates a glob-style pattern into an anchored regexp.
// `**` crosses path separators, `*` and `?` stay within one segment.
func compileGlob(pattern string) (*regexp.Regexp, error) {
	var sb strings.Builder
	sb.WriteString("^")

	p := filepath.ToSlash(pattern)
	for i := 0; i < len(p); i++ {
		switch c := p[i]; c {
		case '*':
			if i+1 < len(p) && p[i+1] == '*' {
				// Collapse "**/" so "**/foo" also matches a top-level "foo".
				if i+2 < len(p) && p[i+2] == '/' {
					sb.WriteString(`(?:[^/]+/)*`)
					i += 2
				} else {
					sb.WriteString(`.*`)
					i++
				}
			} else {
				sb.WriteString(`[^/]*`)
			}
		case '?':
			sb.WriteString(`[^/]`)
		default:
			sb.WriteString(regexp.QuoteMeta(string(c)))
		}
	}

	sb.WriteString("$")
	return regexp.Compile(sb.String())
}
