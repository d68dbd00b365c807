// File: internal/compliance/gaps.go
package compliance

import (
	"strings"

	"github.com/vexred/aegis-cli/api/schemas"
)

// gapRule links keywords that may appear in a requirement statement to the
// finding characteristics that indicate the requirement is unmet. A rule
// fires when the requirement contains any of its keywords AND the finding
// matches by category or by trigger words in its text.
type gapRule struct {
	requirementKeywords []string
	categories          map[schemas.WeaknessCategory]struct{}
	findingTriggers     []string
}

func categorySet(cats ...schemas.WeaknessCategory) map[schemas.WeaknessCategory]struct{} {
	set := make(map[schemas.WeaknessCategory]struct{}, len(cats))
	for _, c := range cats {
		set[c] = struct{}{}
	}
	return set
}

// gapRules is the default heuristic table. It is recall-oriented: it errs
// toward flagging a requirement rather than missing one, and it can both
// under- and over-report relative to true satisfiability.
var gapRules = []gapRule{
	{
		requirementKeywords: []string{"encrypt", "cryptograph", "cleartext"},
		categories: categorySet(
			schemas.CategoryWeakCryptography,
			schemas.CategoryCleartextTransmission,
			schemas.CategoryCleartextStorage,
			schemas.CategorySensitiveDataExposure,
		),
		findingTriggers: []string{"unencrypted", "plaintext", "cleartext", "weak cipher"},
	},
	{
		requirementKeywords: []string{"validate", "sanitiz", "input", "interpreter", "parameterized"},
		categories: categorySet(
			schemas.CategorySQLInjection,
			schemas.CategoryCommandInjection,
			schemas.CategoryCrossSiteScripting,
			schemas.CategoryXXE,
			schemas.CategorySSRF,
			schemas.CategoryPathTraversal,
		),
		findingTriggers: []string{"unsanitized", "unvalidated", "injection", "concatenat"},
	},
	{
		requirementKeywords: []string{"authenticat", "session", "sign-in", "multi-factor"},
		categories: categorySet(
			schemas.CategoryBrokenAuthentication,
			schemas.CategoryCSRF,
		),
		findingTriggers: []string{"authentication", "session"},
	},
	{
		requirementKeywords: []string{"access", "authoriz", "least privilege", "ownership"},
		categories: categorySet(
			schemas.CategoryBrokenAccessControl,
			schemas.CategoryPathTraversal,
		),
		findingTriggers: []string{"unauthorized", "privilege", "traversal"},
	},
	{
		requirementKeywords: []string{"credential", "secret", "key management", "authentication information"},
		categories: categorySet(
			schemas.CategoryHardcodedSecret,
		),
		findingTriggers: []string{"hardcoded", "hard-coded", "embedded secret", "api key"},
	},
	{
		requirementKeywords: []string{"patch", "update", "component", "dependen", "vulnerab"},
		categories: categorySet(
			schemas.CategoryVulnerableDependency,
		),
		findingTriggers: []string{"outdated", "known vulnerab", "end of life"},
	},
	{
		requirementKeywords: []string{"log", "monitor", "audit", "detect"},
		categories: categorySet(
			schemas.CategoryInsufficientLogging,
		),
		findingTriggers: []string{"not logged", "no audit", "unmonitored"},
	},
	{
		requirementKeywords: []string{"harden", "configuration", "default"},
		categories: categorySet(
			schemas.CategorySecurityMisconfiguration,
			schemas.CategoryXXE,
		),
		findingTriggers: []string{"misconfigur", "default credential", "debug enabled"},
	},
	{
		requirementKeywords: []string{"integrity", "deserializ", "signature"},
		categories: categorySet(
			schemas.CategoryInsecureDeserialization,
			schemas.CategoryRaceCondition,
		),
		findingTriggers: []string{"deserializ", "integrity", "tamper"},
	},
}

// DefaultGapPredicate is the keyword-containment heuristic used when no
// replacement predicate is injected.
func DefaultGapPredicate(requirement string, finding schemas.Finding) bool {
	req := strings.ToLower(requirement)
	text := strings.ToLower(finding.Title + " " + finding.Description + " " + finding.Impact)

	for _, rule := range gapRules {
		if !containsAny(req, rule.requirementKeywords) {
			continue
		}
		if _, ok := rule.categories[finding.Category]; ok {
			return true
		}
		if containsAny(text, rule.findingTriggers) {
			return true
		}
	}
	return false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
