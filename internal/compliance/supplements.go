// File: internal/compliance/supplements.go
package compliance

import "github.com/vexred/aegis-cli/api/schemas"

// categorySupplements holds the category-specific remediation guidance that
// accompanies the baseline per-control recommendation.
var categorySupplements = map[schemas.WeaknessCategory][]string{
	schemas.CategorySQLInjection: {
		"Use parameterized queries or prepared statements for all database access",
		"Apply least-privilege database accounts for application connections",
	},
	schemas.CategoryCommandInjection: {
		"Avoid shelling out with user-influenced arguments; use exec APIs with argument vectors",
	},
	schemas.CategoryCrossSiteScripting: {
		"Apply context-aware output encoding for all user-controlled data",
		"Deploy a restrictive Content Security Policy",
	},
	schemas.CategoryPathTraversal: {
		"Canonicalize paths and verify they resolve inside the intended root before use",
	},
	schemas.CategoryInsecureDeserialization: {
		"Deserialize only data formats without code-execution semantics, or verify signatures first",
	},
	schemas.CategoryHardcodedSecret: {
		"Move secrets to a managed secrets store and rotate the exposed credential",
	},
	schemas.CategoryWeakCryptography: {
		"Replace deprecated algorithms with current primitives at adequate key lengths",
	},
	schemas.CategoryCleartextTransmission: {
		"Terminate all external connections with TLS 1.2 or later",
	},
	schemas.CategoryCleartextStorage: {
		"Encrypt the affected data store and manage keys outside the application",
	},
	schemas.CategorySSRF: {
		"Validate outbound request destinations against a positive allow list",
	},
	schemas.CategoryXXE: {
		"Disable external entity and DTD processing in every XML parser",
	},
	schemas.CategoryBrokenAccessControl: {
		"Enforce server-side authorization on every request, denying by default",
	},
	schemas.CategoryBrokenAuthentication: {
		"Harden the authentication flow: lockout, MFA, and session rotation on login",
	},
	schemas.CategorySecurityMisconfiguration: {
		"Reapply the hardening baseline and remove unused features and default accounts",
	},
	schemas.CategoryVulnerableDependency: {
		"Upgrade the affected component to a patched release and add it to continuous monitoring",
	},
	schemas.CategorySensitiveDataExposure: {
		"Minimize collection and mask sensitive fields in logs, errors, and responses",
	},
	schemas.CategoryInsufficientLogging: {
		"Log authentication, authorization, and validation failures with actionable context",
	},
	schemas.CategoryCSRF: {
		"Issue per-session anti-forgery tokens and validate them on state-changing requests",
	},
	schemas.CategoryRaceCondition: {
		"Guard the shared state with an appropriate synchronization primitive or make the operation atomic",
	},
}
