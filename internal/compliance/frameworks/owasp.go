// File: internal/compliance/frameworks/owasp.go
package frameworks

import "github.com/vexred/aegis-cli/api/schemas"

// OWASPTop10 returns the OWASP Top 10 (2021) definition. It is the only
// framework with a secondary lookup: a CWE reference on a finding can pull
// in a control the category table alone would not reach.
func OWASPTop10() Definition {
	return Definition{
		Framework: schemas.FrameworkOWASP,
		Controls: []schemas.ComplianceControl{
			{
				ID:            "A01:2021",
				Framework:     schemas.FrameworkOWASP,
				ControlNumber: "A01:2021",
				Title:         "Broken Access Control",
				Description:   "Restrictions on what authenticated users are allowed to do are not properly enforced.",
				Category:      "Access Control",
				Requirements: []string{
					"Deny access by default except for public resources",
					"Enforce record ownership and access control checks server-side",
					"Disable directory listing and prevent path traversal outside intended roots",
				},
				TestProcedures: []string{
					"Attempt access to another user's records with a modified identifier",
					"Request files outside the web root using traversal sequences",
				},
			},
			{
				ID:            "A02:2021",
				Framework:     schemas.FrameworkOWASP,
				ControlNumber: "A02:2021",
				Title:         "Cryptographic Failures",
				Description:   "Failures related to cryptography that often lead to exposure of sensitive data.",
				Category:      "Cryptography",
				Requirements: []string{
					"Encrypt all sensitive data at rest",
					"Encrypt all data in transit with current, strong protocols",
					"Do not use legacy or weak cryptographic algorithms and key lengths",
					"Store passwords using adaptive, salted hashing functions",
				},
				TestProcedures: []string{
					"Inspect storage and transport of classified data for cleartext exposure",
					"Inventory cryptographic algorithms and flag deprecated primitives",
				},
			},
			{
				ID:            "A03:2021",
				Framework:     schemas.FrameworkOWASP,
				ControlNumber: "A03:2021",
				Title:         "Injection",
				Description:   "User-supplied data is not validated, filtered, or sanitized before reaching an interpreter.",
				Category:      "Injection",
				Requirements: []string{
					"Use a safe API which avoids the use of the interpreter entirely, such as parameterized queries",
					"Validate and sanitize all user-supplied input server-side",
					"Escape special characters for the specific target interpreter",
				},
				TestProcedures: []string{
					"Review source for dynamic query construction from user input",
					"Exercise input fields with interpreter metacharacters",
				},
			},
			{
				ID:            "A04:2021",
				Framework:     schemas.FrameworkOWASP,
				ControlNumber: "A04:2021",
				Title:         "Insecure Design",
				Description:   "Missing or ineffective control design, as distinct from implementation defects.",
				Category:      "Design",
				Requirements: []string{
					"Establish and use a secure development lifecycle with threat modeling",
					"Segregate tenants and tiers by design",
					"Limit resource consumption per user or service",
				},
				TestProcedures: []string{
					"Review design artifacts for threat model coverage of critical flows",
				},
			},
			{
				ID:            "A05:2021",
				Framework:     schemas.FrameworkOWASP,
				ControlNumber: "A05:2021",
				Title:         "Security Misconfiguration",
				Description:   "Insecure default configurations, open cloud storage, verbose errors, or missing hardening.",
				Category:      "Configuration",
				Requirements: []string{
					"Harden every environment with a repeatable process and minimal platform",
					"Disable or remove unused features, components, and default accounts",
					"Disable XML external entity processing in all parsers",
				},
				TestProcedures: []string{
					"Diff deployed configuration against the hardening baseline",
					"Submit crafted XML documents containing external entity declarations",
				},
			},
			{
				ID:            "A06:2021",
				Framework:     schemas.FrameworkOWASP,
				ControlNumber: "A06:2021",
				Title:         "Vulnerable and Outdated Components",
				Description:   "Use of components with known vulnerabilities or past end of life.",
				Category:      "Supply Chain",
				Requirements: []string{
					"Maintain a continuous inventory of component versions and their dependencies",
					"Remove unused dependencies and unnecessary features",
					"Patch or upgrade components with known vulnerabilities promptly",
				},
				TestProcedures: []string{
					"Run software composition analysis against a current vulnerability feed",
				},
			},
			{
				ID:            "A07:2021",
				Framework:     schemas.FrameworkOWASP,
				ControlNumber: "A07:2021",
				Title:         "Identification and Authentication Failures",
				Description:   "Confirmation of user identity, authentication, and session management is broken.",
				Category:      "Authentication",
				Requirements: []string{
					"Implement multi-factor authentication where possible",
					"Do not ship or deploy with default credentials",
					"Harden the session management lifecycle against fixation and replay",
				},
				TestProcedures: []string{
					"Attempt credential stuffing with known breached password lists",
					"Inspect session identifiers for predictability and rotation on login",
				},
			},
			{
				ID:            "A08:2021",
				Framework:     schemas.FrameworkOWASP,
				ControlNumber: "A08:2021",
				Title:         "Software and Data Integrity Failures",
				Description:   "Code and infrastructure that does not protect against integrity violations, including insecure deserialization.",
				Category:      "Integrity",
				Requirements: []string{
					"Verify software and data integrity with digital signatures",
					"Do not deserialize untrusted data without integrity checking",
					"Ensure the CI/CD pipeline enforces segregation and access control",
				},
				TestProcedures: []string{
					"Review deserialization entry points for untrusted input",
				},
			},
			{
				ID:            "A09:2021",
				Framework:     schemas.FrameworkOWASP,
				ControlNumber: "A09:2021",
				Title:         "Security Logging and Monitoring Failures",
				Description:   "Insufficient logging, detection, monitoring, and active response.",
				Category:      "Observability",
				Requirements: []string{
					"Log authentication, access control, and input validation failures with sufficient context",
					"Ensure logs are generated in a consumable format and monitored for suspicious activity",
					"Establish an incident response and recovery plan",
				},
				TestProcedures: []string{
					"Trigger authentication failures and verify they are logged and alerted on",
				},
			},
			{
				ID:            "A10:2021",
				Framework:     schemas.FrameworkOWASP,
				ControlNumber: "A10:2021",
				Title:         "Server-Side Request Forgery",
				Description:   "The application fetches a remote resource without validating the user-supplied URL.",
				Category:      "Network",
				Requirements: []string{
					"Sanitize and validate all client-supplied input data used to build requests",
					"Enforce the URL schema, port, and destination with a positive allow list",
					"Segment remote resource access functionality into separate networks",
				},
				TestProcedures: []string{
					"Submit internal network addresses to URL-accepting parameters",
				},
			},
		},
		CategoryControls: map[schemas.WeaknessCategory][]string{
			schemas.CategorySQLInjection:             {"A03:2021"},
			schemas.CategoryCommandInjection:         {"A03:2021"},
			schemas.CategoryCrossSiteScripting:       {"A03:2021"},
			schemas.CategoryPathTraversal:            {"A01:2021"},
			schemas.CategoryInsecureDeserialization:  {"A08:2021"},
			schemas.CategoryHardcodedSecret:          {"A07:2021", "A02:2021"},
			schemas.CategoryWeakCryptography:         {"A02:2021"},
			schemas.CategoryCleartextTransmission:    {"A02:2021"},
			schemas.CategoryCleartextStorage:         {"A02:2021"},
			schemas.CategorySSRF:                     {"A10:2021"},
			schemas.CategoryXXE:                      {"A05:2021"},
			schemas.CategoryBrokenAccessControl:      {"A01:2021"},
			schemas.CategoryBrokenAuthentication:     {"A07:2021"},
			schemas.CategorySecurityMisconfiguration: {"A05:2021"},
			schemas.CategoryVulnerableDependency:     {"A06:2021"},
			schemas.CategorySensitiveDataExposure:    {"A02:2021"},
			schemas.CategoryInsufficientLogging:      {"A09:2021"},
			schemas.CategoryCSRF:                     {"A01:2021"},
			schemas.CategoryRaceCondition:            {"A04:2021"},
		},
		ReferenceControls: map[string]string{
			"CWE-22":  "A01:2021",
			"CWE-79":  "A03:2021",
			"CWE-89":  "A03:2021",
			"CWE-78":  "A03:2021",
			"CWE-287": "A07:2021",
			"CWE-327": "A02:2021",
			"CWE-352": "A01:2021",
			"CWE-502": "A08:2021",
			"CWE-611": "A05:2021",
			"CWE-778": "A09:2021",
			"CWE-798": "A07:2021",
			"CWE-918": "A10:2021",
		},
	}
}
