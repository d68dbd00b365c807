// File: internal/compliance/frameworks/nistcsf.go
package frameworks

import "github.com/vexred/aegis-cli/api/schemas"

// NISTCSF returns the NIST Cybersecurity Framework definition. The catalog
// covers the subcategories that code-level findings can map onto.
func NISTCSF() Definition {
	return Definition{
		Framework: schemas.FrameworkNISTCSF,
		Controls: []schemas.ComplianceControl{
			{
				ID:            "PR.AC-1",
				Framework:     schemas.FrameworkNISTCSF,
				ControlNumber: "PR.AC-1",
				Title:         "Identity and Credential Management",
				Description:   "Identities and credentials are issued, managed, verified, revoked, and audited for authorized devices, users, and processes.",
				Category:      "Protect",
				Requirements: []string{
					"Manage credentials through their full lifecycle including revocation",
					"Never embed credentials or secrets in source code or configuration",
					"Audit credential issuance and use",
				},
				TestProcedures: []string{
					"Search repositories and images for embedded secrets",
					"Review credential revocation records for departed identities",
				},
			},
			{
				ID:            "PR.AC-4",
				Framework:     schemas.FrameworkNISTCSF,
				ControlNumber: "PR.AC-4",
				Title:         "Access Permissions and Authorizations",
				Description:   "Access permissions and authorizations are managed, incorporating the principles of least privilege and separation of duties.",
				Category:      "Protect",
				Requirements: []string{
					"Enforce least privilege for every access decision",
					"Verify authorization server-side on every privileged operation",
				},
				TestProcedures: []string{
					"Exercise privileged endpoints with an under-privileged principal",
				},
			},
			{
				ID:            "PR.AC-7",
				Framework:     schemas.FrameworkNISTCSF,
				ControlNumber: "PR.AC-7",
				Title:         "User and Device Authentication",
				Description:   "Users, devices, and other assets are authenticated commensurate with the risk of the transaction.",
				Category:      "Protect",
				Requirements: []string{
					"Authenticate users with mechanisms proportional to transaction risk",
					"Protect authentication flows against replay and brute force",
				},
				TestProcedures: []string{
					"Review authentication endpoints for lockout and rate limiting",
				},
			},
			{
				ID:            "PR.DS-1",
				Framework:     schemas.FrameworkNISTCSF,
				ControlNumber: "PR.DS-1",
				Title:         "Data-at-Rest Protection",
				Description:   "Data-at-rest is protected.",
				Category:      "Protect",
				Requirements: []string{
					"Encrypt sensitive data at rest with approved algorithms",
					"Manage encryption keys separately from the data they protect",
				},
				TestProcedures: []string{
					"Inspect data stores for unencrypted sensitive records",
				},
			},
			{
				ID:            "PR.DS-2",
				Framework:     schemas.FrameworkNISTCSF,
				ControlNumber: "PR.DS-2",
				Title:         "Data-in-Transit Protection",
				Description:   "Data-in-transit is protected.",
				Category:      "Protect",
				Requirements: []string{
					"Encrypt data in transit using current transport security protocols",
					"Reject connections that negotiate deprecated protocol versions",
				},
				TestProcedures: []string{
					"Capture traffic between components and verify no cleartext sensitive data",
				},
			},
			{
				ID:            "PR.DS-6",
				Framework:     schemas.FrameworkNISTCSF,
				ControlNumber: "PR.DS-6",
				Title:         "Integrity Checking",
				Description:   "Integrity checking mechanisms are used to verify software, firmware, and information integrity.",
				Category:      "Protect",
				Requirements: []string{
					"Verify the integrity of software and data before use",
					"Do not process serialized data from untrusted sources without verification",
				},
				TestProcedures: []string{
					"Review deserialization and update paths for integrity verification",
				},
			},
			{
				ID:            "PR.IP-1",
				Framework:     schemas.FrameworkNISTCSF,
				ControlNumber: "PR.IP-1",
				Title:         "Baseline Configuration",
				Description:   "A baseline configuration of information technology systems is created and maintained incorporating security principles.",
				Category:      "Protect",
				Requirements: []string{
					"Maintain hardened baseline configurations for every system class",
					"Detect and correct drift from the baseline",
				},
				TestProcedures: []string{
					"Compare running configuration against the approved baseline",
				},
			},
			{
				ID:            "PR.IP-12",
				Framework:     schemas.FrameworkNISTCSF,
				ControlNumber: "PR.IP-12",
				Title:         "Vulnerability Management Plan",
				Description:   "A vulnerability management plan is developed and implemented.",
				Category:      "Protect",
				Requirements: []string{
					"Identify and patch vulnerable components within defined windows",
					"Track third-party components and their known vulnerabilities",
				},
				TestProcedures: []string{
					"Sample dependency manifests against the vulnerability feed",
				},
			},
			{
				ID:            "DE.CM-1",
				Framework:     schemas.FrameworkNISTCSF,
				ControlNumber: "DE.CM-1",
				Title:         "Network Monitoring",
				Description:   "The network is monitored to detect potential cybersecurity events.",
				Category:      "Detect",
				Requirements: []string{
					"Monitor outbound requests for unexpected destinations",
					"Restrict server-initiated requests to approved destinations",
				},
				TestProcedures: []string{
					"Review egress rules and server-side request construction",
				},
			},
			{
				ID:            "DE.AE-3",
				Framework:     schemas.FrameworkNISTCSF,
				ControlNumber: "DE.AE-3",
				Title:         "Event Data Aggregation",
				Description:   "Event data are collected and correlated from multiple sources and sensors.",
				Category:      "Detect",
				Requirements: []string{
					"Log security-relevant events from all application tiers",
					"Aggregate and correlate event data for analysis",
				},
				TestProcedures: []string{
					"Verify security events from each tier reach the aggregation point",
				},
			},
			{
				ID:            "SI.VAL-1",
				Framework:     schemas.FrameworkNISTCSF,
				ControlNumber: "SI.VAL-1",
				Title:         "Input Validation",
				Description:   "Information inputs are checked for validity before processing.",
				Category:      "Protect",
				Requirements: []string{
					"Validate and sanitize all externally supplied input before processing",
					"Treat all input to interpreters as untrusted",
				},
				TestProcedures: []string{
					"Exercise external inputs with malformed and hostile data",
				},
			},
		},
		CategoryControls: map[schemas.WeaknessCategory][]string{
			schemas.CategorySQLInjection:             {"SI.VAL-1"},
			schemas.CategoryCommandInjection:         {"SI.VAL-1"},
			schemas.CategoryCrossSiteScripting:       {"SI.VAL-1"},
			schemas.CategoryPathTraversal:            {"PR.AC-4", "SI.VAL-1"},
			schemas.CategoryInsecureDeserialization:  {"PR.DS-6", "SI.VAL-1"},
			schemas.CategoryHardcodedSecret:          {"PR.AC-1"},
			schemas.CategoryWeakCryptography:         {"PR.DS-1", "PR.DS-2"},
			schemas.CategoryCleartextTransmission:    {"PR.DS-2"},
			schemas.CategoryCleartextStorage:         {"PR.DS-1"},
			schemas.CategorySSRF:                     {"DE.CM-1"},
			schemas.CategoryXXE:                      {"SI.VAL-1", "PR.IP-1"},
			schemas.CategoryBrokenAccessControl:      {"PR.AC-4"},
			schemas.CategoryBrokenAuthentication:     {"PR.AC-7"},
			schemas.CategorySecurityMisconfiguration: {"PR.IP-1"},
			schemas.CategoryVulnerableDependency:     {"PR.IP-12"},
			schemas.CategorySensitiveDataExposure:    {"PR.DS-1", "PR.DS-2"},
			schemas.CategoryInsufficientLogging:      {"DE.AE-3"},
			schemas.CategoryCSRF:                     {"PR.AC-7", "SI.VAL-1"},
			schemas.CategoryRaceCondition:            {"PR.DS-6"},
		},
	}
}
