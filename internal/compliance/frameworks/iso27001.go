// File: internal/compliance/frameworks/iso27001.go
package frameworks

import "github.com/vexred/aegis-cli/api/schemas"

// ISO27001 returns the ISO/IEC 27001:2022 Annex A definition, limited to the
// controls code-level findings can evidence.
func ISO27001() Definition {
	return Definition{
		Framework: schemas.FrameworkISO27001,
		Controls: []schemas.ComplianceControl{
			{
				ID:            "A.5.15",
				Framework:     schemas.FrameworkISO27001,
				ControlNumber: "A.5.15",
				Title:         "Access Control",
				Description:   "Rules to control physical and logical access to information are established and implemented.",
				Category:      "Organizational",
				Requirements: []string{
					"Establish access control rules based on business and security requirements",
					"Enforce authorization checks on every access to protected information",
				},
				TestProcedures: []string{
					"Sample protected operations and verify server-side authorization",
				},
			},
			{
				ID:            "A.5.17",
				Framework:     schemas.FrameworkISO27001,
				ControlNumber: "A.5.17",
				Title:         "Authentication Information",
				Description:   "Allocation and management of authentication information is controlled.",
				Category:      "Organizational",
				Requirements: []string{
					"Protect authentication information from unauthorized disclosure",
					"Never store credentials or secret keys in source code",
				},
				TestProcedures: []string{
					"Scan code and configuration stores for authentication material",
				},
			},
			{
				ID:            "A.8.3",
				Framework:     schemas.FrameworkISO27001,
				ControlNumber: "A.8.3",
				Title:         "Information Access Restriction",
				Description:   "Access to information and other associated assets is restricted in accordance with the access control policy.",
				Category:      "Technological",
				Requirements: []string{
					"Restrict access to information per the established policy",
					"Prevent access to files and paths outside the intended scope",
				},
				TestProcedures: []string{
					"Attempt to read assets outside the authorized scope",
				},
			},
			{
				ID:            "A.8.5",
				Framework:     schemas.FrameworkISO27001,
				ControlNumber: "A.8.5",
				Title:         "Secure Authentication",
				Description:   "Secure authentication technologies and procedures are implemented based on access restrictions.",
				Category:      "Technological",
				Requirements: []string{
					"Authenticate users with secure technologies proportional to risk",
					"Protect authentication sessions against hijacking and replay",
				},
				TestProcedures: []string{
					"Review session lifecycle for rotation and secure transport",
				},
			},
			{
				ID:            "A.8.8",
				Framework:     schemas.FrameworkISO27001,
				ControlNumber: "A.8.8",
				Title:         "Management of Technical Vulnerabilities",
				Description:   "Information about technical vulnerabilities is obtained and appropriate measures taken.",
				Category:      "Technological",
				Requirements: []string{
					"Track technical vulnerabilities in components in use",
					"Patch or mitigate vulnerable components within defined timescales",
				},
				TestProcedures: []string{
					"Audit dependency manifests against current advisories",
				},
			},
			{
				ID:            "A.8.9",
				Framework:     schemas.FrameworkISO27001,
				ControlNumber: "A.8.9",
				Title:         "Configuration Management",
				Description:   "Configurations, including security configurations, are established, documented, implemented, and monitored.",
				Category:      "Technological",
				Requirements: []string{
					"Define and apply hardened configurations for all systems",
					"Monitor configurations and correct unauthorized change",
				},
				TestProcedures: []string{
					"Compare deployed configuration against the documented baseline",
				},
			},
			{
				ID:            "A.8.12",
				Framework:     schemas.FrameworkISO27001,
				ControlNumber: "A.8.12",
				Title:         "Data Leakage Prevention",
				Description:   "Data leakage prevention measures are applied to systems, networks, and devices that process sensitive information.",
				Category:      "Technological",
				Requirements: []string{
					"Identify channels through which sensitive information can leak",
					"Prevent exposure of sensitive information to unauthorized parties",
				},
				TestProcedures: []string{
					"Review responses and logs for sensitive data exposure",
				},
			},
			{
				ID:            "A.8.15",
				Framework:     schemas.FrameworkISO27001,
				ControlNumber: "A.8.15",
				Title:         "Logging",
				Description:   "Logs recording activities, exceptions, faults, and other relevant events are produced, stored, protected, and analysed.",
				Category:      "Technological",
				Requirements: []string{
					"Log security-relevant activities with adequate detail",
					"Protect log integrity and analyse logs for anomalies",
				},
				TestProcedures: []string{
					"Trigger security events and verify they appear in protected logs",
				},
			},
			{
				ID:            "A.8.24",
				Framework:     schemas.FrameworkISO27001,
				ControlNumber: "A.8.24",
				Title:         "Use of Cryptography",
				Description:   "Rules for the effective use of cryptography, including key management, are defined and implemented.",
				Category:      "Technological",
				Requirements: []string{
					"Encrypt sensitive information at rest and in transit",
					"Use approved cryptographic algorithms and key lengths",
					"Manage cryptographic keys through their full lifecycle",
				},
				TestProcedures: []string{
					"Inventory cryptographic usage and flag deprecated algorithms",
				},
			},
			{
				ID:            "A.8.26",
				Framework:     schemas.FrameworkISO27001,
				ControlNumber: "A.8.26",
				Title:         "Application Security Requirements",
				Description:   "Information security requirements are identified, specified, and approved when developing or acquiring applications.",
				Category:      "Technological",
				Requirements: []string{
					"Validate all input supplied to applications",
					"Protect transactions against incomplete transmission, misrouting, and unauthorized alteration",
				},
				TestProcedures: []string{
					"Exercise application inputs with hostile payloads",
				},
			},
			{
				ID:            "A.8.28",
				Framework:     schemas.FrameworkISO27001,
				ControlNumber: "A.8.28",
				Title:         "Secure Coding",
				Description:   "Secure coding principles are applied to software development.",
				Category:      "Technological",
				Requirements: []string{
					"Apply secure coding principles across the development lifecycle",
					"Avoid known insecure constructs including unsafe deserialization and dynamic query construction",
				},
				TestProcedures: []string{
					"Review code against the secure coding standard",
				},
			},
		},
		CategoryControls: map[schemas.WeaknessCategory][]string{
			schemas.CategorySQLInjection:             {"A.8.26", "A.8.28"},
			schemas.CategoryCommandInjection:         {"A.8.26", "A.8.28"},
			schemas.CategoryCrossSiteScripting:       {"A.8.26", "A.8.28"},
			schemas.CategoryPathTraversal:            {"A.8.3"},
			schemas.CategoryInsecureDeserialization:  {"A.8.28"},
			schemas.CategoryHardcodedSecret:          {"A.5.17"},
			schemas.CategoryWeakCryptography:         {"A.8.24"},
			schemas.CategoryCleartextTransmission:    {"A.8.24"},
			schemas.CategoryCleartextStorage:         {"A.8.24", "A.8.12"},
			schemas.CategorySSRF:                     {"A.8.26"},
			schemas.CategoryXXE:                      {"A.8.26", "A.8.9"},
			schemas.CategoryBrokenAccessControl:      {"A.5.15", "A.8.3"},
			schemas.CategoryBrokenAuthentication:     {"A.8.5"},
			schemas.CategorySecurityMisconfiguration: {"A.8.9"},
			schemas.CategoryVulnerableDependency:     {"A.8.8"},
			schemas.CategorySensitiveDataExposure:    {"A.8.12"},
			schemas.CategoryInsufficientLogging:      {"A.8.15"},
			schemas.CategoryCSRF:                     {"A.8.26"},
			schemas.CategoryRaceCondition:            {"A.8.28"},
		},
	}
}
