// File: internal/compliance/frameworks/awswa.go
package frameworks

import "github.com/vexred/aegis-cli/api/schemas"

// AWSWellArchitected returns the AWS Well-Architected security pillar
// definition.
func AWSWellArchitected() Definition {
	return Definition{
		Framework: schemas.FrameworkAWSWA,
		Controls: []schemas.ComplianceControl{
			{
				ID:            "SEC-1",
				Framework:     schemas.FrameworkAWSWA,
				ControlNumber: "SEC-1",
				Title:         "Operate Workloads Securely",
				Description:   "Security is operated through up-to-date practices, threat awareness, and automated testing in the pipeline.",
				Category:      "Security Foundations",
				Requirements: []string{
					"Keep up to date with security recommendations and threats",
					"Automate testing and validation of security controls in pipelines",
				},
				TestProcedures: []string{
					"Review pipeline definitions for automated security test stages",
				},
			},
			{
				ID:            "SEC-2",
				Framework:     schemas.FrameworkAWSWA,
				ControlNumber: "SEC-2",
				Title:         "Manage Identities",
				Description:   "Machine and human identities are managed with strong sign-in mechanisms and temporary credentials.",
				Category:      "Identity and Access Management",
				Requirements: []string{
					"Rely on a centralized identity provider",
					"Use strong sign-in mechanisms and enforce multi-factor authentication",
					"Use temporary credentials instead of long-lived secrets",
					"Store secrets in a managed secrets service, never in code",
				},
				TestProcedures: []string{
					"Scan source and configuration for long-lived credentials",
					"Review sign-in policies for MFA enforcement",
				},
			},
			{
				ID:            "SEC-3",
				Framework:     schemas.FrameworkAWSWA,
				ControlNumber: "SEC-3",
				Title:         "Manage Permissions",
				Description:   "Permissions grant least-privilege access to machine and human identities.",
				Category:      "Identity and Access Management",
				Requirements: []string{
					"Grant least privilege access",
					"Enforce access control based on lifecycle and attributes",
					"Continuously reduce permissions toward what is used",
				},
				TestProcedures: []string{
					"Compare granted permissions against access activity",
				},
			},
			{
				ID:            "SEC-5",
				Framework:     schemas.FrameworkAWSWA,
				ControlNumber: "SEC-5",
				Title:         "Protect Networks",
				Description:   "Network protection inspects and controls traffic at all layers.",
				Category:      "Infrastructure Protection",
				Requirements: []string{
					"Control traffic at all network layers",
					"Restrict server-originated requests to approved destinations",
					"Inspect and filter traffic at ingress and egress",
				},
				TestProcedures: []string{
					"Review egress controls for services that fetch remote resources",
				},
			},
			{
				ID:            "SEC-6",
				Framework:     schemas.FrameworkAWSWA,
				ControlNumber: "SEC-6",
				Title:         "Protect Compute",
				Description:   "Compute resources are hardened, patched, and reduced in attack surface.",
				Category:      "Infrastructure Protection",
				Requirements: []string{
					"Reduce attack surface by hardening and removing unused components",
					"Patch and update software including third-party dependencies",
					"Validate software integrity before deployment",
				},
				TestProcedures: []string{
					"Audit dependency versions against published advisories",
					"Review deployed images against the hardening baseline",
				},
			},
			{
				ID:            "SEC-7",
				Framework:     schemas.FrameworkAWSWA,
				ControlNumber: "SEC-7",
				Title:         "Classify Data",
				Description:   "Data is classified so protection can be matched to sensitivity.",
				Category:      "Data Protection",
				Requirements: []string{
					"Identify and classify the data the workload handles",
					"Define protection requirements per classification level",
				},
				TestProcedures: []string{
					"Sample stored data and verify classification coverage",
				},
			},
			{
				ID:            "SEC-8",
				Framework:     schemas.FrameworkAWSWA,
				ControlNumber: "SEC-8",
				Title:         "Protect Data at Rest",
				Description:   "Data at rest is protected with encryption and access controls.",
				Category:      "Data Protection",
				Requirements: []string{
					"Encrypt data at rest with managed keys",
					"Enforce access control on data stores and key material",
					"Use strong, current cryptographic algorithms",
				},
				TestProcedures: []string{
					"Verify encryption configuration on every persistent store",
				},
			},
			{
				ID:            "SEC-9",
				Framework:     schemas.FrameworkAWSWA,
				ControlNumber: "SEC-9",
				Title:         "Protect Data in Transit",
				Description:   "Data in transit is protected with secure protocols and authenticated endpoints.",
				Category:      "Data Protection",
				Requirements: []string{
					"Encrypt data in transit with current transport security",
					"Authenticate network communications at both ends",
				},
				TestProcedures: []string{
					"Scan service endpoints for cleartext listeners",
				},
			},
			{
				ID:            "SEC-10",
				Framework:     schemas.FrameworkAWSWA,
				ControlNumber: "SEC-10",
				Title:         "Anticipate and Respond to Incidents",
				Description:   "Incident response capability is prepared, practiced, and informed by logging.",
				Category:      "Incident Response",
				Requirements: []string{
					"Log security events with enough context for investigation",
					"Develop and iterate incident response plans and runbooks",
				},
				TestProcedures: []string{
					"Run a game day exercising the incident response plan",
				},
			},
			{
				ID:            "SEC-11",
				Framework:     schemas.FrameworkAWSWA,
				ControlNumber: "SEC-11",
				Title:         "Build Security into the Application Lifecycle",
				Description:   "Application security testing and safe coding practices are embedded in the development lifecycle.",
				Category:      "Application Security",
				Requirements: []string{
					"Perform regular penetration testing and code review",
					"Validate and sanitize all input handled by the application",
					"Train teams on secure coding and review for common weakness classes",
				},
				TestProcedures: []string{
					"Review static analysis and code review coverage for critical paths",
				},
			},
		},
		CategoryControls: map[schemas.WeaknessCategory][]string{
			schemas.CategorySQLInjection:             {"SEC-11"},
			schemas.CategoryCommandInjection:         {"SEC-11"},
			schemas.CategoryCrossSiteScripting:       {"SEC-11"},
			schemas.CategoryPathTraversal:            {"SEC-11", "SEC-3"},
			schemas.CategoryInsecureDeserialization:  {"SEC-11", "SEC-6"},
			schemas.CategoryHardcodedSecret:          {"SEC-2"},
			schemas.CategoryWeakCryptography:         {"SEC-8"},
			schemas.CategoryCleartextTransmission:    {"SEC-9"},
			schemas.CategoryCleartextStorage:         {"SEC-8"},
			schemas.CategorySSRF:                     {"SEC-5"},
			schemas.CategoryXXE:                      {"SEC-11", "SEC-6"},
			schemas.CategoryBrokenAccessControl:      {"SEC-3"},
			schemas.CategoryBrokenAuthentication:     {"SEC-2"},
			schemas.CategorySecurityMisconfiguration: {"SEC-6"},
			schemas.CategoryVulnerableDependency:     {"SEC-6"},
			schemas.CategorySensitiveDataExposure:    {"SEC-7", "SEC-8"},
			schemas.CategoryInsufficientLogging:      {"SEC-10"},
			schemas.CategoryCSRF:                     {"SEC-11"},
			schemas.CategoryRaceCondition:            {"SEC-11"},
		},
	}
}
