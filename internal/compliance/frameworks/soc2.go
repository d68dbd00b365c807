// File: internal/compliance/frameworks/soc2.go
package frameworks

import "github.com/vexred/aegis-cli/api/schemas"

// SOC2TypeII returns the SOC 2 Type II trust services criteria definition.
func SOC2TypeII() Definition {
	return Definition{
		Framework: schemas.FrameworkSOC2,
		Controls: []schemas.ComplianceControl{
			{
				ID:            "CC6.1",
				Framework:     schemas.FrameworkSOC2,
				ControlNumber: "CC6.1",
				Title:         "Logical Access Security",
				Description:   "The entity implements logical access security software, infrastructure, and architectures over protected information assets.",
				Category:      "Common Criteria",
				Requirements: []string{
					"Restrict logical access to protected information assets to authorized users",
					"Encrypt protected information at rest and in transit",
					"Manage credentials and other authentication factors securely",
				},
				TestProcedures: []string{
					"Inspect access paths to protected assets for authorization enforcement",
					"Verify encryption of protected information in storage and transport",
				},
			},
			{
				ID:            "CC6.6",
				Framework:     schemas.FrameworkSOC2,
				ControlNumber: "CC6.6",
				Title:         "Boundary Protection",
				Description:   "The entity implements logical access security measures to protect against threats from sources outside its system boundaries.",
				Category:      "Common Criteria",
				Requirements: []string{
					"Protect system boundaries against external threat sources",
					"Validate data received from outside the system boundary before processing",
				},
				TestProcedures: []string{
					"Exercise externally reachable interfaces with hostile input",
				},
			},
			{
				ID:            "CC6.7",
				Framework:     schemas.FrameworkSOC2,
				ControlNumber: "CC6.7",
				Title:         "Transmission and Movement of Information",
				Description:   "The entity restricts the transmission, movement, and removal of information to authorized users and processes.",
				Category:      "Common Criteria",
				Requirements: []string{
					"Encrypt information during transmission outside system boundaries",
					"Restrict movement of information to authorized processes",
				},
				TestProcedures: []string{
					"Capture boundary-crossing traffic and check for cleartext data",
				},
			},
			{
				ID:            "CC6.8",
				Framework:     schemas.FrameworkSOC2,
				ControlNumber: "CC6.8",
				Title:         "Unauthorized Software Prevention",
				Description:   "The entity implements controls to prevent or detect and act upon the introduction of unauthorized or malicious software.",
				Category:      "Common Criteria",
				Requirements: []string{
					"Detect and act on unauthorized or vulnerable software components",
					"Verify software integrity before deployment and execution",
				},
				TestProcedures: []string{
					"Review component inventory for unauthorized or end-of-life software",
				},
			},
			{
				ID:            "CC7.1",
				Framework:     schemas.FrameworkSOC2,
				ControlNumber: "CC7.1",
				Title:         "Vulnerability Detection and Monitoring",
				Description:   "The entity uses detection and monitoring procedures to identify changes and vulnerabilities that introduce risk.",
				Category:      "Common Criteria",
				Requirements: []string{
					"Monitor for new vulnerabilities in deployed components",
					"Detect configuration changes that introduce security risk",
				},
				TestProcedures: []string{
					"Review vulnerability scanning cadence and coverage",
				},
			},
			{
				ID:            "CC7.2",
				Framework:     schemas.FrameworkSOC2,
				ControlNumber: "CC7.2",
				Title:         "Anomaly Monitoring",
				Description:   "The entity monitors system components for anomalies indicative of malicious acts, natural disasters, and errors.",
				Category:      "Common Criteria",
				Requirements: []string{
					"Log security events from system components with sufficient detail",
					"Analyse monitoring data for anomalies and raise alerts",
				},
				TestProcedures: []string{
					"Trigger representative security events and verify alerting",
				},
			},
			{
				ID:            "CC8.1",
				Framework:     schemas.FrameworkSOC2,
				ControlNumber: "CC8.1",
				Title:         "Change Management",
				Description:   "The entity authorizes, designs, develops, tests, approves, and implements changes to infrastructure, data, and software.",
				Category:      "Common Criteria",
				Requirements: []string{
					"Test changes for security impact before implementation",
					"Apply secure development practices to all software changes",
				},
				TestProcedures: []string{
					"Sample recent changes for evidence of security testing",
				},
			},
			{
				ID:            "C1.1",
				Framework:     schemas.FrameworkSOC2,
				ControlNumber: "C1.1",
				Title:         "Confidential Information Identification",
				Description:   "The entity identifies and maintains confidential information to meet the entity's objectives related to confidentiality.",
				Category:      "Confidentiality",
				Requirements: []string{
					"Identify confidential information at creation and collection",
					"Protect confidential information against unauthorized disclosure",
				},
				TestProcedures: []string{
					"Sample data flows handling confidential information for protection controls",
				},
			},
		},
		CategoryControls: map[schemas.WeaknessCategory][]string{
			schemas.CategorySQLInjection:             {"CC6.6", "CC8.1"},
			schemas.CategoryCommandInjection:         {"CC6.6", "CC8.1"},
			schemas.CategoryCrossSiteScripting:       {"CC6.6"},
			schemas.CategoryPathTraversal:            {"CC6.1"},
			schemas.CategoryInsecureDeserialization:  {"CC6.6", "CC8.1"},
			schemas.CategoryHardcodedSecret:          {"CC6.1"},
			schemas.CategoryWeakCryptography:         {"CC6.1"},
			schemas.CategoryCleartextTransmission:    {"CC6.7"},
			schemas.CategoryCleartextStorage:         {"CC6.1", "C1.1"},
			schemas.CategorySSRF:                     {"CC6.6"},
			schemas.CategoryXXE:                      {"CC6.6"},
			schemas.CategoryBrokenAccessControl:      {"CC6.1"},
			schemas.CategoryBrokenAuthentication:     {"CC6.1"},
			schemas.CategorySecurityMisconfiguration: {"CC7.1"},
			schemas.CategoryVulnerableDependency:     {"CC6.8", "CC7.1"},
			schemas.CategorySensitiveDataExposure:    {"C1.1"},
			schemas.CategoryInsufficientLogging:      {"CC7.2"},
			schemas.CategoryCSRF:                     {"CC6.6"},
			schemas.CategoryRaceCondition:            {"CC8.1"},
		},
	}
}
