// File: internal/compliance/frameworks/regulatory.go
package frameworks

import "github.com/vexred/aegis-cli/api/schemas"

// Regulatory returns the combined GDPR / CCPA / HIPAA definition. The
// catalog holds the technical-safeguard obligations that code-level
// findings can evidence; purely procedural obligations are out of scope.
func Regulatory() Definition {
	return Definition{
		Framework: schemas.FrameworkRegulatory,
		Controls: []schemas.ComplianceControl{
			{
				ID:            "GDPR-25",
				Framework:     schemas.FrameworkRegulatory,
				ControlNumber: "Art. 25",
				Title:         "Data Protection by Design and by Default",
				Description:   "Technical and organisational measures implement data-protection principles effectively from the design stage.",
				Category:      "GDPR",
				Requirements: []string{
					"Implement data protection measures at the time of system design",
					"Process only personal data necessary for each specific purpose by default",
				},
				TestProcedures: []string{
					"Review data flows for collection beyond stated purpose",
				},
			},
			{
				ID:            "GDPR-32",
				Framework:     schemas.FrameworkRegulatory,
				ControlNumber: "Art. 32",
				Title:         "Security of Processing",
				Description:   "Appropriate technical measures ensure a level of security appropriate to the risk, including encryption of personal data.",
				Category:      "GDPR",
				Requirements: []string{
					"Encrypt personal data where appropriate to the risk",
					"Ensure ongoing confidentiality, integrity, and availability of processing systems",
					"Regularly test and evaluate the effectiveness of security measures",
				},
				TestProcedures: []string{
					"Inspect storage and transport of personal data for encryption",
					"Review security testing cadence for processing systems",
				},
			},
			{
				ID:            "GDPR-33",
				Framework:     schemas.FrameworkRegulatory,
				ControlNumber: "Art. 33",
				Title:         "Breach Notification",
				Description:   "Personal data breaches are detected and notified to the supervisory authority without undue delay.",
				Category:      "GDPR",
				Requirements: []string{
					"Detect personal data breaches through monitoring and logging",
					"Record breach facts, effects, and remedial action",
				},
				TestProcedures: []string{
					"Verify breach-relevant events are logged and alertable",
				},
			},
			{
				ID:            "CCPA-1798.150",
				Framework:     schemas.FrameworkRegulatory,
				ControlNumber: "§ 1798.150",
				Title:         "Reasonable Security Procedures",
				Description:   "Consumers may sue for breaches resulting from failure to implement reasonable security procedures appropriate to the nature of the information.",
				Category:      "CCPA",
				Requirements: []string{
					"Implement reasonable security procedures for personal information",
					"Prevent unauthorized access, exfiltration, theft, or disclosure of personal information",
				},
				TestProcedures: []string{
					"Review controls protecting personal information against unauthorized access",
				},
			},
			{
				ID:            "HIPAA-164.312a",
				Framework:     schemas.FrameworkRegulatory,
				ControlNumber: "§ 164.312(a)",
				Title:         "Access Control",
				Description:   "Technical policies and procedures allow access to electronic protected health information only to authorized persons or programs.",
				Category:      "HIPAA",
				Requirements: []string{
					"Grant access to protected health information only to authorized users and programs",
					"Implement encryption and decryption mechanisms for protected health information",
				},
				TestProcedures: []string{
					"Attempt access to health records with an unauthorized principal",
				},
			},
			{
				ID:            "HIPAA-164.312b",
				Framework:     schemas.FrameworkRegulatory,
				ControlNumber: "§ 164.312(b)",
				Title:         "Audit Controls",
				Description:   "Mechanisms record and examine activity in systems that contain or use electronic protected health information.",
				Category:      "HIPAA",
				Requirements: []string{
					"Record activity in systems containing protected health information",
					"Examine recorded activity for unauthorized use",
				},
				TestProcedures: []string{
					"Verify audit trails cover access to health information systems",
				},
			},
			{
				ID:            "HIPAA-164.312c",
				Framework:     schemas.FrameworkRegulatory,
				ControlNumber: "§ 164.312(c)",
				Title:         "Integrity Controls",
				Description:   "Electronic protected health information is protected from improper alteration or destruction.",
				Category:      "HIPAA",
				Requirements: []string{
					"Protect health information from improper alteration or destruction",
					"Authenticate the integrity of transmitted health information",
				},
				TestProcedures: []string{
					"Review transmission paths for integrity verification",
				},
			},
			{
				ID:            "HIPAA-164.312e",
				Framework:     schemas.FrameworkRegulatory,
				ControlNumber: "§ 164.312(e)",
				Title:         "Transmission Security",
				Description:   "Technical security measures guard against unauthorized access to electronic protected health information transmitted over networks.",
				Category:      "HIPAA",
				Requirements: []string{
					"Encrypt protected health information transmitted over electronic networks",
					"Guard transmitted health information against unauthorized access",
				},
				TestProcedures: []string{
					"Capture transmissions of health information and verify encryption",
				},
			},
		},
		CategoryControls: map[schemas.WeaknessCategory][]string{
			schemas.CategorySQLInjection:             {"GDPR-32", "CCPA-1798.150"},
			schemas.CategoryCommandInjection:         {"GDPR-32", "CCPA-1798.150"},
			schemas.CategoryCrossSiteScripting:       {"GDPR-32"},
			schemas.CategoryPathTraversal:            {"HIPAA-164.312a", "GDPR-32"},
			schemas.CategoryInsecureDeserialization:  {"GDPR-32", "HIPAA-164.312c"},
			schemas.CategoryHardcodedSecret:          {"GDPR-32", "CCPA-1798.150"},
			schemas.CategoryWeakCryptography:         {"GDPR-32", "HIPAA-164.312e"},
			schemas.CategoryCleartextTransmission:    {"HIPAA-164.312e", "GDPR-32"},
			schemas.CategoryCleartextStorage:         {"GDPR-32", "HIPAA-164.312a"},
			schemas.CategorySSRF:                     {"GDPR-32"},
			schemas.CategoryXXE:                      {"GDPR-32"},
			schemas.CategoryBrokenAccessControl:      {"HIPAA-164.312a", "CCPA-1798.150", "GDPR-25"},
			schemas.CategoryBrokenAuthentication:     {"HIPAA-164.312a", "CCPA-1798.150"},
			schemas.CategorySecurityMisconfiguration: {"GDPR-32"},
			schemas.CategoryVulnerableDependency:     {"GDPR-32", "CCPA-1798.150"},
			schemas.CategorySensitiveDataExposure:    {"GDPR-25", "CCPA-1798.150", "HIPAA-164.312a"},
			schemas.CategoryInsufficientLogging:      {"GDPR-33", "HIPAA-164.312b"},
			schemas.CategoryCSRF:                     {"GDPR-32"},
			schemas.CategoryRaceCondition:            {"HIPAA-164.312c"},
		},
	}
}
