package safety

// DefaultPIICategories returns the standard PII phrase table. Categories
// are checked in this order and the first match wins.
func DefaultPIICategories() []PIICategory {
	return []PIICategory{
		{
			Name: "contact",
			Phrases: []string{
				"contact information", "contact details", "phone number", "mobile number",
				"telephone", "email address", "email id", "address",
			},
		},
		{
			Name: "identity",
			Phrases: []string{
				"full name", "patient name", "first name", "last name", "name of patient",
				"patient's name", "names", "patient identifier",
			},
		},
		{
			Name: "personal",
			Phrases: []string{
				"social security", "ssn", "date of birth", "dob", "birth date",
				"patient id", "medical record number", "mrn", "patient number",
				"insurance id", "policy number", "medicare number", "medicaid number",
			},
		},
		{
			Name: "location",
			Phrases: []string{
				"home address", "street address", "zip code", "residence", "city",
				"state", "postal code", "apartment number", "house number",
			},
		},
	}
}

// DefaultPersonalPatterns returns first-person phrasings that indicate a
// request for personal medical advice.
func DefaultPersonalPatterns() []string {
	return []string{
		"i have", "my symptoms", "should i take", "what should i do", "am i",
		"my diagnosis", "i feel", "i am experiencing", "i need advice",
		"can i take", "is it safe for me", "do i have", "my condition",
		"personal advice", "about myself", "my medical", "my treatment",
	}
}

// DefaultGeneralizingTerms returns terms that mark a query as
// population-level despite first-person phrasing.
func DefaultGeneralizingTerms() []string {
	return []string{"patient", "patients", "generally", "typically", "usually"}
}

// DefaultSuspiciousTerms returns security and destructive-action terms.
func DefaultSuspiciousTerms() []string {
	return []string{
		"password", "login", "credentials", "username",
		"credit card", "bank account", "financial information",
		"delete", "modify", "change record", "alter data",
		"confidential", "secret", "restricted access",
	}
}
