package harness

// DefaultCases covers the Clearpath documentation corpus: routing tiers,
// retrieval targeting, evaluator flags, and end-to-end answer quality.
func DefaultCases() []Case {
	return []Case{
		// Routing
		{
			ID:                   "R1",
			Query:                "Hi there!",
			ExpectClassification: "simple",
			ExpectModel:          "llama-3.1-8b-instant",
			Description:          "Greeting should route to the simple tier",
		},
		{
			ID:                   "R2",
			Query:                "Can you explain the differences between pricing plans and recommend the best one for a startup?",
			ExpectClassification: "complex",
			ExpectModel:          "llama-3.3-70b-versatile",
			Description:          "Multi-part reasoning question should route to the complex tier",
		},
		{
			ID:                   "R3",
			Query:                "What is Clearpath?",
			ExpectClassification: "simple",
			ExpectModel:          "llama-3.1-8b-instant",
			Description:          "Short factual question should route to the simple tier",
		},
		{
			ID:                   "R4",
			Query:                "My account is not working and I'm getting an error when I try to log in. Can you help me troubleshoot?",
			ExpectClassification: "complex",
			ExpectModel:          "llama-3.3-70b-versatile",
			Description:          "Complaint with troubleshooting should route to the complex tier",
		},
		{
			ID:                   "R5",
			Query:                "Yes",
			ExpectClassification: "simple",
			ExpectModel:          "llama-3.1-8b-instant",
			Description:          "Yes/no response should route to the simple tier",
		},

		// Retrieval
		{
			ID:                   "T1",
			Query:                "What are the keyboard shortcuts?",
			ExpectSourcesContain: "11_Keyboard_Shortcuts",
			Description:          "Should retrieve the keyboard shortcuts document",
		},
		{
			ID:                   "T2",
			Query:                "How much does the Pro plan cost?",
			ExpectSourcesContain: "14_Pricing_Sheet",
			Description:          "Should retrieve the pricing document",
		},
		{
			ID:                      "T3",
			Query:                   "What is the weather today?",
			ExpectNoRelevantSources: true,
			Description:             "Off-topic query should retrieve no relevant chunks",
		},

		// Evaluator
		{
			ID:                 "E1",
			Query:              "Does Clearpath support blockchain?",
			ExpectFlagContains: "refusal",
			Description:        "Should flag a refusal for an off-topic feature",
		},
		{
			ID:               "E2",
			Query:            "Tell me about quantum computing integration",
			ExpectConfidence: "low",
			Description:      "Off-topic technology query should get low confidence",
		},
		{
			ID:               "E3",
			Query:            "What is the meaning of life?",
			ExpectConfidence: "low",
			Description:      "Completely off-topic query should get low confidence",
		},

		// End-to-end
		{
			ID:                   "Q1",
			Query:                "What integrations does Clearpath support?",
			ExpectSourcesContain: "09_Integrations_Catalog",
			Description:          "Should retrieve the integrations catalog document",
		},
		{
			ID:                   "Q2",
			Query:                "How do I reset my password?",
			ExpectAnswerContains: []string{"password"},
			Description:          "Should provide password reset info",
		},
	}
}
