package wizard

// SeverityLabel maps a slider value to its display label. Each band is
// inclusive on its upper bound.
func SeverityLabel(v float64) string {
	switch {
	case v <= 0.2:
		return "None or minimal"
	case v <= 0.4:
		return "Mild"
	case v <= 0.6:
		return "Moderate"
	case v <= 0.8:
		return "Significant"
	default:
		return "Severe"
	}
}

// Disclaimer is shown beneath every result.
const Disclaimer = "This assessment is not a medical diagnosis. Always consult with a healthcare professional regarding health concerns."

// Headline is the result banner text.
func Headline(r Result) string {
	if r.NeedsTesting {
		return "Testing Recommended"
	}
	return "Testing May Not Be Needed"
}

// NextSteps returns the follow-up guidance for a result.
func NextSteps(r Result) []string {
	if r.NeedsTesting {
		return []string{
			"Schedule an appointment with your healthcare provider",
			"Request a thyroid function test (TSH, T3, T4)",
			"Bring a list of your symptoms to your appointment",
		}
	}
	return []string{
		"Monitor your symptoms",
		"Consider lifestyle changes that may help with symptoms",
		"If symptoms persist or worsen, consult with a healthcare provider",
	}
}
