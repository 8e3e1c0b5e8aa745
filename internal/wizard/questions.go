package wizard

// Question is one symptom-rating step of the survey.
type Question struct {
	ID     string
	Prompt string
	Info   string
}

// Questions is the fixed, ordered symptom list. Step k (1-based) shows
// Questions[k-1].
var Questions = []Question{
	{
		ID:     "fatigue",
		Prompt: "How would you rate your level of fatigue or tiredness?",
		Info:   "Thyroid issues can cause persistent fatigue that does not improve with rest.",
	},
	{
		ID:     "weight_change",
		Prompt: "Have you experienced unexplained weight changes?",
		Info:   "Hypothyroidism can cause weight gain, while hyperthyroidism may cause weight loss.",
	},
	{
		ID:     "cold_sensitivity",
		Prompt: "How sensitive are you to cold temperatures?",
		Info:   "Increased sensitivity to cold is common with hypothyroidism.",
	},
	{
		ID:     "hair_loss",
		Prompt: "Have you noticed increased hair loss or thinning?",
		Info:   "Thyroid disorders can affect hair follicles, leading to hair loss.",
	},
	{
		ID:     "dry_skin",
		Prompt: "How dry or rough is your skin?",
		Info:   "Dry, rough skin can be a symptom of hypothyroidism.",
	},
	{
		ID:     "mood_changes",
		Prompt: "Have you experienced mood changes like depression or anxiety?",
		Info:   "Thyroid hormones affect brain function and can influence mood.",
	},
	{
		ID:     "neck_swelling",
		Prompt: "Have you noticed any swelling in your neck area?",
		Info:   "An enlarged thyroid gland (goiter) may indicate thyroid issues.",
	},
	{
		ID:     "heart_rate_changes",
		Prompt: "Have you experienced changes in your heart rate (too fast or slow)?",
		Info:   "Hyperthyroidism can cause rapid heartbeat, while hypothyroidism may slow it down.",
	},
}

// QuestionCount is N, the number of symptom steps.
var QuestionCount = len(Questions)

// QuestionByID returns the question with the given id.
func QuestionByID(id string) (Question, bool) {
	for _, q := range Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}
