// Package explain writes plain-language explanations of screening results
// with a language model, falling back to fixed text whenever the model is
// unavailable.
package explain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/carescope/internal/llm"
	"github.com/abhisek/carescope/internal/predict"
	"github.com/abhisek/carescope/internal/wizard"
)

// Fallback texts shown when no model answer is available.
const (
	FallbackCondition = "Unable to generate explanation at this time. Please consult with your healthcare provider for information about your condition."
	FallbackScan      = "Information about this condition is not available at the moment."
)

// FallbackDiet is the generic thyroid diet used when none can be generated.
var FallbackDiet = predict.DietRecommendations{
	Include: []predict.Food{
		{Name: "Seafood", Reason: "Rich in iodine and selenium"},
		{Name: "Fruits and vegetables", Reason: "Provide essential vitamins and antioxidants"},
		{Name: "Lean proteins", Reason: "Support thyroid hormone production"},
		{Name: "Whole grains", Reason: "Provide fiber and nutrients"},
		{Name: "Nuts and seeds", Reason: "Contain healthy fats and minerals"},
	},
	Avoid: []predict.Food{
		{Name: "Processed foods", Reason: "May contain additives that interfere with thyroid function"},
		{Name: "Excessive soy products", Reason: "May affect thyroid hormone absorption"},
		{Name: "High-sugar foods", Reason: "Can contribute to inflammation"},
		{Name: "Alcohol", Reason: "Can affect thyroid function"},
		{Name: "Caffeine", Reason: "May interfere with medication absorption"},
	},
}

const maxTokens = 2048

// Explanation is a short summary plus practical tips.
type Explanation struct {
	Summary string   `json:"summary"`
	Tips    []string `json:"tips"`
	// Fallback is set when the text is canned rather than generated.
	Fallback bool `json:"-"`
}

// Service generates explanations. A nil provider always falls back.
type Service struct {
	provider    llm.Provider
	temperature float64
}

// New creates a Service.
func New(p llm.Provider, temperature float64) *Service {
	return &Service{provider: p, temperature: temperature}
}

// Available reports whether a model is configured.
func (s *Service) Available() bool { return s != nil && s.provider != nil }

// Survey explains a symptom-survey result.
func (s *Service) Survey(ctx context.Context, sub wizard.Submission, res wizard.Result) Explanation {
	var b strings.Builder
	fmt.Fprintf(&b, "A %s-year-old (%s, family history of thyroid disease: %s) rated these symptoms from 0 (none) to 1 (severe):\n",
		sub.PersonalInfo.Age, sub.PersonalInfo.Gender, sub.PersonalInfo.FamilyHistory)
	for _, q := range wizard.Questions {
		v := sub.Answers[q.ID]
		fmt.Fprintf(&b, "- %s: %.1f (%s)\n", q.Prompt, v, wizard.SeverityLabel(v))
	}
	fmt.Fprintf(&b, "\nThe screening model concluded: %s (confidence %.0f%%).\n", wizard.Headline(res), res.Confidence*100)
	b.WriteString("Explain in simple terms which symptoms drove this result and what the person should do next. ")
	b.WriteString("Give at most 4 short practical tips.")

	return s.explain(llm.WithPurpose(ctx, "survey-explanation"), b.String(), FallbackCondition)
}

// Lung explains a lung risk result.
func (s *Service) Lung(ctx context.Context, req predict.LungRequest, res predict.LungResult) Explanation {
	var yes []string
	for _, f := range predict.LungFactors {
		if req.Factors[f.Key] {
			yes = append(yes, f.Label)
		}
	}
	factors := "none"
	if len(yes) > 0 {
		factors = strings.Join(yes, ", ")
	}
	prompt := fmt.Sprintf(
		"A %d-year-old (%s) reported these lung cancer risk factors: %s.\n"+
			"The risk model returned probability %.2f, which is %s risk.\n"+
			"Explain what this means for a general audience in 3-4 sentences and give at most 4 short practical tips.",
		req.Age, genderWord(req.Gender), factors, res.Probability, strings.ToLower(predict.RiskLevel(res.Probability)))

	return s.explain(llm.WithPurpose(ctx, "lung-explanation"), prompt, FallbackCondition)
}

// ThyroidCondition explains a thyroid lab class when the service sent no
// explanation of its own.
func (s *Service) ThyroidCondition(ctx context.Context, class string) Explanation {
	prompt := fmt.Sprintf(
		"Provide a clear, easy-to-understand explanation of the thyroid condition: %s.\n"+
			"Cover what it means in simple terms, common symptoms, potential causes and how it might affect daily life. "+
			"Keep it under 300 words for someone without a medical background.", class)
	return s.explain(llm.WithPurpose(ctx, "thyroid-explanation"), prompt, FallbackCondition)
}

// BrainScan explains a scan classification when the service sent no
// explanation of its own.
func (s *Service) BrainScan(ctx context.Context, res predict.BrainResult) Explanation {
	prompt := "Provide a brief, simple explanation about what it means when an MRI brain scan shows no tumor. " +
		"Make it understandable for a general audience in 2-3 sentences."
	if res.TumorDetected() {
		prompt = fmt.Sprintf("Provide a brief, simple explanation about what a %s brain tumor is. "+
			"Include basic information about its characteristics, common symptoms, and general prognosis. "+
			"Make it understandable for a general audience in 3-4 sentences.", res.TumorType())
	}
	return s.explain(llm.WithPurpose(ctx, "scan-explanation"), prompt, FallbackScan)
}

// Diet returns five foods to include and five to avoid for class.
func (s *Service) Diet(ctx context.Context, class string) (predict.DietRecommendations, bool) {
	if !s.Available() {
		return FallbackDiet, true
	}
	ctx = llm.WithPurpose(ctx, "diet-recommendations")
	req := llm.UserPrompt(nutritionistPrompt, fmt.Sprintf(
		"Provide dietary recommendations for someone with %s. "+
			"Include exactly 5 foods to include and 5 foods to avoid, each with a brief reason. "+
			"Ensure the recommendations are evidence-based and specific to %s.", class, class),
		dietSchema, maxTokens)
	req.Temperature = s.temperature

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		warn("diet recommendations", err)
		return FallbackDiet, true
	}
	var d predict.DietRecommendations
	if err := json.Unmarshal(resp.Content, &d); err != nil || d.Empty() {
		return FallbackDiet, true
	}
	return d, false
}

func (s *Service) explain(ctx context.Context, prompt, fallback string) Explanation {
	if !s.Available() {
		return Explanation{Summary: fallback, Fallback: true}
	}
	req := llm.UserPrompt(explainerPrompt, prompt, explanationSchema, maxTokens)
	req.Temperature = s.temperature

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		warn(llm.PurposeFrom(ctx), err)
		return Explanation{Summary: fallback, Fallback: true}
	}
	var e Explanation
	if err := json.Unmarshal(resp.Content, &e); err != nil || strings.TrimSpace(e.Summary) == "" {
		return Explanation{Summary: fallback, Fallback: true}
	}
	return e
}

func genderWord(g string) string {
	if g == "F" {
		return "female"
	}
	return "male"
}

// warn is silent for the expected "no provider" case.
func warn(what string, err error) {
	if errors.Is(err, llm.ErrNotConfigured) {
		return
	}
	warnf("%s: %v", what, err)
}
