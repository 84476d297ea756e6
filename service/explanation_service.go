package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tax-agent/domain"
)

const (
	defaultExplanationURL   = "https://api.openai.com/v1/chat/completions"
	defaultExplanationModel = "gpt-4o-mini"

	explanationSystemPrompt = "Du bist Steuerberater für private Immobilieninvestoren in Deutschland. " +
		"Du erklärst Einkommensteuer, Solidaritätszuschlag und Kirchensteuer sachlich, knapp und auf Deutsch. " +
		"Du nennst die konkreten Beträge und gibst keine Rechtsberatung."
)

// ExplanationService produces a short German explanation of a tax result,
// through an OpenAI-compatible chat endpoint when an API key is configured.
type ExplanationService struct {
	apiKey     string
	apiURL     string
	model      string
	enabled    bool
	httpClient *http.Client
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func NewExplanationService(apiKey, apiURL, model string, timeout time.Duration) *ExplanationService {
	if apiURL == "" {
		apiURL = defaultExplanationURL
	}
	if model == "" {
		model = defaultExplanationModel
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ExplanationService{
		apiKey:  apiKey,
		apiURL:  apiURL,
		model:   model,
		enabled: apiKey != "",
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (s *ExplanationService) Enabled() bool {
	return s.enabled
}

// Explain never fails: without a model, or on any model error, it returns the
// template explanation.
func (s *ExplanationService) Explain(
	ctx context.Context,
	input domain.TaxCalculationInput,
	result domain.TaxCalculationResult,
) string {
	if !s.enabled {
		return FallbackExplanation(input, result)
	}

	explanation, err := s.callLLM(ctx, explanationPrompt(input, result))
	if err != nil {
		log.WithError(err).Warn("explanation model call failed, using template")
		return FallbackExplanation(input, result)
	}
	return explanation
}

func assessmentLabel(assessment domain.AssessmentType) string {
	if assessment == domain.AssessmentSplitting {
		return "Zusammenveranlagung (Splittingtarif)"
	}
	return "Einzelveranlagung (Grundtarif)"
}

func explanationPrompt(input domain.TaxCalculationInput, result domain.TaxCalculationResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Erkläre diese Steuerberechnung in 3-4 Sätzen.\n\n")
	fmt.Fprintf(&b, "- Zu versteuerndes Einkommen: %.0f EUR\n", result.TaxableIncome)
	fmt.Fprintf(&b, "- Veranlagung: %s\n", assessmentLabel(input.AssessmentType))
	fmt.Fprintf(&b, "- Kinder: %d (Kinderfreibetrag angesetzt: %t)\n", input.ChildrenCount, result.ChildAllowanceUsed)
	fmt.Fprintf(&b, "- Einkommensteuer: %.0f EUR\n", result.IncomeTax)
	fmt.Fprintf(&b, "- Solidaritätszuschlag: %.0f EUR\n", result.SolidaritySurcharge)
	fmt.Fprintf(&b, "- Kirchensteuer: %.0f EUR\n", result.ChurchTax)
	fmt.Fprintf(&b, "- Steuer gesamt: %.0f EUR, netto: %.0f EUR\n", result.TotalTax, result.NetIncome)
	fmt.Fprintf(&b, "- Grenzsteuersatz: %.1f %%, Durchschnittssteuersatz: %.1f %%\n", result.MarginalTaxRate, result.EffectiveTaxRate)
	if input.Bundesland != "" {
		fmt.Fprintf(&b, "- Bundesland: %s\n", domain.BundeslandName(input.Bundesland))
	}
	b.WriteString("\nGehe auf den Unterschied zwischen Grenz- und Durchschnittssteuersatz ein.")
	return b.String()
}

// FallbackExplanation renders the template explanation used when no model is available.
func FallbackExplanation(input domain.TaxCalculationInput, result domain.TaxCalculationResult) string {
	if result.TotalTax == 0 {
		return fmt.Sprintf("Bei einem zu versteuernden Einkommen von %.0f EUR fällt in der %s keine Einkommensteuer an, "+
			"da das Einkommen den Grundfreibetrag nicht übersteigt.",
			result.TaxableIncome, assessmentLabel(input.AssessmentType))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Bei einem zu versteuernden Einkommen von %.0f EUR beträgt die Einkommensteuer in der %s %.0f EUR.",
		result.TaxableIncome, assessmentLabel(input.AssessmentType), result.IncomeTax)
	if result.ChildAllowanceUsed {
		fmt.Fprintf(&b, " Für %d Kinder wurde der Kinderfreibetrag berücksichtigt.", input.ChildrenCount)
	}
	if result.SolidaritySurcharge > 0 {
		fmt.Fprintf(&b, " Hinzu kommt ein Solidaritätszuschlag von %.0f EUR.", result.SolidaritySurcharge)
	} else {
		b.WriteString(" Ein Solidaritätszuschlag fällt nicht an.")
	}
	if result.ChurchTax > 0 {
		fmt.Fprintf(&b, " Die Kirchensteuer beträgt %.0f EUR.", result.ChurchTax)
	}
	fmt.Fprintf(&b, " Insgesamt ergeben sich %.0f EUR Steuern, netto verbleiben %.0f EUR. "+
		"Jeder weitere Euro wird mit %.1f %% besteuert, im Durchschnitt liegt die Belastung bei %.1f %%.",
		result.TotalTax, result.NetIncome, result.MarginalTaxRate, result.EffectiveTaxRate)
	return b.String()
}

func (s *ExplanationService) callLLM(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: explanationSystemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens: 300,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", err
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no response from model")
	}

	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}
