package service

import (
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/smartbites/backend/config"
	"github.com/smartbites/backend/internal/models"
)

// ProfileContext is either NoProfile or WithProfile
type ProfileContext interface {
	summaryParts(currency string) []string
}

// NoProfile is used for anonymous callers and users without a profile
type NoProfile struct{}

func (NoProfile) summaryParts(string) []string { return nil }

// WithProfile carries the preferences of a signed-in user
type WithProfile struct {
	DietaryPreference models.DietaryPreference
	Allergies         string
	Budget            *float64
}

func (p WithProfile) summaryParts(currency string) []string {
	var parts []string
	if p.DietaryPreference != "" {
		parts = append(parts, "Dietary preference: "+string(p.DietaryPreference))
	}
	if allergies := strings.TrimSpace(p.Allergies); allergies != "" {
		parts = append(parts, "Allergies: "+allergies)
	}
	if p.Budget != nil {
		parts = append(parts, fmt.Sprintf("Monthly budget: %s%.2f", currency, *p.Budget))
	}
	return parts
}

// ProfileFromModel converts a stored profile, nil meaning no profile
func ProfileFromModel(profile *models.UserProfile) ProfileContext {
	if profile == nil {
		return NoProfile{}
	}
	return WithProfile{
		DietaryPreference: profile.DietaryPreference,
		Allergies:         profile.Allergies,
		Budget:            profile.Budget,
	}
}

// PromptPayload is the request body sent to the generate endpoint
type PromptPayload struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Images []string `json:"images,omitempty"`
}

// PromptComposer builds inference payloads from a user's prompt and profile
type PromptComposer struct {
	model          string
	currencySymbol string
	defaultPrompt  string
}

// NewPromptComposer creates a new PromptComposer instance
func NewPromptComposer(cfg config.PromptConfig, model string) *PromptComposer {
	return &PromptComposer{
		model:          model,
		currencySymbol: cfg.CurrencySymbol,
		defaultPrompt:  cfg.DefaultPrompt,
	}
}

// Summary joins the profile clauses with ". " in a fixed order
func (c *PromptComposer) Summary(profile ProfileContext) string {
	if profile == nil {
		return ""
	}
	return strings.Join(profile.summaryParts(c.currencySymbol), ". ")
}

// Compose prefixes the prompt with the profile summary and attaches the
// image, if any, as a single base64 entry. An empty image counts as none.
func (c *PromptComposer) Compose(prompt string, profile ProfileContext, image io.Reader) (PromptPayload, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		prompt = c.defaultPrompt
	}

	payload := PromptPayload{Model: c.model, Prompt: prompt}
	if summary := c.Summary(profile); summary != "" {
		payload.Prompt = summary + ". " + prompt
	}

	if image != nil {
		data, err := io.ReadAll(image)
		if err != nil {
			return PromptPayload{}, fmt.Errorf("%w: %v", ErrImageEncoding, err)
		}
		if len(data) > 0 {
			payload.Images = []string{base64.StdEncoding.EncodeToString(data)}
		}
	}

	return payload, nil
}
