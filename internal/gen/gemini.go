// Package gen implements the external text-generation collaborator: a
// Gemini-backed generator for live play, a deterministic canned generator
// for offline play and tests, and the resilience wrapper that gives every
// generator the bounded-retry/timeout/fallback contract the engine relies
// on.
package gen

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"courtroom/internal/types"
)

// Gemini voices courtroom participants through the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates the client. The API key may be empty, in which case the
// genai client reads it from the environment.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &Gemini{client: client, model: model}, nil
}

// Generate produces one participant's utterance.
func (g *Gemini) Generate(ctx context.Context, req types.GenRequest) (string, error) {
	prompt := buildPrompt(req)
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction(req.Role)}}},
		},
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrTextGenerationFailure, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty response", types.ErrTextGenerationFailure)
	}
	text := strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", fmt.Errorf("%w: blank utterance", types.ErrTextGenerationFailure)
	}
	return text, nil
}

func systemInstruction(role types.Role) string {
	switch role {
	case types.RoleJudge:
		return "You are the presiding judge in a courtroom simulation. Speak with judicial economy: one to three sentences, formal register."
	case types.RoleWitness:
		return "You are a witness under examination. Answer only what was asked, in character, one to three sentences."
	case types.RolePetitionerCounsel, types.RoleRespondentCounsel:
		return "You are trial counsel. Speak as an advocate addressing the court, two to four sentences."
	case types.RoleClerk:
		return "You are the court clerk. Announce procedural matters in one neutral sentence."
	}
	return "You are a participant in a courtroom simulation. Respond briefly and in character."
}

func buildPrompt(req types.GenRequest) string {
	var b strings.Builder
	if req.Persona != "" {
		b.WriteString("Persona: ")
		b.WriteString(req.Persona)
		b.WriteString("\n\n")
	}
	b.WriteString("Situation: ")
	b.WriteString(req.Situation)
	b.WriteString("\n\nRespond with the spoken words only, no stage directions.")
	return b.String()
}
