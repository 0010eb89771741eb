package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
)

// jsonArrayRe pulls the first JSON array out of the model's prose.
var jsonArrayRe = regexp.MustCompile(`(?s)\[.*\]`)

const promptTemplate = `You are a ruthless operating manager. Generate 3-5 DAILY, NON-NEGOTIABLE actions for a founder.

Rules:
- No administrative tasks.
- At least 1 action must be uncomfortable (contacting people, publishing, committing, asking for money).
- Actions must directly drive the goal.
- Return ONLY a JSON array of objects:
  { "text": "...", "impact_weight": 0.5-1.5, "difficulty": 1-3, "non_negotiable": true }

GOAL: %s
DIFFICULTY (1-5): %d
HISTORY (brief): %s
`

// remoteActions asks the configured model for a day's actions. Every failure
// kind (request build, transport, bad status, undecodable body, no array in
// the output, too few usable actions) returns an error so the caller can take
// the offline path.
func (g *Generator) remoteActions(ctx context.Context, goalText string, difficulty int, history string) ([]Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	body := map[string]interface{}{
		"model":       g.model,
		"input":       fmt.Sprintf(promptTemplate, goalText, difficulty, history),
		"temperature": 0.4,
	}
	payload, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/responses", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("llm call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("llm status %d: %s", resp.StatusCode, data)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var result struct {
		Output []struct {
			Type    string `json:"type"`
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"output"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	var txt strings.Builder
	for _, item := range result.Output {
		if item.Type != "message" {
			continue
		}
		for _, c := range item.Content {
			if c.Type == "output_text" || c.Type == "text" {
				txt.WriteString(c.Text)
			}
		}
	}

	raw := jsonArrayRe.FindString(txt.String())
	if raw == "" {
		return nil, fmt.Errorf("no JSON array in model output")
	}

	var parsed []struct {
		Text         string  `json:"text"`
		ImpactWeight float64 `json:"impact_weight"`
		Difficulty   int     `json:"difficulty"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("decode actions: %w", err)
	}

	cleaned := make([]Candidate, 0, len(parsed))
	for _, a := range parsed {
		text := strings.TrimSpace(a.Text)
		if text == "" {
			continue
		}
		if len(text) > maxActionText {
			text = text[:maxActionText]
		}
		w := a.ImpactWeight
		if w == 0 {
			w = 1.0
		}
		d := a.Difficulty
		if d == 0 {
			d = 2
		}
		cleaned = append(cleaned, Candidate{
			Text:          text,
			ImpactWeight:  clampWeight(w),
			Difficulty:    capDifficulty(d),
			NonNegotiable: true,
		})
		if len(cleaned) == maxActions {
			break
		}
	}

	if len(cleaned) < minActions {
		return nil, fmt.Errorf("model returned %d usable actions, need at least %d", len(cleaned), minActions)
	}
	return cleaned, nil
}
