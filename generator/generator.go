package generator

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Candidate is one proposed daily action before it is persisted.
type Candidate struct {
	Text          string  `json:"text"`
	ImpactWeight  float64 `json:"impact_weight"`
	Difficulty    int     `json:"difficulty"`
	NonNegotiable bool    `json:"non_negotiable"`
}

const (
	minActions    = 3
	maxActions    = 5
	maxActionText = 300
	minWeight     = 0.5
	maxWeight     = 1.5
)

// Generator produces daily action candidates for a goal. With an API key it
// asks the configured model first and falls back to the offline heuristics on
// any recognized failure; without a key it is heuristic-only. Generate never
// fails outward.
type Generator struct {
	apiKey  string
	baseURL string
	model   string
	timeout time.Duration
	client  *http.Client
	log     *zap.SugaredLogger
}

// New builds a Generator. An empty apiKey silently selects heuristic-only mode.
func New(apiKey, baseURL string, timeout time.Duration, log *zap.SugaredLogger) *Generator {
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Generator{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   "gpt-4.1-mini",
		timeout: timeout,
		client:  &http.Client{},
		log:     log,
	}
}

// Generate returns 3 to 5 candidates for the goal. history is a short textual
// digest of recent results fed to the model for context.
func (g *Generator) Generate(ctx context.Context, goalText string, difficulty int, history string) []Candidate {
	if g.apiKey == "" {
		return OfflineActions(goalText, difficulty)
	}
	actions, err := g.remoteActions(ctx, goalText, difficulty, history)
	if err != nil {
		// Remote trouble is invisible to the caller; the founder just gets
		// the heuristic list.
		g.log.Warnf("action generation fell back to offline heuristics: %v", err)
		return OfflineActions(goalText, difficulty)
	}
	return actions
}

// OfflineActions is the deterministic keyword-heuristic generator. It keys a
// small set of action templates off the goal text and always returns a valid
// list.
func OfflineActions(goalText string, difficulty int) []Candidate {
	lower := strings.ToLower(strings.TrimSpace(goalText))

	var actions []Candidate
	add := func(text string, w float64, d int) {
		actions = append(actions, Candidate{Text: text, ImpactWeight: w, Difficulty: d, NonNegotiable: true})
	}

	switch {
	case containsAny(lower, "mrr", "sales", "customers", "customer", "revenue", "sell", "pipeline"):
		add("Contact 10 prospects (DM/email) with ONE offer. Log replies.", 1.4, capDifficulty(difficulty+1))
		add("Improve the offer (headline + price + guarantee). Publish it.", 1.2, capDifficulty(difficulty))
		add("Book 1 short sales call (15 min). No research-avoidance.", 1.5, capDifficulty(difficulty+1))
		add("Ask for money: send 1 invoice/checkout link or request a deposit.", 1.5, 3)
	case containsAny(lower, "product", "mvp", "app", "build", "launch", "ship"):
		add("Set a deadline: ship 1 concrete feature today. No side quests.", 1.3, capDifficulty(difficulty))
		add("Cut 1 feature you 'want' but don't need. Commit the change.", 1.2, capDifficulty(difficulty))
		add("Post a public update (X/LinkedIn) showing what you shipped.", 1.1, capDifficulty(difficulty))
		add("Get 3 people to test and give feedback. Collect responses.", 1.4, capDifficulty(difficulty+1))
	default:
		add("Write today's 3 deliverables in 1 sentence each. No fluff.", 1.0, capDifficulty(difficulty))
		add("Do the most uncomfortable task first. 45-minute timer. No distractions.", 1.4, capDifficulty(difficulty+1))
		add("Remove 1 blocker by contacting a human (not Googling).", 1.3, capDifficulty(difficulty+1))
		add("Ship something visible: post/commit/demo. Proof > intention.", 1.2, capDifficulty(difficulty))
	}

	if len(actions) > maxActions {
		actions = actions[:maxActions]
	}
	for len(actions) < minActions {
		add("Ship a result you can show publicly.", 1.2, capDifficulty(difficulty))
	}
	return actions
}

func containsAny(s string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func capDifficulty(d int) int {
	if d < 1 {
		return 1
	}
	if d > 3 {
		return 3
	}
	return d
}

func clampWeight(w float64) float64 {
	if w < minWeight {
		return minWeight
	}
	if w > maxWeight {
		return maxWeight
	}
	return w
}
