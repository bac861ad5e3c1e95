package client

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

// Planner calls the language-model endpoint that generates action plans for
// newly created tasks.
type Planner struct {
	base
	apiToken string
}

// NewPlanner creates a plan-generation client.
func NewPlanner(baseURL, apiToken string, timeout time.Duration) *Planner {
	return &Planner{
		base:     newBase(baseURL, timeout),
		apiToken: apiToken,
	}
}

type planRequest struct {
	Prompt string `json:"prompt"`
}

type planResponse struct {
	Result struct {
		Response string `json:"response"`
	} `json:"result"`
}

// GeneratePlan posts the prompt and returns the trimmed generated plan. A 200
// response that lacks the result.response field yields an empty plan rather
// than an error; callers treat an empty plan as "nothing to attach".
func (p *Planner) GeneratePlan(ctx context.Context, prompt string) (string, error) {
	headers := map[string]string{"Authorization": "Bearer " + p.apiToken}

	data, err := p.do(ctx, http.MethodPost, "", headers, planRequest{Prompt: prompt}, http.StatusOK)
	if err != nil {
		return "", err
	}
	var decoded planResponse
	if err := sonic.Unmarshal(data, &decoded); err != nil {
		return "", &TransportError{Status: http.StatusOK, Body: snippet(data), Err: err}
	}
	return strings.TrimSpace(decoded.Result.Response), nil
}
