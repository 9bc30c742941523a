package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/questx-lab/taskmaster/config"
	"github.com/questx-lab/taskmaster/pkg/api"
	"github.com/questx-lab/taskmaster/pkg/retry"
	"golang.org/x/time/rate"
)

var ErrDisabled = errors.New("text generation is disabled")

type IEndpoint interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type Endpoint struct {
	cfg          config.AIConfigs
	retry        retry.Policy
	limiter      *rate.Limiter
	apiGenerator api.Generator
}

func New(cfg config.AIConfigs, policy config.RetryConfigs) *Endpoint {
	rps := cfg.RPS
	if rps <= 0 {
		rps = 1
	}

	burst := int(rps)
	if burst < 1 {
		burst = 1
	}

	return &Endpoint{
		cfg:          cfg,
		retry:        retry.Policy{Attempts: policy.Attempts, Backoff: policy.Backoff, Timeout: cfg.Timeout},
		limiter:      rate.NewLimiter(rate.Limit(rps), burst),
		apiGenerator: api.NewGenerator(strings.TrimSuffix(cfg.URL, "/")),
	}
}

func (e *Endpoint) GenerateText(ctx context.Context, prompt string) (string, error) {
	if !e.cfg.Enable || e.cfg.APIKey == "" {
		return "", ErrDisabled
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return "", err
	}

	var resp *api.Response
	err := retry.Do(ctx, e.retry, func(ctx context.Context) error {
		var err error
		resp, err = e.apiGenerator.New("/models/%s:generateContent", e.cfg.Model).
			Query(api.Parameter{"key": e.cfg.APIKey}).
			Body(api.JSON{
				"contents": []api.JSON{
					{"parts": []api.JSON{{"text": prompt}}},
				},
			}).
			POST(ctx)
		if err != nil {
			return err
		}

		if resp.Code == http.StatusTooManyRequests || resp.Code >= http.StatusInternalServerError {
			return fmt.Errorf("generator responded %d", resp.Code)
		}

		if !resp.IsSuccess() {
			return retry.Permanent(fmt.Errorf("generator responded %d: %s", resp.Code, string(resp.RawBody)))
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	body, err := resp.JSON()
	if err != nil {
		return "", err
	}

	candidates, err := body.GetArray("candidates")
	if err != nil {
		return "", err
	}

	if len(candidates) == 0 {
		return "", errors.New("generator returned no candidate")
	}

	parts, err := candidates[0].GetArray("content.parts")
	if err != nil {
		return "", err
	}

	texts := []string{}
	for _, part := range parts {
		text, err := part.GetString("text")
		if err != nil {
			return "", err
		}
		texts = append(texts, text)
	}

	if len(texts) == 0 {
		return "", errors.New("generator returned an empty candidate")
	}

	return strings.Join(texts, ""), nil
}
