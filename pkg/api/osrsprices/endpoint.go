package osrsprices

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/questx-lab/taskmaster/config"
	"github.com/questx-lab/taskmaster/pkg/api"
	"github.com/questx-lab/taskmaster/pkg/retry"
)

type Item struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Value    int64  `json:"value"`
	HighAlch int64  `json:"highalch"`
}

type IEndpoint interface {
	GetMapping(ctx context.Context) ([]Item, error)
}

type Endpoint struct {
	userAgent    string
	retry        retry.Policy
	apiGenerator api.Generator
}

func New(cfg config.PriceConfigs, policy config.RetryConfigs) *Endpoint {
	return &Endpoint{
		userAgent:    cfg.UserAgent,
		retry:        retry.Policy{Attempts: policy.Attempts, Backoff: policy.Backoff, Timeout: 30 * time.Second},
		apiGenerator: api.NewGenerator(strings.TrimSuffix(cfg.URL, "/")),
	}
}

func (e *Endpoint) GetMapping(ctx context.Context) ([]Item, error) {
	var resp *api.Response
	err := retry.Do(ctx, e.retry, func(ctx context.Context) error {
		var err error
		resp, err = e.apiGenerator.New("/mapping").Header("User-Agent", e.userAgent).GET(ctx)
		if err != nil {
			return err
		}

		if resp.Code != http.StatusOK {
			return fmt.Errorf("price api responded %d", resp.Code)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	array, ok := resp.Body.(api.Array)
	if !ok {
		return nil, fmt.Errorf("invalid mapping body (%T)", resp.Body)
	}

	items := []Item{}
	for _, raw := range array {
		name, err := raw.GetString("name")
		if err != nil || name == "" {
			continue
		}

		id, err := raw.GetInt("id")
		if err != nil {
			continue
		}

		// value and highalch are missing for some untradeable items.
		value, _ := raw.GetInt("value")
		highAlch, _ := raw.GetInt("highalch")

		items = append(items, Item{ID: id, Name: name, Value: value, HighAlch: highAlch})
	}

	return items, nil
}
