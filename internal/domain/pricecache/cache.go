// Package pricecache keeps the item price mapping of the process. It is loaded
// once at startup and refreshed by the cron manager.
package pricecache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/puzpuzpuz/xsync"
	"github.com/questx-lab/taskmaster/pkg/api/osrsprices"
	"github.com/questx-lab/taskmaster/pkg/xcontext"
	"github.com/questx-lab/taskmaster/pkg/xredis"
)

const snapshotTTL = 7 * 24 * time.Hour

type Lookup interface {
	Lookup(name string) (osrsprices.Item, bool)
}

type Cache struct {
	endpoint    osrsprices.IEndpoint
	redisClient xredis.Client
	items       *xsync.MapOf[string, osrsprices.Item]
}

// New returns an empty cache. redisClient may be nil, the cache then has no
// snapshot to fall back on.
func New(endpoint osrsprices.IEndpoint, redisClient xredis.Client) *Cache {
	return &Cache{
		endpoint:    endpoint,
		redisClient: redisClient,
		items:       xsync.NewMapOf[osrsprices.Item](),
	}
}

// Refresh reloads the mapping from the price API. If the API cannot be
// reached and the cache is still empty, the last redis snapshot is used.
func (c *Cache) Refresh(ctx context.Context) error {
	items, err := c.endpoint.GetMapping(ctx)
	if err != nil {
		if c.items.Size() > 0 {
			return err
		}

		snapshot, snapshotErr := c.loadSnapshot(ctx)
		if snapshotErr != nil {
			return errors.Join(err, snapshotErr)
		}

		xcontext.Logger(ctx).Warnf("Price api is unavailable, use the snapshot of %d items: %v", len(snapshot), err)
		items = snapshot
	} else {
		c.saveSnapshot(ctx, items)
	}

	for _, item := range items {
		c.items.Store(normalize(item.Name), item)
	}

	xcontext.Logger(ctx).Infof("Loaded %d item prices", c.items.Size())
	return nil
}

func (c *Cache) Lookup(name string) (osrsprices.Item, bool) {
	return c.items.Load(normalize(name))
}

func (c *Cache) Len() int {
	return c.items.Size()
}

func (c *Cache) loadSnapshot(ctx context.Context) ([]osrsprices.Item, error) {
	if c.redisClient == nil {
		return nil, errors.New("no snapshot storage")
	}

	var items []osrsprices.Item
	if err := c.redisClient.GetObj(ctx, xredis.ItemMappingKey, &items); err != nil {
		return nil, err
	}

	return items, nil
}

func (c *Cache) saveSnapshot(ctx context.Context, items []osrsprices.Item) {
	if c.redisClient == nil {
		return
	}

	if err := c.redisClient.SetObj(ctx, xredis.ItemMappingKey, items, snapshotTTL); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot save the price snapshot: %v", err)
	}
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// FormatGP renders an amount of coins the way players write it.
func FormatGP(amount int64) string {
	switch {
	case amount >= 1_000_000_000:
		return fmt.Sprintf("%.1fB gp", float64(amount)/1_000_000_000)
	case amount >= 1_000_000:
		return fmt.Sprintf("%.1fM gp", float64(amount)/1_000_000)
	case amount >= 1_000:
		return fmt.Sprintf("%.1fK gp", float64(amount)/1_000)
	default:
		return fmt.Sprintf("%d gp", amount)
	}
}

// PrizeValue returns the formatted value of prize, or an empty string if the
// prize is not a known item.
func PrizeValue(lookup Lookup, prize string) string {
	if lookup == nil {
		return ""
	}

	item, ok := lookup.Lookup(prize)
	if !ok {
		return ""
	}

	value := item.HighAlch
	if item.Value > value {
		value = item.Value
	}

	if value <= 0 {
		return ""
	}

	return FormatGP(value)
}
