// Package inventory applies an order's items to the displayed stock of the
// catalog, one patch per product.
package inventory

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"alphastore/models"
)

const (
	Deduct  = -1
	Restock = 1
)

// maxInFlight bounds concurrent patches for large orders.
const maxInFlight = 8

// Patcher adds change to a product's displayed stock and returns the result.
type Patcher interface {
	PatchInventory(ctx context.Context, productID primitive.ObjectID, change int) (*models.Product, error)
}

type Adjuster struct {
	patcher Patcher
	lg      *zap.Logger
}

func NewAdjuster(p Patcher, lg *zap.Logger) *Adjuster {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Adjuster{patcher: p, lg: lg}
}

// Deltas folds items into one signed change per product id. PreBuild lines
// carry no catalog stock and are skipped; a zero quantity counts as one.
func Deltas(items []models.CartLine, factor int) map[primitive.ObjectID]int {
	out := make(map[primitive.ObjectID]int)
	for _, it := range items {
		if it.ItemType == models.ItemTypePreBuild {
			continue
		}
		qty := it.Quantity
		if qty == 0 {
			qty = 1
		}
		out[it.ItemID] += qty * factor
	}
	return out
}

// Adjust issues one patch per product with factor applied to the summed
// quantities. Every patch is attempted even if some fail; the returned map
// holds the changes that were applied, keyed by product hex id, and the
// error combines all failures.
func (a *Adjuster) Adjust(ctx context.Context, items []models.CartLine, factor int) (map[string]int, error) {
	deltas := Deltas(items, factor)

	var (
		mu      sync.Mutex
		applied = make(map[string]int, len(deltas))
		errs    error
		g       errgroup.Group
	)
	g.SetLimit(maxInFlight)

	for id, change := range deltas {
		if change == 0 {
			continue
		}
		id, change := id, change
		g.Go(func() error {
			p, err := a.patcher.PatchInventory(ctx, id, change)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				a.lg.Warn("Inventory patch failed",
					zap.String("product_id", id.Hex()),
					zap.Int("change", change),
					zap.Error(err),
				)
				errs = multierr.Append(errs, errors.Wrapf(err, "patch %s", id.Hex()))
				return nil
			}
			applied[id.Hex()] = change
			if p.LowStock() {
				a.lg.Warn("Low stock",
					zap.String("product_id", id.Hex()),
					zap.String("name", p.Name),
					zap.Int("stock", p.Stock),
					zap.Int("threshold", p.LowStockThreshold),
				)
			}
			return nil
		})
	}
	_ = g.Wait()

	return applied, errs
}
