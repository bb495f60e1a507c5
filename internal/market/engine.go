package market

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/miubank/go-miubank/internal/ledger"
)

// Engine owns every Asset price. AdvancePrices is the only mutating path;
// lookups read the latest persisted price without triggering a new advance.
type Engine struct {
	store ledger.Store
	cfg   Config
}

func NewEngine(store ledger.Store, cfg Config) *Engine {
	return &Engine{store: store, cfg: cfg}
}

// AdvancePrices walks every asset one step and persists the new prices in a
// single transaction. Stocks follow the banded random walk, fixed income
// accrues its daily-equivalent rate. LastUpdate is refreshed on every asset
// even when the price is unchanged.
func (e *Engine) AdvancePrices(ctx context.Context) ([]ledger.Asset, error) {
	now := e.cfg.Now()

	var updated []ledger.Asset
	err := e.store.WithTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		assets, err := tx.ListAssets(ctx)
		if err != nil {
			return err
		}

		updated = updated[:0]
		for _, asset := range assets {
			asset.CurrentPrice = e.nextPrice(asset)
			asset.LastUpdate = now
			if err := tx.UpdateAssetPrice(ctx, asset.Id, asset.CurrentPrice, now); err != nil {
				return err
			}
			updated = append(updated, asset)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (e *Engine) nextPrice(asset ledger.Asset) decimal.Decimal {
	switch {
	case asset.Type == ledger.Acao:
		return e.walkStock(asset.CurrentPrice)
	case asset.Type.FixedIncome() && !asset.Rate.IsZero():
		return e.accrueFixedIncome(asset)
	default:
		return asset.CurrentPrice
	}
}

func (e *Engine) walkStock(price decimal.Decimal) decimal.Decimal {
	variation := e.drawVariation()

	// Fair coin for direction.
	if e.cfg.Rand() >= 0.5 {
		variation = -variation
	}

	next := price.Add(price.Mul(decimal.NewFromFloat(variation)))
	if next.LessThan(e.cfg.FloorPrice) {
		next = e.cfg.FloorPrice
	}
	return next
}

// drawVariation returns zero when no bands are configured, leaving prices
// where they are.
func (e *Engine) drawVariation() float64 {
	if len(e.cfg.Bands) == 0 {
		return 0
	}
	r := e.cfg.Rand()
	for _, band := range e.cfg.Bands {
		if r < band.Threshold {
			return band.Min + e.cfg.Rand()*(band.Max-band.Min)
		}
	}
	last := e.cfg.Bands[len(e.cfg.Bands)-1]
	return last.Min + e.cfg.Rand()*(last.Max-last.Min)
}

func (e *Engine) accrueFixedIncome(asset ledger.Asset) decimal.Decimal {
	dailyRate := asset.Rate.Div(decimal.NewFromInt(int64(e.cfg.DaysPerYear)))
	next := asset.CurrentPrice.Add(asset.CurrentPrice.Mul(dailyRate))
	if asset.RateType == ledger.PosFixado {
		next = next.Mul(e.cfg.InflationFactor)
	}
	return next
}

// Pure read paths. Prices are never staler than one scheduler tick.

func (e *Engine) ListAssets(ctx context.Context) ([]ledger.Asset, error) {
	return e.store.ListAssets(ctx)
}

func (e *Engine) AssetById(ctx context.Context, id uuid.UUID) (ledger.Asset, error) {
	return e.store.AssetById(ctx, id)
}

func (e *Engine) AssetBySymbol(ctx context.Context, symbol string) (ledger.Asset, error) {
	return e.store.AssetBySymbol(ctx, symbol)
}
