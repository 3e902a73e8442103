package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/UIUC-Hort-Club/PlantPass/internal/common"
	"github.com/UIUC-Hort-Club/PlantPass/internal/notify"
	"github.com/UIUC-Hort-Club/PlantPass/internal/obs"
	"github.com/UIUC-Hort-Club/PlantPass/internal/txn"
)

// BucketSize is the width of one sales-over-time interval.
const BucketSize = 30 * time.Minute

const bucketKeyLayout = "2006-01-02 15:04"

const reportCacheKey = "analytics:report"

// Source pages through every stored transaction. An empty cursor starts from
// the beginning; an empty returned cursor ends the scan.
type Source interface {
	Scan(ctx context.Context, cursor string, limit int) ([]txn.Transaction, string, error)
}

// Summary is the per-transaction line in the report.
type Summary struct {
	PurchaseID    string          `json:"purchase_id"`
	Timestamp     int64           `json:"timestamp"`
	TotalQuantity int64           `json:"total_quantity"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
}

// Report is the sales dashboard payload.
type Report struct {
	TotalSales           decimal.Decimal            `json:"total_sales"`
	TotalOrders          int64                      `json:"total_orders"`
	TotalUnitsSold       int64                      `json:"total_units_sold"`
	AverageItemsPerOrder decimal.Decimal            `json:"average_items_per_order"`
	AverageOrderValue    decimal.Decimal            `json:"average_order_value"`
	SalesOverTime        map[string]decimal.Decimal `json:"sales_over_time"`
	Transactions         []Summary                  `json:"transactions"`
}

// Aggregate folds transactions into a Report. Pure over its input: the same
// transactions always produce the same report regardless of order.
func Aggregate(transactions []txn.Transaction) Report {
	report := Report{
		TotalSales:           decimal.Zero,
		AverageItemsPerOrder: decimal.Zero,
		AverageOrderValue:    decimal.Zero,
		SalesOverTime:        map[string]decimal.Decimal{},
		Transactions:         make([]Summary, 0, len(transactions)),
	}

	var (
		haveBounds bool
		minBucket  time.Time
		maxBucket  time.Time
	)
	for _, t := range transactions {
		qty := t.TotalQuantity()
		total := t.Receipt.Total

		report.TotalOrders++
		report.TotalUnitsSold += qty
		report.TotalSales = report.TotalSales.Add(total)
		report.Transactions = append(report.Transactions, Summary{
			PurchaseID:    t.PurchaseID,
			Timestamp:     t.Timestamp,
			TotalQuantity: qty,
			GrandTotal:    total,
		})

		bucket := BucketOf(t.Timestamp)
		key := bucket.Format(bucketKeyLayout)
		report.SalesOverTime[key] = report.SalesOverTime[key].Add(total)
		if !haveBounds || bucket.Before(minBucket) {
			minBucket = bucket
		}
		if !haveBounds || bucket.After(maxBucket) {
			maxBucket = bucket
		}
		haveBounds = true
	}

	if report.TotalOrders > 0 {
		orders := decimal.NewFromInt(report.TotalOrders)
		report.AverageItemsPerOrder = decimal.NewFromInt(report.TotalUnitsSold).Div(orders)
		report.AverageOrderValue = report.TotalSales.Div(orders)
	}

	// Quiet half-hours between the first and last sale show as explicit
	// zeros so the chart keeps a continuous time axis.
	if haveBounds {
		for cursor := minBucket; !cursor.After(maxBucket); cursor = cursor.Add(BucketSize) {
			key := cursor.Format(bucketKeyLayout)
			if _, ok := report.SalesOverTime[key]; !ok {
				report.SalesOverTime[key] = decimal.Zero
			}
		}
	}

	return report
}

// BucketOf aligns a unix timestamp to the start of its 30 minute UTC window.
func BucketOf(timestamp int64) time.Time {
	return time.Unix(timestamp, 0).UTC().Truncate(BucketSize)
}

// Service computes the sales report over the transaction store with an
// optional Redis cache in front. It also subscribes to the event bus so any
// transaction write drops the cached report.
type Service struct {
	Source   Source
	R        *redis.Client
	TTL      time.Duration
	PageSize int
	Log      zerolog.Logger
}

// Report returns the current sales report, serving from cache when possible.
func (s *Service) Report(ctx context.Context) (Report, error) {
	if s == nil || s.Source == nil {
		return Report{}, common.StoreError(errors.New("analytics source not configured"))
	}

	if s.R != nil {
		raw, err := s.R.Get(ctx, reportCacheKey).Bytes()
		if err == nil {
			var cached Report
			decodeErr := json.Unmarshal(raw, &cached)
			if decodeErr == nil {
				obs.CountAnalyticsCache("hit")
				return cached, nil
			}
			s.Log.Warn().Err(decodeErr).Msg("decode cached analytics report")
		} else if !errors.Is(err, redis.Nil) {
			s.Log.Warn().Err(err).Msg("read analytics report cache")
		}
		obs.CountAnalyticsCache("miss")
	}

	transactions, err := s.scanAll(ctx)
	if err != nil {
		return Report{}, common.StoreError(fmt.Errorf("scan transactions: %w", err))
	}
	report := Aggregate(transactions)

	if s.R != nil {
		if encoded, err := json.Marshal(report); err == nil {
			if err := s.R.Set(ctx, reportCacheKey, encoded, s.ttl()).Err(); err != nil {
				s.Log.Warn().Err(err).Msg("write analytics report cache")
			}
		}
	}
	return report, nil
}

// Notify implements notify.Notifier. Any transaction change invalidates the
// cached report so the next dashboard load recomputes it.
func (s *Service) Notify(ctx context.Context, event notify.Event) error {
	if s == nil || s.R == nil {
		return nil
	}
	if err := s.R.Del(ctx, reportCacheKey).Err(); err != nil {
		return fmt.Errorf("invalidate analytics cache: %w", err)
	}
	return nil
}

func (s *Service) scanAll(ctx context.Context) ([]txn.Transaction, error) {
	page := s.PageSize
	if page <= 0 {
		page = 200
	}
	var (
		all    []txn.Transaction
		cursor string
	)
	for {
		batch, next, err := s.Source.Scan(ctx, cursor, page)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if next == "" {
			return all, nil
		}
		cursor = next
	}
}

func (s *Service) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return 30 * time.Second
}
