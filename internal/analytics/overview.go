package analytics

import (
	"context"
	"sort"

	"claimflow/internal/apperr"
	"claimflow/internal/models"

	"github.com/shopspring/decimal"
)

type Totals struct {
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

func (t *Totals) add(c models.Claim) {
	t.Count++
	t.Amount = t.Amount.Add(c.Amount)
}

type Overview struct {
	TotalClaims   int                      `json:"total_claims"`
	TotalAmount   decimal.Decimal          `json:"total_amount"`
	AverageAmount decimal.Decimal          `json:"average_amount"`
	ByStatus      map[models.Status]Totals `json:"by_status"`
}

func (s *Service) Overview(ctx context.Context, r DateRange) (*Overview, error) {
	ctx, span := tracer.Start(ctx, "analytics.Overview")
	defer span.End()
	claims, err := s.load(ctx, r)
	if err != nil {
		return nil, err
	}
	return summarize(claims), nil
}

func summarize(claims []models.Claim) *Overview {
	o := &Overview{ByStatus: map[models.Status]Totals{}}
	for _, c := range claims {
		o.TotalClaims++
		o.TotalAmount = o.TotalAmount.Add(c.Amount)
		t := o.ByStatus[c.Status]
		t.add(c)
		o.ByStatus[c.Status] = t
	}
	o.AverageAmount = average(o.TotalAmount, o.TotalClaims)
	return o
}

func average(total decimal.Decimal, n int) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(n))).Round(2)
}

type Granularity string

const (
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
)

type Bucket struct {
	Date   string          `json:"date"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// bucketKey returns the day, the Sunday starting the week, or YYYY-MM.
func bucketKey(date string, g Granularity) (string, bool) {
	t, ok := parseDate(date)
	if !ok {
		return "", false
	}
	switch g {
	case Week:
		return t.AddDate(0, 0, -int(t.Weekday())).Format(dateLayout), true
	case Month:
		return t.Format("2006-01"), true
	default:
		return t.Format(dateLayout), true
	}
}

// TimeSeries groups claims by calendar bucket, ascending. An empty
// granularity means daily.
func (s *Service) TimeSeries(ctx context.Context, r DateRange, g Granularity) ([]Bucket, error) {
	ctx, span := tracer.Start(ctx, "analytics.TimeSeries")
	defer span.End()
	switch g {
	case "":
		g = Day
	case Day, Week, Month:
	default:
		return nil, apperr.Validation("granularity must be day, week or month, got %q", g)
	}
	claims, err := s.load(ctx, r)
	if err != nil {
		return nil, err
	}
	return s.group(claims, g), nil
}

func (s *Service) group(claims []models.Claim, g Granularity) []Bucket {
	byKey := map[string]*Bucket{}
	for _, c := range claims {
		key, ok := bucketKey(c.Date, g)
		if !ok {
			s.lg.Warnw("claim with malformed date skipped", "claim_id", c.ID, "date", c.Date)
			continue
		}
		b, ok := byKey[key]
		if !ok {
			b = &Bucket{Date: key}
			byKey[key] = b
		}
		b.Count++
		b.Amount = b.Amount.Add(c.Amount)
	}
	out := make([]Bucket, 0, len(byKey))
	for _, b := range byKey {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

type MonthBucket struct {
	Month  string          `json:"month"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

func (s *Service) monthly(claims []models.Claim) []MonthBucket {
	buckets := s.group(claims, Month)
	out := make([]MonthBucket, len(buckets))
	for i, b := range buckets {
		out[i] = MonthBucket{Month: b.Date, Count: b.Count, Amount: b.Amount}
	}
	return out
}
