// Package insights turns the detailed claim listing into a short narrative
// written by a chat-completion model.
package insights

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"claimflow/internal/analytics"
	"claimflow/internal/apperr"
	"claimflow/internal/models"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	systemPrompt = "You are a professional financial analyst AI that provides clear, actionable insights about expense claims."
	noInsights   = "No insights generated."
	topN         = 3
)

var tracer = otel.Tracer("claimflow/internal/insights")

// Generator produces a completion for a system and user message pair.
type Generator interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

type ClaimDetailer interface {
	AllClaimsDetailed(ctx context.Context, r analytics.DateRange, filter analytics.StatusFilter) ([]analytics.DetailedClaim, error)
}

type Stats struct {
	TotalClaims    int             `json:"total_claims"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	ApprovedClaims int             `json:"approved_claims"`
	RejectedClaims int             `json:"rejected_claims"`
	PendingClaims  int             `json:"pending_claims"`
	AvgClaimAmount decimal.Decimal `json:"avg_claim_amount"`
	// ApprovalRate is disbursed claims over all claims, in percent.
	ApprovalRate float64 `json:"approval_rate"`
}

type Claimant struct {
	Name   string
	Count  int
	Amount decimal.Decimal
}

type Result struct {
	Insights string `json:"insights"`
	Stats    Stats  `json:"stats"`
}

type Service struct {
	claims  ClaimDetailer
	gen     Generator
	lg      *zap.SugaredLogger
	printer *message.Printer
}

// NewService wires the generator. A nil generator means no API key was
// configured; Generate then fails with an external service error.
func NewService(claims ClaimDetailer, gen Generator, lg *zap.SugaredLogger) *Service {
	return &Service{
		claims:  claims,
		gen:     gen,
		lg:      lg,
		printer: message.NewPrinter(language.MustParse("en-IN")),
	}
}

func (s *Service) Generate(ctx context.Context, r analytics.DateRange) (*Result, error) {
	ctx, span := tracer.Start(ctx, "insights.Generate")
	defer span.End()

	claims, err := s.claims.AllClaimsDetailed(ctx, r, analytics.FilterAll)
	if err != nil {
		return nil, err
	}
	stats := Summarize(claims)
	if s.gen == nil {
		return nil, apperr.New(apperr.KindExternalService, "GROQ_API_KEY not configured")
	}
	prompt := s.Prompt(stats, TopClaimants(claims, topN), r)
	text, err := s.gen.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		s.lg.Errorw("insight generation failed", "err", err)
		return nil, apperr.Wrap(apperr.KindExternalService, err, "failed to generate insights")
	}
	if strings.TrimSpace(text) == "" {
		text = noInsights
	}
	s.lg.Infow("insights generated", "claims", stats.TotalClaims, "chars", len(text))
	return &Result{Insights: text, Stats: stats}, nil
}

func Summarize(claims []analytics.DetailedClaim) Stats {
	var st Stats
	for _, c := range claims {
		st.TotalClaims++
		st.TotalAmount = st.TotalAmount.Add(c.Amount)
		switch c.Status {
		case models.StatusDisbursed:
			st.ApprovedClaims++
		case models.StatusRejected:
			st.RejectedClaims++
		default:
			st.PendingClaims++
		}
	}
	if st.TotalClaims > 0 {
		st.AvgClaimAmount = st.TotalAmount.Div(decimal.NewFromInt(int64(st.TotalClaims))).Round(2)
		st.ApprovalRate = float64(st.ApprovedClaims) / float64(st.TotalClaims) * 100
	}
	return st
}

// TopClaimants ranks claim owners by total amount. Ties keep first-seen order.
func TopClaimants(claims []analytics.DetailedClaim, n int) []Claimant {
	var order []string
	by := map[string]*Claimant{}
	for _, c := range claims {
		cl, ok := by[c.UserID]
		if !ok {
			cl = &Claimant{Name: c.UserName}
			by[c.UserID] = cl
			order = append(order, c.UserID)
		}
		cl.Count++
		cl.Amount = cl.Amount.Add(c.Amount)
	}
	out := make([]Claimant, 0, len(order))
	for _, id := range order {
		out = append(out, *by[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Amount.GreaterThan(out[j].Amount) })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func (s *Service) rupees(d decimal.Decimal) string {
	return "₹" + s.printer.Sprint(number.Decimal(d.InexactFloat64(), number.MaxFractionDigits(2)))
}

func (s *Service) Prompt(st Stats, top []Claimant, r analytics.DateRange) string {
	var b strings.Builder
	b.WriteString("You are a financial analyst AI assistant analyzing expense claim data for a company. Provide concise, actionable insights.\n\n")
	b.WriteString("**Claims Data Summary:**\n")
	fmt.Fprintf(&b, "- Total Claims: %d\n", st.TotalClaims)
	fmt.Fprintf(&b, "- Total Amount: %s\n", s.rupees(st.TotalAmount))
	fmt.Fprintf(&b, "- Average Claim: %s\n", s.rupees(st.AvgClaimAmount))
	fmt.Fprintf(&b, "- Approved: %d (%.1f%%)\n", st.ApprovedClaims, st.ApprovalRate)
	fmt.Fprintf(&b, "- Rejected: %d\n", st.RejectedClaims)
	fmt.Fprintf(&b, "- Pending: %d\n", st.PendingClaims)
	if r.Start != "" {
		end := r.End
		if end == "" {
			end = "present"
		}
		fmt.Fprintf(&b, "- Date Range: %s to %s\n", r.Start, end)
	} else {
		b.WriteString("- All Time Data\n")
	}

	b.WriteString("\n**Top 3 Claimants by Amount:**\n")
	for i, c := range top {
		fmt.Fprintf(&b, "%d. %s: %s (%d claims)\n", i+1, c.Name, s.rupees(c.Amount), c.Count)
	}

	b.WriteString("\n**Your Task:**\n")
	b.WriteString("Analyze this data and provide:\n")
	b.WriteString("1. **Key Trends** - What patterns do you notice? (2-3 bullets)\n")
	b.WriteString("2. **Anomalies/Alerts** - Any unusual patterns or concerns? (1-2 bullets)\n")
	b.WriteString("3. **Recommendations** - What actions should management take? (2-3 bullets)\n\n")
	b.WriteString("Format your response in a clear, professional manner using bullet points. Be specific and use the actual numbers from the data. Keep it concise (max 200 words).")
	return b.String()
}
