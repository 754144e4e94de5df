package service

import (
	"context"
	"log"
	"time"

	"github.com/cinetick/cinema-booking/internal/model"
	"github.com/cinetick/cinema-booking/internal/payment"
	"github.com/cinetick/cinema-booking/internal/repository"
)

// ReportService builds the daily settlement report: one row per payment
// method summarizing the previous UTC day's orders, with each gateway
// order re-verified against its provider rather than trusted locally.
type ReportService struct {
	orders    *repository.OrderRepo
	summaries *repository.SummaryRepo
	gateways  payment.Registry
	now       func() time.Time
}

// NewReportService wires the reconciler.
func NewReportService(orders *repository.OrderRepo, summaries *repository.SummaryRepo, gateways payment.Registry) *ReportService {
	return &ReportService{orders: orders, summaries: summaries, gateways: gateways, now: time.Now}
}

// methodTally accumulates one payment method's counters.
type methodTally struct {
	success int64
	failed  int64
	amount  int64
}

// RunDaily reconciles the previous UTC day and persists one summary row
// per payment method.  Cash orders are trusted from local status; every
// gateway order is re-queried at its provider, and a provider error
// counts the order as failed without touching it.  The returned
// summaries are what was persisted.
func (s *ReportService) RunDaily(ctx context.Context) ([]model.DailyTransactionSummary, error) {
	day := s.now().UTC().AddDate(0, 0, -1)
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	orders, err := s.orders.ListByDateRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	tallies := make(map[model.PaymentMethod]*methodTally, len(model.AllPaymentMethods()))
	for _, m := range model.AllPaymentMethods() {
		tallies[m] = &methodTally{}
	}

	for _, ot := range orders {
		tally, ok := tallies[ot.Transaction.Method]
		if !ok {
			log.Printf("daily report: order %d has unknown payment method %d, skipping", ot.Order.ID, ot.Transaction.Method)
			continue
		}

		if ot.Transaction.Method.IsCash() {
			if ot.Order.Status == model.OrderSuccess {
				tally.success++
				tally.amount += ot.Order.TotalPrice
			} else {
				tally.failed++
			}
			continue
		}

		gw, err := s.gateways.Get(ot.Transaction.Method)
		if err != nil {
			tally.failed++
			continue
		}
		status, err := gw.QueryStatus(ctx, ot.Transaction.TransactionCode)
		if err != nil {
			log.Printf("daily report: query %s order %d: %v", ot.Transaction.Method, ot.Order.ID, err)
			tally.failed++
			continue
		}
		if status.Paid {
			tally.success++
			tally.amount += ot.Order.TotalPrice
		} else {
			tally.failed++
		}
	}

	reportDate := from.Format("2006-01-02")
	result := make([]model.DailyTransactionSummary, 0, len(tallies))
	for _, m := range model.AllPaymentMethods() {
		tally := tallies[m]
		summary := model.DailyTransactionSummary{
			ReportDate:   reportDate,
			Method:       m,
			TotalOrders:  tally.success + tally.failed,
			TotalSuccess: tally.success,
			TotalFailed:  tally.failed,
			TotalAmount:  tally.amount,
		}
		if err := s.summaries.Upsert(ctx, summary); err != nil {
			return nil, err
		}
		result = append(result, summary)
	}
	return result, nil
}

// StartDailyTicker runs RunDaily once per interval until ctx is
// cancelled.  main starts it as a goroutine with a 24h interval.
func (s *ReportService) StartDailyTicker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.RunDaily(ctx); err != nil {
				log.Printf("daily report: %v", err)
			}
		}
	}
}
