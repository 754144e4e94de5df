package model

// DailyTransactionSummary is one settlement aggregate row: one payment
// method for one report date.  Written by the daily reconciler only.
type DailyTransactionSummary struct {
	ID           uint64        // daily_transaction_summary.id
	ReportDate   string        // daily_transaction_summary.report_date (YYYY-MM-DD)
	Method       PaymentMethod // daily_transaction_summary.payment_method_id
	TotalOrders  int64         // daily_transaction_summary.total_orders
	TotalSuccess int64         // daily_transaction_summary.total_success
	TotalFailed  int64         // daily_transaction_summary.total_failed
	TotalAmount  int64         // daily_transaction_summary.total_amount
}
