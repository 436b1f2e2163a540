package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"uccdatahub/internal/payments"
	"uccdatahub/pkg/types"

	"github.com/alexedwards/flow"
)

// dollarAmount tolerates the amount arriving as either a JSON number or
// a formatted string like "0.60" (the checkout form posts the latter).
type dollarAmount float64

func (d *dollarAmount) UnmarshalJSON(b []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if raw == "" || raw == "null" {
		*d = 0
		return nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q", raw)
	}
	*d = dollarAmount(v)
	return nil
}

type verifyPaymentRequest struct {
	OrderID     string       `json:"orderID"`
	CSVData     string       `json:"csvData"`
	Amount      dollarAmount `json:"amount"`
	RecordCount int          `json:"recordCount"`
	UserID      string       `json:"userId"`
}

func (s *Service) handleVerifyPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req verifyPaymentRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	if req.OrderID == "" || req.CSVData == "" || req.UserID == "" || req.RecordCount <= 0 || req.Amount <= 0 {
		s.respondError(w, http.StatusBadRequest, "Missing required payment fields")
		return
	}

	capture, err := s.capturer.CaptureOrder(ctx, req.OrderID)
	if err != nil {
		s.logger.WithError(err).WithField("order_id", req.OrderID).Error("payment capture failed")
		s.respondJSON(w, http.StatusPaymentRequired, map[string]any{
			"success": false,
			"message": "Payment capture failed",
		})
		return
	}

	if capture.Status != payments.StatusCompleted {
		s.logger.WithField("order_id", req.OrderID).
			WithField("status", capture.Status).
			Warn("payment capture not completed")
		s.respondJSON(w, http.StatusPaymentRequired, map[string]any{
			"success": false,
			"message": "Payment was not completed",
		})
		return
	}

	if !s.pricing.ValidAmount(req.RecordCount, capture.AmountCents) {
		s.logger.WithField("order_id", req.OrderID).
			WithField("amount_cents", capture.AmountCents).
			WithField("record_count", req.RecordCount).
			Warn("captured amount does not match record count")
		s.respondJSON(w, http.StatusPaymentRequired, map[string]any{
			"success": false,
			"message": "Payment verification failed",
		})
		return
	}

	transaction := &types.Transaction{
		UserID:      req.UserID,
		OrderID:     req.OrderID,
		AmountCents: capture.AmountCents,
		RecordCount: req.RecordCount,
		Status:      capture.Status,
		CSVData:     req.CSVData,
	}

	// The capture already went through; a recording failure must not
	// leave a half-written transaction, so Record runs both writes in
	// one database transaction.
	if err := s.transactions.Record(ctx, transaction); err != nil {
		s.logger.WithError(err).WithField("order_id", req.OrderID).Error("failed to record transaction")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"transactionId": transaction.ID,
	})
}

func (s *Service) handleTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := flow.Param(ctx, "userID")
	if userID == "" {
		s.respondError(w, http.StatusBadRequest, "User ID is required")
		return
	}

	transactions, err := s.transactions.TransactionsByUser(ctx, userID)
	if err != nil {
		s.logger.WithError(err).Error("failed to list transactions")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"transactions": transactions})
}

func (s *Service) handleDownloadTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	transactionID := flow.Param(ctx, "transactionID")
	userID := flow.Param(ctx, "userID")

	transaction, err := s.transactions.TransactionForDownload(ctx, transactionID, userID)
	if err != nil {
		if errors.Is(err, types.ErrTransactionNotFound) {
			s.respondError(w, http.StatusNotFound, "Transaction not found")
			return
		}
		s.logger.WithError(err).Error("failed to fetch transaction for download")
		s.internalServerError(w)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=ucc_data_%s.csv", transaction.ID))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(transaction.CSVData)); err != nil {
		s.logger.WithError(err).Error("failed to write transaction download")
	}
}
