package voucher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jhoicas/Cierres-api/internal/application/ledger"
)

// DefaultTimeout tiempo máximo de espera por el servicio de comprobantes.
const DefaultTimeout = 10 * time.Second

var _ ledger.VoucherHook = (*Client)(nil)

// Client implementa ledger.VoucherHook contra el servicio HTTP de comprobantes
// contables. Es un hook best-effort: el llamador registra el error y sigue,
// nunca revierte la transacción que lo disparó.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient construye el cliente. timeout <= 0 usa DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type voucherPayload struct {
	TransactionID string `json:"transaction_id"`
	FacilityID    string `json:"facility_id"`
	Type          string `json:"type"`
	CompanyID     string `json:"company_id"`
	Amount        string `json:"amount"`
	OccurredAt    string `json:"occurred_at"`
}

// CreateVoucher publica la solicitud de comprobante en POST {base}/vouchers.
func (c *Client) CreateVoucher(ctx context.Context, req ledger.VoucherRequest) error {
	payload := voucherPayload{
		TransactionID: req.TransactionID,
		FacilityID:    req.FacilityID,
		Type:          req.Type,
		CompanyID:     req.CompanyID,
		Amount:        req.Amount.String(),
		OccurredAt:    req.OccurredAt.UTC().Format(time.RFC3339),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("serializar comprobante: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/vouchers", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("crear request de comprobante: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("enviar comprobante: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("servicio de comprobantes respondió %d: %s", resp.StatusCode, string(msg))
	}
	return nil
}
