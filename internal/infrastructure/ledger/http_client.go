package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"paystream/internal/core/domain"
	"paystream/internal/core/ports"
	"paystream/pkg/circuitbreaker"

	"go.uber.org/zap"
)

// HTTPLedger talks to a remote fungible-asset ledger service. Calls run
// through a circuit breaker; transfers themselves are never retried, since a
// transfer that failed inside one logical operation must not be replayed.
type HTTPLedger struct {
	baseURL string
	client  *http.Client
	breaker *circuitbreaker.CircuitBreaker
	logger  *zap.SugaredLogger
}

func NewHTTPLedger(baseURL string, timeout time.Duration, logger *zap.SugaredLogger) *HTTPLedger {
	breaker := circuitbreaker.New(circuitbreaker.DefaultConfig())
	breaker.OnStateChange(func(from, to circuitbreaker.State) {
		logger.Warnw("ledger circuit breaker state changed", "from", from.String(), "to", to.String())
	})
	return &HTTPLedger{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		breaker: breaker,
		logger:  logger,
	}
}

type transferRequest struct {
	Token   string `json:"token"`
	From    string `json:"from"`
	To      string `json:"to"`
	Spender string `json:"spender,omitempty"`
	Amount  uint64 `json:"amount"`
}

type ledgerErrorResponse struct {
	Code string `json:"code"`
}

func (l *HTTPLedger) Transfer(ctx context.Context, token domain.TokenID, from, to domain.Address, amount uint64) error {
	return l.post(ctx, "/v1/transfer", transferRequest{
		Token: string(token), From: string(from), To: string(to), Amount: amount,
	})
}

func (l *HTTPLedger) TransferFrom(ctx context.Context, token domain.TokenID, owner, spender, to domain.Address, amount uint64) error {
	return l.post(ctx, "/v1/transfer_from", transferRequest{
		Token: string(token), From: string(owner), Spender: string(spender), To: string(to), Amount: amount,
	})
}

func (l *HTTPLedger) Approve(ctx context.Context, token domain.TokenID, owner, spender domain.Address, amount uint64) error {
	return l.post(ctx, "/v1/approve", transferRequest{
		Token: string(token), From: string(owner), Spender: string(spender), Amount: amount,
	})
}

func (l *HTTPLedger) BalanceOf(ctx context.Context, token domain.TokenID, addr domain.Address) (uint64, error) {
	var balance uint64
	err := l.breaker.Execute(ctx, func() error {
		url := fmt.Sprintf("%s/v1/balance?token=%s&address=%s", l.baseURL, token, addr)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := l.client.Do(req)
		if err != nil {
			return fmt.Errorf("ledger request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("ledger returned status %d", resp.StatusCode)
		}
		var body struct {
			Balance uint64 `json:"balance"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return fmt.Errorf("failed to decode balance: %w", err)
		}
		balance = body.Balance
		return nil
	})
	return balance, err
}

func (l *HTTPLedger) post(ctx context.Context, path string, payload transferRequest) error {
	return l.breaker.Execute(ctx, func() error {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal ledger request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL+path, bytes.NewReader(data))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := l.client.Do(req)
		if err != nil {
			return fmt.Errorf("ledger request failed: %w", err)
		}
		defer resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusOK:
			return nil
		case http.StatusUnprocessableEntity:
			return decodeLedgerError(resp.Body)
		default:
			return fmt.Errorf("ledger returned status %d", resp.StatusCode)
		}
	})
}

// decodeLedgerError maps the remote ledger's failure codes onto the domain
// taxonomy so callers can distinguish balance from allowance failures.
func decodeLedgerError(r io.Reader) error {
	var body ledgerErrorResponse
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return fmt.Errorf("ledger rejected transfer with unreadable body: %w", err)
	}
	switch body.Code {
	case "INSUFFICIENT_FUNDS":
		return domain.ErrInsufficientFunds
	case "INSUFFICIENT_ALLOWANCE":
		return domain.ErrInsufficientAllowance
	default:
		return fmt.Errorf("ledger rejected transfer: %s", body.Code)
	}
}

var _ ports.TokenLedger = (*HTTPLedger)(nil)
