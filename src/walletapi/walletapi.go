package walletapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/minebridge/cryptonote-pool/src/model"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type OpenWalletRequest struct {
	DaemonHost string `json:"daemonHost"`
	DaemonPort int    `json:"daemonPort"`
	Filename   string `json:"filename"`
	Password   string `json:"password"`
}

type TransferRequest struct {
	Destinations []model.Destination `json:"destinations"`
	Mixin        int64               `json:"mixin"`
	Fee          int64               `json:"fee"`
	PaymentID    string              `json:"paymentID,omitempty"`
}

// TransactionDetails is what the wallet reports for an already-sent
// transaction, used to record accurate fees in the payment history.
type TransactionDetails struct {
	Fee        int64
	Mixin      int64
	Recipients int
}

// WalletClient is the wallet service collaborator. SendTransfer returns the
// transaction hash of the submitted transfer.
type WalletClient interface {
	OpenWallet(ctx context.Context, req OpenWalletRequest) error
	SendTransfer(ctx context.Context, req TransferRequest) (string, error)
	GetTransaction(ctx context.Context, hash string) (*TransactionDetails, error)
}

// RestWalletClient talks JSON over HTTP to the wallet service.
type RestWalletClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

func NewRestWalletClient(host string, port int, apiKey string, logger *zap.Logger) *RestWalletClient {
	return &RestWalletClient{
		baseURL: fmt.Sprintf("http://%s:%d", host, port),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 90 * time.Second},
		logger:  logger.With(zap.String("component", "wallet_api")),
	}
}

func (w *RestWalletClient) OpenWallet(ctx context.Context, req OpenWalletRequest) error {
	return w.do(ctx, http.MethodPost, "/wallet/open", req, nil)
}

func (w *RestWalletClient) SendTransfer(ctx context.Context, req TransferRequest) (string, error) {
	var resp struct {
		TransactionHash string `json:"transactionHash"`
	}
	if err := w.do(ctx, http.MethodPost, "/transactions/send/advanced", req, &resp); err != nil {
		return "", err
	}
	if resp.TransactionHash == "" {
		return "", errors.New("wallet returned no transaction hash")
	}
	return resp.TransactionHash, nil
}

func (w *RestWalletClient) GetTransaction(ctx context.Context, hash string) (*TransactionDetails, error) {
	var resp struct {
		Transaction struct {
			Fee       int64 `json:"fee"`
			Mixin     int64 `json:"mixin"`
			Transfers []struct {
				Address string `json:"address"`
				Amount  int64  `json:"amount"`
			} `json:"transfers"`
		} `json:"transaction"`
	}
	if err := w.do(ctx, http.MethodGet, "/transactions/hash/"+hash, nil, &resp); err != nil {
		return nil, err
	}
	return &TransactionDetails{
		Fee:        resp.Transaction.Fee,
		Mixin:      resp.Transaction.Mixin,
		Recipients: len(resp.Transaction.Transfers),
	}, nil
}

// walletError mirrors the error envelope the wallet wraps around failed
// calls; a non-empty message means the call failed even on HTTP 200.
type walletError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (w *RestWalletClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "failed marshaling wallet request")
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, w.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "failed building wallet request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if w.apiKey != "" {
		req.Header.Set("X-API-KEY", w.apiKey)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "wallet request %s %s failed", method, path)
	}
	defer resp.Body.Close()

	var envelope struct {
		Error *walletError `json:"error"`
	}
	raw := json.NewDecoder(resp.Body)
	var payload json.RawMessage
	if err := raw.Decode(&payload); err != nil {
		return errors.Wrapf(err, "unreadable wallet response for %s %s", method, path)
	}
	if err := json.Unmarshal(payload, &envelope); err == nil && envelope.Error != nil && envelope.Error.Message != "" {
		return errors.Errorf("wallet error on %s %s: %s (code %d)", method, path, envelope.Error.Message, envelope.Error.Code)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("wallet returned status %d for %s %s", resp.StatusCode, method, path)
	}
	if out != nil {
		if err := json.Unmarshal(payload, out); err != nil {
			return errors.Wrapf(err, "failed parsing wallet response for %s %s", method, path)
		}
	}
	return nil
}
