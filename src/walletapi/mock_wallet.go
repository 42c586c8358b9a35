package walletapi

import (
	"context"
	"fmt"
	"sync"
)

// MockWalletClient records transfers instead of sending them. Used by tests
// and by the `use_mock_wallet` config flag for dry runs against a real
// ledger.
type MockWalletClient struct {
	mu        sync.Mutex
	Transfers []TransferRequest

	// SendHook, when set, decides the outcome of each SendTransfer call.
	SendHook func(req TransferRequest) (string, error)
	// LookupErr makes every GetTransaction call fail, exercising the
	// record-keeping fallback path.
	LookupErr error
}

func NewMockWalletClient() *MockWalletClient {
	return &MockWalletClient{}
}

func (m *MockWalletClient) OpenWallet(ctx context.Context, req OpenWalletRequest) error {
	return nil
}

func (m *MockWalletClient) SendTransfer(ctx context.Context, req TransferRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendHook != nil {
		hash, err := m.SendHook(req)
		if err != nil {
			return "", err
		}
		m.Transfers = append(m.Transfers, req)
		return hash, nil
	}
	m.Transfers = append(m.Transfers, req)
	return fmt.Sprintf("mocktx-%d", len(m.Transfers)), nil
}

func (m *MockWalletClient) GetTransaction(ctx context.Context, hash string) (*TransactionDetails, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LookupErr != nil {
		return nil, m.LookupErr
	}
	for i, t := range m.Transfers {
		if fmt.Sprintf("mocktx-%d", i+1) == hash {
			return &TransactionDetails{Fee: t.Fee, Mixin: t.Mixin, Recipients: len(t.Destinations)}, nil
		}
	}
	return nil, fmt.Errorf("unknown transaction %s", hash)
}
