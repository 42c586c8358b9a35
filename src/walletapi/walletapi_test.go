package walletapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/minebridge/cryptonote-pool/src/model"
	"go.uber.org/zap"
)

func testClient(t *testing.T, handler http.HandlerFunc) (*RestWalletClient, func()) {
	t.Helper()
	server := httptest.NewServer(handler)
	u, err := url.Parse(server.URL)
	if err != nil {
		t.Fatal(err)
	}
	port, _ := strconv.Atoi(u.Port())
	client := NewRestWalletClient(u.Hostname(), port, "hunter2", zap.NewNop())
	return client, server.Close
}

func TestSendTransfer(t *testing.T) {
	var got TransferRequest
	client, closer := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transactions/send/advanced" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-API-KEY") != "hunter2" {
			t.Fatal("missing api key header")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatal(err)
		}
		json.NewEncoder(w).Encode(map[string]string{"transactionHash": "abc123"})
	})
	defer closer()

	hash, err := client.SendTransfer(context.Background(), TransferRequest{
		Destinations: []model.Destination{{Address: "w1", Amount: 100}},
		Mixin:        3,
		Fee:          10,
		PaymentID:    "beefbeefbeefbeef",
	})
	if err != nil {
		t.Fatal(err)
	}
	if hash != "abc123" {
		t.Fatalf("wrong hash: %s", hash)
	}
	if got.PaymentID != "beefbeefbeefbeef" || len(got.Destinations) != 1 {
		t.Fatalf("request did not round-trip: %+v", got)
	}
}

func TestSendTransferWalletError(t *testing.T) {
	client, closer := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{"code": -7, "message": "not enough money"},
		})
	})
	defer closer()

	if _, err := client.SendTransfer(context.Background(), TransferRequest{}); err == nil {
		t.Fatal("expected the wallet error to surface")
	}
}

func TestGetTransaction(t *testing.T) {
	client, closer := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transactions/hash/abc123" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"transaction": map[string]interface{}{
				"fee":   17,
				"mixin": 4,
				"transfers": []map[string]interface{}{
					{"address": "w1", "amount": 100},
					{"address": "w2", "amount": 200},
				},
			},
		})
	})
	defer closer()

	details, err := client.GetTransaction(context.Background(), "abc123")
	if err != nil {
		t.Fatal(err)
	}
	if details.Fee != 17 || details.Mixin != 4 || details.Recipients != 2 {
		t.Fatalf("wrong details: %+v", details)
	}
}
