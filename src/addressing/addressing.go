package addressing

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/btcsuite/btcutil/base58"
	"github.com/pkg/errors"
	"golang.org/x/crypto/sha3"
)

const (
	checksumSize  = 4
	keysSize      = 64 // spend key + view key
	paymentIDSize = 8  // short payment id embedded in integrated addresses
)

var (
	ErrMalformedAddress = errors.New("malformed address")
	ErrBadChecksum      = errors.New("address checksum mismatch")
	ErrWrongPrefix      = errors.New("address prefix does not match the configured coin")
)

// Decoded is the result of taking an address apart. PaymentID is empty for
// plain addresses and the hex short id for integrated ones. BaseAddress is
// the address with any payment id stripped.
type Decoded struct {
	Prefix      uint64
	BaseAddress string
	PaymentID   string
}

// AddressDecoder validates a payout address and extracts its payment id, if
// any. Implementations must be safe for concurrent use.
type AddressDecoder interface {
	Decode(address string) (Decoded, error)
}

// Base58Decoder decodes base58 addresses of the form
// varint(prefix) || spend key || view key || [payment id] || checksum,
// with the checksum being the first four bytes of the Keccak-256 of
// everything before it.
type Base58Decoder struct {
	prefix uint64
}

func NewBase58Decoder(prefix uint64) *Base58Decoder {
	return &Base58Decoder{prefix: prefix}
}

func (d *Base58Decoder) Decode(address string) (Decoded, error) {
	raw := base58.Decode(address)
	if len(raw) <= checksumSize {
		return Decoded{}, errors.Wrapf(ErrMalformedAddress, "address %s", address)
	}

	payload := raw[:len(raw)-checksumSize]
	if !checksumMatches(payload, raw[len(raw)-checksumSize:]) {
		return Decoded{}, errors.Wrapf(ErrBadChecksum, "address %s", address)
	}

	prefix, n := binary.Uvarint(payload)
	if n <= 0 {
		return Decoded{}, errors.Wrapf(ErrMalformedAddress, "unreadable prefix in %s", address)
	}
	if prefix != d.prefix {
		return Decoded{}, errors.Wrapf(ErrWrongPrefix, "address %s has prefix %d", address, prefix)
	}

	body := payload[n:]
	switch len(body) {
	case keysSize:
		return Decoded{Prefix: prefix, BaseAddress: address}, nil
	case keysSize + paymentIDSize:
		return Decoded{
			Prefix:      prefix,
			BaseAddress: encode(prefix, body[:keysSize], nil),
			PaymentID:   hex.EncodeToString(body[keysSize:]),
		}, nil
	default:
		return Decoded{}, errors.Wrapf(ErrMalformedAddress, "address %s has a %d byte body", address, len(body))
	}
}

// Encode builds an address from its parts. Used by integrated-address
// splitting above and by tests to construct known-good inputs.
func Encode(prefix uint64, keys []byte, paymentID []byte) string {
	return encode(prefix, keys, paymentID)
}

func encode(prefix uint64, keys []byte, paymentID []byte) string {
	var varintBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(varintBuf[:], prefix)

	payload := make([]byte, 0, n+len(keys)+len(paymentID)+checksumSize)
	payload = append(payload, varintBuf[:n]...)
	payload = append(payload, keys...)
	payload = append(payload, paymentID...)
	payload = append(payload, checksum(payload)...)
	return base58.Encode(payload)
}

func checksum(payload []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(payload)
	return h.Sum(nil)[:checksumSize]
}

func checksumMatches(payload, want []byte) bool {
	got := checksum(payload)
	for i := range want {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
