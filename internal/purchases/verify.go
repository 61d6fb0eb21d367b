package purchases

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TransactionClaims is the payload of a signed store transaction.
type TransactionClaims struct {
	TransactionID         string `json:"transactionId"`
	OriginalTransactionID string `json:"originalTransactionId,omitempty"`
	ProductID             string `json:"productId"`
	BundleID              string `json:"bundleId"`
	AppAccountToken       string `json:"appAccountToken,omitempty"`
	PurchaseDate          int64  `json:"purchaseDate"`
	ExpiresDate           int64  `json:"expiresDate,omitempty"`
	RevocationDate        int64  `json:"revocationDate,omitempty"`
	Environment           string `json:"environment,omitempty"`
	jwt.RegisteredClaims
}

// Expires returns the subscription expiry, zero when absent.
func (c *TransactionClaims) Expires() time.Time {
	if c.ExpiresDate == 0 {
		return time.Time{}
	}
	return time.UnixMilli(c.ExpiresDate).UTC()
}

type Verifier interface {
	Verify(signed string) (*TransactionClaims, error)
}

// HMACVerifier checks HS256 signed transactions issued by the purchase
// relay that shares key with this service.
type HMACVerifier struct {
	key      []byte
	bundleID string
	parser   *jwt.Parser
}

func NewHMACVerifier(key, bundleID string) (*HMACVerifier, error) {
	if strings.TrimSpace(key) == "" {
		return nil, errors.New("purchases: signing key is required")
	}
	return &HMACVerifier{
		key:      []byte(key),
		bundleID: bundleID,
		parser:   jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithLeeway(time.Minute)),
	}, nil
}

func (v *HMACVerifier) Verify(signed string) (*TransactionClaims, error) {
	claims := &TransactionClaims{}
	_, err := v.parser.ParseWithClaims(strings.TrimSpace(signed), claims, func(t *jwt.Token) (any, error) {
		return v.key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}
	if claims.TransactionID == "" || claims.ProductID == "" {
		return nil, fmt.Errorf("%w: missing transaction fields", ErrVerificationFailed)
	}
	if v.bundleID != "" && claims.BundleID != v.bundleID {
		return nil, fmt.Errorf("%w: bundle %q", ErrVerificationFailed, claims.BundleID)
	}
	if claims.RevocationDate != 0 {
		return nil, fmt.Errorf("%w: transaction revoked", ErrVerificationFailed)
	}
	return claims, nil
}

// SignTransaction produces an HS256 signed transaction. The purchase relay
// and tests use it.
func SignTransaction(key string, claims *TransactionClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
}

var _ Verifier = (*HMACVerifier)(nil)
