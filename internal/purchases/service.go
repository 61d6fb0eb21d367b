package purchases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"flygen/internal/credits"
	"flygen/internal/infra"
	"flygen/internal/sqlinline"
)

var (
	ErrPurchaseCancelled  = errors.New("purchases: cancelled by user")
	ErrPurchasePending    = errors.New("purchases: pending approval")
	ErrVerificationFailed = errors.New("purchases: verification failed")
	ErrUnknownProduct     = errors.New("purchases: unknown product")
	ErrAlreadyRedeemed    = errors.New("purchases: already redeemed")
)

// Status is the store outcome the client observed.
type Status string

const (
	StatusPurchased Status = "purchased"
	StatusCancelled Status = "cancelled"
	StatusPending   Status = "pending"
)

type RedeemRequest struct {
	Status            Status `json:"status"`
	SignedTransaction string `json:"signed_transaction"`
}

type Redemption struct {
	Product       Product         `json:"product"`
	TransactionID string          `json:"transaction_id"`
	Balance       credits.Balance `json:"balance"`
	Expires       time.Time       `json:"expires,omitempty"`
}

// RedemptionLog is a cross-device record of granted transactions.
type RedemptionLog interface {
	Claim(ctx context.Context, userID, transactionID, productID string, n int) (bool, error)
	Release(ctx context.Context, userID, transactionID string) error
}

type Service struct {
	catalog  *Catalog
	verifier Verifier
	ledgers  *credits.Registry
	log      RedemptionLog
	logger   infra.Logger
	nowFunc  func() time.Time
	onRedeem func(outcome string)
}

// NewService builds a redeemer. log may be nil; the per-user profile still
// rejects repeated transactions.
func NewService(catalog *Catalog, verifier Verifier, ledgers *credits.Registry, log RedemptionLog, logger infra.Logger, onRedeem func(string)) *Service {
	return &Service{
		catalog:  catalog,
		verifier: verifier,
		ledgers:  ledgers,
		log:      log,
		logger:   logger,
		nowFunc:  time.Now,
		onRedeem: onRedeem,
	}
}

func (s *Service) Catalog() *Catalog { return s.catalog }

// Redeem verifies a transaction, grants its credits once and syncs the
// balance with the remote record.
func (s *Service) Redeem(ctx context.Context, userID string, req RedeemRequest) (*Redemption, error) {
	res, err := s.redeem(ctx, userID, req)
	s.report(err)
	return res, err
}

func (s *Service) redeem(ctx context.Context, userID string, req RedeemRequest) (*Redemption, error) {
	switch req.Status {
	case StatusCancelled:
		return nil, ErrPurchaseCancelled
	case StatusPending:
		return nil, ErrPurchasePending
	case StatusPurchased, "":
	default:
		return nil, fmt.Errorf("%w: status %q", ErrVerificationFailed, req.Status)
	}
	claims, err := s.verifier.Verify(req.SignedTransaction)
	if err != nil {
		return nil, err
	}
	if token := strings.TrimSpace(claims.AppAccountToken); token != "" && token != userID {
		return nil, fmt.Errorf("%w: transaction belongs to another account", ErrVerificationFailed)
	}
	product, ok := s.catalog.Lookup(claims.ProductID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProduct, claims.ProductID)
	}
	var expires time.Time
	subscription := ""
	if product.Kind == KindSubscription {
		expires = claims.Expires()
		if expires.IsZero() {
			expires = time.UnixMilli(claims.PurchaseDate).UTC().Add(product.Period)
		}
		if !expires.After(s.nowFunc()) {
			return nil, fmt.Errorf("%w: subscription expired", ErrVerificationFailed)
		}
		subscription = product.ID
	}

	if s.log != nil {
		claimed, err := s.log.Claim(ctx, userID, claims.TransactionID, product.ID, product.Credits)
		if err != nil {
			return nil, err
		}
		if !claimed {
			return nil, ErrAlreadyRedeemed
		}
	}

	ledger := s.ledgers.For(userID)
	_, granted, err := ledger.RecordRedemption(ctx, claims.TransactionID, product.Credits, subscription, expires)
	if err != nil {
		if s.log != nil {
			if rerr := s.log.Release(context.WithoutCancel(ctx), userID, claims.TransactionID); rerr != nil {
				s.logger.Error().Err(rerr).Str("transaction_id", claims.TransactionID).Msg("purchases: release claim")
			}
		}
		return nil, err
	}
	if !granted {
		return nil, ErrAlreadyRedeemed
	}
	bal, err := ledger.Sync(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", userID).Str("product_id", product.ID).Str("transaction_id", claims.TransactionID).Int("credits", bal.Credits).Msg("purchase redeemed")
	return &Redemption{Product: product, TransactionID: claims.TransactionID, Balance: bal, Expires: expires}, nil
}

func (s *Service) report(err error) {
	if s.onRedeem == nil {
		return
	}
	outcome := "success"
	switch {
	case err == nil:
	case errors.Is(err, ErrPurchaseCancelled):
		outcome = "cancelled"
	case errors.Is(err, ErrPurchasePending):
		outcome = "pending"
	case errors.Is(err, ErrVerificationFailed):
		outcome = "verification_failed"
	case errors.Is(err, ErrUnknownProduct):
		outcome = "unknown_product"
	case errors.Is(err, ErrAlreadyRedeemed):
		outcome = "already_redeemed"
	default:
		outcome = "error"
	}
	s.onRedeem(outcome)
}

// PostgresLog records redemptions in purchase_redemptions.
type PostgresLog struct {
	sql infra.SQLExecutor
}

func NewPostgresLog(sql infra.SQLExecutor) *PostgresLog {
	return &PostgresLog{sql: sql}
}

func (l *PostgresLog) Claim(ctx context.Context, userID, transactionID, productID string, n int) (bool, error) {
	tag, err := l.sql.Exec(ctx, sqlinline.QClaimPurchaseRedemption, transactionID, userID, productID, n)
	if err != nil {
		return false, fmt.Errorf("purchases: claim: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (l *PostgresLog) Release(ctx context.Context, userID, transactionID string) error {
	if _, err := l.sql.Exec(ctx, sqlinline.QReleasePurchaseRedemption, transactionID, userID); err != nil {
		return fmt.Errorf("purchases: release: %w", err)
	}
	return nil
}

var _ RedemptionLog = (*PostgresLog)(nil)
