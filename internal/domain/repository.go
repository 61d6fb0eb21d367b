package domain

import "context"

// FlyerRepository persists the saved flyer gallery.
type FlyerRepository interface {
	Create(ctx context.Context, flyer *SavedFlyer) error
	ListByUser(ctx context.Context, userID string, limit int) ([]SavedFlyer, error)
	GetByID(ctx context.Context, userID, id string) (*SavedFlyer, error)
	Delete(ctx context.Context, userID, id string) error
}
