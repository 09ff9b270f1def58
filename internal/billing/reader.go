package billing

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/todoplus/todoplus-backend/internal/models"
	"gorm.io/gorm"
)

// ActiveSubscription returns the user's current active subscription, or nil
// when there is none. Read failures other than absence degrade to nil so
// entitlement checks fail closed to the free tier instead of blocking the
// request.
func (s *Service) ActiveSubscription(userID uuid.UUID) *models.Subscription {
	sub, err := s.repo.GetActiveSubscription(userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Error("active subscription lookup failed",
				"user_id", userID.String(), "error", err)
		}
		return nil
	}
	return sub
}

// IsActive reports whether the user currently holds an active subscription.
func (s *Service) IsActive(userID uuid.UUID) bool {
	return s.ActiveSubscription(userID) != nil
}
