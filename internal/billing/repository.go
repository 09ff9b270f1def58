package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/todoplus/todoplus-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides the DB operations used by the billing service.
type Repository interface {
	GetCustomerByUserID(userID uuid.UUID) (*models.Customer, error)
	GetCustomerByStripeID(stripeCustomerID string) (*models.Customer, error)
	CreateCustomer(customer *models.Customer) error

	UpsertSubscription(sub *models.Subscription) error
	MarkSubscriptionEnded(stripeSubscriptionID, status string, endedAt time.Time) error
	GetActiveSubscription(userID uuid.UUID) (*models.Subscription, error)

	CreateWebhookEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error)
	MarkWebhookProcessed(stripeEventID string, processingErr error) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetCustomerByUserID(userID uuid.UUID) (*models.Customer, error) {
	var c models.Customer
	if err := r.db.Where("user_id = ?", userID).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *gormRepository) GetCustomerByStripeID(stripeCustomerID string) (*models.Customer, error) {
	var c models.Customer
	if err := r.db.Where("stripe_customer_id = ?", stripeCustomerID).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *gormRepository) CreateCustomer(customer *models.Customer) error {
	return r.db.Create(customer).Error
}

// UpsertSubscription inserts or overwrites by stripe_subscription_id. All
// provider-reported fields are replaced; the row identity and created_at are
// kept, which is what makes webhook replays and out-of-order updates safe.
func (r *gormRepository) UpsertSubscription(sub *models.Subscription) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "stripe_subscription_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_id",
			"stripe_customer_id",
			"status",
			"price_id",
			"quantity",
			"cancel_at_period_end",
			"current_period_start",
			"current_period_end",
			"cancel_at",
			"canceled_at",
			"trial_start",
			"trial_end",
			"started_at",
			"ended_at",
			"updated_at",
		}),
	}).Create(sub).Error; err != nil {
		return err
	}

	// Ensure ID is populated after upsert.
	return r.db.Where("stripe_subscription_id = ?", sub.StripeSubscriptionID).First(sub).Error
}

func (r *gormRepository) MarkSubscriptionEnded(stripeSubscriptionID, status string, endedAt time.Time) error {
	return r.db.Model(&models.Subscription{}).
		Where("stripe_subscription_id = ?", stripeSubscriptionID).
		Updates(map[string]interface{}{
			"status":   status,
			"ended_at": &endedAt,
		}).Error
}

func (r *gormRepository) GetActiveSubscription(userID uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Where("user_id = ? AND status = ?", userID, models.StatusActive).
		Order("created_at DESC").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) CreateWebhookEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stripe_event_id"}},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.WebhookEvent
	if err := r.db.Where("stripe_event_id = ?", event.StripeEventID).First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(stripeEventID string, processingErr error) error {
	now := time.Now()
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return r.db.Model(&models.WebhookEvent{}).
		Where("stripe_event_id = ?", stripeEventID).
		Updates(map[string]interface{}{
			"processed_at":     &now,
			"processing_error": errMsg,
		}).Error
}
