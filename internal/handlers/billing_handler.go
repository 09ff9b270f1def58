package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/todoplus/todoplus-backend/internal/billing"
	"github.com/todoplus/todoplus-backend/internal/dto"
	"github.com/todoplus/todoplus-backend/internal/models"
	"github.com/todoplus/todoplus-backend/internal/session"
)

type BillingHandler struct {
	billingService *billing.Service
	repo           billing.Repository
}

func NewBillingHandler(billingService *billing.Service, repo billing.Repository) *BillingHandler {
	return &BillingHandler{billingService: billingService, repo: repo}
}

// Checkout opens a Stripe checkout session for the authenticated user. The
// user identity comes from the verified JWT only; client-supplied IDs are
// never accepted here.
func (h *BillingHandler) Checkout(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	sess, err := h.billingService.CreateCheckout(c.Context(), userID, session.GetEmail(c), req.PriceID, req.ReturnURL)
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrMissingPrice):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "A price ID is required to start checkout",
			})
		case errors.Is(err, billing.ErrProviderUnavailable), errors.Is(err, billing.ErrCheckoutFailed):
			slog.Error("checkout failed", "user_id", userID.String(), "error", err)
			return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{
				Error: true, Message: "Payment provider unavailable, please try again",
			})
		default:
			slog.Error("checkout failed", "user_id", userID.String(), "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to create checkout session",
			})
		}
	}

	return c.JSON(dto.CheckoutResponse{SessionID: sess.ID, URL: sess.URL})
}

// Subscription returns the caller's active subscription, or null when there
// is none. Absence is an expected state, not an error.
func (h *BillingHandler) Subscription(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	sub := h.billingService.ActiveSubscription(userID)
	if sub == nil {
		return c.JSON(nil)
	}

	return c.JSON(toSubscriptionResponse(sub))
}

func (h *BillingHandler) Cancel(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	if err := h.billingService.CancelSubscription(c.Context(), userID); err != nil {
		if errors.Is(err, billing.ErrNoActiveSubscription) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "No active subscription",
			})
		}
		slog.Error("cancel failed", "user_id", userID.String(), "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to cancel subscription",
		})
	}

	return c.JSON(fiber.Map{"message": "Cancellation requested"})
}

// AdminUpsertSubscription writes a subscription record directly, bypassing
// Stripe. Support tooling for comping accounts and repairing drift.
func (h *BillingHandler) AdminUpsertSubscription(c *fiber.Ctx) error {
	var req dto.AdminSubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if req.UserID == uuid.Nil || req.StripeSubscriptionID == "" || !models.ValidStatus(req.Status) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "user_id, stripe_subscription_id and a valid status are required",
		})
	}

	sub := &models.Subscription{
		ID:                   uuid.New(),
		UserID:               req.UserID,
		StripeCustomerID:     req.StripeCustomerID,
		StripeSubscriptionID: req.StripeSubscriptionID,
		Status:               req.Status,
		PriceID:              req.PriceID,
		Quantity:             1,
		CurrentPeriodStart:   req.CurrentPeriodStart,
		CurrentPeriodEnd:     req.CurrentPeriodEnd,
		StartedAt:            req.CurrentPeriodStart,
	}
	if err := h.repo.UpsertSubscription(sub); err != nil {
		slog.Error("admin subscription upsert failed", "stripe_subscription_id", req.StripeSubscriptionID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to store subscription",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(toSubscriptionResponse(sub))
}

func toSubscriptionResponse(sub *models.Subscription) dto.SubscriptionResponse {
	return dto.SubscriptionResponse{
		ID:                 sub.ID,
		Status:             sub.Status,
		PriceID:            sub.PriceID,
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
		CurrentPeriodStart: sub.CurrentPeriodStart,
		CurrentPeriodEnd:   sub.CurrentPeriodEnd,
		CanceledAt:         sub.CanceledAt,
		EndedAt:            sub.EndedAt,
	}
}
