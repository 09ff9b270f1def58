package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/todoplus/todoplus-backend/internal/billing"
	"github.com/todoplus/todoplus-backend/internal/dto"
)

type WebhookHandler struct {
	billingService *billing.Service
}

func NewWebhookHandler(billingService *billing.Service) *WebhookHandler {
	return &WebhookHandler{billingService: billingService}
}

// HandleStripe receives Stripe webhook deliveries. The raw body goes to the
// processor untouched: signature verification covers the exact bytes Stripe
// sent. Processing failures return 500 so Stripe retries the delivery.
func (h *WebhookHandler) HandleStripe(c *fiber.Ctx) error {
	err := h.billingService.ProcessEvent(c.Context(), c.Body(), c.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, billing.ErrInvalidSignature) {
			slog.Warn("webhook signature rejected", "error", err)
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid signature",
			})
		}
		slog.Error("webhook processing failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to process webhook event",
		})
	}

	return c.JSON(fiber.Map{"received": true})
}
