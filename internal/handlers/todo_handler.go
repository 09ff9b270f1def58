package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/todoplus/todoplus-backend/internal/dto"
	"github.com/todoplus/todoplus-backend/internal/services"
	"github.com/todoplus/todoplus-backend/internal/session"
)

type TodoHandler struct {
	todoService *services.TodoService
}

func NewTodoHandler(todoService *services.TodoService) *TodoHandler {
	return &TodoHandler{todoService: todoService}
}

func (h *TodoHandler) List(c *fiber.Ctx) error {
	ownerID, userID, authenticated, err := session.Actor(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	resp, err := h.todoService.List(ownerID, userID, authenticated)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load todos",
		})
	}
	return c.JSON(resp)
}

func (h *TodoHandler) Create(c *fiber.Ctx) error {
	ownerID, userID, authenticated, err := session.Actor(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	var req dto.CreateTodoRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	todo, err := h.todoService.Create(ownerID, userID, authenticated, &req)
	if err != nil {
		var quotaErr *services.QuotaExceededError
		if errors.As(err, &quotaErr) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":   true,
				"message": quotaErr.Quota.Message,
				"quota":   quotaErr.Quota,
			})
		}
		if errors.Is(err, services.ErrTitleRequired) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to create todo",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(todo)
}

func (h *TodoHandler) Update(c *fiber.Ctx) error {
	ownerID, _, _, err := session.Actor(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	todoID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid todo ID",
		})
	}

	var req dto.UpdateTodoRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	todo, err := h.todoService.Update(ownerID, todoID, &req)
	if err != nil {
		return h.todoError(c, err)
	}
	return c.JSON(todo)
}

func (h *TodoHandler) Toggle(c *fiber.Ctx) error {
	ownerID, _, _, err := session.Actor(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	todoID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid todo ID",
		})
	}

	todo, err := h.todoService.Toggle(ownerID, todoID)
	if err != nil {
		return h.todoError(c, err)
	}
	return c.JSON(todo)
}

func (h *TodoHandler) Delete(c *fiber.Ctx) error {
	ownerID, _, _, err := session.Actor(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	todoID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid todo ID",
		})
	}

	if err := h.todoService.Delete(ownerID, todoID); err != nil {
		return h.todoError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *TodoHandler) todoError(c *fiber.Ctx, err error) error {
	if errors.Is(err, services.ErrTodoNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Todo not found",
		})
	}
	if errors.Is(err, services.ErrTitleRequired) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}
