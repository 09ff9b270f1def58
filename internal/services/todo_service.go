package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/todoplus/todoplus-backend/internal/dto"
	"github.com/todoplus/todoplus-backend/internal/models"
	"github.com/todoplus/todoplus-backend/internal/quota"
	"gorm.io/gorm"
)

var (
	ErrTodoNotFound  = errors.New("todo not found")
	ErrQuotaExceeded = errors.New("todo limit reached")
	ErrTitleRequired = errors.New("title is required")
)

// QuotaExceededError carries the caller's quota standing so the handler can
// return the limit text and counters alongside the rejection.
type QuotaExceededError struct {
	Quota dto.QuotaInfo
}

func (e *QuotaExceededError) Error() string { return e.Quota.Message }

func (e *QuotaExceededError) Is(target error) bool { return target == ErrQuotaExceeded }

// SubscriptionChecker reports pro entitlement for a user. Satisfied by the
// billing service.
type SubscriptionChecker interface {
	IsActive(userID uuid.UUID) bool
}

type TodoService struct {
	db   *gorm.DB
	subs SubscriptionChecker
}

func NewTodoService(db *gorm.DB, subs SubscriptionChecker) *TodoService {
	return &TodoService{db: db, subs: subs}
}

// List returns the owner's todos newest first, with the quota standing the
// client needs to render the input state.
func (s *TodoService) List(ownerID string, userID uuid.UUID, authenticated bool) (*dto.TodoListResponse, error) {
	var todos []models.Todo
	if err := s.db.Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&todos).Error; err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}

	tier := s.tierFor(userID, authenticated)
	resp := &dto.TodoListResponse{
		Todos: make([]dto.TodoResponse, 0, len(todos)),
		Quota: quotaInfo(tier, len(todos)),
	}
	for _, t := range todos {
		resp.Todos = append(resp.Todos, toTodoResponse(&t))
	}
	return resp, nil
}

// Create adds a todo if the owner is under their tier limit. The count and
// the insert are not atomic; a concurrent burst can briefly overshoot the
// limit, which is acceptable for a per-owner soft cap.
func (s *TodoService) Create(ownerID string, userID uuid.UUID, authenticated bool, req *dto.CreateTodoRequest) (*dto.TodoResponse, error) {
	if req.Title == "" {
		return nil, ErrTitleRequired
	}

	var used int64
	if err := s.db.Model(&models.Todo{}).Where("owner_id = ?", ownerID).Count(&used).Error; err != nil {
		return nil, fmt.Errorf("failed to count todos: %w", err)
	}

	tier := s.tierFor(userID, authenticated)
	if !quota.CanAdd(tier, int(used)) {
		return nil, &QuotaExceededError{Quota: quotaInfo(tier, int(used))}
	}

	todo := models.Todo{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Title:   req.Title,
	}
	if err := s.db.Create(&todo).Error; err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	resp := toTodoResponse(&todo)
	return &resp, nil
}

func (s *TodoService) Update(ownerID string, todoID uuid.UUID, req *dto.UpdateTodoRequest) (*dto.TodoResponse, error) {
	todo, err := s.findOwned(ownerID, todoID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		if *req.Title == "" {
			return nil, ErrTitleRequired
		}
		updates["title"] = *req.Title
	}
	if req.Completed != nil {
		updates["completed"] = *req.Completed
	}
	if len(updates) > 0 {
		if err := s.db.Model(todo).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update todo: %w", err)
		}
	}

	resp := toTodoResponse(todo)
	return &resp, nil
}

func (s *TodoService) Toggle(ownerID string, todoID uuid.UUID) (*dto.TodoResponse, error) {
	todo, err := s.findOwned(ownerID, todoID)
	if err != nil {
		return nil, err
	}

	// The gorm update writes the new value back into todo.Completed, so the
	// target state has to be captured before the call.
	completed := !todo.Completed
	if err := s.db.Model(todo).Update("completed", completed).Error; err != nil {
		return nil, fmt.Errorf("failed to toggle todo: %w", err)
	}
	todo.Completed = completed

	resp := toTodoResponse(todo)
	return &resp, nil
}

func (s *TodoService) Delete(ownerID string, todoID uuid.UUID) error {
	todo, err := s.findOwned(ownerID, todoID)
	if err != nil {
		return err
	}
	return s.db.Delete(todo).Error
}

// findOwned scopes lookups by owner so a valid todo ID belonging to someone
// else reads as absent, not forbidden.
func (s *TodoService) findOwned(ownerID string, todoID uuid.UUID) (*models.Todo, error) {
	var todo models.Todo
	if err := s.db.Where("id = ? AND owner_id = ?", todoID, ownerID).First(&todo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to load todo: %w", err)
	}
	return &todo, nil
}

func (s *TodoService) tierFor(userID uuid.UUID, authenticated bool) quota.Tier {
	subscribed := authenticated && s.subs.IsActive(userID)
	return quota.ForUser(authenticated, subscribed)
}

func quotaInfo(tier quota.Tier, used int) dto.QuotaInfo {
	return dto.QuotaInfo{
		Tier:      string(tier),
		Limit:     quota.Limit(tier),
		Used:      used,
		Remaining: quota.Remaining(tier, used),
		CanAdd:    quota.CanAdd(tier, used),
		Message:   quota.LimitMessage(tier, used),
	}
}

func toTodoResponse(t *models.Todo) dto.TodoResponse {
	return dto.TodoResponse{
		ID:        t.ID,
		Title:     t.Title,
		Completed: t.Completed,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}
