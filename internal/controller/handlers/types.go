package handlers

import (
	"time"

	"github.com/Freeeeeet/slot_swapper/internal/controller/state"
	"github.com/Freeeeeet/slot_swapper/internal/service"
	"go.uber.org/zap"
)

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	userService  *service.UserService
	slotService  *service.SlotService
	swapService  *service.SwapService
	stateManager *state.Manager
	loc          *time.Location
	logger       *zap.Logger
	now          func() time.Time
}

// NewHandlers создаёт новый обработчик команд
func NewHandlers(
	userService *service.UserService,
	slotService *service.SlotService,
	swapService *service.SwapService,
	stateManager *state.Manager,
	loc *time.Location,
	logger *zap.Logger,
) *Handlers {
	if loc == nil {
		loc = time.UTC
	}
	return &Handlers{
		userService:  userService,
		slotService:  slotService,
		swapService:  swapService,
		stateManager: stateManager,
		loc:          loc,
		logger:       logger,
		now:          time.Now,
	}
}
