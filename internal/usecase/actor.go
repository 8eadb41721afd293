package usecase

import (
	"context"

	"event-ticketing/internal/data/entity"
	"event-ticketing/pkg/utils"

	"github.com/google/uuid"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID  uuid.UUID
	IsAdmin bool
}

// ActorFromContext membaca user id dan role yang di-set middleware AuthSession
func ActorFromContext(ctx context.Context) (Actor, bool) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return Actor{}, false
	}
	return Actor{UserID: userID, IsAdmin: utils.IsAdminContext(ctx)}, true
}

// CanSee: admin lihat semua order, customer hanya order miliknya
func (a Actor) CanSee(order *entity.Order) bool {
	return a.IsAdmin || order.UserID == a.UserID
}
