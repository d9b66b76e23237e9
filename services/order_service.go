package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"restaurant-service/access"
	apperrors "restaurant-service/common/errors"
	"restaurant-service/models"
	awspkg "restaurant-service/pkg/aws"
	"restaurant-service/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OrderService converts carts into orders and governs who may read and
// change them.
type OrderService interface {
	PlaceOrder(ctx context.Context, actor access.Actor) (*models.Order, error)
	ListOrders(ctx context.Context, actor access.Actor, page, limit int) ([]models.Order, int64, error)
	GetOrder(ctx context.Context, actor access.Actor, id uint) (*models.Order, error)
	UpdateOrder(ctx context.Context, actor access.Actor, id uint, req *models.UpdateOrderRequest) (*models.Order, error)
}

type orderServiceImpl struct {
	tx      repository.Transactor
	orders  repository.OrderRepository
	groups  access.GroupStore
	metrics awspkg.Counter
	logger  *zap.Logger
	now     func() time.Time
}

// NewOrderService creates a new OrderService. metrics may be nil.
func NewOrderService(
	tx repository.Transactor,
	orders repository.OrderRepository,
	groups access.GroupStore,
	metrics awspkg.Counter,
	logger *zap.Logger,
) OrderService {
	return &orderServiceImpl{
		tx:      tx,
		orders:  orders,
		groups:  groups,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// PlaceOrder turns the actor's cart into an order in a single transaction.
// The cart rows are locked first, so of two concurrent placements the second
// sees an empty cart.
func (s *orderServiceImpl) PlaceOrder(ctx context.Context, actor access.Actor) (*models.Order, error) {
	var order *models.Order

	err := s.tx.WithinTransaction(ctx, func(store repository.Store) error {
		lines, err := store.Carts().LockByUser(ctx, actor.ID)
		if err != nil {
			return fmt.Errorf("lock cart: %w", err)
		}
		if len(lines) == 0 {
			return apperrors.EmptyCart()
		}

		total := decimal.Zero
		ids := make([]uint, 0, len(lines))
		items := make([]models.OrderItem, 0, len(lines))
		for _, line := range lines {
			total = total.Add(line.Price)
			ids = append(ids, line.ID)
			items = append(items, models.OrderItem{
				MenuItemID: line.MenuItemID,
				Quantity:   line.Quantity,
				UnitPrice:  line.UnitPrice,
				Price:      line.Price,
			})
		}

		if !total.LessThan(models.MaxAmount) {
			return apperrors.Validation("Order total exceeds the maximum amount")
		}

		order = &models.Order{
			UserID:    actor.ID,
			Status:    models.OrderStatusPlaced,
			Total:     total,
			CreatedAt: s.now(),
			Items:     items,
		}
		if err := store.Orders().Create(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		// Only the locked lines are removed; a line added concurrently stays in the cart.
		if _, err := store.Carts().DeleteLines(ctx, actor.ID, ids); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		s.logger.Error("Failed to place order", zap.Uint("user_id", actor.ID), zap.Error(err))
		return nil, apperrors.Internal("Failed to place order", err)
	}

	awspkg.CountAsync(s.metrics, awspkg.MetricOrdersPlaced, nil)
	s.logger.Info("Order placed",
		zap.Uint("order_id", order.ID),
		zap.Uint("user_id", actor.ID),
		zap.Int("items", len(order.Items)),
		zap.String("total", order.Total.StringFixed(2)),
	)
	return order, nil
}

// ListOrders returns the page of orders visible to the actor, newest first.
func (s *orderServiceImpl) ListOrders(ctx context.Context, actor access.Actor, page, limit int) ([]models.Order, int64, error) {
	page, limit = normalizePage(page, limit)
	orders, total, err := s.orders.FindAll(ctx, access.OrderScope(actor), page, limit)
	if err != nil {
		s.logger.Error("Failed to list orders", zap.Uint("user_id", actor.ID), zap.Error(err))
		return nil, 0, apperrors.Internal("Failed to list orders", err)
	}
	return orders, total, nil
}

// GetOrder returns an order inside the actor's scope. Orders outside it are
// reported as not found.
func (s *orderServiceImpl) GetOrder(ctx context.Context, actor access.Actor, id uint) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, id, access.OrderScope(actor))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Order not found")
		}
		s.logger.Error("Failed to load order", zap.Uint("order_id", id), zap.Error(err))
		return nil, apperrors.Internal("Failed to load order", err)
	}
	return order, nil
}

// UpdateOrder changes status and, for managers, the delivery crew. The write
// only lands if the order is unchanged since it was read.
func (s *orderServiceImpl) UpdateOrder(ctx context.Context, actor access.Actor, id uint, req *models.UpdateOrderRequest) (*models.Order, error) {
	switch access.UpdateVariantFor(actor) {
	case access.UpdateNone:
		return nil, apperrors.Forbidden("Customers cannot update orders")
	case access.UpdateStatusOnly:
		if req.DeliveryCrew.Set {
			return nil, apperrors.Forbidden("Only managers may assign a delivery crew")
		}
	}
	if !req.DeliveryCrew.Set && req.Status == nil {
		return nil, apperrors.Validation("Nothing to update")
	}

	// Scoped read: a crew member gets NotFound for orders not assigned to them.
	order, err := s.GetOrder(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	from := models.OrderChanges{Status: order.Status, DeliveryCrewID: order.DeliveryCrewID}
	to := from

	if req.DeliveryCrew.Set {
		if crew := req.DeliveryCrew.Value; crew != nil {
			ok, err := s.groups.HasRole(ctx, *crew, models.GroupDeliveryCrew)
			if err != nil {
				s.logger.Error("Failed to check delivery crew", zap.Uint("user_id", *crew), zap.Error(err))
				return nil, apperrors.Internal("Failed to update order", err)
			}
			if !ok {
				return nil, apperrors.Validation("delivery_crew must be a member of the Delivery Crew group")
			}
		}
		to.DeliveryCrewID = req.DeliveryCrew.Value
	}

	if req.Status != nil {
		next := *req.Status
		if !next.Valid() {
			return nil, apperrors.Validation("status must be one of placed, out_for_delivery, delivered")
		}
		if !from.Status.CanTransitionTo(next) {
			return nil, apperrors.Validation(fmt.Sprintf("Order cannot move from %s to %s", from.Status, next))
		}
		to.Status = next
	}

	if to.Status.RequiresCrew() && to.DeliveryCrewID == nil {
		return nil, apperrors.Validation(fmt.Sprintf("An order that is %s needs a delivery crew", to.Status))
	}

	if sameChanges(from, to) {
		return order, nil
	}

	applied, err := s.orders.UpdateGuarded(ctx, id, from, to)
	if err != nil {
		s.logger.Error("Failed to update order", zap.Uint("order_id", id), zap.Error(err))
		return nil, apperrors.Internal("Failed to update order", err)
	}
	if !applied {
		return nil, apperrors.Conflict("Order was modified by another request")
	}

	order.Status = to.Status
	order.DeliveryCrewID = to.DeliveryCrewID

	awspkg.CountAsync(s.metrics, awspkg.MetricOrdersUpdated, map[string]string{"Status": string(to.Status)})
	s.logger.Info("Order updated",
		zap.Uint("order_id", id),
		zap.Uint("actor_id", actor.ID),
		zap.String("role", actor.Role.String()),
		zap.String("status", string(to.Status)),
	)
	return order, nil
}

func sameChanges(a, b models.OrderChanges) bool {
	if a.Status != b.Status {
		return false
	}
	if a.DeliveryCrewID == nil || b.DeliveryCrewID == nil {
		return a.DeliveryCrewID == nil && b.DeliveryCrewID == nil
	}
	return *a.DeliveryCrewID == *b.DeliveryCrewID
}
