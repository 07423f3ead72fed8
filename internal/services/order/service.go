package order

import (
	"context"
	"errors"
	"fmt"

	"tavola/internal/models"
	"tavola/internal/repositories"
	"tavola/internal/services/fees"

	"github.com/google/uuid"
)

var (
	ErrEmptyOrder      = errors.New("order has no items")
	ErrItemUnavailable = errors.New("menu item is not available")
)

type LineRequest struct {
	MenuItemID uint `json:"menuItemId"`
	Quantity   int  `json:"quantity"`
}

type CreateRequest struct {
	CustomerName  string        `json:"customerName"`
	CustomerEmail string        `json:"customerEmail"`
	Currency      string        `json:"currency"`
	Items         []LineRequest `json:"items"`
}

type Service interface {
	Create(ctx context.Context, req *CreateRequest) (*models.Order, error)
	Get(ctx context.Context, id string) (*models.Order, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

type service struct {
	orders repositories.OrderRepository
	menu   repositories.MenuItemRepository
	fees   *fees.Calculator
}

func NewService(orders repositories.OrderRepository, menu repositories.MenuItemRepository, feeCalc *fees.Calculator) Service {
	return &service{
		orders: orders,
		menu:   menu,
		fees:   feeCalc,
	}
}

// Create prices each line from the current menu, snapshots unit prices
// onto the order, and applies the service fee to the subtotal.
func (s *service) Create(ctx context.Context, req *CreateRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	currency := req.Currency
	if currency == "" {
		currency = "GBP"
	}

	var subtotal float64
	lines := make([]models.OrderItem, 0, len(req.Items))
	for _, line := range req.Items {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("invalid quantity for item %d", line.MenuItemID)
		}
		item, err := s.menu.GetByID(ctx, line.MenuItemID)
		if err != nil {
			return nil, fmt.Errorf("failed to load menu item %d: %w", line.MenuItemID, err)
		}
		if !item.Available {
			return nil, fmt.Errorf("%w: %s", ErrItemUnavailable, item.Name)
		}

		subtotal += item.Price * float64(line.Quantity)
		lines = append(lines, models.OrderItem{
			MenuItemID: item.ID,
			Name:       item.Name,
			UnitPrice:  item.Price,
			Quantity:   line.Quantity,
		})
	}

	fee, total, err := s.fees.Total(subtotal)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		ID:            uuid.NewString(),
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Items:         lines,
		Subtotal:      subtotal,
		Fee:           fee,
		Total:         total,
		Currency:      currency,
		Status:        models.OrderStatusPending,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return order, nil
}

func (s *service) Get(ctx context.Context, id string) (*models.Order, error) {
	return s.orders.GetByID(ctx, id)
}

func (s *service) UpdateStatus(ctx context.Context, id, status string) error {
	return s.orders.UpdateStatus(ctx, id, status)
}
