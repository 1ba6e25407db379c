// Package service provides the implementation of order business logic:
// checkout, vendor fulfilment and order listing.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	cartstore "github.com/arjunmeena977/vendor-ecommerce/internal/cart/store"
	caterrors "github.com/arjunmeena977/vendor-ecommerce/internal/catalog/errors"
	catalogstore "github.com/arjunmeena977/vendor-ecommerce/internal/catalog/store"
	ordererrors "github.com/arjunmeena977/vendor-ecommerce/internal/order/errors"
	"github.com/arjunmeena977/vendor-ecommerce/internal/order/store"
	"github.com/arjunmeena977/vendor-ecommerce/pkg/config"
	"github.com/arjunmeena977/vendor-ecommerce/pkg/messaging"
	"github.com/arjunmeena977/vendor-ecommerce/pkg/messaging/events"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// OrderService defines the methods for placing and managing orders.
type OrderService interface {
	// PlaceOrder turns the checkout lines into one PENDING order per vendor.
	// When dto.Items is empty the stored cart is used and cleared on success.
	PlaceOrder(ctx context.Context, userID uuid.UUID, dto PlaceOrderDto) ([]OrderDto, error)

	// FindByID loads one order visible to the requester. Customers see their
	// own orders, vendors the ones assigned to them, admins all of them.
	FindByID(ctx context.Context, requester Requester, id uuid.UUID) (*OrderDto, error)

	// ListMine returns the requester's orders as a customer, newest first.
	ListMine(ctx context.Context, userID uuid.UUID, offset, limit int32) ([]OrderDto, error)

	// ListForVendor returns the orders assigned to the vendor, newest first.
	ListForVendor(ctx context.Context, vendorID uuid.UUID, offset, limit int32) ([]OrderDto, error)

	// ListAll returns every order. Admin use only.
	ListAll(ctx context.Context, offset, limit int32) ([]OrderDto, error)

	// UpdateStatus advances an order one step along
	// PENDING -> SHIPPED -> DELIVERED on behalf of the owning vendor.
	// Returns ErrOrderNotFound on a missing or foreign order and
	// ErrInvalidTransition when the move is not the single next step.
	UpdateStatus(ctx context.Context, vendorID uuid.UUID, id uuid.UUID, toStatus string) (*OrderDto, error)
}

// Requester identifies who is asking and with which privileges.
type Requester struct {
	UserID  uuid.UUID
	IsAdmin bool
}

// Service implements OrderService.
type Service struct {
	orderStore    store.OrderStore
	productStore  catalogstore.ProductStore
	cartStore     cartstore.CartStore
	publisher     messaging.Publisher
	policy        config.OrdersConfig
	ordersCounter metric.Int64Counter
}

// NewService creates a new instance of OrderService with the provided stores.
func NewService(orderStore store.OrderStore, productStore catalogstore.ProductStore,
	cartStore cartstore.CartStore, publisher messaging.Publisher, policy config.OrdersConfig) *Service {
	meter := otel.Meter("marketplace")
	ordersCounter, err := meter.Int64Counter("orders_created", metric.WithDescription("Total number of created orders"))
	if err != nil {
		panic(fmt.Sprintf("failed to create orders_created counter: %v", err))
	}
	return &Service{
		orderStore:    orderStore,
		productStore:  productStore,
		cartStore:     cartStore,
		publisher:     publisher,
		policy:        policy,
		ordersCounter: ordersCounter,
	}
}

// PlaceOrderDto represents the data transfer object for a checkout.
type PlaceOrderDto struct {
	Address string         `json:"address" validate:"required,max=500"`
	Items   []OrderLineDto `json:"items"   validate:"dive"`
}

// OrderLineDto is one requested product line at checkout.
type OrderLineDto struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int32     `json:"quantity"   validate:"required,min=1"`
}

// OrderDto represents the data transfer object for an order.
type OrderDto struct {
	ID          uuid.UUID       `json:"id"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Address     string          `json:"address"`
	CreatedAt   string          `json:"created_at"`
	Buyer       PartyDto        `json:"buyer"`
	Vendor      PartyDto        `json:"vendor"`
	Items       []OrderItemDto  `json:"items,omitempty"`
}

// PartyDto identifies one side of an order for display.
type PartyDto struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name,omitempty"`
	Email string    `json:"email,omitempty"`
}

// OrderItemDto is one purchased line with its price snapshot.
type OrderItemDto struct {
	ProductID       uuid.UUID       `json:"product_id"`
	Title           string          `json:"title"`
	Quantity        int32           `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
}

// resolvedLine pairs a requested quantity with the product it resolved to.
type resolvedLine struct {
	product  *catalogstore.Product
	quantity int32
}

// PlaceOrder resolves the checkout lines against the catalog, groups them by
// vendor and persists one order per vendor. Each vendor group is committed in
// its own transaction together with its stock decrements, so a failing group
// does not undo the groups committed before it.
func (s *Service) PlaceOrder(ctx context.Context, userID uuid.UUID, dto PlaceOrderDto) ([]OrderDto, error) {
	lines := dto.Items
	fromCart := len(lines) == 0
	if fromCart {
		cart, err := s.cartStore.Get(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load cart: %w", err)
		}
		for _, l := range cart.Lines {
			lines = append(lines, OrderLineDto{ProductID: l.ProductID, Quantity: l.Quantity})
		}
	}
	if len(lines) == 0 {
		return nil, ordererrors.ErrEmptyOrder
	}

	groups, vendorOrder, err := s.resolveAndGroup(ctx, lines)
	if err != nil {
		return nil, err
	}
	if len(vendorOrder) == 0 {
		return nil, ordererrors.ErrEmptyOrder
	}

	created := make([]OrderDto, 0, len(vendorOrder))
	for _, vendorID := range vendorOrder {
		group := groups[vendorID]
		total := decimal.Zero
		items := make([]store.CreateOrderItemParams, 0, len(group))
		for _, line := range group {
			total = total.Add(line.product.Price.Mul(decimal.NewFromInt32(line.quantity)))
			items = append(items, store.CreateOrderItemParams{
				ProductID:       line.product.ID,
				Quantity:        line.quantity,
				PriceAtPurchase: line.product.Price,
				AllowNegative:   s.policy.AllowNegativeStock,
			})
		}

		order, err := s.orderStore.CreateOrder(ctx, store.CreateOrderParams{
			UserID:      userID,
			VendorID:    vendorID,
			TotalAmount: total,
			Address:     dto.Address,
			Items:       items,
		})
		if err != nil {
			// Groups committed before this one stay committed; the caller
			// learns which vendor failed from the wrapped error.
			return created, fmt.Errorf("vendor %s: %w", vendorID, err)
		}

		event := events.OrderCreatedEvent{
			OrderID:     order.ID,
			UserID:      order.UserID,
			VendorID:    order.VendorID,
			TotalAmount: order.TotalAmount,
			CreatedAt:   order.CreatedAt,
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			slog.ErrorContext(ctx, "Failed to publish OrderCreatedEvent", "order_id", order.ID, "error", err)
		}
		s.ordersCounter.Add(ctx, 1)

		created = append(created, OrderDto{
			ID:          order.ID,
			Status:      order.Status,
			TotalAmount: order.TotalAmount,
			Address:     order.Address,
			CreatedAt:   order.CreatedAt.Format(time.RFC3339),
			Buyer:       PartyDto{ID: order.UserID},
			Vendor:      PartyDto{ID: order.VendorID},
			Items:       toItemDtos(group),
		})
	}

	if fromCart {
		if err := s.cartStore.Delete(ctx, userID); err != nil {
			slog.WarnContext(ctx, "Failed to clear cart after checkout", "user_id", userID, "error", err)
		}
	}
	return created, nil
}

// resolveAndGroup looks up every line's product and buckets the lines per
// vendor, preserving the order vendors first appear in the request.
// Duplicate lines for the same product are merged by summing quantities.
func (s *Service) resolveAndGroup(ctx context.Context, lines []OrderLineDto) (map[uuid.UUID][]resolvedLine, []uuid.UUID, error) {
	merged := make(map[uuid.UUID]int32)
	productOrder := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, nil, fmt.Errorf("quantity must be positive for product %s", line.ProductID)
		}
		if _, seen := merged[line.ProductID]; !seen {
			productOrder = append(productOrder, line.ProductID)
		}
		merged[line.ProductID] += line.Quantity
	}

	groups := make(map[uuid.UUID][]resolvedLine)
	var vendorOrder []uuid.UUID
	for _, productID := range productOrder {
		product, err := s.productStore.FindByID(ctx, productID)
		if err != nil {
			if errors.Is(err, caterrors.ErrProductNotFound) && s.policy.SkipUnknownProducts {
				slog.WarnContext(ctx, "Skipping unknown product at checkout", "product_id", productID)
				continue
			}
			return nil, nil, err
		}
		if _, seen := groups[product.VendorID]; !seen {
			vendorOrder = append(vendorOrder, product.VendorID)
		}
		groups[product.VendorID] = append(groups[product.VendorID], resolvedLine{
			product:  product,
			quantity: merged[productID],
		})
	}
	return groups, vendorOrder, nil
}

func (s *Service) FindByID(ctx context.Context, requester Requester, id uuid.UUID) (*OrderDto, error) {
	details, err := s.orderStore.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !requester.IsAdmin && details.UserID != requester.UserID && details.VendorID != requester.UserID {
		return nil, ordererrors.ErrOrderNotFound
	}
	return toDto(details), nil
}

func (s *Service) ListMine(ctx context.Context, userID uuid.UUID, offset, limit int32) ([]OrderDto, error) {
	details, err := s.orderStore.ListByUser(ctx, userID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return toDtos(details), nil
}

func (s *Service) ListForVendor(ctx context.Context, vendorID uuid.UUID, offset, limit int32) ([]OrderDto, error) {
	details, err := s.orderStore.ListByVendor(ctx, vendorID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list vendor orders: %w", err)
	}
	return toDtos(details), nil
}

func (s *Service) ListAll(ctx context.Context, offset, limit int32) ([]OrderDto, error) {
	details, err := s.orderStore.ListAll(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return toDtos(details), nil
}

// nextStatus is the single allowed forward step per status. DELIVERED has no
// entry and is terminal.
var nextStatus = map[string]string{
	store.StatusPending: store.StatusShipped,
	store.StatusShipped: store.StatusDelivered,
}

var knownStatuses = map[string]struct{}{
	store.StatusPending:   {},
	store.StatusShipped:   {},
	store.StatusDelivered: {},
}

func (s *Service) UpdateStatus(ctx context.Context, vendorID uuid.UUID, id uuid.UUID, toStatus string) (*OrderDto, error) {
	if _, ok := knownStatuses[toStatus]; !ok {
		return nil, ordererrors.ErrInvalidStatus
	}

	details, err := s.orderStore.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if details.VendorID != vendorID {
		return nil, ordererrors.ErrOrderNotFound
	}
	if nextStatus[details.Status] != toStatus {
		return nil, ordererrors.ErrInvalidTransition
	}

	updated, err := s.orderStore.UpdateStatus(ctx, id, vendorID, details.Status, toStatus)
	if err != nil {
		// The order was visible a moment ago, so a failed compare-and-set
		// means the status moved underneath us.
		if errors.Is(err, ordererrors.ErrOrderNotFound) {
			return nil, ordererrors.ErrInvalidTransition
		}
		return nil, err
	}
	details.Order = *updated
	return toDto(details), nil
}

// toDto converts a store.OrderDetails to an OrderDto.
func toDto(details *store.OrderDetails) *OrderDto {
	items := make([]OrderItemDto, len(details.Items))
	for i, item := range details.Items {
		items[i] = OrderItemDto{
			ProductID:       item.ProductID,
			Title:           item.ProductTitle,
			Quantity:        item.Quantity,
			PriceAtPurchase: item.PriceAtPurchase,
		}
	}
	return &OrderDto{
		ID:          details.ID,
		Status:      details.Status,
		TotalAmount: details.TotalAmount,
		Address:     details.Address,
		CreatedAt:   details.CreatedAt.Format(time.RFC3339),
		Buyer:       PartyDto{ID: details.UserID, Name: details.BuyerName, Email: details.BuyerEmail},
		Vendor:      PartyDto{ID: details.VendorID, Name: details.VendorName, Email: details.VendorEmail},
		Items:       items,
	}
}

func toDtos(details []store.OrderDetails) []OrderDto {
	dtos := make([]OrderDto, len(details))
	for i := range details {
		dtos[i] = *toDto(&details[i])
	}
	return dtos
}

func toItemDtos(group []resolvedLine) []OrderItemDto {
	items := make([]OrderItemDto, len(group))
	for i, line := range group {
		items[i] = OrderItemDto{
			ProductID:       line.product.ID,
			Title:           line.product.Title,
			Quantity:        line.quantity,
			PriceAtPurchase: line.product.Price,
		}
	}
	return items
}
