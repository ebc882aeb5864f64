package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/tableorder/api/internal/audit"
	"github.com/tableorder/api/internal/database"
	"github.com/tableorder/api/internal/events"
	"github.com/tableorder/api/internal/gateway"
)

const defaultCurrency = "usd"

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// DB is a pool that can both run queries and start transactions.
// Satisfied by *pgxpool.Pool.
type DB interface {
	database.DBTX
	TxBeginner
}

// OrderStore defines the DB methods the order service needs.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	GetTableByNumber(ctx context.Context, arg database.GetTableByNumberParams) (database.Table, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	GetOrder(ctx context.Context, id uuid.UUID) (database.GetOrderRow, error)
	GetOrderForUpdate(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.ListOrderItemsByOrderRow, error)
	ListRestaurantOrdersSince(ctx context.Context, arg database.ListRestaurantOrdersSinceParams) ([]database.ListRestaurantOrdersSinceRow, error)
	ListOrdersByDevice(ctx context.Context, arg database.ListOrdersByDeviceParams) ([]database.ListOrdersByDeviceRow, error)
	TransitionOrderStatus(ctx context.Context, arg database.TransitionOrderStatusParams) (database.Order, error)
	SelectCashPayment(ctx context.Context, arg database.SelectCashPaymentParams) (database.Order, error)
	SetOrderCardPayment(ctx context.Context, arg database.SetOrderCardPaymentParams) (database.Order, error)
	GetRestaurantPaymentAccount(ctx context.Context, id uuid.UUID) (database.GetRestaurantPaymentAccountRow, error)
	ClearRestaurantStripeAccount(ctx context.Context, id uuid.UUID) error
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
type NewOrderStore func(db database.DBTX) OrderStore

// Options carries the collaborators of OrderService that have defaults.
type Options struct {
	Gateway  gateway.Gateway
	Notifier events.Notifier
	Log      logrus.FieldLogger
	Currency string
	Location *time.Location
	Now      func() time.Time
}

// OrderService coordinates the order lifecycle: creation, payment selection,
// confirmation, kitchen progression and cancellation.
type OrderService struct {
	db       DB
	newStore NewOrderStore
	audit    *audit.Recorder
	gateway  gateway.Gateway
	notifier events.Notifier
	log      logrus.FieldLogger
	currency string
	loc      *time.Location
	now      func() time.Time
}

// NewOrderService creates a new OrderService.
func NewOrderService(db DB, newStore NewOrderStore, recorder *audit.Recorder, opts Options) *OrderService {
	s := &OrderService{
		db:       db,
		newStore: newStore,
		audit:    recorder,
		gateway:  opts.Gateway,
		notifier: opts.Notifier,
		log:      opts.Log,
		currency: opts.Currency,
		loc:      opts.Location,
		now:      opts.Now,
	}
	if s.gateway == nil {
		s.gateway = gateway.Disabled{}
	}
	if s.notifier == nil {
		s.notifier = events.Nop{}
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	if s.currency == "" {
		s.currency = defaultCurrency
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Actor identifies who triggers an operation. Customers act on the order ID
// alone; staff are scoped to their restaurant.
type Actor struct {
	Staff        bool
	RestaurantID uuid.UUID
}

// Customer is the actor for public, order-ID-only calls.
func Customer() Actor { return Actor{} }

// Staff is the actor for authenticated restaurant calls.
func Staff(restaurantID uuid.UUID) Actor { return Actor{Staff: true, RestaurantID: restaurantID} }

func (a Actor) String() string {
	if a.Staff {
		return "staff"
	}
	return "customer"
}

func (a Actor) owns(o database.Order) bool {
	return !a.Staff || o.RestaurantID == a.RestaurantID
}

// CreateOrderRequest is the input for placing an order.
type CreateOrderRequest struct {
	RestaurantID uuid.UUID
	TableNumber  int32
	CustomerName string
	DeviceID     string
	Items        []CreateOrderItemRequest
}

// CreateOrderItemRequest is a single cart line. Price is the menu price the
// customer saw and is snapshotted onto the order.
type CreateOrderItemRequest struct {
	MenuItemID string
	Quantity   int32
	Price      string
	Comment    string
}

// OrderDetail is an order with its items and display names.
type OrderDetail struct {
	Order          database.Order
	RestaurantName string
	TableNumber    int32
	Items          []database.ListOrderItemsByOrderRow
}

// CreateOrderResult is the created order with its items.
type CreateOrderResult struct {
	Order       database.Order
	TableNumber int32
	Items       []database.OrderItem
}

// CreateOrder validates the cart, resolves the table and stores the order
// and its items atomically in status PENDING.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		return nil, ErrCustomerNameRequired
	}
	if req.TableNumber <= 0 {
		return nil, ErrInvalidTableNumber
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	total := decimal.Zero
	params := make([]database.CreateOrderItemParams, 0, len(req.Items))
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidQuantity)
		}
		menuItemID, err := uuid.Parse(item.MenuItemID)
		if err != nil {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidMenuItemID)
		}
		price, err := decimal.NewFromString(item.Price)
		if err != nil || price.IsNegative() {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidPrice)
		}
		price = price.Round(2)
		total = total.Add(price.Mul(decimal.NewFromInt32(item.Quantity)))
		params = append(params, database.CreateOrderItemParams{
			MenuItemID: menuItemID,
			Quantity:   item.Quantity,
			Price:      decimalToNumeric(price),
			Comment:    optionalText(item.Comment),
		})
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	table, err := store.GetTableByNumber(ctx, database.GetTableByNumberParams{
		RestaurantID: req.RestaurantID,
		Number:       req.TableNumber,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("get table: %w", err)
	}

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		RestaurantID: req.RestaurantID,
		TableID:      table.ID,
		CustomerName: optionalText(name),
		Total:        decimalToNumeric(total),
		DeviceID:     optionalText(req.DeviceID),
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	items := make([]database.OrderItem, 0, len(params))
	for i, p := range params {
		p.OrderID = order.ID
		item, err := store.CreateOrderItem(ctx, p)
		if err != nil {
			if isMenuItemViolation(err) {
				return nil, fmt.Errorf("item[%d]: %w", i, ErrMenuItemNotFound)
			}
			return nil, fmt.Errorf("create order item: %w", err)
		}
		items = append(items, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	s.notify(ctx, events.TypeOrderCreated, order, "")
	return &CreateOrderResult{Order: order, TableNumber: table.Number, Items: items}, nil
}

// isMenuItemViolation checks for a foreign key violation on the ordered
// menu item (pgconn error code 23503).
func isMenuItemViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503" && pgErr.ConstraintName == "order_items_menu_item_id_fkey"
	}
	return false
}

// GetOrder returns an order with items. Staff only see their own orders.
func (s *OrderService) GetOrder(ctx context.Context, orderID uuid.UUID, actor Actor) (*OrderDetail, error) {
	store := s.newStore(s.db)
	row, err := store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if !actor.owns(row.Order) {
		return nil, ErrOrderNotFound
	}
	items, err := store.ListOrderItemsByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	return &OrderDetail{
		Order:          row.Order,
		RestaurantName: row.RestaurantName,
		TableNumber:    row.TableNumber,
		Items:          items,
	}, nil
}

// ListTodayOrders returns the restaurant's orders created since local
// midnight, newest first.
func (s *OrderService) ListTodayOrders(ctx context.Context, restaurantID uuid.UUID) ([]database.ListRestaurantOrdersSinceRow, error) {
	now := s.now().In(s.loc)
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)

	rows, err := s.newStore(s.db).ListRestaurantOrdersSince(ctx, database.ListRestaurantOrdersSinceParams{
		RestaurantID: restaurantID,
		CreatedAt:    midnight,
	})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return rows, nil
}

// DeviceOrderFilter narrows a device lookup. Nil fields are ignored.
type DeviceOrderFilter struct {
	RestaurantID *uuid.UUID
	TableNumber  *int32
}

// ListDeviceOrders returns the orders placed from one browser, newest first.
func (s *OrderService) ListDeviceOrders(ctx context.Context, deviceID string, f DeviceOrderFilter) ([]OrderDetail, error) {
	if strings.TrimSpace(deviceID) == "" {
		return nil, ErrDeviceIDRequired
	}
	arg := database.ListOrdersByDeviceParams{DeviceID: optionalText(deviceID)}
	if f.RestaurantID != nil {
		arg.RestaurantID = pgtype.UUID{Bytes: *f.RestaurantID, Valid: true}
	}
	if f.TableNumber != nil {
		arg.TableNumber = pgtype.Int4{Int32: *f.TableNumber, Valid: true}
	}

	store := s.newStore(s.db)
	rows, err := store.ListOrdersByDevice(ctx, arg)
	if err != nil {
		return nil, fmt.Errorf("list device orders: %w", err)
	}
	out := make([]OrderDetail, 0, len(rows))
	for _, r := range rows {
		items, err := store.ListOrderItemsByOrder(ctx, r.Order.ID)
		if err != nil {
			return nil, fmt.Errorf("list order items: %w", err)
		}
		out = append(out, OrderDetail{
			Order:          r.Order,
			RestaurantName: r.RestaurantName,
			TableNumber:    r.TableNumber,
			Items:          items,
		})
	}
	return out, nil
}

// GetAuditSummary returns the payment log summary of an order.
func (s *OrderService) GetAuditSummary(ctx context.Context, orderID uuid.UUID, actor Actor) (*audit.Summary, error) {
	row, err := s.newStore(s.db).GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if !actor.owns(row.Order) {
		return nil, ErrOrderNotFound
	}
	return s.audit.Summarize(ctx, orderID)
}

func (s *OrderService) notify(ctx context.Context, typ string, o database.Order, previous database.OrderStatus) {
	e := events.Event{
		Type:           typ,
		OrderID:        o.ID,
		RestaurantID:   o.RestaurantID,
		Status:         string(o.Status),
		PreviousStatus: string(previous),
		Total:          numericToDecimal(o.Total).StringFixed(2),
		OccurredAt:     s.now(),
	}
	if o.PaymentMethod.Valid {
		e.PaymentMethod = string(o.PaymentMethod.PaymentMethod)
	}
	s.notifier.Notify(ctx, e)
}

// --- Helpers ---

func optionalText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
