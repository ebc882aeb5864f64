package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"github.com/tableorder/api/internal/audit"
	"github.com/tableorder/api/internal/database"
	"github.com/tableorder/api/internal/events"
	"github.com/tableorder/api/internal/gateway"
)

// --- Mock implementations ---

// mockTx implements pgx.Tx. Begin opens a savepoint; the remaining query
// methods panic so we catch accidental calls.
type mockTx struct {
	commitErr  error
	committed  bool
	rolledBack bool
	savepoints []*mockTx
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) {
	sp := &mockTx{}
	m.savepoints = append(m.savepoints, sp)
	return sp, nil
}

func (m *mockTx) Commit(ctx context.Context) error {
	if m.commitErr != nil {
		return m.commitErr
	}
	m.committed = true
	return nil
}

func (m *mockTx) Rollback(ctx context.Context) error {
	if !m.committed {
		m.rolledBack = true
	}
	return nil
}

func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	panic("not implemented")
}
func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	panic("not implemented")
}
func (m *mockTx) LargeObjects() pgx.LargeObjects { panic("not implemented") }
func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	panic("not implemented")
}
func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	panic("not implemented")
}
func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	panic("not implemented")
}
func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("not implemented")
}
func (m *mockTx) Conn() *pgx.Conn { panic("not implemented") }

// mockDB implements DB. Every Begin hands out a fresh mockTx.
type mockDB struct {
	beginErr error
	txs      []*mockTx
}

func (m *mockDB) Begin(ctx context.Context) (pgx.Tx, error) {
	if m.beginErr != nil {
		return nil, m.beginErr
	}
	tx := &mockTx{}
	m.txs = append(m.txs, tx)
	return tx, nil
}

func (m *mockDB) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	panic("not implemented")
}
func (m *mockDB) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	panic("not implemented")
}
func (m *mockDB) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	panic("not implemented")
}

func (m *mockDB) lastTx() *mockTx {
	if len(m.txs) == 0 {
		return nil
	}
	return m.txs[len(m.txs)-1]
}

// memStore is an in-memory OrderStore, AccountStore and audit.Store. The
// conditional updates honour their expected statuses like the SQL does.
type memStore struct {
	mu          sync.Mutex
	restaurants map[uuid.UUID]*database.GetRestaurantPaymentAccountRow
	tables      []database.Table
	menuItems   map[uuid.UUID]string
	orders      map[uuid.UUID]database.Order
	items       map[uuid.UUID][]database.OrderItem
	logs        []database.PaymentLog
	calls       []string
	clock       time.Time

	logErr error
	// beforeWrite runs ahead of every conditional order update, standing in
	// for a concurrent writer.
	beforeWrite func(id uuid.UUID)
}

func newMemStore(now time.Time) *memStore {
	return &memStore{
		restaurants: make(map[uuid.UUID]*database.GetRestaurantPaymentAccountRow),
		menuItems:   make(map[uuid.UUID]string),
		orders:      make(map[uuid.UUID]database.Order),
		items:       make(map[uuid.UUID][]database.OrderItem),
		clock:       now,
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memStore) order(id uuid.UUID) database.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.orders[id]
}

func (m *memStore) setStatus(id uuid.UUID, status database.OrderStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o := m.orders[id]
	o.Status = status
	m.orders[id] = o
}

func (m *memStore) logsFor(id uuid.UUID) []database.PaymentLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []database.PaymentLog
	for _, l := range m.logs {
		if l.OrderID == id {
			out = append(out, l)
		}
	}
	return out
}

func (m *memStore) hook(id uuid.UUID) {
	if m.beforeWrite != nil {
		m.beforeWrite(id)
	}
}

func (m *memStore) GetTableByNumber(ctx context.Context, arg database.GetTableByNumberParams) (database.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tables {
		if t.RestaurantID == arg.RestaurantID && t.Number == arg.Number {
			return t, nil
		}
	}
	return database.Table{}, pgx.ErrNoRows
}

func (m *memStore) CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.tick()
	o := database.Order{
		ID:           uuid.New(),
		RestaurantID: arg.RestaurantID,
		TableID:      arg.TableID,
		CustomerName: arg.CustomerName,
		Total:        arg.Total,
		Status:       database.OrderStatusPENDING,
		DeviceID:     arg.DeviceID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.orders[o.ID] = o
	return o, nil
}

func (m *memStore) CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.menuItems[arg.MenuItemID]; !ok {
		return database.OrderItem{}, &pgconn.PgError{Code: "23503", ConstraintName: "order_items_menu_item_id_fkey"}
	}
	item := database.OrderItem{
		ID:         uuid.New(),
		OrderID:    arg.OrderID,
		MenuItemID: arg.MenuItemID,
		Quantity:   arg.Quantity,
		Price:      arg.Price,
		Comment:    arg.Comment,
		CreatedAt:  m.clock,
	}
	m.items[arg.OrderID] = append(m.items[arg.OrderID], item)
	return item, nil
}

func (m *memStore) tableNumber(id uuid.UUID) int32 {
	for _, t := range m.tables {
		if t.ID == id {
			return t.Number
		}
	}
	return 0
}

func (m *memStore) GetOrder(ctx context.Context, id uuid.UUID) (database.GetOrderRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return database.GetOrderRow{}, pgx.ErrNoRows
	}
	row := database.GetOrderRow{Order: o, TableNumber: m.tableNumber(o.TableID)}
	if r, ok := m.restaurants[o.RestaurantID]; ok {
		row.RestaurantName = r.Name
	}
	return row, nil
}

func (m *memStore) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (database.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return database.Order{}, pgx.ErrNoRows
	}
	return o, nil
}

func (m *memStore) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.ListOrderItemsByOrderRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []database.ListOrderItemsByOrderRow
	for _, it := range m.items[orderID] {
		out = append(out, database.ListOrderItemsByOrderRow{OrderItem: it, MenuItemName: m.menuItems[it.MenuItemID]})
	}
	return out, nil
}

func (m *memStore) sortedOrders() []database.Order {
	out := make([]database.Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *memStore) ListRestaurantOrdersSince(ctx context.Context, arg database.ListRestaurantOrdersSinceParams) ([]database.ListRestaurantOrdersSinceRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []database.ListRestaurantOrdersSinceRow
	for _, o := range m.sortedOrders() {
		if o.RestaurantID == arg.RestaurantID && !o.CreatedAt.Before(arg.CreatedAt) {
			out = append(out, database.ListRestaurantOrdersSinceRow{Order: o, TableNumber: m.tableNumber(o.TableID)})
		}
	}
	return out, nil
}

func (m *memStore) ListOrdersByDevice(ctx context.Context, arg database.ListOrdersByDeviceParams) ([]database.ListOrdersByDeviceRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []database.ListOrdersByDeviceRow
	for _, o := range m.sortedOrders() {
		if o.DeviceID != arg.DeviceID {
			continue
		}
		if arg.RestaurantID.Valid && o.RestaurantID != uuid.UUID(arg.RestaurantID.Bytes) {
			continue
		}
		number := m.tableNumber(o.TableID)
		if arg.TableNumber.Valid && number != arg.TableNumber.Int32 {
			continue
		}
		row := database.ListOrdersByDeviceRow{Order: o, TableNumber: number}
		if r, ok := m.restaurants[o.RestaurantID]; ok {
			row.RestaurantName = r.Name
		}
		out = append(out, row)
	}
	return out, nil
}

func (m *memStore) TransitionOrderStatus(ctx context.Context, arg database.TransitionOrderStatusParams) (database.Order, error) {
	m.hook(arg.ID)
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[arg.ID]
	if !ok || !contains(arg.ExpectedStatuses, string(o.Status)) {
		return database.Order{}, pgx.ErrNoRows
	}
	o.Status = arg.Status
	o.UpdatedAt = m.tick()
	m.orders[o.ID] = o
	return o, nil
}

func (m *memStore) SelectCashPayment(ctx context.Context, arg database.SelectCashPaymentParams) (database.Order, error) {
	m.hook(arg.ID)
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[arg.ID]
	if !ok || o.Status != database.OrderStatusPENDING {
		return database.Order{}, pgx.ErrNoRows
	}
	o.Status = database.OrderStatusPENDINGCASHPAYMENT
	o.PaymentMethod = database.NullPaymentMethod{PaymentMethod: database.PaymentMethodCASH, Valid: true}
	o.PaymentID = arg.PaymentID
	o.UpdatedAt = m.tick()
	m.orders[o.ID] = o
	return o, nil
}

func (m *memStore) SetOrderCardPayment(ctx context.Context, arg database.SetOrderCardPaymentParams) (database.Order, error) {
	m.hook(arg.ID)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "SetOrderCardPayment")
	o, ok := m.orders[arg.ID]
	if !ok || !awaitingPayment(o.Status) {
		return database.Order{}, pgx.ErrNoRows
	}
	o.PaymentMethod = database.NullPaymentMethod{PaymentMethod: database.PaymentMethodCARD, Valid: true}
	o.PaymentID = arg.PaymentID
	o.UpdatedAt = m.tick()
	m.orders[o.ID] = o
	return o, nil
}

func (m *memStore) GetRestaurantPaymentAccount(ctx context.Context, id uuid.UUID) (database.GetRestaurantPaymentAccountRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.restaurants[id]
	if !ok {
		return database.GetRestaurantPaymentAccountRow{}, pgx.ErrNoRows
	}
	return *r, nil
}

func (m *memStore) SetRestaurantStripeAccount(ctx context.Context, arg database.SetRestaurantStripeAccountParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.restaurants[arg.ID]
	r.StripeAccountID = arg.StripeAccountID
	r.StripeOnboarded = false
	return nil
}

func (m *memStore) SetRestaurantOnboarded(ctx context.Context, arg database.SetRestaurantOnboardedParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.restaurants[arg.ID].StripeOnboarded = arg.StripeOnboarded
	return nil
}

func (m *memStore) ClearRestaurantStripeAccount(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.restaurants[id]
	r.StripeAccountID = pgtype.Text{}
	r.StripeOnboarded = false
	return nil
}

func (m *memStore) CreatePaymentLog(ctx context.Context, arg database.CreatePaymentLogParams) (database.PaymentLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "CreatePaymentLog")
	if m.logErr != nil {
		return database.PaymentLog{}, m.logErr
	}
	l := database.PaymentLog{
		ID:             uuid.New(),
		OrderID:        arg.OrderID,
		Action:         arg.Action,
		Amount:         arg.Amount,
		PaymentID:      arg.PaymentID,
		PreviousStatus: arg.PreviousStatus,
		NewStatus:      arg.NewStatus,
		Metadata:       arg.Metadata,
		CreatedAt:      m.tick(),
	}
	m.logs = append(m.logs, l)
	return l, nil
}

func (m *memStore) ListPaymentLogsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.PaymentLog, error) {
	return m.logsFor(orderID), nil
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

// fakeGateway records intents and answers with function overrides.
type fakeGateway struct {
	intents []gateway.IntentParams

	createIntentFn  func(p gateway.IntentParams) (*gateway.Intent, error)
	accountStatusFn func(id string) (*gateway.AccountStatus, error)
	createAccountFn func(p gateway.AccountParams) (string, error)
	linkFn          func(accountID, refreshURL, returnURL string) (string, error)
}

func (g *fakeGateway) CreateIntent(ctx context.Context, p gateway.IntentParams) (*gateway.Intent, error) {
	g.intents = append(g.intents, p)
	if g.createIntentFn != nil {
		return g.createIntentFn(p)
	}
	id := fmt.Sprintf("pi_test_%d", len(g.intents))
	return &gateway.Intent{ID: id, ClientSecret: id + "_secret", Amount: p.Amount}, nil
}

func (g *fakeGateway) RetrieveAccountStatus(ctx context.Context, id string) (*gateway.AccountStatus, error) {
	return g.accountStatusFn(id)
}

func (g *fakeGateway) CreateConnectedAccount(ctx context.Context, p gateway.AccountParams) (string, error) {
	return g.createAccountFn(p)
}

func (g *fakeGateway) CreateOnboardingLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error) {
	return g.linkFn(accountID, refreshURL, returnURL)
}

func (g *fakeGateway) ParseWebhook(payload []byte, signature string) (*gateway.WebhookEvent, error) {
	panic("not implemented")
}

type recordingNotifier struct {
	events []events.Event
}

func (n *recordingNotifier) Notify(ctx context.Context, e events.Event) {
	n.events = append(n.events, e)
}

// --- Test helpers ---

var testNow = time.Date(2026, 3, 14, 12, 30, 0, 0, time.UTC)

type fixture struct {
	svc        *OrderService
	store      *memStore
	db         *mockDB
	gw         *fakeGateway
	notes      *recordingNotifier
	hook       *logtest.Hook
	restaurant uuid.UUID
	menuItem   uuid.UUID
}

// newFixture wires an OrderService to one restaurant with table 4 and one
// menu item. The restaurant has no payment account.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newMemStore(testNow.Add(-time.Hour))
	rid := uuid.New()
	store.restaurants[rid] = &database.GetRestaurantPaymentAccountRow{
		ID:    rid,
		Name:  "Trattoria Roma",
		Email: "owner@roma.test",
	}
	store.tables = append(store.tables, database.Table{ID: uuid.New(), RestaurantID: rid, Number: 4})
	menuItem := uuid.New()
	store.menuItems[menuItem] = "Margherita"

	logger, hook := logtest.NewNullLogger()
	recorder := audit.NewRecorder(store, func(database.DBTX) audit.Store { return store }, logger)
	db := &mockDB{}
	gw := &fakeGateway{}
	notes := &recordingNotifier{}
	svc := NewOrderService(db, func(database.DBTX) OrderStore { return store }, recorder, Options{
		Gateway:  gw,
		Notifier: notes,
		Log:      logger,
		Now:      func() time.Time { return testNow },
	})
	return &fixture{
		svc:        svc,
		store:      store,
		db:         db,
		gw:         gw,
		notes:      notes,
		hook:       hook,
		restaurant: rid,
		menuItem:   menuItem,
	}
}

// placeOrder creates a 25.00 order (2 x 12.50) through the service.
func (f *fixture) placeOrder(t *testing.T) database.Order {
	t.Helper()
	res, err := f.svc.CreateOrder(context.Background(), CreateOrderRequest{
		RestaurantID: f.restaurant,
		TableNumber:  4,
		CustomerName: "Ana",
		DeviceID:     "device-1",
		Items: []CreateOrderItemRequest{
			{MenuItemID: f.menuItem.String(), Quantity: 2, Price: "12.50"},
		},
	})
	require.NoError(t, err)
	return res.Order
}

// orderIn places an order and forces it into status.
func (f *fixture) orderIn(t *testing.T, status database.OrderStatus) database.Order {
	t.Helper()
	o := f.placeOrder(t)
	f.store.setStatus(o.ID, status)
	f.notes.events = nil
	return f.store.order(o.ID)
}

func (f *fixture) onboard(accountID string, feePercent string) {
	r := f.store.restaurants[f.restaurant]
	r.StripeAccountID = pgtype.Text{String: accountID, Valid: true}
	r.StripeOnboarded = true
	if feePercent != "" {
		r.PlatformFeePercent = makeNumeric(feePercent)
	}
}

func makeNumeric(val string) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(val)
	return n
}

func numericEquals(n pgtype.Numeric, expected string) bool {
	exp, _ := decimal.NewFromString(expected)
	return numericToDecimal(n).Equal(exp)
}
