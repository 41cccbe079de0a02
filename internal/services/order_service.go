package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/kasira/internal/models"
)

// OrderService orchestrates the order lifecycle: creating orders from
// cart contents, obtaining QR payment codes, reconciling payment state
// and finishing orders.
type OrderService struct {
	db       *gorm.DB
	gateway  *XenditService
	telegram *TelegramService
	log      *zap.Logger
}

func NewOrderService(db *gorm.DB, gateway *XenditService, telegram *TelegramService, log *zap.Logger) *OrderService {
	return &OrderService{db: db, gateway: gateway, telegram: telegram, log: log}
}

// CartLineInput is a requested order line, pre-pricing.
type CartLineInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// CreatedOrder pairs a persisted order with the QR string the client
// displays to the payer.
type CreatedOrder struct {
	Order    models.Order
	QRString string
}

// OrderSummary is the read-model row returned by ListOrders.
type OrderSummary struct {
	ID         uuid.UUID          `json:"id"`
	GrandTotal int64              `json:"grand_total"`
	Status     models.OrderStatus `json:"status"`
	PaidAt     *time.Time         `json:"paid_at"`
	ItemCount  int64              `json:"item_count"`
}

// Quote resolves cart lines against the catalog and computes totals
// without persisting anything.
func (s *OrderService) Quote(ctx context.Context, lines []CartLineInput) ([]PricedLine, Totals, error) {
	if len(lines) == 0 {
		return nil, Totals{}, ErrEmptyCart
	}

	catalog, err := s.loadCatalog(ctx, lines)
	if err != nil {
		return nil, Totals{}, err
	}

	priced, err := ResolveLines(lines, catalog)
	if err != nil {
		return nil, Totals{}, err
	}

	totals, err := CalculateTotals(priced)
	if err != nil {
		return nil, Totals{}, err
	}

	return priced, totals, nil
}

// CreateOrder snapshots pricing, persists the order with its items in
// one transaction, then requests a QR payment code and persists the
// returned provider references. A gateway failure after the order is
// persisted leaves it in AWAITING_PAYMENT with null references; calling
// RequestPaymentCode for that order repairs it.
func (s *OrderService) CreateOrder(ctx context.Context, lines []CartLineInput) (*CreatedOrder, error) {
	priced, totals, err := s.Quote(ctx, lines)
	if err != nil {
		return nil, err
	}

	order := models.Order{
		SubTotal:   totals.SubTotal,
		Tax:        totals.Tax,
		GrandTotal: totals.GrandTotal,
		Status:     models.OrderStatusAwaitingPayment,
	}
	for _, line := range priced {
		order.Items = append(order.Items, models.OrderItem{
			ProductID: line.ProductID,
			Price:     line.UnitPrice,
			Quantity:  line.Quantity,
		})
	}

	if err := s.db.WithContext(ctx).Create(&order).Error; err != nil {
		return nil, err
	}

	qr, err := s.RequestPaymentCode(ctx, order.ID)
	if err != nil {
		s.log.Error("payment request failed, order left awaiting payment",
			zap.String("order_id", order.ID.String()), zap.Error(err))
		return nil, err
	}

	updated, err := s.GetOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	s.log.Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.Int64("grand_total", order.GrandTotal))

	return &CreatedOrder{Order: *updated, QRString: qr}, nil
}

// RequestPaymentCode obtains a QR payment code for an order that does
// not have provider references yet and persists them. Idempotent per
// order: an order that already holds references is returned as-is, and
// a provider-side duplicate is treated as already requested.
func (s *OrderService) RequestPaymentCode(ctx context.Context, orderID uuid.UUID) (string, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
		}
		return "", err
	}

	if order.ExternalTransactionID != nil && order.PaymentMethodID != nil {
		return "", nil
	}

	result, err := s.gateway.CreateQRPayment(ctx, order.ID.String(), order.GrandTotal)
	if err != nil {
		if errors.Is(err, ErrDuplicateRequest) {
			s.log.Warn("payment request already registered with provider",
				zap.String("order_id", order.ID.String()))
			return "", nil
		}
		return "", err
	}

	if err := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"external_transaction_id": result.ProviderRequestID,
			"payment_method_id":       result.PaymentMethodID,
		}).Error; err != nil {
		return "", err
	}

	return result.QRString, nil
}

// CheckPaymentStatus is the poll reconciliation path: it inspects only
// the locally cached paid_at, which the webhook path keeps up to date.
func (s *OrderService) CheckPaymentStatus(ctx context.Context, orderID uuid.UUID) (bool, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).
		Select("paid_at").
		First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
		}
		return false, err
	}

	return order.PaidAt != nil, nil
}

// MarkPaid records a confirmed payment: sets paid_at and advances the
// order to PROCESSING. The update is a compare-and-set on paid_at, so
// racing poll/webhook confirmations apply the transition exactly once;
// repeated confirmations are a no-op returning true.
func (s *OrderService) MarkPaid(ctx context.Context, orderID uuid.UUID) (bool, error) {
	now := time.Now()

	res := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND paid_at IS NULL", orderID).
		Updates(map[string]any{
			"paid_at": now,
			"status":  models.OrderStatusProcessing,
		})
	if res.Error != nil {
		return false, res.Error
	}

	if res.RowsAffected == 0 {
		// Either the order does not exist or another confirmation won
		// the race; distinguish by re-reading.
		var order models.Order
		if err := s.db.WithContext(ctx).First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
			}
			return false, err
		}
		return order.PaidAt != nil, nil
	}

	s.log.Info("payment confirmed", zap.String("order_id", orderID.String()))
	s.notifyPaid(ctx, orderID)

	return true, nil
}

// FinishOrder is the explicit terminal transition PROCESSING -> DONE,
// triggered by staff once the order has been handed over.
func (s *OrderService) FinishOrder(ctx context.Context, orderID uuid.UUID) error {
	res := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, models.OrderStatusProcessing).
		Update("status", models.OrderStatusDone)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		var order models.Order
		if err := s.db.WithContext(ctx).First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
			}
			return err
		}
		return &InvalidStateError{From: string(order.Status), To: string(models.OrderStatusDone)}
	}

	return nil
}

// SimulatePayment triggers the sandbox payment for an order's active
// payment request.
func (s *OrderService) SimulatePayment(ctx context.Context, orderID uuid.UUID) error {
	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
		}
		return err
	}

	var paymentMethodID string
	if order.PaymentMethodID != nil {
		paymentMethodID = *order.PaymentMethodID
	}

	return s.gateway.SimulatePayment(ctx, paymentMethodID, order.GrandTotal)
}

// GetOrder loads a single order with its items.
func (s *OrderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).Preload("Items").
		First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
		}
		return nil, err
	}
	return &order, nil
}

// ListOrders returns orders newest first, optionally filtered by
// status, each with its item count. "all" or an empty filter disables
// filtering.
func (s *OrderService) ListOrders(ctx context.Context, statusFilter string) ([]OrderSummary, error) {
	query := s.db.WithContext(ctx).Model(&models.Order{})

	if statusFilter != "" && statusFilter != "all" {
		status, err := models.ParseOrderStatus(statusFilter)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatusFilter, statusFilter)
		}
		query = query.Where("status = ?", status)
	}

	var orders []models.Order
	if err := query.Order("created_at desc").Find(&orders).Error; err != nil {
		return nil, err
	}

	counts, err := s.itemCounts(ctx, orders)
	if err != nil {
		return nil, err
	}

	summaries := make([]OrderSummary, 0, len(orders))
	for _, order := range orders {
		summaries = append(summaries, OrderSummary{
			ID:         order.ID,
			GrandTotal: order.GrandTotal,
			Status:     order.Status,
			PaidAt:     order.PaidAt,
			ItemCount:  counts[order.ID],
		})
	}

	return summaries, nil
}

func (s *OrderService) itemCounts(ctx context.Context, orders []models.Order) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(orders))
	if len(orders) == 0 {
		return counts, nil
	}

	ids := make([]uuid.UUID, 0, len(orders))
	for _, order := range orders {
		ids = append(ids, order.ID)
	}

	var rows []struct {
		OrderID uuid.UUID
		Count   int64
	}
	if err := s.db.WithContext(ctx).Model(&models.OrderItem{}).
		Select("order_id, count(*) as count").
		Where("order_id IN ?", ids).
		Group("order_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.OrderID] = row.Count
	}
	return counts, nil
}

func (s *OrderService) loadCatalog(ctx context.Context, lines []CartLineInput) (map[uuid.UUID]models.Product, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}

	var products []models.Product
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}

	catalog := make(map[uuid.UUID]models.Product, len(products))
	for _, product := range products {
		catalog[product.ID] = product
	}
	return catalog, nil
}

func (s *OrderService) notifyPaid(ctx context.Context, orderID uuid.UUID) {
	if s.telegram == nil {
		return
	}

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		s.log.Warn("payment notification skipped", zap.Error(err))
		return
	}

	go func() {
		if err := s.telegram.NotifyPaymentReceived(PaymentNotification{
			OrderID:    order.ID.String(),
			GrandTotal: order.GrandTotal,
			ItemCount:  len(order.Items),
		}); err != nil {
			s.log.Warn("telegram notification failed", zap.Error(err))
		}
	}()
}
