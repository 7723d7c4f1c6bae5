package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/arcacommerce/arca-backend/internal/commissions"
	"github.com/arcacommerce/arca-backend/internal/points"
	"github.com/arcacommerce/arca-backend/internal/products"
	"github.com/arcacommerce/arca-backend/internal/users"
	"github.com/arcacommerce/arca-backend/pkg/auth"
	"github.com/arcacommerce/arca-backend/pkg/db/models"
	"github.com/arcacommerce/arca-backend/pkg/enums"
	pkgerrors "github.com/arcacommerce/arca-backend/pkg/errors"
	"github.com/arcacommerce/arca-backend/pkg/logger"
	"github.com/arcacommerce/arca-backend/pkg/metrics"
	"github.com/arcacommerce/arca-backend/pkg/money"
	"github.com/arcacommerce/arca-backend/pkg/outbox"
	"github.com/arcacommerce/arca-backend/pkg/outbox/payloads"
	"github.com/arcacommerce/arca-backend/pkg/pagination"
)

// Service owns order state transitions and the stock, points and commission side effects
// that commit with them.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderDTO, error)
	MarkPaid(ctx context.Context, orderID uuid.UUID, confirmation PaymentConfirmation) (*OrderDTO, error)
	Cancel(ctx context.Context, actor auth.Actor, orderID uuid.UUID) (*OrderDTO, error)
	AdvanceFulfillment(ctx context.Context, actor auth.Actor, orderID uuid.UUID, target enums.OrderStatus) (*OrderDTO, error)
	Get(ctx context.Context, actor auth.Actor, orderID uuid.UUID) (*OrderDTO, error)
	ListForBuyer(ctx context.Context, actor auth.Actor, buyerID uuid.UUID, params pagination.Params) (pagination.Page[OrderDTO], error)
}

// Deps groups the collaborators of the order service.
type Deps struct {
	Repo        Repository
	Products    *products.Repository
	Users       *users.Repository
	Ledger      points.Ledger
	Policy      points.Policy
	Commissions commissions.Engine
	Voider      CommissionVoider
	Tx          txRunner
	Outbox      outboxPublisher
	Metrics     *metrics.SettlementMetrics
	Logger      *logger.Logger
}

type service struct {
	repo        Repository
	products    *products.Repository
	users       *users.Repository
	ledger      points.Ledger
	policy      points.Policy
	commissions commissions.Engine
	voider      CommissionVoider
	tx          txRunner
	outbox      outboxPublisher
	metrics     *metrics.SettlementMetrics
	logg        *logger.Logger
	now         func() time.Time
}

// NewService builds an order service with the required dependencies.
func NewService(deps Deps) (Service, error) {
	switch {
	case deps.Repo == nil:
		return nil, fmt.Errorf("orders repository required")
	case deps.Products == nil:
		return nil, fmt.Errorf("products repository required")
	case deps.Users == nil:
		return nil, fmt.Errorf("users repository required")
	case deps.Ledger == nil:
		return nil, fmt.Errorf("points ledger required")
	case deps.Commissions == nil:
		return nil, fmt.Errorf("commission engine required")
	case deps.Voider == nil:
		return nil, fmt.Errorf("commission voider required")
	case deps.Tx == nil:
		return nil, fmt.Errorf("transaction runner required")
	case deps.Outbox == nil:
		return nil, fmt.Errorf("outbox publisher required")
	}
	logg := deps.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:        deps.Repo,
		products:    deps.Products,
		users:       deps.Users,
		ledger:      deps.Ledger,
		policy:      deps.Policy,
		commissions: deps.Commissions,
		voider:      deps.Voider,
		tx:          deps.Tx,
		outbox:      deps.Outbox,
		metrics:     deps.Metrics,
		logg:        logg,
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderDTO, error) {
	if input.BuyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "buyer identity missing")
	}
	if input.PointsToRedeem < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "points_to_redeem must not be negative")
	}
	lines, err := mergeLines(input.Items)
	if err != nil {
		return nil, err
	}

	var order *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := s.users.WithTx(tx)
		productRepo := s.products.WithTx(tx)

		buyer, err := userRepo.FindByID(ctx, input.BuyerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "buyer not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load buyer")
		}
		consultantID, err := s.resolveAttribution(ctx, userRepo, buyer, input.ConsultantID)
		if err != nil {
			return err
		}

		items, total, err := s.reserveStock(ctx, productRepo, lines)
		if err != nil {
			return err
		}

		redeem := input.PointsToRedeem
		if maxRedeem := s.policy.MaxRedeemable(buyer.PointsBalance, total); redeem > maxRedeem {
			redeem = maxRedeem
		}
		discount := s.policy.Discount(redeem)
		payable := money.FloorZero(total.Sub(discount))
		earned := s.policy.Earned(buyer.Level, payable)

		order = &models.Order{
			UserID:         buyer.ID,
			Status:         enums.OrderStatusPending,
			TotalAmount:    total,
			DiscountAmount: discount,
			PointsUsed:     redeem,
			PointsEarned:   earned,
			ConsultantID:   consultantID,
			RefSource:      input.RefSource,
			Items:          items,
		}
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		if err := s.ledger.Redeem(ctx, tx, buyer.ID, redeem, "order redemption", &order.ID); err != nil {
			return err
		}
		if err := s.ledger.Accrue(ctx, tx, buyer.ID, earned, "order purchase", &order.ID); err != nil {
			return err
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: buyer.ID, Role: buyer.Role},
			Data:          orderCreatedPayload(order),
		})
	})
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeStockConflict) {
			s.metrics.StockConflict()
		}
		return nil, asDependency(err, "create order")
	}

	s.logg.Info(s.logg.WithOrderID(ctx, order.ID.String()), "order created")
	return FromModel(order), nil
}

func quantityTooLarge(productID uuid.UUID, quantity int) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "quantity exceeds the per-product limit").
		WithDetails(map[string]any{"product_id": productID, "quantity": quantity, "max": MaxLineQuantity})
}

// mergeLines validates quantities and folds duplicate products into one line, keeping first-seen order.
func mergeLines(input []LineInput) ([]LineInput, error) {
	if len(input) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	index := make(map[uuid.UUID]int, len(input))
	lines := make([]LineInput, 0, len(input))
	for _, line := range input {
		if line.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_id is required")
		}
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive").
				WithDetails(map[string]any{"product_id": line.ProductID, "quantity": line.Quantity})
		}
		if line.Quantity > MaxLineQuantity {
			return nil, quantityTooLarge(line.ProductID, line.Quantity)
		}
		if i, ok := index[line.ProductID]; ok {
			if line.Quantity > MaxLineQuantity-lines[i].Quantity {
				return nil, quantityTooLarge(line.ProductID, lines[i].Quantity+line.Quantity)
			}
			lines[i].Quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(lines)
		lines = append(lines, line)
	}
	return lines, nil
}

// resolveAttribution validates an explicit consultant or falls back to the buyer's default.
func (s *service) resolveAttribution(ctx context.Context, repo *users.Repository, buyer *models.User, explicit *uuid.UUID) (*uuid.UUID, error) {
	if explicit == nil {
		return buyer.DefaultConsultantID, nil
	}
	consultant, err := repo.FindByID(ctx, *explicit)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "consultant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load consultant")
	}
	if !consultant.Role.CanEarnCommission() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "attributed user is not a consultant")
	}
	id := consultant.ID
	return &id, nil
}

// reserveStock checks every line before touching stock, then decrements with a guarded update.
// A line that loses a race to a concurrent order surfaces as the same conflict.
func (s *service) reserveStock(ctx context.Context, repo *products.Repository, lines []LineInput) ([]models.OrderItem, decimal.Decimal, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	catalog, err := repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}

	var shortfalls []Shortfall
	for _, line := range lines {
		product, ok := catalog[line.ProductID]
		if !ok || !product.IsActive {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"product_id": line.ProductID})
		}
		if product.Stock < line.Quantity {
			shortfalls = append(shortfalls, Shortfall{ProductID: line.ProductID, Available: product.Stock, Requested: line.Quantity})
		}
	}
	if len(shortfalls) > 0 {
		return nil, decimal.Zero, stockConflict(shortfalls)
	}

	items := make([]models.OrderItem, 0, len(lines))
	total := decimal.Zero
	for _, line := range lines {
		product := catalog[line.ProductID]
		ok, err := repo.DecrementStock(ctx, line.ProductID, line.Quantity)
		if err != nil {
			return nil, decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
		}
		if !ok {
			available := 0
			if current, err := repo.FindByID(ctx, line.ProductID); err == nil {
				available = current.Stock
			}
			shortfalls = append(shortfalls, Shortfall{ProductID: line.ProductID, Available: available, Requested: line.Quantity})
			continue
		}
		items = append(items, models.OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: product.Price,
		})
		total = total.Add(money.LineTotal(product.Price, line.Quantity))
	}
	if len(shortfalls) > 0 {
		return nil, decimal.Zero, stockConflict(shortfalls)
	}
	return items, total, nil
}

func stockConflict(shortfalls []Shortfall) error {
	return pkgerrors.New(pkgerrors.CodeStockConflict, "insufficient stock").
		WithDetails(map[string]any{"items": shortfalls})
}

// MarkPaid is idempotent: an order already past payment is returned unchanged.
func (s *service) MarkPaid(ctx context.Context, orderID uuid.UUID, confirmation PaymentConfirmation) (*OrderDTO, error) {
	var (
		order   *models.Order
		changed bool
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		order, err = s.loadForUpdate(ctx, repo, orderID)
		if err != nil {
			return err
		}
		if order.Status.IsSettled() {
			return nil
		}
		if order.Status != enums.OrderStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order cannot be paid in its current state").
				WithDetails(map[string]any{"status": order.Status})
		}
		payable := order.PayableAmount()
		if !confirmation.Amount.Equal(payable) {
			return pkgerrors.New(pkgerrors.CodeAmountMismatch, "payment amount does not match payable amount").
				WithDetails(map[string]any{"expected": payable.StringFixed(money.Places), "received": confirmation.Amount.String()})
		}

		paidAt := confirmation.ConfirmedAt
		if paidAt.IsZero() {
			paidAt = s.now()
		}
		paidAt = paidAt.UTC()
		method := confirmation.Method
		reference := confirmation.Reference
		ok, err := repo.TransitionStatus(ctx, order.ID, enums.OrderStatusPending, enums.OrderStatusPaid, map[string]any{
			"paid_at":           paidAt,
			"payment_method":    method,
			"payment_reference": reference,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order paid")
		}
		if !ok {
			order, err = s.loadForUpdate(ctx, repo, orderID)
			return err
		}
		order.Status = enums.OrderStatusPaid
		order.PaidAt = &paidAt
		order.PaymentMethod = &method
		order.PaymentReference = &reference
		changed = true

		created, err := s.commissions.ComputeAndPersist(ctx, tx, order)
		if err != nil {
			return err
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPaid,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Data:          orderPaidPayload(order, created),
		})
	})
	if err != nil {
		return nil, asDependency(err, "mark order paid")
	}
	if changed {
		s.logg.Info(s.logg.WithOrderID(ctx, order.ID.String()), "order paid")
	}
	return FromModel(order), nil
}

// Cancel restores stock and voids commissions. Points entries are left as posted.
func (s *service) Cancel(ctx context.Context, actor auth.Actor, orderID uuid.UUID) (*OrderDTO, error) {
	if !actor.IsBackOffice() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff or admin required")
	}
	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		order, err = s.loadForUpdate(ctx, repo, orderID)
		if err != nil {
			return err
		}
		if order.Status == enums.OrderStatusCanceled {
			return nil
		}
		previous := order.Status

		productRepo := s.products.WithTx(tx)
		restocked := 0
		for _, item := range order.Items {
			if err := productRepo.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore stock")
			}
			restocked += item.Quantity
		}
		voided, err := s.voider.VoidOrderCommissions(ctx, tx, order.ID)
		if err != nil {
			return err
		}

		canceledAt := s.now()
		ok, err := repo.TransitionStatus(ctx, order.ID, previous, enums.OrderStatusCanceled, map[string]any{"canceled_at": canceledAt})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order changed concurrently")
		}
		order.Status = enums.OrderStatusCanceled
		order.CanceledAt = &canceledAt

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCanceled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: actor.UserID, Role: actor.Role},
			Data: payloads.OrderCanceledEvent{
				OrderID:           order.ID,
				PreviousStatus:    previous,
				RestockedUnits:    restocked,
				VoidedCommissions: int(voided),
				CanceledAt:        canceledAt,
			},
		})
	})
	if err != nil {
		return nil, asDependency(err, "cancel order")
	}
	return FromModel(order), nil
}

func (s *service) AdvanceFulfillment(ctx context.Context, actor auth.Actor, orderID uuid.UUID, target enums.OrderStatus) (*OrderDTO, error) {
	if !actor.IsBackOffice() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff or admin required")
	}
	if target != enums.OrderStatusShipped && target != enums.OrderStatusCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "target must be shipped or completed")
	}
	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		order, err = s.loadForUpdate(ctx, repo, orderID)
		if err != nil {
			return err
		}
		if order.Status == target {
			return nil
		}
		if !order.Status.CanAdvanceTo(target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "transition not allowed").
				WithDetails(map[string]any{"from": order.Status, "to": target})
		}
		from := order.Status
		ok, err := repo.TransitionStatus(ctx, order.ID, from, target, nil)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "advance order")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order changed concurrently")
		}
		order.Status = target

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: actor.UserID, Role: actor.Role},
			Data:          payloads.OrderStatusChangedEvent{OrderID: order.ID, From: from, To: target},
		})
	})
	if err != nil {
		return nil, asDependency(err, "advance order")
	}
	return FromModel(order), nil
}

func (s *service) Get(ctx context.Context, actor auth.Actor, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if !actor.CanAccess(order.UserID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot view another user's order")
	}
	return FromModel(order), nil
}

func (s *service) ListForBuyer(ctx context.Context, actor auth.Actor, buyerID uuid.UUID, params pagination.Params) (pagination.Page[OrderDTO], error) {
	if !actor.CanAccess(buyerID) {
		return pagination.Page[OrderDTO]{}, pkgerrors.New(pkgerrors.CodeForbidden, "cannot view another user's orders")
	}
	rows, err := s.repo.ListForBuyer(ctx, buyerID, params)
	if err != nil {
		if errors.Is(err, pagination.ErrInvalidCursor) {
			return pagination.Page[OrderDTO]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		return pagination.Page[OrderDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return pagination.Build(out, params, cursorOf), nil
}

func (s *service) loadForUpdate(ctx context.Context, repo Repository, orderID uuid.UUID) (*models.Order, error) {
	order, err := repo.FindByIDForUpdate(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func orderCreatedPayload(order *models.Order) payloads.OrderCreatedEvent {
	lines := make([]payloads.OrderLine, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, payloads.OrderLine{ProductID: item.ProductID, Quantity: item.Quantity, UnitPrice: item.UnitPrice})
	}
	return payloads.OrderCreatedEvent{
		OrderID:        order.ID,
		UserID:         order.UserID,
		ConsultantID:   order.ConsultantID,
		TotalAmount:    order.TotalAmount,
		DiscountAmount: order.DiscountAmount,
		PointsUsed:     order.PointsUsed,
		Items:          lines,
	}
}

func orderPaidPayload(order *models.Order, created []models.CommissionRecord) payloads.OrderPaidEvent {
	lines := make([]payloads.CommissionLine, 0, len(created))
	for _, rec := range created {
		lines = append(lines, payloads.CommissionLine{
			BeneficiaryID: rec.BeneficiaryID,
			Type:          rec.Type,
			Status:        rec.Status,
			Amount:        rec.Amount,
		})
	}
	return payloads.OrderPaidEvent{
		OrderID:          order.ID,
		UserID:           order.UserID,
		PayableAmount:    order.PayableAmount(),
		PointsEarned:     order.PointsEarned,
		PaymentMethod:    order.PaymentMethod,
		PaymentReference: order.PaymentReference,
		PaidAt:           *order.PaidAt,
		Commissions:      lines,
	}
}

func asDependency(err error, msg string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}
