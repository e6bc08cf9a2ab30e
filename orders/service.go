// Package orders implements checkout and the order status workflow.
package orders

import (
	"context"
	"math"
	"mime/multipart"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"alphastore/inventory"
	"alphastore/models"
	"alphastore/pricing"
	"alphastore/uploads"
	"alphastore/validation"
)

var (
	ErrEmptyCart      = errors.New("cart is empty")
	ErrNonFiniteTotal = errors.New("order total is not a finite number")
	ErrForbidden      = errors.New("order belongs to another customer")
)

// RecentOrderWarning is attached to status changes made within a day of checkout.
const RecentOrderWarning = "Order was placed less than 24 hours ago."

const recentWindow = 24 * time.Hour

type Repository interface {
	OrderCounter
	Insert(ctx context.Context, o *models.Order) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	List(ctx context.Context, status models.OrderStatus) ([]models.Order, error)
	ListByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]models.Order, error)
	// SetStatus writes to only if the order is still in from.
	SetStatus(ctx context.Context, id primitive.ObjectID, from, to models.OrderStatus) (*models.Order, error)
	AddAttachment(ctx context.Context, id primitive.ObjectID, path string) (*models.Order, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	Stats(ctx context.Context) ([]models.OrderStat, error)
}

type Catalog interface {
	Product(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	PreBuild(ctx context.Context, id primitive.ObjectID) (*models.PreBuild, error)
}

// Carts is the server-side cart used when a checkout carries no items.
type Carts interface {
	Lines(ctx context.Context, userID primitive.ObjectID) ([]models.CartLine, error)
	Clear(ctx context.Context, userID primitive.ObjectID) error
}

type TaxRecorder interface {
	Create(ctx context.Context, t *models.Tax) error
}

type StockAdjuster interface {
	Adjust(ctx context.Context, items []models.CartLine, factor int) (map[string]int, error)
}

// AddressBook keeps a customer's delivery address for the next checkout.
type AddressBook interface {
	SaveAddress(ctx context.Context, userID primitive.ObjectID, address string) error
}

type Files interface {
	Save(sub string, fh *multipart.FileHeader, allowed []string) (string, error)
	Remove(publicPath string) error
}

// AttachmentTypes are the file extensions accepted for order attachments.
var AttachmentTypes = append([]string{".pdf"}, uploads.Images...)

type Deps struct {
	Repo      Repository
	Catalog   Catalog
	Carts     Carts
	Taxes     TaxRecorder
	Stock     StockAdjuster
	Files     Files
	Addresses AddressBook
	Calc      pricing.Calculator
	Logger    *zap.Logger
}

type Service struct {
	repo      Repository
	catalog   Catalog
	carts     Carts
	taxes     TaxRecorder
	stock     StockAdjuster
	files     Files
	addresses AddressBook
	calc      pricing.Calculator
	lg        *zap.Logger
	now       func() time.Time
}

func NewService(d Deps) *Service {
	lg := d.Logger
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Service{
		repo:      d.Repo,
		catalog:   d.Catalog,
		carts:     d.Carts,
		taxes:     d.Taxes,
		stock:     d.Stock,
		files:     d.Files,
		addresses: d.Addresses,
		calc:      d.Calc,
		lg:        lg,
		now:       time.Now,
	}
}

type PlaceRequest struct {
	CustomerID    primitive.ObjectID
	Name          string
	PhoneNo       string
	Email         string
	PaymentMethod string
	COD           *models.CODDetails
	Pickup        *models.PickupDetails
	SaveAddress   bool
	Items         []models.CartLine
	// ClientTotal is the total the client computed, if it sent one. It is
	// only checked for sanity; the stored totals are recomputed.
	ClientTotal *float64
}

func (r *PlaceRequest) validate() error {
	switch {
	case strings.TrimSpace(r.Name) == "":
		return validation.New("name is required")
	case strings.TrimSpace(r.PhoneNo) == "":
		return validation.New("phone number is required")
	case strings.TrimSpace(r.Email) == "":
		return validation.New("email is required")
	}

	switch r.PaymentMethod {
	case models.PaymentCOD:
		if r.COD == nil || strings.TrimSpace(r.COD.Address) == "" || r.COD.DeliveryDate.IsZero() || r.COD.DeliveryTime == "" {
			return validation.New("address, delivery date and delivery time are required for COD")
		}
		r.Pickup = nil
	case models.PaymentPickup:
		if r.Pickup == nil || r.Pickup.PickupDate.IsZero() || r.Pickup.PickupTime == "" {
			return validation.New("pickup date and pickup time are required for Pickup")
		}
		r.COD = nil
	default:
		return validation.New("payment method must be COD or Pickup")
	}

	if r.ClientTotal != nil && !finite(*r.ClientTotal) {
		return ErrNonFiniteTotal
	}
	return nil
}

// Place validates and stores a new order. Tax recording, stock deduction,
// clearing the cart and saving the address happen after the order is
// stored; their failures are logged and do not fail the checkout.
func (s *Service) Place(ctx context.Context, req PlaceRequest) (*models.Order, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	items := req.Items
	fromCart := false
	if len(items) == 0 && s.carts != nil {
		lines, err := s.carts.Lines(ctx, req.CustomerID)
		if err != nil {
			return nil, errors.Wrap(err, "load cart")
		}
		items, fromCart = lines, true
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	items, err := s.reprice(ctx, items)
	if err != nil {
		return nil, err
	}

	sum := s.calc.CalculateCart(items)
	now := s.now()
	o := &models.Order{
		ID:            primitive.NewObjectID(),
		CustomerID:    req.CustomerID,
		Name:          strings.TrimSpace(req.Name),
		PhoneNo:       strings.TrimSpace(req.PhoneNo),
		Email:         strings.TrimSpace(req.Email),
		PaymentMethod: req.PaymentMethod,
		CODDetails:    req.COD,
		PickupDetails: req.Pickup,
		SaveAddress:   req.SaveAddress,
		Items:         items,
		Subtotal:      pricing.Float(sum.Subtotal),
		Tax:           pricing.Float(sum.Tax),
		TotalAmount:   pricing.Float(sum.GrandTotal),
		Status:        models.OrderPending,
		Attachments:   []string{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if !finite(o.TotalAmount) {
		return nil, ErrNonFiniteTotal
	}

	reasons, err := DetectFraud(ctx, s.repo, o, now)
	if err != nil {
		s.lg.Warn("Fraud history check failed", zap.Error(err))
	}
	if len(reasons) > 0 {
		o.IsFraudulent = true
		o.FraudReason = strings.Join(reasons, ", ")
		s.lg.Warn("Order flagged as potentially fraudulent",
			zap.String("order_id", o.ID.Hex()),
			zap.String("customer_id", o.CustomerID.Hex()),
			zap.String("reason", o.FraudReason),
		)
	}

	if err := s.repo.Insert(ctx, o); err != nil {
		return nil, errors.Wrap(err, "insert order")
	}

	s.recordTax(ctx, o)
	s.adjust(ctx, o, inventory.Deduct)
	if fromCart {
		if err := s.carts.Clear(ctx, o.CustomerID); err != nil {
			s.lg.Warn("Clear cart failed", zap.String("customer_id", o.CustomerID.Hex()), zap.Error(err))
		}
	}
	if o.SaveAddress && o.CODDetails != nil && s.addresses != nil {
		if err := s.addresses.SaveAddress(ctx, o.CustomerID, o.CODDetails.Address); err != nil {
			s.lg.Warn("Save address failed", zap.String("customer_id", o.CustomerID.Hex()), zap.Error(err))
		}
	}

	return o, nil
}

// reprice refreshes names and prices of every line from the catalog so the
// stored totals never trust client supplied prices.
func (s *Service) reprice(ctx context.Context, items []models.CartLine) ([]models.CartLine, error) {
	out := make([]models.CartLine, 0, len(items))
	for _, it := range items {
		if it.Quantity < 0 {
			return nil, validation.New("quantity must be positive")
		}
		if it.Quantity == 0 {
			it.Quantity = 1
		}
		if it.Specs == nil {
			it.Specs = []models.Spec{}
		}

		switch it.ItemType {
		case models.ItemTypeProduct:
			p, err := s.catalog.Product(ctx, it.ItemID)
			if err != nil {
				return nil, errors.Wrapf(err, "product %s", it.ItemID.Hex())
			}
			it.Name, it.UnitPrice, it.DiscountPrice = p.Name, p.Price, p.DiscountPrice
		case models.ItemTypePreBuild:
			pb, err := s.catalog.PreBuild(ctx, it.ItemID)
			if err != nil {
				return nil, errors.Wrapf(err, "prebuild %s", it.ItemID.Hex())
			}
			it.Name, it.UnitPrice, it.DiscountPrice = pb.Name, pb.Price, nil
		default:
			return nil, validation.New("unknown item type " + it.ItemType)
		}

		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		out = append(out, it)
	}
	return out, nil
}

func (s *Service) recordTax(ctx context.Context, o *models.Order) {
	if s.taxes == nil {
		return
	}
	t := &models.Tax{
		ID:             primitive.NewObjectID(),
		SuccessOrderID: o.ID.Hex(),
		TotalAmount:    o.TotalAmount,
		TaxAmount:      o.Tax,
		TaxRate:        s.calc.Rate.InexactFloat64(),
		CreatedAt:      o.CreatedAt,
	}
	if err := s.taxes.Create(ctx, t); err != nil {
		s.lg.Warn("Record tax failed", zap.String("order_id", o.ID.Hex()), zap.Error(err))
	}
}

func (s *Service) adjust(ctx context.Context, o *models.Order, factor int) {
	if s.stock == nil {
		return
	}
	if _, err := s.stock.Adjust(ctx, o.Items, factor); err != nil {
		s.lg.Warn("Stock adjustment incomplete",
			zap.String("order_id", o.ID.Hex()),
			zap.Int("factor", factor),
			zap.Error(err),
		)
	}
}

type ChangeStatusRequest struct {
	Status       models.OrderStatus
	ConfirmFraud bool
}

// ChangeStatus moves an order along the workflow. Warnings do not block the
// change. Moving to Cancelled puts the items back in stock.
func (s *Service) ChangeStatus(ctx context.Context, id primitive.ObjectID, req ChangeStatusRequest) (*models.Order, []string, error) {
	if !ValidStatus(req.Status) {
		return nil, nil, validation.New("invalid status value")
	}

	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !CanTransition(o.Status, req.Status) {
		return nil, nil, &TransitionError{From: o.Status, To: req.Status}
	}
	if o.IsFraudulent && !req.ConfirmFraud {
		return nil, nil, &FraudConfirmationError{Reason: o.FraudReason}
	}

	var warnings []string
	if s.now().Sub(o.CreatedAt) < recentWindow {
		warnings = append(warnings, RecentOrderWarning)
	}

	updated, err := s.setStatus(ctx, id, o.Status, req.Status)
	if err != nil {
		return nil, nil, err
	}
	if req.Status == models.OrderCancelled {
		s.adjust(ctx, updated, inventory.Restock)
	}

	s.lg.Info("Order status changed",
		zap.String("order_id", id.Hex()),
		zap.String("from", string(o.Status)),
		zap.String("to", string(req.Status)),
	)
	return updated, warnings, nil
}

// Cancel lets a customer cancel their own pending order.
func (s *Service) Cancel(ctx context.Context, customerID, id primitive.ObjectID) (*models.Order, error) {
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != customerID {
		return nil, ErrForbidden
	}
	if !CanTransition(o.Status, models.OrderCancelled) {
		return nil, &TransitionError{From: o.Status, To: models.OrderCancelled}
	}

	updated, err := s.setStatus(ctx, id, o.Status, models.OrderCancelled)
	if err != nil {
		return nil, err
	}
	s.adjust(ctx, updated, inventory.Restock)
	return updated, nil
}

// setStatus applies from -> to. If another request changed the order after
// it was read, the write matches nothing and a TransitionError from the
// current status is returned, so side effects run once per real change.
func (s *Service) setStatus(ctx context.Context, id primitive.ObjectID, from, to models.OrderStatus) (*models.Order, error) {
	updated, err := s.repo.SetStatus(ctx, id, from, to)
	if err == nil {
		return updated, nil
	}
	cur, getErr := s.repo.Get(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	if cur.Status != from {
		return nil, &TransitionError{From: cur.Status, To: to}
	}
	return nil, errors.Wrap(err, "set status")
}

func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	return s.repo.Get(ctx, id)
}

// List returns every order, or only those in status when it is set.
func (s *Service) List(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	if status != "" && !ValidStatus(status) {
		return nil, validation.New("invalid status value")
	}
	return s.repo.List(ctx, status)
}

func (s *Service) ListByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]models.Order, error) {
	return s.repo.ListByCustomer(ctx, customerID)
}

// Delete removes the order and then its uploaded files. A file that cannot
// be removed is logged and skipped.
func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	o, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.files == nil {
		return o, nil
	}
	for _, p := range o.Attachments {
		if err := s.files.Remove(p); err != nil {
			s.lg.Warn("Remove order attachment failed",
				zap.String("order_id", id.Hex()),
				zap.String("path", p),
				zap.Error(err),
			)
		}
	}
	return o, nil
}

// AttachFile stores an uploaded file, such as a payment slip, on the order.
func (s *Service) AttachFile(ctx context.Context, id primitive.ObjectID, fh *multipart.FileHeader) (*models.Order, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	p, err := s.files.Save("orders/"+id.Hex(), fh, AttachmentTypes)
	if err != nil {
		return nil, err
	}
	o, err := s.repo.AddAttachment(ctx, id, p)
	if err != nil {
		if rmErr := s.files.Remove(p); rmErr != nil {
			s.lg.Warn("Remove orphaned attachment failed", zap.String("path", p), zap.Error(rmErr))
		}
		return nil, errors.Wrap(err, "add attachment")
	}
	return o, nil
}

func (s *Service) Stats(ctx context.Context) ([]models.OrderStat, error) {
	return s.repo.Stats(ctx)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
