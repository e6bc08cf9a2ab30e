// Package cart keeps each user's server-side cart. Stock is checked when a
// line is added or incremented but nothing is reserved.
package cart

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"alphastore/models"
	"alphastore/pricing"
)

var (
	ErrLineNotFound = errors.New("cart line not found")
	ErrItemNotFound = errors.New("item not found")
	ErrItemType     = errors.New("unknown item type")
	ErrUpdateType   = errors.New("update type must be increment or decrement")
)

const (
	Increment = "increment"
	Decrement = "decrement"
)

// InsufficientStockError is returned when a line would exceed the displayed stock.
type InsufficientStockError struct {
	Name      string
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for %s, available: %d", e.Name, e.Available)
}

type Repository interface {
	Get(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
}

// Catalog resolves the items a line may point at. Lookups of unknown ids
// return an error wrapping ErrItemNotFound.
type Catalog interface {
	Product(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	PreBuild(ctx context.Context, id primitive.ObjectID) (*models.PreBuild, error)
}

type AddLine struct {
	ItemID   primitive.ObjectID
	ItemType string
	Specs    []models.Spec
}

// View is a cart together with its priced summary.
type View struct {
	Lines      []models.CartLine `json:"lines"`
	Items      int               `json:"items"`
	Subtotal   float64           `json:"subtotal"`
	Tax        float64           `json:"tax"`
	GrandTotal float64           `json:"grandTotal"`
}

type Service struct {
	repo    Repository
	catalog Catalog
	calc    pricing.Calculator
}

func NewService(repo Repository, catalog Catalog, calc pricing.Calculator) *Service {
	return &Service{repo: repo, catalog: catalog, calc: calc}
}

// Add appends a new line with quantity one and a price snapshot. Adding the
// same item twice yields two lines.
func (s *Service) Add(ctx context.Context, userID primitive.ObjectID, in AddLine) (*View, error) {
	line := models.CartLine{
		ID:       uuid.NewString(),
		ItemID:   in.ItemID,
		ItemType: in.ItemType,
		Quantity: 1,
		Specs:    in.Specs,
	}

	switch in.ItemType {
	case models.ItemTypeProduct:
		p, err := s.catalog.Product(ctx, in.ItemID)
		if err != nil {
			return nil, errors.Wrap(err, "product")
		}
		if p.Stock < 1 {
			return nil, &InsufficientStockError{Name: p.Name, Available: p.Stock}
		}
		line.Name = p.Name
		line.UnitPrice = p.Price
		line.DiscountPrice = p.DiscountPrice
		line.Image = p.Image
		if len(line.Specs) == 0 {
			line.Specs = p.Specs
		}
	case models.ItemTypePreBuild:
		pb, err := s.catalog.PreBuild(ctx, in.ItemID)
		if err != nil {
			return nil, errors.Wrap(err, "prebuild")
		}
		line.Name = pb.Name
		line.UnitPrice = pb.Price
		line.Image = pb.Image
		if len(line.Specs) == 0 {
			line.Specs = pb.Components
		}
	default:
		return nil, errors.Wrapf(ErrItemType, "%q", in.ItemType)
	}
	if line.Specs == nil {
		line.Specs = []models.Spec{}
	}

	c, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.Lines = append(c.Lines, line)
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	return s.view(c), nil
}

// UpdateQuantity steps a line up or down by one. Decrement stops at one;
// increment is refused once the quantity would pass the displayed stock.
func (s *Service) UpdateQuantity(ctx context.Context, userID primitive.ObjectID, lineID, typ string) (*View, error) {
	if typ != Increment && typ != Decrement {
		return nil, ErrUpdateType
	}

	c, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	idx := indexOf(c.Lines, lineID)
	if idx < 0 {
		return nil, ErrLineNotFound
	}
	l := &c.Lines[idx]

	switch typ {
	case Increment:
		if l.ItemType == models.ItemTypeProduct {
			p, err := s.catalog.Product(ctx, l.ItemID)
			if err != nil {
				return nil, errors.Wrap(err, "product")
			}
			if l.Quantity+1 > p.Stock {
				return nil, &InsufficientStockError{Name: p.Name, Available: p.Stock}
			}
		}
		l.Quantity++
	case Decrement:
		if l.Quantity > 1 {
			l.Quantity--
		}
	}

	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	return s.view(c), nil
}

func (s *Service) Remove(ctx context.Context, userID primitive.ObjectID, lineID string) (*View, error) {
	c, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	idx := indexOf(c.Lines, lineID)
	if idx < 0 {
		return nil, ErrLineNotFound
	}
	c.Lines = append(c.Lines[:idx], c.Lines[idx+1:]...)
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	return s.view(c), nil
}

func (s *Service) Clear(ctx context.Context, userID primitive.ObjectID) error {
	return s.repo.Save(ctx, &models.Cart{UserID: userID, Lines: []models.CartLine{}})
}

func (s *Service) View(ctx context.Context, userID primitive.ObjectID) (*View, error) {
	c, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.view(c), nil
}

// Lines returns a copy of the user's current lines.
func (s *Service) Lines(ctx context.Context, userID primitive.ObjectID) ([]models.CartLine, error) {
	c, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return append([]models.CartLine(nil), c.Lines...), nil
}

func (s *Service) view(c *models.Cart) *View {
	sum := s.calc.CalculateCart(c.Lines)
	lines := c.Lines
	if lines == nil {
		lines = []models.CartLine{}
	}
	return &View{
		Lines:      lines,
		Items:      sum.Items,
		Subtotal:   pricing.Float(sum.Subtotal),
		Tax:        pricing.Float(sum.Tax),
		GrandTotal: pricing.Float(sum.GrandTotal),
	}
}

func indexOf(lines []models.CartLine, id string) int {
	for i := range lines {
		if lines[i].ID == id {
			return i
		}
	}
	return -1
}
