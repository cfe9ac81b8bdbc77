package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/armory-market/armory-backend/pkg/db/models"
	pkgerrors "github.com/armory-market/armory-backend/pkg/errors"
	pkgredis "github.com/armory-market/armory-backend/pkg/redis"
)

const cartTTL = 30 * 24 * time.Hour

// Line is one product entry in a stored cart.
type Line struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// Cart is the redis document for one user.
type Cart struct {
	Items     []Line    `json:"items"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HydratedLine joins a stored line with its live listing.
type HydratedLine struct {
	Product  models.Product `json:"product"`
	Quantity int            `json:"quantity"`
	Subtotal int            `json:"subtotal"`
}

// HydratedCart is the response shape with catalog details attached.
type HydratedCart struct {
	Items      []HydratedLine `json:"items"`
	TotalUnits int            `json:"total_units"`
	UpdatedAt  *time.Time     `json:"updated_at,omitempty"`
}

type cartStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartKey(userID string) string
}

type catalogReader interface {
	FindByID(ctx context.Context, id string) (*models.Product, error)
}

// Service stores carts in redis and hydrates them against the catalog.
type Service interface {
	Get(ctx context.Context, userID string) (*HydratedCart, error)
	Replace(ctx context.Context, userID string, lines []Line) (*HydratedCart, error)
	Clear(ctx context.Context, userID string) error
}

type service struct {
	store   cartStore
	catalog catalogReader
	now     func() time.Time
}

// ServiceParams bundles cart service dependencies.
type ServiceParams struct {
	Store   cartStore
	Catalog catalogReader
	Now     func() time.Time
}

// NewService constructs a cart service.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("cart store is required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog reader is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{store: params.Store, catalog: params.Catalog, now: now}, nil
}

func (s *service) Get(ctx context.Context, userID string) (*HydratedCart, error) {
	stored, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, stored)
}

func (s *service) Replace(ctx context.Context, userID string, lines []Line) (*HydratedCart, error) {
	merged := mergeLines(lines)
	for _, line := range merged {
		if _, err := s.catalog.FindByID(ctx, line.ProductID); err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown product %q", line.ProductID))
		}
	}

	doc := Cart{Items: merged, UpdatedAt: s.now().UTC()}
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart")
	}
	if err := s.store.Set(ctx, s.store.CartKey(userID), string(payload), cartTTL); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store cart")
	}
	return s.hydrate(ctx, &doc)
}

func (s *service) Clear(ctx context.Context, userID string) error {
	if err := s.store.Del(ctx, s.store.CartKey(userID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func (s *service) load(ctx context.Context, userID string) (*Cart, error) {
	raw, err := s.store.Get(ctx, s.store.CartKey(userID))
	if err != nil {
		if pkgredis.IsNil(err) {
			return &Cart{}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if strings.TrimSpace(raw) == "" {
		return &Cart{}, nil
	}

	var doc Cart
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode cart")
	}
	return &doc, nil
}

func (s *service) hydrate(ctx context.Context, doc *Cart) (*HydratedCart, error) {
	out := &HydratedCart{Items: []HydratedLine{}}
	if doc == nil {
		return out, nil
	}
	if !doc.UpdatedAt.IsZero() {
		at := doc.UpdatedAt
		out.UpdatedAt = &at
	}

	for _, line := range doc.Items {
		product, err := s.catalog.FindByID(ctx, line.ProductID)
		if err != nil {
			// Listings removed from the catalog silently drop out of the cart.
			continue
		}
		subtotal := product.PriceUnits * line.Quantity
		out.Items = append(out.Items, HydratedLine{
			Product:  *product,
			Quantity: line.Quantity,
			Subtotal: subtotal,
		})
		out.TotalUnits += subtotal
	}
	return out, nil
}

func mergeLines(lines []Line) []Line {
	var merged []Line
	index := map[string]int{}
	for _, line := range lines {
		id := strings.TrimSpace(line.ProductID)
		if id == "" || line.Quantity <= 0 {
			continue
		}
		if at, ok := index[id]; ok {
			merged[at].Quantity += line.Quantity
			continue
		}
		index[id] = len(merged)
		merged = append(merged, Line{ProductID: id, Quantity: line.Quantity})
	}
	return merged
}
