package catalog

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"gorm.io/gorm"

	"github.com/armory-market/armory-backend/pkg/config"
	"github.com/armory-market/armory-backend/pkg/db/models"
	"github.com/armory-market/armory-backend/pkg/enums"
	pkgerrors "github.com/armory-market/armory-backend/pkg/errors"
)

// Service exposes read operations over the weapon catalog.
type Service interface {
	List(ctx context.Context) ([]models.Product, error)
	ListByCategory(ctx context.Context, category enums.ProductCategory) ([]models.Product, error)
	Get(ctx context.Context, id string) (*models.Product, error)
	Search(ctx context.Context, query string) (*SearchResult, error)
	Recommendations(ctx context.Context, max int) ([]models.Product, error)
}

// SearchResult carries matches plus whether the full catalog was substituted
// because the query was generic or matched nothing.
type SearchResult struct {
	Products []models.Product
	Fallback bool
}

type repository interface {
	List(ctx context.Context) ([]models.Product, error)
	ListByCategory(ctx context.Context, category enums.ProductCategory) ([]models.Product, error)
	FindByID(ctx context.Context, id string) (*models.Product, error)
	ListRecommended(ctx context.Context) ([]models.Product, error)
}

type service struct {
	repo repository
	cfg  config.AssistantConfig
	rand *rand.Rand
}

// ServiceParams bundles catalog service dependencies.
type ServiceParams struct {
	Repo   repository
	Config config.AssistantConfig
	Rand   *rand.Rand
}

// NewService constructs a catalog service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("catalog repository is required")
	}
	return &service{
		repo: params.Repo,
		cfg:  params.Config,
		rand: params.Rand,
	}, nil
}

func (s *service) List(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list catalog")
	}
	return products, nil
}

func (s *service) ListByCategory(ctx context.Context, category enums.ProductCategory) ([]models.Product, error) {
	if !category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown product category")
	}
	products, err := s.repo.ListByCategory(ctx, category)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list catalog by category")
	}
	return products, nil
}

func (s *service) Get(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return product, nil
}

// genericTerms are queries that mean "show me everything" rather than a
// specific weapon, in either storefront language.
var genericTerms = []string{
	"무기", "상품", "전체", "목록", "추천",
	"weapon", "weapons", "product", "products", "all", "list", "show", "everything", "anything",
}

func (s *service) Search(ctx context.Context, query string) (*SearchResult, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list catalog")
	}

	limit := s.cfg.SearchLimit
	if limit <= 0 {
		limit = len(products)
	}

	normalized := strings.ToLower(strings.TrimSpace(query))
	if normalized == "" || isGenericQuery(normalized) {
		return &SearchResult{Products: capProducts(products, limit), Fallback: true}, nil
	}

	matches := matchProducts(products, normalized)
	if len(matches) == 0 {
		return &SearchResult{Products: capProducts(products, limit), Fallback: true}, nil
	}
	return &SearchResult{Products: capProducts(matches, limit)}, nil
}

func (s *service) Recommendations(ctx context.Context, max int) ([]models.Product, error) {
	products, err := s.repo.ListRecommended(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list recommended")
	}
	if len(products) == 0 {
		products, err = s.repo.List(ctx)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list catalog")
		}
	}

	if max <= 0 {
		max = 3
	}
	if len(products) <= max {
		return products, nil
	}

	shuffled := append([]models.Product(nil), products...)
	s.shuffle(shuffled)
	return shuffled[:max], nil
}

func (s *service) shuffle(products []models.Product) {
	swap := func(i, j int) { products[i], products[j] = products[j], products[i] }
	if s.rand != nil {
		s.rand.Shuffle(len(products), swap)
		return
	}
	rand.Shuffle(len(products), swap)
}

func isGenericQuery(normalized string) bool {
	for _, term := range genericTerms {
		if normalized == term {
			return true
		}
	}
	return false
}

func matchProducts(products []models.Product, normalized string) []models.Product {
	tokens := strings.Fields(normalized)
	if len(tokens) == 0 {
		tokens = []string{normalized}
	}

	var matches []models.Product
	for _, product := range products {
		if productMatches(product, tokens) {
			matches = append(matches, product)
		}
	}
	return matches
}

func productMatches(product models.Product, tokens []string) bool {
	haystack := strings.ToLower(strings.Join([]string{
		product.Name,
		product.NameLocal,
		string(product.Category),
		product.Description,
	}, " "))
	for _, token := range tokens {
		if strings.Contains(haystack, token) {
			return true
		}
	}
	return false
}

func capProducts(products []models.Product, limit int) []models.Product {
	if limit > 0 && len(products) > limit {
		return products[:limit]
	}
	return products
}
