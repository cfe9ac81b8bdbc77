package catalog

import (
	"context"
	"math/rand"
	"testing"

	"github.com/armory-market/armory-backend/pkg/config"
	"github.com/armory-market/armory-backend/pkg/db/models"
	"github.com/armory-market/armory-backend/pkg/enums"
)

type stubRepo struct {
	list            func(ctx context.Context) ([]models.Product, error)
	listByCategory  func(ctx context.Context, category enums.ProductCategory) ([]models.Product, error)
	findByID        func(ctx context.Context, id string) (*models.Product, error)
	listRecommended func(ctx context.Context) ([]models.Product, error)
}

func (s *stubRepo) List(ctx context.Context) ([]models.Product, error) {
	return s.list(ctx)
}

func (s *stubRepo) ListByCategory(ctx context.Context, category enums.ProductCategory) ([]models.Product, error) {
	return s.listByCategory(ctx, category)
}

func (s *stubRepo) FindByID(ctx context.Context, id string) (*models.Product, error) {
	return s.findByID(ctx, id)
}

func (s *stubRepo) ListRecommended(ctx context.Context) ([]models.Product, error) {
	return s.listRecommended(ctx)
}

func testCatalog() []models.Product {
	return []models.Product{
		{ID: "1", Name: "Shadow Glock", NameLocal: "그림자 글록", Category: enums.ProductCategoryPistol, Description: "Quiet but deadly."},
		{ID: "2", Name: "C4 Plastic Explosive", NameLocal: "C4 폭탄", Category: enums.ProductCategoryExplosive, Description: "Clears the room."},
		{ID: "3", Name: "Rusty Chainsaw", NameLocal: "녹슨 전기톱", Category: enums.ProductCategoryMelee, Description: "Close-range terror."},
		{ID: "4", Name: "Dark Katana", NameLocal: "암흑 카타나", Category: enums.ProductCategoryBlade, Description: "Slices through armor.", IsRecommended: true},
		{ID: "5", Name: "The Annihilator (RPG-7)", NameLocal: "섬멸자 (RPG-7)", Category: enums.ProductCategoryLauncher, Description: "One shot, mass casualty."},
		{ID: "6", Name: "Death Crossbow", NameLocal: "죽음의 석궁", Category: enums.ProductCategoryCrossbow, Description: "Silent and precise.", IsRecommended: true},
	}
}

func newTestService(t *testing.T, repo *stubRepo) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:   repo,
		Config: config.AssistantConfig{SearchLimit: 10},
		Rand:   rand.New(rand.NewSource(1)),
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func TestSearchMatchesByLocalName(t *testing.T) {
	repo := &stubRepo{list: func(context.Context) ([]models.Product, error) { return testCatalog(), nil }}
	svc := newTestService(t, repo)

	result, err := svc.Search(context.Background(), "카타나")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if result.Fallback {
		t.Fatal("expected direct match, not fallback")
	}
	if len(result.Products) != 1 || result.Products[0].ID != "4" {
		t.Fatalf("expected katana only, got %+v", result.Products)
	}
}

func TestSearchMatchesByCategory(t *testing.T) {
	repo := &stubRepo{list: func(context.Context) ([]models.Product, error) { return testCatalog(), nil }}
	svc := newTestService(t, repo)

	result, err := svc.Search(context.Background(), "pistol")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if result.Fallback {
		t.Fatal("expected direct match, not fallback")
	}
	if len(result.Products) != 1 || result.Products[0].ID != "1" {
		t.Fatalf("expected glock only, got %+v", result.Products)
	}
}

func TestSearchFallsBackToFullCatalogOnNoMatch(t *testing.T) {
	repo := &stubRepo{list: func(context.Context) ([]models.Product, error) { return testCatalog(), nil }}
	svc := newTestService(t, repo)

	result, err := svc.Search(context.Background(), "plasma rifle")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !result.Fallback {
		t.Fatal("expected fallback for unmatched query")
	}
	if len(result.Products) != 6 {
		t.Fatalf("expected full catalog, got %d products", len(result.Products))
	}
}

func TestSearchTreatsGenericTermsAsFallback(t *testing.T) {
	repo := &stubRepo{list: func(context.Context) ([]models.Product, error) { return testCatalog(), nil }}
	svc := newTestService(t, repo)

	for _, query := range []string{"무기", "weapons", "all", " "} {
		result, err := svc.Search(context.Background(), query)
		if err != nil {
			t.Fatalf("search %q: %v", query, err)
		}
		if !result.Fallback {
			t.Fatalf("query %q should fall back to the catalog", query)
		}
		if len(result.Products) != 6 {
			t.Fatalf("query %q: expected full catalog, got %d", query, len(result.Products))
		}
	}
}

func TestSearchCapsResults(t *testing.T) {
	repo := &stubRepo{list: func(context.Context) ([]models.Product, error) { return testCatalog(), nil }}
	svc, err := NewService(ServiceParams{
		Repo:   repo,
		Config: config.AssistantConfig{SearchLimit: 2},
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	result, err := svc.Search(context.Background(), "전체")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(result.Products) != 2 {
		t.Fatalf("expected capped results, got %d", len(result.Products))
	}
}

func TestRecommendationsPrefersCuratedPicksAndCaps(t *testing.T) {
	repo := &stubRepo{
		list: func(context.Context) ([]models.Product, error) { return testCatalog(), nil },
		listRecommended: func(context.Context) ([]models.Product, error) {
			var picks []models.Product
			for _, p := range testCatalog() {
				if p.IsRecommended {
					picks = append(picks, p)
				}
			}
			return picks, nil
		},
	}
	svc := newTestService(t, repo)

	picks, err := svc.Recommendations(context.Background(), 3)
	if err != nil {
		t.Fatalf("recommendations: %v", err)
	}
	if len(picks) != 2 {
		t.Fatalf("expected both curated picks, got %d", len(picks))
	}
	for _, p := range picks {
		if !p.IsRecommended {
			t.Fatalf("unexpected pick %s", p.ID)
		}
	}
}

func TestRecommendationsFallsBackToCatalogSample(t *testing.T) {
	repo := &stubRepo{
		list:            func(context.Context) ([]models.Product, error) { return testCatalog(), nil },
		listRecommended: func(context.Context) ([]models.Product, error) { return nil, nil },
	}
	svc := newTestService(t, repo)

	picks, err := svc.Recommendations(context.Background(), 3)
	if err != nil {
		t.Fatalf("recommendations: %v", err)
	}
	if len(picks) != 3 {
		t.Fatalf("expected exactly three samples, got %d", len(picks))
	}
	seen := map[string]bool{}
	for _, p := range picks {
		if seen[p.ID] {
			t.Fatalf("duplicate pick %s", p.ID)
		}
		seen[p.ID] = true
	}
}

func TestListByCategoryValidatesEnum(t *testing.T) {
	repo := &stubRepo{
		listByCategory: func(_ context.Context, category enums.ProductCategory) ([]models.Product, error) {
			var matches []models.Product
			for _, p := range testCatalog() {
				if p.Category == category {
					matches = append(matches, p)
				}
			}
			return matches, nil
		},
	}
	svc := newTestService(t, repo)

	products, err := svc.ListByCategory(context.Background(), enums.ProductCategoryPistol)
	if err != nil {
		t.Fatalf("list by category: %v", err)
	}
	if len(products) != 1 || products[0].ID != "1" {
		t.Fatalf("unexpected category result %+v", products)
	}

	if _, err := svc.ListByCategory(context.Background(), enums.ProductCategory("vehicle")); err == nil {
		t.Fatal("expected validation error for unknown category")
	}
}
