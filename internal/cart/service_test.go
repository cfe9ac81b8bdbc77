package cart

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/armory-market/armory-backend/pkg/db/models"
	pkgerrors "github.com/armory-market/armory-backend/pkg/errors"
)

type fakeCartStore struct {
	values map[string]string
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{values: map[string]string{}}
}

func (f *fakeCartStore) Get(_ context.Context, key string) (string, error) {
	return f.values[key], nil
}

func (f *fakeCartStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.values[key] = value.(string)
	return nil
}

func (f *fakeCartStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func (f *fakeCartStore) CartKey(userID string) string {
	return "cart:" + userID
}

type fakeCatalog struct {
	products map[string]models.Product
}

func (f *fakeCatalog) FindByID(_ context.Context, id string) (*models.Product, error) {
	if p, ok := f.products[id]; ok {
		return &p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func newCartService(t *testing.T) (Service, *fakeCartStore) {
	t.Helper()
	store := newFakeCartStore()
	catalog := &fakeCatalog{products: map[string]models.Product{
		"1": {ID: "1", Name: "Shadow Glock", PriceUnits: 2500},
		"4": {ID: "4", Name: "Dark Katana", PriceUnits: 5800},
	}}
	svc, err := NewService(ServiceParams{Store: store, Catalog: catalog})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, store
}

func TestReplaceStoresAndHydrates(t *testing.T) {
	svc, _ := newCartService(t)

	cart, err := svc.Replace(context.Background(), "user-1", []Line{
		{ProductID: "1", Quantity: 2},
		{ProductID: "4", Quantity: 1},
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if len(cart.Items) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(cart.Items))
	}
	if cart.TotalUnits != 2*2500+5800 {
		t.Fatalf("unexpected total %d", cart.TotalUnits)
	}
	if cart.Items[0].Subtotal != 5000 {
		t.Fatalf("unexpected subtotal %d", cart.Items[0].Subtotal)
	}
}

func TestReplaceMergesDuplicateLines(t *testing.T) {
	svc, _ := newCartService(t)

	cart, err := svc.Replace(context.Background(), "user-1", []Line{
		{ProductID: "1", Quantity: 1},
		{ProductID: "1", Quantity: 2},
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("expected merged line, got %d", len(cart.Items))
	}
	if cart.Items[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", cart.Items[0].Quantity)
	}
}

func TestReplaceRejectsUnknownProduct(t *testing.T) {
	svc, _ := newCartService(t)

	_, err := svc.Replace(context.Background(), "user-1", []Line{{ProductID: "99", Quantity: 1}})
	if err == nil {
		t.Fatal("expected error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetReturnsEmptyCartWhenMissing(t *testing.T) {
	svc, _ := newCartService(t)

	cart, err := svc.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(cart.Items) != 0 || cart.TotalUnits != 0 {
		t.Fatalf("expected empty cart, got %+v", cart)
	}
}

func TestClearRemovesDocument(t *testing.T) {
	svc, store := newCartService(t)

	if _, err := svc.Replace(context.Background(), "user-1", []Line{{ProductID: "1", Quantity: 1}}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := svc.Clear(context.Background(), "user-1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok := store.values["cart:user-1"]; ok {
		t.Fatal("cart document should be deleted")
	}
}
