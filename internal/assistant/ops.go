package assistant

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/armory-market/armory-backend/internal/catalog"
	"github.com/armory-market/armory-backend/internal/orders"
	"github.com/armory-market/armory-backend/internal/payments"
	"github.com/armory-market/armory-backend/pkg/config"
	"github.com/armory-market/armory-backend/pkg/db/models"
	pkgerrors "github.com/armory-market/armory-backend/pkg/errors"
)

// Failure tags carried on tool results so the model can distinguish
// recoverable asks ("give me your email") from dead ends.
const (
	codeEmailRequired     = "EMAIL_REQUIRED"
	codeNameRequired      = "NAME_REQUIRED"
	codeProductNotFound   = "PRODUCT_NOT_FOUND"
	codeInsufficientStock = "INSUFFICIENT_STOCK"
	codeNoActiveSearch    = "NO_ACTIVE_SEARCH"
	codePaymentCancelled  = "PAYMENT_CANCELLED"
)

// Result is the uniform tool outcome. Tool operations never return an
// error across their boundary; every internal failure is converted into
// a failure Result with a customer-readable message.
type Result struct {
	Success  bool                       `json:"success"`
	Message  string                     `json:"message"`
	Code     string                     `json:"code,omitempty"`
	Products []models.Product           `json:"products,omitempty"`
	Orders   []orders.Summary           `json:"orders,omitempty"`
	Checkout *payments.CheckoutResponse `json:"checkout,omitempty"`

	// fallback marks a search that substituted the full catalog.
	fallback bool
}

func failure(code, message string) Result {
	return Result{Success: false, Code: code, Message: message}
}

type checkoutService interface {
	Checkout(ctx context.Context, userID *uuid.UUID, req payments.CheckoutRequest) (*payments.CheckoutResponse, error)
}

type customerDirectory interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// Ops implements the four tool operations the model can invoke. Each
// method mutates the given session's context (identity, last results)
// as a side effect, which is what makes ordinal follow-ups work.
type Ops struct {
	catalog   catalog.Service
	payments  checkoutService
	history   orders.HistoryService
	directory customerDirectory
	cfg       config.AssistantConfig
	rand      *rand.Rand
}

// OpsParams bundles tool operation dependencies.
type OpsParams struct {
	Catalog   catalog.Service
	Payments  checkoutService
	History   orders.HistoryService
	Directory customerDirectory
	Config    config.AssistantConfig
	Rand      *rand.Rand
}

// NewOps constructs the tool operation set.
func NewOps(params OpsParams) (*Ops, error) {
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog service is required")
	}
	if params.Payments == nil {
		return nil, fmt.Errorf("checkout service is required")
	}
	if params.History == nil {
		return nil, fmt.Errorf("order history service is required")
	}
	if params.Directory == nil {
		return nil, fmt.Errorf("customer directory is required")
	}
	return &Ops{
		catalog:   params.Catalog,
		payments:  params.Payments,
		history:   params.History,
		directory: params.Directory,
		cfg:       params.Config,
		rand:      params.Rand,
	}, nil
}

// SearchProducts runs a local catalog search and establishes the ordinal
// reference context for later turns.
func (o *Ops) SearchProducts(ctx context.Context, sess *Session, query string) Result {
	found, err := o.catalog.Search(ctx, query)
	if err != nil {
		return failure("", "상품 검색에 실패했습니다. 잠시 후 다시 시도해 주세요.")
	}

	sess.SetResults(found.Products)

	message := fmt.Sprintf("검색 결과 %d개를 찾았어요.", len(found.Products))
	if found.Fallback {
		message = fmt.Sprintf("딱 맞는 상품을 찾지 못해 전체 목록을 보여드려요. (%d개)", len(found.Products))
	}
	return Result{
		Success:  true,
		Message:  message + "\n" + formatProductList(found.Products),
		Products: found.Products,
		fallback: found.Fallback,
	}
}

// CreateOrderArgs are the resolved create_order inputs.
type CreateOrderArgs struct {
	ProductRef string
	Quantity   int
	Email      string
	Name       string
}

// CreateOrder resolves a product reference and customer identity, checks
// stock, and opens a pending payment. It never guesses an email: missing
// identity is a failure the model must relay back to the customer.
func (o *Ops) CreateOrder(ctx context.Context, sess *Session, args CreateOrderArgs) Result {
	quantity := args.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	product, res := o.resolveProduct(ctx, sess, args.ProductRef)
	if product == nil {
		return res
	}

	email := strings.ToLower(strings.TrimSpace(args.Email))
	if email == "" {
		email = strings.ToLower(strings.TrimSpace(sess.Email))
	}
	if email == "" {
		return failure(codeEmailRequired, "주문을 진행하려면 이메일 주소가 필요해요. 이메일을 알려주세요.")
	}

	// A registered customer's stored profile wins over whatever name the
	// model passed along; the explicit email still wins over the stored one.
	customerName := strings.TrimSpace(args.Name)
	var userID *uuid.UUID
	user, err := o.directory.FindByEmail(ctx, email)
	switch {
	case err == nil:
		customerName = user.Name
		id := user.ID
		userID = &id
	case errors.Is(err, gorm.ErrRecordNotFound):
		// guest checkout
	default:
		return failure("", "고객 정보를 확인하지 못했습니다. 잠시 후 다시 시도해 주세요.")
	}
	if customerName == "" {
		return failure(codeNameRequired, "주문자 성함이 필요해요. 이름을 알려주세요.")
	}

	available := product.AvailableStock(o.defaultStock())
	if available < quantity {
		return failure(codeInsufficientStock,
			fmt.Sprintf("%s의 재고가 부족해요. 현재 재고: %d개", product.DisplayName(), available))
	}

	checkout, err := o.payments.Checkout(ctx, userID, payments.CheckoutRequest{
		Items:        []payments.CheckoutItem{{ProductID: product.ID, Quantity: quantity}},
		Email:        email,
		CustomerName: customerName,
		OrderName:    fmt.Sprintf("%s x%d", product.DisplayName(), quantity),
	})
	if err != nil {
		return checkoutFailure(err, product, o.defaultStock())
	}

	// Identity learned during an order sticks for the rest of the session.
	sess.Email = email
	sess.Name = customerName
	if userID != nil {
		sess.UserID = *userID
	}

	return Result{
		Success: true,
		Message: fmt.Sprintf("주문이 접수되었습니다.\n주문명: %s\n결제 금액: %s\n결제 창에서 결제를 완료해 주세요.",
			checkout.OrderName, formatPrice(checkout.AmountUnits)),
		Checkout: checkout,
	}
}

func checkoutFailure(err error, product *models.Product, defaultStock int) Result {
	switch pkgerrors.As(err).Code() {
	case pkgerrors.CodeStateConflict:
		return failure(codeInsufficientStock,
			fmt.Sprintf("%s의 재고가 부족해요. 현재 재고: %d개", product.DisplayName(), product.AvailableStock(defaultStock)))
	case pkgerrors.CodeNotFound:
		return failure(codeProductNotFound, "해당 상품을 찾을 수 없어요.")
	default:
		return failure(codePaymentCancelled, "결제가 진행되지 않았어요. 다시 시도해 주세요.")
	}
}

// GetOrders lists the customer's purchase history, newest first.
func (o *Ops) GetOrders(ctx context.Context, sess *Session, emailArg string) Result {
	email := strings.ToLower(strings.TrimSpace(emailArg))
	if email == "" {
		email = strings.ToLower(strings.TrimSpace(sess.Email))
	}
	if email == "" {
		return failure(codeEmailRequired, "주문 내역을 조회하려면 이메일 주소가 필요해요.")
	}

	query := orders.HistoryQuery{Email: email, Limit: o.cfg.HistoryLimit}
	if user, err := o.directory.FindByEmail(ctx, email); err == nil {
		query.UserID = user.ID
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return failure("", "고객 정보를 확인하지 못했습니다. 잠시 후 다시 시도해 주세요.")
	}

	summaries, err := o.history.History(ctx, query)
	if err != nil {
		return failure("", "주문 내역 조회에 실패했습니다. 잠시 후 다시 시도해 주세요.")
	}
	if len(summaries) == 0 {
		return Result{Success: true, Message: "주문 내역이 없어요."}
	}

	return Result{
		Success: true,
		Message: fmt.Sprintf("주문 내역 %d건이에요.\n\n%s", len(summaries), formatOrderHistory(summaries)),
		Orders:  summaries,
	}
}

// GetRecommendations picks a uniform-random set of up to three products,
// optionally limited to one category, and stores it as the ordinal
// reference context.
func (o *Ops) GetRecommendations(ctx context.Context, sess *Session, category string) Result {
	category = strings.ToLower(strings.TrimSpace(category))

	var picks []models.Product
	if category == "" {
		var err error
		picks, err = o.catalog.Recommendations(ctx, 3)
		if err != nil {
			return failure("", "추천 상품을 불러오지 못했습니다. 잠시 후 다시 시도해 주세요.")
		}
	} else {
		all, err := o.catalog.List(ctx)
		if err != nil {
			return failure("", "추천 상품을 불러오지 못했습니다. 잠시 후 다시 시도해 주세요.")
		}
		for _, p := range all {
			if strings.EqualFold(string(p.Category), category) {
				picks = append(picks, p)
			}
		}
		if len(picks) == 0 {
			return failure(codeProductNotFound,
				fmt.Sprintf("'%s' 카테고리에서 추천할 상품을 찾지 못했어요.", category))
		}
		picks = o.sample(picks, 3)
	}

	sess.SetResults(picks)
	return Result{
		Success:  true,
		Message:  fmt.Sprintf("이런 상품은 어떠세요?\n%s", formatProductList(picks)),
		Products: picks,
	}
}

// sample returns up to max elements drawn without replacement.
func (o *Ops) sample(products []models.Product, max int) []models.Product {
	if len(products) <= max {
		return products
	}
	shuffled := append([]models.Product(nil), products...)
	swap := func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] }
	if o.rand != nil {
		o.rand.Shuffle(len(shuffled), swap)
	} else {
		rand.Shuffle(len(shuffled), swap)
	}
	return shuffled[:max]
}

func (o *Ops) defaultStock() int {
	if o.cfg.DefaultStock > 0 {
		return o.cfg.DefaultStock
	}
	return 10
}

// ordinalPattern matches explicit ordinal references such as "#2",
// "2nd", "item 2", or "2번째". Bare digits are product ids, not ordinals.
var ordinalPattern = regexp.MustCompile(`(?i)^(?:#\s*(\d+)|(\d+)\s*(?:st|nd|rd|th)\b|(?:item|number)\s+(\d+)|(\d+)\s*번째)`)

var koreanOrdinals = map[string]int{
	"첫번째": 1, "첫 번째": 1, "두번째": 2, "두 번째": 2, "세번째": 3, "세 번째": 3,
}

func parseOrdinal(ref string) (int, bool) {
	if n, ok := koreanOrdinals[ref]; ok {
		return n, true
	}
	match := ordinalPattern.FindStringSubmatch(ref)
	if match == nil {
		return 0, false
	}
	for _, group := range match[1:] {
		if group != "" {
			n, err := strconv.Atoi(group)
			if err != nil {
				return 0, false
			}
			return n, true
		}
	}
	return 0, false
}

// resolveProduct turns a model-supplied product reference into a catalog
// row. On failure the second return carries the customer-facing Result.
func (o *Ops) resolveProduct(ctx context.Context, sess *Session, ref string) (*models.Product, Result) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, failure(codeProductNotFound, "어떤 상품을 주문하실지 알려주세요.")
	}

	if n, ok := parseOrdinal(ref); ok {
		if len(sess.LastResults) == 0 {
			return nil, failure(codeNoActiveSearch, "먼저 상품을 검색하거나 추천을 받아 주세요. 순서로 고르시려면 목록이 필요해요.")
		}
		if n < 1 || n > len(sess.LastResults) {
			return nil, failure(codeProductNotFound,
				fmt.Sprintf("목록에는 %d개의 상품만 있어요. 번호를 다시 확인해 주세요.", len(sess.LastResults)))
		}
		product := sess.LastResults[n-1]
		return &product, Result{}
	}

	if isDigits(ref) {
		product, err := o.catalog.Get(ctx, ref)
		if err != nil {
			return nil, failure(codeProductNotFound, "해당 상품을 찾을 수 없어요.")
		}
		return product, Result{}
	}

	all, err := o.catalog.List(ctx)
	if err != nil {
		return nil, failure("", "상품 정보를 불러오지 못했습니다. 잠시 후 다시 시도해 주세요.")
	}
	lowered := strings.ToLower(ref)
	for i := range all {
		name := strings.ToLower(all[i].Name)
		local := strings.ToLower(all[i].NameLocal)
		if strings.Contains(name, lowered) || strings.Contains(local, lowered) ||
			strings.Contains(lowered, name) || (local != "" && strings.Contains(lowered, local)) {
			return &all[i], Result{}
		}
	}
	return nil, failure(codeProductNotFound, fmt.Sprintf("'%s' 상품을 찾을 수 없어요.", ref))
}

func isDigits(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
