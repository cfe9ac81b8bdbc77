package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/armory-market/armory-backend/api/controllers"
	"github.com/armory-market/armory-backend/api/middleware"
	"github.com/armory-market/armory-backend/internal/assistant"
	authsvc "github.com/armory-market/armory-backend/internal/auth"
	cartsvc "github.com/armory-market/armory-backend/internal/cart"
	"github.com/armory-market/armory-backend/internal/catalog"
	"github.com/armory-market/armory-backend/internal/orders"
	"github.com/armory-market/armory-backend/internal/payments"
	"github.com/armory-market/armory-backend/pkg/config"
	"github.com/armory-market/armory-backend/pkg/db"
	"github.com/armory-market/armory-backend/pkg/logger"
	"github.com/armory-market/armory-backend/pkg/metrics"
	"github.com/armory-market/armory-backend/pkg/redis"
)

// NewRouter wires the public storefront surface: catalog and assistant
// are reachable anonymously, carts and history require an account, and
// payment callbacks sit behind the idempotency guard.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	httpMetrics *metrics.HTTPMetrics,
	metricsGatherer prometheus.Gatherer,
	authService authsvc.Service,
	registerService authsvc.RegisterService,
	catalogService catalog.Service,
	cartService cartsvc.Service,
	userDirectory controllers.UserDirectory,
	paymentsService payments.Service,
	historyService orders.HistoryService,
	assistantService assistant.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.App.CORSOrigins...),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	if metricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metricsGatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(middleware.Idempotency(redisClient, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(registerService, logg))
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(catalogService, logg))
		r.Get("/recommendations", controllers.ProductRecommendations(catalogService, logg))
		r.Get("/{productId}", controllers.ProductDetail(catalogService, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Idempotency(redisClient, logg))
		r.With(middleware.OptionalAuth(cfg.JWT, logg)).Post("/api/v1/checkout", controllers.Checkout(paymentsService, logg))
		r.Post("/api/v1/payments/confirm", controllers.PaymentConfirm(paymentsService, logg))
		r.Post("/api/v1/payments/cancel", controllers.PaymentCancel(paymentsService, logg))
	})

	r.With(middleware.OptionalAuth(cfg.JWT, logg)).Post("/api/v1/chat", controllers.Chat(assistantService, logg))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/api/v1/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(cartService, logg))
			r.Put("/", controllers.CartReplace(cartService, logg))
			r.Delete("/", controllers.CartClear(cartService, logg))
		})
		r.Get("/api/v1/me", controllers.Me(userDirectory, logg))
		r.Get("/api/v1/orders", controllers.OrderHistory(historyService, logg))
	})

	return r
}
