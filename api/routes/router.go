package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nurserysera/storefront-backend/api/controllers"
	"github.com/nurserysera/storefront-backend/api/middleware"
	"github.com/nurserysera/storefront-backend/internal/fulfillment"
	"github.com/nurserysera/storefront-backend/internal/notify"
	"github.com/nurserysera/storefront-backend/internal/orders"
	"github.com/nurserysera/storefront-backend/internal/products"
	"github.com/nurserysera/storefront-backend/internal/reports"
	"github.com/nurserysera/storefront-backend/pkg/config"
	"github.com/nurserysera/storefront-backend/pkg/logger"
)

// Deps carries everything the HTTP surface needs. Nil services degrade to a
// 500 on their routes instead of failing startup.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	Products    products.Service
	Orders      orders.Service
	Fulfillment fulfillment.Service
	Notify      notify.Service
	Reports     reports.Service
	Metrics     *prometheus.Registry
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	adminOnly := middleware.AdminOnly(cfg.Admin.Token, logg)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", controllers.Health(cfg))

		r.Get("/products", controllers.ListProducts(deps.Products, logg))
		r.With(adminOnly).Post("/products/quick-add", controllers.QuickAddProduct(deps.Products, logg))

		r.Post("/orders", controllers.CreateOrder(deps.Orders, logg))
		// legacy storefront callback, kept public
		r.Put("/orders/{token}/paid", controllers.MarkOrderPaid(deps.Fulfillment, logg))

		r.Get("/reports/category", controllers.CategoryReport(deps.Reports, logg))
		r.Get("/reports/all", controllers.AllReport(deps.Reports, logg))

		r.With(adminOnly).Get("/view/{name}", controllers.ReadView(deps.Reports, logg))

		r.Route("/admin", func(r chi.Router) {
			r.Use(adminOnly)

			r.Put("/orders/{token}/paid", controllers.AdminSetOrderPaid(deps.Fulfillment, logg))
			r.Put("/unit/{id}/paid", controllers.AdminSetUnitPaid(deps.Fulfillment, logg))
			r.Post("/set-tracking", controllers.AdminSetTracking(deps.Fulfillment, logg))

			r.Post("/send/ship-date", controllers.AdminSendShipDate(deps.Notify, logg))
			r.Post("/send/shipped", controllers.AdminSendShipped(deps.Notify, logg))

			r.Get("/orders", controllers.AdminOrderList(deps.Reports, logg))
			r.Get("/orders/{token}/items", controllers.AdminOrderItems(deps.Reports, logg))
			r.Get("/token-index", controllers.AdminTokenIndex(deps.Reports, logg))
			r.Get("/units/summary-token", controllers.AdminUnitsSummaryByToken(deps.Reports, logg))
			r.Get("/units/summary-product", controllers.AdminUnitsSummaryByProduct(deps.Reports, logg))
		})
	})

	return r
}
