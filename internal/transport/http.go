package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndthanh/storefront/internal/cart"
	"github.com/ndthanh/storefront/internal/catalog"
	"github.com/ndthanh/storefront/internal/db"
	"github.com/ndthanh/storefront/internal/handler"
	"github.com/ndthanh/storefront/internal/notification"
	"github.com/ndthanh/storefront/internal/order"
	"github.com/ndthanh/storefront/internal/promotion"
	"github.com/ndthanh/storefront/internal/review"
	"github.com/ndthanh/storefront/internal/stats"
)

// NewRouter wires repositories, services and handlers over the shared
// database and mounts the public and admin route trees.
func NewRouter(pg *db.Postgres) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	catalogRepo := catalog.NewRepository(pg.Pool)
	promotionRepo := promotion.NewRepository(pg.Pool)
	cartRepo := cart.NewRepository(pg.Pool)
	orderRepo := order.NewRepository(pg.Pool)
	reviewRepo := review.NewRepository(pg.Pool)
	notificationRepo := notification.NewRepository(pg.Pool)
	statsRepo := stats.NewRepository(pg.SQL)

	notificationSvc := notification.NewService(notificationRepo)
	catalogSvc := catalog.NewService(catalogRepo)
	promotionSvc := promotion.NewService(promotionRepo, nil)
	orderSvc := order.NewService(orderRepo, catalogRepo, notificationSvc, nil)
	cartSvc := cart.NewService(cartRepo, catalogRepo, promotionRepo, orderRepo, notificationSvc, nil)
	reviewSvc := review.NewService(reviewRepo, orderRepo)
	statsSvc := stats.NewService(statsRepo)

	catalogHandler := handler.NewCatalogHandler(catalogSvc)
	promotionHandler := handler.NewPromotionHandler(promotionSvc, catalogSvc)
	cartHandler := handler.NewCartHandler(cartSvc)
	orderHandler := handler.NewOrderHandler(orderSvc)
	adminOrderHandler := handler.NewAdminOrderHandler(orderSvc)
	reviewHandler := handler.NewReviewHandler(reviewSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	statsHandler := handler.NewStatsHandler(statsSvc)

	r.Route("/api/v1", func(r chi.Router) {
		catalogHandler.RegisterRoutes(r)
		promotionHandler.RegisterRoutes(r)
		cartHandler.RegisterRoutes(r)
		orderHandler.RegisterRoutes(r)
		reviewHandler.RegisterRoutes(r)
		notificationHandler.RegisterRoutes(r)

		r.Route("/admin", func(r chi.Router) {
			catalogHandler.RegisterAdminRoutes(r)
			promotionHandler.RegisterAdminRoutes(r)
			adminOrderHandler.RegisterRoutes(r)
			reviewHandler.RegisterAdminRoutes(r)
			statsHandler.RegisterAdminRoutes(r)
		})
	})

	return r
}
