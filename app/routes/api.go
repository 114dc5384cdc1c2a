package routes

import (
	"github.com/shashiranjanraj/salesdash/app/controllers"
	"github.com/shashiranjanraj/salesdash/app/services"
	"github.com/shashiranjanraj/salesdash/pkg/ctx"
	"github.com/shashiranjanraj/salesdash/pkg/router"
)

// RegisterAPI mounts the dashboard's REST endpoints under /api.
func RegisterAPI(r *router.Router, products *services.ProductService, statistics *services.StatisticsService) {
	productController := controllers.NewProductController(products)
	statisticsController := controllers.NewStatisticsController(statistics)

	api := r.Group("/api")
	api.Get("/products", "products.index", ctx.Wrap(productController.Index))
	api.Get("/statisticsByMonth", "statistics.month", ctx.Wrap(statisticsController.ByMonth))
}
