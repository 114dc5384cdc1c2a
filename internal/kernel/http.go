// Package kernel assembles the HTTP handler: global middleware, the API
// routes, GraphQL, health, metrics and the dashboard page.
package kernel

import (
	"fmt"
	"net/http"
	"time"

	"github.com/shashiranjanraj/salesdash/app/controllers"
	appgraphql "github.com/shashiranjanraj/salesdash/app/graphql"
	"github.com/shashiranjanraj/salesdash/app/repositories"
	"github.com/shashiranjanraj/salesdash/app/routes"
	"github.com/shashiranjanraj/salesdash/app/services"
	"github.com/shashiranjanraj/salesdash/pkg/ctx"
	"github.com/shashiranjanraj/salesdash/pkg/graphql"
	"github.com/shashiranjanraj/salesdash/pkg/metrics"
	"github.com/shashiranjanraj/salesdash/pkg/middleware"
	"github.com/shashiranjanraj/salesdash/pkg/reqid"
	"github.com/shashiranjanraj/salesdash/pkg/router"
	"github.com/shashiranjanraj/salesdash/web"
)

// Options tunes the global middleware.
type Options struct {
	CORSOrigins []string
	// TrustedProxies may set X-Forwarded-For. Empty trusts no proxy.
	TrustedProxies []string
	// Limiter rejects abusive clients. Nil disables rate limiting.
	Limiter middleware.Limiter
}

// HTTPKernel owns the router and everything mounted on it.
type HTTPKernel struct {
	router *router.Router
}

// NewHTTPKernel wires repo through the services into every endpoint.
func NewHTTPKernel(repo repositories.ProductRepository, opts Options) (*HTTPKernel, error) {
	products := services.NewProductService(repo)
	statistics := services.NewStatisticsService(repo)

	schema, err := appgraphql.NewSchema(products, statistics)
	if err != nil {
		return nil, fmt.Errorf("kernel: graphql schema: %w", err)
	}

	realIP, err := middleware.RealIP(opts.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("kernel: %w", err)
	}

	r := router.New()

	// Global middleware stack (outermost → innermost):
	//  1. Prometheus metrics, outermost for accurate total latency
	//  2. Recovery
	//  3. Request ID, injected before anything logs
	//  4. Client IP resolution
	//  5. Logger
	//  6. CORS
	//  7. Rate limiter
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(realIP)
	r.Use(middleware.Logger)

	cors := middleware.DefaultCORSOptions()
	if len(opts.CORSOrigins) > 0 {
		cors.AllowedOrigins = opts.CORSOrigins
	}
	r.Use(middleware.CORS(cors))

	if opts.Limiter != nil {
		r.Use(middleware.RateLimit(opts.Limiter))
	}

	r.Get("/metrics", "metrics", metrics.Handler())
	r.Get("/healthz", "health", ctx.Wrap(controllers.NewHealthController(repo).Show))
	r.Handle("/graphql", "graphql", graphql.Handler(schema))

	routes.RegisterAPI(r, products, statistics)

	dashboard := web.Handler()
	r.Get("/", "dashboard", dashboard.ServeHTTP)
	r.Get("/assets/*", "dashboard.assets", dashboard.ServeHTTP)

	return &HTTPKernel{router: r}, nil
}

// DefaultRateWindow is the window RATE_LIMIT is counted over.
const DefaultRateWindow = time.Minute

func (k *HTTPKernel) Handler() http.Handler { return k.router.Handler() }

func (k *HTTPKernel) Routes() []router.Route { return k.router.Routes() }
