package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/rgoulet/pricebook/internal/handler"
	"github.com/rgoulet/pricebook/internal/middleware"
	"github.com/rgoulet/pricebook/internal/receipt"
	"github.com/rgoulet/pricebook/internal/scanner"
	"github.com/rgoulet/pricebook/internal/store"
	ws "github.com/rgoulet/pricebook/internal/websocket"
)

type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	catalogH    *handler.CatalogHandler
	productH    *handler.ProductHandler
	variantH    *handler.VariantHandler
	priceH      *handler.PriceHandler
	basketH     *handler.BasketHandler
	listH       *handler.ListHandler
	scanH       *handler.ScanHandler
	tripH       *handler.TripHandler
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(db *sql.DB, scannerClient *scanner.Client, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	catalogStore := store.NewCatalogStore(db)
	priceStore := store.NewPriceStore(db)
	listStore := store.NewListStore(db)
	tripStore := store.NewTripStore(db)

	committer := receipt.NewCommitter(catalogStore, priceStore, tripStore)

	return &Server{
		db:          db,
		hub:         hub,
		catalogH:    handler.NewCatalogHandler(catalogStore, logger.With("component", "catalog")),
		productH:    handler.NewProductHandler(catalogStore, logger.With("component", "product")),
		variantH:    handler.NewVariantHandler(catalogStore, logger.With("component", "variant")),
		priceH:      handler.NewPriceHandler(priceStore, catalogStore, hub, logger.With("component", "price")),
		basketH:     handler.NewBasketHandler(listStore, catalogStore, priceStore, hub, logger.With("component", "basket")),
		listH:       handler.NewListHandler(listStore, hub, logger.With("component", "list")),
		scanH:       handler.NewScanHandler(scannerClient, catalogStore, priceStore, committer, hub, logger.With("component", "scan")),
		tripH:       handler.NewTripHandler(tripStore, logger.With("component", "trip")),
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	// Brands and stores
	mux.HandleFunc("GET /api/brands", s.catalogH.ListBrands)
	mux.HandleFunc("POST /api/brands", s.catalogH.CreateBrand)
	mux.HandleFunc("DELETE /api/brands/{id}", s.catalogH.DeleteBrand)
	mux.HandleFunc("GET /api/stores", s.catalogH.ListStores)
	mux.HandleFunc("POST /api/stores", s.catalogH.CreateStore)
	mux.HandleFunc("DELETE /api/stores/{id}", s.catalogH.DeleteStore)

	// Products
	mux.HandleFunc("GET /api/products", s.productH.List)
	mux.HandleFunc("POST /api/products", s.productH.Create)
	mux.HandleFunc("GET /api/products/{id}", s.productH.Get)
	mux.HandleFunc("PUT /api/products/{id}", s.productH.Update)
	mux.HandleFunc("DELETE /api/products/{id}", s.productH.Delete)

	// Variants
	mux.HandleFunc("GET /api/products/{product_id}/variants", s.variantH.ListByProduct)
	mux.HandleFunc("POST /api/products/{product_id}/variants", s.variantH.Create)
	mux.HandleFunc("GET /api/variants/{id}", s.variantH.Get)
	mux.HandleFunc("PUT /api/variants/{id}", s.variantH.Update)
	mux.HandleFunc("PUT /api/variants/{id}/base-unit", s.variantH.ChangeBaseUnit)
	mux.HandleFunc("DELETE /api/variants/{id}", s.variantH.Delete)

	// Purchase units
	mux.HandleFunc("GET /api/variants/{variant_id}/units", s.variantH.ListPurchaseUnits)
	mux.HandleFunc("POST /api/variants/{variant_id}/units", s.variantH.CreatePurchaseUnit)
	mux.HandleFunc("PUT /api/units/{id}", s.variantH.UpdatePurchaseUnit)
	mux.HandleFunc("DELETE /api/units/{id}", s.variantH.DeletePurchaseUnit)

	// Prices
	mux.HandleFunc("GET /api/variants/{variant_id}/prices", s.priceH.ListByVariant)
	mux.HandleFunc("PUT /api/variants/{variant_id}/prices/{store_id}", s.priceH.Upsert)
	mux.HandleFunc("GET /api/prices/{id}", s.priceH.Get)
	mux.HandleFunc("DELETE /api/prices/{id}", s.priceH.Delete)
	mux.HandleFunc("GET /api/prices/{id}/history", s.priceH.History)
	mux.HandleFunc("GET /api/prices/{id}/unit-price", s.priceH.UnitPrice)

	// To-buy basket
	mux.HandleFunc("GET /api/basket", s.basketH.List)
	mux.HandleFunc("POST /api/basket/items", s.basketH.Add)
	mux.HandleFunc("PUT /api/basket/items/{id}", s.basketH.Update)
	mux.HandleFunc("POST /api/basket/items/{id}/check", s.basketH.SetChecked)
	mux.HandleFunc("DELETE /api/basket/items/{id}", s.basketH.Delete)
	mux.HandleFunc("POST /api/basket/clear-checked", s.basketH.ClearChecked)

	// Shopping lists
	mux.HandleFunc("GET /api/lists", s.listH.ListShoppingLists)
	mux.HandleFunc("POST /api/lists", s.listH.CreateShoppingList)
	mux.HandleFunc("DELETE /api/lists/{id}", s.listH.DeleteShoppingList)
	mux.HandleFunc("GET /api/lists/{list_id}/items", s.listH.ListItems)
	mux.HandleFunc("POST /api/lists/{list_id}/items", s.listH.CreateItem)
	mux.HandleFunc("PUT /api/list-items/{id}", s.listH.UpdateItem)
	mux.HandleFunc("DELETE /api/list-items/{id}", s.listH.DeleteItem)
	mux.HandleFunc("POST /api/list-items/{id}/to-basket", s.listH.MoveItemToBasket)

	// Templates
	mux.HandleFunc("GET /api/templates", s.listH.ListTemplates)
	mux.HandleFunc("POST /api/templates", s.listH.CreateTemplate)
	mux.HandleFunc("DELETE /api/templates/{id}", s.listH.DeleteTemplate)
	mux.HandleFunc("GET /api/templates/{template_id}/items", s.listH.ListTemplateItems)
	mux.HandleFunc("POST /api/templates/{template_id}/items", s.listH.CreateTemplateItem)
	mux.HandleFunc("DELETE /api/template-items/{id}", s.listH.DeleteTemplateItem)
	mux.HandleFunc("POST /api/templates/{id}/instantiate", s.listH.Instantiate)

	// Receipt scans. Creation is rate limited: each scan is an upstream
	// vision-API call.
	mux.HandleFunc("POST /api/scans", s.rateLimitedHandler(s.scanH.Create))
	mux.HandleFunc("GET /api/scans/{id}", s.scanH.Get)
	mux.HandleFunc("PUT /api/scans/{id}/items/{index}", s.scanH.UpdateItem)
	mux.HandleFunc("POST /api/scans/{id}/commit", s.scanH.Commit)
	mux.HandleFunc("DELETE /api/scans/{id}", s.scanH.Cancel)

	// Purchase trips
	mux.HandleFunc("GET /api/trips", s.tripH.List)
	mux.HandleFunc("GET /api/trips/{id}", s.tripH.Get)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
