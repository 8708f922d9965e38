package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"catlink/config"
	"catlink/database"
	"catlink/handlers"
	"catlink/linkage"
	"catlink/middleware"
	"catlink/monitor"
	"catlink/repository"
	"catlink/scraper"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	appCfg := config.LoadAppConfig()
	retailers := config.DefaultRetailers()

	// Initialize database
	if err := database.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDatabase()

	if err := database.CreateTables(); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	// Initialize repositories
	productRepo := repository.NewProductRepository()
	sightingRepo := repository.NewSightingRepository()
	patternRepo := repository.NewPatternRepository()
	queueRepo := repository.NewQueueRepository()

	// Initialize the linkage core
	learner := linkage.NewLearner(patternRepo)
	engine := linkage.NewEngine(productRepo, learner,
		linkage.WithCodeExtractor(func(retailer, url string) string {
			if cfg, ok := retailers[retailer]; ok {
				return cfg.ExtractProductCode(url)
			}
			return ""
		}),
	)
	detector := monitor.NewPriceDetector(productRepo, queueRepo)

	// Initialize the scraper and monitor
	catalogScraper := scraper.NewHybridCatalogScraper(appCfg.RequestTimeout, appCfg.ScrapeDelay)
	defer catalogScraper.Close()

	catalogMonitor := monitor.NewCatalogMonitor(appCfg, retailers, catalogScraper, sightingRepo, engine, learner, detector)
	catalogMonitor.Start()
	defer catalogMonitor.Stop()

	taskManager := monitor.NewTaskManager(catalogMonitor, appCfg.MaxMonitorWorkers)
	defer taskManager.Stop()

	// Initialize handlers
	h := handlers.NewHandlers(productRepo, sightingRepo, patternRepo, queueRepo, catalogMonitor, taskManager)

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.RateLimitMiddleware(appCfg.RateLimitPerSec))

	r.HandleFunc("/health", healthCheck).Methods("GET")

	apiV1 := r.PathPrefix("/api/v1").Subrouter()
	apiV1.HandleFunc("/products", h.GetProducts).Methods("GET")
	apiV1.HandleFunc("/products", h.CreateProduct).Methods("POST")
	apiV1.HandleFunc("/sightings", h.GetRecentSightings).Methods("GET")
	apiV1.HandleFunc("/sightings/unlinked", h.GetUnlinkedSightings).Methods("GET")
	apiV1.HandleFunc("/patterns", h.GetPatterns).Methods("GET")
	apiV1.HandleFunc("/price-changes", h.GetPriceChanges).Methods("GET")
	apiV1.HandleFunc("/price-changes/{id}/process", h.MarkPriceChangeProcessed).Methods("POST")
	apiV1.HandleFunc("/monitor/run", h.TriggerMonitorRun).Methods("POST")
	apiV1.HandleFunc("/monitor/tasks/{taskId}", h.GetMonitorTask).Methods("GET")
	apiV1.HandleFunc("/link/backfill", h.BackfillLinks).Methods("POST")

	// CORS configuration
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000"
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{allowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	host := os.Getenv("HOST")
	if host == "" {
		host = "0.0.0.0"
	}

	log.Printf("Server starting on port %s", port)
	log.Printf("   GET  /health - Health check")
	log.Printf("   GET  /api/v1/products?retailer= - Known products")
	log.Printf("   GET  /api/v1/sightings/unlinked?retailer= - Assessment queue")
	log.Printf("   GET  /api/v1/patterns - Learned retailer patterns")
	log.Printf("   GET  /api/v1/price-changes - Pending price change queue")
	log.Printf("   POST /api/v1/monitor/run - Trigger a monitor pass")
	log.Printf("   POST /api/v1/link/backfill - Re-link historical sightings")

	log.Fatal(http.ListenAndServe(host+":"+port, c.Handler(r)))
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"service":   "catlink",
		"status":    "healthy",
		"timestamp": time.Now(),
		"version":   "1.0.0",
	})
}
