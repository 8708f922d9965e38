package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"catlink/models"
	"catlink/monitor"
	"catlink/repository"
)

// Handlers bundles the HTTP operator surface: catalog inspection, the
// assessment queue of unlinked sightings, learned retailer patterns, the
// price change queue, and on-demand monitor runs.
type Handlers struct {
	productRepo  *repository.ProductRepository
	sightingRepo *repository.SightingRepository
	patternRepo  *repository.PatternRepository
	queueRepo    *repository.QueueRepository
	monitor      *monitor.CatalogMonitor
	tasks        *monitor.TaskManager
}

// NewHandlers creates the handler set
func NewHandlers(
	productRepo *repository.ProductRepository,
	sightingRepo *repository.SightingRepository,
	patternRepo *repository.PatternRepository,
	queueRepo *repository.QueueRepository,
	mon *monitor.CatalogMonitor,
	tasks *monitor.TaskManager,
) *Handlers {
	return &Handlers{
		productRepo:  productRepo,
		sightingRepo: sightingRepo,
		patternRepo:  patternRepo,
		queueRepo:    queueRepo,
		monitor:      mon,
		tasks:        tasks,
	}
}

// GetProducts returns the known products for a retailer
func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	retailer := r.URL.Query().Get("retailer")
	if retailer == "" {
		writeError(w, http.StatusBadRequest, "retailer query parameter is required")
		return
	}

	products, err := h.productRepo.GetProductsByRetailer(retailer)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get products")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"retailer": retailer,
		"count":    len(products),
		"products": products,
	})
}

// CreateProductRequest imports one product into the canonical store
type CreateProductRequest struct {
	URL         string   `json:"url"`
	Retailer    string   `json:"retailer"`
	Title       string   `json:"title"`
	Price       float64  `json:"price"`
	ProductCode string   `json:"product_code"`
	ImageURLs   []string `json:"image_urls"`
}

// CreateProduct imports a product, typically an assessed unlinked sighting
// being promoted to the canonical store
func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" || req.Retailer == "" || req.Title == "" {
		writeError(w, http.StatusBadRequest, "url, retailer, and title are required")
		return
	}

	p := &models.Product{
		URL:       req.URL,
		Retailer:  req.Retailer,
		Title:     req.Title,
		Price:     req.Price,
		ImageURLs: req.ImageURLs,
	}
	if req.ProductCode != "" {
		p.ProductCode = sql.NullString{String: req.ProductCode, Valid: true}
	}

	if err := h.productRepo.UpsertProduct(p); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save product")
		return
	}

	writeJSON(w, http.StatusCreated, p)
}

// GetUnlinkedSightings returns the assessment queue: sightings with no
// linkage decision, candidates for net-new product import
func (h *Handlers) GetUnlinkedSightings(w http.ResponseWriter, r *http.Request) {
	retailer := r.URL.Query().Get("retailer")
	if retailer == "" {
		writeError(w, http.StatusBadRequest, "retailer query parameter is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	sightings, err := h.sightingRepo.GetUnlinkedSightings(retailer, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get unlinked sightings")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"retailer":  retailer,
		"count":     len(sightings),
		"sightings": sightings,
	})
}

// GetRecentSightings returns a retailer's latest sightings with their linkage decisions
func (h *Handlers) GetRecentSightings(w http.ResponseWriter, r *http.Request) {
	retailer := r.URL.Query().Get("retailer")
	if retailer == "" {
		writeError(w, http.StatusBadRequest, "retailer query parameter is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	sightings, err := h.sightingRepo.GetRecentSightings(retailer, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get sightings")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"retailer":  retailer,
		"count":     len(sightings),
		"sightings": sightings,
	})
}

// GetPatterns returns the learned per-retailer linkage profiles
func (h *Handlers) GetPatterns(w http.ResponseWriter, r *http.Request) {
	patterns, err := h.patternRepo.GetAllPatterns()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get retailer patterns")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(patterns),
		"patterns": patterns,
	})
}

// GetPriceChanges returns unprocessed price change queue entries
func (h *Handlers) GetPriceChanges(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	changes, err := h.queueRepo.GetPendingChanges(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get price changes")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(changes),
		"changes": changes,
	})
}

// MarkPriceChangeProcessed flags a queue entry as consumed
func (h *Handlers) MarkPriceChangeProcessed(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid price change ID")
		return
	}

	if err := h.queueRepo.MarkProcessed(id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":        id,
		"processed": true,
	})
}

// MonitorRunRequest asks for one on-demand monitor pass
type MonitorRunRequest struct {
	Retailer string `json:"retailer"`
	Category string `json:"category"`
}

// TriggerMonitorRun queues an async monitor run and returns its task
func (h *Handlers) TriggerMonitorRun(w http.ResponseWriter, r *http.Request) {
	var req MonitorRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Retailer == "" || req.Category == "" {
		writeError(w, http.StatusBadRequest, "retailer and category are required")
		return
	}

	task := h.tasks.SubmitRun(req.Retailer, req.Category)
	if task.Status == models.TaskStatusFailed {
		writeError(w, http.StatusServiceUnavailable, task.Error)
		return
	}

	writeJSON(w, http.StatusAccepted, task)
}

// GetMonitorTask returns the status of an async monitor run
func (h *Handlers) GetMonitorTask(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	task, exists := h.tasks.GetTask(vars["taskId"])
	if !exists {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// BackfillRequest asks for a linkage backfill over historical unlinked sightings
type BackfillRequest struct {
	Retailer string `json:"retailer"`
	Limit    int    `json:"limit"`
}

// BackfillLinks re-runs linkage over a retailer's unlinked sightings
func (h *Handlers) BackfillLinks(w http.ResponseWriter, r *http.Request) {
	var req BackfillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Retailer == "" {
		writeError(w, http.StatusBadRequest, "retailer is required")
		return
	}

	relinked, err := h.monitor.BackfillLinks(req.Retailer, req.Limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"retailer": req.Retailer,
		"relinked": relinked,
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
