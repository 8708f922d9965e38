package monitor

import (
	"database/sql"
	"fmt"
	"log"
	"sort"

	"github.com/robfig/cron/v3"

	"catlink/config"
	"catlink/linkage"
	"catlink/models"
)

// Scraper is the upstream collaborator that yields catalog sightings
type Scraper interface {
	ScrapeCatalog(cfg *config.RetailerConfig, category string) ([]models.ScrapedProduct, error)
}

// SightingStore is the persistence surface for catalog sightings
type SightingStore interface {
	SaveSighting(s *models.CatalogSighting) (*models.CatalogSighting, error)
	UpdateLinkage(sightingID int, productURL string, confidence float64, method string) error
	GetUnlinkedSightings(retailer string, limit int) ([]models.CatalogSighting, error)
}

// CatalogMonitor drives the scrape, snapshot-save, link, price-check cycle for
// each configured retailer/category, on a cron schedule or on demand.
type CatalogMonitor struct {
	cron      *cron.Cron
	schedule  string
	onStartup bool

	scraper   Scraper
	sightings SightingStore
	engine    *linkage.Engine
	learner   *linkage.Learner
	detector  *PriceDetector
	retailers map[string]*config.RetailerConfig
}

// NewCatalogMonitor wires the monitor together
func NewCatalogMonitor(
	appCfg *config.AppConfig,
	retailers map[string]*config.RetailerConfig,
	scraper Scraper,
	sightings SightingStore,
	engine *linkage.Engine,
	learner *linkage.Learner,
	detector *PriceDetector,
) *CatalogMonitor {
	return &CatalogMonitor{
		cron:      cron.New(cron.WithSeconds()),
		schedule:  appCfg.MonitorSchedule,
		onStartup: appCfg.MonitorOnStartup,
		scraper:   scraper,
		sightings: sightings,
		engine:    engine,
		learner:   learner,
		detector:  detector,
		retailers: retailers,
	}
}

// Start schedules recurring monitor passes over all retailers
func (m *CatalogMonitor) Start() {
	_, err := m.cron.AddFunc(m.schedule, m.RunAll)
	if err != nil {
		log.Printf("Failed to schedule catalog monitor: %v", err)
		return
	}

	if m.onStartup {
		go m.RunAll()
	}

	m.cron.Start()
	log.Printf("Catalog monitor scheduled (%s)", m.schedule)
}

// Stop stops the scheduled monitoring
func (m *CatalogMonitor) Stop() {
	if m.cron != nil {
		m.cron.Stop()
	}
}

// RunAll runs one monitor pass over every configured retailer/category in a
// stable order, so learned-pattern updates reflect a consistent sequence
func (m *CatalogMonitor) RunAll() {
	log.Println("Starting catalog monitor pass for all retailers")

	names := make([]string, 0, len(m.retailers))
	for name := range m.retailers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cfg := m.retailers[name]
		categories := make([]string, 0, len(cfg.CategoryURLs))
		for category := range cfg.CategoryURLs {
			categories = append(categories, category)
		}
		sort.Strings(categories)

		for _, category := range categories {
			if _, err := m.RunOnce(name, category); err != nil {
				log.Printf("Monitor run failed for %s/%s: %v", name, category, err)
			}
		}
	}
}

// RunOnce runs the full cycle for one retailer/category:
// SCRAPE -> SNAPSHOT_SAVE -> LINK_EACH -> PRICE_CHECK_LINKED -> DONE.
// A scrape failure aborts the run. Snapshot-save and per-sighting linkage
// failures are logged and do not block the remaining sightings.
func (m *CatalogMonitor) RunOnce(retailer, category string) (*models.MonitorRunResult, error) {
	cfg, ok := m.retailers[retailer]
	if !ok {
		return nil, fmt.Errorf("unknown retailer %q", retailer)
	}

	scraped, err := m.scraper.ScrapeCatalog(cfg, category)
	if err != nil {
		return nil, fmt.Errorf("failed to scrape %s/%s: %v", retailer, category, err)
	}

	result := &models.MonitorRunResult{
		Retailer: retailer,
		Category: category,
		Scraped:  len(scraped),
	}

	// Sightings are processed in discovery order; linkage metadata and
	// learner updates follow one sighting at a time.
	var linked []models.CatalogSighting
	for i := range scraped {
		sighting := sightingFromScrape(&scraped[i], retailer, category)

		saved, err := m.sightings.SaveSighting(sighting)
		if err != nil {
			log.Printf("Failed to save sighting %s: %v", sighting.CatalogURL, err)
			continue
		}
		result.Saved++

		match, err := m.linkSighting(saved)
		if err != nil {
			log.Printf("Linkage failed for sighting %d (%s): %v", saved.ID, saved.CatalogURL, err)
			result.LinkFailures++
			continue
		}
		if match == nil {
			result.Unlinked++
			continue
		}

		result.Linked++
		linked = append(linked, *saved)
	}

	result.PriceChanges = m.detector.Detect(linked, retailer)

	log.Printf("Monitor run %s/%s done: scraped=%d saved=%d linked=%d unlinked=%d price_changes=%d",
		retailer, category, result.Scraped, result.Saved, result.Linked, result.Unlinked, result.PriceChanges)
	return result, nil
}

// linkSighting runs the engine for one saved sighting, records the learning
// attempt, and writes the decision back onto the sighting row. It mutates the
// passed sighting's linkage fields on success. A nil result with a nil error
// is a clean no-match; an error means the product store was unavailable and
// no learning attempt was recorded.
func (m *CatalogMonitor) linkSighting(s *models.CatalogSighting) (*linkage.MatchResult, error) {
	match, err := m.engine.Match(s)
	if err != nil {
		return nil, err
	}

	if match == nil {
		m.learner.RecordLinkingAttempt(s.Retailer, "none", false, 0, false)
		return nil, nil
	}

	urlChanged := s.CatalogURL != match.ProductURL
	m.learner.RecordLinkingAttempt(s.Retailer, match.Method, true, match.Confidence, urlChanged)

	if err := m.sightings.UpdateLinkage(s.ID, match.ProductURL, match.Confidence, match.Method); err != nil {
		log.Printf("Failed to record linkage for sighting %d: %v", s.ID, err)
	}
	s.LinkedProductURL = sql.NullString{String: match.ProductURL, Valid: true}
	s.LinkConfidence = sql.NullFloat64{Float64: match.Confidence, Valid: true}
	s.LinkMethod = sql.NullString{String: match.Method, Valid: true}

	return match, nil
}

// BackfillLinks re-runs linkage over a retailer's historical unlinked
// sightings, typically after the product store has grown or the retailer's
// learned pattern has shifted. Returns how many sightings got linked.
func (m *CatalogMonitor) BackfillLinks(retailer string, limit int) (int, error) {
	if _, ok := m.retailers[retailer]; !ok {
		return 0, fmt.Errorf("unknown retailer %q", retailer)
	}

	unlinked, err := m.sightings.GetUnlinkedSightings(retailer, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to load unlinked sightings: %v", err)
	}

	relinked := 0
	for i := range unlinked {
		match, err := m.linkSighting(&unlinked[i])
		if err != nil {
			log.Printf("Backfill linkage failed for sighting %d: %v", unlinked[i].ID, err)
			continue
		}
		if match != nil {
			relinked++
		}
	}

	log.Printf("Backfill for %s: %d of %d sightings linked", retailer, relinked, len(unlinked))
	return relinked, nil
}

// sightingFromScrape builds a monitor-scan sighting row from one scraped product
func sightingFromScrape(p *models.ScrapedProduct, retailer, category string) *models.CatalogSighting {
	s := &models.CatalogSighting{
		CatalogURL: p.URL,
		Retailer:   retailer,
		Category:   category,
		Title:      p.Title,
		Price:      p.Price,
		ImageURLs:  p.ImageURLs,
		ScanType:   models.ScanTypeMonitor,
	}
	if p.ProductCode != "" {
		s.ProductCode = sql.NullString{String: p.ProductCode, Valid: true}
	}
	return s
}
