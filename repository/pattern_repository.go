package repository

import (
	"database/sql"
	"fmt"
	"time"

	"catlink/database"
	"catlink/models"
)

type PatternRepository struct{}

func NewPatternRepository() *PatternRepository {
	return &PatternRepository{}
}

// GetPattern returns the learned URL pattern row for a retailer, or nil when
// the retailer has not seen a linkage attempt yet
func (r *PatternRepository) GetPattern(retailer string) (*models.RetailerURLPattern, error) {
	query := `
		SELECT retailer, url_stability_score, sample_size, best_dedup_method,
			dedup_confidence_threshold, url_changes_detected, last_measured, notes
		FROM retailer_url_patterns
		WHERE retailer = $1
	`

	var p models.RetailerURLPattern
	var method sql.NullString
	err := database.DB.QueryRow(query, retailer).Scan(
		&p.Retailer, &p.URLStabilityScore, &p.SampleSize, &method,
		&p.DedupConfidenceThreshold, &p.URLChangesDetected, &p.LastMeasured, &p.Notes,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get retailer pattern: %v", err)
	}
	if method.Valid {
		p.BestDedupMethod = method.String
	}

	return &p, nil
}

// SavePattern inserts or replaces the learned pattern row for a retailer
func (r *PatternRepository) SavePattern(p *models.RetailerURLPattern) error {
	query := `
		INSERT INTO retailer_url_patterns
			(retailer, url_stability_score, sample_size, best_dedup_method,
			 dedup_confidence_threshold, url_changes_detected, last_measured, notes)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8)
		ON CONFLICT (retailer) DO UPDATE SET
			url_stability_score = EXCLUDED.url_stability_score,
			sample_size = EXCLUDED.sample_size,
			best_dedup_method = EXCLUDED.best_dedup_method,
			dedup_confidence_threshold = EXCLUDED.dedup_confidence_threshold,
			url_changes_detected = EXCLUDED.url_changes_detected,
			last_measured = EXCLUDED.last_measured,
			notes = EXCLUDED.notes
	`

	_, err := database.DB.Exec(query,
		p.Retailer, p.URLStabilityScore, p.SampleSize, p.BestDedupMethod,
		p.DedupConfidenceThreshold, p.URLChangesDetected, time.Now(), p.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to save retailer pattern: %v", err)
	}

	return nil
}

// GetAllPatterns returns the learned pattern rows for every retailer
func (r *PatternRepository) GetAllPatterns() ([]models.RetailerURLPattern, error) {
	query := `
		SELECT retailer, url_stability_score, sample_size, best_dedup_method,
			dedup_confidence_threshold, url_changes_detected, last_measured, notes
		FROM retailer_url_patterns
		ORDER BY retailer ASC
	`

	rows, err := database.DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get retailer patterns: %v", err)
	}
	defer rows.Close()

	var patterns []models.RetailerURLPattern
	for rows.Next() {
		var p models.RetailerURLPattern
		var method sql.NullString
		err := rows.Scan(
			&p.Retailer, &p.URLStabilityScore, &p.SampleSize, &method,
			&p.DedupConfidenceThreshold, &p.URLChangesDetected, &p.LastMeasured, &p.Notes,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan retailer pattern: %v", err)
		}
		if method.Valid {
			p.BestDedupMethod = method.String
		}
		patterns = append(patterns, p)
	}

	return patterns, nil
}
