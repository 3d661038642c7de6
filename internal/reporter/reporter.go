package reporter

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"crosshair/internal/config"
	"crosshair/internal/database"
	"crosshair/internal/models"
)

// NoMonitor marks a diagnostic that is not tied to a display
const NoMonitor = -1

// Reporter is the diagnostic stream for non-fatal failures. Every report is
// logged and, when the store is available, recorded for the end-of-run
// summary.
type Reporter struct {
	db   *database.DB
	repo *database.Repository
}

// New creates a reporter backed by the run-scoped diagnostics store. A store
// that cannot be opened degrades to log-only reporting.
func New(cfg *config.Config) *Reporter {
	db, err := database.Connect(cfg.Diagnostics.DSN)
	if err != nil {
		log.Printf("Diagnostics store unavailable, logging only: %v", err)
		return &Reporter{}
	}

	if err := db.Initialize(); err != nil {
		log.Printf("Diagnostics store unavailable, logging only: %v", err)
		db.Close()
		return &Reporter{}
	}

	return &Reporter{db: db, repo: database.NewRepository(db)}
}

// Report writes a non-fatal failure to the diagnostic stream
func (r *Reporter) Report(kind string, monitor int, err error) {
	if err == nil {
		return
	}

	diag := &models.Diagnostic{
		Timestamp: time.Now(),
		Kind:      kind,
		Monitor:   monitor,
		ErrorMsg:  err.Error(),
	}
	log.Print(FormatDiagnostic(diag))

	if r.repo == nil {
		return
	}
	if dbErr := r.repo.CreateDiagnostic(diag); dbErr != nil {
		log.Printf("Failed to store diagnostic: %v (original error: %v)", dbErr, err)
	}
}

// Summary returns the number of diagnostics recorded per kind
func (r *Reporter) Summary() (map[string]int64, error) {
	summary := make(map[string]int64)
	if r.repo == nil {
		return summary, nil
	}

	counts, err := r.repo.CountByKind()
	if err != nil {
		return nil, fmt.Errorf("failed to summarize diagnostics: %w", err)
	}
	for _, c := range counts {
		summary[c.Kind] = c.Count
	}
	return summary, nil
}

// Diagnostics returns the recorded diagnostics in report order
func (r *Reporter) Diagnostics() ([]*models.Diagnostic, error) {
	if r.repo == nil {
		return nil, nil
	}

	diags, err := r.repo.ListDiagnostics()
	if err != nil {
		return nil, fmt.Errorf("failed to list diagnostics: %w", err)
	}
	return diags, nil
}

// FormatDiagnostic renders one diagnostic as a log line
func FormatDiagnostic(d *models.Diagnostic) string {
	if d.Monitor == NoMonitor {
		return fmt.Sprintf("[%s] %s", d.Kind, d.ErrorMsg)
	}
	return fmt.Sprintf("[%s] monitor %d: %s", d.Kind, d.Monitor, d.ErrorMsg)
}

// FormatSummary renders a summary as a single log line
func FormatSummary(summary map[string]int64) string {
	if len(summary) == 0 {
		return "no non-fatal errors"
	}

	kinds := make([]string, 0, len(summary))
	for kind := range summary {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	parts := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		parts = append(parts, fmt.Sprintf("%s=%d", kind, summary[kind]))
	}
	return strings.Join(parts, ", ")
}

// Close releases the diagnostics store
func (r *Reporter) Close() error {
	if r.db == nil {
		return nil
	}
	db := r.db
	r.db = nil
	r.repo = nil
	return db.Close()
}
