package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/oakandbeam/renoflow/internal/models"
)

// nilIfEmpty returns nil if s is empty, otherwise returns s.
// Used for nullable database columns.
func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// scanLead scans a Lead from sql.Rows.
func scanLead(rows *sql.Rows) (models.Lead, error) {
	var l models.Lead
	var phone, email, projectType, roomType, timeline, budgetBand, scopeSummary sql.NullString
	var source, status string
	err := rows.Scan(
		&l.ID, &l.Name, &phone, &email, &projectType, &roomType, &timeline,
		&budgetBand, &scopeSummary, &source, &status, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return l, fmt.Errorf("scan lead failed: %w", err)
	}
	l.Phone = phone.String
	l.Email = email.String
	l.ProjectType = projectType.String
	l.RoomType = roomType.String
	l.Timeline = timeline.String
	l.BudgetBand = budgetBand.String
	l.ScopeSummary = scopeSummary.String
	l.Source = models.LeadSource(source)
	l.Status = models.LeadStatus(status)
	return l, nil
}

// scanLeadRow scans a Lead from a single sql.Row.
func scanLeadRow(row *sql.Row) (models.Lead, error) {
	var l models.Lead
	var phone, email, projectType, roomType, timeline, budgetBand, scopeSummary sql.NullString
	var source, status string
	err := row.Scan(
		&l.ID, &l.Name, &phone, &email, &projectType, &roomType, &timeline,
		&budgetBand, &scopeSummary, &source, &status, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return l, err
	}
	l.Phone = phone.String
	l.Email = email.String
	l.ProjectType = projectType.String
	l.RoomType = roomType.String
	l.Timeline = timeline.String
	l.BudgetBand = budgetBand.String
	l.ScopeSummary = scopeSummary.String
	l.Source = models.LeadSource(source)
	l.Status = models.LeadStatus(status)
	return l, nil
}

// scanVisualization scans a Visualization from sql.Rows.
func scanVisualization(rows *sql.Rows) (models.Visualization, error) {
	var v models.Visualization
	var roomType, style, changesJSON, summary, imageURL sql.NullString
	err := rows.Scan(&v.ID, &v.SessionID, &roomType, &style, &changesJSON, &summary, &imageURL, &v.CreatedAt)
	if err != nil {
		return v, fmt.Errorf("scan visualization failed: %w", err)
	}
	v.RoomType = roomType.String
	v.Style = style.String
	v.Summary = summary.String
	v.ImageURL = imageURL.String
	if changesJSON.String != "" {
		if err := json.Unmarshal([]byte(changesJSON.String), &v.DesiredChanges); err != nil {
			// Keep the record usable even if the changes column is mangled.
			v.DesiredChanges = nil
		}
	}
	return v, nil
}
