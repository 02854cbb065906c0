// AngelaMos | 2026
// entity.go

package office

import (
	"time"

	"github.com/carterperez-dev/airline-directory/internal/workflow"
)

type Office struct {
	ID              string          `db:"id"`
	Slug            string          `db:"slug"`
	AirlineID       string          `db:"airline_id"`
	AirlineName     string          `db:"airline_name"`
	City            string          `db:"city"`
	Country         string          `db:"country"`
	Address         string          `db:"address"`
	Phone           string          `db:"phone"`
	Email           string          `db:"email"`
	Hours           string          `db:"hours"`
	Image           string          `db:"image"`
	Logo            string          `db:"logo"`
	Latitude        *float64        `db:"latitude"`
	Longitude       *float64        `db:"longitude"`
	Rating          float64         `db:"rating"`
	Status          workflow.Status `db:"status"`
	Verified        bool            `db:"verified"`
	RejectionReason string          `db:"rejection_reason"`
	SubmittedBy     *string         `db:"submitted_by"`
	ReviewedBy      *string         `db:"reviewed_by"`
	ReviewedAt      *time.Time      `db:"reviewed_at"`
	LastUpdated     time.Time       `db:"last_updated"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

func (o *Office) WorkflowStatus() workflow.Status {
	return o.Status
}

func (o *Office) SubmittedByUser(userID string) bool {
	return o.SubmittedBy != nil && *o.SubmittedBy == userID
}

func (o *Office) HasCoordinates() bool {
	return o.Latitude != nil && o.Longitude != nil
}

type StatusCount struct {
	Status workflow.Status `db:"status" json:"status"`
	Count  int             `db:"count"  json:"count"`
}

type CountryCount struct {
	Country string `db:"country" json:"country"`
	Count   int    `db:"count"   json:"count"`
}

type Stats struct {
	Total         int            `json:"total"`
	ByStatus      map[string]int `json:"by_status"`
	Verified      int            `json:"verified"`
	AverageRating float64        `json:"average_rating"`
	TopCountries  []CountryCount `json:"top_countries"`
}
