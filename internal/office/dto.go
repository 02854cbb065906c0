// AngelaMos | 2026
// dto.go

package office

import (
	"strings"
	"time"

	"github.com/carterperez-dev/airline-directory/internal/core"
	"github.com/carterperez-dev/airline-directory/internal/workflow"
)

type CreateOfficeRequest struct {
	AirlineID   string   `json:"airline_id"   validate:"required,notblank,max=64"`
	AirlineName string   `json:"airline_name" validate:"required,notblank,max=100"`
	City        string   `json:"city"         validate:"required,notblank,max=100"`
	Country     string   `json:"country"      validate:"required,notblank,max=100"`
	Address     string   `json:"address"      validate:"max=500"`
	Phone       string   `json:"phone"        validate:"max=50"`
	Email       string   `json:"email"        validate:"omitempty,email,max=255"`
	Hours       string   `json:"hours"        validate:"max=255"`
	Image       string   `json:"image"        validate:"max=500,uploadpath"`
	Logo        string   `json:"logo"         validate:"max=500,uploadpath"`
	Latitude    *float64 `json:"latitude"     validate:"omitempty,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude"    validate:"omitempty,gte=-180,lte=180"`
	Rating      *float64 `json:"rating"       validate:"omitempty,gte=0,lte=5"`
}

// UpdateOfficeRequest backs both PUT and PATCH. Absent fields keep their
// stored value.
type UpdateOfficeRequest struct {
	AirlineName *string  `json:"airline_name,omitempty" validate:"omitempty,notblank,max=100"`
	City        *string  `json:"city,omitempty"         validate:"omitempty,notblank,max=100"`
	Country     *string  `json:"country,omitempty"      validate:"omitempty,notblank,max=100"`
	Address     *string  `json:"address,omitempty"      validate:"omitempty,max=500"`
	Phone       *string  `json:"phone,omitempty"        validate:"omitempty,max=50"`
	Email       *string  `json:"email,omitempty"        validate:"omitempty,email,max=255"`
	Hours       *string  `json:"hours,omitempty"        validate:"omitempty,max=255"`
	Image       *string  `json:"image,omitempty"        validate:"omitempty,max=500,uploadpath"`
	Logo        *string  `json:"logo,omitempty"         validate:"omitempty,max=500,uploadpath"`
	Latitude    *float64 `json:"latitude,omitempty"     validate:"omitempty,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude,omitempty"    validate:"omitempty,gte=-180,lte=180"`
	Rating      *float64 `json:"rating,omitempty"       validate:"omitempty,gte=0,lte=5"`
	Verified    *bool    `json:"verified,omitempty"`
}

type RejectRequest struct {
	Reason string `json:"reason" validate:"max=1000"`
}

type ListParams struct {
	Page     int
	Limit    int
	Search   string
	Airline  string
	City     string
	Country  string
	Verified *bool
	Status   workflow.Status
}

func (p *ListParams) Normalize() {
	p.Page = min(max(p.Page, 1), core.MaxPage)
	if p.Limit < 1 {
		p.Limit = 10
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	p.Search = strings.TrimSpace(p.Search)
}

func (p *ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

type NearbyParams struct {
	Latitude    float64
	Longitude   float64
	MaxDistance float64
	Limit       int
}

func (p *NearbyParams) Normalize() {
	if p.MaxDistance <= 0 {
		p.MaxDistance = DefaultMaxDistance
	}
	if p.MaxDistance > MaxNearbyDistance {
		p.MaxDistance = MaxNearbyDistance
	}
	if p.Limit < 1 || p.Limit > 100 {
		p.Limit = 50
	}
}

type OfficeResponse struct {
	ID          string          `json:"id"`
	Slug        string          `json:"slug"`
	AirlineID   string          `json:"airline_id"`
	AirlineName string          `json:"airline_name"`
	City        string          `json:"city"`
	Country     string          `json:"country"`
	Address     string          `json:"address,omitempty"`
	Phone       string          `json:"phone,omitempty"`
	Email       string          `json:"email,omitempty"`
	Hours       string          `json:"hours,omitempty"`
	Image       string          `json:"image,omitempty"`
	Logo        string          `json:"logo,omitempty"`
	Latitude    *float64        `json:"latitude,omitempty"`
	Longitude   *float64        `json:"longitude,omitempty"`
	Rating      float64         `json:"rating"`
	Status      workflow.Status `json:"status"`
	Verified    bool            `json:"verified"`
	LastUpdated time.Time       `json:"last_updated"`
	CreatedAt   time.Time       `json:"created_at"`

	RejectionReason string     `json:"rejection_reason,omitempty"`
	SubmittedBy     *string    `json:"submitted_by,omitempty"`
	ReviewedBy      *string    `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`

	DistanceKm *float64 `json:"distance_km,omitempty"`
}

func ToPublicResponse(o *Office) OfficeResponse {
	return OfficeResponse{
		ID:          o.ID,
		Slug:        o.Slug,
		AirlineID:   o.AirlineID,
		AirlineName: o.AirlineName,
		City:        o.City,
		Country:     o.Country,
		Address:     o.Address,
		Phone:       o.Phone,
		Email:       o.Email,
		Hours:       o.Hours,
		Image:       o.Image,
		Logo:        o.Logo,
		Latitude:    o.Latitude,
		Longitude:   o.Longitude,
		Rating:      o.Rating,
		Status:      o.Status,
		Verified:    o.Verified,
		LastUpdated: o.LastUpdated,
		CreatedAt:   o.CreatedAt,
	}
}

// ToStaffResponse adds the review metadata shown to authenticated staff.
func ToStaffResponse(o *Office) OfficeResponse {
	resp := ToPublicResponse(o)
	resp.RejectionReason = o.RejectionReason
	resp.SubmittedBy = o.SubmittedBy
	resp.ReviewedBy = o.ReviewedBy
	resp.ReviewedAt = o.ReviewedAt
	return resp
}

func mapOffices(offices []Office, fn func(*Office) OfficeResponse) []OfficeResponse {
	out := make([]OfficeResponse, 0, len(offices))
	for i := range offices {
		out = append(out, fn(&offices[i]))
	}
	return out
}
