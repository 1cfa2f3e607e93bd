package domain

import "github.com/shopspring/decimal"

type Venue struct {
	Name  string `json:"name"`
	City  string `json:"city"`
	State string `json:"state"`
}

type Category struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Organizer struct {
	Name    string  `json:"name"`
	Slug    string  `json:"slug"`
	LogoURL *string `json:"logo_url"`
}

type TicketTier struct {
	ID                int64           `json:"id"`
	EventID           int64           `json:"event_id"`
	BatchID           *int64          `json:"batch_id"`
	Name              string          `json:"name"`
	Description       *string         `json:"description"`
	Price             decimal.Decimal `json:"price"`
	OriginalPrice     *string         `json:"original_price"`
	MaxPerOrder       int             `json:"max_per_order"`
	TotalQuantity     int             `json:"total_quantity"`
	SoldQuantity      int             `json:"sold_quantity"`
	AvailableQuantity int             `json:"available_quantity"`
	StartsAt          *string         `json:"starts_at"`
	EndsAt            *string         `json:"ends_at"`
	IsVisible         bool            `json:"is_visible"`
	IsActive          bool            `json:"is_active"`
	IsHalfPrice       bool            `json:"is_half_price"`
	OnlineEnabled     bool            `json:"online_enabled"`
	SortOrder         int             `json:"sort_order"`
}

// Purchasable reports whether the tier can be sold online right now.
func (t TicketTier) Purchasable() bool {
	return t.IsActive && t.IsVisible && t.OnlineEnabled && t.AvailableQuantity > 0
}

type Event struct {
	ID               int64        `json:"id"`
	Name             string       `json:"name"`
	Slug             string       `json:"slug"`
	Description      *string      `json:"description"`
	ShortDescription *string      `json:"short_description"`
	CoverImageURL    *string      `json:"cover_image_url"`
	BannerImageURL   *string      `json:"banner_image_url"`
	StartsAt         string       `json:"starts_at"`
	EndsAt           string       `json:"ends_at"`
	DoorsOpenAt      *string      `json:"doors_open_at"`
	Venue            Venue        `json:"venue"`
	IsOnline         bool         `json:"is_online"`
	AgeRating        *string      `json:"age_rating"`
	IsFeatured       bool         `json:"is_featured"`
	MinPrice         *float64     `json:"min_price"`
	Lineup           []string     `json:"lineup"`
	Category         *Category    `json:"category,omitempty"`
	Organizer        *Organizer   `json:"organizer,omitempty"`
	TicketTiers      []TicketTier `json:"ticket_tiers,omitempty"`
}

// Tier looks up a ticket tier by id.
func (e Event) Tier(id int64) (TicketTier, error) {
	for _, t := range e.TicketTiers {
		if t.ID == id {
			return t, nil
		}
	}
	return TicketTier{}, ErrTierNotFound
}

type EventFilter struct {
	Search    string
	Category  string
	City      string
	PerPage   int
	Page      int
	Sort      string
	Direction string
}

type PageLinks struct {
	First *string `json:"first"`
	Last  *string `json:"last"`
	Prev  *string `json:"prev"`
	Next  *string `json:"next"`
}

type PageMeta struct {
	CurrentPage int  `json:"current_page"`
	From        *int `json:"from"`
	LastPage    int  `json:"last_page"`
	PerPage     int  `json:"per_page"`
	To          *int `json:"to"`
	Total       int  `json:"total"`
}

type EventPage struct {
	Data  []Event   `json:"data"`
	Links PageLinks `json:"links"`
	Meta  PageMeta  `json:"meta"`
}
