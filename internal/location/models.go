package location

import "time"

type Location struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	RadiusM   float64   `json:"radius_m"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// LocationUpdate is a partial update. Active is a pointer so an omitted
// flag leaves the stored value alone.
type LocationUpdate struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	RadiusM float64 `json:"radius_m"`
	Active  *bool   `json:"active"`
}
