package domain

// Service is a bookable salon service.
type Service struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
	DurationMinutes int     `json:"durationMinutes,omitempty"`
	Active          bool    `json:"active"`
}

// Professional is a salon staff member that can be booked.
type Professional struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// Product is a retail product the salon sells.
type Product struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// BusinessHours describes a salon's opening hours as display text.
type BusinessHours struct {
	Weekdays string `json:"weekdays,omitempty"`
	Saturday string `json:"saturday,omitempty"`
	Sunday   string `json:"sunday,omitempty"`
}
