package reporting

import "time"

// StockLevel is one row of the inventory report: available units of one
// blood type and component.
type StockLevel struct {
	BloodType string `db:"blood_type" json:"blood_type"`
	Component string `db:"component" json:"component"`
	Units     int    `db:"units" json:"units"`
	VolumeML  int    `db:"volume_ml" json:"volume_ml"`
}

// StockReport is the full shelf picture at GeneratedAt.
type StockReport struct {
	Levels      []StockLevel `json:"levels"`
	TotalUnits  int          `json:"total_units"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// Summary aggregates bank activity for the dashboard.
type Summary struct {
	Donors            int       `json:"donors"`
	DonationsThisWeek int       `json:"donations_this_week"`
	AvailableUnits    int       `json:"available_units"`
	ExpiringUnits     int       `json:"expiring_units"`
	PendingRequests   int       `json:"pending_requests"`
	CriticalRequests  int       `json:"critical_requests"`
	GeneratedAt       time.Time `json:"generated_at"`
}
