package catalogservice

// Provider модель провайдера из CatalogService
type Provider struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Timezone   string `json:"timezone"`
	IsActive   bool   `json:"is_active"`
	OwnerID    int64  `json:"owner_id"`
	ReferrerID *int64 `json:"referrer_id,omitempty"`
}

// Service модель услуги из CatalogService
type Service struct {
	ID                  int64    `json:"id"`
	ProviderID          int64    `json:"provider_id"`
	Name                string   `json:"name"`
	DurationMinutes     int      `json:"duration_minutes"`
	BufferBeforeMinutes int      `json:"buffer_before_minutes"`
	BufferAfterMinutes  int      `json:"buffer_after_minutes"`
	Price               float64  `json:"price"`
	Capacity            *int     `json:"capacity,omitempty"`
	ReferralPercent     *float64 `json:"referral_percent,omitempty"`
	IsActive            bool     `json:"is_active"`
}

// StaffMember модель сотрудника из CatalogService
type StaffMember struct {
	ID         int64  `json:"id"`
	ProviderID int64  `json:"provider_id"`
	Name       string `json:"name"`
	IsActive   bool   `json:"is_active"`
}

// ErrorResponse модель ошибки от CatalogService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
