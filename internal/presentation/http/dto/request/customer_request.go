package request

// CreateCustomerRequest represents a customer creation request
type CreateCustomerRequest struct {
	Name             string   `json:"name" binding:"required,min=2,max=255"`
	Email            *string  `json:"email" binding:"omitempty,email"`
	Phone            *string  `json:"phone" binding:"omitempty,min=7,max=20"`
	Address          *string  `json:"address"`
	Notes            *string  `json:"notes"`
	Tags             []string `json:"tags" binding:"max=20,dive,max=50"`
	AcceptsMarketing bool     `json:"accepts_marketing"`
}

// UpdateCustomerRequest represents a customer update request
type UpdateCustomerRequest struct {
	Name             *string   `json:"name" binding:"omitempty,min=2,max=255"`
	Email            *string   `json:"email" binding:"omitempty,email"`
	Phone            *string   `json:"phone" binding:"omitempty,min=7,max=20"`
	Address          *string   `json:"address"`
	Notes            *string   `json:"notes"`
	Tags             *[]string `json:"tags" binding:"omitempty,max=20,dive,max=50"`
	AcceptsMarketing *bool     `json:"accepts_marketing"`
}

// AdjustPointsRequest adds or removes points by hand
type AdjustPointsRequest struct {
	Points int64  `json:"points" binding:"required"`
	Reason string `json:"reason" binding:"required,max=255"`
}
