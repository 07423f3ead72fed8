package validation

import "tavola/internal/models"

// CreatePayment validates an Open Banking payment request. The messages
// match the API contract exactly, so keep them in sync with the handlers.
func (v *Validator) CreatePayment(req *models.CreatePaymentRequest) {
	if req.Amount <= 0 {
		v.AddError("amount", "Invalid amount")
	}
	if req.BankID == "" {
		v.AddError("bankId", "Bank selection is required")
	}
	if req.CustomerDetails.Email != "" {
		v.Email("customerDetails.email", req.CustomerDetails.Email)
	}
}

// MenuItem validates an admin menu-item create/update payload.
func (v *Validator) MenuItem(item *models.MenuItem) {
	v.Required("name", item.Name)
	v.Positive("price", item.Price)
}

// Contact validates a contact form submission.
func (v *Validator) Contact(msg *models.ContactMessage) {
	v.Required("name", msg.Name)
	v.Required("message", msg.Message)
	v.Required("email", msg.Email)
	if msg.Email != "" {
		v.Email("email", msg.Email)
	}
}
