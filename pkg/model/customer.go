package model

// Customer is the sanitized contact block forwarded to the reservation
// collaborator. Field rules: name must contain at least two words, email must
// be RFC-shaped, phone must carry at least ten digits.
type Customer struct {
	Name  string `json:"name" validate:"required,two_words"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,min_digits=10"`
}
