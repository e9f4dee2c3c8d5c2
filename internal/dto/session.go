package dto

// LoginRequest starts an employee session.
type LoginRequest struct {
	Email string `form:"email" binding:"required,email"`
}

// ErrorResponse is the JSON body of a failed API call.
type ErrorResponse struct {
	Error string `json:"error"`
}
