package api

// LoginRequest is the JSON body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse is returned from POST /auth/login and GET /auth/session.
// It carries the session snapshot taken at login or rehydration time, which
// may lag behind later edits to the underlying record.
type SessionResponse struct {
	UserID int    `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

// ForgotPasswordRequest is the JSON body for POST /auth/forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPasswordResponse is returned from POST /auth/forgot-password. The
// message is identical whether or not the account exists.
type ForgotPasswordResponse struct {
	Message string `json:"message"`
}

// UserRequest is the JSON body for POST /users and PUT /users/{userID}.
// On create, Password is the raw credential. On update, Password may carry a
// new raw credential, the unchanged stored hash, or be empty to keep the
// current hash.
type UserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Role     string `json:"role"`
	Status   string `json:"status,omitempty"`
}

// UserSummary describes one user record. Credential hashes are never
// included in responses.
type UserSummary struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

// ListUsersResponse is returned from GET /users.
type ListUsersResponse struct {
	Users []UserSummary `json:"users"`
}

// ErrorResponse is returned for all error cases.
type ErrorResponse struct {
	Error string `json:"error"`
}
