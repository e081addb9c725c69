package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type credentialsRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=1024"`
}

type createPostRequest struct {
	Content string `json:"content" validate:"required"`
}

// --- Response types ---

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type registerResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type createPostResponse struct {
	ID int64 `json:"id"`
}

type accountResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}

type postSummaryResponse struct {
	ID       int64  `json:"id"`
	Content  string `json:"content"`
	Username string `json:"username"`
}

type feedResponse struct {
	Items         []postSummaryResponse `json:"items"`
	Page          int                   `json:"page"`
	PageSize      int                   `json:"page_size"`
	TotalPages    int                   `json:"total_pages"`
	TotalElements int                   `json:"total_elements"`
	TotalItems    int64                 `json:"total_items"`
}
