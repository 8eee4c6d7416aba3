package domain

// Identity is the caller as asserted by the identity provider.
type Identity struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// Profile is the /me payload.
type Profile struct {
	Identity
	IsAdmin bool `json:"is_admin"`
}

// User is an identity provider account as listed to admins.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	CreatedAt    int64  `json:"created_at"`
	LastSignInAt *int64 `json:"last_sign_in_at,omitempty"`
	IsAdmin      bool   `json:"is_admin"`
	ReviewCount  int    `json:"review_count"`
}
