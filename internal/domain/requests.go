package domain

// ============================================================
// Console form payloads
// ============================================================

// ProductInput is the product form. ID is empty when creating.
type ProductInput struct {
	ID          string        `json:"id,omitempty"`
	Title       string        `json:"title" validate:"required,max=160"`
	Description string        `json:"description"`
	Type        ProductType   `json:"type" validate:"product_type"`
	Source      ProductSource `json:"source" validate:"product_source"`
	CTALink     string        `json:"cta_link" validate:"omitempty,url"`
	ImageURL    string        `json:"image_url" validate:"omitempty,url"`
	CategoryID  string        `json:"category_id"`
	IsActive    bool          `json:"is_active"`
	IsFeatured  bool          `json:"is_featured"`
	Features    []Feature     `json:"features" validate:"max=4,dive"`
}

// BulkAction is applied to a selection of products.
type BulkAction string

const (
	BulkActivate   BulkAction = "activate"
	BulkDeactivate BulkAction = "deactivate"
	BulkDelete     BulkAction = "delete"
)

// BulkProductsRequest applies one action to many products.
type BulkProductsRequest struct {
	Action BulkAction `json:"action" validate:"required,oneof=activate deactivate delete"`
	IDs    []string   `json:"ids" validate:"dive,required"`
}

// CategoryInput is the category form. An empty slug is derived from the name.
type CategoryInput struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name" validate:"required,max=80"`
	Slug     string `json:"slug" validate:"max=80"`
	Icon     Icon   `json:"icon"`
	ParentID string `json:"parent_id"`
}

// AdInput is the ad form.
type AdInput struct {
	ID          string     `json:"id,omitempty"`
	Title       string     `json:"title" validate:"required,max=120"`
	Description string     `json:"description" validate:"max=500"`
	ImageURL    string     `json:"image_url" validate:"omitempty,url"`
	CTALink     string     `json:"cta_link" validate:"omitempty,url"`
	IsActive    bool       `json:"is_active"`
	Position    AdPosition `json:"position" validate:"ad_position"`
}

// SettingsInput is the branding form.
type SettingsInput struct {
	SiteName        string `json:"site_name" validate:"required,max=80"`
	SiteDescription string `json:"site_description" validate:"max=300"`
	LogoURL         string `json:"logo_url" validate:"omitempty,url"`
	FaviconURL      string `json:"favicon_url" validate:"omitempty,url"`
	PrimaryColor    string `json:"primary_color" validate:"required,hexcolor,len=7"`
}

// InviteRequest is sent to the invite function.
type InviteRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required,max=120"`
	Role     Role   `json:"role" validate:"invite_role"`
}

// InviteResult is what the invite function reports on success.
type InviteResult struct {
	Message string `json:"message"`
	UserID  string `json:"user_id,omitempty"`
}

// ============================================================
// Session
// ============================================================

// SignInRequest is an email/password sign-in.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// PasswordResetRequest asks the auth service to email a recovery link.
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// PasswordUpdateRequest sets a new password for the signed-in user.
type PasswordUpdateRequest struct {
	Password string `json:"password" validate:"required,min=6"`
}

// AuthUser is the auth-service view of a user.
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is an auth session issued by the backend.
type Session struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	TokenType    string   `json:"token_type"`
	ExpiresIn    int      `json:"expires_in"`
	User         AuthUser `json:"user"`
}

// SessionInfo describes the signed-in user and their effective tier.
type SessionInfo struct {
	User    AuthUser `json:"user"`
	Profile *Profile `json:"profile,omitempty"`
	Role    Role     `json:"role"`
}
