// Package domain defines the core business entities of the storefront.
// These models are independent of the hosted backend and represent the
// canonical data structures used throughout the BFA.
package domain

import "time"

// ============================================================
// Profiles
// ============================================================

// Profile is the identity record attached to every auth user.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email,omitempty"`
	FullName  string    `json:"full_name,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// ============================================================
// Catalog
// ============================================================

// Category groups products. At most one level of nesting.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Icon      Icon      `json:"icon,omitempty"`
	ParentID  *string   `json:"parent_id"`
	CreatedAt time.Time `json:"created_at"`
}

// IsRoot reports whether the category has no parent.
func (c Category) IsRoot() bool {
	return c.ParentID == nil || *c.ParentID == ""
}

// DisplayIcon is the icon the sidebar renders for the category.
func (c Category) DisplayIcon() Icon {
	return c.Icon.Or(DefaultCategoryIcon)
}

// CategoryNode is a root category with its direct children.
type CategoryNode struct {
	Category
	Children []Category `json:"children"`
}

// ProductType distinguishes tools from courses.
type ProductType string

const (
	ProductTypeTool   ProductType = "tool"
	ProductTypeCourse ProductType = "course"
)

// Valid reports whether t is a known product type.
func (t ProductType) Valid() bool {
	return t == ProductTypeTool || t == ProductTypeCourse
}

// ProductSource distinguishes in-house products from affiliate links.
type ProductSource string

const (
	ProductSourceOwn       ProductSource = "own"
	ProductSourceAffiliate ProductSource = "affiliate"
)

// Valid reports whether s is a known product source.
func (s ProductSource) Valid() bool {
	return s == ProductSourceOwn || s == ProductSourceAffiliate
}

// MaxProductFeatures caps the highlight list shown on the product card.
const MaxProductFeatures = 4

// Feature is one highlight on a product page.
type Feature struct {
	Icon     Icon   `json:"icon"`
	Title    string `json:"title" validate:"required,max=80"`
	Subtitle string `json:"subtitle" validate:"max=160"`
}

// Product is a catalog entry. Only active products are public.
type Product struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Type        ProductType   `json:"type"`
	Source      ProductSource `json:"source"`
	CTALink     string        `json:"cta_link"`
	ImageURL    string        `json:"image_url"`
	CategoryID  *string       `json:"category_id"`
	IsActive    bool          `json:"is_active"`
	IsFeatured  bool          `json:"is_featured"`
	Features    []Feature     `json:"features"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   *time.Time    `json:"updated_at,omitempty"`
	Category    *Category     `json:"category,omitempty"`
}

// ============================================================
// Ads
// ============================================================

// AdPosition is a fixed placement slot on the home page.
type AdPosition int

const (
	AdPositionHeroSide AdPosition = 0
	AdPositionMidFeed  AdPosition = 1
)

// Valid reports whether p is a known slot.
func (p AdPosition) Valid() bool {
	return p == AdPositionHeroSide || p == AdPositionMidFeed
}

// MaxPublicAds is the number of slots the home page renders.
const MaxPublicAds = 2

// Ad is a promotional card. At most one active ad per position.
type Ad struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	ImageURL    string     `json:"image_url"`
	CTALink     string     `json:"cta_link"`
	IsActive    bool       `json:"is_active"`
	Position    AdPosition `json:"position"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ============================================================
// Site settings
// ============================================================

// SiteSettingsID is the fixed id of the singleton settings row.
const SiteSettingsID = "global"

// SiteSettings holds site-wide branding.
type SiteSettings struct {
	ID              string    `json:"id"`
	SiteName        string    `json:"site_name"`
	SiteDescription string    `json:"site_description"`
	LogoURL         string    `json:"logo_url"`
	FaviconURL      string    `json:"favicon_url"`
	PrimaryColor    string    `json:"primary_color"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ============================================================
// Admin dashboard
// ============================================================

// Dashboard is everything the back office renders on load.
type Dashboard struct {
	Actor      Actor          `json:"actor"`
	Products   []Product      `json:"products"`
	Categories []CategoryNode `json:"categories"`
	Ads        []Ad           `json:"ads"`
	Profiles   []Profile      `json:"profiles"`
	Settings   *SiteSettings  `json:"settings"`
}
