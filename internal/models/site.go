package models

import "encoding/json"

type Widget struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Type     string          `json:"type"`
	Content  json.RawMessage `json:"content"`
	Position string          `json:"position"`
	Order    int             `json:"order"`
	IsActive bool            `json:"isActive"`
}

type PageMeta struct {
	Description string `json:"description,omitempty"`
	Keywords    string `json:"keywords,omitempty"`
	OGImage     string `json:"ogImage,omitempty"`
}

// Page content is markdown in the store and rendered to HTML when served.
type Page struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Content     string   `json:"content"`
	IsPublished bool     `json:"isPublished"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
	Meta        PageMeta `json:"meta"`
}

type Domain struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
	IsActive    bool   `json:"isActive"`
}

type Notification struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Date    string `json:"date"`
	IsRead  bool   `json:"isRead"`
	Type    string `json:"type"`
	Link    string `json:"link,omitempty"`
}

type User struct {
	ID         string   `json:"id"`
	Email      string   `json:"email"`
	Name       string   `json:"name,omitempty"`
	Avatar     string   `json:"avatar,omitempty"`
	IsAdmin    bool     `json:"isAdmin"`
	LikedPosts []string `json:"likedPosts"`
}

// Settings is the single settings.json object. AdminPassword holds a bcrypt
// hash; AdminPin is the 4-digit quick-login code.
type Settings struct {
	SiteTitle          string   `json:"siteTitle"`
	SiteDescription    string   `json:"siteDescription"`
	Favicon            string   `json:"favicon,omitempty"`
	Logo               string   `json:"logo,omitempty"`
	GoogleAnalyticsID  string   `json:"googleAnalyticsId,omitempty"`
	GoogleAdsenseID    string   `json:"googleAdsenseId,omitempty"`
	GoogleTagManagerID string   `json:"googleTagManagerId,omitempty"`
	RecoveryEmails     []string `json:"recoveryEmails,omitempty"`
	AdminPassword      string   `json:"adminPassword,omitempty"`
	AdminPin           string   `json:"adminPin,omitempty"`
}
