package domain

import "time"

// Theme is the preferred UI theme of a user.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// User represents a registered writer.
type User struct {
	Username       string   `json:"username"`
	PasswordHash   string   `json:"passwordHash,omitempty"`
	// ProviderSubject is the stable account id asserted by the sign-in provider.
	ProviderSubject string `json:"providerSubject,omitempty"`
	Name           string   `json:"name"`
	Bio            string   `json:"bio,omitempty"`
	ProfilePicture string   `json:"profilePicture,omitempty"`
	Followers      []string `json:"followers"`
	Following      []string `json:"following"`

	Email           string   `json:"email"`
	PenName         string   `json:"penName,omitempty"`
	WritingThemes   []string `json:"writingThemes"`
	WritingStyle    string   `json:"writingStyle,omitempty"`
	FeaturedPostIDs []string `json:"featuredPostIds"`

	IsPublic  *bool `json:"isPublic,omitempty"`
	ShowBio   *bool `json:"showBio,omitempty"`
	ShowStats *bool `json:"showStats,omitempty"`

	PreferredTheme Theme `json:"preferredTheme,omitempty"`
	HasOnboarded   bool  `json:"hasOnboarded"`
}

// Public strips credentials before a user leaves the service.
func (u User) Public() User {
	u.PasswordHash = ""
	u.ProviderSubject = ""
	return u
}

// IsFollowing reports whether u follows username.
func (u *User) IsFollowing(username string) bool {
	for _, f := range u.Following {
		if f == username {
			return true
		}
	}
	return false
}

// Normalize fills defaults for records written by older versions.
func (u *User) Normalize() {
	if u.Followers == nil {
		u.Followers = []string{}
	}
	if u.Following == nil {
		u.Following = []string{}
	}
	if u.WritingThemes == nil {
		u.WritingThemes = []string{}
	}
	if u.FeaturedPostIDs == nil {
		u.FeaturedPostIDs = []string{}
	}
	if u.IsPublic == nil {
		u.IsPublic = boolPtr(true)
	}
	if u.ShowBio == nil {
		u.ShowBio = boolPtr(true)
	}
	if u.ShowStats == nil {
		u.ShowStats = boolPtr(true)
	}
}

func boolPtr(b bool) *bool { return &b }

// Session identifies the logged-in user of one client session.
// It is passed explicitly to every session-aware operation.
type Session struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
