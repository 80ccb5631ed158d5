package domain

// AnonymousLabel is the display fallback when an identity carries
// neither a display name nor an email.
const AnonymousLabel = "anonymous"

// AvatarPlaceholder is used when an identity has no avatar reference.
const AvatarPlaceholder = "/images/profile_placeholder.png"

// Identity is the authenticated principal of the current session.
type Identity struct {
	UserID      string
	Email       string
	DisplayName string
	AvatarRef   string
}

// Label resolves the display label used as a message author:
// display name, else email, else the anonymous sentinel.
func (i Identity) Label() string {
	if i.DisplayName != "" {
		return i.DisplayName
	}
	if i.Email != "" {
		return i.Email
	}
	return AnonymousLabel
}

// Avatar resolves the avatar reference, falling back to the placeholder.
func (i Identity) Avatar() string {
	if i.AvatarRef != "" {
		return i.AvatarRef
	}
	return AvatarPlaceholder
}
