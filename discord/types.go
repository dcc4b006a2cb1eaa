package discord

import (
	"fmt"
	"strconv"
)

// TokenResult is the outcome of a code exchange. Consumed immediately to
// fetch identity; only AccessToken is retained afterwards.
type TokenResult struct {
	AccessToken string
	TokenType   string
	Scope       string
	ExpiresIn   int64
}

// Identity is the normalized provider-reported user. Recomputed fresh on
// every successful callback.
type Identity struct {
	ExternalID    string `json:"id"`
	Email         string `json:"email"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	DisplayName   string `json:"global_name"`
	AvatarURL     string `json:"avatar"`
}

// userPayload is the wire shape of GET /users/@me.
type userPayload struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	GlobalName    string `json:"global_name"`
	Avatar        string `json:"avatar"`
	Email         string `json:"email"`
}

func normalizeIdentity(raw userPayload) (Identity, error) {
	if raw.ID == "" {
		return Identity{}, fmt.Errorf("%w: user payload has no id", ErrMalformedIdentity)
	}

	email := raw.Email
	if email == "" {
		// Consent for the email scope may be withheld; synthesize a stable
		// placeholder instead of failing the login.
		email = fmt.Sprintf("user_%s@discord.local", raw.ID)
	}

	displayName := raw.GlobalName
	if displayName == "" {
		displayName = raw.Username
	}

	return Identity{
		ExternalID:    raw.ID,
		Email:         email,
		Username:      raw.Username,
		Discriminator: raw.Discriminator,
		DisplayName:   displayName,
		AvatarURL:     avatarURL(raw.ID, raw.Avatar),
	}, nil
}

func avatarURL(id, hash string) string {
	if hash != "" {
		return fmt.Sprintf("https://cdn.discordapp.com/avatars/%s/%s.png", id, hash)
	}
	return fmt.Sprintf("https://cdn.discordapp.com/embed/avatars/%d.png", DefaultAvatarIndex(id))
}

// DefaultAvatarIndex picks one of Discord's six stock avatars for users
// without an avatar hash: (id >> 22) mod 6.
func DefaultAvatarIndex(id string) int {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return 0
	}
	return int((n >> 22) % 6)
}
