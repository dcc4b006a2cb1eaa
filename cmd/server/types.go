package main

import (
	"time"

	"github.com/jmswan/fivemhub/discord"
	"github.com/jmswan/fivemhub/internal/entities"
	"github.com/jmswan/fivemhub/internal/profiles"
)

type callbackRequest struct {
	Code  string `json:"code"`
	State string `json:"state"`
	// Accepted for compatibility with older clients; the confidential flow
	// ignores it.
	CodeVerifier string `json:"codeVerifier"`
}

type callbackResponse struct {
	User        userResponse `json:"user"`
	AccessToken string       `json:"access_token"`
}

type userResponse struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	Avatar        string `json:"avatar"`
	GlobalName    string `json:"global_name"`
}

func toUserResponse(identity discord.Identity) userResponse {
	return userResponse{
		ID:            identity.ExternalID,
		Email:         identity.Email,
		Username:      identity.Username,
		Discriminator: identity.Discriminator,
		Avatar:        identity.AvatarURL,
		GlobalName:    identity.DisplayName,
	}
}

type meResponse struct {
	User    userResponse      `json:"user"`
	Profile *profiles.Profile `json:"profile,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Debug string `json:"debug,omitempty"`
}

type createAssetRequest struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description"`
	FileURL     string `json:"file_url"`
	ImageURL    string `json:"image_url"`
}

type createPostRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

type reportRequest struct {
	Reason string `json:"reason"`
}

type likeResponse struct {
	Liked bool `json:"liked"`
	Likes int  `json:"likes"`
}

type feedResponse struct {
	LatestPosts   []entities.ForumPost `json:"latest_posts"`
	PopularAssets []entities.Asset     `json:"popular_assets"`
	UpdatedAt     time.Time            `json:"updated_at"`
}
