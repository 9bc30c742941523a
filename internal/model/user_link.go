package model

type LinkUserRequest struct {
	DiscordID    int64  `json:"discord_id,string"`
	ExternalName string `json:"external_name"`
}

type LinkUserResponse struct{}

type GetUserLinkRequest struct {
	DiscordID int64 `form:"discord_id"`
}

type GetUserLinkResponse struct {
	ExternalName string `json:"external_name"`
}
