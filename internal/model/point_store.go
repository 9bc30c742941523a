package model

type Reward struct {
	ID          int64  `json:"id,string"`
	Name        string `json:"name"`
	Cost        int64  `json:"cost"`
	Description string `json:"description"`
	RoleID      *int64 `json:"role_id,omitempty"`
}

type Redemption struct {
	ID         int64  `json:"id,string"`
	RewardName string `json:"reward_name"`
	Cost       int64  `json:"cost"`
	CreatedAt  string `json:"created_at"`
}

type AddRewardRequest struct {
	Name        string `json:"name"`
	Cost        int64  `json:"cost"`
	Description string `json:"description"`
	RoleID      int64  `json:"role_id,string"`
}

type AddRewardResponse struct {
	Reward Reward `json:"reward"`
}

type RemoveRewardRequest struct {
	Name string `json:"name"`
}

type RemoveRewardResponse struct{}

type GetRewardsRequest struct{}

type GetRewardsResponse struct {
	Rewards []Reward `json:"rewards"`
}

type RedeemRewardRequest struct {
	UserID int64  `json:"user_id,string"`
	Name   string `json:"name"`
}

type RedeemRewardResponse struct {
	Reward      Reward `json:"reward"`
	Balance     int64  `json:"balance"`
	RoleGranted bool   `json:"role_granted"`
}

type GetRedemptionsRequest struct {
	UserID int64 `form:"user_id"`
	Limit  int   `form:"limit"`
}

type GetRedemptionsResponse struct {
	Redemptions []Redemption `json:"redemptions"`
}
