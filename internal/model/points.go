package model

type GetBalanceRequest struct {
	UserID int64 `form:"user_id"`
}

type GetBalanceResponse struct {
	UserID  int64 `json:"user_id,string"`
	Balance int64 `json:"balance"`
}

type AwardPointsRequest struct {
	UserID int64  `json:"user_id,string"`
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

type AwardPointsResponse struct {
	Balance int64 `json:"balance"`
}

type DeductPointsRequest struct {
	UserID int64  `json:"user_id,string"`
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

type DeductPointsResponse struct {
	Balance int64 `json:"balance"`
}

type GetPointsLeaderboardRequest struct {
	Limit int `form:"limit"`
}

type PointsRank struct {
	Rank    int   `json:"rank"`
	UserID  int64 `json:"user_id,string"`
	Balance int64 `json:"balance"`
}

type GetPointsLeaderboardResponse struct {
	Ranks []PointsRank `json:"ranks"`
}

type GetPointsHistoryRequest struct {
	UserID int64 `form:"user_id"`
	Limit  int   `form:"limit"`
}

type PointsTransaction struct {
	ID        int64  `json:"id,string"`
	Delta     int64  `json:"delta"`
	Reason    string `json:"reason"`
	CreatedAt string `json:"created_at"`
}

type GetPointsHistoryResponse struct {
	Transactions []PointsTransaction `json:"transactions"`
}
