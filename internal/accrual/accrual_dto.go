package accrual

type RunResponse struct {
	Month         string   `json:"month"`
	DaysAdded     int      `json:"days_added"`
	Roles         []string `json:"roles"`
	UsersCredited int64    `json:"users_credited"`
}
