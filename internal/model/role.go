package model

type GrantRoleRequest struct {
	Role   string `json:"role"`
	UserID string `json:"user_id"`
}

type GrantRoleResponse struct{}

type RevokeRoleRequest struct {
	Role   string `json:"role"`
	UserID string `json:"user_id"`
}

type RevokeRoleResponse struct{}

type GetRolesRequest struct {
	UserID string `json:"user_id" form:"user_id"`
}

type GetRolesResponse struct {
	Roles []string `json:"roles"`
}

type PauseRequest struct {
	Module string `json:"module"`
	Scope  string `json:"scope"`
}

type PauseResponse struct{}

type UnpauseRequest struct {
	Module string `json:"module"`
	Scope  string `json:"scope"`
}

type UnpauseResponse struct{}

type GetPausesRequest struct{}

type GetPausesResponse struct {
	Pauses []Pause `json:"pauses"`
}
