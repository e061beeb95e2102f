package model

type AdminRole string

const (
	AdminRoleWeb    AdminRole = "web"
	AdminRoleOffice AdminRole = "office"
)

func (r AdminRole) Valid() bool {
	return r == AdminRoleWeb || r == AdminRoleOffice
}

func (r AdminRole) Label() string {
	if r == AdminRoleWeb {
		return "WEB Admin"
	}
	return "OFFICE Admin"
}

type SendCodeRequest struct {
	Role string `json:"role" binding:"required"`
}

type VerifyCodeRequest struct {
	Role string `json:"role" binding:"required"`
	Code string `json:"code" binding:"required"`
}
