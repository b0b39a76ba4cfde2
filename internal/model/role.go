package model

import "strings"

// DashboardRole 仅保存在内存中，每次加载默认 student
type DashboardRole string

const (
	RoleStudent DashboardRole = "student"
	RoleFaculty DashboardRole = "faculty"
	RoleHOD     DashboardRole = "hod"
)

var DashboardRoles = []DashboardRole{RoleStudent, RoleFaculty, RoleHOD}

func ParseDashboardRole(s string) (DashboardRole, bool) {
	r := DashboardRole(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RoleStudent, RoleFaculty, RoleHOD:
		return r, true
	}
	return "", false
}
