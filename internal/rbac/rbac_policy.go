package rbac

import "go-leave/internal/domain"

const (
	ResourceLeave   = "leave"
	ResourceHoliday = "holiday"
	ResourceUser    = "user"
	ResourceAccrual = "accrual"
)

func grant(role domain.Role, resource string, actions ...string) [][]string {
	rules := make([][]string, len(actions))
	for i, a := range actions {
		rules[i] = []string{role.String(), resource, a}
	}
	return rules
}

// DefaultPolicies is the route-level access table. Who may decide on a
// particular leave is still checked by the leave service.
func DefaultPolicies() [][]string {
	var p [][]string
	p = append(p, grant(domain.RoleEmployee, ResourceLeave, "read", "create")...)
	p = append(p, grant(domain.RoleEmployee, ResourceHoliday, "read")...)
	p = append(p, grant(domain.RoleEmployee, ResourceUser, "read")...)

	p = append(p, grant(domain.RoleHR, ResourceLeave, "read", "create", "decide")...)
	p = append(p, grant(domain.RoleHR, ResourceHoliday, "read", "manage")...)
	p = append(p, grant(domain.RoleHR, ResourceUser, "read", "list")...)
	p = append(p, grant(domain.RoleHR, ResourceAccrual, "run")...)

	p = append(p, grant(domain.RoleManagement, ResourceLeave, "read", "create", "decide")...)
	p = append(p, grant(domain.RoleManagement, ResourceHoliday, "read")...)
	p = append(p, grant(domain.RoleManagement, ResourceUser, "read", "list")...)
	p = append(p, grant(domain.RoleManagement, ResourceAccrual, "run")...)
	return p
}
