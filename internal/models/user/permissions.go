package user

type Permission string

const (
	PermTasksCreate     Permission = "tasks.create"
	PermTasksEdit       Permission = "tasks.edit"
	PermTasksDelete     Permission = "tasks.delete"
	PermTasksViewAll    Permission = "tasks.view_all"
	PermUsersManage     Permission = "users.manage"
	PermUsersViewAll    Permission = "users.view_all"
	PermReportsView     Permission = "reports.view"
	PermReportsGenerate Permission = "reports.generate"
)

// права по ролям без индивидуальных надбавок
var rolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermTasksCreate, PermTasksEdit, PermTasksDelete, PermTasksViewAll,
		PermUsersManage, PermUsersViewAll,
		PermReportsView, PermReportsGenerate,
	},
	RoleManager: {
		PermTasksCreate, PermTasksEdit, PermTasksViewAll,
		PermUsersViewAll,
		PermReportsView, PermReportsGenerate,
	},
	RoleStaff: {
		PermTasksCreate, PermTasksEdit,
		PermReportsView,
	},
}

func (r Role) Can(p Permission) bool {
	for _, granted := range rolePermissions[r] {
		if granted == p {
			return true
		}
	}
	return false
}
