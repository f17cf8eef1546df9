package model

// Role codes
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// Privilege codes checked by the route middleware.
const (
	PrivProductView       = "product:view"
	PrivProductCreate     = "product:create"
	PrivProductUpdate     = "product:update"
	PrivProductDelete     = "product:delete"
	PrivStockView         = "stock:view"
	PrivStockCreate       = "stock:create"
	PrivTransactionView   = "transaction:view"
	PrivTransactionCreate = "transaction:create"
	PrivReportView        = "report:view"
	PrivDashboardView     = "dashboard:view"
	PrivUserView          = "user:view"
	PrivUserCreate        = "user:create"
	PrivUserDelete        = "user:delete"

	// PrivTransactionViewAll lifts the own-sales restriction on transaction reads.
	PrivTransactionViewAll = "transaction:view_all"
)

var allPrivileges = []string{
	PrivProductView, PrivProductCreate, PrivProductUpdate, PrivProductDelete,
	PrivStockView, PrivStockCreate,
	PrivTransactionView, PrivTransactionViewAll, PrivTransactionCreate,
	PrivReportView, PrivDashboardView,
	PrivUserView, PrivUserCreate, PrivUserDelete,
}

// Staff run the register: they can browse the catalog and stock, sell, and
// see their own sales, but cannot edit products, adjust stock or manage users.
var staffPrivileges = []string{
	PrivProductView,
	PrivStockView,
	PrivTransactionView,
	PrivTransactionCreate,
	PrivDashboardView,
}

// ValidRole reports whether role is a known role code.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleStaff
}

// PrivilegesForRole returns a copy of the privilege codes granted to role.
func PrivilegesForRole(role string) []string {
	var src []string
	switch role {
	case RoleAdmin:
		src = allPrivileges
	case RoleStaff:
		src = staffPrivileges
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}
