package router

// Route names used by the guard and by views linking to each other.
const (
	NameLogin       = "login"
	NameDashboard   = "dashboard"
	NameEmployees   = "employees"
	NameDepartments = "departments"
	NamePayroll     = "payroll"
	NameAttendance  = "attendance"
	NameNotFound    = "not-found"
)

const (
	// CatchAll is the path of the record matching any unmatched path.
	CatchAll = "*"

	// NotFoundPath is where failed navigations are sent. It is deliberately
	// not declared so the catch-all record serves it.
	NotFoundPath = "/not-found"

	// TitleSuffix is appended to every page title.
	TitleSuffix = "HR Payroll"

	LayoutAuth    = "auth"
	LayoutDefault = "default"
)

// Meta is per-route metadata read by the guard and the layout.
type Meta struct {
	Layout       string `json:"layout,omitempty" yaml:"layout,omitempty"`
	Title        string `json:"title" yaml:"title"`
	RequiresAuth bool   `json:"requires_auth" yaml:"requires_auth"`
}

// Route maps a URL path to a view. A record with Redirect set has no view;
// navigating to it continues at the redirect target. Child paths not starting
// with "/" are relative to the parent.
type Route struct {
	Path      string  `json:"path" yaml:"path"`
	Name      string  `json:"name,omitempty" yaml:"name,omitempty"`
	Component string  `json:"component,omitempty" yaml:"component,omitempty"`
	Redirect  string  `json:"redirect,omitempty" yaml:"redirect,omitempty"`
	Meta      Meta    `json:"meta" yaml:"meta"`
	Children  []Route `json:"children,omitempty" yaml:"children,omitempty"`
}

// DefaultRoutes returns the HR Payroll page table.
func DefaultRoutes() []Route {
	return []Route{
		{
			Path:      "/login",
			Name:      NameLogin,
			Component: "Login",
			Meta:      Meta{Layout: LayoutAuth, Title: "Login"},
		},
		{Path: "/", Redirect: "/dashboard"},
		{
			Path:      "/dashboard",
			Name:      NameDashboard,
			Component: "Dashboard",
			Meta:      Meta{Title: "Dashboard", RequiresAuth: true},
		},
		{
			Path:      "/employees",
			Name:      NameEmployees,
			Component: "Employees",
			Meta:      Meta{Title: "Employees", RequiresAuth: true},
		},
		{
			Path:      "/departments",
			Name:      NameDepartments,
			Component: "Departments",
			Meta:      Meta{Title: "Departments", RequiresAuth: true},
		},
		{
			Path:      "/payroll",
			Name:      NamePayroll,
			Component: "Payroll",
			Meta:      Meta{Title: "Payroll", RequiresAuth: true},
		},
		{
			Path:      "/attendance",
			Name:      NameAttendance,
			Component: "Attendance",
			Meta:      Meta{Title: "Attendance", RequiresAuth: true},
		},
		{
			Path:      CatchAll,
			Name:      NameNotFound,
			Component: "NotFound",
			Meta:      Meta{Title: "Page Not Found"},
		},
	}
}
