package httpx

// Page identifiers used in templates and navigation.
const (
	PageHome        = "home"
	PageLanding     = "landing"
	PagePricing     = "pricing"
	PageFAQ         = "faq"
	PageSignup      = "signup"
	PageLogin       = "login"
	PageAdminLogin  = "admin-login"
	PageProfile     = "profile"
	PageCart        = "cart"
	PageDashboard   = "dashboard"
	PageAdminHome   = "admin-home"
	PageAdminUsers  = "admin-users"
	PageSignedOut   = "signed-out"
	PageLoading     = "loading"
	PageNotFound    = "not-found"
	PageServerError = "error"
)

// Template directory paths.
const (
	TemplatePathFromRoot = "frontend/templates"
	TemplatePathFromTest = "../../frontend/templates"
	StaticPathFromRoot   = "frontend/static"
)

//nolint:gochecknoglobals // static read-only lookup for templates
var contentTemplates = map[string]string{
	PageHome:        "home-content",
	PageLanding:     "landing-content",
	PagePricing:     "pricing-content",
	PageFAQ:         "faq-content",
	PageSignup:      "signup-content",
	PageLogin:       "login-content",
	PageAdminLogin:  "admin-login-content",
	PageProfile:     "profile-content",
	PageCart:        "cart-content",
	PageDashboard:   "dashboard-content",
	PageAdminHome:   "admin-home-content",
	PageAdminUsers:  "admin-users-content",
	PageSignedOut:   "signed-out-content",
	PageLoading:     "loading-content",
	PageNotFound:    "not-found-content",
	PageServerError: "error-content",
}

// ContentTemplateFor returns the content template for a page, falling back to
// the not-found content for unknown pages.
func ContentTemplateFor(currentPage string) string {
	if name, ok := contentTemplates[currentPage]; ok {
		return name
	}
	return "not-found-content"
}
