package httpx

import (
	"net/http"

	"github.com/target/storyweb/internal/ports"
)

// Pricing lists the plans.
// GET /pricing.
func (h *UIHandlers) Pricing(w http.ResponseWriter, r *http.Request) {
	data := h.basePageData(w, r, PageMeta{Title: "Pricing", CurrentPage: PagePricing})
	plans, err := h.Accounts.Plans(r.Context())
	if err != nil {
		if h.handleError(w, r, &data, err) {
			return
		}
	}
	data.Data = plans
	h.render(w, r, http.StatusOK, data)
}

// Profile shows the signed-in user.
// GET /profile.
func (h *UIHandlers) Profile(w http.ResponseWriter, r *http.Request) {
	data := h.basePageData(w, r, PageMeta{Title: "Profile", CurrentPage: PageProfile})
	data.Data = data.Viewer.User
	h.render(w, r, http.StatusOK, data)
}

// CartView is what the cart page renders.
type CartView struct {
	Cart  ports.Cart
	Plans []ports.Plan
}

// Cart shows the user's cart with the plans to choose from.
// GET /cart.
func (h *UIHandlers) Cart(w http.ResponseWriter, r *http.Request) {
	data := h.basePageData(w, r, PageMeta{Title: "Cart", CurrentPage: PageCart})
	dash, err := h.Accounts.Dashboard(r.Context(), sessionToken(r))
	if err != nil {
		if h.handleError(w, r, &data, err) {
			return
		}
	}
	data.Data = CartView{Cart: dash.Cart, Plans: dash.Plans}
	h.render(w, r, http.StatusOK, data)
}

// SelectPlan puts a plan in the cart and redirects back to it.
// POST /cart.
func (h *UIHandlers) SelectPlan(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	planID := r.PostFormValue("plan_id")
	cart, err := h.Accounts.SelectPlan(r.Context(), sessionToken(r), planID)
	if err != nil {
		data := h.basePageData(w, r, PageMeta{Title: "Cart", CurrentPage: PageCart})
		if h.handleError(w, r, &data, err) {
			return
		}
		plans, perr := h.Accounts.Plans(r.Context())
		if perr != nil {
			h.logger().WarnContext(r.Context(), "reload plans failed", "error", perr)
		}
		data.Form = map[string]string{"plan_id": planID}
		data.Data = CartView{Plans: plans}
		h.render(w, r, statusForError(err), data)
		return
	}

	msg := "Cart updated."
	if cart.Plan != nil {
		msg = cart.Plan.Name + " added to your cart."
	}
	scope := NewBrowserScope(w, r, h.Sessions, h.Cookies)
	scope.Toast(ports.Toast{ID: "cart", Message: msg, Level: ports.ToastSuccess})
	scope.Redirect("/cart")
	scope.Commit()
}

// Dashboard shows plans and cart for a non-public user.
// GET /dashboard.
func (h *UIHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	data := h.basePageData(w, r, PageMeta{Title: "Dashboard", CurrentPage: PageDashboard})
	dash, err := h.Accounts.Dashboard(r.Context(), sessionToken(r))
	if err != nil {
		if h.handleError(w, r, &data, err) {
			return
		}
	}
	data.Data = dash
	h.render(w, r, http.StatusOK, data)
}

// AdminHome is the admin landing page.
// GET /admin/.
func (h *UIHandlers) AdminHome(w http.ResponseWriter, r *http.Request) {
	data := h.basePageData(w, r, PageMeta{Title: "Admin", CurrentPage: PageAdminHome})
	h.render(w, r, http.StatusOK, data)
}

// AdminUsers lists users for admins.
// GET /admin/users.
func (h *UIHandlers) AdminUsers(w http.ResponseWriter, r *http.Request) {
	data := h.basePageData(w, r, PageMeta{Title: "Users", CurrentPage: PageAdminUsers})
	users, err := h.Accounts.AdminUsers(r.Context(), sessionToken(r))
	if err != nil {
		if h.handleError(w, r, &data, err) {
			return
		}
	}
	data.Data = users
	h.render(w, r, http.StatusOK, data)
}
