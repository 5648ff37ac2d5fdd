// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/condopay/condopay/internal/app/system/authz"
	"github.com/condopay/condopay/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/httpnav"
)

// SiteName is shown by clients in the header.
const SiteName = "CondoPay"

// TabVM is one navigation tab.
type TabVM struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Href        string `json:"href,omitempty"`
	Placeholder bool   `json:"placeholder,omitempty"`
}

// BaseVM contains common fields for all responses that describe a page.
// Embed this struct in feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(r, "Page Title", "/default-back"),
//	}
//	viewdata.JSON(w, http.StatusOK, data)
type BaseVM struct {
	SiteName   string `json:"siteName"`
	IsLoggedIn bool   `json:"isLoggedIn"`
	Role       string `json:"role"`
	UserName   string `json:"userName,omitempty"`
	BuildingID string `json:"buildingId,omitempty"`

	Title       string  `json:"title"`
	BackURL     string  `json:"backUrl,omitempty"`
	CurrentPath string  `json:"currentPath"`
	Tabs        []TabVM `json:"tabs,omitempty"`
}

// NewBaseVM creates a populated BaseVM for a page.
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	role, name, _, signedIn := authz.UserCtx(r)
	return BaseVM{
		SiteName:    SiteName,
		IsLoggedIn:  signedIn,
		Role:        role,
		UserName:    name,
		BuildingID:  authz.BuildingID(r),
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
		Tabs:        Tabs(role),
	}
}

// Tabs returns the navigation tabs for role. Maintenance and documents are
// placeholders.
func Tabs(role string) []TabVM {
	switch role {
	case models.RoleAdmin:
		return []TabVM{
			{Key: "overview", Label: "Overview", Href: "/dashboard"},
			{Key: "tenants", Label: "Tenants", Href: "/admin/tenants"},
			{Key: "payments", Label: "Payments", Href: "/admin/payments"},
			{Key: "maintenance", Label: "Maintenance", Placeholder: true},
			{Key: "reports", Label: "Reports", Href: "/admin/payments.xlsx"},
			{Key: "settings", Label: "Settings", Placeholder: true},
		}
	case models.RoleTenant:
		return []TabVM{
			{Key: "overview", Label: "Overview", Href: "/dashboard"},
			{Key: "payments", Label: "Payments", Href: "/payments"},
			{Key: "maintenance", Label: "Maintenance", Placeholder: true},
			{Key: "documents", Label: "Documents", Placeholder: true},
			{Key: "settings", Label: "Settings", Placeholder: true},
		}
	}
	return nil
}

// JSON writes v with status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// RedirectVM tells a client where to go next.
type RedirectVM struct {
	Redirect string `json:"redirect"`
	Message  string `json:"message,omitempty"`
}

// Next answers a successful form post with the next location. HTML callers
// get a 303, everyone else a JSON body.
func Next(w http.ResponseWriter, r *http.Request, location, msg string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", location)
		w.WriteHeader(http.StatusOK)
		return
	}
	if wantsHTML(r) {
		http.Redirect(w, r, location, http.StatusSeeOther)
		return
	}
	JSON(w, http.StatusOK, RedirectVM{Redirect: location, Message: msg})
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// FormErrorVM is returned when a submitted form is rejected. Fields maps a
// field label to its message.
type FormErrorVM struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// FormError writes a FormErrorVM with status.
func FormError(w http.ResponseWriter, status int, msg string, fields map[string]string) {
	JSON(w, status, FormErrorVM{Error: msg, Fields: fields})
}
