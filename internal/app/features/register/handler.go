// internal/app/features/register/handler.go
package register

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/condopay/condopay/internal/app/features/errors"
	userstore "github.com/condopay/condopay/internal/app/store/users"
	"github.com/condopay/condopay/internal/app/system/auditlog"
	"github.com/condopay/condopay/internal/app/system/auth"
	"github.com/condopay/condopay/internal/app/system/authprovider"
	"github.com/condopay/condopay/internal/app/system/formutil"
	"github.com/condopay/condopay/internal/app/system/inputval"
	"github.com/condopay/condopay/internal/app/system/normalize"
	"github.com/condopay/condopay/internal/app/system/timeouts"
	"github.com/condopay/condopay/internal/app/system/viewdata"
	"github.com/condopay/condopay/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Step locations.
const (
	AccountPath = "/register"
	RentalPath  = "/registerRentalInfo"
)

type Handler struct {
	Provider   authprovider.Provider
	SessionMgr *auth.SessionManager
	Users      *userstore.Store
	Drafts     *Drafts
	ErrLog     *uierrors.ErrorLogger
	AuditLog   *auditlog.Logger
	Log        *zap.Logger
}

func NewHandler(db *mongo.Database, provider authprovider.Provider, sessionMgr *auth.SessionManager, drafts *Drafts, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Provider:   provider,
		SessionMgr: sessionMgr,
		Users:      userstore.New(db),
		Drafts:     drafts,
		ErrLog:     errLog,
		AuditLog:   audit,
		Log:        logger,
	}
}

type accountForm struct {
	FirstName   string `form:"firstName" validate:"required,max=100" label:"First name"`
	LastName    string `form:"lastName" validate:"required,max=100" label:"Last name"`
	PhoneNumber string `form:"phoneNumber" validate:"required,max=40" label:"Phone number"`
	Email       string `form:"email" validate:"required,email" label:"Email"`
	Password    string `form:"password" validate:"required" label:"Password"`
}

type rentalForm struct {
	BuildingID     string `form:"buildingId" validate:"required,max=100" label:"Building"`
	UnitNo         string `form:"unitNo" validate:"required,max=20" label:"Unit number"`
	LeaseStartDate string `form:"leaseStartDate" validate:"required,isodate" label:"Lease start date"`
	LeaseEndDate   string `form:"leaseEndDate" validate:"required,isodate" label:"Lease end date"`
	MonthlyRent    string `form:"monthlyRent" label:"Monthly rent"`
}

type draftVM struct {
	viewdata.BaseVM
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
	Email       string `json:"email"`
	UserName    string `json:"userName"`
}

type accountSavedVM struct {
	Redirect string `json:"redirect"`
	UserName string `json:"userName"`
}

// HandleAccount handles POST /register, the first step.
func (h *Handler) HandleAccount(w http.ResponseWriter, r *http.Request) {
	var in accountForm
	if err := formutil.Decode(r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "register: decode account form", err, "Invalid form submission.", AccountPath)
		return
	}
	in.FirstName = normalize.Name(in.FirstName)
	in.LastName = normalize.Name(in.LastName)
	in.Email = normalize.Email(in.Email)

	if res := inputval.Validate(in); res.HasErrors() {
		viewdata.FormError(w, http.StatusBadRequest, res.First(), res.Map())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	userName, err := h.Users.NextUserName(ctx, normalize.UserNameBase(in.FirstName, in.LastName))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "register: next user name", err, "Failed to save registration", AccountPath)
		return
	}

	if err := h.Drafts.Save(w, Draft{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		PhoneNumber: in.PhoneNumber,
		Email:       in.Email,
		Password:    in.Password,
		UserName:    userName,
	}); err != nil {
		h.ErrLog.LogServerError(w, r, "register: save draft", err, "Failed to save registration", AccountPath)
		return
	}

	if r.Header.Get("HX-Request") == "true" || wantsHTML(r) {
		viewdata.Next(w, r, RentalPath, "")
		return
	}
	viewdata.JSON(w, http.StatusOK, accountSavedVM{Redirect: RentalPath, UserName: userName})
}

// ServeRental handles GET /registerRentalInfo. Without a draft the client is
// sent back to the first step.
func (h *Handler) ServeRental(w http.ResponseWriter, r *http.Request) {
	d, ok := h.Drafts.Load(r)
	if !ok {
		viewdata.Next(w, r, AccountPath, "Please complete the first step.")
		return
	}
	viewdata.JSON(w, http.StatusOK, draftVM{
		BaseVM:      viewdata.NewBaseVM(r, "Rental information", AccountPath),
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		PhoneNumber: d.PhoneNumber,
		Email:       d.Email,
		UserName:    d.UserName,
	})
}

// HandleRental handles POST /registerRentalInfo, the final step. It creates
// the identity and the tenant profile and signs the tenant in.
func (h *Handler) HandleRental(w http.ResponseWriter, r *http.Request) {
	d, ok := h.Drafts.Load(r)
	if !ok {
		viewdata.Next(w, r, AccountPath, "Please complete the first step.")
		return
	}

	var in rentalForm
	if err := formutil.Decode(r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "register: decode rental form", err, "Invalid form submission.", RentalPath)
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		viewdata.FormError(w, http.StatusBadRequest, res.First(), res.Map())
		return
	}
	if in.LeaseEndDate < in.LeaseStartDate {
		viewdata.FormError(w, http.StatusBadRequest, "Lease end date must not be before the start date.",
			map[string]string{"LeaseEndDate": "Lease end date must not be before the start date."})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	s, err := h.Provider.SignUp(ctx, d.Email, d.Password)
	if err != nil {
		status := uierrors.AuthStatus(err)
		if status == http.StatusInternalServerError {
			h.Log.Error("register: sign up", zap.Error(err))
		}
		viewdata.FormError(w, status, authprovider.Message(err, "Failed to create account"), nil)
		return
	}

	u := models.User{
		ID:             s.Identity.UID,
		Email:          d.Email,
		UserName:       d.UserName,
		FirstName:      d.FirstName,
		LastName:       d.LastName,
		PhoneNumber:    d.PhoneNumber,
		Role:           models.RoleTenant,
		Status:         models.StatusActive,
		BuildingID:     in.BuildingID,
		UnitNo:         in.UnitNo,
		MonthlyRent:    normalize.Amount(in.MonthlyRent),
		LeaseStartDate: in.LeaseStartDate,
		LeaseEndDate:   in.LeaseEndDate,
	}
	created, err := h.Users.Create(ctx, u)
	if errors.Is(err, userstore.ErrDuplicateUserName) {
		// taken between the two steps
		if u.UserName, err = h.Users.NextUserName(ctx, normalize.UserNameBase(u.FirstName, u.LastName)); err == nil {
			created, err = h.Users.Create(ctx, u)
		}
	}
	if err != nil {
		// Drop the identity so the email is free for another attempt.
		if derr := h.Provider.DeleteUser(ctx, s.Identity.UID); derr != nil {
			h.Log.Error("register: orphaned identity",
				zap.String("uid", s.Identity.UID), zap.String("email", d.Email), zap.Error(derr))
		}
		h.ErrLog.LogServerError(w, r, "register: create profile", err, "Failed to create account", RentalPath)
		return
	}

	h.Drafts.Clear(w)
	if err := h.SessionMgr.Issue(w, r, s); err != nil {
		h.ErrLog.LogServerError(w, r, "register: save session", err, "Failed to sign in", "/")
		return
	}
	if res := h.SessionMgr.Resolver(); res != nil {
		res.Refresh(ctx, s)
	}

	h.AuditLog.Registered(ctx, r, created.ID, created.BuildingID, created.UnitNo)
	h.Log.Info("tenant registered",
		zap.String("uid", created.ID),
		zap.String("building_id", created.BuildingID))

	viewdata.Next(w, r, "/dashboard", "Registration complete.")
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
