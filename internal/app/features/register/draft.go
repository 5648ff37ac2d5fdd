// internal/app/features/register/draft.go
package register

import (
	"crypto/sha256"
	"net/http"

	"github.com/gorilla/securecookie"
)

// DraftCookieName holds step-one registration data between the two steps.
const DraftCookieName = "condopay-register"

// draftMaxAge bounds how old a draft may be when decoded, in seconds.
const draftMaxAge = 30 * 60

// Draft is the account step of a registration.
type Draft struct {
	FirstName   string
	LastName    string
	PhoneNumber string
	Email       string
	Password    string
	UserName    string
}

// Drafts stores a Draft in an encrypted, browser-session cookie.
type Drafts struct {
	sc     *securecookie.SecureCookie
	secure bool
}

// NewDrafts derives the cookie keys from secret.
func NewDrafts(secret string, secure bool) *Drafts {
	hashKey := sha256.Sum256([]byte("register-draft/hash/" + secret))
	blockKey := sha256.Sum256([]byte("register-draft/block/" + secret))
	sc := securecookie.New(hashKey[:], blockKey[:])
	sc.MaxAge(draftMaxAge)
	return &Drafts{sc: sc, secure: secure}
}

// Save writes d to the draft cookie. The cookie has no Max-Age so it ends
// with the browser session.
func (s *Drafts) Save(w http.ResponseWriter, d Draft) error {
	v, err := s.sc.Encode(DraftCookieName, d)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     DraftCookieName,
		Value:    v,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Load returns the draft carried by r, if any valid one exists.
func (s *Drafts) Load(r *http.Request) (Draft, bool) {
	c, err := r.Cookie(DraftCookieName)
	if err != nil {
		return Draft{}, false
	}
	var d Draft
	if err := s.sc.Decode(DraftCookieName, c.Value, &d); err != nil {
		return Draft{}, false
	}
	return d, d.Email != ""
}

// Clear deletes the draft cookie.
func (s *Drafts) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     DraftCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
