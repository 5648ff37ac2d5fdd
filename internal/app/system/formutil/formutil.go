// Package formutil decodes request input into a struct.
//
// Handlers accept either a url-encoded form or a JSON object. Both are
// flattened into a map and decoded with the struct's `form` tags, so one
// input type serves both callers:
//
//	type loginInput struct {
//		Email    string `form:"email" validate:"required,email" label:"Email"`
//		Password string `form:"password" validate:"required" label:"Password"`
//	}
//
//	var in loginInput
//	if err := formutil.Decode(r, &in); err != nil { ... }
//	if res := inputval.Validate(in); res.HasErrors() { ... }
package formutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// MaxBodyBytes caps request bodies.
const MaxBodyBytes = 1 << 20

// ErrInvalidBody is returned for bodies that cannot be parsed.
var ErrInvalidBody = errors.New("invalid request body")

// Decode fills dst from r's body (JSON) or form values.
func Decode(r *http.Request, dst any) error {
	values, err := Values(r)
	if err != nil {
		return err
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "form",
		WeaklyTypedInput: true,
		Result:           dst,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(values); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	return nil
}

// Values returns the request input as a flat map. Form fields keep their
// first value; string values are trimmed.
func Values(r *http.Request) (map[string]any, error) {
	if isJSON(r) {
		out := map[string]any{}
		body := http.MaxBytesReader(nil, r.Body, MaxBodyBytes)
		if err := json.NewDecoder(body).Decode(&out); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
		}
		for k, v := range out {
			if s, ok := v.(string); ok {
				out[k] = strings.TrimSpace(s)
			}
		}
		return out, nil
	}

	r.Body = http.MaxBytesReader(nil, r.Body, MaxBodyBytes)
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	out := make(map[string]any, len(r.Form))
	for k, vs := range r.Form {
		if len(vs) > 0 {
			out[k] = strings.TrimSpace(vs[0])
		}
	}
	return out, nil
}

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}
