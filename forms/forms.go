// Package forms decodes and validates the HTML forms posted to Warbler.
package forms

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// SignupForm is posted to /signup
type SignupForm struct {
	Username string `form:"username" validate:"required,max=50"`
	Email    string `form:"email" validate:"required,email,max=255"`
	Password string `form:"password" validate:"required,min=6"`
	ImageURL string `form:"image_url" validate:"omitempty,max=255"`
}

// LoginForm is posted to /login
type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// MessageForm is posted to /messages/new
type MessageForm struct {
	Text string `form:"text" validate:"required,max=140"`
}

// ProfileForm is posted to /users/profile. Password must be the current
// password of the account being edited.
type ProfileForm struct {
	Username       string `form:"username" validate:"required,max=50"`
	Email          string `form:"email" validate:"required,email,max=255"`
	ImageURL       string `form:"image_url" validate:"omitempty,max=255"`
	HeaderImageURL string `form:"header_image_url" validate:"omitempty,max=255"`
	Bio            string `form:"bio" validate:"omitempty,max=500"`
	Location       string `form:"location" validate:"omitempty,max=100"`
	Password       string `form:"password" validate:"required"`
}

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.SetAliasTag("form")
	// the csrf token and submit buttons ride along in every post
	d.IgnoreUnknownKeys(true)
	return d
}

// Decode fills dst, a pointer to a form struct, from the request's
// url-encoded body and validates it. Values are trimmed except for
// password fields.
func Decode(r *http.Request, dst interface{}) error {
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("parse form: %w", err)
	}
	if err := decoder.Decode(dst, trimmed(r.PostForm)); err != nil {
		return fmt.Errorf("decode form: %w", err)
	}
	return validate.Struct(dst)
}

func trimmed(values url.Values) url.Values {
	out := make(url.Values, len(values))
	for key, vs := range values {
		if key == "password" {
			out[key] = vs
			continue
		}
		clean := make([]string, len(vs))
		for i, v := range vs {
			clean[i] = strings.TrimSpace(v)
		}
		out[key] = clean
	}
	return out
}

// Errors turns a validation error into messages fit for a flash or a
// form page. Errors that did not come from validation yield a single
// generic message.
func Errors(err error) []string {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"Invalid form submission."}
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, message(fe))
	}
	return msgs
}

func message(fe validator.FieldError) string {
	label := strings.ReplaceAll(fe.Field(), "_", " ")
	if label != "" {
		label = strings.ToUpper(label[:1]) + label[1:]
	}

	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "email":
		return label + " must be a valid email address."
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
	default:
		return label + " is invalid."
	}
}
