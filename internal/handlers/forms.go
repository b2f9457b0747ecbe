package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// multipartMemory matches gin's form binding.
const multipartMemory = 32 << 20

// RegistrationForm é o formulário de cadastro.
// Passwords are capped in bytes: bcrypt rejects anything over 72.
type RegistrationForm struct {
	Username        string `form:"username" binding:"required,min=2,max=20"`
	Email           string `form:"email" binding:"required,email,max=120"`
	Password        string `form:"password" binding:"required,maxbytes=72"`
	ConfirmPassword string `form:"confirm_password" binding:"required,eqfield=Password"`
}

func (f *RegistrationForm) normalize() {
	f.Username = strings.TrimSpace(f.Username)
	f.Email = normalizeEmail(f.Email)
}

type LoginForm struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
	Remember bool   `form:"remember"`
}

func (f *LoginForm) normalize() { f.Email = normalizeEmail(f.Email) }

// UpdateAccountForm carries the text fields; the optional picture is read with c.FormFile.
type UpdateAccountForm struct {
	Username string `form:"username" binding:"required,min=2,max=20"`
	Email    string `form:"email" binding:"required,email,max=120"`
}

func (f *UpdateAccountForm) normalize() {
	f.Username = strings.TrimSpace(f.Username)
	f.Email = normalizeEmail(f.Email)
}

type BirthdayForm struct {
	Name string    `form:"birthday_name" binding:"required,max=100"`
	Date time.Time `form:"birthday_date" binding:"required" time_format:"2006-01-02" time_utc:"1"`
}

func (f *BirthdayForm) normalize() { f.Name = strings.TrimSpace(f.Name) }

type RequestResetForm struct {
	Email string `form:"email" binding:"required,email"`
}

func (f *RequestResetForm) normalize() { f.Email = normalizeEmail(f.Email) }

type ResetPasswordForm struct {
	Password        string `form:"password" binding:"required,maxbytes=72"`
	ConfirmPassword string `form:"confirm_password" binding:"required,eqfield=Password"`
}

// normalizer is implemented by forms whose text fields are cleaned up before validation.
type normalizer interface {
	normalize()
}

// FormErrors maps a form field name to its message. Empty means the form is valid.
type FormErrors map[string]string

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		// Report validation errors under the form field name instead of the Go field name.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("form"), ",")
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
		if err := v.RegisterValidation("maxbytes", maxBytes); err != nil {
			panic(err)
		}
	}
}

// maxBytes is max measured in bytes rather than runes.
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

// bindForm decodes a urlencoded or multipart form into obj, then validates it with ValidateForm.
func bindForm(c *gin.Context, obj interface{}) FormErrors {
	if err := decodeForm(c.Request, obj); err != nil {
		return formErrors(err)
	}
	return ValidateForm(obj)
}

func decodeForm(req *http.Request, obj interface{}) error {
	if err := req.ParseForm(); err != nil {
		return err
	}
	if err := req.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return err
	}
	return binding.MapFormWithTag(obj, req.Form, "form")
}

// ValidateForm trims and normalizes obj, then applies its binding rules.
// obj must be a pointer to one of the form structs.
func ValidateForm(obj interface{}) FormErrors {
	if n, ok := obj.(normalizer); ok {
		n.normalize()
	}
	return formErrors(binding.Validator.ValidateStruct(obj))
}

func formErrors(err error) FormErrors {
	errs := FormErrors{}
	if err == nil {
		return errs
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if _, exists := errs[fe.Field()]; !exists {
				errs[fe.Field()] = validationMessage(fe)
			}
		}
		return errs
	}

	var perr *time.ParseError
	if errors.As(err, &perr) {
		errs["birthday_date"] = "Not a valid date value."
		return errs
	}

	errs["form"] = "The form could not be read. Please try again."
	return errs
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Invalid email address."
	case "min":
		return fmt.Sprintf("Field must be at least %s characters long.", fe.Param())
	case "max":
		return fmt.Sprintf("Field cannot be longer than %s characters.", fe.Param())
	case "maxbytes":
		return fmt.Sprintf("Field cannot be longer than %s bytes.", fe.Param())
	case "eqfield":
		return "Field must be equal to password."
	}
	return "Invalid value."
}

// normalizeEmail trims and lower-cases addresses so lookups and the unique index agree.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
