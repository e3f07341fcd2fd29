// Package service provides the business logic layer (use cases) of the
// storefront: the public catalog, the admin console operations and the
// session proxy. Every console operation takes the calling domain.Actor
// explicitly; nothing is read from ambient state.
package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/zaeom/storefront-bfa-go/internal/domain"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "product_type", func(fl validator.FieldLevel) bool {
		return domain.ProductType(fl.Field().String()).Valid()
	})
	mustRegister(v, "product_source", func(fl validator.FieldLevel) bool {
		return domain.ProductSource(fl.Field().String()).Valid()
	})
	mustRegister(v, "ad_position", func(fl validator.FieldLevel) bool {
		return domain.AdPosition(fl.Field().Int()).Valid()
	})
	mustRegister(v, "invite_role", func(fl validator.FieldLevel) bool {
		r := domain.Role(fl.Field().Uint())
		return r == domain.RoleSeller || r == domain.RoleAdmin
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// validateStruct reports the first failing field as a domain.ErrValidation.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &domain.ErrValidation{Field: "body", Message: err.Error()}
	}
	fe := fieldErrs[0]
	return &domain.ErrValidation{Field: fieldPath(fe), Message: describe(fe)}
}

// fieldPath drops the struct name from the namespace: features[1].title.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at most %s items", fe.Param())
		}
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "hexcolor":
		return "must be a hex color like #00E055"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "product_type":
		return "must be tool or course"
	case "product_source":
		return "must be own or affiliate"
	case "ad_position":
		return "must be 0 (hero side) or 1 (mid feed)"
	case "invite_role":
		return "invites may only grant seller or admin"
	}
	return "failed " + fe.Tag() + " validation"
}

// ============================================================
// Tier checks
// ============================================================

func requireAdmin(actor domain.Actor, action string) error {
	if !actor.Role.IsAdminTier() {
		return &domain.ErrForbidden{Action: action, Reason: "insufficient privilege"}
	}
	return nil
}

func requireMaster(actor domain.Actor, action string) error {
	if actor.Role != domain.RoleMaster {
		return &domain.ErrForbidden{Action: action, Reason: "insufficient privilege: master only"}
	}
	return nil
}

func requireConsole(actor domain.Actor, action string) error {
	if actor.Role < domain.RoleSeller || !actor.Role.Valid() {
		return &domain.ErrForbidden{Action: action, Reason: "console access requires seller or above"}
	}
	return nil
}
