// Package validation holds the request rules shared by handlers and services.
package validation

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	slugPattern     = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*(?:/[a-z0-9]+(?:-[a-z0-9]+)*)*$`)
	hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	slugSpaces      = regexp.MustCompile(`[\s_]+`)

	registerOnce sync.Once
	registerErr  error
)

// NormalizeSlug lower-cases raw, turns whitespace into dashes and trims slashes.
func NormalizeSlug(raw string) string {
	slug := strings.ToLower(strings.TrimSpace(raw))
	slug = slugSpaces.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "/")
}

// IsSlug reports whether s is a normalized slug such as "about" or "docs/getting-started".
func IsSlug(s string) bool {
	return len(s) <= 200 && slugPattern.MatchString(s)
}

// IsHexColor 校验 #rgb 或 #rrggbb 颜色值。
func IsHexColor(s string) bool {
	return hexColorPattern.MatchString(s)
}

// IsLinkURL accepts absolute http(s), mailto:, tel:, site-relative paths and anchors.
func IsLinkURL(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.ContainsAny(trimmed, " \t\n") {
		return false
	}
	if strings.HasPrefix(trimmed, "#") {
		return len(trimmed) > 1
	}
	if strings.HasPrefix(trimmed, "/") {
		return !strings.HasPrefix(trimmed, "//")
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return false
	}
	switch parsed.Scheme {
	case "http", "https":
		return parsed.Host != ""
	case "mailto", "tel":
		return parsed.Opaque != ""
	default:
		return false
	}
}

// Register adds the custom rules (slug, linkurl, hexcolor) to gin's validator. Safe to call repeatedly.
func Register() error {
	registerOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("gin validator engine is not go-playground/validator")
			return
		}
		rules := map[string]validator.Func{
			"slug": func(fl validator.FieldLevel) bool {
				return IsSlug(NormalizeSlug(fl.Field().String()))
			},
			"linkurl": func(fl validator.FieldLevel) bool {
				return IsLinkURL(fl.Field().String())
			},
			"hexcolor": func(fl validator.FieldLevel) bool {
				return IsHexColor(fl.Field().String())
			},
		}
		for tag, fn := range rules {
			if err := engine.RegisterValidation(tag, fn); err != nil {
				registerErr = fmt.Errorf("register %s rule: %w", tag, err)
				return
			}
		}
	})
	return registerErr
}

// Message converts a binding error into a short human readable message.
func Message(err error, fallback string) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fallback
	}

	first := verrs[0]
	field := strings.ToLower(first.Field())
	switch first.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "slug":
		return fmt.Sprintf("%s must contain lowercase letters, digits, dashes or slashes", field)
	case "linkurl":
		return fmt.Sprintf("%s must be an http(s), mailto:, tel:, /path or #anchor link", field)
	case "hexcolor":
		return fmt.Sprintf("%s must be a hex colour like #1f2937", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, first.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, first.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
