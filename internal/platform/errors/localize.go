package errors

import (
	stderrors "errors"

	"github.com/louisbranch/battlegrid/internal/platform/errors/i18n"
)

// DefaultLocale is the default locale for error messages.
const DefaultLocale = i18n.BaseLocale

// Localize renders the user-facing message of err in the closest supported
// locale. Foreign errors keep their own text.
func Localize(err error, locale string) string {
	if err == nil {
		return ""
	}
	if locale == "" {
		locale = DefaultLocale
	}
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return i18n.GetCatalog(locale).Format(string(appErr.Code), appErr.Metadata)
	}
	return err.Error()
}

// MetadataOf returns the metadata of the first domain error in err's chain.
func MetadataOf(err error) map[string]string {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr.Metadata
	}
	return nil
}
