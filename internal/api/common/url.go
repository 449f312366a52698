package common

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
)

// MaxPathParamLength bounds path parameters. Tender codes are far shorter.
const MaxPathParamLength = 128

// PathParam extracts a chi URL parameter, decodes it and validates it.
// The value must not be empty, must not contain whitespace and must not be
// longer than MaxPathParamLength.
func PathParam(r *http.Request, name string) (string, error) {
	decoded, err := url.PathUnescape(chi.URLParam(r, name))
	if err != nil {
		return "", fmt.Errorf("invalid URL encoding in %s", name)
	}

	if strings.TrimSpace(decoded) == "" {
		return "", fmt.Errorf("%s cannot be empty", name)
	}
	if strings.ContainsAny(decoded, " \t\n\r") {
		return "", fmt.Errorf("%s cannot contain whitespace", name)
	}
	if len(decoded) > MaxPathParamLength {
		return "", fmt.Errorf("%s cannot be longer than %d characters", name, MaxPathParamLength)
	}

	return decoded, nil
}
