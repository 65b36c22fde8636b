package validators

import (
	"net/http"
	"strconv"

	pkgerrors "github.com/stylesense/stylesense-backend/pkg/errors"
)

// QueryInt parses an optional integer query parameter, falling back to def
// when absent.
func QueryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, name+" must be an integer")
	}
	return value, nil
}
