package handlers

import (
	"encoding/json"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/soundcollective/collective-api/internal/errors"
)

// parseIDParam parses a numeric path parameter, responding 400 on failure.
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		apierrors.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// bindMap decodes an already-parsed JSON body into a typed request struct.
// Used by partial-update handlers that first read the raw map to tell
// explicit nulls apart from absent keys.
func bindMap(raw map[string]any, out any) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
