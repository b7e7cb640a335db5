package handler

import (
	"fmt"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
)

// SonicSerializer is the echo.JSONSerializer of the API.  It matches
// encoding/json output so clients see no difference.
type SonicSerializer struct{}

var sonicAPI = sonic.ConfigStd

func (SonicSerializer) Serialize(c echo.Context, i any, indent string) error {
	enc := sonicAPI.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (SonicSerializer) Deserialize(c echo.Context, i any) error {
	err := sonicAPI.NewDecoder(c.Request().Body).Decode(i)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err)).SetInternal(err)
	}
	return nil
}
