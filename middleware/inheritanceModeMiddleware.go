package middleware

import (
	"net/http"

	"xbrowse/contexts"
	im "xbrowse/models/constants/inheritance-mode"
	"xbrowse/models/dtos/errors"

	"github.com/labstack/echo"
)

/*
	Echo middleware to ensure a valid `inheritanceMode` HTTP query parameter was provided
*/
func MandateInheritanceModeAttribute(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		modeQP := c.QueryParam("inheritanceMode")
		if len(modeQP) == 0 {
			return c.JSON(http.StatusBadRequest, errors.CreateSimpleBadRequest("Missing 'inheritanceMode' query parameter for querying!"))
		}

		mode, err := im.CastToInheritanceMode(modeQP)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errors.FromSearchError(err))
		}

		sc := c.(*contexts.SearchContext)
		sc.InheritanceMode = mode
		return next(sc)
	}
}
