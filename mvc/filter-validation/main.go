package filterValidation

import (
	"encoding/json"
	"net/http"

	"xbrowse/models/dtos"
	"xbrowse/models/dtos/errors"
	"xbrowse/models/filters"

	"github.com/labstack/echo"
)

// ValidateFilters parses each supplied filter on its own and reports, per
// filter, either its normalized form or why it was rejected.
func ValidateFilters(c echo.Context) error {
	var req dtos.FilterValidationRequestDto
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errors.CreateSimpleBadRequest("Malformed request body: "+err.Error()))
	}

	response := dtos.FilterValidationResponseDto{
		Filters: map[string]map[string]interface{}{},
		Errors:  map[string]string{},
	}

	if req.VariantFilter != nil {
		if f, err := filters.VariantFilterFromJSON(req.VariantFilter); err != nil {
			response.Errors["variantFilter"] = err.Error()
		} else {
			response.Filters["variantFilter"] = f.ToJSON()
		}
	}
	if req.QualityFilter != nil {
		if f, err := filters.QualityFilterFromJSON(req.QualityFilter); err != nil {
			response.Errors["qualityFilter"] = err.Error()
		} else {
			response.Filters["qualityFilter"] = f.ToJSON()
		}
	}
	if req.AlleleCountFilter != nil {
		if f, err := filters.AlleleCountFilterFromJSON(req.AlleleCountFilter); err != nil {
			response.Errors["alleleCountFilter"] = err.Error()
		} else {
			response.Filters["alleleCountFilter"] = f.ToJSON()
		}
	}
	if req.BurdenFilter != nil {
		if f, err := filters.BurdenFilterFromJSON(req.BurdenFilter); err != nil {
			response.Errors["burdenFilter"] = err.Error()
		} else {
			response.Filters["burdenFilter"] = f.ToJSON()
		}
	}

	response.Valid = len(response.Errors) == 0
	if !response.Valid {
		return c.JSON(http.StatusBadRequest, response)
	}
	return c.JSON(http.StatusOK, response)
}
