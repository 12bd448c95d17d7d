package cohorts

import (
	"encoding/json"
	"net/http"

	"xbrowse/contexts"
	"xbrowse/models/constants"
	"xbrowse/models/dtos"
	"xbrowse/models/dtos/errors"
	"xbrowse/services"

	"github.com/labstack/echo"
)

func SearchCohortGenes(c echo.Context) error {
	sc := c.(*contexts.SearchContext)

	var req dtos.CohortGenesSearchRequestDto
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		response := errors.FromSearchError(err)
		if response.Code != http.StatusBadRequest {
			response = errors.CreateSimpleBadRequest("Malformed request body: " + err.Error())
		}
		return c.JSON(response.Code, response)
	}

	result, err := sc.SearchEngine.SearchCohortGenes(c.Request().Context(), services.CohortSearch{
		Cohort:        req.Cohort,
		Mode:          constants.InheritanceMode(req.InheritanceMode),
		VariantFilter: req.VariantFilter,
		QualityFilter: req.QualityFilter,
	})
	if err != nil {
		response := errors.FromSearchError(err)
		return c.JSON(response.Code, response)
	}

	return c.JSON(http.StatusOK, dtos.SearchResponseDto{
		Status:  http.StatusOK,
		Message: "Success",
		Results: result,
	})
}
