package families

import (
	"encoding/json"
	"net/http"
	"strconv"

	"xbrowse/contexts"
	"xbrowse/models/dtos"
	"xbrowse/models/dtos/errors"
	"xbrowse/models/searcherr"
	"xbrowse/services"

	"github.com/labstack/echo"
	"go.uber.org/zap"
)

// SearchFamilies runs the query's inheritance mode over every family of the
// request body with the same filters.
func SearchFamilies(c echo.Context) error {
	sc := c.(*contexts.SearchContext)

	var req dtos.FamiliesSearchRequestDto
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return badBody(c, err)
	}
	if len(req.Families) == 0 {
		return c.JSON(http.StatusBadRequest, errors.CreateSimpleBadRequest("At least one family is required"))
	}

	searches := make([]services.FamilySearch, 0, len(req.Families))
	for _, family := range req.Families {
		searches = append(searches, services.FamilySearch{
			Family:            family,
			Mode:              sc.InheritanceMode,
			VariantFilter:     req.VariantFilter,
			QualityFilter:     req.QualityFilter,
			AlleleCountFilter: req.AlleleCountFilter,
			BurdenFilter:      req.BurdenFilter,
		})
	}

	results, err := sc.SearchEngine.SearchFamilies(c.Request().Context(), searches)
	if err != nil {
		sc.ZapLogger.Warn("mvc: family search failed", zap.Error(err))
		response := errors.FromSearchError(err)
		return c.JSON(response.Code, response)
	}

	return c.JSON(http.StatusOK, dtos.SearchResponseDto{
		Status:  http.StatusOK,
		Message: "Success",
		Results: results,
	})
}

func SearchFamilyGene(c echo.Context) error {
	sc := c.(*contexts.SearchContext)

	var req dtos.FamilyGeneSearchRequestDto
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return badBody(c, err)
	}

	variants, err := sc.SearchEngine.SearchFamilyGene(c.Request().Context(), req.Family, c.Param("geneId"), req.VariantFilter, req.QualityFilter)
	if err != nil {
		response := errors.FromSearchError(err)
		return c.JSON(response.Code, response)
	}

	return c.JSON(http.StatusOK, dtos.SearchResponseDto{
		Status:  http.StatusOK,
		Message: "Success",
		Results: variants,
	})
}

func GetFamilyVariant(c echo.Context) error {
	sc := c.(*contexts.SearchContext)

	xpos, err := strconv.ParseInt(c.QueryParam("xpos"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errors.CreateSimpleBadRequest("Error converting 'xpos' query parameter! Check your input"))
	}
	ref, alt := c.QueryParam("ref"), c.QueryParam("alt")
	if ref == "" || alt == "" {
		return c.JSON(http.StatusBadRequest, errors.CreateSimpleBadRequest("Missing 'ref' or 'alt' query parameter for querying!"))
	}

	variant, err := sc.SearchEngine.GetFamilyVariant(c.Request().Context(), c.Param("projectId"), c.Param("familyId"), xpos, ref, alt)
	if err != nil {
		response := errors.FromSearchError(err)
		return c.JSON(response.Code, response)
	}
	if variant == nil {
		return c.JSON(http.StatusNotFound, errors.CreateSimpleNotFound("Variant not found"))
	}

	return c.JSON(http.StatusOK, dtos.SearchResponseDto{
		Status:  http.StatusOK,
		Message: "Success",
		Results: variant,
	})
}

func badBody(c echo.Context, err error) error {
	if _, ok := searcherr.KindOf(err); ok {
		response := errors.FromSearchError(err)
		return c.JSON(response.Code, response)
	}
	return c.JSON(http.StatusBadRequest, errors.CreateSimpleBadRequest("Malformed request body: "+err.Error()))
}
