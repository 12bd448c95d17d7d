package mvc

import (
	"xbrowse/contexts"
	xm "xbrowse/middleware"
	"xbrowse/models"
	cohortsMvc "xbrowse/mvc/cohorts"
	familiesMvc "xbrowse/mvc/families"
	filterValidationMvc "xbrowse/mvc/filter-validation"
	serviceInfoMvc "xbrowse/mvc/service-info"
	"xbrowse/services"

	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
	"go.uber.org/zap"
)

// NewServer builds the echo instance with every route registered.
func NewServer(engine *services.SearchEngine, cfg *models.Config, logger *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Configure Server
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST},
	}))
	e.Use(xm.RequestLogger(logger))

	// -- Override handlers with the search context
	//		to be able to provide the engine and config
	e.Use(func(h echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sc := &contexts.SearchContext{
				Context:      c,
				Config:       cfg,
				ZapLogger:    logger,
				SearchEngine: engine,
			}
			return h(sc)
		}
	})

	// -- Root
	e.GET("/", serviceInfoMvc.GetWelcome)

	// -- Service Info
	e.GET("/service-info", serviceInfoMvc.GetServiceInfo)

	// -- Families
	e.POST("/families/search", familiesMvc.SearchFamilies,
		// middleware
		xm.MandateInheritanceModeAttribute)
	e.POST("/families/genes/:geneId/search", familiesMvc.SearchFamilyGene)
	e.GET("/projects/:projectId/families/:familyId/variants", familiesMvc.GetFamilyVariant)

	// -- Cohorts
	e.POST("/cohorts/genes/search", cohortsMvc.SearchCohortGenes)

	// -- Filters
	e.POST("/filters/validate", filterValidationMvc.ValidateFilters)

	return e
}
