package contexts

import (
	"xbrowse/models"
	"xbrowse/models/constants"
	"xbrowse/services"

	"github.com/labstack/echo"
	"go.uber.org/zap"
)

type (
	// "Helper" Context to pass into routes that need
	//  the search engine and other request-scoped values
	SearchContext struct {
		echo.Context
		Config          *models.Config
		ZapLogger       *zap.Logger
		SearchEngine    *services.SearchEngine
		InheritanceMode constants.InheritanceMode
	}
)
