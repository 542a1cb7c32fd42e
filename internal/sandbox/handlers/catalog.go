package handlers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/harry1917/basalto-web/internal/catalog"
	"github.com/harry1917/basalto-web/internal/repository"
	"github.com/harry1917/basalto-web/internal/service"
)

// HandleCatalog handles GET /catalogo/ with the listing markup of every
// variant currently in stock.
func HandleCatalog(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := service.CatalogEntries(c.Request.Context(), repos)
		if err != nil {
			logger.Error("Failed to build catalog", zap.Error(err))
			c.String(http.StatusInternalServerError, "catalog unavailable")
			return
		}

		var buf bytes.Buffer
		grids := map[catalog.Tab][]catalog.Entry{catalog.TabMen: entries}
		if err := catalog.RenderListing(&buf, grids); err != nil {
			logger.Error("Failed to render catalog", zap.Error(err))
			c.String(http.StatusInternalServerError, "catalog unavailable")
			return
		}

		c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
	}
}
