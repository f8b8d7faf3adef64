package tropiiify

import (
	"errors"
	"io/fs"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arkalab/tropiiify/views"
)

// iiifJSON is the media type of Presentation 3 documents.
const iiifJSON = `application/ld+json;profile="http://iiif.io/api/presentation/3/context.json"`

// handleFile serves files below the export root through the Echo
// filesystem. Manifests and the
// collection get the IIIF media type when the client asks for JSON-LD.
func (s *Server) handleFile(c echo.Context) error {
	rel := strings.TrimPrefix(c.Param("*"), "/")
	if rel == "" || strings.HasSuffix(rel, "/") {
		rel += "index.html"
	}
	if !fs.ValidPath(rel) {
		return echo.ErrNotFound
	}
	if strings.HasSuffix(rel, ".json") && strings.Contains(c.Request().Header.Get(echo.HeaderAccept), "application/ld+json") {
		c.Response().Header().Set(echo.HeaderContentType, iiifJSON)
	}
	return c.File(rel)
}

func (s *Server) handleMetrics() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(s.app.Metrics.Registry(), promhttp.HandlerOpts{}))
}

func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	site := s.app.siteView()
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, views.NotFound(site))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		s.log.Error().Err(err).Msg("server error")
		_ = RenderStatus(c, code, views.ServerError(site))
		return
	}
	s.Echo.DefaultHTTPErrorHandler(err, c)
}
