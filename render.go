package tropiiify

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// RenderFile renders a templ component into the file at path.
func RenderFile(ctx context.Context, path string, cmp templ.Component) error {
	return writeFileAtomic(path, func(w io.Writer) error {
		return cmp.Render(ctx, w)
	})
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}
