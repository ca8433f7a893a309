package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	exportsvc "github.com/trezcool/dizimo/services/export"
)

var errUnknownExportFormat = echo.NewHTTPError(http.StatusBadRequest, "unknown format, want csv or pdf")

var exportFormatParam = "format"

// writeExport streams the table as a download in the requested format.
// CSV is the default.
func writeExport(ctx echo.Context, filename string, t exportsvc.Table) error {
	res := ctx.Response()
	switch ctx.QueryParam(exportFormatParam) {
	case "", "csv":
		res.Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s.csv", filename))
		res.Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
		res.WriteHeader(http.StatusOK)
		return exportsvc.WriteCSV(res, t)
	case "pdf":
		res.Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s.pdf", filename))
		res.Header().Set(echo.HeaderContentType, "application/pdf")
		res.WriteHeader(http.StatusOK)
		return exportsvc.WritePDF(res, t)
	}
	return errUnknownExportFormat
}
