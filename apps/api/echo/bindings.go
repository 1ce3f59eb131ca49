package echoapi

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kitobai/kitob/core"
	"github.com/kitobai/kitob/core/school"
	exportsvc "github.com/kitobai/kitob/services/export"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// bindStatus binds and validates the payload of the status endpoints.
func bindStatus(ctx echo.Context) (core.Status, error) {
	var data school.StatusInput
	if err := ctx.Bind(&data); err != nil {
		return "", errors.Wrap(err, "binding to StatusInput")
	}
	if err := ctx.Validate(&data); err != nil {
		return "", err
	}
	return data.Status, nil
}

// sendXLSX responds with the workbook written by write, as a download named filename.
func sendXLSX(ctx echo.Context, filename string, write func(w io.Writer) error) error {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return ctx.Blob(http.StatusOK, exportsvc.ContentType, buf.Bytes())
}
