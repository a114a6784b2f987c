package handlers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/vishnu-krishnan/expenze/internal/auth"
	"github.com/vishnu-krishnan/expenze/internal/planning"
	"github.com/vishnu-krishnan/expenze/internal/repository"
)

const (
	exportFormatCSV  = "csv"
	exportFormatJSON = "json"
)

// Export выгружает план месяца в файл CSV или JSON.
func (h *PlanHandler) Export(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	monthKey := c.Param("monthKey")

	detail, err := h.Planning.GetMonthPlan(c.Request().Context(), userID, monthKey)
	if err != nil {
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "invalid month key")
		}
		return serverError(c)
	}

	format := strings.ToLower(strings.TrimSpace(c.QueryParam("format")))
	if format == "" {
		format = exportFormatCSV
	}

	switch format {
	case exportFormatJSON:
		filename := "plan-" + monthKey + ".json"
		c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\""+filename+"\"")
		return c.JSON(http.StatusOK, detail)
	case exportFormatCSV:
		var buf bytes.Buffer
		writer := csv.NewWriter(&buf)
		if err := writeItemsCSV(writer, detail); err != nil {
			return serverError(c)
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			return serverError(c)
		}

		filename := "plan-" + monthKey + ".csv"
		c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\""+filename+"\"")
		return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
	default:
		return badRequest(c, "invalid export format")
	}
}

func writeItemsCSV(writer *csv.Writer, detail planning.PlanDetail) error {
	header := []string{
		"month_key",
		"item_id",
		"category",
		"name",
		"planned_amount_cents",
		"actual_amount_cents",
		"is_paid",
		"priority",
		"notes",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, item := range detail.Items {
		priority := ""
		if item.Priority != nil {
			priority = string(*item.Priority)
		}
		notes := ""
		if item.Notes != nil {
			notes = *item.Notes
		}

		record := []string{
			detail.Plan.MonthKey,
			item.ID.String(),
			item.CategoryName,
			item.Name,
			formatInt64(item.PlannedAmountCents),
			formatInt64(item.ActualAmountCents),
			formatBool(item.IsPaid),
			priority,
			notes,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return nil
}

func formatInt64(value int64) string {
	return strconv.FormatInt(value, 10)
}

func formatBool(value bool) string {
	if value {
		return "true"
	}
	return "false"
}
