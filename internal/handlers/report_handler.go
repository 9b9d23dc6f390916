package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/medspa-api/internal/config"
	"github.com/BruksfildServices01/medspa-api/internal/httperr"
	"github.com/BruksfildServices01/medspa-api/internal/httpresp"
	ucReport "github.com/BruksfildServices01/medspa-api/internal/usecase/report"
)

// ======================================================
// HANDLER
// ======================================================

type ReportHandler struct {
	tz      string
	revenue *ucReport.RevenueReport
	staff   *ucReport.StaffReport
}

func NewReportHandler(
	cfg *config.Config,
	revenue *ucReport.RevenueReport,
	staff *ucReport.StaffReport,
) *ReportHandler {
	return &ReportHandler{tz: cfg.Timezone, revenue: revenue, staff: staff}
}

// ======================================================
// REVENUE
// GET /api/reports/revenue?granularity=daily|monthly|yearly&start_date&end_date&location_id&format=csv
// ======================================================

func (h *ReportHandler) Revenue(c *gin.Context) {
	start, err := parseDate(h.tz, c.Query("start_date"))
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	end, err := parseDate(h.tz, c.Query("end_date"))
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	out, err := h.revenue.Execute(c.Request.Context(), ucReport.RevenueReportInput{
		Granularity: c.Query("granularity"),
		StartDate:   start,
		EndDate:     end,
		LocationID:  queryUint(c, "location_id"),
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	if c.Query("format") == "csv" {
		name := fmt.Sprintf("revenue_%s_%s.csv",
			out.StartDate.Format(dateLayout), out.EndDate.Format(dateLayout))
		writeCSV(c, name, out.Series)
		return
	}

	httpresp.OK(c, out)
}

// ======================================================
// STAFF
// GET /api/reports/staff?start_date&end_date&location_id&format=csv
// ======================================================

func (h *ReportHandler) Staff(c *gin.Context) {
	start, err := parseDate(h.tz, c.Query("start_date"))
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	end, err := parseDate(h.tz, c.Query("end_date"))
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	rows, err := h.staff.Execute(c.Request.Context(), ucReport.StaffReportInput{
		StartDate:  start,
		EndDate:    end,
		LocationID: queryUint(c, "location_id"),
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	if c.Query("format") == "csv" {
		writeCSV(c, "staff_performance.csv", rows)
		return
	}

	httpresp.List(c, rows)
}

// writeCSV renders the whole export before writing so a marshal error can
// still produce a JSON error response.
func writeCSV[T any](c *gin.Context, filename string, rows []T) {
	var buf bytes.Buffer
	if err := ucReport.WriteCSV(&buf, rows); err != nil {
		httperr.FromError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
