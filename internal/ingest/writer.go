package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/ruteo/delivery-backend-go/internal/models"
)

// Columns of the reconciled exports. The derived metric columns appear only
// after the outlier filter has run.
var (
	eventColumns  = []string{"codired", "cod_pda", "seccion", "turno", "fecha_hora", "solo_fecha", "solo_hora", "longitud", "latitud", "seg_transcurrido", "es_parada"}
	metricColumns = []string{"dist_anterior", "delta_t", "velocidad"}
)

const timestampLayout = "2006-01-02 15:04:05"

// WriteEvents renders a reconciled event set as a semicolon CSV. With
// metrics enabled the derived distance/time/speed columns are appended,
// matching the post-cleaning export shape.
func WriteEvents(w io.Writer, events []models.Event, withMetrics bool) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	header := eventColumns
	if withMetrics {
		header = append(append([]string{}, eventColumns...), metricColumns...)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i := range events {
		e := &events[i]
		row := []string{
			e.UnitCode,
			e.DeviceCode,
			e.Section,
			e.Shift,
			e.Timestamp.Format(timestampLayout),
			e.DateOnly,
			e.TimeOnly,
			formatCoord(e.Longitude),
			formatCoord(e.Latitude),
			formatSeconds(e.ElapsedSeconds),
			strconv.FormatBool(e.IsStop),
		}
		if withMetrics {
			row = append(row,
				formatFloat(e.DistPrevM),
				formatFloat(e.DeltaTSeconds),
				formatFloat(e.SpeedMPS),
			)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatCoord(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatSeconds(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
