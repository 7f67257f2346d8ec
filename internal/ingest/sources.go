package ingest

import (
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/ruteo/delivery-backend-go/internal/models"
	"github.com/ruteo/delivery-backend-go/internal/parse"
)

// Required columns per source export.
var (
	traceColumns       = []string{"fec_lectura_medicion", "longitud_wgs84_gd", "latitud_wgs84_gd", "cod_inv_pda", "codired"}
	activityColumns    = []string{"Num Inv", "Fec Actividad", "Seg Transcurrido", "codired"}
	coordinatesColumns = []string{"COD_SECCION", "INSTANTE", "LONGITUD", "LATITUD", "codired"}
)

// ReadTrace parses the GPS trace export (source A). Rows whose timestamp
// fails to parse are dropped and counted; coordinate parse failures keep the
// row with null coordinates.
func ReadTrace(r io.Reader, tn *parse.TimeNormalizer) ([]models.Event, models.SourceAudit, error) {
	t, err := readTable(r, models.SourceTrace, traceColumns)
	if err != nil {
		return nil, models.SourceAudit{}, err
	}

	events := make([]models.Event, 0, len(t.rows))
	audit := models.SourceAudit{Read: t.read, Duplicates: t.duplicates}

	for _, row := range t.rows {
		e := models.Event{
			UnitCode:   t.field(row, "codired"),
			DeviceCode: t.field(row, "cod_inv_pda"),
			Timestamp:  tn.Timestamp(t.field(row, "fec_lectura_medicion")),
			Latitude:   parse.Coordinate(t.field(row, "latitud_wgs84_gd")),
			Longitude:  parse.Coordinate(t.field(row, "longitud_wgs84_gd")),
		}
		if !e.HasTimestamp() {
			audit.NullTimestamps++
			continue
		}
		e.DateOnly, e.TimeOnly = parse.SplitDate(e.Timestamp)
		events = append(events, e)
	}

	audit.Kept = len(events)
	logSource(models.SourceTrace, audit)
	return events, audit, nil
}

// ReadActivity parses the registered-delivery-timestamps export (source B).
// Section, shift and activity code are optional columns in older exports.
func ReadActivity(r io.Reader, tn *parse.TimeNormalizer) ([]models.Event, models.SourceAudit, error) {
	t, err := readTable(r, models.SourceActivity, activityColumns)
	if err != nil {
		return nil, models.SourceAudit{}, err
	}

	events := make([]models.Event, 0, len(t.rows))
	audit := models.SourceAudit{Read: t.read, Duplicates: t.duplicates}

	for _, row := range t.rows {
		e := models.Event{
			UnitCode:       t.field(row, "codired"),
			DeviceCode:     t.field(row, "Num Inv"),
			Section:        t.field(row, "seccion"),
			Shift:          t.field(row, "turno"),
			ActivityCode:   t.field(row, "cod_actividad"),
			Timestamp:      tn.Timestamp(t.field(row, "Fec Actividad")),
			ElapsedSeconds: parseSeconds(t.field(row, "Seg Transcurrido")),
		}
		if !e.HasTimestamp() {
			audit.NullTimestamps++
			continue
		}
		e.DateOnly, e.TimeOnly = parse.SplitDate(e.Timestamp)
		events = append(events, e)
	}

	audit.Kept = len(events)
	logSource(models.SourceActivity, audit)
	return events, audit, nil
}

// ReadCoordinates parses the registered-delivery-coordinates export
// (source C).
func ReadCoordinates(r io.Reader, tn *parse.TimeNormalizer) ([]models.Event, models.SourceAudit, error) {
	t, err := readTable(r, models.SourceCoordinates, coordinatesColumns)
	if err != nil {
		return nil, models.SourceAudit{}, err
	}

	events := make([]models.Event, 0, len(t.rows))
	audit := models.SourceAudit{Read: t.read, Duplicates: t.duplicates}

	for _, row := range t.rows {
		e := models.Event{
			UnitCode:  t.field(row, "codired"),
			Section:   t.field(row, "COD_SECCION"),
			Shift:     t.field(row, "turno"),
			Timestamp: tn.Timestamp(t.field(row, "INSTANTE")),
			Latitude:  parse.Coordinate(t.field(row, "LATITUD")),
			Longitude: parse.Coordinate(t.field(row, "LONGITUD")),
		}
		if !e.HasTimestamp() {
			audit.NullTimestamps++
			continue
		}
		e.DateOnly, e.TimeOnly = parse.SplitDate(e.Timestamp)
		events = append(events, e)
	}

	audit.Kept = len(events)
	logSource(models.SourceCoordinates, audit)
	return events, audit, nil
}

// parseSeconds reads the elapsed-seconds column, tolerating comma decimals.
func parseSeconds(value string) *float64 {
	value = strings.ReplaceAll(value, ",", ".")
	if value == "" || value == "-" {
		return nil
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	return &v
}

func logSource(source string, a models.SourceAudit) {
	log.Printf("[Ingest] Source %s: %d read, %d duplicates, %d null timestamps, %d kept",
		source, a.Read, a.Duplicates, a.NullTimestamps, a.Kept)
}
