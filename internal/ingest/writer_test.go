package ingest

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruteo/delivery-backend-go/internal/models"
)

func TestWriteEvents(t *testing.T) {
	lat, lon := 40.416775, -3.70379
	elapsed := 12.5
	events := []models.Event{{
		UnitCode:       "2807301",
		DeviceCode:     "pda1",
		Section:        "S1",
		Shift:          "M",
		Timestamp:      time.Date(2025, 5, 29, 10, 0, 0, 0, time.UTC),
		DateOnly:       "2025-05-29",
		TimeOnly:       "10:00:00",
		Latitude:       &lat,
		Longitude:      &lon,
		ElapsedSeconds: &elapsed,
		IsStop:         true,
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteEvents(&buf, events, false))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t,
		"codired;cod_pda;seccion;turno;fecha_hora;solo_fecha;solo_hora;longitud;latitud;seg_transcurrido;es_parada",
		lines[0])
	assert.Equal(t,
		"2807301;pda1;S1;M;2025-05-29 10:00:00;2025-05-29;10:00:00;-3.70379;40.416775;12.5;true",
		lines[1])
}

func TestWriteEventsWithMetrics(t *testing.T) {
	events := []models.Event{{
		UnitCode:      "2807301",
		DeviceCode:    "pda1",
		Timestamp:     time.Date(2025, 5, 29, 10, 0, 0, 0, time.UTC),
		DistPrevM:     12.5,
		DeltaTSeconds: 5,
		SpeedMPS:      2.5,
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteEvents(&buf, events, true))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.True(t, strings.HasSuffix(lines[0], "dist_anterior;delta_t;velocidad"))
	assert.True(t, strings.HasSuffix(lines[1], "12.50;5.00;2.50"))
}

func TestWriteEventsNullFields(t *testing.T) {
	events := []models.Event{{
		UnitCode:  "2807301",
		Timestamp: time.Date(2025, 5, 29, 10, 0, 0, 0, time.UTC),
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteEvents(&buf, events, false))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	fields := strings.Split(lines[1], ";")
	assert.Equal(t, "", fields[7], "null longitude renders empty")
	assert.Equal(t, "", fields[8], "null latitude renders empty")
	assert.Equal(t, "", fields[9], "null elapsed seconds renders empty")
	assert.Equal(t, "false", fields[10])
}
