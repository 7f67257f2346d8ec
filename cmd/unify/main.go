package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/ruteo/delivery-backend-go/internal/ingest"
	"github.com/ruteo/delivery-backend-go/internal/models"
	"github.com/ruteo/delivery-backend-go/internal/parse"
	"github.com/ruteo/delivery-backend-go/internal/pipeline"
)

// unify runs the reconciliation pipeline over the three source exports and
// writes the intermediate stop set (D) and the cleaned unified set (E) as
// semicolon CSVs, with the per-stage audit on stdout.
func main() {
	pathA := flag.String("a", "", "GPS trace export (source A)")
	pathB := flag.String("b", "", "delivery timestamps export (source B)")
	pathC := flag.String("c", "", "delivery coordinates export (source C)")
	outD := flag.String("out-d", "salida_D.csv", "reconciled stops output")
	outE := flag.String("out-e", "salida_E.csv", "unified events output")
	timezone := flag.String("tz", parse.DefaultTimezone, "reference timezone")
	toleranceS := flag.Int("tolerance", int(pipeline.DefaultJoinTolerance.Seconds()), "join tolerance in seconds")
	flag.Parse()

	if *pathA == "" || *pathB == "" || *pathC == "" {
		flag.Usage()
		os.Exit(2)
	}

	normalizer, err := parse.NewTimeNormalizer(*timezone)
	if err != nil {
		log.Fatalf("Failed to load timezone: %v", err)
	}

	audit := models.RunAudit{Sources: map[string]models.SourceAudit{}}

	trace := readSource(*pathA, models.SourceTrace, normalizer, &audit)
	activity := readSource(*pathB, models.SourceActivity, normalizer, &audit)
	coordinates := readSource(*pathC, models.SourceCoordinates, normalizer, &audit)

	bSet := pipeline.RecordSet{Name: models.SourceActivity, Events: activity}
	cSet := pipeline.RecordSet{Name: models.SourceCoordinates, Events: coordinates}
	alignedB, auditB := pipeline.AlignOnZoneDate(bSet, cSet)
	alignedC, auditC := pipeline.AlignOnZoneDate(cSet, bSet)
	audit.SyncBC = []models.SetAudit{auditB, auditC}

	tolerance := pipeline.DefaultJoinTolerance
	if *toleranceS > 0 {
		tolerance = secondsDuration(*toleranceS)
	}
	stops, joinAudit := pipeline.JoinNearest(alignedB.Events, alignedC.Events, tolerance)
	audit.Join = joinAudit
	writeSet(*outD, stops, false)

	syncedAD, adAudit := pipeline.Synchronize([]pipeline.RecordSet{
		{Name: models.SourceTrace, Events: trace},
		{Name: "D", Events: stops},
	}, pipeline.RouteDateKey)
	audit.SyncAD = adAudit

	unified, mergeAudit := pipeline.MergeUnified(syncedAD[0].Events, syncedAD[1].Events)
	audit.Merge = mergeAudit

	cleaned, outlierAudit := pipeline.CleanRoutes(unified, pipeline.DefaultCleaningThresholds)
	audit.Outliers = outlierAudit
	audit.Final = len(cleaned)
	writeSet(*outE, cleaned, true)

	payload, err := json.MarshalIndent(audit, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode audit: %v", err)
	}
	os.Stdout.Write(append(payload, '\n'))
}

func readSource(path, source string, normalizer *parse.TimeNormalizer, audit *models.RunAudit) []models.Event {
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("Failed to open source %s: %v", source, err)
	}
	defer f.Close()

	var events []models.Event
	var sourceAudit models.SourceAudit
	switch source {
	case models.SourceTrace:
		events, sourceAudit, err = ingest.ReadTrace(f, normalizer)
	case models.SourceActivity:
		events, sourceAudit, err = ingest.ReadActivity(f, normalizer)
	default:
		events, sourceAudit, err = ingest.ReadCoordinates(f, normalizer)
	}
	if err != nil {
		log.Fatalf("Failed to read source %s: %v", source, err)
	}
	audit.Sources[source] = sourceAudit
	return events
}

func writeSet(path string, events []models.Event, withMetrics bool) {
	f, err := os.Create(path)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", path, err)
	}
	defer f.Close()

	if err := ingest.WriteEvents(f, events, withMetrics); err != nil {
		log.Fatalf("Failed to write %s: %v", path, err)
	}
	log.Printf("[Unify] Wrote %d rows to %s", len(events), path)
}

func secondsDuration(s int) time.Duration {
	return time.Duration(s) * time.Second
}
