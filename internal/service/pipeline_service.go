package service

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/ruteo/delivery-backend-go/internal/cluster"
	"github.com/ruteo/delivery-backend-go/internal/ingest"
	"github.com/ruteo/delivery-backend-go/internal/models"
	"github.com/ruteo/delivery-backend-go/internal/parse"
	"github.com/ruteo/delivery-backend-go/internal/pipeline"
	"github.com/ruteo/delivery-backend-go/internal/repository"
	"github.com/ruteo/delivery-backend-go/internal/spatial"
)

// PipelineService drives one full reconciliation run: ingest the three
// source exports, synchronize and join them, clean the unified route, snap
// every point to its nearest portal and persist the results with a
// per-stage audit.
type PipelineService struct {
	runs     *repository.RunRepository
	events   *repository.EventRepository
	clusters *repository.ClusterRepository

	portals    *spatial.IndexProvider
	normalizer *parse.TimeNormalizer

	tolerance  time.Duration
	thresholds pipeline.CleaningThresholds
}

// NewPipelineService creates a new pipeline service
func NewPipelineService(
	runs *repository.RunRepository,
	events *repository.EventRepository,
	clusters *repository.ClusterRepository,
	portals *spatial.IndexProvider,
	normalizer *parse.TimeNormalizer,
	tolerance time.Duration,
	thresholds pipeline.CleaningThresholds,
) *PipelineService {
	return &PipelineService{
		runs:       runs,
		events:     events,
		clusters:   clusters,
		portals:    portals,
		normalizer: normalizer,
		tolerance:  tolerance,
		thresholds: thresholds,
	}
}

// StartRun registers a pending run and processes it in the background.
func (s *PipelineService) StartRun(pathA, pathB, pathC string) (*models.Run, error) {
	run := &models.Run{
		ID:        uuid.NewString(),
		Status:    models.RunPending,
		PathA:     pathA,
		PathB:     pathB,
		PathC:     pathC,
		CreatedAt: time.Now(),
	}
	if err := s.runs.Create(run); err != nil {
		return nil, err
	}

	go func() {
		if err := s.Execute(run); err != nil {
			log.Printf("[Pipeline] Run %s failed: %v", run.ID, err)
		}
	}()
	return run, nil
}

// Execute processes a registered run synchronously. A stage failure marks
// the run failed and is returned; there is no partial resume, a failed run
// is simply re-submitted.
func (s *PipelineService) Execute(run *models.Run) error {
	if err := s.runs.MarkRunning(run.ID); err != nil {
		return err
	}

	audit, err := s.process(run)
	if err != nil {
		if markErr := s.runs.MarkFailed(run.ID, err.Error()); markErr != nil {
			log.Printf("[Pipeline] Run %s: could not record failure: %v", run.ID, markErr)
		}
		return err
	}

	payload, err := json.Marshal(audit)
	if err != nil {
		return fmt.Errorf("failed to encode audit: %w", err)
	}
	return s.runs.MarkCompleted(run.ID, string(payload))
}

func (s *PipelineService) process(run *models.Run) (*models.RunAudit, error) {
	audit := &models.RunAudit{Sources: map[string]models.SourceAudit{}}

	trace, err := s.readSource(run.PathA, models.SourceTrace, audit)
	if err != nil {
		return nil, err
	}
	activity, err := s.readSource(run.PathB, models.SourceActivity, audit)
	if err != nil {
		return nil, err
	}
	coordinates, err := s.readSource(run.PathC, models.SourceCoordinates, audit)
	if err != nil {
		return nil, err
	}

	// B and C must agree on (unit, section, shift, date) before joining.
	// Aligning each against the other keeps exactly the shared combinations
	// and explains every dropped row.
	bSet := pipeline.RecordSet{Name: models.SourceActivity, Events: activity}
	cSet := pipeline.RecordSet{Name: models.SourceCoordinates, Events: coordinates}
	alignedB, auditB := pipeline.AlignOnZoneDate(bSet, cSet)
	alignedC, auditC := pipeline.AlignOnZoneDate(cSet, bSet)
	audit.SyncBC = []models.SetAudit{auditB, auditC}

	stops, joinAudit := pipeline.JoinNearest(alignedB.Events, alignedC.Events, s.tolerance)
	audit.Join = joinAudit

	// The trace and the reconciled stops must agree on (unit, device, date).
	syncedAD, adAudit := pipeline.Synchronize([]pipeline.RecordSet{
		{Name: models.SourceTrace, Events: trace},
		{Name: "D", Events: stops},
	}, pipeline.RouteDateKey)
	audit.SyncAD = adAudit

	unified, mergeAudit := pipeline.MergeUnified(syncedAD[0].Events, syncedAD[1].Events)
	audit.Merge = mergeAudit

	cleaned, outlierAudit := pipeline.CleanRoutes(unified, s.thresholds)
	audit.Outliers = outlierAudit
	audit.Final = len(cleaned)

	if err := s.events.ReplaceRun(run.ID, cleaned); err != nil {
		return nil, err
	}

	if err := s.annotateAndAggregate(run.ID, cleaned); err != nil {
		return nil, err
	}

	log.Printf("[Pipeline] Run %s completed: %d unified events", run.ID, audit.Final)
	return audit, nil
}

// annotateAndAggregate snaps the cleaned route to portals and stores the
// per-portal visit aggregates. Units without a portal file keep sentinel
// annotations and still aggregate; their street fields carry the not-found
// marker.
func (s *PipelineService) annotateAndAggregate(runID string, events []models.Event) error {
	byUnit := map[string][]models.Event{}
	var units []string
	for _, e := range events {
		if _, seen := byUnit[e.UnitCode]; !seen {
			units = append(units, e.UnitCode)
		}
		byUnit[e.UnitCode] = append(byUnit[e.UnitCode], e)
	}

	var allVisits []models.PortalVisit
	for _, unit := range units {
		ix, err := s.portals.IndexFor(unit)
		if err != nil {
			return fmt.Errorf("failed to load portal index for unit %s: %w", unit, err)
		}

		points := spatial.Associate(byUnit[unit], ix)
		points = cluster.AnnotateStreets(points)
		points = cluster.CollapseConsecutiveDuplicates(points)
		allVisits = append(allVisits, cluster.AggregatePortals(points)...)
	}

	return s.clusters.SaveVisits(runID, allVisits)
}

func (s *PipelineService) readSource(path, source string, audit *models.RunAudit) ([]models.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source %s: %w", source, err)
	}
	defer f.Close()

	var events []models.Event
	var sourceAudit models.SourceAudit
	switch source {
	case models.SourceTrace:
		events, sourceAudit, err = ingest.ReadTrace(f, s.normalizer)
	case models.SourceActivity:
		events, sourceAudit, err = ingest.ReadActivity(f, s.normalizer)
	case models.SourceCoordinates:
		events, sourceAudit, err = ingest.ReadCoordinates(f, s.normalizer)
	default:
		return nil, fmt.Errorf("unknown source %q", source)
	}
	if err != nil {
		return nil, err
	}
	audit.Sources[source] = sourceAudit
	return events, nil
}

// GetRun fetches one run
func (s *PipelineService) GetRun(id string) (*models.Run, error) {
	return s.runs.GetByID(id)
}

// ListRuns returns recent runs
func (s *PipelineService) ListRuns(limit int) ([]models.Run, error) {
	return s.runs.List(limit)
}

// GetAudit returns a run's audit payload, decoded
func (s *PipelineService) GetAudit(id string) (*models.RunAudit, error) {
	raw, err := s.runs.GetAudit(id)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}
	var audit models.RunAudit
	if err := json.Unmarshal([]byte(raw), &audit); err != nil {
		return nil, fmt.Errorf("failed to decode audit for run %s: %w", id, err)
	}
	return &audit, nil
}
