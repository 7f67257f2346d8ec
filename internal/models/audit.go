package models

// Drop-reason keys reported by the one-sided synchronizer variant.
const (
	DropKeyMissing         = "key_only_missing"
	DropDateMissing        = "date_only_missing"
	DropBothMissing        = "both_missing"
	DropCombinationMissing = "combination_only_missing"
)

// SourceAudit counts what happened to one raw CSV source during ingest.
type SourceAudit struct {
	Read           int `json:"read"`
	Duplicates     int `json:"duplicates"`
	NullTimestamps int `json:"null_timestamps"`
	Kept           int `json:"kept"`
}

// SetAudit reports the effect of a synchronization pass on one record set.
type SetAudit struct {
	Name        string         `json:"name"`
	Before      int            `json:"before"`
	After       int            `json:"after"`
	DropReasons map[string]int `json:"drop_reasons,omitempty"`
}

// JoinAudit reports the nearest-time join that produces set D.
type JoinAudit struct {
	ToleranceSeconds float64 `json:"tolerance_seconds"`
	LeftRows         int     `json:"left_rows"`
	RightRows        int     `json:"right_rows"`
	Joined           int     `json:"joined"`
	UnmatchedLeft    int     `json:"unmatched_left"`
	UnusedRight      int     `json:"unused_right"`
}

// MergeAudit reports the A∪D union that produces set E.
type MergeAudit struct {
	TraceRows              int `json:"trace_rows"`
	StopRows               int `json:"stop_rows"`
	DuplicateStopConflicts int `json:"duplicate_stop_conflicts"`
	Total                  int `json:"total"`
}

// OutlierAudit reports the iterative speed-anomaly cleanup of set E.
type OutlierAudit struct {
	Routes              int     `json:"routes"`
	Removed             int     `json:"removed"`
	MeanRemovedPerRoute float64 `json:"mean_removed_per_route"`
}

// RunAudit is the side-channel statistics payload produced alongside the
// unified output. It is persisted with the run and served to the reporting
// layer; it is never embedded in the data rows themselves.
type RunAudit struct {
	Sources  map[string]SourceAudit `json:"sources"`
	SyncBC   []SetAudit             `json:"sync_b_c"`
	Join     JoinAudit              `json:"join"`
	SyncAD   []SetAudit             `json:"sync_a_d"`
	Merge    MergeAudit             `json:"merge"`
	Outliers OutlierAudit           `json:"outliers"`
	Final    int                    `json:"final"`
}
