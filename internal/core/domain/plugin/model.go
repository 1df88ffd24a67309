package plugin

// Record represents one plugin known to the registry: manifest metadata
// merged with locally-derived status. Identity is Name.
type Record struct {
	Name         string
	Description  string
	URL          string
	Requirements []string

	// Derived from local evidence, never persisted. Installed means the
	// plugin's files exist under the plugin directory; Active means the
	// run-control file carries its import directive. The two are
	// independent.
	Installed bool
	Active    bool

	// Unlisted marks records synthesized from a directive with no
	// matching manifest row.
	Unlisted bool
}

// Dangling reports the anomalous active-without-files state. It is
// surfaced as a warning on the row, never auto-repaired.
func (r Record) Dangling() bool {
	return r.Active && !r.Installed
}

// ResultStatus classifies the outcome of an install or uninstall attempt.
type ResultStatus int

const (
	Success ResultStatus = iota
	PartialFailure
	Failure
	// NeedsConfirm is returned when install would overwrite existing
	// plugin files and the caller did not opt in to overwriting.
	NeedsConfirm
)

func (s ResultStatus) String() string {
	switch s {
	case Success:
		return "success"
	case PartialFailure:
		return "partial failure"
	case Failure:
		return "failure"
	case NeedsConfirm:
		return "needs confirmation"
	default:
		return "unknown"
	}
}

// InstallResult is returned to the UI layer after every install or
// uninstall attempt. Detail is human-readable and names the failing step.
type InstallResult struct {
	Status ResultStatus
	Detail string
	Err    error
}

// Failed reports whether the operation left work undone.
func (r InstallResult) Failed() bool {
	return r.Status == Failure || r.Status == PartialFailure
}
