package constants

// RunStatus is the canonical status for rows in extraction_runs.
type RunStatus string

// Stable values (store these exact strings in DB).
const (
	RunStatusRunning   RunStatus = "RUNNING"   // render or extraction in progress
	RunStatusExtracted RunStatus = "EXTRACTED" // records stored and artifacts written
	RunStatusFailed    RunStatus = "FAILED"    // terminal failure
)

// EmploymentSalaried is the employment status scored highest by the matcher.
const EmploymentSalaried = "salaried"
