package domain

// IngestState is a step of the ingestion state machine
type IngestState string

const (
	IngestStateStart          IngestState = "start"
	IngestStateFetched        IngestState = "fetched"
	IngestStateEdited         IngestState = "edited"
	IngestStateExtracted      IngestState = "extracted"
	IngestStateNotesGenerated IngestState = "notes_generated"
	IngestStatePersisted      IngestState = "paper_persisted"
	IngestStateIndexed        IngestState = "indexed"
	IngestStateDone           IngestState = "done"
	IngestStateAborted        IngestState = "aborted"
)

// IngestRequest asks for a paper to be ingested
type IngestRequest struct {
	Name          string `json:"name"`
	PaperURL      string `json:"paperUrl"`
	PagesToDelete []int  `json:"-"`
}

// IngestResult describes a finished ingestion
type IngestResult struct {
	Paper *Paper `json:"paper"`
	Notes []Note `json:"notes"`

	// Cached is true when the paper already existed and nothing was re-run
	Cached bool `json:"cached"`

	// States lists every state the pipeline passed through, in order
	States []IngestState `json:"states"`

	// Indexing is the outcome of the best-effort vector indexing step
	Indexing Outcome `json:"-"`
}

// Outcome is the result of a step whose failure must not fail its caller.
// Callers log a failed outcome and carry on.
type Outcome struct {
	Step string
	Err  error
}

// Succeeded creates a successful outcome
func Succeeded(step string) Outcome {
	return Outcome{Step: step}
}

// Failed creates a failed outcome
func Failed(step string, err error) Outcome {
	return Outcome{Step: step, Err: err}
}

// OK reports whether the step succeeded
func (o Outcome) OK() bool {
	return o.Err == nil
}
