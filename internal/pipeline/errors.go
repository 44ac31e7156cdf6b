package pipeline

import "fmt"

// Pipeline stages, recorded on StageError so logs show where a run degraded.
const (
	StageChunk    = "chunk"
	StageEmbed    = "embed"
	StagePersist  = "persist"
	StageRetrieve = "retrieve"
	StageGenerate = "generate"
	StageParse    = "parse"
)

// StageError wraps a failure with the pipeline stage it occurred in.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
