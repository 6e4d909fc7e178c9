package service

import (
	"errors"
	"fmt"

	"minutesapi/internal/model"
)

// Error kinds, one per pipeline stage. Match with errors.Is.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrUpload        = errors.New("upload error")
	ErrTranscription = errors.New("transcription error")
	ErrSummarization = errors.New("summarization error")
	ErrRender        = errors.New("render error")

	ErrBodyNil = errors.New("media body is nil")
)

var stageKinds = map[model.Stage]error{
	model.StageInit:       ErrConfiguration,
	model.StageUpload:     ErrUpload,
	model.StageTranscribe: ErrTranscription,
	model.StageSummarize:  ErrSummarization,
	model.StageRender:     ErrRender,
}

var userMessages = map[model.Stage]string{
	model.StageInit:       "Could not connect to the cloud environment. Run the service with the required project, bucket and credential configuration.",
	model.StageUpload:     "Could not upload the recording to storage. No document was produced.",
	model.StageTranscribe: "Transcription failed. No document was produced.",
	model.StageSummarize:  "Generating the minutes failed. No document was produced.",
	model.StageRender:     "The Word document could not be generated.",
}

// StageError is the failure outcome of a pipeline run: the stage that
// failed and the underlying cause.
type StageError struct {
	Stage model.Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Is reports whether target is the kind sentinel of the failed stage.
func (e *StageError) Is(target error) bool {
	return stageKinds[e.Stage] == target
}

// Kind returns the sentinel naming this failure's category.
func (e *StageError) Kind() error {
	return stageKinds[e.Stage]
}

// UserMessage is the human-readable text shown to the uploader.
func (e *StageError) UserMessage() string {
	return userMessages[e.Stage]
}

func stageErr(stage model.Stage, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}
