package model

// Stage identifies one step of the minutes pipeline.
type Stage int

const (
	StageInit Stage = iota + 1
	StageUpload
	StageTranscribe
	StageSummarize
	StageRender
)

// Stages lists every stage in execution order.
var Stages = []Stage{StageInit, StageUpload, StageTranscribe, StageSummarize, StageRender}

func (s Stage) String() string {
	switch s {
	case StageInit:
		return "init"
	case StageUpload:
		return "upload"
	case StageTranscribe:
		return "transcribe"
	case StageSummarize:
		return "summarize"
	case StageRender:
		return "render"
	default:
		return "unknown"
	}
}

// Description is the progress text shown while the stage is active.
func (s Stage) Description() string {
	switch s {
	case StageInit:
		return "Step 1/5: connecting to the cloud environment"
	case StageUpload:
		return "Step 2/5: uploading the recording to object storage"
	case StageTranscribe:
		return "Step 3/5: transcribing the recording"
	case StageSummarize:
		return "Step 4/5: summarizing the transcript into minutes"
	case StageRender:
		return "Step 5/5: generating the Word document"
	default:
		return ""
	}
}
