package db

import (
	_ "embed"
)

// Schema

//go:embed sql/create_tables.sql
var CreateTablesSQL string

// Run queries

//go:embed sql/insert_run.sql
var InsertRunSQL string

//go:embed sql/update_run_source.sql
var UpdateRunSourceSQL string

//go:embed sql/finish_run.sql
var FinishRunSQL string

//go:embed sql/select_run_by_id.sql
var SelectRunByIDSQL string

//go:embed sql/select_recent_runs.sql
var SelectRecentRunsSQL string

// Clip queries

//go:embed sql/insert_clip.sql
var InsertClipSQL string

//go:embed sql/mark_clip_processing.sql
var MarkClipProcessingSQL string

//go:embed sql/mark_clip_complete.sql
var MarkClipCompleteSQL string

//go:embed sql/mark_clip_error.sql
var MarkClipErrorSQL string

//go:embed sql/update_clip_outputs.sql
var UpdateClipOutputsSQL string

//go:embed sql/select_clips_by_run.sql
var SelectClipsByRunSQL string

//go:embed sql/select_recent_clips.sql
var SelectRecentClipsSQL string

//go:embed sql/select_clip_by_id.sql
var SelectClipByIDSQL string

//go:embed sql/select_next_retry_clip.sql
var SelectNextRetryClipSQL string
