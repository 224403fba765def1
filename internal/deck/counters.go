package deck

// Counters tallies what the walker did. Values only grow during a run.
type Counters struct {
	Slides          int
	Shapes          int
	RunsTranslated  int
	RunsBlank       int
	RunsRejected    int
	NotesTranslated int
	NotesGenerated  int
	NotesFailed     int
}
