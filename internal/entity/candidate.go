package entity

// Candidate is a video eligible for assignment to a particular viewer,
// together with its completed-view count (tasks with proof uploaded,
// irrespective of verification outcome). The matcher ranks candidates by
// this count.
type Candidate struct {
	Video          *Video
	CompletedViews int64
}
