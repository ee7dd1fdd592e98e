package model

import "fmt"

// ResultKind tags the outcome of a poll or scheduled job.
type ResultKind int

const (
	// ResultEmpty means the job ran and found nothing worth posting.
	ResultEmpty ResultKind = iota
	// ResultOk carries one or more messages to post.
	ResultOk
	// ResultFailed means the job could not complete.
	ResultFailed
)

func (k ResultKind) String() string {
	switch k {
	case ResultEmpty:
		return "empty"
	case ResultOk:
		return "ok"
	case ResultFailed:
		return "failed"
	default:
		return fmt.Sprintf("ResultKind(%d)", int(k))
	}
}

// Result is the tagged outcome of a poll: Ok(messages), Empty or Failed(err).
// Warning notes a partial failure of a job that otherwise completed.
type Result struct {
	Kind     ResultKind
	Messages []string
	Err      error
	Warning  string
}

// Ok builds a result carrying messages.
func Ok(messages ...string) Result {
	return Result{Kind: ResultOk, Messages: messages}
}

// Empty builds a "no news" result.
func Empty() Result {
	return Result{Kind: ResultEmpty}
}

// WithWarning returns a copy of r carrying a formatted warning.
func (r Result) WithWarning(format string, args ...interface{}) Result {
	r.Warning = fmt.Sprintf(format, args...)
	return r
}

// Failed builds a failed result.
func Failed(err error) Result {
	return Result{Kind: ResultFailed, Err: err}
}
