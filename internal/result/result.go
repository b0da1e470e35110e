// Package result holds the outcome value returned by every precondition check.
//
// A Result is built only through Ok, None and Reason. None and Reason are both
// unsuccessful; callers tell "does not apply" apart from "explicitly rejected"
// with Rejected.
package result

type Result struct {
	ok        bool
	reason    string
	hasReason bool
}

// Ok is an affirmative result.
func Ok() Result {
	return Result{ok: true}
}

// None means the event does not apply and should be skipped silently.
func None() Result {
	return Result{}
}

// Reason is an explicit rejection carrying a human-readable message.
func Reason(msg string) Result {
	return Result{reason: msg, hasReason: true}
}

func (r Result) OK() bool {
	return r.ok
}

// Rejected reports whether the result came from Reason.
func (r Result) Rejected() bool {
	return !r.ok && r.hasReason
}

// Reason returns the rejection message, or "" for Ok and None.
func (r Result) Reason() string {
	return r.reason
}

// ReasonOr returns the rejection message, or fallback when none was given.
func (r Result) ReasonOr(fallback string) string {
	if r.hasReason && r.reason != "" {
		return r.reason
	}
	return fallback
}

func (r Result) String() string {
	switch {
	case r.ok:
		return "ok"
	case r.hasReason:
		return "rejected: " + r.reason
	default:
		return "none"
	}
}
