package footnote

import "fmt"

// UnmatchedClosePolicy decides what a ')' does when no footnote is open.
type UnmatchedClosePolicy int

const (
	// UnmatchedClosePlain keeps the ')' as ordinary text.
	UnmatchedClosePlain UnmatchedClosePolicy = iota
	// UnmatchedCloseClamp keeps the depth at zero and drops the ')'.
	UnmatchedCloseClamp
	// UnmatchedCloseError stops processing with ErrMalformedBracketing.
	UnmatchedCloseError
)

var unmatchedCloseNames = map[UnmatchedClosePolicy]string{
	UnmatchedClosePlain: "plain",
	UnmatchedCloseClamp: "clamp",
	UnmatchedCloseError: "error",
}

func (p UnmatchedClosePolicy) String() string {
	if s, ok := unmatchedCloseNames[p]; ok {
		return s
	}
	return fmt.Sprintf("UnmatchedClosePolicy(%d)", int(p))
}

// ParseUnmatchedClosePolicy parses "plain", "clamp" or "error".
func ParseUnmatchedClosePolicy(s string) (UnmatchedClosePolicy, error) {
	for p, name := range unmatchedCloseNames {
		if name == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("invalid unmatched-close policy %q (valid: plain, clamp, error)", s)
}

// UnterminatedPolicy decides what happens to footnotes still open at end of stream.
type UnterminatedPolicy int

const (
	// UnterminatedFootnote closes every open footnote, innermost first.
	UnterminatedFootnote UnterminatedPolicy = iota
	// UnterminatedText emits the open footnotes verbatim, '(' included.
	UnterminatedText
	// UnterminatedDrop discards them.
	UnterminatedDrop
)

var unterminatedNames = map[UnterminatedPolicy]string{
	UnterminatedFootnote: "footnote",
	UnterminatedText:     "text",
	UnterminatedDrop:     "drop",
}

func (p UnterminatedPolicy) String() string {
	if s, ok := unterminatedNames[p]; ok {
		return s
	}
	return fmt.Sprintf("UnterminatedPolicy(%d)", int(p))
}

// ParseUnterminatedPolicy parses "footnote", "text" or "drop".
func ParseUnterminatedPolicy(s string) (UnterminatedPolicy, error) {
	for p, name := range unterminatedNames {
		if name == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("invalid unterminated policy %q (valid: footnote, text, drop)", s)
}
