package footnote

// ByteClass is the role a single input byte plays in footnote markup.
type ByteClass int

const (
	Plain ByteClass = iota // ordinary text
	Open                   // '(' starts a footnote
	Close                  // ')' ends a footnote
	Flush                  // '#' dumps queued footnotes when outside a footnote
)

// Classify maps a byte to its class.
func Classify(b byte) ByteClass {
	switch b {
	case '(':
		return Open
	case ')':
		return Close
	case '#':
		return Flush
	default:
		return Plain
	}
}

func (c ByteClass) String() string {
	switch c {
	case Open:
		return "open"
	case Close:
		return "close"
	case Flush:
		return "flush"
	default:
		return "plain"
	}
}
