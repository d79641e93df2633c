package report

// TextSpan marks a range of source text that a Failure is attached to.
// The core never reads or writes source text itself; spans are opaque
// tokens handed in by the parser and echoed back in diagnostics.
type TextSpan struct {
	StartLine, StartCol int
	EndLine, EndCol     int
}

// NewSpanOver returns a span covering both inputs.
func NewSpanOver(start, end *TextSpan) *TextSpan {
	if start == nil {
		return end
	}
	if end == nil {
		return start
	}
	return &TextSpan{
		StartLine: start.StartLine,
		StartCol:  start.StartCol,
		EndLine:   end.EndLine,
		EndCol:    end.EndCol,
	}
}
