package block

import (
	"fmt"

	"hydrodeck/internal/source"
)

// UnterminatedBlockError is fatal for the file: the block opened at Opened
// was never closed by its terminator.
type UnterminatedBlockError struct {
	Keyword    string
	Terminator string
	Opened     source.Span // opening line
	At         source.Span // where the block was found still open
	Line       uint32      // line number of the opening line
	EOF        bool
	// Sub is set when a dependent sub-record (Opened) follows the
	// terminator and no later block with its key ever opens.
	Sub string
}

func (e *UnterminatedBlockError) Error() string {
	if e.Sub != "" {
		return fmt.Sprintf("%s at line %d follows %s and no later %s block takes it", e.Sub, e.Line, e.Terminator, e.Keyword)
	}
	if e.EOF {
		return fmt.Sprintf("block %s opened at line %d is not closed by %s before end of file", e.Keyword, e.Line, e.Terminator)
	}
	return fmt.Sprintf("block %s opened at line %d is not closed by %s before the next block", e.Keyword, e.Line, e.Terminator)
}
