package source

type (
	// FileID uniquely identifies a loaded deck file within a FileSet.
	FileID uint32 // просто ID источника
	// FileFlags encodes metadata about a deck file.
	FileFlags uint8
)

const (
	// FileVirtual indicates the file was added from memory (test, stdin, etc.).
	FileVirtual FileFlags = 1 << iota // добавлен не с диска
	FileHadBOM
	FileHadCRLF
	// FileBinary marks content that was dispatched to a fixed-stride reader.
	FileBinary
)

// File captures metadata and the raw, untouched content of one deck file.
// Content is never rewritten: binary files must survive byte for byte.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // offsets of '\n'
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol represents a human-readable position in a file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}

// Line is one physical line of a text file without its terminator.
type Line struct {
	Num   uint32 // 1-based
	Start uint32 // byte offset of Text[0] in File.Content
	Text  []byte
}

// Span returns the byte span of the whole line.
func (l Line) Span(file FileID) Span {
	return Span{File: file, Start: l.Start, End: l.Start + uint32(len(l.Text))}
}

// Sub returns the span of the [start,end) byte range of the line, clipped to
// the line's length.
func (l Line) Sub(file FileID, start, end int) Span {
	n := len(l.Text)
	start = min(max(start, 0), n)
	end = min(max(end, start), n)
	return Span{File: file, Start: l.Start + uint32(start), End: l.Start + uint32(end)}
}
