package diagfmt

// PathMode selects how file paths are printed.
type PathMode uint8

const (
	PathModeAuto PathMode = iota // as loaded
	PathModeAbsolute
	PathModeRelative // to the deck directory
	PathModeBasename
)

var pathModeNames = [...]string{
	PathModeAuto:     "auto",
	PathModeAbsolute: "absolute",
	PathModeRelative: "relative",
	PathModeBasename: "basename",
}

func (m PathMode) String() string {
	if int(m) < len(pathModeNames) {
		return pathModeNames[m]
	}
	return "auto"
}

type PrettyOpts struct {
	Color     bool
	PathMode  PathMode
	Width     int // ширина строки-контекста, 0 без ограничения
	Max       int // сколько диагностик печатать; Bag не трогаем
	ShowNotes bool
}

type JSONOpts struct {
	IncludePositions bool // line/col в location
	PathMode         PathMode
	Max              int
	IncludeNotes     bool
}

type pathFormatter interface {
	FormatPath(mode, baseDir string) string
}

func formatPath(f pathFormatter, mode PathMode, baseDir string) string {
	if mode != PathModeRelative {
		baseDir = ""
	}
	return f.FormatPath(mode.String(), baseDir)
}
