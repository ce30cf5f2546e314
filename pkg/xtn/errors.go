package xtn

import "fmt"

type ErrorCode int

const (
	CodeObjectMustBeOnNewLine ErrorCode = iota + 1
	CodeArrayMustBeOnNewLine
	CodeMultilineMustBeOnNewLine
	CodeLineMustNotStartWithColon
	CodePlusEncounteredOutsideArray
	CodeArrayElementMustStartWithPlus
	CodeMissingColon
	CodeUnmatchedCloseMarker
	CodeMissingCloseMarker
	CodeIndentationMustBeSpaceOrTab
	CodeIndentationMustNotBeMixed
	CodeInsufficientIndentation
	CodeArrayElementMustNotHaveAKey
	CodeObjectKeysCannotBeRepeated
	CodeIncorrectIndentation
)

var codeNames = map[ErrorCode]string{
	CodeObjectMustBeOnNewLine:         "ObjectMustBeOnNewLine",
	CodeArrayMustBeOnNewLine:          "ArrayMustBeOnNewLine",
	CodeMultilineMustBeOnNewLine:      "MultilineMustBeOnNewLine",
	CodeLineMustNotStartWithColon:     "LineMustNotStartWithColon",
	CodePlusEncounteredOutsideArray:   "PlusEncounteredOutsideArray",
	CodeArrayElementMustStartWithPlus: "ArrayElementMustStartWithPlus",
	CodeMissingColon:                  "MissingColon",
	CodeUnmatchedCloseMarker:          "UnmatchedCloseMarker",
	CodeMissingCloseMarker:            "MissingCloseMarker",
	CodeIndentationMustBeSpaceOrTab:   "IndentationMustBeSpaceOrTab",
	CodeIndentationMustNotBeMixed:     "IndentationMustNotBeMixed",
	CodeInsufficientIndentation:       "InsufficientIndentation",
	CodeArrayElementMustNotHaveAKey:   "ArrayElementMustNotHaveAKey",
	CodeObjectKeysCannotBeRepeated:    "ObjectKeysCannotBeRepeated",
	CodeIncorrectIndentation:          "IncorrectIndentation",
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ErrorCode(%d)", int(c))
}

// Recoverable reports whether parsing may continue past an error of this kind
// when positions and comments are tracked.
func (c ErrorCode) Recoverable() bool {
	return c == CodeMissingColon || c == CodeObjectKeysCannotBeRepeated
}

// ParseError describes a syntax error. Line is 0-based; ColumnStart and
// ColumnEnd are byte offsets into the line's content.
type ParseError struct {
	Code        ErrorCode
	Line        int
	ColumnStart int
	ColumnEnd   int
	Message     string

	// Tree is the best-effort tree built before (fatal) or despite
	// (recoverable) the error. It is nil in detached mode.
	Tree *Object
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line+1, e.ColumnStart+1, e.Message)
}

func (e *ParseError) Recoverable() bool {
	return e.Code.Recoverable()
}

const (
	msgObjectMustBeOnNewLine         = "An object must start on a new line"
	msgArrayMustBeOnNewLine          = "An array must start on a new line"
	msgMultilineMustBeOnNewLine      = "A multi-line value must start on a new line"
	msgLineMustNotStartWithColon     = "A line cannot start with a colon"
	msgPlusEncounteredOutsideArray   = "A line cannot start with a plus outside the context of an array"
	msgArrayElementMustStartWithPlus = "An array element must start with a plus"
	msgArrayElementMustNotHaveAKey   = "An array element cannot be named"
	msgMissingColon                  = "A colon was expected"
	msgUnmatchedCloseMarker          = "The close marker ---- does not match any open object or array"
	msgMissingCloseMarker            = "A close marker ---- was expected"
	msgIndentationMustBeSpaceOrTab   = "Indentation for a complex text value must be a space (32) or tab (9) character"
	msgIndentationMustNotBeMixed     = "Indentation for a complex text value can use either spaces or tabs but not both"
	msgInsufficientIndentation       = "Lines of complex text must be indented by 4 spaces or a tab compared to the key line"
	msgIncorrectIndentation          = "The indentation on the closing line for a complex text value must exactly match the key line"
)
