package constants

// DefaultMaxQuestions caps how many question records a single file may
// contribute. Exam papers in the source corpus number questions 1..22.
const DefaultMaxQuestions = 22

// TextChunkSize is the character budget for one plain-text extraction chunk.
const TextChunkSize = 15000

// MaxSheetRows bounds how many non-empty spreadsheet rows are sent per sheet.
const MaxSheetRows = 100

// FallbackYear is assigned when neither the record nor its chunk context
// carries a usable year token.
const FallbackYear = 2020

// ContentTypeQuestions and ContentTypeAnswers discriminate what kind of
// records the structuring capability should extract from a chunk.
const (
	ContentTypeQuestions = "questions"
	ContentTypeAnswers   = "answers"
)
