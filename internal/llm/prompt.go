package llm

import (
	"fmt"
	"strings"

	"github.com/qbank-io/exam-ingest/constants"
)

// schemaDescription describes the target record shape the way the downstream
// store expects it. Kept in Korean to match the source exam corpus.
func schemaDescription(max int) string {
	return fmt.Sprintf(`우리 데이터베이스 구조:

Question 테이블:
- question_number: 문제 번호 (정수, 1~%d까지만)
- content: 문제 내용 (텍스트)
- description: 문제 설명/지문 (문자열 배열, 예: ["- 설명1", "- 설명2"])
- options: {"1": "선택지1", "2": "선택지2", ..., "5": "선택지5"}
- correct_answer: 정답 (문자열, 예: "3")
- subject: 과목명
- area_name: 영역이름
- difficulty: "%s" 중 하나
- year: 연도 (정수)

중요: %d번 문제까지만 추출하세요. 더 많은 문제가 있어도 %d번까지만 처리하고 중단하세요.`,
		max, strings.Join(constants.DifficultyStrings(), `", "`), max, max)
}

// BuildSystemPrompt returns the content-type-specific instruction.
func BuildSystemPrompt(contentType string, max int) string {
	schema := schemaDescription(max)

	if contentType == constants.ContentTypeAnswers {
		return strings.Join([]string{
			"이 자료는 시험 정답 데이터입니다.",
			schema,
			"위 스키마의 정답 관련 필드들(question_number, correct_answer, subject, area_name, difficulty, year)을 JSON 배열로 변환해주세요.",
			fmt.Sprintf("중요 제한사항: %d번 문제까지만 추출하세요.", max),
			"JSON 배열 형식으로만 응답해주세요.",
		}, "\n\n")
	}

	return strings.Join([]string{
		"이 자료는 시험 문제입니다.",
		schema,
		"위 Question 스키마에 맞게 모든 문제를 JSON 배열로 변환해주세요.",
		"선택지가 ①②③④⑤로 되어있다면 \"1\", \"2\", \"3\", \"4\", \"5\"로 변환하세요.",
		"문제에 보충 설명이나 지문이 있으면 description 필드에 문자열 배열로 저장하세요.",
		fmt.Sprintf("중요 제한사항: %d번 문제까지만 추출하세요. 문제번호가 %d를 초과하면 무시하세요.", max, max),
		"JSON 배열 형식으로만 응답해주세요.",
	}, "\n\n")
}

// BuildUserPrompt wraps the chunk payload. Image chunks carry the page as an
// attachment, so the text part only names the context.
func BuildUserPrompt(req ChunkRequest) string {
	if len(req.Chunk.Image) > 0 {
		return fmt.Sprintf("이 이미지(%s)를 분석하여 위 스키마에 맞는 JSON 배열로 변환해주세요.", req.Chunk.Context)
	}

	var b strings.Builder
	b.WriteString("다음 데이터")
	if req.Chunk.Context != "" {
		b.WriteString(fmt.Sprintf(" (%s)", req.Chunk.Context))
	}
	b.WriteString("를 분석하여 위 스키마에 맞는 JSON 배열로 변환해주세요.\n\n")
	b.WriteString(req.Chunk.Text)
	return b.String()
}
