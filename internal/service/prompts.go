package service

import (
	"fmt"
	"strings"

	"github.com/readingroom/backend/internal/model"
)

// Task 分析任务类型
type Task string

const (
	TaskSummary     Task = "summary"
	TaskApplication Task = "application"
	TaskAdvanced    Task = "advanced"
	TaskCompare     Task = "compare"
	TaskTranscript  Task = "transcript"
)

func taskForType(t model.MaterialType) Task {
	if t == model.MaterialTypeApplication {
		return TaskApplication
	}
	return TaskSummary
}

const analyzePrompt = `다음 %s를 분석해주세요:

%s
%s
분석 시 다음 사항을 고려해주세요:
1. 핵심 내용 요약
2. 주요 시사점
3. 실행 가능한 제안
4. 개선 방향`

const advancedPrompt = `당신은 비즈니스 전략 보고서 개선 전문가입니다.
다음 보고서를 %s 관점에서 분석하고 개선해주세요:

%s

다음 형식으로 응답해주세요:
1. 현재 보고서 분석
2. 개선 제안
3. 실행 계획
4. 기대 효과`

const comparePrompt = `당신은 비즈니스 전략 비교 분석 전문가입니다.
다음 보고서를 %s 관점에서 다른 기업들과 비교 분석해주세요:

%s`

const transcriptPrompt = `다음 독서토론 내용을 분석해주세요:
%s

다음 항목을 포함해서 분석해주세요:
1. 주요 논점
2. 각 참여자의 기여도
3. 토론의 깊이와 질
4. 개선점 제안`

const orderPrompt = `독서토론 참여자들의 역할과 능력을 배정해주세요. 창의적이고 재미있게 작성해주세요.
참여자: %s

각 참여자에게 다음을 배정해주세요:
1. 역할 (%s 중 하나)
2. 특별한 능력 (예: 논리적 분석, 창의적 해석, 감정적 공감 등)
3. 특수효과 (%s 중 하나)

참여자 순서가 곧 발언 순서입니다. 효과적인 토론 진행 방법도 한 단락으로 제안해주세요.
다음 JSON 형식으로만 응답해주세요:
{"characters":[{"name":"이름","role":"역할","ability":"능력","specialEffect":"특수효과"}],"suggestion":"진행 제안"}`

// BuildPrompt 按任务拼装提示词，关键词只用于适用报告、高级和比较分析
func BuildPrompt(task Task, content, keyword string) string {
	switch task {
	case TaskApplication:
		return fmt.Sprintf(analyzePrompt, "적용 보고서", content, keywordLine(keyword))
	case TaskAdvanced:
		return fmt.Sprintf(advancedPrompt, keyword, content)
	case TaskCompare:
		return fmt.Sprintf(comparePrompt, keyword, content)
	case TaskTranscript:
		return fmt.Sprintf(transcriptPrompt, content)
	default:
		return fmt.Sprintf(analyzePrompt, "독서 토론 요약", content, "")
	}
}

// keywordLine 关键词为空时不输出该行
func keywordLine(keyword string) string {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return ""
	}
	return "\n분석 키워드: " + keyword + "\n"
}

func buildOrderPrompt(names []string) string {
	return fmt.Sprintf(orderPrompt,
		strings.Join(names, ", "),
		strings.Join(model.CharacterRoles, ", "),
		strings.Join(model.CharacterEffects, ", "))
}

const (
	summaryOpening     = "안녕하세요. 독서 토론 요약 분석 결과를 말씀드리겠습니다."
	applicationOpening = "안녕하세요. 적용 보고서 분석 결과를 말씀드리겠습니다."
	defaultClosing     = "이상으로 분석을 마치겠습니다. 감사합니다."
)

// taskLabel 默认开场白/结束语中的任务名
var taskLabel = map[Task]string{
	TaskAdvanced:   "고급",
	TaskCompare:    "비교",
	TaskTranscript: "토론",
}

// DefaultRemarks 返回任务的默认开场白和结束语
func DefaultRemarks(task Task) (opening, closing string) {
	switch task {
	case TaskSummary:
		return summaryOpening, defaultClosing
	case TaskApplication:
		return applicationOpening, defaultClosing
	}
	label, ok := taskLabel[task]
	if !ok {
		label = "AI"
	}
	return fmt.Sprintf("안녕하세요. %s 분석 결과를 말씀드리겠습니다.", label),
		fmt.Sprintf("이상으로 %s 분석을 마치겠습니다. 감사합니다.", label)
}

// SpeechText 开场白 + 分析 + 结束语，空值使用默认
func SpeechText(task Task, analysis, opening, closing string) string {
	defOpening, defClosing := DefaultRemarks(task)
	if strings.TrimSpace(opening) == "" {
		opening = defOpening
	}
	if strings.TrimSpace(closing) == "" {
		closing = defClosing
	}
	return strings.TrimSpace(opening + "\n\n" + analysis + "\n\n" + closing)
}
