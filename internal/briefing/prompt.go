package briefing

import (
	"fmt"
	"strings"

	"github.com/amberorigin46/news-ai-auto/internal/ai"
)

const briefingPrompt = `글로벌 뉴스 브리핑 AI로서 역할을 수행하세요.
다음 각 카테고리별로 지난 24시간 동안 가장 중요한 글로벌 뉴스를 딱 %d개씩 선정하여 브리핑을 생성하세요: [%s]

규칙:
- 반드시 %s로 답변하세요.
- 각 카테고리당 %d개의 기사, 총 %d개의 기사를 반환하세요.
- 사실적이고 중립적이어야 하며 의견을 배제하세요.
- 반드시 유료 구독(Paywall) 없이 무료로 전문을 읽을 수 있는 뉴스 소스(예: BBC, Reuters, AP News, 연합뉴스, YTN 등)를 선정하세요.
- 유료 결제가 필요한 매체(WSJ, FT, NYT 일부 등)는 제외하세요.
- 기사 전문을 복제하지 말고 핵심 내용을 요약하세요.
- 항상 출처를 명시하세요.
- JSON 배열 객체 형태로 반환하세요.

형식:
각 객체는 다음을 포함해야 합니다:
- title: 간결한 헤드라인.
- category: 요청받은 카테고리명 중 하나 (예: %s).
- summary: 3~5개의 불렛 포인트 요약 배열.
- source: 언론사 명칭.
- url: 기사 원문 URL (반드시 유효하고 무료로 접근 가능한 링크여야 함).
- imageUrl: 기사 대표 이미지 URL (없으면 생략).`

// perCategory is fixed: a briefing is one article per category.
const perCategory = 1

func buildPrompt(categories []string, language string) string {
	joined := strings.Join(categories, ", ")
	return fmt.Sprintf(briefingPrompt,
		perCategory, joined,
		language,
		perCategory, perCategory*len(categories),
		joined,
	)
}

// articleSchema is the declared output shape. imageUrl is optional.
var articleSchema = &ai.Schema{
	Type: "ARRAY",
	Items: &ai.Schema{
		Type: "OBJECT",
		Properties: map[string]*ai.Schema{
			"title":    {Type: "STRING"},
			"category": {Type: "STRING"},
			"summary": {
				Type:  "ARRAY",
				Items: &ai.Schema{Type: "STRING"},
			},
			"source":   {Type: "STRING"},
			"url":      {Type: "STRING"},
			"imageUrl": {Type: "STRING"},
		},
		Required: []string{"title", "category", "summary", "source", "url"},
	},
}
