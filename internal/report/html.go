// Package report renders a finished screening for people.
package report

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/SAP-F-2025/screening-service/internal/models"
)

var compactTemplate = template.Must(template.New("report").Parse(`<div class="result-compact">
  <h4 class="mb-2">Итог: {{.Breakdown.Total}} из {{.Breakdown.MaxTotal}} — {{.Advice.Level}}</h4>
  <ul>
    <li><strong>Этап 1 (MMSE/MoCA):</strong> {{.Breakdown.MMSEScore}}/7</li>
    <li><strong>Этап 2 (Часы):</strong> {{.Breakdown.ClockScore}}/1</li>
    <li><strong>Этап 3 (Memory):</strong> {{.Breakdown.MemoryScore}}/3, ходов: {{.Breakdown.Moves}}</li>
  </ul>
  <div class="mt-3">
    <strong>Почему такой вывод:</strong>
    <ul class="mb-2">
      {{- range .Advice.Reasons}}
      <li>{{.}}</li>
      {{- end}}
    </ul>
    <strong>Что дальше:</strong>
    <p class="mb-0">{{.Advice.Next}}</p>
  </div>
  <p class="text-muted mt-3 mb-2">{{.Disclaimer}}</p>
  {{- if .Commentary}}
  <details class="mt-2">
    <summary class="text-primary">Показать краткий ИИ-комментарий</summary>
    <div class="mt-2 small">
      <ul class="mb-0">
        {{- range .Commentary}}
        <li>{{.}}</li>
        {{- end}}
      </ul>
    </div>
  </details>
  {{- end}}
</div>
`))

// RenderHTML renders the compact report fragment. Commentary from the
// remote model is escaped like any other text.
func RenderHTML(r models.Report) ([]byte, error) {
	if r.Disclaimer == "" {
		r.Disclaimer = models.ReportDisclaimer
	}
	var buf bytes.Buffer
	if err := compactTemplate.Execute(&buf, r); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return buf.Bytes(), nil
}
