package helpers

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"
)

func buildLayout(title, color, body string) string {
	return fmt.Sprintf(`
<html>
  <body style="font-family:Arial,sans-serif; background:#f9f9f9;">
    <table width="100%%" cellpadding="0" cellspacing="0" bgcolor="#f9f9f9">
      <tr>
        <td align="center" style="padding:32px 0;">
          <table width="560" bgcolor="#fff" cellpadding="24" cellspacing="0" style="border-radius:8px; box-shadow:0 1px 6px #eee;">
            <tr>
              <td>
                <h2 style="color:%s; margin-top:0;">%s</h2>
                <div style="font-size:15px; color:#222;">%s</div>
                <hr style="margin:32px 0 16px 0; border:0; border-top:1px solid #eee;">
                <div style="font-size:12px; color:#999;">Письмо сгенерировано автоматически. Не отвечайте на него.</div>
              </td>
            </tr>
          </table>
        </td>
      </tr>
    </table>
  </body>
</html>
`, color, html.EscapeString(title), body)
}

// BuildErrorAlertHTML — письмо администраторам о новой ошибке сбора.
func BuildErrorAlertHTML(source, code, message string, ctx map[string]any, at time.Time) string {
	var rows strings.Builder
	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&rows, `<tr><td style="color:#666;padding-right:12px;">%s</td><td>%s</td></tr>`,
			html.EscapeString(k), html.EscapeString(fmt.Sprint(ctx[k])))
	}

	body := fmt.Sprintf(`
      <p><b>Источник:</b> %s<br><b>Код:</b> %s<br><b>Время:</b> %s</p>
      <pre style="background:#f4f4f4;padding:12px;border-radius:6px;white-space:pre-wrap;">%s</pre>
      <table style="font-size:13px;">%s</table>
    `,
		html.EscapeString(source),
		html.EscapeString(code),
		at.Format("02.01.2006 15:04:05"),
		html.EscapeString(message),
		rows.String(),
	)
	return buildLayout("Ошибка сбора данных", "#d63636", body)
}
