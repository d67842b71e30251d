package notifier

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
	"time"

	"github.com/jordan-wright/email"

	"gachahub/internal/catalog"
	"gachahub/logger"
)

// manufacturer display names used in the mail body
var manufacturerNames = map[string]string{
	catalog.ManufacturerBandai:     "バンダイ",
	catalog.ManufacturerTakaraTomy: "タカラトミーアーツ",
}

const summaryTemplate = `<html>
<body>
<h2>新商品情報 ({{.Date}})</h2>
{{if .Items}}
<p>本日の新着: {{len .Items}}件</p>
<table border="1" cellpadding="6" cellspacing="0">
<tr><th>商品名</th><th>メーカー</th><th>価格</th><th>発売日</th><th>リンク</th></tr>
{{range .Items}}
<tr>
<td>{{.Name}}</td>
<td>{{.Manufacturer}}</td>
<td>{{.Price}}</td>
<td>{{.ReleaseDate}}</td>
<td>{{if .SourceURL}}<a href="{{.SourceURL}}">詳細</a>{{end}}</td>
</tr>
{{end}}
</table>
{{else}}
<p>本日の新着商品はありませんでした。</p>
{{end}}
</body>
</html>`

var summaryTmpl = template.Must(template.New("summary").Parse(summaryTemplate))

type summaryRow struct {
	Name         string
	Manufacturer string
	Price        string
	ReleaseDate  string
	SourceURL    string
}

type summaryData struct {
	Date  string
	Items []summaryRow
}

// EmailNotifier sends summary mails over SMTP.
type EmailNotifier struct {
	host       string
	port       int
	user       string
	password   string
	from       string
	recipients []string
	now        func() time.Time
}

// NewEmailNotifier creates a notifier for the given SMTP server and
// recipient list.
func NewEmailNotifier(host string, port int, user, password, from string, recipients []string) *EmailNotifier {
	return &EmailNotifier{
		host:       host,
		port:       port,
		user:       user,
		password:   password,
		from:       from,
		recipients: recipients,
		now:        time.Now,
	}
}

// SendNewItemsSummary renders and sends the daily summary mail. An empty
// item list still produces a mail so recipients can tell the round ran.
func (n *EmailNotifier) SendNewItemsSummary(items []catalog.Item) error {
	body, err := renderSummary(items, n.now())
	if err != nil {
		return fmt.Errorf("failed to render summary mail: %w", err)
	}

	subject := fmt.Sprintf("[GachaHub] 新商品情報 %d件", len(items))
	if err := n.send(n.recipients, subject, body); err != nil {
		return err
	}

	logger.Info("Sent summary mail to %d recipients (%d items)", len(n.recipients), len(items))
	return nil
}

// SendTest sends a minimal mail to a single address to verify SMTP settings.
func (n *EmailNotifier) SendTest(addr string) error {
	body := "<html><body><p>GachaHub notification test mail.</p></body></html>"
	return n.send([]string{addr}, "[GachaHub] Test", body)
}

func (n *EmailNotifier) send(to []string, subject, htmlBody string) error {
	mail := email.NewEmail()
	mail.From = fmt.Sprintf("GachaHub <%s>", n.from)
	mail.To = to
	mail.Subject = subject
	mail.HTML = []byte(htmlBody)

	hostPort := fmt.Sprintf("%s:%d", n.host, n.port)
	err := mail.Send(hostPort, smtp.PlainAuth("", n.user, n.password, n.host))
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(hostPort, nil)
	}
	if err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}

// renderSummary builds the HTML body for a summary mail.
func renderSummary(items []catalog.Item, at time.Time) (string, error) {
	data := summaryData{Date: at.Format("2006-01-02")}
	for _, item := range items {
		data.Items = append(data.Items, summaryRow{
			Name:         item.ProductName,
			Manufacturer: displayManufacturer(item.Manufacturer),
			Price:        displayPrice(item.Price),
			ReleaseDate:  displayDate(item.ReleaseDate),
			SourceURL:    item.SourceURL,
		})
	}

	var buf bytes.Buffer
	if err := summaryTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func displayManufacturer(code string) string {
	if name, ok := manufacturerNames[code]; ok {
		return name
	}
	return code
}

func displayPrice(price *int) string {
	if price == nil {
		return "-"
	}
	return fmt.Sprintf("%d円", *price)
}

func displayDate(date *time.Time) string {
	if date == nil {
		return "未定"
	}
	return date.Format("2006-01-02")
}
