package notify

import (
	"fmt"
	"html"
	"strings"

	"github.com/nurserysera/storefront-backend/pkg/brevo"
	"github.com/nurserysera/storefront-backend/pkg/db/models"
)

// renderContext carries the per-event extras templates may need.
type renderContext struct {
	ShipDate string
	Carrier  string
}

func renderMessage(eventType string, rows []models.Order, rc renderContext) (brevo.Message, error) {
	if len(rows) == 0 {
		return brevo.Message{}, fmt.Errorf("no order rows for template")
	}
	head := rows[0]

	msg := brevo.Message{
		ToName: head.CustomerName,
	}
	if head.Email != nil {
		msg.ToEmail = *head.Email
	}

	switch eventType {
	case models.EventOrderConfirmed:
		msg.Subject = fmt.Sprintf("ご注文ありがとうございます（%s）", head.OrderToken)
		msg.HTMLContent = confirmedBody(rows)
	case models.EventPaidNotice:
		msg.Subject = fmt.Sprintf("ご入金を確認いたしました（%s）", head.OrderToken)
		msg.HTMLContent = paidBody(rows)
	case models.EventShipdateNotice:
		msg.Subject = fmt.Sprintf("発送予定日のご案内（%s）", head.OrderToken)
		msg.HTMLContent = shipdateBody(rows, rc.ShipDate)
	case models.EventShippedNotice:
		msg.Subject = fmt.Sprintf("商品を発送いたしました（%s）", head.OrderToken)
		msg.HTMLContent = shippedBody(rows, rc.Carrier)
	default:
		return brevo.Message{}, fmt.Errorf("unknown event type %q", eventType)
	}
	return msg, nil
}

func confirmedBody(rows []models.Order) string {
	var b strings.Builder
	writeGreeting(&b, rows[0])
	fmt.Fprintf(&b, "<p>ご注文（%s）を受け付けました。</p>", html.EscapeString(rows[0].OrderToken))
	writeRecap(&b, rows)
	b.WriteString("<p>お支払い方法：銀行振込</p>")
	b.WriteString("<p>※ご入金確認後に発送いたします。</p>")
	return b.String()
}

func paidBody(rows []models.Order) string {
	var b strings.Builder
	writeGreeting(&b, rows[0])
	b.WriteString("<p>ご入金を確認いたしました。発送の準備を進めてまいります。</p>")
	writeRecap(&b, rows)
	return b.String()
}

func shipdateBody(rows []models.Order, shipDate string) string {
	var b strings.Builder
	writeGreeting(&b, rows[0])
	if shipDate != "" {
		fmt.Fprintf(&b, "<p>発送予定日：%s</p>", html.EscapeString(shipDate))
	} else {
		b.WriteString("<p>発送日が確定しましたので、改めてご連絡いたします。</p>")
	}
	writeRecap(&b, rows)
	return b.String()
}

func shippedBody(rows []models.Order, carrierOverride string) string {
	head := rows[0]

	// The admin may name a carrier at send time; otherwise the order's
	// shipping method decides.
	method := carrierOverride
	if method == "" {
		method = head.ShippingMethod
	}

	var b strings.Builder
	writeGreeting(&b, head)
	b.WriteString("<p>商品を発送いたしました。</p>")

	carrier := CarrierName(method)
	if carrier != "" {
		fmt.Fprintf(&b, "<p>配送業者：%s</p>", html.EscapeString(carrier))
	}
	if head.TrackingNo != nil && *head.TrackingNo != "" {
		fmt.Fprintf(&b, "<p>伝票番号：%s</p>", html.EscapeString(*head.TrackingNo))
		if url := TrackingURL(method, *head.TrackingNo); url != "" {
			fmt.Fprintf(&b, `<p><a href="%s">配送状況はこちら</a></p>`, url)
		}
	}
	writeRecap(&b, rows)
	return b.String()
}

func writeGreeting(b *strings.Builder, head models.Order) {
	fmt.Fprintf(b, "<p>%s 様</p>", html.EscapeString(head.CustomerName))
}

func writeRecap(b *strings.Builder, rows []models.Order) {
	b.WriteString("<ul>")
	for _, row := range rows {
		fmt.Fprintf(b, "<li>%s × %d = %d円</li>",
			html.EscapeString(row.ProductName), row.Quantity, row.LineTotal)
	}
	b.WriteString("</ul>")
	fmt.Fprintf(b, "<p>合計：%d円</p>", rows[0].Total)
}
