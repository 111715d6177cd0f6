package notify

import (
	"fmt"
	"regexp"
)

// carrierRoute maps shipping-method wording to a tracking URL template. The
// patterns cover the Japanese and romanized spellings seen in real orders.
type carrierRoute struct {
	name        string
	pattern     *regexp.Regexp
	urlTemplate string
}

var carrierRoutes = []carrierRoute{
	{
		name:        "ヤマト運輸",
		pattern:     regexp.MustCompile(`(?i)ヤマト|クロネコ|yamato`),
		urlTemplate: "https://toi.kuronekoyamato.co.jp/cgi-bin/tneko?number=%s",
	},
	{
		name:        "日本郵便",
		pattern:     regexp.MustCompile(`(?i)郵便|ゆうパック|japan\s*post|yu-?pack`),
		urlTemplate: "https://trackings.post.japanpost.jp/services/srv/search/direct?reqCodeNo1=%s",
	},
	{
		name:        "佐川急便",
		pattern:     regexp.MustCompile(`(?i)佐川|sagawa`),
		urlTemplate: "https://k2k.sagawa-exp.co.jp/p/web/okurijosearch.do?okurijoNo=%s",
	},
}

// TrackingURL derives the carrier tracking page for a shipping method and
// tracking number. Unknown carriers yield an empty URL, never an error.
func TrackingURL(shippingMethod, trackingNo string) string {
	if shippingMethod == "" || trackingNo == "" {
		return ""
	}
	for _, route := range carrierRoutes {
		if route.pattern.MatchString(shippingMethod) {
			return fmt.Sprintf(route.urlTemplate, trackingNo)
		}
	}
	return ""
}

// CarrierName returns the canonical carrier name for a shipping method, or
// the method text itself when no pattern matches.
func CarrierName(shippingMethod string) string {
	for _, route := range carrierRoutes {
		if route.pattern.MatchString(shippingMethod) {
			return route.name
		}
	}
	return shippingMethod
}
