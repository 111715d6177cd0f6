package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackingURL(t *testing.T) {
	tests := []struct {
		name           string
		shippingMethod string
		trackingNo     string
		want           string
	}{
		{
			name:           "yamato japanese",
			shippingMethod: "ヤマト運輸",
			trackingNo:     "123456789012",
			want:           "https://toi.kuronekoyamato.co.jp/cgi-bin/tneko?number=123456789012",
		},
		{
			name:           "kuroneko alias",
			shippingMethod: "クロネコ便",
			trackingNo:     "123456789012",
			want:           "https://toi.kuronekoyamato.co.jp/cgi-bin/tneko?number=123456789012",
		},
		{
			name:           "yamato romanized mixed case",
			shippingMethod: "Yamato Transport",
			trackingNo:     "42",
			want:           "https://toi.kuronekoyamato.co.jp/cgi-bin/tneko?number=42",
		},
		{
			name:           "japan post yu-pack",
			shippingMethod: "ゆうパック",
			trackingNo:     "9999",
			want:           "https://trackings.post.japanpost.jp/services/srv/search/direct?reqCodeNo1=9999",
		},
		{
			name:           "sagawa",
			shippingMethod: "佐川急便",
			trackingNo:     "5555",
			want:           "https://k2k.sagawa-exp.co.jp/p/web/okurijosearch.do?okurijoNo=5555",
		},
		{
			name:           "unknown carrier",
			shippingMethod: "手渡し",
			trackingNo:     "1",
			want:           "",
		},
		{
			name:           "no tracking number",
			shippingMethod: "ヤマト運輸",
			trackingNo:     "",
			want:           "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TrackingURL(tc.shippingMethod, tc.trackingNo))
		})
	}
}

func TestCarrierName(t *testing.T) {
	assert.Equal(t, "ヤマト運輸", CarrierName("クロネコヤマト"))
	assert.Equal(t, "日本郵便", CarrierName("Japan Post"))
	assert.Equal(t, "佐川急便", CarrierName("sagawa express"))
	assert.Equal(t, "自社便", CarrierName("自社便"))
}
