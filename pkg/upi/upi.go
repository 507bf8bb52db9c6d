// Package upi 生成 upi://pay 深链，前端据此渲染收款二维码。
// 支付本身在站外完成，这里只负责把金额/收款方/备注拼进链接。
package upi

import (
	"fmt"
	"net/url"
)

type Payee struct {
	VPA  string // 收款 UPI 地址，如 club@upi
	Name string // 收款方展示名
}

// PayURI amountPaise 为最小货币单位；note 放订单引用号，方便对账
func PayURI(p Payee, amountPaise int64, note string) string {
	q := url.Values{}
	q.Set("pa", p.VPA)
	q.Set("pn", p.Name)
	q.Set("am", FormatAmount(amountPaise))
	q.Set("cu", "INR")
	if note != "" {
		q.Set("tn", note)
	}
	return "upi://pay?" + q.Encode()
}

// FormatAmount paise → "12.50"，不经过浮点
func FormatAmount(paise int64) string {
	return fmt.Sprintf("%d.%02d", paise/100, paise%100)
}
