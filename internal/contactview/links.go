// Package contactview 把揭示出的联系方式转换成可点击的联系链接
package contactview

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/claudialoqatr/lost-found-helper-sub000/internal/dto"
)

// LinkKind 链接类型
type LinkKind string

const (
	KindPhone    LinkKind = "phone"
	KindWhatsApp LinkKind = "whatsapp"
	KindEmail    LinkKind = "email"
)

// Link 一个可操作的联系入口
type Link struct {
	Kind  LinkKind `json:"kind"`
	Label string   `json:"label"`
	Href  string   `json:"href"`
}

// Location 拾获者当前位置，可为空
type Location struct {
	Latitude  *float64
	Longitude *float64
	Address   *string
}

// BuildLinks 按电话、WhatsApp、邮箱顺序生成链接
// 字段缺失时不生成对应链接
func BuildLinks(contact *dto.ContactPayload, itemName string, loc *Location) []Link {
	if contact == nil {
		return nil
	}

	var links []Link
	msg := finderMessage(contact, itemName, loc)

	// 没有可拨号码时不生成电话链接
	if phone := value(contact.OwnerPhone); phone != "" {
		if number := dialable(phone); number != "" {
			links = append(links, Link{
				Kind:  KindPhone,
				Label: "Call " + phone,
				Href:  "tel:" + number,
			})
		}
	}

	if wa := value(contact.WhatsAppURL); wa != "" {
		sep := "?"
		if strings.Contains(wa, "?") {
			sep = "&"
		}
		links = append(links, Link{
			Kind:  KindWhatsApp,
			Label: "Message on WhatsApp",
			Href:  wa + sep + "text=" + escape(msg),
		})
	}

	if email := value(contact.OwnerEmail); email != "" {
		subject := "I found your " + itemOrDefault(itemName)
		links = append(links, Link{
			Kind:  KindEmail,
			Label: "Email " + email,
			Href:  fmt.Sprintf("mailto:%s?subject=%s&body=%s", url.PathEscape(email), escape(subject), escape(msg)),
		})
	}

	return links
}

func finderMessage(contact *dto.ContactPayload, itemName string, loc *Location) string {
	var b strings.Builder
	b.WriteString("Hi")
	if name := value(contact.OwnerName); name != "" {
		b.WriteString(" " + name)
	}
	b.WriteString(", I found your " + itemOrDefault(itemName) + " via its LOQATR tag.")
	if where := describe(loc); where != "" {
		b.WriteString(" It's at " + where + ".")
	}
	return b.String()
}

// describe 优先使用地址，否则给出地图链接
func describe(loc *Location) string {
	if loc == nil {
		return ""
	}
	if addr := value(loc.Address); addr != "" {
		return addr
	}
	if loc.Latitude != nil && loc.Longitude != nil {
		return fmt.Sprintf("https://maps.google.com/?q=%.6f,%.6f", *loc.Latitude, *loc.Longitude)
	}
	return ""
}

func itemOrDefault(name string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return "item"
}

func value(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

// dialable 只保留 + 与数字
func dialable(phone string) string {
	return strings.Map(func(r rune) rune {
		if r == '+' || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, phone)
}

// escape 查询参数编码，空格编码为 %20 以兼容 mailto
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
