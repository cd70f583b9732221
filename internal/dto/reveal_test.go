package dto

import (
	"encoding/json"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestRevealContactRequest_HasRequiredFields(t *testing.T) {
	full := RevealContactRequest{ScanID: 42, QRIdentifier: "LOQ-A-001", TurnstileToken: "valid"}
	if !full.HasRequiredFields() {
		t.Error("字段齐全时应返回 true")
	}

	missing := []RevealContactRequest{
		{QRIdentifier: "LOQ-A-001", TurnstileToken: "valid"},
		{ScanID: 42, TurnstileToken: "valid"},
		{ScanID: 42, QRIdentifier: "LOQ-A-001"},
	}
	for i, r := range missing {
		if r.HasRequiredFields() {
			t.Errorf("case %d: 缺字段时应返回 false", i)
		}
	}
}

func TestContactPayload_NullsPreserved(t *testing.T) {
	resp := RevealContactResponse{
		Success: true,
		Contact: &ContactPayload{OwnerName: strPtr("Jane"), OwnerEmail: strPtr("jane@x.com")},
	}
	b, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("序列化失败: %v", err)
	}
	want := `{"success":true,"contact":{"owner_name":"Jane","owner_email":"jane@x.com","owner_phone":null,"whatsapp_url":null}}`
	if string(b) != want {
		t.Errorf("期望 %s，实际 %s", want, b)
	}
}

func TestRevealContactResponse_Validate(t *testing.T) {
	ok := RevealContactResponse{Success: true, Contact: &ContactPayload{OwnerEmail: strPtr("a@b.com")}}
	if err := ok.Validate(); err != nil {
		t.Errorf("合法负载校验失败: %v", err)
	}

	cases := map[string]RevealContactResponse{
		"success=false":  {Success: false, Contact: &ContactPayload{}},
		"缺少 contact":     {Success: true},
		"邮箱格式错误":         {Success: true, Contact: &ContactPayload{OwnerEmail: strPtr("not-an-email")}},
		"whatsapp 非 URL": {Success: true, Contact: &ContactPayload{WhatsAppURL: strPtr("wa me")}},
	}
	for name, r := range cases {
		r := r
		if err := r.Validate(); err == nil {
			t.Errorf("%s: 期望校验失败", name)
		}
	}
}
