package content

import (
	"errors"
	"testing"
)

func TestSplitDateTime(t *testing.T) {
	cases := []struct {
		in, date, clock string
	}{
		{"Tue, Jan 15, 01:50", "Tue, Jan 15", "01:50"},
		{"Jan 15 01:50", "Jan 15", "01:50"},
		{"Jan 15, 12:50", "Jan 15", "12:50"},
		{"now", "now", ""},
		{"", "", ""},
		{"  Mon ,  09:00  ", "Mon", "09:00"},
	}
	for _, c := range cases {
		date, clock := SplitDateTime(c.in)
		if date != c.date || clock != c.clock {
			t.Fatalf("SplitDateTime(%q) = (%q, %q), want (%q, %q)", c.in, date, clock, c.date, c.clock)
		}
	}
}

func sampleInvocation() Invocation {
	return Invocation{
		TemplateID:  "1",
		DateTime:    "Tue, Jan 15, 01:50",
		Title:       "New Delhi World Book Fair 2026",
		Description: "Bharat Mandampam | Jan 10-18",
		AppName:     "iZooto Demo App",
		IconPath:    "assets/icons/bell-icon.png",
		BannerPath:  "assets/banners/fair.jpg",
	}
}

func TestValidateRequiresAllFields(t *testing.T) {
	if err := sampleInvocation().Validate(); err != nil {
		t.Fatalf("完整参数校验失败: %v", err)
	}
	inv := sampleInvocation()
	inv.Title = ""
	inv.BannerPath = ""
	err := inv.Validate()
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("期望 ErrUsage, got %v", err)
	}
}

func TestFromArgs(t *testing.T) {
	if _, err := FromArgs([]string{"1", "Jan 15 01:50"}); !errors.Is(err, ErrUsage) {
		t.Fatalf("参数不足应返回 ErrUsage, got %v", err)
	}
	inv, err := FromArgs([]string{"2", "Jan 15 01:50", "t", "d", "app", "i.png", "b.jpg"})
	if err != nil {
		t.Fatalf("FromArgs error: %v", err)
	}
	if inv.TemplateID != "2" || inv.AppName != "app" || inv.BannerPath != "b.jpg" {
		t.Fatalf("unexpected invocation: %+v", inv)
	}
}

func TestNewBundleDerivesDisplayFields(t *testing.T) {
	b := NewBundle(sampleInvocation())
	if b.Get(KeyDisplayDate) != "Tue, Jan 15" || b.Get(KeyDisplayClock) != "01:50" {
		t.Fatalf("unexpected display fields: %q %q", b.Get(KeyDisplayDate), b.Get(KeyDisplayClock))
	}
	if b.Get(KeyTemplate) != "1" || b.Get(KeyIconPath) != "assets/icons/bell-icon.png" {
		t.Fatalf("unexpected bundle: %v", b.Values())
	}
	if len(b.Values()) != len(Keys()) {
		t.Fatalf("内容包应包含全部已知键")
	}
}

func TestBundleNormalizesAndRejectsUnknownKeys(t *testing.T) {
	b := NewBundle(sampleInvocation())
	if err := b.Set("subtitle", "x"); err == nil {
		t.Fatalf("未知键应返回错误")
	}
	if err := b.Set(KeyTitle, "Cafe\u0301"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if got := b.Get(KeyTitle); got != "Caf\u00e9" {
		t.Fatalf("应规范化为 NFC, got %q", got)
	}
	v := b.Values()
	v[KeyTitle] = "changed"
	if b.Get(KeyTitle) == "changed" {
		t.Fatalf("Values 应返回副本")
	}
}
