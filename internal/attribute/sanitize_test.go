package attribute

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"냉장", "냉장"},
		{"  분말   형태 ", "분말 형태"},
		{"HACCP 인증번호 확인", "HACCP"},
		{"ABC식품 제조사 웹사이트 바로가기", "ABC식품"},
		{"ABC식품 웹사이트", "ABC식품"},
		{"12개월 (권장)", "12개월"},
		{"12개월 (권장) 이상 (표기 기준)", "12개월 이상"},
		{"국내산 (일부 수입", "국내산"},
		{"(주)아이배냇", "아이배냇"},
		{"분유  800g", "분유 800g"},
		{"바로가기", ""},
		{"(비공개)", ""},
		{"", ""},
		{"\t\n", ""},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, Sanitize(tc.input), "input: %q", tc.input)
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"ABC 바로웹사이트가기 이후",
		"인증번호 웹사이트확인",
		"((중첩) 괄호) 값",
		"a ) b ( c",
		"제조사 웹사이트웹사이트 값",
		"  여러   공백\t탭 ",
		"상세설명 / 판매 사이트 문의",
		"○",
		"혼합 (닫힘) 그리고 (열림",
	}

	for _, in := range inputs {
		once := Sanitize(in)
		assert.Equal(t, once, Sanitize(once), "input: %q", in)
	}
}

func TestCleanInline(t *testing.T) {
	assert.Equal(t, "HACCP", CleanInline("HACCP 인증번호 확인"))
	assert.Equal(t, "제조사", CleanInline("제조사 바로가기"))
	assert.Equal(t, "12개월", CleanInline("12개월 (권장)"))
	// unterminated asides are left for Sanitize
	assert.Equal(t, "국내산 (일부", CleanInline("국내산 (일부"))
}

func TestIsCheckmark(t *testing.T) {
	for _, glyph := range []string{"○", "O", "o", "●", " ○ "} {
		assert.True(t, IsCheckmark(glyph), glyph)
	}
	for _, other := range []string{"", "◎", "X", "OO", "상온 ○"} {
		assert.False(t, IsCheckmark(other), other)
	}
}
