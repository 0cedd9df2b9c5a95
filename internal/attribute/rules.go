package attribute

import "strings"

// Category labels
const (
	CategoryStage     = "단계"
	CategoryItem      = "품목"
	CategoryKind      = "종류"
	CategoryMinAge    = "최소연령"
	CategoryForm      = "형태"
	CategoryStorage   = "보관방식"
	CategoryPackaging = "포장용기"
	CategoryOrigin    = "원산지"
	CategoryCert      = "인증"
	CategoryUsage     = "용도"
)

// Matcher is a predicate over a checkmark key
type Matcher func(key string) bool

// CategoryRule assigns Category to any key accepted by Match
type CategoryRule struct {
	Category string
	Match    Matcher
}

func equals(values ...string) Matcher {
	return func(key string) bool {
		for _, v := range values {
			if key == v {
				return true
			}
		}
		return false
	}
}

func contains(sub string) Matcher {
	return func(key string) bool { return strings.Contains(key, sub) }
}

func hasSuffix(suffixes ...string) Matcher {
	return func(key string) bool {
		for _, s := range suffixes {
			if strings.HasSuffix(key, s) {
				return true
			}
		}
		return false
	}
}

func anyOf(matchers ...Matcher) Matcher {
	return func(key string) bool {
		for _, m := range matchers {
			if m(key) {
				return true
			}
		}
		return false
	}
}

// LearnRules classify checkmark keys observed during the learning pass
var LearnRules = []CategoryRule{
	{CategoryStage, anyOf(contains("단계"), equals("프레"))},
	{CategoryItem, equals("분유")},
	{CategoryKind, equals("일반분유", "특수분유", "산양분유", "조제분유")},
	{CategoryKind, contains("분유")},
	{CategoryMinAge, hasSuffix("개월~", "개월")},
	{CategoryForm, equals("분말", "액상", "미음", "죽", "진밥", "아기밥")},
	{CategoryStorage, equals("상온", "냉장", "냉동")},
	{CategoryPackaging, equals("파우치", "플라스틱병", "병", "캔")},
	{CategoryItem, anyOf(contains("이유식"), equals("양념", "반찬", "아기국", "수제이유식"))},
	{CategoryOrigin, equals("국내산", "수입산")},
	{CategoryCert, contains("인증")},
}

// InlineRules are the last-resort rules for checkmark keys neither learned nor mapped
var InlineRules = []CategoryRule{
	{CategoryStage, anyOf(contains("단계"), equals("프레"))},
	{CategoryItem, contains("분유")},
	{CategoryMinAge, hasSuffix("개월~", "개월")},
	{CategoryForm, equals("분말", "액상", "미음", "죽", "진밥", "아기밥")},
	{CategoryStorage, equals("상온", "냉장", "냉동")},
	{CategoryPackaging, equals("파우치", "플라스틱병")},
}

// Classify returns the category of the first rule matching key
func Classify(rules []CategoryRule, key string) (string, bool) {
	for _, rule := range rules {
		if rule.Match(key) {
			return rule.Category, true
		}
	}
	return "", false
}
