package attribute

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpecMapSelfReference(t *testing.T) {
	m := NewSpecMap()
	m.Add("원산지", "원산지")
	assert.Equal(t, 0, m.Len())
}

func TestSpecMapContainment(t *testing.T) {
	m := NewSpecMap()
	m.Add("보관방식", "냉장")
	m.Add("보관방식", "냉장,냉동")

	v, ok := m.Get("보관방식")
	assert.True(t, ok)
	assert.Equal(t, "냉장,냉동", v)

	// applying it again changes nothing
	m.Add("보관방식", "냉장,냉동")
	v, _ = m.Get("보관방식")
	assert.Equal(t, "냉장,냉동", v)

	// a subset of the current value is absorbed
	m.Add("보관방식", "냉동")
	v, _ = m.Get("보관방식")
	assert.Equal(t, "냉장,냉동", v)
}

func TestSpecMapAppend(t *testing.T) {
	m := NewSpecMap()
	m.Add("보관방식", "상온")
	m.Add("보관방식", "냉장")
	m.Add("보관방식", "냉동")
	m.Add("보관방식", " 냉장")

	v, _ := m.Get("보관방식")
	assert.Equal(t, "상온,냉장,냉동", v)
}

func TestSpecMapOrder(t *testing.T) {
	m := NewSpecMap()
	m.Add("제조사", "ABC")
	m.Add("품목", "분유")
	m.Add("제조사", "ABC")
	m.Add("상온", "○")

	assert.Equal(t, []string{"제조사", "품목", "상온"}, m.Keys())

	var seen []string
	m.Each(func(key, value string) {
		seen = append(seen, key+"="+value)
	})
	assert.Equal(t, []string{"제조사=ABC", "품목=분유", "상온=○"}, seen)
	assert.Equal(t, []string{"상온"}, m.CheckmarkKeys())
}

func TestSpecMapKeepsEveryAddedValue(t *testing.T) {
	values := []string{"12개월", "12개월~", "6개월", "12개월~36개월"}
	m := NewSpecMap()
	for _, v := range values {
		m.Add("최소연령", v)
	}

	merged, _ := m.Get("최소연령")
	for _, v := range values {
		assert.Contains(t, merged, v)
	}
	assert.Equal(t, "12개월~,6개월,12개월~36개월", merged)
}
