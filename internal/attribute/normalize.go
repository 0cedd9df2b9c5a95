package attribute

import (
	"strings"
)

// Output labels for the side channels
const (
	LabelCertification     = "인증"
	LabelCertificationInfo = "인증정보"
	LabelRegistrationDate  = "등록년월일"
	keyNoAdditive          = "無첨가"
)

var (
	additiveKeys = map[string]struct{}{
		"합성보존료": {}, "합성착색료": {}, "합성감미료": {},
		"보존료": {}, "착색료": {}, "감미료": {},
	}

	noAdditiveValues = []string{"무첨가", "없음"}

	boilerplateValues = []string{
		"상세설명 / 판매 사이트 문의",
		"상세설명",
		"판매 사이트 문의",
		"인증번호 확인",
	}
)

// DocumentState is everything normalization accumulates for one document
type DocumentState struct {
	Parts             []string
	Certifications    []string
	CertificationInfo []string
	RegistrationDate  string
}

// Normalize turns a document's merged specs into its flattened attribute list
func Normalize(specs *SpecMap, r *Resolver) []string {
	var st DocumentState
	specs.Each(func(key, value string) {
		st = normalizePair(st, key, value, r)
	})
	return Assemble(st)
}

// Assemble orders the state into the final list: entries, 인증, 인증정보, 등록년월일
func Assemble(st DocumentState) []string {
	out := append([]string(nil), st.Parts...)
	if len(st.Certifications) > 0 {
		out = append(out, LabelCertification+":"+strings.Join(st.Certifications, ","))
	}
	if len(st.CertificationInfo) > 0 {
		out = append(out, LabelCertificationInfo+":"+strings.Join(st.CertificationInfo, ","))
	}
	if st.RegistrationDate != "" {
		out = append(out, LabelRegistrationDate+":"+st.RegistrationDate)
	}
	return out
}

func normalizePair(st DocumentState, rawKey, value string, r *Resolver) DocumentState {
	if strings.TrimSpace(value) == "" {
		return st
	}

	key := r.CanonicalKey(rawKey)
	if key == value || rawKey == value {
		return st
	}

	clean := Sanitize(value)
	if clean == "" {
		return st
	}

	if strings.Contains(key, "등록년월") || strings.Contains(key, "등록일") {
		st.RegistrationDate = clean
		return st
	}

	glyph := IsCheckmark(clean)

	if key == LabelCertificationInfo || (strings.Contains(key, "인증") && glyph) {
		if isHACCP(key) {
			st.CertificationInfo = appendUnique(st.CertificationInfo, key)
			return st
		}
	}

	if strings.Contains(key, "인증번호") {
		st.CertificationInfo = appendUnique(st.CertificationInfo, clean)
		return st
	}

	if _, ok := additiveKeys[key]; ok && !glyph && !oneOf(clean, noAdditiveValues) {
		// a concrete chemical name was disclosed
		key = keyNoAdditive
	}

	switch {
	case glyph:
		switch {
		case isHACCP(key):
			st.CertificationInfo = appendUnique(st.CertificationInfo, key)
		case strings.Contains(key, "인증"):
			st.Certifications = appendUnique(st.Certifications, key)
		default:
			if category, ok := r.Resolve(key); ok {
				st = fold(st, category, key)
			}
		}

	case strings.Contains(key, "인증") && !strings.Contains(key, "HACCP"):
		st.Certifications = appendUnique(st.Certifications, key)

	case isBoilerplate(clean):
		// dropped

	case key == clean:
		if category, ok := r.Lookup(key); ok {
			st = fold(st, category, key)
		} else {
			st.Parts = append(st.Parts, key+":"+clean)
		}

	default:
		st.Parts = append(st.Parts, key+":"+clean)
	}

	return st
}

// fold merges key into the existing category entry in place, or starts one
func fold(st DocumentState, category, key string) DocumentState {
	prefix := category + ":"
	for i, part := range st.Parts {
		if strings.HasPrefix(part, prefix) {
			st.Parts[i] = part + "," + key
			return st
		}
	}
	st.Parts = append(st.Parts, prefix+key)
	return st
}

func isHACCP(key string) bool {
	return strings.Contains(key, "HACCP")
}

func isBoilerplate(value string) bool {
	return oneOf(value, boilerplateValues) || strings.Contains(value, boilerplateValues[0])
}

func oneOf(s string, values []string) bool {
	for _, v := range values {
		if s == v {
			return true
		}
	}
	return false
}

func appendUnique(list []string, s string) []string {
	if oneOf(s, list) {
		return list
	}
	return append(list, s)
}
