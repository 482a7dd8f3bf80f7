package usecase

import (
	"strings"

	"github.com/tidwall/gjson"

	"ppdrag/internal/domain"
)

// ParseAssessment decodes a scoring reply. The whole reply is tried as a JSON
// object first, then the span from the first '{' to the last '}'. When neither
// is a JSON object, the returned failure carries the raw reply.
//
// Fields are read leniently: numbers given as strings are converted, a scalar
// where a list is expected becomes a one-item list, and unknown keys are ignored.
func ParseAssessment(raw string) (domain.Assessment, *domain.ReplyFailure) {
	if a, ok := decodeObject(raw); ok {
		return a, nil
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start != -1 && end > start {
		if a, ok := decodeObject(raw[start : end+1]); ok {
			return a, nil
		}
	}

	return domain.Assessment{}, &domain.ReplyFailure{
		Code:     domain.FailureInvalidJSON,
		RawReply: raw,
	}
}

func decodeObject(s string) (domain.Assessment, bool) {
	if !gjson.Valid(s) {
		return domain.Assessment{}, false
	}
	obj := gjson.Parse(s)
	if !obj.IsObject() {
		return domain.Assessment{}, false
	}
	return assessmentFrom(obj), true
}

func assessmentFrom(obj gjson.Result) domain.Assessment {
	a := domain.Assessment{
		Category:          obj.Get("category").String(),
		CategoryID:        int(obj.Get("category_id").Int()),
		Score:             obj.Get("score").Float(),
		Confidence:        obj.Get("confidence").Float(),
		Rationale:         obj.Get("rationale").String(),
		Evidence:          evidenceList(obj.Get("evidence")),
		MissingInfo:       stringList(obj.Get("missing_info")),
		FollowUpQuestions: stringList(obj.Get("follow_up_questions")),
	}

	flag := obj.Get("safety_flag")
	if flag.IsObject() {
		a.SafetyFlag = domain.SafetyFlag{
			Risk:              flag.Get("risk").String(),
			Reason:            flag.Get("reason").String(),
			RecommendedAction: flag.Get("recommended_action").String(),
		}
	} else if flag.Type == gjson.String {
		a.SafetyFlag.Risk = flag.String()
	}
	return a
}

// evidenceList accepts {quote, citation} objects and bare quote strings.
func evidenceList(r gjson.Result) []domain.Evidence {
	out := []domain.Evidence{}
	if !r.IsArray() {
		return out
	}
	for _, item := range r.Array() {
		switch {
		case item.IsObject():
			out = append(out, domain.Evidence{
				Quote:    item.Get("quote").String(),
				Citation: item.Get("citation").String(),
			})
		case item.Type == gjson.String && item.String() != "":
			out = append(out, domain.Evidence{Quote: item.String()})
		}
	}
	return out
}

func stringList(r gjson.Result) []string {
	out := []string{}
	switch {
	case r.IsArray():
		for _, item := range r.Array() {
			if s := item.String(); s != "" {
				out = append(out, s)
			}
		}
	case r.Type == gjson.String && r.String() != "":
		out = append(out, r.String())
	}
	return out
}
