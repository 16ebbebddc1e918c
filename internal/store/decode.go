package store

import (
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"bidlens.app/resolver/internal/model"
)

// decodeItem flattens a DynamoDB item (tagged-union attribute values) into
// plain Go values: strings, float64s, bools, slices and maps. Anything else
// is dropped rather than surfaced as a typed wrapper.
func decodeItem(item map[string]types.AttributeValue) map[string]any {
	out := make(map[string]any, len(item))
	for k, v := range item {
		if plain, ok := decodeAttr(v); ok {
			out[k] = plain
		}
	}
	return out
}

func decodeAttr(v types.AttributeValue) (any, bool) {
	switch av := v.(type) {
	case *types.AttributeValueMemberS:
		return av.Value, true
	case *types.AttributeValueMemberN:
		f, err := strconv.ParseFloat(av.Value, 64)
		if err != nil {
			return av.Value, true
		}
		return f, true
	case *types.AttributeValueMemberBOOL:
		return av.Value, true
	case *types.AttributeValueMemberNULL:
		return nil, true
	case *types.AttributeValueMemberSS:
		out := make([]any, len(av.Value))
		for i, s := range av.Value {
			out[i] = s
		}
		return out, true
	case *types.AttributeValueMemberL:
		out := make([]any, 0, len(av.Value))
		for _, elem := range av.Value {
			if plain, ok := decodeAttr(elem); ok {
				out = append(out, plain)
			}
		}
		return out, true
	case *types.AttributeValueMemberM:
		return decodeItem(av.Value), true
	default:
		return nil, false
	}
}

// Field-alias table: canonical record fields and the item attribute names
// (current camelCase and legacy snake_case) they may be stored under.
// Normalization goes through this table instead of chained fallbacks.
var fieldAliases = map[string][]string{
	"noticeId":           {"noticeId", "notice_id"},
	"solicitationNumber": {"solicitationNumber", "solicitation_number"},
	"title":              {"title"},
	"description":        {"description"},
	"agency":             {"agency", "fullParentPathName", "full_parent_path_name"},
	"postedDate":         {"postedDate", "posted_date"},
	"responseDeadline":   {"responseDeadLine", "responseDeadline", "response_deadline"},
	"naicsCode":          {"naicsCode", "naics_code"},
	"setAside":           {"setAside", "typeOfSetAsideDescription", "set_aside"},
	"fullText":           {"fullText", "full_text"},
	"awardAmount":        {"awardAmount", "award_amount"},
}

// toRecord normalizes a decoded item into the canonical record through the
// alias table. Absent attributes stay empty.
func toRecord(item map[string]any) model.ContractRecord {
	rec := model.ContractRecord{
		NoticeID:           stringField(item, "noticeId"),
		SolicitationNumber: stringField(item, "solicitationNumber"),
		Title:              stringField(item, "title"),
		Description:        stringField(item, "description"),
		Agency:             stringField(item, "agency"),
		PostedDate:         stringField(item, "postedDate"),
		ResponseDeadline:   stringField(item, "responseDeadline"),
		NAICSCode:          stringField(item, "naicsCode"),
		SetAside:           stringField(item, "setAside"),
		FullText:           stringField(item, "fullText"),
	}
	if amount, ok := numberField(item, "awardAmount"); ok {
		rec.AwardAmount = &amount
	}
	for _, c := range listField(item, "pointOfContact", "point_of_contact") {
		contact, ok := c.(map[string]any)
		if !ok {
			continue
		}
		rec.PointOfContact = append(rec.PointOfContact, model.Contact{
			Name:  stringValue(contact["fullName"], contact["name"]),
			Email: stringValue(contact["email"]),
			Phone: stringValue(contact["phone"]),
			Type:  stringValue(contact["type"]),
		})
	}
	return rec
}

func stringField(item map[string]any, canonical string) string {
	for _, alias := range fieldAliases[canonical] {
		if s, ok := item[alias].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func numberField(item map[string]any, canonical string) (float64, bool) {
	for _, alias := range fieldAliases[canonical] {
		switch v := item[alias].(type) {
		case float64:
			return v, true
		case string:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

func listField(item map[string]any, aliases ...string) []any {
	for _, alias := range aliases {
		if l, ok := item[alias].([]any); ok {
			return l
		}
	}
	return nil
}

func stringValue(candidates ...any) string {
	for _, c := range candidates {
		if s, ok := c.(string); ok && s != "" {
			return s
		}
	}
	return ""
}
