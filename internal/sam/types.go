package sam

import (
	"encoding/json"

	"bidlens.app/resolver/internal/model"
)

// searchResponse is the remote endpoint's envelope. Responses are parsed
// into this fixed schema instead of being passed around loosely typed.
type searchResponse struct {
	TotalRecords      int           `json:"totalRecords"`
	OpportunitiesData []opportunity `json:"opportunitiesData"`
}

// opportunity mirrors the remote record shape, quirks included
// (responseDeadLine is spelled that way upstream).
type opportunity struct {
	NoticeID           string          `json:"noticeId"`
	Title              string          `json:"title"`
	SolicitationNumber string          `json:"solicitationNumber"`
	Description        string          `json:"description"`
	PostedDate         string          `json:"postedDate"`
	ResponseDeadLine   string          `json:"responseDeadLine"`
	FullParentPathName string          `json:"fullParentPathName"`
	NaicsCode          string          `json:"naicsCode"`
	TypeOfSetAside     string          `json:"typeOfSetAsideDescription"`
	PointOfContact     []remoteContact `json:"pointOfContact"`
	Award              *award          `json:"award,omitempty"`
}

type remoteContact struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Type     string `json:"type"`
}

type award struct {
	Amount json.Number `json:"amount"`
}

// toRecord normalizes a remote opportunity into the canonical record.
// Dates stay opaque strings; the resolver never compares them.
func (o opportunity) toRecord() model.ContractRecord {
	rec := model.ContractRecord{
		NoticeID:           o.NoticeID,
		SolicitationNumber: o.SolicitationNumber,
		Title:              o.Title,
		Description:        o.Description,
		Agency:             o.FullParentPathName,
		PostedDate:         o.PostedDate,
		ResponseDeadline:   o.ResponseDeadLine,
		NAICSCode:          o.NaicsCode,
		SetAside:           o.TypeOfSetAside,
	}
	for _, c := range o.PointOfContact {
		rec.PointOfContact = append(rec.PointOfContact, model.Contact{
			Name:  c.FullName,
			Email: c.Email,
			Phone: c.Phone,
			Type:  c.Type,
		})
	}
	if o.Award != nil {
		if amount, err := o.Award.Amount.Float64(); err == nil {
			rec.AwardAmount = &amount
		}
	}
	return rec
}

func toRecords(opps []opportunity) []model.ContractRecord {
	records := make([]model.ContractRecord, len(opps))
	for i, o := range opps {
		records[i] = o.toRecord()
	}
	return records
}
