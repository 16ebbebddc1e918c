package model

import "time"

// ContractRecord is the canonical, normalized form of a contract opportunity.
// It is constructed only by a successful resolution tier and never mutated
// afterward; absent fields stay empty rather than carrying sentinel values.
type ContractRecord struct {
	NoticeID           string    `json:"notice_id"`
	SolicitationNumber string    `json:"solicitation_number"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	Agency             string    `json:"agency"`
	PostedDate         string    `json:"posted_date"`
	ResponseDeadline   string    `json:"response_deadline"`
	NAICSCode          string    `json:"naics_code"`
	SetAside           string    `json:"set_aside"`
	PointOfContact     []Contact `json:"point_of_contact,omitempty"`
	FullText           string    `json:"full_text,omitempty"`
	AwardAmount        *float64  `json:"award_amount,omitempty"`
}

// Contact is a point of contact attached to an opportunity.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Type  string `json:"type"`
}

// MatchResult pairs a resolved record with the tier that produced it.
// Score is nil for exact matches and set only by fuzzy tiers; a non-nil
// score is always at or above the acceptance threshold.
type MatchResult struct {
	Record *ContractRecord `json:"record"`
	Tier   string          `json:"tier"`
	Score  *float64        `json:"score,omitempty"`
}

// SearchWindow bounds a remote query. The remote API rejects unbounded date
// ranges, so every query carries one. Windows are value types: tiers build
// their own instead of mutating a shared one.
type SearchWindow struct {
	From time.Time
	To   time.Time
}

// Window returns a window spanning `back` before and `ahead` after now.
func Window(now time.Time, back, ahead time.Duration) SearchWindow {
	return SearchWindow{From: now.Add(-back), To: now.Add(ahead)}
}

// remoteDateFormat is the only date format the remote endpoint accepts.
const remoteDateFormat = "01/02/2006"

// FromParam formats the lower bound as MM/DD/YYYY for the remote API.
func (w SearchWindow) FromParam() string {
	return w.From.Format(remoteDateFormat)
}

// ToParam formats the upper bound as MM/DD/YYYY for the remote API.
func (w SearchWindow) ToParam() string {
	return w.To.Format(remoteDateFormat)
}

// String renders the window for trace lines and logs.
func (w SearchWindow) String() string {
	return w.FromParam() + ".." + w.ToParam()
}
