package types

import "time"

// SearchProfile is the saved-search payload stored as a JSON blob in the
// profiles table. Shape matches what the hub form submits.
type SearchProfile struct {
	DataType        string   `json:"dataType"`
	SelectedStates  []string `json:"selectedStates"`
	SelectedParties []string `json:"selectedParties"`
	Role            string   `json:"role"`
	UCCType         string   `json:"uccType"`
	FilingDateStart string   `json:"filingDateStart,omitempty"`
	FilingDateEnd   string   `json:"filingDateEnd,omitempty"`
}

type Profile struct {
	Name      string        `db:"name" json:"name"`
	UserID    string        `db:"user_id" json:"-"`
	Config    SearchProfile `db:"config" json:"config"`
	UpdatedAt time.Time     `db:"updated_at" json:"-"`
}
